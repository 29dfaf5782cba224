// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"sync"
	"time"
)

// SyntheticSource produces deterministic sine-wave chunks without touching
// any device. It backs test mode and the package tests.
type SyntheticSource struct {
	chunkSize  int
	sampleRate int
	frequency  float64
	interval   time.Duration

	mu     sync.Mutex
	active bool
	phase  int
	reads  int
}

// NewSyntheticSource creates a synthetic source emitting 440Hz chunks of
// chunkSize samples. interval simulates the real-time pacing of a blocking
// device read; zero means reads return immediately.
func NewSyntheticSource(chunkSize, sampleRate int, interval time.Duration) *SyntheticSource {
	return &SyntheticSource{
		chunkSize:  chunkSize,
		sampleRate: sampleRate,
		frequency:  440,
		interval:   interval,
	}
}

func (s *SyntheticSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
	s.phase = 0
	s.reads = 0
	return nil
}

func (s *SyntheticSource) ReadChunk() (*Chunk, error) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil, ErrInactive
	}
	start := s.phase
	s.phase += s.chunkSize
	s.reads++
	s.mu.Unlock()

	if s.interval > 0 {
		time.Sleep(s.interval)
	}

	chunk := &Chunk{
		Data: make([]int16, s.chunkSize),
		Time: time.Now(),
	}
	for i := range chunk.Data {
		t := float64(start+i) / float64(s.sampleRate)
		chunk.Data[i] = int16(math.Sin(2*math.Pi*s.frequency*t) * math.MaxInt16 * 0.5)
	}
	return chunk, nil
}

func (s *SyntheticSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	return nil
}

// Reads returns how many chunks have been produced since Open.
func (s *SyntheticSource) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

var _ Source = (*SyntheticSource)(nil)

// SPDX-License-Identifier: MIT
/*
Package audio implements fixed-size PCM capture for the recognition
pipeline:
- Blocking chunk reads from a PortAudio input stream
- Overflow-tolerant capture (an overflowed read yields an empty chunk)
- Idempotent device teardown
- WAV session recording with atomic state management

Thread Safety:
- ReadChunk must be called by a single goroutine (the capture worker)
- Open/Close are serialized by an internal mutex and safe to repeat
*/
package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/Pierrekw/voiceinput/internal/config"
	applog "github.com/Pierrekw/voiceinput/internal/log"
)

var (
	// ErrDevice indicates the input device is missing or refused the
	// requested format at open time.
	ErrDevice = errors.New("audio device error")

	// ErrInactive indicates a read was attempted on a source that is
	// not open.
	ErrInactive = errors.New("audio stream not active")
)

// Source produces fixed-size audio chunks on demand. Implementations own
// the underlying device handle; ReadChunk is single-consumer.
type Source interface {
	Open() error
	ReadChunk() (*Chunk, error)
	Close() error
}

// DeviceSource captures 16-bit signed mono PCM from a PortAudio input
// stream using blocking reads sized to one chunk.
type DeviceSource struct {
	cfg config.AudioConfig

	mu      sync.Mutex
	device  *portaudio.DeviceInfo
	stream  *portaudio.Stream
	buffer  []int16
	latency time.Duration
	active  bool
}

// NewDeviceSource creates a source for the configured input device. The
// device is not acquired until Open.
func NewDeviceSource(cfg config.AudioConfig) *DeviceSource {
	return &DeviceSource{cfg: cfg}
}

// Open acquires the input device and starts the stream. On any failure the
// partially acquired stream is released before returning, so a failed Open
// never leaks a device handle.
func (s *DeviceSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return nil
	}

	device, err := InputDevice(s.cfg.InputDevice)
	if err != nil {
		return err
	}
	s.device = device

	if s.cfg.LowLatency {
		s.latency = device.DefaultLowInputLatency
	} else {
		s.latency = device.DefaultHighInputLatency
	}

	// One blocking read fills exactly one chunk.
	s.buffer = make([]int16, s.cfg.ChunkSize)

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: s.cfg.Channels,
			Device:   device,
			Latency:  s.latency,
		},
		FramesPerBuffer: s.cfg.ChunkSize,
		SampleRate:      float64(s.cfg.SampleRate),
	}

	stream, err := portaudio.OpenStream(params, &s.buffer)
	if err != nil {
		s.device = nil
		return fmt.Errorf("%w: open stream: %v", ErrDevice, err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		s.device = nil
		return fmt.Errorf("%w: start stream: %v", ErrDevice, err)
	}

	s.stream = stream
	s.active = true
	applog.Infof("audio: input stream open (device=%q rate=%d chunk=%d)",
		device.Name, s.cfg.SampleRate, s.cfg.ChunkSize)
	return nil
}

// ReadChunk performs one blocking fixed-size read and returns the captured
// chunk. When overflow tolerance is enabled a device-buffer overflow yields
// an empty chunk instead of an error. Returns ErrInactive if the stream is
// not open.
func (s *DeviceSource) ReadChunk() (*Chunk, error) {
	s.mu.Lock()
	stream := s.stream
	active := s.active
	s.mu.Unlock()

	if !active || stream == nil {
		return nil, ErrInactive
	}

	if err := stream.Read(); err != nil {
		if errors.Is(err, portaudio.InputOverflowed) && s.cfg.OverflowTolerant {
			applog.Debugf("audio: input overflow, dropping read")
			return &Chunk{Time: time.Now()}, nil
		}
		return nil, fmt.Errorf("read chunk: %w", err)
	}

	chunk := &Chunk{
		Data: make([]int16, len(s.buffer)),
		Time: time.Now(),
	}
	copy(chunk.Data, s.buffer)
	return chunk, nil
}

// Close releases the device resources. It is idempotent: every Open is
// matched by exactly one effective Close, and extra calls are no-ops.
func (s *DeviceSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return nil
	}
	s.active = false

	var firstErr error
	if s.stream != nil {
		if err := s.stream.Stop(); err != nil {
			firstErr = fmt.Errorf("stop stream: %w", err)
		}
		if err := s.stream.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close stream: %w", err)
		}
		s.stream = nil
	}
	s.device = nil
	applog.Infof("audio: input stream closed")
	return firstErr
}

// Ensure DeviceSource satisfies the Source interface at compile time.
var _ Source = (*DeviceSource)(nil)

// SPDX-License-Identifier: MIT
package tts

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/Pierrekw/voiceinput/internal/audio"
	"github.com/Pierrekw/voiceinput/internal/config"
)

// Sink plays PCM samples. Play blocks until the audio has been written or
// the context is cancelled.
type Sink interface {
	Play(ctx context.Context, samples []int16) error
	Close() error
}

// deviceSinkFrames is the output stream write size. Small enough that a
// cancelled context interrupts playback within tens of milliseconds.
const deviceSinkFrames = 1024

// DeviceSink plays samples on a PortAudio output stream.
type DeviceSink struct {
	deviceID   int
	sampleRate int

	mu     sync.Mutex
	stream *portaudio.Stream
	buffer []int16
}

// NewDeviceSink creates a sink for the configured output device. The
// stream is opened lazily on first Play.
func NewDeviceSink(deviceID, sampleRate int) *DeviceSink {
	return &DeviceSink{deviceID: deviceID, sampleRate: sampleRate}
}

func (s *DeviceSink) ensureStream() error {
	if s.stream != nil {
		return nil
	}

	device, err := audio.OutputDevice(s.deviceID)
	if err != nil {
		return err
	}

	s.buffer = make([]int16, deviceSinkFrames)
	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Channels: config.DefaultChannels,
			Device:   device,
			Latency:  device.DefaultHighOutputLatency,
		},
		FramesPerBuffer: deviceSinkFrames,
		SampleRate:      float64(s.sampleRate),
	}

	stream, err := portaudio.OpenStream(params, &s.buffer)
	if err != nil {
		return fmt.Errorf("open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("start output stream: %w", err)
	}
	s.stream = stream
	return nil
}

// Play writes samples to the device in fixed-size slices, checking the
// context between writes so cancellation interrupts mid-playback.
func (s *DeviceSink) Play(ctx context.Context, samples []int16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureStream(); err != nil {
		return err
	}

	for offset := 0; offset < len(samples); offset += deviceSinkFrames {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := offset + deviceSinkFrames
		if end > len(samples) {
			end = len(samples)
		}
		n := copy(s.buffer, samples[offset:end])
		for i := n; i < deviceSinkFrames; i++ {
			s.buffer[i] = 0
		}

		if err := s.stream.Write(); err != nil {
			return fmt.Errorf("write output stream: %w", err)
		}
	}
	return nil
}

func (s *DeviceSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream == nil {
		return nil
	}
	s.stream.Stop()
	err := s.stream.Close()
	s.stream = nil
	return err
}

var _ Sink = (*DeviceSink)(nil)

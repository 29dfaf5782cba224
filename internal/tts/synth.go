// SPDX-License-Identifier: MIT
/*
Package tts provides queued speech-synthesis playback: a priority queue of
requests served by a single lazily-started worker that never runs two
playbacks concurrently.
*/
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-audio/wav"

	"github.com/Pierrekw/voiceinput/internal/config"
)

// Synthesizer turns text into 16-bit mono PCM samples.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]int16, error)
}

// HTTPSynthesizer calls a synthesis HTTP endpoint that accepts a JSON
// request and returns WAV audio.
type HTTPSynthesizer struct {
	endpoint string
	apiKey   string
	voice    string
	client   *http.Client
}

// NewHTTPSynthesizer creates a synthesizer for the configured endpoint.
func NewHTTPSynthesizer(cfg config.TTSConfig) *HTTPSynthesizer {
	return &HTTPSynthesizer{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		voice:    cfg.Voice,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPSynthesizer) Synthesize(ctx context.Context, text string) ([]int16, error) {
	payload := map[string]any{
		"text":  text,
		"voice": s.voice,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("synthesis request: bad status %s", resp.Status)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesis response: %w", err)
	}
	return decodeWAV(audio)
}

// decodeWAV extracts mono 16-bit samples from WAV bytes.
func decodeWAV(data []byte) ([]int16, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode synthesis WAV: %w", err)
	}
	samples := make([]int16, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = int16(s)
	}
	return samples, nil
}

// SilentSynthesizer produces a short burst of silence per request. It backs
// test mode where no synthesis backend is configured.
type SilentSynthesizer struct {
	SampleRate int
}

func (s *SilentSynthesizer) Synthesize(ctx context.Context, text string) ([]int16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rate := s.SampleRate
	if rate <= 0 {
		rate = config.DefaultSampleRate
	}
	// 100ms of silence regardless of text length.
	return make([]int16, rate/10), nil
}

var (
	_ Synthesizer = (*HTTPSynthesizer)(nil)
	_ Synthesizer = (*SilentSynthesizer)(nil)
)

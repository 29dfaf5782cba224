// SPDX-License-Identifier: MIT
package asr

import (
	"context"
	"sync"
)

// ScriptedDecoder is a deterministic in-process decoder for test mode and
// package tests. It accumulates samples and finalizes the next scripted
// utterance every time the accumulated count crosses the boundary size.
type ScriptedDecoder struct {
	boundary int // samples per utterance boundary
	script   []string

	mu          sync.Mutex
	initialized bool
	accumulated int
	next        int
	lastFinal   string
}

// NewScriptedDecoder creates a decoder that emits the script entries in
// order, cycling when exhausted. boundary is the number of samples that
// constitutes one utterance.
func NewScriptedDecoder(boundary int, script ...string) *ScriptedDecoder {
	if boundary <= 0 {
		boundary = 16000
	}
	if len(script) == 0 {
		script = []string{"test utterance"}
	}
	return &ScriptedDecoder{boundary: boundary, script: script}
}

func (d *ScriptedDecoder) Initialize(ctx context.Context, modelPath string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	d.initialized = true
	return nil
}

func (d *ScriptedDecoder) Decode(samples []int16) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.accumulated += len(samples)
	if d.accumulated < d.boundary {
		return "", false, nil
	}

	d.accumulated -= d.boundary
	text := d.script[d.next%len(d.script)]
	d.next++
	d.lastFinal = text
	return text, true, nil
}

func (d *ScriptedDecoder) Partial() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.accumulated == 0 {
		return "", false
	}
	// The hypothesis grows with accumulation progress toward the boundary.
	text := d.script[d.next%len(d.script)]
	cut := len(text) * d.accumulated / d.boundary
	if cut <= 0 {
		return "", false
	}
	if cut > len(text) {
		cut = len(text)
	}
	return text[:cut], true
}

func (d *ScriptedDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.initialized = false
	d.accumulated = 0
	return nil
}

// Confidence is fixed for scripted output.
func (d *ScriptedDecoder) Confidence() float64 {
	return 1.0
}

var (
	_ Decoder            = (*ScriptedDecoder)(nil)
	_ ConfidenceReporter = (*ScriptedDecoder)(nil)
)

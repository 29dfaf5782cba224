// SPDX-License-Identifier: MIT
package asr

import (
	"context"
	"testing"
)

func TestScriptedDecoderBoundary(t *testing.T) {
	d := NewScriptedDecoder(1000, "hello world", "second utterance")
	if err := d.Initialize(context.Background(), ""); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	// Below the boundary: no final.
	text, final, err := d.Decode(make([]int16, 600))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if final || text != "" {
		t.Errorf("expected no final below boundary, got %q final=%v", text, final)
	}

	// Partial grows with accumulation.
	partial, ok := d.Partial()
	if !ok || partial == "" {
		t.Errorf("expected a partial hypothesis, got %q ok=%v", partial, ok)
	}

	// Crossing the boundary finalizes the first scripted utterance.
	text, final, err = d.Decode(make([]int16, 600))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !final || text != "hello world" {
		t.Errorf("expected final %q, got %q final=%v", "hello world", text, final)
	}

	// Next boundary yields the next entry.
	text, final, _ = d.Decode(make([]int16, 1000))
	if !final || text != "second utterance" {
		t.Errorf("expected final %q, got %q final=%v", "second utterance", text, final)
	}

	// The script cycles.
	text, final, _ = d.Decode(make([]int16, 1000))
	if !final || text != "hello world" {
		t.Errorf("expected script to cycle, got %q final=%v", text, final)
	}
}

func TestScriptedDecoderInitializeIdempotent(t *testing.T) {
	d := NewScriptedDecoder(100, "x")
	ctx := context.Background()
	if err := d.Initialize(ctx, ""); err != nil {
		t.Fatalf("first Initialize failed: %v", err)
	}
	if err := d.Initialize(ctx, ""); err != nil {
		t.Errorf("second Initialize should be a no-op, got %v", err)
	}
}

func TestScriptedDecoderInitializeCancelled(t *testing.T) {
	d := NewScriptedDecoder(100, "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Initialize(ctx, ""); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestScriptedDecoderPartialDoesNotConsume(t *testing.T) {
	d := NewScriptedDecoder(1000, "hello")
	d.Initialize(context.Background(), "")
	d.Decode(make([]int16, 500))

	first, _ := d.Partial()
	second, _ := d.Partial()
	if first != second {
		t.Errorf("Partial should not consume state: %q vs %q", first, second)
	}

	// A final still arrives on schedule after Partial calls.
	text, final, _ := d.Decode(make([]int16, 500))
	if !final || text != "hello" {
		t.Errorf("expected final %q after partials, got %q final=%v", "hello", text, final)
	}
}

func TestScriptedDecoderDefaults(t *testing.T) {
	d := NewScriptedDecoder(0)
	d.Initialize(context.Background(), "")
	text, final, _ := d.Decode(make([]int16, 16000))
	if !final || text == "" {
		t.Errorf("default script should finalize at default boundary, got %q final=%v", text, final)
	}
	if d.Confidence() != 1.0 {
		t.Errorf("scripted confidence: got %f, want 1.0", d.Confidence())
	}
}

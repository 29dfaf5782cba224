// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"testing"
)

func TestSyntheticSourceLifecycle(t *testing.T) {
	src := NewSyntheticSource(testChunkSize, testSampleRate, 0)

	if _, err := src.ReadChunk(); !errors.Is(err, ErrInactive) {
		t.Errorf("read before Open: got %v, want ErrInactive", err)
	}

	if err := src.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	chunk, err := src.ReadChunk()
	if err != nil {
		t.Fatalf("ReadChunk failed: %v", err)
	}
	if len(chunk.Data) != testChunkSize {
		t.Errorf("chunk size: got %d, want %d", len(chunk.Data), testChunkSize)
	}
	if chunk.Peak() == 0 {
		t.Error("sine chunk should not be silent")
	}

	if err := src.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := src.ReadChunk(); !errors.Is(err, ErrInactive) {
		t.Errorf("read after Close: got %v, want ErrInactive", err)
	}

	// Close is idempotent.
	if err := src.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestSyntheticSourceDeterministic(t *testing.T) {
	a := NewSyntheticSource(256, testSampleRate, 0)
	b := NewSyntheticSource(256, testSampleRate, 0)
	a.Open()
	b.Open()

	ca, _ := a.ReadChunk()
	cb, _ := b.ReadChunk()
	for i := range ca.Data {
		if ca.Data[i] != cb.Data[i] {
			t.Fatalf("sample %d differs: %d vs %d", i, ca.Data[i], cb.Data[i])
		}
	}

	if a.Reads() != 1 {
		t.Errorf("Reads: got %d, want 1", a.Reads())
	}
}

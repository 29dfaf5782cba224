// SPDX-License-Identifier: MIT
package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
)

const (
	testSampleRate = 16000
	testChunkSize  = 800
)

func TestRecorderStartStop(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "session.wav")
	rec := NewRecorder(testSampleRate, testChunkSize)

	if rec.Recording() {
		t.Error("recorder should start idle")
	}

	if err := rec.Start(filename); err != nil {
		t.Fatalf("Failed to start recording: %v", err)
	}
	if !rec.Recording() {
		t.Error("recorder should be recording after Start")
	}

	if err := rec.Start(filename); err == nil {
		t.Error("second Start should fail while recording")
	}

	if err := rec.Stop(); err != nil {
		t.Fatalf("Failed to stop recording: %v", err)
	}
	if rec.Recording() {
		t.Error("recorder should be idle after Stop")
	}

	// Stop is idempotent.
	if err := rec.Stop(); err != nil {
		t.Errorf("second Stop should be a no-op, got %v", err)
	}
}

func TestRecorderWritesDecodableWAV(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "capture.wav")
	rec := NewRecorder(testSampleRate, testChunkSize)

	if err := rec.Start(filename); err != nil {
		t.Fatalf("Failed to start recording: %v", err)
	}

	chunk := &Chunk{Data: make([]int16, testChunkSize), Time: time.Now()}
	for i := range chunk.Data {
		chunk.Data[i] = int16(i % 1000)
	}

	for range 3 {
		if err := rec.Write(chunk); err != nil {
			t.Fatalf("Failed to write chunk: %v", err)
		}
	}

	if err := rec.Stop(); err != nil {
		t.Fatalf("Failed to stop recording: %v", err)
	}

	f, err := os.Open(filename)
	if err != nil {
		t.Fatalf("Failed to open recording: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("Failed to decode recording: %v", err)
	}
	if dec.SampleRate != testSampleRate {
		t.Errorf("sample rate: got %d, want %d", dec.SampleRate, testSampleRate)
	}
	if got, want := len(buf.Data), 3*testChunkSize; got != want {
		t.Errorf("decoded samples: got %d, want %d", got, want)
	}
	if buf.Data[1] != 1 {
		t.Errorf("sample round trip: got %d, want 1", buf.Data[1])
	}
}

func TestRecorderWriteWhileIdle(t *testing.T) {
	rec := NewRecorder(testSampleRate, testChunkSize)
	chunk := &Chunk{Data: make([]int16, testChunkSize)}

	// Writing while idle is a silent no-op so the capture path never branches.
	if err := rec.Write(chunk); err != nil {
		t.Errorf("Write while idle should be a no-op, got %v", err)
	}
	if err := rec.Write(&Chunk{}); err != nil {
		t.Errorf("Write of empty chunk should be a no-op, got %v", err)
	}
}

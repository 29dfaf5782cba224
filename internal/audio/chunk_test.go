// SPDX-License-Identifier: MIT
package audio

import (
	"encoding/binary"
	"testing"
)

func TestChunkPeakHotPath(t *testing.T) {
	tests := []struct {
		desc string
		data []int16
		want int16
	}{
		{"Empty", nil, 0},
		{"Silence", make([]int16, 128), 0},
		{"Positive peak", []int16{10, 300, 20}, 300},
		{"Negative peak", []int16{-500, 100, 20}, 500},
		{"Mixed", []int16{-200, 199, -150}, 200},
		{"Max amplitude", []int16{-32767, 5}, 32767},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			chunk := &Chunk{Data: tt.data}
			if got := chunk.Peak(); got != tt.want {
				t.Errorf("Peak: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestChunkPeakAllocations(t *testing.T) {
	chunk := &Chunk{Data: make([]int16, 2048)}
	for i := range chunk.Data {
		if i%2 == 0 {
			chunk.Data[i] = int16(i % 1000)
		} else {
			chunk.Data[i] = int16(-(i % 1000))
		}
	}

	allocs := testing.AllocsPerRun(100, func() {
		_ = chunk.Peak()
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in Peak, got %.1f", allocs)
	}
}

func TestChunkBytesLittleEndian(t *testing.T) {
	chunk := &Chunk{Data: []int16{1, -1, 256}}
	got := chunk.Bytes()
	if len(got) != 6 {
		t.Fatalf("Bytes length: got %d, want 6", len(got))
	}
	for i, want := range chunk.Data {
		sample := int16(binary.LittleEndian.Uint16(got[i*2:]))
		if sample != want {
			t.Errorf("sample %d: got %d, want %d", i, sample, want)
		}
	}
}

func TestChunkEmpty(t *testing.T) {
	var nilChunk *Chunk
	if !nilChunk.Empty() {
		t.Error("nil chunk should be empty")
	}
	if !(&Chunk{}).Empty() {
		t.Error("zero chunk should be empty")
	}
	if (&Chunk{Data: []int16{1}}).Empty() {
		t.Error("chunk with samples should not be empty")
	}
	if b := (&Chunk{}).Bytes(); b != nil {
		t.Errorf("empty chunk Bytes: got %v, want nil", b)
	}
}

func BenchmarkChunkPeak(b *testing.B) {
	chunk := &Chunk{Data: make([]int16, 8000)}
	for i := range chunk.Data {
		chunk.Data[i] = int16((i % 200) * 100)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		_ = chunk.Peak()
	}
}

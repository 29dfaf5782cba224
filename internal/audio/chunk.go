// SPDX-License-Identifier: MIT
package audio

import (
	"encoding/binary"
	"time"
)

// Chunk is one fixed-size slice of raw PCM samples captured in a single
// read. A chunk is owned by exactly one goroutine at a time: the producer
// until it is enqueued, then the single consumer until it is decoded.
type Chunk struct {
	Data []int16   // 16-bit signed mono PCM samples
	Time time.Time // Capture timestamp
}

// Empty reports whether the chunk carries no samples. Overflow-tolerant
// reads produce empty chunks instead of errors.
func (c *Chunk) Empty() bool {
	return c == nil || len(c.Data) == 0
}

// Bytes returns the samples as little-endian PCM, the wire format the
// decoder consumes.
func (c *Chunk) Bytes() []byte {
	if c.Empty() {
		return nil
	}
	out := make([]byte, len(c.Data)*2)
	for i, s := range c.Data {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// Peak returns the maximum absolute sample amplitude. Branchless so it is
// safe to call per chunk on the capture path without allocations.
func (c *Chunk) Peak() int16 {
	var max int16
	for _, sample := range c.Data {
		mask := sample >> 15
		amplitude := (sample ^ mask) - mask
		diff := amplitude - max
		max += (diff & (diff >> 15)) ^ diff
	}
	return max
}

// SPDX-License-Identifier: MIT
package processor

import (
	"sync/atomic"
	"time"
)

// Statistics is a point-in-time snapshot of the pipeline counters.
type Statistics struct {
	CapturedChunks  uint64        `json:"captured_chunks"`
	RecognizedTexts uint64        `json:"recognized_texts"`
	DroppedChunks   uint64        `json:"dropped_chunks"`
	Errors          uint64        `json:"errors"`
	StartTime       time.Time     `json:"start_time"`
	LastActivity    time.Time     `json:"last_activity"`
	RunningTime     time.Duration `json:"running_time"`
}

// counters holds the live statistics. Workers are preemptive goroutines,
// so every field is atomic; the snapshot is consistent enough for
// monitoring but is not a transactional read.
type counters struct {
	captured   atomic.Uint64
	recognized atomic.Uint64
	dropped    atomic.Uint64
	errors     atomic.Uint64

	startNano    atomic.Int64 // session start, UnixNano; 0 when never started
	stopNano     atomic.Int64 // session stop, UnixNano; 0 while running
	activityNano atomic.Int64 // last voiced chunk or finalized text, UnixNano
}

func (c *counters) markStart(t time.Time) {
	c.startNano.Store(t.UnixNano())
	c.stopNano.Store(0)
	c.activityNano.Store(t.UnixNano())
}

func (c *counters) markStop(t time.Time) {
	c.stopNano.Store(t.UnixNano())
}

func (c *counters) markActivity(t time.Time) {
	c.activityNano.Store(t.UnixNano())
}

func (c *counters) startTime() time.Time {
	return nanoTime(c.startNano.Load())
}

func (c *counters) lastActivity() time.Time {
	return nanoTime(c.activityNano.Load())
}

// reset clears every counter. Called by Cleanup; the statistics lifetime
// is one processor instance.
func (c *counters) reset() {
	c.captured.Store(0)
	c.recognized.Store(0)
	c.dropped.Store(0)
	c.errors.Store(0)
	c.startNano.Store(0)
	c.stopNano.Store(0)
	c.activityNano.Store(0)
}

// snapshot builds a Statistics value from the live counters. RunningTime
// is derived: elapsed since start while the session is live, the fixed
// start-to-stop span once stopped.
func (c *counters) snapshot() Statistics {
	start := c.startNano.Load()
	stop := c.stopNano.Load()

	var running time.Duration
	switch {
	case start == 0:
	case stop == 0:
		running = time.Since(nanoTime(start))
	default:
		running = time.Duration(stop - start)
	}

	return Statistics{
		CapturedChunks:  c.captured.Load(),
		RecognizedTexts: c.recognized.Load(),
		DroppedChunks:   c.dropped.Load(),
		Errors:          c.errors.Load(),
		StartTime:       nanoTime(start),
		LastActivity:    nanoTime(c.activityNano.Load()),
		RunningTime:     running,
	}
}

func nanoTime(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

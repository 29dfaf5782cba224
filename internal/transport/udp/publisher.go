// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	applog "github.com/Pierrekw/voiceinput/internal/log"
)

// Stats is one point-in-time snapshot of the pipeline counters published
// in each packet.
type Stats struct {
	CapturedChunks  uint64
	RecognizedTexts uint64
	DroppedChunks   uint64
	Errors          uint64
}

// SnapshotFunc supplies the current counter values. It is called once per
// tick and must be cheap and safe to call from the publisher goroutine.
type SnapshotFunc func() Stats

// Publisher periodically fetches a statistics snapshot, packs it into a
// fixed binary format, and sends it over UDP. It runs in its own goroutine
// managed by Start and Stop.
type Publisher struct {
	sender   *Sender
	snapshot SnapshotFunc
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex

	sequenceNum  uint32
	packetBuffer *bytes.Buffer // reused across ticks
}

// NewPublisher creates a Publisher sending one packet per interval. An
// invalid interval defaults to one second.
func NewPublisher(interval time.Duration, sender *Sender, snapshot SnapshotFunc) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("publisher: UDP sender cannot be nil")
	}
	if snapshot == nil {
		return nil, fmt.Errorf("publisher: snapshot func cannot be nil")
	}
	if interval <= 0 {
		interval = time.Second
		applog.Warnf("publisher: invalid interval, defaulting to %s", interval)
	}

	return &Publisher{
		sender:       sender,
		snapshot:     snapshot,
		interval:     interval,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Start begins periodic publishing. Safe to call repeatedly; extra calls
// while running are no-ops.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("publisher: Start called but already running")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("publisher: started (interval %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.buildAndSendPacket()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the publisher goroutine to terminate and waits for it.
// Safe to call repeatedly.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}
	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	applog.Infof("publisher: stopped")
	return nil
}

/*
Packet layout (BigEndian, 44 bytes):

| Field            | Type   | Size |
|------------------|--------|------|
| Sequence number  | uint32 | 4    |
| Timestamp (ns)   | int64  | 8    |
| Captured chunks  | uint64 | 8    |
| Recognized texts | uint64 | 8    |
| Dropped chunks   | uint64 | 8    |
| Errors           | uint64 | 8    |
*/

func (p *Publisher) buildAndSendPacket() {
	stats := p.snapshot()

	p.sequenceNum++
	p.packetBuffer.Reset()

	fields := []any{
		p.sequenceNum,
		time.Now().UnixNano(),
		stats.CapturedChunks,
		stats.RecognizedTexts,
		stats.DroppedChunks,
		stats.Errors,
	}
	for _, f := range fields {
		if err := binary.Write(p.packetBuffer, binary.BigEndian, f); err != nil {
			applog.Errorf("publisher: pack error: %v", err)
			return
		}
	}

	if err := p.sender.Send(p.packetBuffer.Bytes()); err != nil {
		applog.Errorf("publisher: send error: %v", err)
	}
}

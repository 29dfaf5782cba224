// SPDX-License-Identifier: MIT
package tts

import (
	"context"
	"sync"

	"github.com/google/uuid"

	applog "github.com/Pierrekw/voiceinput/internal/log"
)

// Request is one queued speech task. Done, if set, runs after playback
// finishes or the request is abandoned.
type Request struct {
	ID       uuid.UUID
	Text     string
	Priority int
	Done     func()
}

// Player serializes speech synthesis playback. Requests queue in priority
// order; a single worker goroutine, started lazily on the first Speak,
// plays them one at a time. Stop hard-cancels the in-flight playback and
// drains everything still queued.
type Player struct {
	synth Synthesizer
	sink  Sink

	mu       sync.Mutex
	queue    *PriorityQueue[Request]
	notify   chan struct{}
	running  bool
	stopping chan struct{}
	workerWG sync.WaitGroup

	// playMu is the playback lock: holding it means a playback is in
	// flight. cancelPlay interrupts that playback.
	playMu     sync.Mutex
	cancelMu   sync.Mutex
	cancelPlay context.CancelFunc
}

// NewPlayer creates a player. The worker is not started until Speak.
func NewPlayer(synth Synthesizer, sink Sink) *Player {
	return &Player{
		synth:  synth,
		sink:   sink,
		queue:  NewPriorityQueue[Request](),
		notify: make(chan struct{}, 1),
	}
}

// Speak enqueues text for playback and returns immediately.
func (p *Player) Speak(text string, priority int) {
	p.SpeakWithCallback(text, priority, nil)
}

// SpeakWithCallback enqueues text and invokes done after the request
// finishes playing (or errors). Fire-and-forget: the caller is never
// blocked on synthesis or playback.
func (p *Player) SpeakWithCallback(text string, priority int, done func()) {
	req := Request{
		ID:       uuid.New(),
		Text:     text,
		Priority: priority,
		Done:     done,
	}

	p.mu.Lock()
	p.queue.Enqueue(req, priority)
	if !p.running {
		p.running = true
		p.stopping = make(chan struct{})
		p.workerWG.Add(1)
		go p.worker(p.stopping)
	}
	p.mu.Unlock()

	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// QueueDepth returns the number of pending requests.
func (p *Player) QueueDepth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Len()
}

// worker serves the queue until stopped.
func (p *Player) worker(stopping chan struct{}) {
	defer p.workerWG.Done()

	for {
		select {
		case <-stopping:
			return
		case <-p.notify:
		}

		for {
			select {
			case <-stopping:
				return
			default:
			}

			p.mu.Lock()
			req, ok := p.queue.Dequeue()
			p.mu.Unlock()
			if !ok {
				break
			}
			p.playOne(req)
		}
	}
}

// playOne runs one synthesis + playback under the playback lock. If a
// playback is somehow already in flight the request is skipped, never
// played concurrently.
func (p *Player) playOne(req Request) {
	if !p.playMu.TryLock() {
		applog.Warnf("tts: playback already in flight, skipping request %s", req.ID)
		return
	}
	defer p.playMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	p.cancelMu.Lock()
	p.cancelPlay = cancel
	p.cancelMu.Unlock()

	defer func() {
		p.cancelMu.Lock()
		p.cancelPlay = nil
		p.cancelMu.Unlock()
		cancel()
		if req.Done != nil {
			req.Done()
		}
	}()

	samples, err := p.synth.Synthesize(ctx, req.Text)
	if err != nil {
		if ctx.Err() == nil {
			applog.Errorf("tts: synthesis failed for request %s: %v", req.ID, err)
		}
		return
	}

	if err := p.sink.Play(ctx, samples); err != nil {
		if ctx.Err() == nil {
			applog.Errorf("tts: playback failed for request %s: %v", req.ID, err)
		}
	}
}

// Stop cancels the in-flight playback, drains the pending queue, and
// stops the worker. A later Speak starts a fresh worker. Idempotent.
func (p *Player) Stop() {
	p.mu.Lock()
	dropped := p.queue.Drain()
	stopping := p.stopping
	wasRunning := p.running
	p.running = false
	p.stopping = nil
	p.mu.Unlock()

	// Hard cancellation: synthesis or playback may be mid-flight.
	p.cancelMu.Lock()
	if p.cancelPlay != nil {
		p.cancelPlay()
	}
	p.cancelMu.Unlock()

	if wasRunning {
		close(stopping)
		p.workerWG.Wait()
	}

	if dropped > 0 {
		applog.Infof("tts: dropped %d pending requests on stop", dropped)
	}
}

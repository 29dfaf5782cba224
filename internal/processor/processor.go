// SPDX-License-Identifier: MIT
/*
Package processor orchestrates the capture, recognition, and monitor
workers around a bounded audio channel. It owns the lifecycle state
machine, the pause-gate and stop-flag signaling, the callback registries,
and the session statistics.

Concurrency model:
- One control lock serializes Initialize/Start/Stop/Pause/Resume/Cleanup
- The audio channel has exactly one producer (capture worker) and one
  consumer (recognition worker), so decode order matches capture order
- Workers poll the stop-flag and pause-gate at every iteration boundary;
  stop latency is bounded by the channel-receive timeout and the pause
  polling interval
- Per-iteration faults are logged and counted, never propagated; control
  operations report failure through return values and never panic
*/
package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Pierrekw/voiceinput/internal/asr"
	"github.com/Pierrekw/voiceinput/internal/audio"
	"github.com/Pierrekw/voiceinput/internal/config"
	applog "github.com/Pierrekw/voiceinput/internal/log"
	"github.com/Pierrekw/voiceinput/internal/metrics"
	"github.com/Pierrekw/voiceinput/internal/transport"
	"github.com/Pierrekw/voiceinput/internal/tts"
	"github.com/Pierrekw/voiceinput/internal/vad"
)

// Processor is the concurrency orchestration engine. At most one capture
// session runs per instance.
type Processor struct {
	cfg     *config.Config
	source  audio.Source
	decoder asr.Decoder

	// Optional collaborators, wired through Options.
	player   *tts.Player
	recorder *audio.Recorder
	detector *vad.Detector
	sink     transport.Transport
	metrics  *metrics.Metrics

	// ctl serializes the public control operations end to end. The state
	// value is additionally atomic so GetState never waits on a slow
	// operation holding ctl.
	ctl         sync.Mutex
	state       atomic.Int32
	initialized bool
	cleaned     bool

	stopFlag  flag
	pauseGate gate

	chunks chan *audio.Chunk
	stopCh chan struct{}
	wg     sync.WaitGroup

	// monitorInterval is the monitor worker tick. Defaults to one second.
	monitorInterval time.Duration

	stats counters

	recognitionCBs registry[RecognitionResult]
	partialCBs     registry[string]
	stateCBs       registry[State]
}

// Option wires an optional collaborator into a Processor.
type Option func(*Processor)

// WithPlayer attaches a speech synthesis player, stopped on Cleanup.
func WithPlayer(p *tts.Player) Option {
	return func(proc *Processor) { proc.player = p }
}

// WithRecorder attaches a session WAV recorder, started and stopped with
// each capture session.
func WithRecorder(r *audio.Recorder) Option {
	return func(proc *Processor) { proc.recorder = r }
}

// WithDetector attaches a voice activity detector. Without one, every
// captured chunk counts as activity.
func WithDetector(d *vad.Detector) Option {
	return func(proc *Processor) { proc.detector = d }
}

// WithTransport attaches a transcript sink. Every finalized result is
// sent; send errors are logged, never propagated.
func WithTransport(t transport.Transport) Option {
	return func(proc *Processor) { proc.sink = t }
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(proc *Processor) { proc.metrics = m }
}

// NewProcessor creates a Processor in the IDLE state. The source and
// decoder are required; nothing is acquired until Initialize.
func NewProcessor(cfg *config.Config, source audio.Source, decoder asr.Decoder, opts ...Option) *Processor {
	p := &Processor{
		cfg:             cfg,
		source:          source,
		decoder:         decoder,
		monitorInterval: time.Duration(config.DefaultMonitorSeconds) * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// setState publishes a state transition. Callers hold ctl.
func (p *Processor) setState(s State) {
	prev := p.GetState()
	if prev == s {
		return
	}
	p.state.Store(int32(s))
	applog.Debugf("processor: state %s -> %s", prev, s)
	p.metrics.SetState(int(s))
	p.stateCBs.dispatch("state", s)
}

// GetState returns the current lifecycle state.
func (p *Processor) GetState() State {
	return State(p.state.Load())
}

// GetStatistics returns a point-in-time snapshot of the session counters
// plus the derived running time.
func (p *Processor) GetStatistics() Statistics {
	return p.stats.snapshot()
}

// AddRecognitionCallback registers an observer for finalized results.
// Observers fire synchronously from the recognition worker, in
// registration order, with per-observer panic isolation.
func (p *Processor) AddRecognitionCallback(fn func(RecognitionResult)) {
	p.recognitionCBs.add(fn)
}

// AddPartialCallback registers an observer for partial hypotheses,
// dispatched between finalized results when partial emission is enabled.
func (p *Processor) AddPartialCallback(fn func(string)) {
	p.partialCBs.add(fn)
}

// AddStateChangeCallback registers an observer for state transitions.
func (p *Processor) AddStateChangeCallback(fn func(State)) {
	p.stateCBs.add(fn)
}

// Initialize acquires the input device and loads the decoder model. It is
// idempotent; a second call on an initialized processor returns true
// without repeating the work. On failure every partially acquired
// resource is released and the processor moves to ERROR.
func (p *Processor) Initialize(ctx context.Context) bool {
	p.ctl.Lock()
	defer p.ctl.Unlock()

	if p.initialized {
		return true
	}
	if st := p.GetState(); st != StateIdle {
		applog.Warnf("processor: Initialize rejected in state %s", st)
		return false
	}

	p.setState(StateInitializing)

	if err := p.source.Open(); err != nil {
		applog.Errorf("processor: audio source open failed: %v", err)
		p.setState(StateError)
		return false
	}
	if err := p.decoder.Initialize(ctx, p.cfg.Recognition.ModelPath); err != nil {
		applog.Errorf("processor: decoder initialization failed: %v", err)
		p.source.Close()
		p.setState(StateError)
		return false
	}

	p.initialized = true
	p.cleaned = false
	p.setState(StateIdle)
	applog.Infof("processor: initialized (model=%q)", p.cfg.Recognition.ModelPath)
	return true
}

// StartRecognition starts the capture, recognition, and monitor workers.
// Valid only from IDLE or STOPPED; any other source state yields a
// failure result and leaves the processor unchanged.
func (p *Processor) StartRecognition() OperationResult {
	p.ctl.Lock()
	defer p.ctl.Unlock()

	if !p.initialized {
		return failResult("processor is not initialized")
	}
	if st := p.GetState(); !st.startable() {
		return failResult(fmt.Sprintf("cannot start recognition from state %s", st))
	}

	queue := p.cfg.Recognition.QueueSize
	if queue <= 0 {
		queue = config.DefaultQueueSize
	}
	p.chunks = make(chan *audio.Chunk, queue)
	p.stopCh = make(chan struct{})
	p.stopFlag.Clear()
	p.pauseGate.Open()
	p.stats.markStart(time.Now())

	p.startSessionRecording()

	p.wg.Add(3)
	go p.runWorker("capture", p.captureLoop)
	go p.runWorker("recognition", p.recognitionLoop)
	go p.runWorker("monitor", p.monitorLoop)

	p.setState(StateRunning)
	applog.Infof("processor: recognition started (queue=%d backpressure=%s)",
		queue, p.cfg.Recognition.Backpressure)
	return okResult("recognition started")
}

// StopRecognition stops the session: it sets the stop flag, waits for all
// three workers to exit, and moves to STOPPED. Calling it when no session
// is active is a successful no-op.
func (p *Processor) StopRecognition() OperationResult {
	p.ctl.Lock()
	defer p.ctl.Unlock()
	return p.stopLocked()
}

// stopLocked is StopRecognition with ctl already held; Cleanup shares it.
func (p *Processor) stopLocked() OperationResult {
	st := p.GetState()
	if st == StateIdle || st == StateStopped {
		return okResult("recognition already stopped")
	}
	if !st.active() {
		return failResult(fmt.Sprintf("cannot stop recognition from state %s", st))
	}

	p.setState(StateStopping)
	p.stopFlag.Set()
	close(p.stopCh)
	p.wg.Wait()

	if p.recorder != nil && p.recorder.Recording() {
		if err := p.recorder.Stop(); err != nil {
			applog.Warnf("processor: session recording stop failed: %v", err)
		}
	}

	p.stats.markStop(time.Now())
	p.metrics.SetQueueResident(len(p.chunks))
	p.setState(StateStopped)
	applog.Infof("processor: recognition stopped")
	return okResult("recognition stopped")
}

// PauseRecognition closes the pause gate. Workers stay alive but stop
// producing and consuming chunks. Valid only from RUNNING.
func (p *Processor) PauseRecognition() bool {
	p.ctl.Lock()
	defer p.ctl.Unlock()

	if st := p.GetState(); st != StateRunning {
		applog.Debugf("processor: pause rejected in state %s", st)
		return false
	}
	p.pauseGate.Close()
	p.setState(StatePaused)
	return true
}

// ResumeRecognition reopens the pause gate. Valid only from PAUSED.
func (p *Processor) ResumeRecognition() bool {
	p.ctl.Lock()
	defer p.ctl.Unlock()

	if st := p.GetState(); st != StatePaused {
		applog.Debugf("processor: resume rejected in state %s", st)
		return false
	}
	p.pauseGate.Open()
	p.setState(StateRunning)
	return true
}

// Cleanup stops an active session, stops the player, and releases the
// audio source and decoder. Statistics reset with it. Idempotent; a
// second call is a no-op.
func (p *Processor) Cleanup() {
	p.ctl.Lock()
	defer p.ctl.Unlock()

	if p.cleaned {
		return
	}

	if p.GetState().active() {
		p.stopLocked()
	}
	if p.player != nil {
		p.player.Stop()
	}
	if err := p.source.Close(); err != nil {
		applog.Warnf("processor: source close failed: %v", err)
	}
	if err := p.decoder.Close(); err != nil {
		applog.Warnf("processor: decoder close failed: %v", err)
	}
	if p.sink != nil {
		if err := p.sink.Close(); err != nil {
			applog.Warnf("processor: transport close failed: %v", err)
		}
	}

	p.stats.reset()
	p.initialized = false
	p.cleaned = true
	applog.Infof("processor: cleaned up")
}

// startSessionRecording opens a timestamped WAV file when a recorder is
// attached. Recording failures degrade the session, never abort it.
func (p *Processor) startSessionRecording() {
	if p.recorder == nil {
		return
	}
	dir := p.cfg.Recording.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		applog.Warnf("processor: recording dir: %v", err)
		return
	}
	name := filepath.Join(dir, fmt.Sprintf("session-%s.wav", time.Now().Format("20060102-150405")))
	if err := p.recorder.Start(name); err != nil {
		applog.Warnf("processor: session recording start failed: %v", err)
	}
}

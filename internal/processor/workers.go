// SPDX-License-Identifier: MIT
package processor

import (
	"time"

	"github.com/Pierrekw/voiceinput/internal/asr"
	"github.com/Pierrekw/voiceinput/internal/audio"
	"github.com/Pierrekw/voiceinput/internal/config"
	applog "github.com/Pierrekw/voiceinput/internal/log"

	"github.com/google/uuid"
)

// runWorker runs one worker loop with join isolation: a panicking worker
// is logged and counted, and its exit never blocks joining the others.
func (p *Processor) runWorker(name string, loop func()) {
	defer p.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			p.stats.errors.Add(1)
			p.metrics.RecordWorkerError()
			applog.Errorf("processor: %s worker panicked: %v", name, r)
		}
	}()

	applog.Debugf("processor: %s worker started", name)
	loop()
	applog.Debugf("processor: %s worker exited", name)
}

// captureLoop reads fixed-size chunks from the source and enqueues them
// on the bounded audio channel. With drop backpressure a full channel
// discards the chunk and counts it; with block backpressure the send
// waits until space frees or the session stops.
func (p *Processor) captureLoop() {
	pausePoll := millisOr(p.cfg.Recognition.PausePollMillis, config.DefaultPausePollMillis)
	block := p.cfg.Recognition.Backpressure == config.BackpressureBlock

	for !p.stopFlag.IsSet() {
		if !p.pauseGate.IsOpen() {
			time.Sleep(pausePoll)
			continue
		}

		chunk, err := p.source.ReadChunk()
		if err != nil {
			p.stats.errors.Add(1)
			p.metrics.RecordWorkerError()
			applog.Warnf("processor: chunk read failed: %v", err)
			time.Sleep(pausePoll)
			continue
		}
		if chunk.Empty() {
			continue
		}

		p.stats.captured.Add(1)
		p.metrics.RecordChunkCaptured()

		if p.recorder != nil && p.recorder.Recording() {
			if err := p.recorder.Write(chunk); err != nil {
				applog.Warnf("processor: session recording write failed: %v", err)
			}
		}
		if p.detector == nil || p.detector.Active(chunk) {
			p.stats.markActivity(chunk.Time)
		}

		if block {
			select {
			case p.chunks <- chunk:
			case <-p.stopCh:
				// The in-hand chunk is abandoned at shutdown; count it
				// so the conservation accounting stays exact.
				p.stats.dropped.Add(1)
				p.metrics.RecordChunkDropped()
				return
			}
		} else {
			select {
			case p.chunks <- chunk:
			default:
				p.stats.dropped.Add(1)
				p.metrics.RecordChunkDropped()
				applog.Warnf("processor: audio channel full, dropping chunk")
			}
		}
		p.metrics.SetQueueResident(len(p.chunks))
	}
}

// recognitionLoop drains the audio channel and feeds the decoder. The
// receive is timeout-bounded so the stop flag stays observed even when
// the channel is empty.
func (p *Processor) recognitionLoop() {
	queuePoll := millisOr(p.cfg.Recognition.QueuePollMillis, config.DefaultQueuePollMillis)
	pausePoll := millisOr(p.cfg.Recognition.PausePollMillis, config.DefaultPausePollMillis)

	for !p.stopFlag.IsSet() {
		if !p.pauseGate.IsOpen() {
			time.Sleep(pausePoll)
			continue
		}

		select {
		case chunk := <-p.chunks:
			p.processChunk(chunk)
			p.metrics.SetQueueResident(len(p.chunks))
		case <-p.stopCh:
			return
		case <-time.After(queuePoll):
		}
	}
}

// processChunk runs one decode iteration. Any fault, including a panic
// out of the decoder, is contained here: logged, counted, and swallowed.
func (p *Processor) processChunk(chunk *audio.Chunk) {
	defer func() {
		if r := recover(); r != nil {
			p.stats.errors.Add(1)
			p.metrics.RecordWorkerError()
			applog.Errorf("processor: recognition iteration panicked: %v", r)
		}
	}()

	if p.cfg.Recognition.EmitPartials && p.partialCBs.len() > 0 {
		if text, ok := p.decoder.Partial(); ok && text != "" {
			p.partialCBs.dispatch("partial", text)
		}
	}

	started := time.Now()
	text, final, err := p.decoder.Decode(chunk.Data)
	if err != nil {
		p.stats.errors.Add(1)
		p.metrics.RecordWorkerError()
		applog.Warnf("processor: decode failed: %v", err)
		return
	}
	if !final || text == "" {
		return
	}

	result := RecognitionResult{
		ID:        uuid.New(),
		Text:      text,
		Timestamp: time.Now(),
	}
	if cr, ok := p.decoder.(asr.ConfidenceReporter); ok {
		result.Confidence = cr.Confidence()
	}

	p.stats.recognized.Add(1)
	p.stats.markActivity(result.Timestamp)
	p.metrics.RecordTextRecognized(time.Since(started).Seconds())

	p.recognitionCBs.dispatch("recognition", result)

	if p.sink != nil {
		if err := p.sink.Send(result); err != nil {
			applog.Warnf("processor: transport send failed: %v", err)
		}
	}
}

// monitorLoop watches the session clock: it auto-stops once the session
// timeout elapses and warns when no activity is seen for the configured
// inactivity span.
func (p *Processor) monitorLoop() {
	timeout := secondsOr(p.cfg.Recognition.TimeoutSeconds)
	inactivity := secondsOr(p.cfg.Recognition.InactivitySeconds)

	ticker := time.NewTicker(p.monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			if timeout > 0 && time.Since(p.stats.startTime()) >= timeout {
				applog.Infof("processor: session timeout after %s, stopping", timeout)
				// Stop from a fresh goroutine: StopRecognition joins all
				// workers, this one included.
				go p.StopRecognition()
				return
			}
			if inactivity > 0 && time.Since(p.stats.lastActivity()) >= inactivity {
				applog.Warnf("processor: no activity for over %s", inactivity)
			}
		}
	}
}

func millisOr(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Millisecond
}

func secondsOr(v int) time.Duration {
	if v <= 0 {
		return 0
	}
	return time.Duration(v) * time.Second
}

// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pierrekw/voiceinput/cmd"
	"github.com/Pierrekw/voiceinput/internal/asr"
	"github.com/Pierrekw/voiceinput/internal/audio"
	"github.com/Pierrekw/voiceinput/internal/config"
	applog "github.com/Pierrekw/voiceinput/internal/log"
	"github.com/Pierrekw/voiceinput/internal/metrics"
	"github.com/Pierrekw/voiceinput/internal/processor"
	"github.com/Pierrekw/voiceinput/internal/transport"
	"github.com/Pierrekw/voiceinput/internal/transport/udp"
	"github.com/Pierrekw/voiceinput/internal/tts"
	"github.com/Pierrekw/voiceinput/internal/vad"
	"github.com/Pierrekw/voiceinput/pkg/build"
)

// main wires the pipeline and runs it until a termination signal arrives
// or the session auto-stops. The flow has three phases:
//
// 1. Startup: build info, configuration, PortAudio, collaborator wiring
// 2. Session: Initialize + StartRecognition, transcripts to stdout and
//    the configured transports
// 3. Shutdown: signal or timeout, then Cleanup
func main() {
	build.Initialize()

	cfg, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("configuration: %v", err)
	}
	if cfg == nil {
		// Help or completion output already handled.
		return
	}

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}

	// Test mode never touches the PortAudio subsystem.
	if !cfg.TestMode {
		if err := audio.Initialize(); err != nil {
			applog.Fatalf("portaudio: %v", err)
		}
		defer audio.Terminate()
	}

	if cfg.Command == "list" {
		if err := audio.ListDevices(); err != nil {
			applog.Fatalf("list devices: %v", err)
		}
		return
	}

	proc, shutdown, err := buildPipeline(cfg)
	if err != nil {
		applog.Fatalf("pipeline: %v", err)
	}
	defer shutdown()

	// Stop the process when the session auto-stops (timeout) as well as
	// on a signal.
	stopped := make(chan struct{}, 1)
	proc.AddStateChangeCallback(func(s processor.State) {
		if s == processor.StateStopped {
			select {
			case stopped <- struct{}{}:
			default:
			}
		}
	})
	proc.AddRecognitionCallback(func(r processor.RecognitionResult) {
		fmt.Println(r.Text)
	})

	initCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if !proc.Initialize(initCtx) {
		applog.Fatalf("pipeline initialization failed")
	}

	if res := proc.StartRecognition(); !res.Success {
		applog.Fatalf("start recognition: %s", res.ErrorMessage)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		applog.Infof("termination signal received")
	case <-stopped:
		applog.Infof("session stopped")
	}

	proc.Cleanup()

	stats := proc.GetStatistics()
	applog.Infof("session: captured=%d recognized=%d dropped=%d errors=%d",
		stats.CapturedChunks, stats.RecognizedTexts, stats.DroppedChunks, stats.Errors)
}

// buildPipeline constructs the source, decoder, and optional collaborators
// from the configuration. The returned shutdown func releases everything
// the processor does not own.
func buildPipeline(cfg *config.Config) (*processor.Processor, func(), error) {
	var closers []func()
	shutdown := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var source audio.Source
	var decoder asr.Decoder
	if cfg.TestMode {
		// Deterministic pipeline: paced sine chunks, scripted utterances.
		pace := time.Duration(cfg.Audio.ChunkSize) * time.Second / time.Duration(cfg.Audio.SampleRate)
		source = audio.NewSyntheticSource(cfg.Audio.ChunkSize, cfg.Audio.SampleRate, pace)
		decoder = asr.NewScriptedDecoder(cfg.Audio.SampleRate)
	} else {
		if cfg.Recognition.ServerURL == "" {
			return nil, nil, fmt.Errorf("recognition.server_url is required outside test mode")
		}
		source = audio.NewDeviceSource(cfg.Audio)
		decoder = asr.NewStreamDecoder(cfg.Recognition.ServerURL)
	}

	opts := []processor.Option{}

	if cfg.Recording.Enabled {
		opts = append(opts, processor.WithRecorder(
			audio.NewRecorder(cfg.Audio.SampleRate, cfg.Audio.ChunkSize)))
	}

	if cfg.VAD.Enabled {
		detector, err := vad.NewDetector(cfg.VAD, cfg.Audio.SampleRate)
		if err != nil {
			return nil, nil, fmt.Errorf("vad: %w", err)
		}
		opts = append(opts, processor.WithDetector(detector))
	}

	if cfg.TTS.Enabled {
		var synth tts.Synthesizer
		if cfg.TestMode || cfg.TTS.Endpoint == "" {
			synth = &tts.SilentSynthesizer{SampleRate: cfg.Audio.SampleRate}
		} else {
			synth = tts.NewHTTPSynthesizer(cfg.TTS)
		}
		player := tts.NewPlayer(synth, tts.NewDeviceSink(cfg.TTS.OutputDevice, cfg.Audio.SampleRate))
		opts = append(opts, processor.WithPlayer(player))
	}

	if cfg.Transport.WSEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.Transport.WSAddr)
		if err != nil {
			shutdown()
			return nil, nil, fmt.Errorf("websocket transport: %w", err)
		}
		opts = append(opts, processor.WithTransport(ws))
	}

	var m *metrics.Metrics
	if cfg.Metrics.Listen != "" {
		m = metrics.NewMetrics()
		srv := m.Serve(cfg.Metrics.Listen)
		closers = append(closers, func() { srv.Close() })
		opts = append(opts, processor.WithMetrics(m))
	}

	proc := processor.NewProcessor(cfg, source, decoder, opts...)

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTarget)
		if err != nil {
			shutdown()
			return nil, nil, fmt.Errorf("udp transport: %w", err)
		}
		interval := time.Duration(cfg.Transport.UDPIntervalMS) * time.Millisecond
		pub, err := udp.NewPublisher(interval, sender, func() udp.Stats {
			s := proc.GetStatistics()
			return udp.Stats{
				CapturedChunks:  s.CapturedChunks,
				RecognizedTexts: s.RecognizedTexts,
				DroppedChunks:   s.DroppedChunks,
				Errors:          s.Errors,
			}
		})
		if err != nil {
			sender.Close()
			shutdown()
			return nil, nil, fmt.Errorf("udp publisher: %w", err)
		}
		pub.Start()
		closers = append(closers, func() {
			pub.Stop()
			sender.Close()
		})
	}

	return proc, shutdown, nil
}

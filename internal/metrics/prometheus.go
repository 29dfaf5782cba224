// SPDX-License-Identifier: MIT
// Package metrics exposes pipeline instrumentation as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applog "github.com/Pierrekw/voiceinput/internal/log"
)

// Metrics contains all Prometheus metrics for the voice input pipeline.
// All Record/Set methods are safe on a nil receiver so callers can wire
// metrics optionally.
type Metrics struct {
	registry *prometheus.Registry

	// Capture metrics
	ChunksCaptured prometheus.Counter
	ChunksDropped  prometheus.Counter

	// Recognition metrics
	TextsRecognized prometheus.Counter
	WorkerErrors    prometheus.Counter
	DecodeDuration  prometheus.Histogram

	// Pipeline state
	State         prometheus.Gauge
	QueueResident prometheus.Gauge

	// Playback metrics
	TTSQueueDepth prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics on a private
// registry, so repeated construction never collides.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ChunksCaptured: factory.NewCounter(prometheus.CounterOpts{
			Name: "voiceinput_chunks_captured_total",
			Help: "Total number of audio chunks read from the input device",
		}),
		ChunksDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "voiceinput_chunks_dropped_total",
			Help: "Total number of chunks dropped because the audio channel was full",
		}),

		TextsRecognized: factory.NewCounter(prometheus.CounterOpts{
			Name: "voiceinput_texts_recognized_total",
			Help: "Total number of finalized recognition results",
		}),
		WorkerErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "voiceinput_worker_errors_total",
			Help: "Total number of errors swallowed at worker iteration boundaries",
		}),
		DecodeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voiceinput_decode_duration_seconds",
			Help:    "Time spent in one streaming decode call",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}),

		State: factory.NewGauge(prometheus.GaugeOpts{
			Name: "voiceinput_processor_state",
			Help: "Current processor state as its numeric code",
		}),
		QueueResident: factory.NewGauge(prometheus.GaugeOpts{
			Name: "voiceinput_audio_queue_resident",
			Help: "Chunks currently resident in the bounded audio channel",
		}),

		TTSQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "voiceinput_tts_queue_depth",
			Help: "Pending requests in the speech synthesis queue",
		}),
	}
}

// RecordChunkCaptured increments the captured chunk counter.
func (m *Metrics) RecordChunkCaptured() {
	if m == nil {
		return
	}
	m.ChunksCaptured.Inc()
}

// RecordChunkDropped increments the dropped chunk counter.
func (m *Metrics) RecordChunkDropped() {
	if m == nil {
		return
	}
	m.ChunksDropped.Inc()
}

// RecordTextRecognized records one finalized result and its decode latency.
func (m *Metrics) RecordTextRecognized(decodeSeconds float64) {
	if m == nil {
		return
	}
	m.TextsRecognized.Inc()
	m.DecodeDuration.Observe(decodeSeconds)
}

// RecordWorkerError increments the swallowed worker error counter.
func (m *Metrics) RecordWorkerError() {
	if m == nil {
		return
	}
	m.WorkerErrors.Inc()
}

// SetState publishes the processor state code.
func (m *Metrics) SetState(code int) {
	if m == nil {
		return
	}
	m.State.Set(float64(code))
}

// SetQueueResident publishes the current audio channel occupancy.
func (m *Metrics) SetQueueResident(n int) {
	if m == nil {
		return
	}
	m.QueueResident.Set(float64(n))
}

// SetTTSQueueDepth publishes the synthesis queue depth.
func (m *Metrics) SetTTSQueueDepth(n int) {
	if m == nil {
		return
	}
	m.TTSQueueDepth.Set(float64(n))
}

// Handler returns an HTTP handler serving the metrics exposition.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts a metrics HTTP server on addr. It returns the server so the
// caller can shut it down; the listener runs on its own goroutine.
func (m *Metrics) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		applog.Infof("metrics: serving on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("metrics: server error: %v", err)
		}
	}()
	return srv
}

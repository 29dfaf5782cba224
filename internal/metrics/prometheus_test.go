// SPDX-License-Identifier: MIT
package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAccumulate(t *testing.T) {
	m := NewMetrics()

	m.RecordChunkCaptured()
	m.RecordChunkCaptured()
	m.RecordChunkDropped()
	m.RecordTextRecognized(0.05)
	m.RecordWorkerError()
	m.SetState(2)
	m.SetTTSQueueDepth(3)

	if got := testutil.ToFloat64(m.ChunksCaptured); got != 2 {
		t.Errorf("chunks captured: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ChunksDropped); got != 1 {
		t.Errorf("chunks dropped: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TextsRecognized); got != 1 {
		t.Errorf("texts recognized: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.State); got != 2 {
		t.Errorf("state gauge: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.TTSQueueDepth); got != 3 {
		t.Errorf("tts queue depth: got %v, want 3", got)
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordChunkCaptured()
	m.RecordChunkDropped()
	m.RecordTextRecognized(0)
	m.RecordWorkerError()
	m.SetState(0)
	m.SetQueueResident(0)
	m.SetTTSQueueDepth(0)
}

// Repeated construction must not collide on a shared registry.
func TestIndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.RecordChunkCaptured()

	if got := testutil.ToFloat64(b.ChunksCaptured); got != 0 {
		t.Errorf("registries shared state: got %v, want 0", got)
	}
}

func TestHandlerExposition(t *testing.T) {
	m := NewMetrics()
	m.RecordChunkCaptured()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("exposition status: got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "voiceinput_chunks_captured_total 1") {
		t.Errorf("exposition missing captured counter:\n%s", body)
	}
}

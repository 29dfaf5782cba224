// SPDX-License-Identifier: MIT
package asr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
)

// fakeServer is a minimal recognition server: it answers every audio frame
// with a scripted sequence of events.
func fakeServer(t *testing.T, events []serverEvent) *httptest.Server {
	t.Helper()
	upgrader := gws.Upgrader{}
	next := 0

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		for {
			mt, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if mt != gws.BinaryMessage {
				continue
			}
			if next < len(events) {
				payload, _ := json.Marshal(events[next])
				next++
				if err := conn.WriteMessage(gws.TextMessage, payload); err != nil {
					return
				}
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamDecoderFinalDelivery(t *testing.T) {
	srv := fakeServer(t, []serverEvent{
		{Type: "partial", Text: "hel"},
		{Type: "final", Text: "hello world", Confidence: 0.9},
	})
	defer srv.Close()

	d := NewStreamDecoder(wsURL(srv))
	if err := d.Initialize(context.Background(), "model-base"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer d.Close()

	chunk := make([]int16, 160)

	// First chunk triggers the partial.
	if _, final, err := d.Decode(chunk); err != nil || final {
		t.Fatalf("first Decode: final=%v err=%v", final, err)
	}

	waitFor(t, func() bool {
		p, ok := d.Partial()
		return ok && p == "hel"
	}, "partial hypothesis")

	// Second chunk triggers the final; it surfaces on a subsequent Decode.
	if _, _, err := d.Decode(chunk); err != nil {
		t.Fatalf("second Decode failed: %v", err)
	}

	var text string
	waitFor(t, func() bool {
		var final bool
		var err error
		text, final, err = d.Decode(nil)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		return final
	}, "finalized text")

	if text != "hello world" {
		t.Errorf("final text: got %q, want %q", text, "hello world")
	}
	if d.Confidence() != 0.9 {
		t.Errorf("confidence: got %f, want 0.9", d.Confidence())
	}

	// The final clears the partial hypothesis.
	if _, ok := d.Partial(); ok {
		t.Error("partial should be cleared after a final")
	}
}

func TestStreamDecoderInitializeErrors(t *testing.T) {
	d := NewStreamDecoder("ws://127.0.0.1:1/unreachable")
	err := d.Initialize(context.Background(), "")
	if err == nil {
		t.Fatal("expected dial error")
	}
	if !strings.Contains(err.Error(), ErrModelLoad.Error()) {
		t.Errorf("error should wrap ErrModelLoad: %v", err)
	}
}

func TestStreamDecoderDecodeBeforeInitialize(t *testing.T) {
	d := NewStreamDecoder("ws://example.invalid")
	if _, _, err := d.Decode(make([]int16, 10)); err == nil {
		t.Error("expected error decoding before Initialize")
	}
}

func TestStreamDecoderCloseIdempotent(t *testing.T) {
	srv := fakeServer(t, nil)
	defer srv.Close()

	d := NewStreamDecoder(wsURL(srv))
	if err := d.Initialize(context.Background(), ""); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

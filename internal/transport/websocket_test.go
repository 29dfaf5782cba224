// SPDX-License-Identifier: MIT
package transport

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type testResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

func dialSubscriber(t *testing.T, wst *WebSocketTransport) *websocket.Conn {
	t.Helper()
	url := "ws://" + wst.Addr() + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketBroadcast(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewWebSocketTransport: %v", err)
	}
	defer wst.Close()

	a := dialSubscriber(t, wst)
	b := dialSubscriber(t, wst)

	sent := testResult{Text: "hello world", Confidence: 0.9}
	if err := wst.Send(sent); err != nil {
		t.Fatalf("Send: %v", err)
	}

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got testResult
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("subscriber read: %v", err)
		}
		if got != sent {
			t.Errorf("broadcast payload: got %+v, want %+v", got, sent)
		}
	}
}

func TestWebSocketSendNeverBlocks(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewWebSocketTransport: %v", err)
	}
	defer wst.Close()

	// No subscribers connected; flooding past the channel capacity must
	// return promptly rather than block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			wst.Send(testResult{Text: "flood"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked on a full broadcast channel")
	}
}

func TestWebSocketBadAddr(t *testing.T) {
	if _, err := NewWebSocketTransport("256.0.0.1:bad"); err == nil {
		t.Error("expected error for unusable listen address")
	}
}

func TestLoggingTransport(t *testing.T) {
	lt := NewLoggingTransport()
	if err := lt.Send(testResult{Text: "x"}); err != nil {
		t.Errorf("Send: %v", err)
	}
	if err := lt.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

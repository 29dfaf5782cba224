// SPDX-License-Identifier: MIT
package asr

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	gws "github.com/gorilla/websocket"

	applog "github.com/Pierrekw/voiceinput/internal/log"
)

// finalEvent is one finalized utterance received from the server.
type finalEvent struct {
	Text       string
	Confidence float64
}

// serverEvent is the wire shape of recognition server messages.
type serverEvent struct {
	Type       string  `json:"type"` // "partial" or "final"
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// StreamDecoder ships PCM frames to a recognition server over WebSocket
// and consumes partial/final events on a reader goroutine. Decode never
// blocks on the server: finals are buffered and returned on the next call.
type StreamDecoder struct {
	serverURL string

	mu          sync.Mutex
	conn        *gws.Conn
	initialized bool
	partial     string
	hasPartial  bool
	confidence  float64

	finals   chan finalEvent
	readDone chan struct{}
}

// NewStreamDecoder creates a decoder client for the given WebSocket URL.
// No connection is made until Initialize.
func NewStreamDecoder(serverURL string) *StreamDecoder {
	return &StreamDecoder{serverURL: serverURL}
}

// Initialize dials the recognition server and starts the reader goroutine.
// The model path is passed to the server as a query parameter so the
// heavyweight load happens server-side exactly once. Idempotent.
func (d *StreamDecoder) Initialize(ctx context.Context, modelPath string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return nil
	}

	u, err := url.Parse(d.serverURL)
	if err != nil {
		return fmt.Errorf("%w: bad server URL %q: %v", ErrModelLoad, d.serverURL, err)
	}
	if modelPath != "" {
		q := u.Query()
		q.Set("model", modelPath)
		u.RawQuery = q.Encode()
	}

	conn, _, err := gws.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrModelLoad, u.String(), err)
	}

	d.conn = conn
	d.finals = make(chan finalEvent, 16)
	d.readDone = make(chan struct{})
	d.initialized = true

	go d.readLoop(conn, d.finals, d.readDone)

	applog.Infof("asr: connected to recognition server %s", u.Host)
	return nil
}

// readLoop consumes server events until the connection closes. Partials
// overwrite the current hypothesis; finals are queued for Decode to pick
// up. A full final buffer drops the oldest event to keep the reader live.
func (d *StreamDecoder) readLoop(conn *gws.Conn, finals chan finalEvent, done chan struct{}) {
	defer close(done)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			applog.Debugf("asr: reader stopped: %v", err)
			return
		}

		var ev serverEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			applog.Warnf("asr: malformed server event: %v", err)
			continue
		}

		switch ev.Type {
		case "partial":
			d.mu.Lock()
			d.partial = ev.Text
			d.hasPartial = ev.Text != ""
			d.mu.Unlock()
		case "final":
			if ev.Text == "" {
				continue
			}
			select {
			case finals <- finalEvent{Text: ev.Text, Confidence: ev.Confidence}:
			default:
				select {
				case <-finals:
				default:
				}
				finals <- finalEvent{Text: ev.Text, Confidence: ev.Confidence}
				applog.Warnf("asr: final event buffer full, dropped oldest")
			}
			d.mu.Lock()
			d.partial = ""
			d.hasPartial = false
			d.mu.Unlock()
		default:
			applog.Debugf("asr: ignoring server event type %q", ev.Type)
		}
	}
}

// Decode sends one chunk to the server and returns a finalized utterance
// if one has arrived since the previous call.
func (d *StreamDecoder) Decode(samples []int16) (string, bool, error) {
	d.mu.Lock()
	conn := d.conn
	initialized := d.initialized
	d.mu.Unlock()

	if !initialized || conn == nil {
		return "", false, fmt.Errorf("decoder not initialized")
	}

	if len(samples) > 0 {
		frame := make([]byte, len(samples)*2)
		for i, s := range samples {
			binary.LittleEndian.PutUint16(frame[i*2:], uint16(s))
		}
		if err := conn.WriteMessage(gws.BinaryMessage, frame); err != nil {
			return "", false, fmt.Errorf("send audio frame: %w", err)
		}
	}

	select {
	case ev := <-d.finals:
		d.mu.Lock()
		d.confidence = ev.Confidence
		d.mu.Unlock()
		return ev.Text, true, nil
	default:
		return "", false, nil
	}
}

// Partial returns the server's current hypothesis, if any.
func (d *StreamDecoder) Partial() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.partial, d.hasPartial
}

// Confidence returns the confidence of the most recent finalized text.
func (d *StreamDecoder) Confidence() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.confidence
}

// Close tears down the connection and waits for the reader to exit.
func (d *StreamDecoder) Close() error {
	d.mu.Lock()
	if !d.initialized {
		d.mu.Unlock()
		return nil
	}
	d.initialized = false
	conn := d.conn
	d.conn = nil
	readDone := d.readDone
	d.mu.Unlock()

	conn.WriteMessage(gws.CloseMessage, gws.FormatCloseMessage(gws.CloseNormalClosure, ""))
	err := conn.Close()
	<-readDone
	return err
}

var (
	_ Decoder            = (*StreamDecoder)(nil)
	_ ConfidenceReporter = (*StreamDecoder)(nil)
)

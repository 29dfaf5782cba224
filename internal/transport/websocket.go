// SPDX-License-Identifier: MIT
package transport

import (
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	applog "github.com/Pierrekw/voiceinput/internal/log"
)

// WebSocketTransport broadcasts recognition results as JSON to every
// connected WebSocket subscriber. Results are queued on a bounded channel
// and dropped when the channel is full, so a slow subscriber never stalls
// the recognition worker.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
	server    *http.Server
	listener  net.Listener
	done      chan struct{}
}

// NewWebSocketTransport starts a WebSocket server on addr serving the /ws
// endpoint and returns the running transport.
func NewWebSocketTransport(addr string) (*WebSocketTransport, error) {
	wst := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 256),
		done:      make(chan struct{}),
	}

	// Bind synchronously so a bad address fails construction instead of
	// a background goroutine.
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	wst.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wst.handleWebSocket)
	wst.server = &http.Server{Handler: mux}

	go func() {
		applog.Infof("transport: websocket server on %s", ln.Addr())
		if err := wst.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			applog.Errorf("transport: websocket server error: %v", err)
		}
	}()
	go wst.handleBroadcasts()

	return wst, nil
}

// Addr returns the bound listen address.
func (wst *WebSocketTransport) Addr() string {
	return wst.listener.Addr().String()
}

// handleWebSocket upgrades HTTP connections and registers the subscriber.
func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("transport: websocket upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Infof("transport: subscriber connected, total %d", total)

	// Subscribers never send payloads; the read loop only detects close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wst.clientsMu.Lock()
				delete(wst.clients, conn)
				total := len(wst.clients)
				wst.clientsMu.Unlock()
				conn.Close()
				applog.Infof("transport: subscriber disconnected, total %d", total)
				return
			}
		}
	}()
}

// handleBroadcasts drains the broadcast channel and writes each result to
// every connected subscriber, evicting subscribers whose write fails.
func (wst *WebSocketTransport) handleBroadcasts() {
	for {
		select {
		case data := <-wst.broadcast:
			wst.clientsMu.Lock()
			for client := range wst.clients {
				if err := client.WriteJSON(data); err != nil {
					applog.Warnf("transport: dropping subscriber: %v", err)
					client.Close()
					delete(wst.clients, client)
				}
			}
			wst.clientsMu.Unlock()
		case <-wst.done:
			return
		}
	}
}

// Send queues data for broadcast. A full broadcast channel drops the
// message rather than blocking the caller.
func (wst *WebSocketTransport) Send(data any) error {
	select {
	case wst.broadcast <- data:
	default:
		applog.Debugf("transport: broadcast channel full, dropping message")
	}
	return nil
}

// Close shuts down the server and every subscriber connection.
func (wst *WebSocketTransport) Close() error {
	close(wst.done)

	wst.clientsMu.Lock()
	for client := range wst.clients {
		client.Close()
	}
	wst.clients = make(map[*websocket.Conn]bool)
	wst.clientsMu.Unlock()

	if wst.server != nil {
		return wst.server.Close()
	}
	return nil
}

var _ Transport = (*WebSocketTransport)(nil)

// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"waterfall/internal/dsp"
	applog "waterfall/internal/log"
)

// WebSocketSink broadcasts row updates as JSON to connected clients, for
// browser-side waterfall renderers. Clients connect to /waterfall; the
// render boundary stays read-only, clients never write pipeline state.
//
// Thread Safety:
// - Mutex-guarded client map
// - Handles concurrent connects/disconnects safely
type WebSocketSink struct {
	clients      map[*websocket.Conn]bool
	clientsMutex sync.Mutex
	upgrader     websocket.Upgrader
	server       *http.Server
}

// NewWebSocketSink creates the sink and starts its HTTP server on the given
// port in a separate goroutine.
func NewWebSocketSink(port string) *WebSocketSink {
	s := &WebSocketSink{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local visualization feed, any origin may read
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/waterfall", s.handleWebSocket)
	s.server = &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		applog.Infof("Transport: waterfall WebSocket feed listening on port %s", port)
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			applog.Errorf("Transport: WebSocket server error: %v", err)
		}
	}()

	return s
}

// handleWebSocket upgrades the connection, registers the client, and
// removes it again once the connection drops.
func (s *WebSocketSink) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("Transport: WebSocket upgrade error: %v", err)
		return
	}

	s.clientsMutex.Lock()
	s.clients[conn] = true
	s.clientsMutex.Unlock()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.clientsMutex.Lock()
				delete(s.clients, conn)
				s.clientsMutex.Unlock()
				conn.Close()
				return
			}
		}
	}()
}

// Publish broadcasts one row update to all connected clients. Clients that
// fail to accept the write are dropped.
func (s *WebSocketSink) Publish(update dsp.RowUpdate) error {
	jsonData, err := json.Marshal(update)
	if err != nil {
		return err
	}

	s.clientsMutex.Lock()
	for client := range s.clients {
		if err := client.WriteMessage(websocket.TextMessage, jsonData); err != nil {
			client.Close()
			delete(s.clients, client)
		}
	}
	s.clientsMutex.Unlock()

	return nil
}

// Close disconnects all clients and shuts down the HTTP server.
// Idempotent.
func (s *WebSocketSink) Close() error {
	s.clientsMutex.Lock()
	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
	s.clientsMutex.Unlock()

	return s.server.Close()
}

var _ dsp.RowSink = (*WebSocketSink)(nil)

// Package realtime pushes reservation events to connected dashboards over
// WebSocket.  Delivery is at-most-once: a client that falls behind loses
// messages instead of slowing the publisher down.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer = 32
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message is the frame sent to every client.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Encode renders the frame for an event.
func Encode(name string, payload any) ([]byte, error) {
	b, err := json.Marshal(Message{Event: name, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return b, nil
}

// Hub tracks the connected observers of this process.
type Hub struct {
	mu      sync.RWMutex
	clients map[chan []byte]struct{}
	dropped atomic.Uint64
	log     *slog.Logger
}

// NewHub returns an empty hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{clients: make(map[chan []byte]struct{}), log: log.With("component", "ws-hub")}
}

// Publish broadcasts an event to every current client.
func (h *Hub) Publish(_ context.Context, name string, payload any) error {
	msg, err := Encode(name, payload)
	if err != nil {
		return err
	}
	h.Broadcast(msg)
	return nil
}

// Broadcast hands an encoded frame to every client without blocking.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
			h.dropped.Add(1)
		}
	}
}

// Subscribe registers a client queue.  The returned cancel func removes it
// and closes the channel.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, sendBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many frames were discarded for slow clients.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Serve pumps hub frames to conn until the peer goes away.  Inbound
// messages are read and discarded; clients have nothing to say.
func (h *Hub) Serve(conn *websocket.Conn) {
	frames, cancel := h.Subscribe()
	defer cancel()
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case msg := <-frames:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.Debug("ws write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

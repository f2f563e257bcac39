package sse

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// frame is one formatted SSE event queued for delivery
type frame struct {
	event string
	data  []byte
}

// Hub fans game events out to every connected SSE client. The latest frame of
// each retained event is replayed to clients that connect later, so a new
// viewer sees the board without waiting for the next change.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	// retained event names in replay order, and their latest frames
	retain []string
	latest map[string][]byte

	register   chan *Client
	unregister chan *Client
	broadcast  chan frame
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub that replays the latest frame of each event in
// retain to new clients. Call Run to start it.
func NewHub(logger *slog.Logger, retain ...string) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("component", "sse")),
		retain:     retain,
		latest:     make(map[string][]byte, len(retain)),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan frame, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop. Only Run touches latest.
func (h *Hub) Run() {
	h.logger.Info("sse hub started", slog.Any("retained", h.retain))
	for {
		select {
		case client := <-h.register:
			replayed := h.replay(client)
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("sse client registered",
				slog.String("client_id", client.id),
				slog.Int("replayed", replayed),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.send)
			}
			clientCount := len(h.clients)
			h.mu.Unlock()
			if ok {
				h.logger.Info("sse client unregistered",
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			}

		case f := <-h.broadcast:
			if h.retained(f.event) {
				h.latest[f.event] = f.data
			}
			h.fanOut(f)

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("sse hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

func (h *Hub) fanOut(f frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for client := range h.clients {
		select {
		case client.send <- f.data:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("sse event dropped for slow clients",
			slog.String("event", f.event),
			slog.Int("dropped", dropped))
	}
}

// replay queues the retained frames on a client that is not yet registered
func (h *Hub) replay(client *Client) int {
	n := 0
	for _, name := range h.retain {
		data, ok := h.latest[name]
		if !ok {
			continue
		}
		select {
		case client.send <- data:
			n++
		default:
		}
	}
	return n
}

func (h *Hub) retained(event string) bool {
	for _, name := range h.retain {
		if name == event {
			return true
		}
	}
	return false
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastEvent queues an SSE event for every client. It never blocks; when
// the hub is backed up the event is dropped and logged.
func (h *Hub) BroadcastEvent(eventName, data string) {
	select {
	case h.broadcast <- frame{event: eventName, data: formatSSEMessage(eventName, data)}:
	default:
		h.logger.Warn("sse broadcast dropped, hub buffer full", slog.String("event", eventName))
	}
}

// Close shuts down the hub and disconnects every client
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatSSEMessage formats an SSE event. Each line of data gets its own
// "data: " prefix.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: " + eventName + "\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits a string into lines, dropping carriage returns
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	lines := strings.Split(s, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

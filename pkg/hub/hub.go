package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/teslashibe/activity-tracker/internal/log"
)

const inboxSize = 256

// Hub owns a set of clients. Only the Run goroutine mutates the set; mu
// exists so ClientCount and IsRunning can be read from other goroutines.
type Hub struct {
	name   string
	logger *slog.Logger

	inbox chan Message
	join  chan *Client
	leave chan *Client
	done  chan struct{}

	mu      sync.RWMutex
	clients map[*Client]struct{}
	running bool
	retain  bool
	last    *Message
	dropped int
}

// New creates a hub. Call Run before clients connect.
func New(name string) *Hub {
	return &Hub{
		name:    name,
		logger:  log.Component("hub").With("hub", name),
		inbox:   make(chan Message, inboxSize),
		join:    make(chan *Client),
		leave:   make(chan *Client),
		done:    make(chan struct{}),
		clients: make(map[*Client]struct{}),
	}
}

// RetainLast replays the most recent message to each client as it joins,
// so a status page is populated before the next frame arrives.
func (h *Hub) RetainLast() *Hub {
	h.retain = true
	return h
}

// Run serves joins, leaves and broadcasts until ctx ends. On return every
// client queue is closed.
func (h *Hub) Run(ctx context.Context) {
	h.setRunning(true)
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.join:
			h.add(c)
		case c := <-h.leave:
			h.remove(c, "client disconnected")
		case m := <-h.inbox:
			h.fanout(m)
		}
	}
}

func (h *Hub) setRunning(v bool) {
	h.mu.Lock()
	h.running = v
	h.mu.Unlock()
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	for c := range h.clients {
		close(c.queue)
	}
	h.clients = make(map[*Client]struct{})
	h.running = false
	h.mu.Unlock()
	close(h.done)
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.queue <- *h.last
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("client connected", "clients", n)
}

func (h *Hub) remove(c *Client, reason string) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.queue)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.logger.Info(reason, "clients", n)
	}
}

func (h *Hub) fanout(m Message) {
	h.mu.Lock()
	if h.retain {
		h.last = &m
	}
	var slow []*Client
	for c := range h.clients {
		select {
		case c.queue <- m:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.remove(c, "dropped slow client")
	}
}

// Broadcast queues m for every client. When the inbox is full the message
// is dropped; drops are logged on the first and every hundredth.
func (h *Hub) Broadcast(m Message) {
	select {
	case h.inbox <- m:
		return
	default:
	}

	h.mu.Lock()
	h.dropped++
	n := h.dropped
	h.mu.Unlock()
	if n == 1 || n%100 == 0 {
		h.logger.Warn("broadcast inbox full, dropping message", "dropped", n)
	}
}

// BroadcastJSON encodes v and broadcasts it as text.
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(Text(data))
	return nil
}

// BroadcastBinary broadcasts an encoded frame.
func (h *Hub) BroadcastBinary(data []byte) {
	h.Broadcast(Frame(data))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsRunning reports whether Run is serving.
func (h *Hub) IsRunning() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

// Package live fans location updates out to websocket viewers of a share.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

const broadcastBuffer = 256

type message struct {
	shareID string
	data    interface{}
}

// Hub keeps the connected viewers of every share. A share can have any number
// of viewers.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	broadcast  chan *message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *slog.Logger
	mu         sync.RWMutex
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		broadcast:  make(chan *message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves register, unregister and broadcast requests until ctx is done.
// All remaining viewers are disconnected on return.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			viewers, ok := h.clients[client.shareID]
			if !ok {
				viewers = make(map[*Client]struct{})
				h.clients[client.shareID] = viewers
			}
			viewers[client] = struct{}{}
			n := len(viewers)
			h.mu.Unlock()
			h.logger.Info("viewer connected",
				slog.String("share_id", client.shareID),
				slog.Int("viewers", n),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg *message) {
	data, err := json.Marshal(msg.data)
	if err != nil {
		h.logger.Error("marshal live update", slog.Any("error", err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients[msg.shareID] {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("viewer too slow, disconnecting", slog.String("share_id", msg.shareID))
			h.remove(client)
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	viewers, ok := h.clients[client.shareID]
	if !ok {
		return
	}
	if _, ok := viewers[client]; !ok {
		return
	}
	delete(viewers, client)
	close(client.send)
	if len(viewers) == 0 {
		delete(h.clients, client.shareID)
	}
	h.logger.Info("viewer disconnected",
		slog.String("share_id", client.shareID),
		slog.Int("viewers", len(viewers)),
	)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, viewers := range h.clients {
		for client := range viewers {
			h.remove(client)
		}
	}
}

// Publish queues payload for every viewer of shareID. It never blocks; when
// the queue is full the update is dropped.
func (h *Hub) Publish(shareID string, payload interface{}) {
	select {
	case h.broadcast <- &message{shareID: shareID, data: payload}:
	default:
		h.logger.Warn("live update dropped", slog.String("share_id", shareID))
	}
}

func (h *Hub) attach(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) ViewerCount(shareID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[shareID])
}

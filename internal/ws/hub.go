package ws

import (
	"encoding/json"
	"sync"
	"time"

	"skincase_backend/internal/logger"

	"github.com/google/uuid"
)

const backlogSize = 20

// Hub fans drop events out to every connected feed client. One hub per
// process; clients register on upgrade and unregister when their read
// pump exits.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan DropEvent

	mu      sync.RWMutex
	clients map[*Client]struct{}

	// last few drops, replayed to newly connected clients
	recentMu sync.RWMutex
	recent   []DropEvent
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client, 8),
		unregister: make(chan *Client, 8),
		broadcast:  make(chan DropEvent, 64),
		clients:    make(map[*Client]struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			h.sendBacklog(c)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			h.remember(ev)
			data, err := json.Marshal(Message{Type: MsgDrop, Payload: ev})
			if err != nil {
				logger.Error("drop feed marshal failed", "error", err)
				continue
			}
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					// slow consumer, drop the frame rather than block the feed
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastDrop queues a win for the live feed. Never blocks the caller;
// a full queue drops the event.
func (h *Hub) BroadcastDrop(userID int64, username, caseName, skinName, rarity string, value int64) {
	ev := DropEvent{
		ID:       uuid.NewString(),
		UserID:   userID,
		Username: username,
		CaseName: caseName,
		SkinName: skinName,
		Rarity:   rarity,
		Value:    value,
		At:       time.Now(),
	}
	select {
	case h.broadcast <- ev:
	default:
		logger.Warn("drop feed queue full, event dropped", "user_id", userID)
	}
}

func (h *Hub) remember(ev DropEvent) {
	h.recentMu.Lock()
	h.recent = append(h.recent, ev)
	if len(h.recent) > backlogSize {
		h.recent = h.recent[len(h.recent)-backlogSize:]
	}
	h.recentMu.Unlock()
}

// Recent returns a copy of the replay buffer
func (h *Hub) Recent() []DropEvent {
	h.recentMu.RLock()
	defer h.recentMu.RUnlock()
	out := make([]DropEvent, len(h.recent))
	copy(out, h.recent)
	return out
}

func (h *Hub) sendBacklog(c *Client) {
	backlog := h.Recent()
	if len(backlog) == 0 {
		return
	}
	data, err := json.Marshal(Message{Type: MsgBacklog, Payload: backlog})
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// ClientCount reports connected feed clients (health endpoint)
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

package notify

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Hub is the process-local Notifier. It holds no authoritative state:
// dropping it loses live-update delivery, never document state.
type Hub struct {
	mu sync.RWMutex
	// note channel -> subscriber ID -> handle
	channels map[uint64]map[string]Subscriber
	// user ID -> subscriber ID -> handle, for addressed notifications
	users map[uint64]map[string]Subscriber
}

func NewHub() *Hub {
	return &Hub{
		channels: make(map[uint64]map[string]Subscriber),
		users:    make(map[uint64]map[string]Subscriber),
	}
}

func (h *Hub) Subscribe(noteID uint64, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.channels[noteID]
	if !ok {
		subs = make(map[string]Subscriber)
		h.channels[noteID] = subs
	}
	subs[sub.ID()] = sub
}

func (h *Hub) Unsubscribe(noteID uint64, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.channels[noteID]
	if !ok {
		return
	}
	delete(subs, sub.ID())
	if len(subs) == 0 {
		delete(h.channels, noteID)
	}
}

func (h *Hub) Publish(noteID uint64, event NoteEvent, excluding string) {
	msg, err := NewMessage(MsgNoteUpdated, event)
	if err != nil {
		log.Error().Err(err).Uint64("note_id", noteID).Msg("failed to encode note event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, sub := range h.channels[noteID] {
		if id == excluding {
			continue
		}
		sub.Send(msg)
	}
}

// Register attaches a connection to its user for addressed notifications.
func (h *Hub) Register(userID uint64, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.users[userID]
	if !ok {
		subs = make(map[string]Subscriber)
		h.users[userID] = subs
	}
	subs[sub.ID()] = sub
}

// Drop removes a connection from every channel and its user registration.
// Called when the connection closes.
func (h *Hub) Drop(userID uint64, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for noteID, subs := range h.channels {
		delete(subs, sub.ID())
		if len(subs) == 0 {
			delete(h.channels, noteID)
		}
	}

	if subs, ok := h.users[userID]; ok {
		delete(subs, sub.ID())
		if len(subs) == 0 {
			delete(h.users, userID)
		}
	}
}

func (h *Hub) NotifyUser(userID uint64, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.users[userID] {
		sub.Send(msg)
	}
}

// Package notify fans note-change events out to connected clients.
// Delivery is best-effort: the subscriber registry is process-local and
// rebuilt from reconnects, events are never replayed, and two concurrent
// publishers produce two independent broadcasts with no merge.
package notify

import (
	"encoding/json"
)

// Message types on the wire, both directions.
const (
	MsgJoinNote     = "join-note"
	MsgLeaveNote    = "leave-note"
	MsgNoteUpdate   = "note-update"
	MsgNoteUpdated  = "note-updated"
	MsgCollabInvite = "collab-invite"
)

// NoteEvent is the payload broadcast on a note's channel after a save.
type NoteEvent struct {
	NoteID    uint64   `json:"note_id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	UpdatedBy uint64   `json:"updated_by"`
}

// InviteEvent notifies an invitee that a share invitation was created.
type InviteEvent struct {
	CollabID  uint64 `json:"collab_id"`
	NoteID    uint64 `json:"note_id"`
	NoteTitle string `json:"note_title"`
	InvitedBy string `json:"invited_by"`
	Role      string `json:"role"`
}

// Message is the envelope written to subscribers.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func NewMessage(msgType string, payload interface{}) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Payload: raw}, nil
}

// Subscriber is one connected client handle.
type Subscriber interface {
	// ID uniquely identifies the handle within the process, used to
	// exclude the originator from its own broadcast.
	ID() string
	// Send delivers a message without blocking; implementations may drop
	// when the client can't keep up.
	Send(msg Message)
}

// Notifier is the injected broadcast capability. One hop, no durability,
// no ordering across independent publishers.
type Notifier interface {
	// Subscribe registers interest in a note's channel. Idempotent.
	Subscribe(noteID uint64, sub Subscriber)
	// Unsubscribe removes interest. Safe to call when not subscribed.
	Unsubscribe(noteID uint64, sub Subscriber)
	// Publish delivers event to every current subscriber of the note's
	// channel except the handle with the excluding ID.
	Publish(noteID uint64, event NoteEvent, excluding string)
	// NotifyUser delivers a message to every connection of one user.
	NotifyUser(userID uint64, msg Message)
}

package domain

import (
	"time"
)

// Collaboration roles.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
)

// Invitation states. pending is initial; accepted and declined are terminal.
const (
	CollabPending  = "pending"
	CollabAccepted = "accepted"
	CollabDeclined = "declined"
)

// Collab relates one note to one invited user. At most one row may exist
// per (note, user) pair; only an accepted row confers access.
type Collab struct {
	ID          uint64    `json:"id"`
	NoteID      uint64    `json:"note_id" gorm:"uniqueIndex:idx_collab_note_user"`
	Note        Note      `json:"-"`
	UserID      uint64    `json:"user_id" gorm:"uniqueIndex:idx_collab_note_user"`
	User        User      `json:"-"`
	Role        string    `json:"role" gorm:"size:16;default:editor"`
	Status      string    `json:"status" gorm:"size:16;default:pending"`
	InvitedByID uint64    `json:"invited_by_id"`
	InvitedBy   User      `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Terminal reports whether the invitation reached a final state.
func (c *Collab) Terminal() bool {
	return c.Status == CollabAccepted || c.Status == CollabDeclined
}

// Package access holds the read/write authorization predicates for notes.
// Every surface (note endpoints, collaboration endpoints, websocket joins)
// decides access through these two functions instead of re-deriving
// ownership checks inline.
package access

import (
	"github.com/srisabarish06/Notoria/internal/domain"
)

// Anonymous is the principal ID used for unauthenticated requests.
const Anonymous uint64 = 0

// CanRead reports whether the principal may read the note. collab is the
// (note, principal) collaboration row if one exists, nil otherwise; the
// caller fetches it in the same request as the check, no caching.
func CanRead(note *domain.Note, principalID uint64, collab *domain.Collab) bool {
	if note == nil {
		return false
	}
	if note.IsPublic {
		return true
	}
	if principalID == Anonymous {
		return false
	}
	if principalID == note.OwnerID {
		return true
	}
	return accepted(note, principalID, collab)
}

// CanWrite reports whether the principal may mutate the note's content.
// Only the owner and accepted editors qualify; visibility changes are
// additionally restricted to the owner by the note service.
func CanWrite(note *domain.Note, principalID uint64, collab *domain.Collab) bool {
	if note == nil || principalID == Anonymous {
		return false
	}
	if principalID == note.OwnerID {
		return true
	}
	return accepted(note, principalID, collab) && collab.Role == domain.RoleEditor
}

func accepted(note *domain.Note, principalID uint64, collab *domain.Collab) bool {
	return collab != nil &&
		collab.NoteID == note.ID &&
		collab.UserID == principalID &&
		collab.Status == domain.CollabAccepted
}

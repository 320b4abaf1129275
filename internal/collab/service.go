package collab

import (
	"context"
	defError "errors"

	"github.com/srisabarish06/Notoria/internal/domain"
	"github.com/srisabarish06/Notoria/internal/errors"
	"github.com/srisabarish06/Notoria/internal/notify"
	"github.com/srisabarish06/Notoria/internal/worker"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Invite decisions.
const (
	DecisionAccept  = "accept"
	DecisionDecline = "decline"
)

type Service interface {
	ShareNote(ctx context.Context, noteID uint64, inviterID uint64, inviteeEmail string, role string) (*domain.Collab, error)
	RespondToInvite(ctx context.Context, collabID uint64, actorID uint64, decision string) (*domain.Collab, error)
	ListInvites(ctx context.Context, userID uint64) ([]InviteRow, error)
	ListCollaborators(ctx context.Context, noteID uint64, requesterID uint64) ([]CollaboratorRow, error)
}

// NoteProvider resolves notes; implemented by the note repository.
type NoteProvider interface {
	FindByID(ctx context.Context, id uint64) (*domain.Note, error)
}

// UserDirectory resolves invitees; implemented by the user service.
type UserDirectory interface {
	GetUserByID(id uint64) (*domain.User, error)
	GetUserByEmail(email string) (*domain.User, error)
}

// ListInvalidator drops cached note listings when accepted invites make
// new notes visible; implemented by the note service.
type ListInvalidator interface {
	BumpListVersion(ctx context.Context, userID uint64)
}

type DefaultService struct {
	repository  CollabRepository
	notes       NoteProvider
	users       UserDirectory
	notifier    notify.Notifier
	invalidator ListInvalidator
	pool        *worker.Pool
}

func NewService(
	repository CollabRepository,
	notes NoteProvider,
	users UserDirectory,
	notifier notify.Notifier,
	invalidator ListInvalidator,
	pool *worker.Pool,
) Service {
	return &DefaultService{
		repository:  repository,
		notes:       notes,
		users:       users,
		notifier:    notifier,
		invalidator: invalidator,
		pool:        pool,
	}
}

// ShareNote creates a pending invitation. A failed invite performs no write.
func (s *DefaultService) ShareNote(ctx context.Context, noteID uint64, inviterID uint64, inviteeEmail string, role string) (*domain.Collab, error) {
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Note not found", err)
		}
		return nil, err
	}

	// only the owner may invite
	if note.OwnerID != inviterID {
		return nil, errors.Forbidden("Only owner can share note", nil)
	}

	invitee, err := s.users.GetUserByEmail(inviteeEmail)
	if err != nil {
		return nil, errors.NotFound("User not found", err)
	}

	if invitee.ID == inviterID {
		return nil, errors.UnprocessableEntity("Can't invite yourself", nil)
	}

	existing, err := s.repository.Find(ctx, noteID, invitee.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.Conflict("User is already a collaborator", nil)
	}

	if role == "" {
		role = domain.RoleEditor
	}

	collab := &domain.Collab{
		NoteID:      noteID,
		UserID:      invitee.ID,
		Role:        role,
		Status:      domain.CollabPending,
		InvitedByID: inviterID,
	}

	if err := s.repository.Create(ctx, collab); err != nil {
		// unique (note_id, user_id) index catches the racing duplicate
		if defError.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Conflict("User is already a collaborator", err)
		}
		return nil, err
	}

	s.notifyInvitee(collab, note, inviterID)

	return collab, nil
}

// notifyInvitee pushes the invite notification to the invitee's live
// connections, off the request path.
func (s *DefaultService) notifyInvitee(collab *domain.Collab, note *domain.Note, inviterID uint64) {
	inviteeID := collab.UserID
	event := notify.InviteEvent{
		CollabID:  collab.ID,
		NoteID:    note.ID,
		NoteTitle: note.Title,
		Role:      collab.Role,
	}

	s.pool.Submit(func(ctx context.Context) error {
		if inviter, err := s.users.GetUserByID(inviterID); err == nil {
			event.InvitedBy = inviter.Username
		}

		msg, err := notify.NewMessage(notify.MsgCollabInvite, event)
		if err != nil {
			return err
		}
		s.notifier.NotifyUser(inviteeID, msg)
		return nil
	})
}

// RespondToInvite applies the invited user's decision. pending is the only
// state that transitions; responding to a terminal record is a no-op
// success returning the stored record.
func (s *DefaultService) RespondToInvite(ctx context.Context, collabID uint64, actorID uint64, decision string) (*domain.Collab, error) {
	collab, err := s.repository.FindByID(ctx, collabID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Invite not found", err)
		}
		return nil, err
	}

	// only the invited user may respond
	if collab.UserID != actorID {
		return nil, errors.Forbidden("Permission denied", nil)
	}

	if collab.Terminal() {
		return collab, nil
	}

	var status string
	switch decision {
	case DecisionAccept:
		status = domain.CollabAccepted
	case DecisionDecline:
		status = domain.CollabDeclined
	default:
		return nil, errors.BadRequest("Unknown decision", nil)
	}

	if err := s.repository.UpdateStatus(ctx, collabID, status); err != nil {
		return nil, err
	}
	collab.Status = status

	if status == domain.CollabAccepted {
		// the note is now visible in the invitee's listings
		s.invalidator.BumpListVersion(ctx, actorID)
		log.Info().Uint64("collab_id", collabID).Uint64("user_id", actorID).
			Msg("invite accepted")
	}

	return collab, nil
}

func (s *DefaultService) ListInvites(ctx context.Context, userID uint64) ([]InviteRow, error) {
	return s.repository.ListPendingForUser(ctx, userID)
}

// ListCollaborators returns the note's collaboration rows. Visible to the
// owner and to the note's own collaborators; public visibility does not
// expose the collaborator list.
func (s *DefaultService) ListCollaborators(ctx context.Context, noteID uint64, requesterID uint64) ([]CollaboratorRow, error) {
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Note not found", err)
		}
		return nil, err
	}

	if note.OwnerID != requesterID {
		own, err := s.repository.Find(ctx, noteID, requesterID)
		if err != nil {
			return nil, err
		}
		if own == nil || own.Status != domain.CollabAccepted {
			return nil, errors.Forbidden("Access denied", nil)
		}
	}

	return s.repository.ListForNote(ctx, noteID)
}

package note

import (
	"context"
	defError "errors"
	"fmt"
	"time"

	"github.com/srisabarish06/Notoria/internal/access"
	"github.com/srisabarish06/Notoria/internal/domain"
	"github.com/srisabarish06/Notoria/internal/errors"
	"github.com/srisabarish06/Notoria/internal/notify"
	"github.com/srisabarish06/Notoria/internal/worker"
	"github.com/srisabarish06/Notoria/redis"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Service interface {
	CreateNote(ctx context.Context, userID uint64, note *domain.Note) error
	ListNotes(ctx context.Context, userID uint64, page, pageSize int) (*PaginatedNotes, error)
	GetNote(ctx context.Context, noteID uint64, userID uint64) (*NoteShowResponse, error)
	UpdateNote(ctx context.Context, noteID uint64, userID uint64, input UpdateNoteInput) (*domain.Note, error)
	DeleteNote(ctx context.Context, noteID uint64, userID uint64) error
	CanReadNote(ctx context.Context, noteID uint64, userID uint64) (bool, error)
	CanWriteNote(ctx context.Context, noteID uint64, userID uint64) (bool, error)
	// BumpListVersion invalidates the user's cached note listings. The
	// collaboration workflow calls it when an accepted invite makes new
	// notes visible.
	BumpListVersion(ctx context.Context, userID uint64)
}

type DefaultService struct {
	repository NoteRepository
	notifier   notify.Notifier
	cache      *redis.Cache
	pool       *worker.Pool
}

func NewService(repository NoteRepository, notifier notify.Notifier, cache *redis.Cache, pool *worker.Pool) Service {
	return &DefaultService{
		repository: repository,
		notifier:   notifier,
		cache:      cache,
		pool:       pool,
	}
}

type PaginatedNotes struct {
	Data []domain.Note `json:"data"`
	Meta NotesMeta     `json:"meta"`
}

// NoteShowResponse is a note plus the requester's relationship to it.
type NoteShowResponse struct {
	domain.Note
	Role     string `json:"role"`
	CanWrite bool   `json:"can_write"`
}

// UpdateNoteInput carries a partial note update; nil fields are untouched.
type UpdateNoteInput struct {
	Title    *string
	Content  *string
	Tags     *[]string
	IsPublic *bool
}

func (s *DefaultService) CreateNote(ctx context.Context, userID uint64, note *domain.Note) error {
	if note.Title == "" {
		note.Title = "Untitled Note"
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}

	if err := s.repository.Create(ctx, userID, note); err != nil {
		return err
	}

	s.BumpListVersion(ctx, userID)
	return nil
}

func (s *DefaultService) ListNotes(ctx context.Context, userID uint64, page, pageSize int) (*PaginatedNotes, error) {
	versionKey := fmt.Sprintf("user:%d:notes:version", userID)
	v := s.cache.GetVersion(ctx, versionKey)

	cacheKey := fmt.Sprintf("notes:u:%d:v:%d:p:%d:ps:%d", userID, v, page, pageSize)

	var result PaginatedNotes
	found, _ := s.cache.Get(ctx, cacheKey, &result)
	if found {
		return &result, nil
	}

	notes, meta, err := s.repository.ListVisible(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	result = PaginatedNotes{Data: notes, Meta: meta}

	s.pool.Submit(func(bgCtx context.Context) error {
		return s.cache.Set(bgCtx, cacheKey, result, 24*time.Hour)
	})

	return &result, nil
}

func (s *DefaultService) GetNote(ctx context.Context, noteID uint64, userID uint64) (*NoteShowResponse, error) {
	note, collab, err := s.fetch(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}

	if !access.CanRead(note, userID, collab) {
		return nil, errors.Forbidden("Access denied", nil)
	}

	return &NoteShowResponse{
		Note:     *note,
		Role:     roleOf(note, userID, collab),
		CanWrite: access.CanWrite(note, userID, collab),
	}, nil
}

func (s *DefaultService) UpdateNote(ctx context.Context, noteID uint64, userID uint64, input UpdateNoteInput) (*domain.Note, error) {
	note, collab, err := s.fetch(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}

	if !access.CanWrite(note, userID, collab) {
		return nil, errors.Forbidden("Permission denied", nil)
	}

	isOwner := note.OwnerID == userID

	if input.Title != nil {
		note.Title = *input.Title
	}
	if input.Content != nil {
		note.Content = *input.Content
	}
	if input.Tags != nil {
		note.Tags = *input.Tags
	}
	// visibility is owner-only; the field is ignored for editors
	if input.IsPublic != nil && isOwner {
		note.IsPublic = *input.IsPublic
	}

	if err := s.repository.Update(ctx, note); err != nil {
		return nil, err
	}

	s.BumpListVersion(ctx, userID)
	if !isOwner {
		s.BumpListVersion(ctx, note.OwnerID)
	}

	s.onNoteSaved(note, userID)

	return note, nil
}

// onNoteSaved fans the post-persist change event out to every live
// subscriber of the note's channel.
func (s *DefaultService) onNoteSaved(note *domain.Note, editorID uint64) {
	event := notify.NoteEvent{
		NoteID:    note.ID,
		Title:     note.Title,
		Content:   note.Content,
		Tags:      note.Tags,
		UpdatedBy: editorID,
	}

	s.pool.Submit(func(ctx context.Context) error {
		s.notifier.Publish(event.NoteID, event, "")
		return nil
	})
}

func (s *DefaultService) DeleteNote(ctx context.Context, noteID uint64, userID uint64) error {
	note, err := s.repository.FindByID(ctx, noteID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Note not found", err)
		}
		return err
	}

	// Only owner can delete
	if note.OwnerID != userID {
		return errors.Forbidden("Only owner can delete note", nil)
	}

	if err := s.repository.Delete(ctx, noteID); err != nil {
		return err
	}

	s.BumpListVersion(ctx, userID)
	return nil
}

func (s *DefaultService) CanReadNote(ctx context.Context, noteID uint64, userID uint64) (bool, error) {
	note, collab, err := s.fetch(ctx, noteID, userID)
	if err != nil {
		var apiErr *errors.APIError
		if defError.As(err, &apiErr) && apiErr.Status == 404 {
			return false, nil
		}
		return false, err
	}
	return access.CanRead(note, userID, collab), nil
}

func (s *DefaultService) CanWriteNote(ctx context.Context, noteID uint64, userID uint64) (bool, error) {
	note, collab, err := s.fetch(ctx, noteID, userID)
	if err != nil {
		var apiErr *errors.APIError
		if defError.As(err, &apiErr) && apiErr.Status == 404 {
			return false, nil
		}
		return false, err
	}
	return access.CanWrite(note, userID, collab), nil
}

func (s *DefaultService) BumpListVersion(ctx context.Context, userID uint64) {
	versionKey := fmt.Sprintf("user:%d:notes:version", userID)
	s.cache.IncrementVersion(ctx, versionKey)
}

// fetch loads the note and the requester's collaboration row in the same
// request as the authorization check; nothing is cached across calls.
func (s *DefaultService) fetch(ctx context.Context, noteID, userID uint64) (*domain.Note, *domain.Collab, error) {
	note, err := s.repository.FindByID(ctx, noteID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.NotFound("Note not found", err)
		}
		return nil, nil, err
	}

	var collab *domain.Collab
	if userID != access.Anonymous && userID != note.OwnerID {
		collab, err = s.repository.GetCollab(ctx, noteID, userID)
		if err != nil {
			log.Warn().Err(err).Uint64("note_id", noteID).Msg("collab lookup failed")
			return nil, nil, err
		}
	}

	return note, collab, nil
}

func roleOf(note *domain.Note, userID uint64, collab *domain.Collab) string {
	switch {
	case note.OwnerID == userID:
		return "owner"
	case collab != nil && collab.Status == domain.CollabAccepted:
		return collab.Role
	default:
		return "none"
	}
}

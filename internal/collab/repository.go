package collab

import (
	"context"
	defError "errors"

	"github.com/srisabarish06/Notoria/internal/domain"

	"gorm.io/gorm"
)

type CollabRepository interface {
	Create(ctx context.Context, collab *domain.Collab) error
	FindByID(ctx context.Context, id uint64) (*domain.Collab, error)
	// Find returns the row for (note, user), nil when absent.
	Find(ctx context.Context, noteID, userID uint64) (*domain.Collab, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
	ListPendingForUser(ctx context.Context, userID uint64) ([]InviteRow, error)
	ListForNote(ctx context.Context, noteID uint64) ([]CollaboratorRow, error)
}

// InviteRow is a pending invitation joined with its note and inviter.
type InviteRow struct {
	ID              uint64 `json:"id"`
	NoteID          uint64 `json:"note_id"`
	NoteTitle       string `json:"note_title"`
	Role            string `json:"role"`
	InvitedByName   string `json:"invited_by_name"`
	InvitedByEmail  string `json:"invited_by_email"`
}

// CollaboratorRow is a collaboration joined with the invited user.
type CollaboratorRow struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

type CollabRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) CollabRepository {
	return &CollabRepositoryImpl{db: db}
}

func (r *CollabRepositoryImpl) Create(ctx context.Context, collab *domain.Collab) error {
	return r.db.WithContext(ctx).Create(collab).Error
}

func (r *CollabRepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Collab, error) {
	var collab domain.Collab
	err := r.db.WithContext(ctx).First(&collab, id).Error
	if err != nil {
		return nil, err
	}
	return &collab, nil
}

func (r *CollabRepositoryImpl) Find(ctx context.Context, noteID, userID uint64) (*domain.Collab, error) {
	var collab domain.Collab
	err := r.db.WithContext(ctx).
		Where("note_id = ? AND user_id = ?", noteID, userID).
		First(&collab).Error
	if defError.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &collab, nil
}

func (r *CollabRepositoryImpl) UpdateStatus(ctx context.Context, id uint64, status string) error {
	return r.db.WithContext(ctx).Model(&domain.Collab{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *CollabRepositoryImpl) ListPendingForUser(ctx context.Context, userID uint64) ([]InviteRow, error) {
	var rows []InviteRow
	err := r.db.WithContext(ctx).Model(&domain.Collab{}).
		Select(`collabs.id, collabs.note_id, notes.title AS note_title, collabs.role,
			users.username AS invited_by_name, users.email AS invited_by_email`).
		Joins("JOIN notes ON notes.id = collabs.note_id").
		Joins("JOIN users ON users.id = collabs.invited_by_id").
		Where("collabs.user_id = ? AND collabs.status = ?", userID, domain.CollabPending).
		Order("collabs.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *CollabRepositoryImpl) ListForNote(ctx context.Context, noteID uint64) ([]CollaboratorRow, error) {
	var rows []CollaboratorRow
	err := r.db.WithContext(ctx).Model(&domain.Collab{}).
		Select("collabs.user_id, users.username, users.email, collabs.role, collabs.status").
		Joins("JOIN users ON users.id = collabs.user_id").
		Where("collabs.note_id = ?", noteID).
		Order("collabs.created_at ASC").
		Scan(&rows).Error
	return rows, err
}

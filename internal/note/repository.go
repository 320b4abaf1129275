package note

import (
	"context"
	defError "errors"
	"time"

	"github.com/srisabarish06/Notoria/internal/domain"

	"gorm.io/gorm"
)

type NoteRepository interface {
	Create(ctx context.Context, userID uint64, note *domain.Note) error
	FindByID(ctx context.Context, id uint64) (*domain.Note, error)
	ListVisible(ctx context.Context, userID uint64, page, pageSize int) ([]domain.Note, NotesMeta, error)
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, id uint64) error
	// GetCollab returns the collaboration row for (note, user), nil when absent.
	GetCollab(ctx context.Context, noteID, userID uint64) (*domain.Collab, error)
}

type NotesMeta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

type NoteRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) NoteRepository {
	return &NoteRepositoryImpl{db: db}
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, userID uint64, note *domain.Note) error {
	note.OwnerID = userID
	note.CreatedAt = time.Now().UTC()
	note.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *NoteRepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Note, error) {
	var note domain.Note
	err := r.db.WithContext(ctx).First(&note, id).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// ListVisible returns notes the user may read: owned, accepted-collaborator
// or public, newest update first.
func (r *NoteRepositoryImpl) ListVisible(ctx context.Context, userID uint64, page, pageSize int) ([]domain.Note, NotesMeta, error) {
	var notes []domain.Note
	var totalRecords int64

	visible := r.db.WithContext(ctx).Model(&domain.Note{}).
		Joins("LEFT JOIN collabs ON collabs.note_id = notes.id AND collabs.user_id = ? AND collabs.status = ?",
			userID, domain.CollabAccepted).
		Where("notes.owner_id = ? OR notes.is_public = ? OR collabs.id IS NOT NULL", userID, true)

	if err := visible.Count(&totalRecords).Error; err != nil {
		return notes, NotesMeta{}, err
	}

	offset := (page - 1) * pageSize
	err := visible.
		Order("notes.updated_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&notes).Error

	totalPages := int((totalRecords + int64(pageSize) - 1) / int64(pageSize))

	return notes, NotesMeta{
		Total:       totalRecords,
		PerPage:     pageSize,
		TotalPage:   totalPages,
		CurrentPage: page,
	}, err
}

func (r *NoteRepositoryImpl) Update(ctx context.Context, note *domain.Note) error {
	note.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(note).Error
}

// Delete removes the note and cascades its collaboration rows.
func (r *NoteRepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_id = ?", id).Delete(&domain.Collab{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Note{}, id).Error
	})
}

func (r *NoteRepositoryImpl) GetCollab(ctx context.Context, noteID, userID uint64) (*domain.Collab, error) {
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

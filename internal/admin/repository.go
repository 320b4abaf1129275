package admin

import (
	"context"

	"github.com/srisabarish06/Notoria/internal/domain"

	"gorm.io/gorm"
)

type AdminRepository interface {
	ListUsers(ctx context.Context, page, pageSize int) ([]domain.SafeUser, int64, error)
	ListNotes(ctx context.Context, page, pageSize int) ([]NoteRow, int64, error)
	ListBlogs(ctx context.Context, page, pageSize int) ([]BlogRow, int64, error)
	SetUserActive(ctx context.Context, userID uint64, active bool) error
	Analytics(ctx context.Context) (*Analytics, error)
}

// NoteRow is a note with its owner resolved, for admin listings.
type NoteRow struct {
	ID        uint64 `json:"id"`
	Title     string `json:"title"`
	OwnerID   uint64 `json:"owner_id"`
	OwnerName string `json:"owner_name"`
	IsPublic  bool   `json:"is_public"`
}

type BlogRow struct {
	ID         uint64 `json:"id"`
	Title      string `json:"title"`
	AuthorID   uint64 `json:"author_id"`
	AuthorName string `json:"author_name"`
	IsPublic   bool   `json:"is_public"`
	Views      uint64 `json:"views"`
}

// Analytics is a snapshot of platform-wide counts.
type Analytics struct {
	Users       int64 `json:"users"`
	ActiveUsers int64 `json:"active_users"`
	Notes       int64 `json:"notes"`
	PublicNotes int64 `json:"public_notes"`
	Collabs     int64 `json:"collabs"`
	Blogs       int64 `json:"blogs"`
	Tasks       int64 `json:"tasks"`
}

type AdminRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) AdminRepository {
	return &AdminRepositoryImpl{db: db}
}

func (r *AdminRepositoryImpl) ListUsers(ctx context.Context, page, pageSize int) ([]domain.SafeUser, int64, error) {
	var users []domain.User
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.User{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	safe := make([]domain.SafeUser, 0, len(users))
	for _, u := range users {
		safe = append(safe, u.ToSafeUser())
	}
	return safe, total, nil
}

func (r *AdminRepositoryImpl) ListNotes(ctx context.Context, page, pageSize int) ([]NoteRow, int64, error) {
	var rows []NoteRow
	var total int64

	if err := r.db.WithContext(ctx).Model(&domain.Note{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).Model(&domain.Note{}).
		Select("notes.id, notes.title, notes.owner_id, users.username AS owner_name, notes.is_public").
		Joins("JOIN users ON users.id = notes.owner_id").
		Order("notes.created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Scan(&rows).Error

	return rows, total, err
}

func (r *AdminRepositoryImpl) ListBlogs(ctx context.Context, page, pageSize int) ([]BlogRow, int64, error) {
	var rows []BlogRow
	var total int64

	if err := r.db.WithContext(ctx).Model(&domain.Blog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).Model(&domain.Blog{}).
		Select("blogs.id, blogs.title, blogs.author_id, users.username AS author_name, blogs.is_public, blogs.views").
		Joins("JOIN users ON users.id = blogs.author_id").
		Order("blogs.created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Scan(&rows).Error

	return rows, total, err
}

func (r *AdminRepositoryImpl) SetUserActive(ctx context.Context, userID uint64, active bool) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("is_active", active).Error
}

func (r *AdminRepositoryImpl) Analytics(ctx context.Context) (*Analytics, error) {
	var a Analytics

	counts := []struct {
		model any
		where string
		dest  *int64
	}{
		{&domain.User{}, "", &a.Users},
		{&domain.User{}, "is_active = true", &a.ActiveUsers},
		{&domain.Note{}, "", &a.Notes},
		{&domain.Note{}, "is_public = true", &a.PublicNotes},
		{&domain.Collab{}, "", &a.Collabs},
		{&domain.Blog{}, "", &a.Blogs},
		{&domain.Task{}, "", &a.Tasks},
	}

	for _, c := range counts {
		query := r.db.WithContext(ctx).Model(c.model)
		if c.where != "" {
			query = query.Where(c.where)
		}
		if err := query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	return &a, nil
}

package blog

import (
	"context"
	defError "errors"
	"time"

	"github.com/srisabarish06/Notoria/internal/domain"

	"gorm.io/gorm"
)

type BlogRepository interface {
	Create(ctx context.Context, blog *domain.Blog) error
	FindByID(ctx context.Context, id uint64) (*domain.Blog, error)
	ListPublic(ctx context.Context, page, pageSize int) ([]BlogRow, int64, error)
	ListByAuthor(ctx context.Context, authorID uint64, page, pageSize int) ([]BlogRow, int64, error)
	Update(ctx context.Context, blog *domain.Blog) error
	Delete(ctx context.Context, id uint64) error
	IncrementViews(ctx context.Context, id uint64) error
	// ToggleLike flips the user's like and returns the new state and count.
	ToggleLike(ctx context.Context, blogID, userID uint64) (liked bool, likes int64, err error)
	CountLikes(ctx context.Context, blogID uint64) (int64, error)
}

// BlogRow is a blog joined with its author and like count for listings.
type BlogRow struct {
	ID         uint64    `json:"id"`
	Title      string    `json:"title"`
	AuthorID   uint64    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	IsPublic   bool      `json:"is_public"`
	Views      uint64    `json:"views"`
	Likes      int64     `json:"likes"`
	CreatedAt  time.Time `json:"created_at"`
}

type BlogRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) BlogRepository {
	return &BlogRepositoryImpl{db: db}
}

func (r *BlogRepositoryImpl) Create(ctx context.Context, blog *domain.Blog) error {
	blog.CreatedAt = time.Now().UTC()
	blog.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(blog).Error
}

func (r *BlogRepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Blog, error) {
	var blog domain.Blog
	err := r.db.WithContext(ctx).First(&blog, id).Error
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

func (r *BlogRepositoryImpl) list(ctx context.Context, where *gorm.DB, page, pageSize int) ([]BlogRow, int64, error) {
	var rows []BlogRow
	var total int64

	if err := where.Count(&total).Error; err != nil {
		return rows, 0, err
	}

	offset := (page - 1) * pageSize
	err := where.
		Select(`blogs.id, blogs.title, blogs.author_id, users.username AS author_name,
			blogs.is_public, blogs.views, blogs.created_at,
			(SELECT COUNT(*) FROM blog_likes WHERE blog_likes.blog_id = blogs.id) AS likes`).
		Joins("JOIN users ON users.id = blogs.author_id").
		Order("blogs.created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Scan(&rows).Error

	return rows, total, err
}

func (r *BlogRepositoryImpl) ListPublic(ctx context.Context, page, pageSize int) ([]BlogRow, int64, error) {
	where := r.db.WithContext(ctx).Model(&domain.Blog{}).Where("blogs.is_public = ?", true)
	return r.list(ctx, where, page, pageSize)
}

func (r *BlogRepositoryImpl) ListByAuthor(ctx context.Context, authorID uint64, page, pageSize int) ([]BlogRow, int64, error) {
	where := r.db.WithContext(ctx).Model(&domain.Blog{}).Where("blogs.author_id = ?", authorID)
	return r.list(ctx, where, page, pageSize)
}

func (r *BlogRepositoryImpl) Update(ctx context.Context, blog *domain.Blog) error {
	blog.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(blog).Error
}

func (r *BlogRepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_id = ?", id).Delete(&domain.BlogLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Blog{}, id).Error
	})
}

func (r *BlogRepositoryImpl) IncrementViews(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Model(&domain.Blog{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *BlogRepositoryImpl) ToggleLike(ctx context.Context, blogID, userID uint64) (bool, int64, error) {
	var liked bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.BlogLike
		err := tx.Where("blog_id = ? AND user_id = ?", blogID, userID).First(&existing).Error

		switch {
		case err == nil:
			liked = false
			return tx.Delete(&existing).Error
		case defError.Is(err, gorm.ErrRecordNotFound):
			liked = true
			return tx.Create(&domain.BlogLike{BlogID: blogID, UserID: userID}).Error
		default:
			return err
		}
	})
	if err != nil {
		return false, 0, err
	}

	likes, err := r.CountLikes(ctx, blogID)
	return liked, likes, err
}

func (r *BlogRepositoryImpl) CountLikes(ctx context.Context, blogID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.BlogLike{}).
		Where("blog_id = ?", blogID).
		Count(&count).Error
	return count, err
}

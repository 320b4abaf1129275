package blog

import (
	"context"
	defError "errors"

	"github.com/srisabarish06/Notoria/internal/domain"
	"github.com/srisabarish06/Notoria/internal/errors"
	"github.com/srisabarish06/Notoria/internal/worker"

	"gorm.io/gorm"
)

type Service interface {
	CreateBlog(ctx context.Context, authorID uint64, blog *domain.Blog) error
	GetBlog(ctx context.Context, blogID uint64, requesterID uint64) (*BlogShowResponse, error)
	ListPublic(ctx context.Context, page, pageSize int) ([]BlogRow, int64, error)
	ListMine(ctx context.Context, authorID uint64, page, pageSize int) ([]BlogRow, int64, error)
	UpdateBlog(ctx context.Context, blogID uint64, authorID uint64, input UpdateBlogInput) (*domain.Blog, error)
	DeleteBlog(ctx context.Context, blogID uint64, authorID uint64) error
	ToggleLike(ctx context.Context, blogID uint64, userID uint64) (bool, int64, error)
}

type DefaultService struct {
	repository BlogRepository
	pool       *worker.Pool
}

func NewService(repository BlogRepository, pool *worker.Pool) Service {
	return &DefaultService{repository: repository, pool: pool}
}

type BlogShowResponse struct {
	domain.Blog
	LikeCount int64 `json:"like_count"`
}

type UpdateBlogInput struct {
	Title    *string
	Content  *string
	Tags     *[]string
	IsPublic *bool
}

func (s *DefaultService) CreateBlog(ctx context.Context, authorID uint64, blog *domain.Blog) error {
	blog.AuthorID = authorID
	if blog.Tags == nil {
		blog.Tags = []string{}
	}
	return s.repository.Create(ctx, blog)
}

// GetBlog returns a single blog. Private blogs are visible only to the
// author; public reads bump the view counter off the request path.
func (s *DefaultService) GetBlog(ctx context.Context, blogID uint64, requesterID uint64) (*BlogShowResponse, error) {
	blog, err := s.fetch(ctx, blogID)
	if err != nil {
		return nil, err
	}

	if !blog.IsPublic && blog.AuthorID != requesterID {
		return nil, errors.Forbidden("Access denied", nil)
	}

	if blog.IsPublic {
		id := blog.ID
		s.pool.Submit(func(bgCtx context.Context) error {
			return s.repository.IncrementViews(bgCtx, id)
		})
		blog.Views++
	}

	likes, err := s.repository.CountLikes(ctx, blogID)
	if err != nil {
		return nil, err
	}

	return &BlogShowResponse{Blog: *blog, LikeCount: likes}, nil
}

func (s *DefaultService) ListPublic(ctx context.Context, page, pageSize int) ([]BlogRow, int64, error) {
	return s.repository.ListPublic(ctx, page, pageSize)
}

func (s *DefaultService) ListMine(ctx context.Context, authorID uint64, page, pageSize int) ([]BlogRow, int64, error) {
	return s.repository.ListByAuthor(ctx, authorID, page, pageSize)
}

func (s *DefaultService) UpdateBlog(ctx context.Context, blogID uint64, authorID uint64, input UpdateBlogInput) (*domain.Blog, error) {
	blog, err := s.fetch(ctx, blogID)
	if err != nil {
		return nil, err
	}

	// only the author can update
	if blog.AuthorID != authorID {
		return nil, errors.Forbidden("Permission denied", nil)
	}

	if input.Title != nil {
		blog.Title = *input.Title
	}
	if input.Content != nil {
		blog.Content = *input.Content
	}
	if input.Tags != nil {
		blog.Tags = *input.Tags
	}
	if input.IsPublic != nil {
		blog.IsPublic = *input.IsPublic
	}

	if err := s.repository.Update(ctx, blog); err != nil {
		return nil, err
	}

	return blog, nil
}

func (s *DefaultService) DeleteBlog(ctx context.Context, blogID uint64, authorID uint64) error {
	blog, err := s.fetch(ctx, blogID)
	if err != nil {
		return err
	}

	if blog.AuthorID != authorID {
		return errors.Forbidden("Permission denied", nil)
	}

	return s.repository.Delete(ctx, blogID)
}

func (s *DefaultService) ToggleLike(ctx context.Context, blogID uint64, userID uint64) (bool, int64, error) {
	if _, err := s.fetch(ctx, blogID); err != nil {
		return false, 0, err
	}
	return s.repository.ToggleLike(ctx, blogID, userID)
}

func (s *DefaultService) fetch(ctx context.Context, blogID uint64) (*domain.Blog, error) {
	blog, err := s.repository.FindByID(ctx, blogID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Blog not found", err)
		}
		return nil, err
	}
	return blog, nil
}

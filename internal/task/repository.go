package task

import (
	"context"
	"time"

	"github.com/srisabarish06/Notoria/internal/domain"

	"gorm.io/gorm"
)

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id uint64) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, int64, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	OwnerID  uint64
	Status   string
	Priority string
	Page     int
	PageSize int
}

type TaskRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *domain.Task) error {
	task.CreatedAt = time.Now().UTC()
	task.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepositoryImpl) List(ctx context.Context, filter TaskFilter) ([]domain.Task, int64, error) {
	var tasks []domain.Task
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("owner_id = ?", filter.OwnerID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	if err := query.Count(&total).Error; err != nil {
		return tasks, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.PageSize).
		Find(&tasks).Error

	return tasks, total, err
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&domain.Task{}, id).Error
}

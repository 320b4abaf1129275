package task

import (
	"context"
	defError "errors"
	"time"

	"github.com/srisabarish06/Notoria/internal/domain"
	"github.com/srisabarish06/Notoria/internal/errors"

	"gorm.io/gorm"
)

type Service interface {
	CreateTask(ctx context.Context, ownerID uint64, task *domain.Task) error
	GetTask(ctx context.Context, taskID uint64, ownerID uint64) (*domain.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]domain.Task, int64, error)
	UpdateTask(ctx context.Context, taskID uint64, ownerID uint64, input UpdateTaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, taskID uint64, ownerID uint64) error
}

type DefaultService struct {
	repository TaskRepository
}

func NewService(repository TaskRepository) Service {
	return &DefaultService{repository: repository}
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
}

func (s *DefaultService) CreateTask(ctx context.Context, ownerID uint64, task *domain.Task) error {
	task.OwnerID = ownerID
	if task.Status == "" {
		task.Status = domain.TaskTodo
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	return s.repository.Create(ctx, task)
}

// GetTask returns a task; tasks are private to their owner.
func (s *DefaultService) GetTask(ctx context.Context, taskID uint64, ownerID uint64) (*domain.Task, error) {
	task, err := s.fetchOwned(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *DefaultService) ListTasks(ctx context.Context, filter TaskFilter) ([]domain.Task, int64, error) {
	return s.repository.List(ctx, filter)
}

func (s *DefaultService) UpdateTask(ctx context.Context, taskID uint64, ownerID uint64, input UpdateTaskInput) (*domain.Task, error) {
	task, err := s.fetchOwned(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.repository.Update(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

func (s *DefaultService) DeleteTask(ctx context.Context, taskID uint64, ownerID uint64) error {
	if _, err := s.fetchOwned(ctx, taskID, ownerID); err != nil {
		return err
	}
	return s.repository.Delete(ctx, taskID)
}

func (s *DefaultService) fetchOwned(ctx context.Context, taskID, ownerID uint64) (*domain.Task, error) {
	task, err := s.repository.FindByID(ctx, taskID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Task not found", err)
		}
		return nil, err
	}

	if task.OwnerID != ownerID {
		return nil, errors.Forbidden("Access denied", nil)
	}

	return task, nil
}

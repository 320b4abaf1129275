package domain

import (
	"time"
)

// Task statuses.
const (
	TaskTodo       = "todo"
	TaskInProgress = "in-progress"
	TaskDone       = "done"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is a private to-do item, visible only to its owner.
type Task struct {
	ID          uint64     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status" gorm:"size:16;default:todo"`
	Priority    string     `json:"priority" gorm:"size:16;default:medium"`
	DueDate     *time.Time `json:"due_date"`
	OwnerID     uint64     `json:"owner_id"`
	Owner       User       `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

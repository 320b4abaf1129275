package domain

import (
	"time"
)

// Note is a shared document. OwnerID never changes after creation;
// there is no transfer operation.
type Note struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags" gorm:"serializer:json"`
	OwnerID   uint64    `json:"owner_id"`
	Owner     User      `json:"-"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

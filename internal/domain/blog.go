package domain

import (
	"time"
)

// Blog is an authored post. Unlike notes there is no collaboration;
// only the author mutates it.
type Blog struct {
	ID        uint64     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Tags      []string   `json:"tags" gorm:"serializer:json"`
	AuthorID  uint64     `json:"author_id"`
	Author    User       `json:"-"`
	IsPublic  bool       `json:"is_public"`
	Views     uint64     `json:"views"`
	Likes     []BlogLike `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BlogLike records one user's like on one blog.
type BlogLike struct {
	ID        uint64    `json:"id"`
	BlogID    uint64    `json:"blog_id" gorm:"uniqueIndex:idx_blog_like"`
	UserID    uint64    `json:"user_id" gorm:"uniqueIndex:idx_blog_like"`
	CreatedAt time.Time `json:"created_at"`
}

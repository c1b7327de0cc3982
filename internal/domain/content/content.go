// Package content defines the story and comment entities and their
// repository interfaces.
package content

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a story or comment lookup misses.
var ErrNotFound = errors.New("content not found")

// Story represents a published piece of member content.
type Story struct {
	ID        string     `json:"id"`
	AuthorID  string     `json:"authorId"`
	Title     string     `json:"title"`
	Slug      string     `json:"slug"`
	Body      string     `json:"body"`
	CoverPath *string    `json:"coverPath,omitempty"`
	LikeCount int        `json:"likeCount"`
	ViewCount int        `json:"viewCount"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Comment represents a member comment under a story.
type Comment struct {
	ID        string    `json:"id"`
	StoryID   string    `json:"storyId"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	LikeCount int       `json:"likeCount"`
	CreatedAt time.Time `json:"createdAt"`
}

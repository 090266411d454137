package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPostNotFound is returned when no post exists for the requested ID
	ErrPostNotFound = errors.New("post not found")

	// ErrValidation marks a request that was rejected before touching the store
	ErrValidation = errors.New("validation failed")
)

// Status is the publication state of a post
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Post represents a blog post.
// A post is created as a draft on its first save and becomes published only through an explicit publish.
// ID is assigned by the store on first persist and never changes afterwards.
type Post struct {
	ID        string
	Title     string
	Content   string
	Tags      []string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsNew reports whether the post has never been persisted
func (p *Post) IsNew() bool {
	return p.ID == ""
}

type PostRepository interface {
	// ListPosts returns every post, most recently updated first
	ListPosts(ctx context.Context) ([]*Post, error)

	// GetPost returns ErrPostNotFound when the id is unknown
	GetPost(ctx context.Context, id string) (*Post, error)

	// UpsertPost creates the post when it has no ID and updates it otherwise.
	// The store assigns ID, CreatedAt and UpdatedAt on p.
	// Updating an unknown ID returns ErrPostNotFound.
	UpsertPost(ctx context.Context, p *Post) error

	// DeletePost returns ErrPostNotFound when the id is unknown
	DeletePost(ctx context.Context, id string) error
}

package editor

import (
	"context"

	"github.com/dfryer1193/blogeditor/blog/domain"
)

// PostService is what a Session needs from the post backend.
// client.Client and application.PostService both satisfy it.
type PostService interface {
	ListPosts(ctx context.Context) ([]*domain.Post, error)
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	SaveDraft(ctx context.Context, p *domain.Post) (*domain.Post, error)
	Publish(ctx context.Context, p *domain.Post) (*domain.Post, error)
	DeletePost(ctx context.Context, id string) error
}

// Notifier shows transient feedback to the user
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Navigator moves the user between client routes.
// Replace swaps the current route without adding history, Navigate leaves it.
type Navigator interface {
	Replace(path string)
	Navigate(path string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

type nopNavigator struct{}

func (nopNavigator) Replace(string)  {}
func (nopNavigator) Navigate(string) {}

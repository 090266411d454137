package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dfryer1193/blogeditor/blog/domain"
	"github.com/rs/zerolog/log"
)

// PostService owns the server-side rules for creating, publishing and deleting posts
type PostService struct {
	repo domain.PostRepository
}

func NewPostService(repo domain.PostRepository) *PostService {
	return &PostService{
		repo: repo,
	}
}

// ListPosts returns every post, most recently updated first
func (s *PostService) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list posts: %w", err)
	}
	return posts, nil
}

// GetPost returns domain.ErrPostNotFound when no post has the given id
func (s *PostService) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	return s.repo.GetPost(ctx, id)
}

// SaveDraft creates the post when it has no ID and updates it otherwise.
// New and draft posts are stored as drafts. A published post stays published.
func (s *PostService) SaveDraft(ctx context.Context, in *domain.Post) (*domain.Post, error) {
	post, err := s.write(ctx, in, domain.StatusDraft)
	recordWrite(opSaveDraft, err)
	if err != nil {
		log.Error().Err(err).Str("postID", idOf(in)).Msg("Failed to save draft")
		return nil, err
	}

	log.Info().Str("postID", post.ID).Str("status", string(post.Status)).Msg("Saved draft")
	return post, nil
}

// Publish creates or updates the post with published status.
// Title and content must both be non-empty.
func (s *PostService) Publish(ctx context.Context, in *domain.Post) (*domain.Post, error) {
	if in != nil {
		if err := validateForPublish(in); err != nil {
			recordWrite(opPublish, err)
			return nil, err
		}
	}

	post, err := s.write(ctx, in, domain.StatusPublished)
	recordWrite(opPublish, err)
	if err != nil {
		log.Error().Err(err).Str("postID", idOf(in)).Msg("Failed to publish post")
		return nil, err
	}

	log.Info().Str("postID", post.ID).Msg("Published post")
	return post, nil
}

// DeletePost returns domain.ErrPostNotFound when no post has the given id
func (s *PostService) DeletePost(ctx context.Context, id string) error {
	err := s.repo.DeletePost(ctx, id)
	recordWrite(opDelete, err)
	if err != nil {
		if !errors.Is(err, domain.ErrPostNotFound) {
			log.Error().Err(err).Str("postID", id).Msg("Failed to delete post")
		}
		return err
	}

	log.Info().Str("postID", id).Msg("Deleted post")
	return nil
}

func (s *PostService) write(ctx context.Context, in *domain.Post, status domain.Status) (*domain.Post, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: post is required", domain.ErrValidation)
	}

	post := &domain.Post{
		ID:      in.ID,
		Title:   strings.TrimSpace(in.Title),
		Content: strings.TrimSpace(in.Content),
		Tags:    domain.NormalizeTags(in.Tags),
		Status:  status,
	}

	if !post.IsNew() {
		existing, err := s.repo.GetPost(ctx, post.ID)
		if err != nil {
			return nil, err
		}
		// published posts are never demoted back to draft
		if existing.Status == domain.StatusPublished {
			post.Status = domain.StatusPublished
		}
	}

	if err := s.repo.UpsertPost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func validateForPublish(p *domain.Post) error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if strings.TrimSpace(p.Content) == "" {
		return fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	return nil
}

func idOf(p *domain.Post) string {
	if p == nil {
		return ""
	}
	return p.ID
}

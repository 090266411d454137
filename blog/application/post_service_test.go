package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dfryer1193/blogeditor/blog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPostRepository struct {
	mock.Mock
}

func (m *mockPostRepository) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Post), args.Error(1)
}

func (m *mockPostRepository) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *mockPostRepository) UpsertPost(ctx context.Context, p *domain.Post) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPostRepository) DeletePost(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var stamp = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// assignID mimics the store writing the generated ID and timestamps back
func assignID(id string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		p := args.Get(1).(*domain.Post)
		if p.ID == "" {
			p.ID = id
			p.CreatedAt = stamp
		}
		p.UpdatedAt = stamp
	}
}

func TestPostService_SaveDraft_CreatesNewDraft(t *testing.T) {
	repo := new(mockPostRepository)
	svc := NewPostService(repo)
	ctx := context.Background()

	repo.On("UpsertPost", ctx, mock.MatchedBy(func(p *domain.Post) bool {
		return p.ID == "" &&
			p.Title == "Hello" &&
			p.Content == "" &&
			p.Status == domain.StatusDraft &&
			len(p.Tags) == 0 && p.Tags != nil
	})).Run(assignID("p1")).Return(nil).Once()

	post, err := svc.SaveDraft(ctx, &domain.Post{Title: "  Hello  "})
	require.NoError(t, err)

	assert.Equal(t, "p1", post.ID)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, domain.StatusDraft, post.Status)
	assert.Equal(t, []string{}, post.Tags)
	assert.Equal(t, stamp, post.UpdatedAt)
	repo.AssertExpectations(t)
}

func TestPostService_SaveDraft_NormalizesTags(t *testing.T) {
	repo := new(mockPostRepository)
	svc := NewPostService(repo)
	ctx := context.Background()

	repo.On("UpsertPost", ctx, mock.Anything).Run(assignID("p1")).Return(nil).Once()

	post, err := svc.SaveDraft(ctx, &domain.Post{Title: "t", Tags: []string{" a", "", "b "}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, post.Tags)
}

func TestPostService_SaveDraft_UpdatesExisting(t *testing.T) {
	repo := new(mockPostRepository)
	svc := NewPostService(repo)
	ctx := context.Background()

	repo.On("GetPost", ctx, "p1").Return(&domain.Post{ID: "p1", Status: domain.StatusDraft}, nil).Once()
	repo.On("UpsertPost", ctx, mock.MatchedBy(func(p *domain.Post) bool {
		return p.ID == "p1" && p.Title == "v2" && p.Status == domain.StatusDraft
	})).Run(assignID("")).Return(nil).Once()

	post, err := svc.SaveDraft(ctx, &domain.Post{ID: "p1", Title: "v2"})
	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)
	repo.AssertExpectations(t)
}

func TestPostService_SaveDraft_KeepsPublishedStatus(t *testing.T) {
	repo := new(mockPostRepository)
	svc := NewPostService(repo)
	ctx := context.Background()

	repo.On("GetPost", ctx, "p1").Return(&domain.Post{ID: "p1", Status: domain.StatusPublished}, nil).Once()
	repo.On("UpsertPost", ctx, mock.MatchedBy(func(p *domain.Post) bool {
		return p.Status == domain.StatusPublished
	})).Return(nil).Once()

	post, err := svc.SaveDraft(ctx, &domain.Post{ID: "p1", Title: "edited", Status: domain.StatusDraft})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, post.Status)
	repo.AssertExpectations(t)
}

func TestPostService_SaveDraft_UnknownID(t *testing.T) {
	repo := new(mockPostRepository)
	svc := NewPostService(repo)
	ctx := context.Background()

	repo.On("GetPost", ctx, "ghost").Return(nil, domain.ErrPostNotFound).Once()

	_, err := svc.SaveDraft(ctx, &domain.Post{ID: "ghost", Title: "x"})
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	repo.AssertNotCalled(t, "UpsertPost", mock.Anything, mock.Anything)
}

func TestPostService_SaveDraft_Nil(t *testing.T) {
	svc := NewPostService(new(mockPostRepository))

	_, err := svc.SaveDraft(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPostService_SaveDraft_RepositoryError(t *testing.T) {
	repo := new(mockPostRepository)
	svc := NewPostService(repo)
	ctx := context.Background()

	boom := errors.New("disk full")
	repo.On("UpsertPost", ctx, mock.Anything).Return(boom).Once()

	_, err := svc.SaveDraft(ctx, &domain.Post{Title: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestPostService_Publish(t *testing.T) {
	repo := new(mockPostRepository)
	svc := NewPostService(repo)
	ctx := context.Background()

	repo.On("UpsertPost", ctx, mock.MatchedBy(func(p *domain.Post) bool {
		return p.Status == domain.StatusPublished && p.Title == "Title" && p.Content == "Body"
	})).Run(assignID("p9")).Return(nil).Once()

	post, err := svc.Publish(ctx, &domain.Post{Title: "Title", Content: "Body\n", Tags: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, "p9", post.ID)
	assert.Equal(t, domain.StatusPublished, post.Status)
	assert.Equal(t, []string{"go"}, post.Tags)
	repo.AssertExpectations(t)
}

func TestPostService_Publish_ExistingDraft(t *testing.T) {
	repo := new(mockPostRepository)
	svc := NewPostService(repo)
	ctx := context.Background()

	repo.On("GetPost", ctx, "p1").Return(&domain.Post{ID: "p1", Status: domain.StatusDraft}, nil).Once()
	repo.On("UpsertPost", ctx, mock.MatchedBy(func(p *domain.Post) bool {
		return p.ID == "p1" && p.Status == domain.StatusPublished
	})).Return(nil).Once()

	post, err := svc.Publish(ctx, &domain.Post{ID: "p1", Title: "T", Content: "C"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, post.Status)
	repo.AssertExpectations(t)
}

func TestPostService_Publish_Validation(t *testing.T) {
	tests := []struct {
		name string
		post *domain.Post
	}{
		{name: "Empty title", post: &domain.Post{Content: "body"}},
		{name: "Whitespace title", post: &domain.Post{Title: "   ", Content: "body"}},
		{name: "Empty content", post: &domain.Post{Title: "title"}},
		{name: "Whitespace content", post: &domain.Post{Title: "title", Content: "\n\t"}},
		{name: "Nil post", post: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockPostRepository)
			svc := NewPostService(repo)

			_, err := svc.Publish(context.Background(), tt.post)
			assert.ErrorIs(t, err, domain.ErrValidation)
			repo.AssertNotCalled(t, "UpsertPost", mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "GetPost", mock.Anything, mock.Anything)
		})
	}
}

func TestPostService_ListAndGet(t *testing.T) {
	repo := new(mockPostRepository)
	svc := NewPostService(repo)
	ctx := context.Background()

	posts := []*domain.Post{{ID: "b"}, {ID: "a"}}
	repo.On("ListPosts", ctx).Return(posts, nil).Once()
	repo.On("GetPost", ctx, "a").Return(posts[1], nil).Once()
	repo.On("GetPost", ctx, "zzz").Return(nil, domain.ErrPostNotFound).Once()

	listed, err := svc.ListPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, posts, listed)

	got, err := svc.GetPost(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)

	_, err = svc.GetPost(ctx, "zzz")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestPostService_ListPosts_Error(t *testing.T) {
	repo := new(mockPostRepository)
	svc := NewPostService(repo)
	ctx := context.Background()

	repo.On("ListPosts", ctx).Return(nil, errors.New("db down")).Once()

	_, err := svc.ListPosts(ctx)
	assert.ErrorContains(t, err, "db down")
}

func TestPostService_DeletePost(t *testing.T) {
	repo := new(mockPostRepository)
	svc := NewPostService(repo)
	ctx := context.Background()

	repo.On("DeletePost", ctx, "p1").Return(nil).Once()
	repo.On("DeletePost", ctx, "gone").Return(domain.ErrPostNotFound).Once()

	assert.NoError(t, svc.DeletePost(ctx, "p1"))
	assert.ErrorIs(t, svc.DeletePost(ctx, "gone"), domain.ErrPostNotFound)
	repo.AssertExpectations(t)
}

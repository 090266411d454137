package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dfryer1193/blogeditor/blog/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ domain.PostRepository = (*GormPostRepository)(nil)

// postModel is the GORM mapping of the posts table
type postModel struct {
	ID        string    `gorm:"column:id;primaryKey;size:36"`
	Title     string    `gorm:"column:title;type:text;not null"`
	Content   string    `gorm:"column:content;type:text;not null"`
	Tags      []string  `gorm:"column:tags;type:text;serializer:json"`
	Status    string    `gorm:"column:status;size:16;not null;index:idx_posts_status_updated_at,priority:1"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false;index:idx_posts_updated_at;index:idx_posts_status_updated_at,priority:2"`
}

func (postModel) TableName() string {
	return "posts"
}

func (m *postModel) toDomain() *domain.Post {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}

	return &domain.Post{
		ID:        m.ID,
		Title:     m.Title,
		Content:   m.Content,
		Tags:      tags,
		Status:    domain.Status(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// GormPostRepository implements domain.PostRepository on top of GORM.
// It backs the MySQL deployment.
type GormPostRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormPostRepository creates a new GormPostRepository
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// AutoMigrate creates or updates the posts table
func (r *GormPostRepository) AutoMigrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&postModel{}); err != nil {
		return fmt.Errorf("failed to migrate posts table: %w", err)
	}
	return nil
}

// ListPosts returns every post ordered by last update, newest first
func (r *GormPostRepository) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	var models []postModel
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	posts := make([]*domain.Post, 0, len(models))
	for i := range models {
		posts = append(posts, models[i].toDomain())
	}
	return posts, nil
}

// GetPost retrieves a single post by ID
func (r *GormPostRepository) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	if id == "" {
		return nil, fmt.Errorf("post ID cannot be empty")
	}

	model, err := findPost(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return model.toDomain(), nil
}

// UpsertPost inserts a post without an ID under a freshly generated one, or updates an existing post
func (r *GormPostRepository) UpsertPost(ctx context.Context, p *domain.Post) error {
	if p == nil {
		return fmt.Errorf("post cannot be nil")
	}

	if !p.Status.Valid() {
		return fmt.Errorf("%w: invalid status %q", domain.ErrValidation, p.Status)
	}

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	now := r.now()

	if p.IsNew() {
		model := postModel{
			ID:        uuid.NewString(),
			Title:     p.Title,
			Content:   p.Content,
			Tags:      tags,
			Status:    string(p.Status),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
			return fmt.Errorf("failed to insert post: %w", err)
		}

		p.ID = model.ID
		p.CreatedAt = model.CreatedAt
		p.UpdatedAt = model.UpdatedAt
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model, err := findPost(tx, p.ID)
		if err != nil {
			return err
		}

		model.Title = p.Title
		model.Content = p.Content
		model.Tags = tags
		model.Status = string(p.Status)
		model.UpdatedAt = now

		if err := tx.Save(model).Error; err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}

		p.CreatedAt = model.CreatedAt
		p.UpdatedAt = model.UpdatedAt
		return nil
	})
}

// DeletePost removes a post
func (r *GormPostRepository) DeletePost(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("post ID cannot be empty")
	}

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&postModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrPostNotFound, id)
	}
	return nil
}

func findPost(db *gorm.DB, id string) (*postModel, error) {
	var model postModel
	err := db.Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPostNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &model, nil
}

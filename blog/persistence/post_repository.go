package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dfryer1193/blogeditor/blog/domain"
	"github.com/dfryer1193/blogeditor/shared/db"
	"github.com/google/uuid"
)

var _ domain.PostRepository = (*SQLitePostRepository)(nil)

// SQLitePostRepository implements domain.PostRepository using SQL database (SQLite)
type SQLitePostRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostRepository creates a new SQLitePostRepository from a standard sql.DB
func NewPostRepository(conn *sql.DB) *SQLitePostRepository {
	return &SQLitePostRepository{
		db:  conn,
		now: func() time.Time { return time.Now().UTC() },
	}
}

const listPostsQuery = `
	SELECT id, title, content, tags, status, created_at, updated_at
	FROM posts
	ORDER BY updated_at DESC, id DESC
`

// ListPosts returns every post ordered by last update, newest first
func (r *SQLitePostRepository) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	rows, err := db.GetExecutor(ctx, r.db).QueryContext(ctx, listPostsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0)
	for rows.Next() {
		var row postRow
		if err := rows.Scan(row.fields()...); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}

		post, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

const getPostQuery = `
	SELECT id, title, content, tags, status, created_at, updated_at
	FROM posts
	WHERE id = ?
`

// GetPost retrieves a single post by ID
func (r *SQLitePostRepository) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	if id == "" {
		return nil, fmt.Errorf("post ID cannot be empty")
	}

	var row postRow
	err := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, getPostQuery, id).Scan(row.fields()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPostNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return row.toDomain()
}

const insertPostQuery = `
	INSERT INTO posts (id, title, content, tags, status, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
`

const updatePostQuery = `
	UPDATE posts
	SET title = ?, content = ?, tags = ?, status = ?, updated_at = ?
	WHERE id = ?
`

// UpsertPost inserts a post without an ID under a freshly generated one, or updates an existing post.
// The stored timestamps are written back to p.
func (r *SQLitePostRepository) UpsertPost(ctx context.Context, p *domain.Post) error {
	if p == nil {
		return fmt.Errorf("post cannot be nil")
	}

	if !p.Status.Valid() {
		return fmt.Errorf("%w: invalid status %q", domain.ErrValidation, p.Status)
	}

	tags, err := encodeTags(p.Tags)
	if err != nil {
		return err
	}

	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)
		now := r.now()

		if p.IsNew() {
			id := uuid.NewString()
			_, err := executor.ExecContext(txCtx, insertPostQuery,
				id,
				p.Title,
				p.Content,
				tags,
				string(p.Status),
				now,
				now,
			)
			if err != nil {
				return fmt.Errorf("failed to insert post: %w", err)
			}

			p.ID = id
			p.CreatedAt = now
			p.UpdatedAt = now
			return nil
		}

		result, err := executor.ExecContext(txCtx, updatePostQuery,
			p.Title,
			p.Content,
			tags,
			string(p.Status),
			now,
			p.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}

		if err := requireAffected(result, p.ID); err != nil {
			return err
		}

		stored, err := r.GetPost(txCtx, p.ID)
		if err != nil {
			return err
		}

		p.CreatedAt = stored.CreatedAt
		p.UpdatedAt = stored.UpdatedAt
		return nil
	})
}

const deletePostQuery = `DELETE FROM posts WHERE id = ?`

// DeletePost removes a post
func (r *SQLitePostRepository) DeletePost(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("post ID cannot be empty")
	}

	result, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, deletePostQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return requireAffected(result, id)
}

func requireAffected(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrPostNotFound, id)
	}
	return nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}

	encoded, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(encoded), nil
}

// postRow is a private struct used to scan database rows
type postRow struct {
	ID        string
	Title     string
	Content   string
	Tags      string
	Status    string
	CreatedAt sql.NullTime
	UpdatedAt sql.NullTime
}

func (pr *postRow) fields() []any {
	return []any{
		&pr.ID,
		&pr.Title,
		&pr.Content,
		&pr.Tags,
		&pr.Status,
		&pr.CreatedAt,
		&pr.UpdatedAt,
	}
}

// toDomain converts a postRow to a domain.Post, decoding the JSON tag column
func (pr *postRow) toDomain() (*domain.Post, error) {
	tags := make([]string, 0)
	if pr.Tags != "" {
		if err := json.Unmarshal([]byte(pr.Tags), &tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags of post %s: %w", pr.ID, err)
		}
	}

	post := &domain.Post{
		ID:      pr.ID,
		Title:   pr.Title,
		Content: pr.Content,
		Tags:    tags,
		Status:  domain.Status(pr.Status),
	}

	if pr.CreatedAt.Valid {
		post.CreatedAt = pr.CreatedAt.Time
	}
	if pr.UpdatedAt.Valid {
		post.UpdatedAt = pr.UpdatedAt.Time
	}

	return post, nil
}

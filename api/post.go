package api

import (
	"fmt"
	"time"

	"github.com/dfryer1193/blogeditor/blog/domain"
)

// TimeFormat is the wire format of createdAt and updatedAt
const TimeFormat = time.RFC3339Nano

// Post is the JSON representation of a stored post
type Post struct {
	ID        string   `json:"_id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	Status    string   `json:"status"`
	CreatedAt string   `json:"createdAt,omitempty"`
	UpdatedAt string   `json:"updatedAt,omitempty"`
}

// PostProto is the body of save-draft and publish requests.
// Every field is optional; a missing _id creates a new post.
type PostProto struct {
	ID      string   `json:"_id,omitempty"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Status  string   `json:"status,omitempty"`
}

type Message struct {
	Message string `json:"message"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func FromDomain(p *domain.Post) Post {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	return Post{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Tags:      tags,
		Status:    string(p.Status),
		CreatedAt: formatTime(p.CreatedAt),
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}

func FromDomainList(posts []*domain.Post) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, FromDomain(p))
	}
	return out
}

// ToDomain parses the wire timestamps back into a domain.Post
func (p Post) ToDomain() (*domain.Post, error) {
	createdAt, err := parseTime(p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid createdAt on post %s: %w", p.ID, err)
	}
	updatedAt, err := parseTime(p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid updatedAt on post %s: %w", p.ID, err)
	}

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	return &domain.Post{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Tags:      tags,
		Status:    domain.Status(p.Status),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// ToDomain builds the partial post handed to the service.
// Status is left for the service to decide.
func (p PostProto) ToDomain() *domain.Post {
	return &domain.Post{
		ID:      p.ID,
		Title:   p.Title,
		Content: p.Content,
		Tags:    p.Tags,
	}
}

// NewPostProto builds a request body from a draft post
func NewPostProto(p *domain.Post) PostProto {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	return PostProto{
		ID:      p.ID,
		Title:   p.Title,
		Content: p.Content,
		Tags:    tags,
		Status:  string(p.Status),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeFormat)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(TimeFormat, s)
}

// Package client talks to the blog REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dfryer1193/blogeditor/api"
	"github.com/dfryer1193/blogeditor/blog/domain"
)

const (
	blogsPath = "/api/blogs"
)

// APIError is returned for any non-2xx answer other than 404
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("blog api returned %d", e.StatusCode)
	}
	return fmt.Sprintf("blog api returned %d: %s", e.StatusCode, e.Message)
}

// Client implements the post service over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API rooted at baseURL. A nil httpClient uses http.DefaultClient, which has no timeout.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: scheme and host are required", baseURL)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

func (c *Client) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	var wire []api.Post
	if err := c.do(ctx, http.MethodGet, blogsPath, nil, &wire); err != nil {
		return nil, err
	}

	posts := make([]*domain.Post, 0, len(wire))
	for _, w := range wire {
		p, err := w.ToDomain()
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (c *Client) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	var wire api.Post
	if err := c.do(ctx, http.MethodGet, blogsPath+"/"+url.PathEscape(id), nil, &wire); err != nil {
		return nil, err
	}
	return wire.ToDomain()
}

func (c *Client) SaveDraft(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	return c.write(ctx, blogsPath+"/save-draft", p)
}

func (c *Client) Publish(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	return c.write(ctx, blogsPath+"/publish", p)
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, blogsPath+"/"+url.PathEscape(id), nil, nil)
}

func (c *Client) write(ctx context.Context, path string, p *domain.Post) (*domain.Post, error) {
	var wire api.Post
	if err := c.do(ctx, http.MethodPost, path, api.NewPostProto(p), &wire); err != nil {
		return nil, err
	}
	return wire.ToDomain()
}

// do sends body as JSON and decodes a successful response into out when out is not nil
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response of %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var envelope api.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(data, &envelope)

	if resp.StatusCode == http.StatusNotFound {
		if envelope.Error.Message != "" {
			return fmt.Errorf("%w: %s", domain.ErrPostNotFound, envelope.Error.Message)
		}
		return domain.ErrPostNotFound
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Code:       envelope.Error.Code,
		Message:    envelope.Error.Message,
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	if resp.StatusCode == http.StatusBadRequest {
		return fmt.Errorf("%w: %w", domain.ErrValidation, apiErr)
	}
	return apiErr
}

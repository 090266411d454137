package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dfryer1193/blogeditor/api"
	"github.com/dfryer1193/blogeditor/blog/application"
	"github.com/dfryer1193/blogeditor/blog/domain"
	"github.com/dfryer1193/blogeditor/blog/persistence"
	"github.com/dfryer1193/blogeditor/shared/db/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: filepath.Join(t.TempDir(), "rest.db")})
	require.NoError(t, database.Connect())
	t.Cleanup(func() { database.Close() })

	service := application.NewPostService(persistence.NewPostRepository(database.DB()))

	router := gin.New()
	NewApi(router, NewPostHandler(service))
	return router
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodePost(t *testing.T, w *httptest.ResponseRecorder) api.Post {
	t.Helper()
	var post api.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	return post
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorBody {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestRoot(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Blog Editor API is running"}`, w.Body.String())
}

func TestSaveDraft_CreateThenUpdate(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/api/blogs/save-draft", `{"title":"Hello","content":"","tags":[],"status":"draft"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	created := decodePost(t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Hello", created.Title)
	assert.Equal(t, "draft", created.Status)
	assert.Equal(t, []string{}, created.Tags)
	assert.NotEmpty(t, created.CreatedAt)
	assert.NotEmpty(t, created.UpdatedAt)

	w = doRequest(router, http.MethodPost, "/api/blogs/save-draft",
		`{"_id":"`+created.ID+`","title":"Hello","content":"World","tags":["a","b"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	updated := decodePost(t, w)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "World", updated.Content)
	assert.Equal(t, []string{"a", "b"}, updated.Tags)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestSaveDraft_UnknownID(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/api/blogs/save-draft", `{"_id":"nope","title":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Code)
}

func TestSaveDraft_MalformedBody(t *testing.T) {
	router := setupRouter(t)

	for _, body := range []string{`{"title":`, `{"tags":"not-a-list"}`} {
		w := doRequest(router, http.MethodPost, "/api/blogs/save-draft", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, w).Code)
	}
}

func TestPublish(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/api/blogs/save-draft", `{"title":"Draft","content":"Body"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	draft := decodePost(t, w)

	w = doRequest(router, http.MethodPost, "/api/blogs/publish", `{"_id":"`+draft.ID+`","title":"Draft","content":"Body"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "published", decodePost(t, w).Status)

	// save-draft never demotes a published post
	w = doRequest(router, http.MethodPost, "/api/blogs/save-draft", `{"_id":"`+draft.ID+`","title":"Edited","content":"Body"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "published", decodePost(t, w).Status)

	w = doRequest(router, http.MethodPost, "/api/blogs/publish", `{"title":"Fresh","content":"Straight to published"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "published", decodePost(t, w).Status)
}

func TestPublish_Validation(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/api/blogs/publish", `{"title":"  ","content":"Body"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Message, "title is required")

	w = doRequest(router, http.MethodGet, "/api/blogs", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetPosts_OrderedAndPartitionable(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/api/blogs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	for _, title := range []string{"one", "two", "three"} {
		w = doRequest(router, http.MethodPost, "/api/blogs/save-draft", `{"title":"`+title+`"}`)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = doRequest(router, http.MethodGet, "/api/blogs", "")
	require.Equal(t, http.StatusOK, w.Code)

	var posts []api.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 3)
	assert.Equal(t, "three", posts[0].Title)
	assert.Equal(t, "one", posts[2].Title)
}

func TestGetPost(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/api/blogs/save-draft", `{"title":"find me","tags":["x"]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodePost(t, w)

	w = doRequest(router, http.MethodGet, "/api/blogs/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decodePost(t, w))

	w = doRequest(router, http.MethodGet, "/api/blogs/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePost(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/api/blogs/save-draft", `{"title":"bye"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodePost(t, w)

	w = doRequest(router, http.MethodDelete, "/api/blogs/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Blog post deleted successfully"}`, w.Body.String())

	w = doRequest(router, http.MethodDelete, "/api/blogs/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodGet, "/api/blogs/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type failingService struct{}

func (failingService) ListPosts(context.Context) ([]*domain.Post, error) {
	return nil, errors.New("connection reset")
}

func (failingService) GetPost(context.Context, string) (*domain.Post, error) {
	return nil, errors.New("connection reset")
}

func (failingService) SaveDraft(context.Context, *domain.Post) (*domain.Post, error) {
	return nil, errors.New("connection reset")
}

func (failingService) Publish(context.Context, *domain.Post) (*domain.Post, error) {
	return nil, errors.New("connection reset")
}

func (failingService) DeletePost(context.Context, string) error {
	return errors.New("connection reset")
}

func TestInternalErrorsAreHidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewApi(router, NewPostHandler(failingService{}))

	w := doRequest(router, http.MethodGet, "/api/blogs", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	body := decodeError(t, w)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Code)
	assert.NotContains(t, body.Message, "connection reset")

	w = doRequest(router, http.MethodPost, "/api/blogs/save-draft", `{"title":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", ErrorCode(http.StatusBadRequest))
	assert.Equal(t, "NOT_FOUND", ErrorCode(http.StatusNotFound))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", ErrorCode(http.StatusInternalServerError))
	assert.Equal(t, "ERROR", ErrorCode(http.StatusTeapot))
}

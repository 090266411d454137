package rest

import (
	"context"
	"net/http"

	"github.com/dfryer1193/blogeditor/api"
	"github.com/dfryer1193/blogeditor/blog/domain"
	"github.com/gin-gonic/gin"
)

// PostService is the behaviour the HTTP handlers need from the application layer
type PostService interface {
	ListPosts(ctx context.Context) ([]*domain.Post, error)
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	SaveDraft(ctx context.Context, p *domain.Post) (*domain.Post, error)
	Publish(ctx context.Context, p *domain.Post) (*domain.Post, error)
	DeletePost(ctx context.Context, id string) error
}

type PostHandler struct {
	service PostService
}

func NewPostHandler(service PostService) *PostHandler {
	return &PostHandler{service: service}
}

// GetPosts returns every post, most recently updated first
func (h *PostHandler) GetPosts(c *gin.Context) {
	posts, err := h.service.ListPosts(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.FromDomainList(posts))
}

func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.service.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.FromDomain(post))
}

// SaveDraft answers 201 when the request created the post and 200 when it updated one
func (h *PostHandler) SaveDraft(c *gin.Context) {
	h.write(c, h.service.SaveDraft)
}

// Publish answers 201 when the request created the post and 200 when it updated one
func (h *PostHandler) Publish(c *gin.Context) {
	h.write(c, h.service.Publish)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.service.DeletePost(c.Request.Context(), c.Param("id")); err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.Message{Message: "Blog post deleted successfully"})
}

func (h *PostHandler) write(c *gin.Context, op func(context.Context, *domain.Post) (*domain.Post, error)) {
	proto := &api.PostProto{}
	if err := c.ShouldBindJSON(proto); err != nil {
		AbortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	in := proto.ToDomain()
	created := in.IsNew()

	post, err := op(c.Request.Context(), in)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, api.FromDomain(post))
}

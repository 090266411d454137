package rest

import (
	"net/http"

	"github.com/dfryer1193/blogeditor/api"
	"github.com/gin-gonic/gin"
)

// NewApi mounts the blog routes and the root status route on router
func NewApi(router gin.IRouter, handler *PostHandler) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, api.Message{Message: "Blog Editor API is running"})
	})

	blogs := router.Group("/api/blogs")
	{
		blogs.GET("", handler.GetPosts)
		blogs.GET("/:id", handler.GetPost)
		blogs.POST("/save-draft", handler.SaveDraft)
		blogs.POST("/publish", handler.Publish)
		blogs.DELETE("/:id", handler.DeletePost)
	}
}

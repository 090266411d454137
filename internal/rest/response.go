package rest

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/blogeditor/api"
	"github.com/dfryer1193/blogeditor/blog/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorCode maps an HTTP status onto the code carried in the error envelope
func ErrorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusInternalServerError:
		return "INTERNAL_SERVER_ERROR"
	default:
		return "ERROR"
	}
}

// AbortWithError writes the {"error":{"code","message"}} envelope and stops the chain
func AbortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, api.ErrorResponse{
		Error: api.ErrorBody{
			Code:    ErrorCode(status),
			Message: message,
		},
	})
}

// respondWithServiceError translates service errors into HTTP responses
func respondWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrPostNotFound):
		AbortWithError(c, http.StatusNotFound, "Blog post not found")
	case errors.Is(err, domain.ErrValidation):
		AbortWithError(c, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		AbortWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram-go/backend/internal/service"
)

// respondError maps service errors onto HTTP statuses. Everything is
// surfaced as JSON with an "errors" field; unknown errors become 500s
// without leaking internals.
func respondError(c *gin.Context, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		if ve.Field != "" {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{ve.Field: ve.Message}})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"errors": ve.Message})
		return
	}

	var nf *service.NotFoundError
	if errors.As(err, &nf) {
		c.JSON(http.StatusNotFound, gin.H{"errors": nf.Error()})
		return
	}

	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": conflict.Message})
		return
	}

	switch {
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"errors": err.Error()})
	case errors.Is(err, service.ErrSelfFollow):
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "internal server error"})
	}
}

// requestUserID returns the authenticated caller's id. It is only
// meaningful behind AuthMiddleware.
func requestUserID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}

// optionalUserID returns the caller's id or nil for anonymous
// requests, for routes behind OptionalAuthMiddleware.
func optionalUserID(c *gin.Context) *uuid.UUID {
	if id, ok := requestUserID(c); ok {
		return &id
	}
	return nil
}

// parseID parses a uuid path parameter.
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"errors": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orvium/orvium-api/internal/middleware"
)

// CurrentUserID returns the authenticated user's ID from the request context.
func CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetString(middleware.ContextUserID)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("no authenticated user in context")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user ID in context: %w", err)
	}
	return id, nil
}

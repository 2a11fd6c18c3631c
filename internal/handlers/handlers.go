package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"repurpose-backend/internal/apperror"
	"repurpose-backend/internal/middleware"
)

// currentUser reads the id the auth middleware stored on the context.
func currentUser(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return uuid.Nil, apperror.Unauthorized("user id not found")
	}
	s, _ := userIDStr.(string)
	userID, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperror.Unauthorized("invalid user id")
	}
	return userID, nil
}

func pathUUID(c *gin.Context, name, notFound string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.NotFound(notFound)
	}
	return id, nil
}

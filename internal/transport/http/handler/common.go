package handler

import (
	"github.com/gin-gonic/gin"

	"ragineer/internal/transport/http/middleware"
)

type identity struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

func identityFromContext(c *gin.Context) (identity, bool) {
	userIDAny, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return identity{}, false
	}
	userID, ok := userIDAny.(string)
	if !ok || userID == "" {
		return identity{}, false
	}

	email, _ := c.Get(middleware.ContextUserEmail)
	name, _ := c.Get(middleware.ContextUserNameKey)
	role, _ := c.Get(middleware.ContextRoleKey)
	emailStr, _ := email.(string)
	nameStr, _ := name.(string)
	roleStr, _ := role.(string)

	return identity{UserID: userID, Email: emailStr, Name: nameStr, Role: roleStr}, true
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"ragineer/internal/model"
	"ragineer/internal/pkg/jwtutil"
	"ragineer/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUserEmail   = "user_email"
	ContextUserNameKey = "user_name"
	ContextRoleKey     = "user_role"
)

// UserLookup resolves token subjects to their current account record.
type UserLookup interface {
	GetByID(id string) (*model.User, error)
}

// AuthJWT validates the bearer token, loads the account so role changes
// and deactivation take effect immediately, and injects the identity.
func AuthJWT(secret string, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, 401, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, 401, response.CodeUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, 401, response.CodeUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		user, err := users.GetByID(claims.UserID)
		if err != nil {
			response.Error(c, 500, response.CodeInternalServer, "load user failed")
			c.Abort()
			return
		}
		if user == nil {
			response.Error(c, 401, response.CodeUnauthorized, "user not found")
			c.Abort()
			return
		}
		if !user.IsActive {
			response.Error(c, 401, response.CodeUnauthorized, "user is deactivated")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUserEmail, user.Email)
		c.Set(ContextUserNameKey, user.Name)
		c.Set(ContextRoleKey, user.Role)
		c.Next()
	}
}

// RequirePermission gates a route group on the role permission table.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextRoleKey)
		roleStr, ok := role.(string)
		if !ok || !model.HasPermission(roleStr, permission) {
			response.Error(c, 403, response.CodeForbidden, "permission denied: "+permission)
			c.Abort()
			return
		}
		c.Next()
	}
}

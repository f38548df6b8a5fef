package httpserver

import (
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
)

const (
	ctxUserIDKey = "user_id"
	ctxRoleKey   = "role"
)

// authMiddleware requires a valid bearer token and stores its user id and
// role on the gin context.
func authMiddleware(tokens tokenParser, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(c, logger, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthenticated))
			return
		}
		claims, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxRoleKey, claims.Role)
		c.Next()
	}
}

func requireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxRoleKey) != string(role) {
			writeError(c, nil, fmt.Errorf("%w: %s role required", domain.ErrForbidden, role))
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}

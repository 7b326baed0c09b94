package middleware

import (
	"context"  // Context for role lookups
	"net/http" // HTTP status codes

	"storefront/internal/domain" // Domain roles

	"github.com/gin-gonic/gin" // Gin web framework
)

// RoleReader looks up a user's current role
type RoleReader interface {
	RoleOf(ctx context.Context, userID string) (domain.Role, error)
}

// AdminOnlyMiddleware checks the user's role from the database on each request
func AdminOnlyMiddleware(roles RoleReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := IdentityFrom(c).UserID() // Get userID from context
		// Check if userID exists in context
		if !ok {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		role, err := roles.RoleOf(c.Request.Context(), userID) // Fetch role from storage
		// The token's role claim may be stale, so only the stored role counts
		if err != nil || role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		// If admin, proceed to the next handler
		c.Next()
	}
}

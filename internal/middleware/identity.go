package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"storefront/internal/domain" // Caller identity
	"storefront/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

const (
	// CookieName is the session cookie carrying the JWT
	CookieName  = "access_token"
	identityKey = "identity" // Context key of the resolved identity
)

// IdentityMiddleware resolves the caller from the session cookie or a Bearer header.
// Missing or invalid tokens make the caller a guest; the request is never aborted.
func IdentityMiddleware(secret string, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, fromCookie := bearerToken(c), false
		if tokenStr == "" {
			if v, err := c.Cookie(CookieName); err == nil && v != "" {
				tokenStr, fromCookie = v, true
			}
		}
		who := domain.Guest()
		if tokenStr != "" {
			claims, err := utils.ParseJWT(tokenStr, secret)
			if err == nil {
				who = domain.Authenticated(claims.UserID, claims.Role)
			} else if fromCookie {
				ClearSessionCookie(c, secureCookie) // Drop the stale cookie and continue as guest
			}
		}
		c.Set(identityKey, who) // Store identity in context
		c.Next()
	}
}

// RequireAuth rejects guests
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c).IsGuest() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity resolved for this request, guest when none was set
func IdentityFrom(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if who, ok := v.(domain.Identity); ok {
			return who
		}
	}
	return domain.Guest()
}

// SetSessionCookie stores the token in an http-only cookie
func SetSessionCookie(c *gin.Context, token string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(utils.TokenTTL.Seconds()), "/", "", secure, true)
}

// ClearSessionCookie expires the session cookie
func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization") // Get Authorization header
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

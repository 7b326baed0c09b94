package api

import (
	"net/http" // HTTP status codes

	"storefront/internal/middleware" // Session cookie helpers
	"storefront/internal/service"    // Account service

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// RegisterHandler creates an account and signs the user in
func RegisterHandler(accounts *service.AccountService, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.RegisterInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required!"})
			return
		}
		session, err := accounts.Register(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		middleware.SetSessionCookie(c, session.Token, secureCookie) // Sign the new user in
		c.JSON(http.StatusCreated, gin.H{
			"message": "User created successfully",
			"userId":  session.User.ID,
			"name":    session.User.Name,
			"email":   session.User.Email,
			"role":    session.User.Role,
			"token":   session.Token,
		})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(accounts *service.AccountService, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email or Password fields cannot be empty!"})
			return
		}
		session, err := accounts.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		middleware.SetSessionCookie(c, session.Token, secureCookie)
		c.JSON(http.StatusOK, gin.H{
			"userId": session.User.ID,
			"name":   session.User.Name,
			"email":  session.User.Email,
			"role":   session.User.Role,
			"token":  session.Token,
		})
	}
}

// LogoutHandler clears the session cookie
func LogoutHandler(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.ClearSessionCookie(c, secureCookie)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}

// MeHandler returns the signed-in user, or null for guests
func MeHandler(accounts *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := accounts.Me(c.Request.Context(), middleware.IdentityFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		if user == nil {
			c.JSON(http.StatusOK, nil)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

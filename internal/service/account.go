package service

import (
	"context" // Context for storage operations
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"strings" // String manipulation

	"storefront/internal/domain" // Importing domain models
	"storefront/internal/store"  // Record store
	"storefront/internal/utils"  // JWT and password helpers

	"github.com/google/uuid"     // Identifier generation
	"github.com/sirupsen/logrus" // Logging library
)

// RegisterInput is the registration payload
type RegisterInput struct {
	Name     string `json:"name" binding:"required"`        // Display name
	Email    string `json:"email" binding:"required,email"` // Login email
	Phone    string `json:"phone" binding:"required"`       // Contact phone
	Password string `json:"password" binding:"required"`    // Plain password
}

// Session is a signed-in user and their token
type Session struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// AccountService registers users and issues session tokens
type AccountService struct {
	store     *store.Store // Record store
	jwtSecret string       // HMAC secret for session tokens
}

// NewAccountService creates an account service
func NewAccountService(s *store.Store, jwtSecret string) *AccountService {
	return &AccountService{store: s, jwtSecret: jwtSecret}
}

// Register creates a user account and signs it in
func (a *AccountService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	if strings.TrimSpace(in.Name) == "" || email == "" || strings.TrimSpace(in.Phone) == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: all fields are required", domain.ErrInvalidInput)
	}
	if _, err := store.SelectOneByField[domain.User](ctx, a.store, "email", email); err == nil {
		return nil, fmt.Errorf("%w: email already exists", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Phone:    strings.TrimSpace(in.Phone),
		Password: hash,
		Role:     domain.RoleUser,
	}
	if err := a.store.Insert(ctx, user); err != nil {
		return nil, err // Duplicate email under a race surfaces as ErrConflict
	}
	logrus.WithField("user_id", user.ID).Info("User registered")
	return a.session(user)
}

// Login checks credentials and issues a token
func (a *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email or password fields cannot be empty", domain.ErrInvalidInput)
	}
	user, err := store.SelectOneByField[domain.User](ctx, a.store, "email", email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(user.Password, password) {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	return a.session(user)
}

// Me returns the caller's profile, nil for guests
func (a *AccountService) Me(ctx context.Context, who domain.Identity) (*domain.User, error) {
	userID, ok := who.UserID()
	if !ok {
		return nil, nil
	}
	return store.SelectOneByField[domain.User](ctx, a.store, "id", userID)
}

// RoleOf reads a user's current role from storage
func (a *AccountService) RoleOf(ctx context.Context, userID string) (domain.Role, error) {
	user, err := store.SelectOneByField[domain.User](ctx, a.store, "id", userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// EnsureAdmin creates the admin account unless the email is already taken; it reports whether it created one
func (a *AccountService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, fmt.Errorf("%w: admin email and password are required", domain.ErrInvalidInput)
	}
	if _, err := store.SelectOneByField[domain.User](ctx, a.store, "email", email); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, err
	}
	admin := &domain.User{ID: uuid.NewString(), Name: "Admin", Email: email, Password: hash, Role: domain.RoleAdmin}
	if err := a.store.Insert(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}

func (a *AccountService) session(user *domain.User) (*Session, error) {
	token, err := utils.GenerateJWT(user.ID, user.Role, a.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

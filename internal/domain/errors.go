package domain

import (
	"errors"
	"fmt"
)

// Failure kinds returned by every service operation
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrForbidden         = errors.New("access denied")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("authentication required")
	ErrStorageFailure    = errors.New("storage failure")
)

// InsufficientStockError names the product a request could not be served from
type InsufficientStockError struct {
	ProductID string
	Title     string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s. Available: %d, Requested: %d", e.Title, e.Available, e.Requested)
}

// Is lets errors.Is match ErrInsufficientStock
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

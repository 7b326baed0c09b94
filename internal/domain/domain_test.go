package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity(t *testing.T) {
	guest := Guest()
	assert.True(t, guest.IsGuest())
	_, ok := guest.UserID()
	assert.False(t, ok)
	assert.True(t, Authenticated("", RoleAdmin).IsGuest())

	user := Authenticated("u1", RoleUser)
	id, ok := user.UserID()
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
	assert.Equal(t, RoleUser, user.Role())
	assert.False(t, user.IsGuest())
}

func TestOrderTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusProcessing, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, OrderStatusPending.Cancellable())
	assert.True(t, OrderStatusProcessing.Cancellable())
	assert.False(t, OrderStatusShipped.Cancellable())
	assert.False(t, OrderStatusDelivered.Cancellable())

	assert.Equal(t, []string{"pending", "processing"}, CancellableStatuses())

	_, ok := ParseOrderStatus("lost")
	assert.False(t, ok)
	st, ok := ParseOrderStatus("shipped")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusShipped, st)
}

func TestInsufficientStockErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("placing order: %w", &InsufficientStockError{ProductID: "p1", Title: "Lamp", Requested: 5, Available: 3})
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrConflict))

	var stockErr *InsufficientStockError
	assert.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "insufficient stock for Lamp. Available: 3, Requested: 5", stockErr.Error())
}

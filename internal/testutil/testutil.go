// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"context"
	"testing"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewStore opens a migrated in-memory SQLite database
func NewStore(t testing.TB) *store.Store {
	t.Helper()
	return store.New(NewDB(t))
}

// NewDB opens the same database as NewStore and returns the gorm handle, for tests that hook callbacks
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(&config.Config{DBDriver: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// User inserts a user with the given role
func User(t testing.TB, s *store.Store, role domain.Role) *domain.User {
	t.Helper()
	id := uuid.NewString()
	u := &domain.User{
		ID:       id,
		Name:     "User " + id[:8],
		Email:    id[:8] + "@example.com",
		Phone:    "555-0100",
		Password: "not-a-real-hash",
		Role:     role,
	}
	require.NoError(t, s.Insert(context.Background(), u))
	return u
}

// Category inserts a category
func Category(t testing.TB, s *store.Store, name string) *domain.Category {
	t.Helper()
	c := &domain.Category{ID: uuid.NewString(), Name: name}
	require.NoError(t, s.Insert(context.Background(), c))
	return c
}

// Product inserts a product with the given price and stock
func Product(t testing.TB, s *store.Store, title string, price string, stock int) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ID:    uuid.NewString(),
		Title: title,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	require.NoError(t, s.Insert(context.Background(), p))
	return p
}

// Stock reads the current stock of a product
func Stock(t testing.TB, s *store.Store, productID string) int {
	t.Helper()
	p, err := store.SelectOneByField[domain.Product](context.Background(), s, "id", productID)
	require.NoError(t, err)
	return p.Stock
}

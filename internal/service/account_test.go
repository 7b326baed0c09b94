package service

import (
	"context"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/testutil"
	"storefront/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	accounts := NewAccountService(testutil.NewStore(t), "secret")

	session, err := accounts.Register(ctx, RegisterInput{Name: "Grace", Email: "Grace@Example.com", Phone: "555", Password: "pw123456"})
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", session.User.Email)
	assert.Equal(t, domain.RoleUser, session.User.Role)

	claims, err := utils.ParseJWT(session.Token, "secret")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)

	_, err = accounts.Register(ctx, RegisterInput{Name: "Dup", Email: "grace@example.com", Phone: "1", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = accounts.Register(ctx, RegisterInput{Name: "Incomplete", Email: "i@example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	logged, err := accounts.Login(ctx, "grace@example.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, logged.User.ID)

	_, err = accounts.Login(ctx, "grace@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = accounts.Login(ctx, "nobody@example.com", "pw123456")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = accounts.Login(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	me, err := accounts.Me(ctx, domain.Authenticated(session.User.ID, domain.RoleUser))
	require.NoError(t, err)
	assert.Equal(t, "Grace", me.Name)
	me, err = accounts.Me(ctx, domain.Guest())
	require.NoError(t, err)
	assert.Nil(t, me)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	accounts := NewAccountService(testutil.NewStore(t), "secret")

	created, err := accounts.EnsureAdmin(ctx, "admin@example.com", "admin")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = accounts.EnsureAdmin(ctx, "admin@example.com", "admin")
	require.NoError(t, err)
	assert.False(t, created)

	session, err := accounts.Login(ctx, "admin@example.com", "admin")
	require.NoError(t, err)
	role, err := accounts.RoleOf(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)

	_, err = accounts.EnsureAdmin(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

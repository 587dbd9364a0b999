package services

import (
	"context"
	"testing"
	"time"

	"rentbroker/internal/apperrors"
	"rentbroker/internal/models"
	"rentbroker/internal/store"
	th "rentbroker/internal/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAnonymous(t *testing.T) {
	e := newEnv(t)

	for _, header := range []string{"", "Basic dXNlcjpwYXNz", "Bearer ", "Bear"} {
		id, err := e.resolver.Resolve(context.Background(), header)
		assert.NoError(t, err, header)
		assert.Nil(t, id, header)
	}
}

func TestBearerTokenSchemeIsCaseInsensitive(t *testing.T) {
	for _, header := range []string{"Bearer abc", "bearer abc", "BEARER  abc "} {
		token, ok := BearerToken(header)
		assert.True(t, ok, header)
		assert.Equal(t, "abc", token, header)
	}

	for _, header := range []string{"", "Bearer", "Bearerabc", "Basic abc", "bearer "} {
		_, ok := BearerToken(header)
		assert.False(t, ok, header)
	}
}

func TestResolveUsesLiveRoles(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := th.CreateUser(t, e.db, "tina", models.RoleTenant)

	token, _, err := e.tokens.Issue(u)
	require.NoError(t, err)
	require.NoError(t, store.NewUserRepository(e.db).AddRole(ctx, u.ID, models.RoleOwner))

	id, err := e.resolver.Resolve(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, "tina@example.com", id.Subject)
	assert.True(t, id.HasRole(models.RoleOwner))
	assert.True(t, id.HasRole(models.RoleTenant))
	assert.Equal(t, []string{"ROLE_TENANT"}, id.TokenRoles)
	assert.False(t, id.Verified)
}

func TestResolveFailures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := th.CreateUser(t, e.db, "tina", models.RoleTenant)

	t.Run("unknown subject", func(t *testing.T) {
		ghost := &models.User{ID: 99, Email: "ghost@example.com"}
		token, _, err := e.tokens.Issue(ghost)
		require.NoError(t, err)

		_, err = e.resolver.Resolve(ctx, "Bearer "+token)
		assert.ErrorIs(t, err, ErrUnknownSubject)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("expired", func(t *testing.T) {
		e.tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := e.tokens.Issue(u)
		e.tokens.now = time.Now
		require.NoError(t, err)

		_, err = e.resolver.Resolve(ctx, "Bearer "+token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := e.resolver.Resolve(ctx, "Bearer garbage")
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("inactive", func(t *testing.T) {
		token, _, err := e.tokens.Issue(u)
		require.NoError(t, err)
		require.NoError(t, store.NewUserRepository(e.db).SetActive(ctx, u.ID, false))

		_, err = e.resolver.Resolve(ctx, "Bearer "+token)
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})
}

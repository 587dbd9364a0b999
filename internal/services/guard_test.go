package services

import (
	"errors"
	"testing"

	"rentbroker/internal/apperrors"
	"rentbroker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardAuthorize(t *testing.T) {
	var guard Guard
	caller := &Identity{UserID: 3, Roles: models.NewRoleSet(models.RoleOwner)}

	t.Run("anonymous", func(t *testing.T) {
		assert.ErrorIs(t, guard.Authorize(nil, models.RoleOwner), apperrors.ErrUnauthenticated)
	})

	t.Run("role missing", func(t *testing.T) {
		err := guard.Authorize(caller, models.RoleAdmin)
		require.ErrorIs(t, err, apperrors.ErrNotAuthorized)

		var denied *AccessDenied
		require.True(t, errors.As(err, &denied))
		assert.Equal(t, ReasonRoleMissing, denied.Reason)
	})

	t.Run("not owner", func(t *testing.T) {
		err := guard.Authorize(caller, models.RoleOwner, OwnedBy(4))
		require.ErrorIs(t, err, apperrors.ErrNotAuthorized)

		var denied *AccessDenied
		require.True(t, errors.As(err, &denied))
		assert.Equal(t, ReasonNotOwner, denied.Reason)
	})

	t.Run("owner", func(t *testing.T) {
		assert.NoError(t, guard.Authorize(caller, models.RoleOwner, OwnedBy(3)))
	})

	t.Run("token roles are not trusted", func(t *testing.T) {
		stale := &Identity{UserID: 3, Roles: models.NewRoleSet(models.RoleTenant), TokenRoles: []string{"ROLE_ADMIN"}}
		assert.ErrorIs(t, guard.Authorize(stale, models.RoleAdmin), apperrors.ErrNotAuthorized)
	})
}

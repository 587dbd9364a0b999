package store

import (
	"context"
	"errors"
	"testing"

	"rentbroker/internal/apperrors"
	"rentbroker/internal/models"
	th "rentbroker/internal/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionIsCompareAndSet(t *testing.T) {
	gdb := th.NewDB(t)
	ctx := context.Background()
	owner := th.CreateUser(t, gdb, "olga", models.RoleOwner)
	p := th.CreateProperty(t, gdb, owner, models.PropertyStatusPending)
	repo := NewPropertyRepository(gdb)

	require.NoError(t, repo.TransitionStatus(ctx, p.ID, models.PropertyStatusPending, models.PropertyStatusApproved))

	err := repo.TransitionStatus(ctx, p.ID, models.PropertyStatusPending, models.PropertyStatusRejected)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusApproved, got.Status)
}

func TestFindByIDNotFound(t *testing.T) {
	gdb := th.NewDB(t)
	_, err := NewViewingRepository(gdb).FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDuplicateApplicationIsAlreadyExists(t *testing.T) {
	gdb := th.NewDB(t)
	ctx := context.Background()
	owner := th.CreateUser(t, gdb, "olga", models.RoleOwner)
	tenant := th.CreateUser(t, gdb, "tom", models.RoleTenant)
	p := th.CreateProperty(t, gdb, owner, models.PropertyStatusApproved)
	repo := NewApplicationRepository(gdb)

	first := &models.RentalApplication{TenantID: tenant.ID, PropertyID: p.ID, Status: models.ApplicationStatusPending}
	require.NoError(t, repo.Create(ctx, first))

	exists, err := repo.ExistsForTenant(ctx, tenant.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	second := &models.RentalApplication{TenantID: tenant.ID, PropertyID: p.ID, Status: models.ApplicationStatusPending}
	assert.ErrorIs(t, repo.Create(ctx, second), apperrors.ErrAlreadyExists)
}

func TestUpdateDetailsNeverTouchesStatus(t *testing.T) {
	gdb := th.NewDB(t)
	ctx := context.Background()
	owner := th.CreateUser(t, gdb, "olga", models.RoleOwner)
	p := th.CreateProperty(t, gdb, owner, models.PropertyStatusRejected)
	repo := NewPropertyRepository(gdb)

	p.Title = "Renovated loft"
	p.Bedrooms = 0
	p.Status = models.PropertyStatusApproved
	require.NoError(t, repo.UpdateDetails(ctx, p))

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renovated loft", got.Title)
	assert.Equal(t, 0, got.Bedrooms)
	assert.Equal(t, models.PropertyStatusRejected, got.Status)
}

func TestUserRoles(t *testing.T) {
	gdb := th.NewDB(t)
	ctx := context.Background()
	u := th.CreateUser(t, gdb, "Mixed.Case", models.RoleTenant)
	repo := NewUserRepository(gdb)

	got, err := repo.FindBySubject(ctx, "MIXED.CASE@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.HasRole(models.RoleTenant))

	got, err = repo.FindBySubject(ctx, "mixed.case")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, repo.AddRole(ctx, u.ID, models.RoleOwner))
	require.NoError(t, repo.AddRole(ctx, u.ID, models.RoleOwner))
	require.NoError(t, repo.RemoveRole(ctx, u.ID, models.RoleTenant))

	got, err = repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Role{models.RoleOwner}, got.Roles().Slice())

	_, err = repo.FindBySubject(ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	taken, err := repo.ExistsByEmail(ctx, "mixed.case@example.com")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestWithinTxRollsBack(t *testing.T) {
	gdb := th.NewDB(t)
	ctx := context.Background()
	owner := th.CreateUser(t, gdb, "olga", models.RoleOwner)
	p := th.CreateProperty(t, gdb, owner, models.PropertyStatusPending)
	repo := NewPropertyRepository(gdb)
	boom := errors.New("boom")

	err := NewTxManager(gdb).WithinTx(ctx, func(ctx context.Context) error {
		if err := repo.TransitionStatus(ctx, p.ID, models.PropertyStatusPending, models.PropertyStatusApproved); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusPending, got.Status)
}

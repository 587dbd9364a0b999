package services

import (
	"context"
	"testing"

	"rentbroker/internal/apperrors"
	"rentbroker/internal/models"
	"rentbroker/internal/query"
	th "rentbroker/internal/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRequiresVerifiedTenant(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	olga := th.CreateUser(t, e.db, "olga", models.RoleOwner)
	tina := th.CreateUser(t, e.db, "tina", models.RoleTenant)
	p := th.CreateProperty(t, e.db, olga, models.PropertyStatusApproved)
	req := &models.ApplicationRequest{PropertyID: p.ID, Message: "We would love to move in"}

	_, err := e.applications.Submit(ctx, identityOf(tina), req)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)

	_, err = e.applications.Submit(ctx, identityOf(olga), req)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)

	th.SetVerified(t, e.db, tina, true)
	app, err := e.applications.Submit(ctx, identityOf(tina), req)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	assert.Equal(t, tina.ID, app.TenantID)
}

func TestSubmitChecksProperty(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	olga := th.CreateUser(t, e.db, "olga", models.RoleOwner)
	tina := th.CreateUser(t, e.db, "tina", models.RoleTenant)
	th.SetVerified(t, e.db, tina, true)
	pending := th.CreateProperty(t, e.db, olga, models.PropertyStatusPending)

	_, err := e.applications.Submit(ctx, identityOf(tina), &models.ApplicationRequest{PropertyID: 9999})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = e.applications.Submit(ctx, identityOf(tina), &models.ApplicationRequest{PropertyID: pending.ID})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestDuplicateSubmitConflictsAfterDecision(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	olga := th.CreateUser(t, e.db, "olga", models.RoleOwner)
	tina := th.CreateUser(t, e.db, "tina", models.RoleTenant)
	th.SetVerified(t, e.db, tina, true)
	p := th.CreateProperty(t, e.db, olga, models.PropertyStatusApproved)
	req := &models.ApplicationRequest{PropertyID: p.ID}

	app, err := e.applications.Submit(ctx, identityOf(tina), req)
	require.NoError(t, err)
	_, err = e.applications.Reject(ctx, identityOf(olga), app.ID)
	require.NoError(t, err)

	_, err = e.applications.Submit(ctx, identityOf(tina), req)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestDecideApplication(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	olga := th.CreateUser(t, e.db, "olga", models.RoleOwner)
	otto := th.CreateUser(t, e.db, "otto", models.RoleOwner)
	tina := th.CreateUser(t, e.db, "tina", models.RoleTenant)
	p := th.CreateProperty(t, e.db, olga, models.PropertyStatusApproved)
	app := th.CreateApplication(t, e.db, tina, p, models.ApplicationStatusPending)

	_, err := e.applications.Approve(ctx, identityOf(otto), app.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)

	_, err = e.applications.Approve(ctx, identityOf(tina), app.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)

	approved, err := e.applications.Approve(ctx, identityOf(olga), app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApproved, approved.Status)

	_, err = e.applications.Approve(ctx, identityOf(olga), app.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	_, err = e.applications.Reject(ctx, identityOf(olga), app.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	_, err = e.applications.Reject(ctx, identityOf(olga), 9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListApplications(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	olga := th.CreateUser(t, e.db, "olga", models.RoleOwner)
	otto := th.CreateUser(t, e.db, "otto", models.RoleOwner)
	tina := th.CreateUser(t, e.db, "tina", models.RoleTenant)
	tom := th.CreateUser(t, e.db, "tom", models.RoleTenant)
	p1 := th.CreateProperty(t, e.db, olga, models.PropertyStatusApproved)
	p2 := th.CreateProperty(t, e.db, otto, models.PropertyStatusApproved)
	th.CreateApplication(t, e.db, tina, p1, models.ApplicationStatusPending)
	th.CreateApplication(t, e.db, tina, p2, models.ApplicationStatusApproved)
	th.CreateApplication(t, e.db, tom, p1, models.ApplicationStatusRejected)

	mine, err := e.applications.ListMine(ctx, identityOf(tina), query.ApplicationFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.TotalElements)

	forOlga, err := e.applications.ListForOwner(ctx, identityOf(olga), query.ApplicationFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), forOlga.TotalElements)

	pending := models.ApplicationStatusPending
	forOlga, err = e.applications.ListForOwner(ctx, identityOf(olga), query.ApplicationFilters{Status: &pending})
	require.NoError(t, err)
	require.Len(t, forOlga.Content, 1)
	assert.Equal(t, tina.ID, forOlga.Content[0].TenantID)

	_, err = e.applications.ListForOwner(ctx, identityOf(tina), query.ApplicationFilters{})
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)
}

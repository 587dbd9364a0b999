// Package testhelpers builds in-memory databases and fixtures for package tests.
package testhelpers

import (
	"fmt"
	"testing"
	"time"

	"rentbroker/internal/db"
	"rentbroker/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB returns a migrated SQLite in-memory database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), db.Config(zerolog.Nop()))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// every pooled connection would otherwise get its own empty database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.RunMigrations(gdb, zerolog.Nop()))
	return gdb
}

// CreateUser inserts an active user holding roles. Owners are created verified.
func CreateUser(t *testing.T, gdb *gorm.DB, name string, roles ...models.Role) *models.User {
	t.Helper()

	u := &models.User{
		Email:        name + "@example.com",
		Username:     name,
		PasswordHash: "x",
		Firstname:    name,
		Lastname:     "Test",
		Active:       true,
	}
	for _, r := range roles {
		u.RoleRows = append(u.RoleRows, models.UserRole{Role: r})
		if r == models.RoleOwner {
			u.Verified = true
		}
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func SetVerified(t *testing.T, gdb *gorm.DB, u *models.User, verified bool) {
	t.Helper()
	require.NoError(t, gdb.Model(&models.User{}).Where("id = ?", u.ID).Update("verified", verified).Error)
	u.Verified = verified
}

// CreateProperty inserts a property owned by owner with the given status.
func CreateProperty(t *testing.T, gdb *gorm.DB, owner *models.User, status models.PropertyStatus, opts ...func(*models.Property)) *models.Property {
	t.Helper()

	p := &models.Property{
		OwnerID:     owner.ID,
		Title:       fmt.Sprintf("Flat of %s", owner.Username),
		Description: "Bright and quiet",
		Address:     "1 Main Street",
		City:        "Athens",
		Price:       800,
		Bedrooms:    2,
		Bathrooms:   1,
		Size:        70,
		Type:        models.PropertyTypeApartment,
		Status:      status,
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func CreateViewing(t *testing.T, gdb *gorm.DB, tenant *models.User, p *models.Property, status models.ViewingStatus, at time.Time) *models.ViewingRequest {
	t.Helper()

	v := &models.ViewingRequest{
		TenantID:    tenant.ID,
		PropertyID:  p.ID,
		RequestedAt: at,
		Status:      status,
	}
	require.NoError(t, gdb.Create(v).Error)
	return v
}

func CreateApplication(t *testing.T, gdb *gorm.DB, tenant *models.User, p *models.Property, status models.ApplicationStatus) *models.RentalApplication {
	t.Helper()

	a := &models.RentalApplication{
		TenantID:   tenant.ID,
		PropertyID: p.ID,
		Message:    "Interested",
		Status:     status,
	}
	require.NoError(t, gdb.Create(a).Error)
	return a
}

func Ptr[T any](v T) *T {
	return &v
}

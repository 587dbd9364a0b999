package services

import (
	"context"

	"rentbroker/internal/models"
	"rentbroker/internal/query"
)

// Repositories return apperrors kinds: NotFound for unknown ids, AlreadyExists for unique
// violations and for status transitions whose source status no longer holds.

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindBySubject(ctx context.Context, subject string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	SetActive(ctx context.Context, id int64, active bool) error
	SetVerified(ctx context.Context, id int64, verified bool) error
	AddRole(ctx context.Context, id int64, role models.Role) error
	RemoveRole(ctx context.Context, id int64, role models.Role) error
	Search(ctx context.Context, spec query.Spec) (*query.Page[models.User], error)
}

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error
	FindByID(ctx context.Context, id int64) (*models.Property, error)
	UpdateDetails(ctx context.Context, p *models.Property) error
	TransitionStatus(ctx context.Context, id int64, from, to models.PropertyStatus) error
	Search(ctx context.Context, spec query.Spec) (*query.Page[models.Property], error)
}

type ApplicationRepository interface {
	Create(ctx context.Context, a *models.RentalApplication) error
	FindByID(ctx context.Context, id int64) (*models.RentalApplication, error)
	ExistsForTenant(ctx context.Context, tenantID, propertyID int64) (bool, error)
	TransitionStatus(ctx context.Context, id int64, from, to models.ApplicationStatus) error
	Search(ctx context.Context, spec query.Spec) (*query.Page[models.RentalApplication], error)
}

type ViewingRepository interface {
	Create(ctx context.Context, v *models.ViewingRequest) error
	FindByID(ctx context.Context, id int64) (*models.ViewingRequest, error)
	ExistsForTenant(ctx context.Context, tenantID, propertyID int64) (bool, error)
	TransitionStatus(ctx context.Context, id int64, from, to models.ViewingStatus) error
	Search(ctx context.Context, spec query.Spec) (*query.Page[models.ViewingRequest], error)
}

// Transactor runs fn in one transaction; repository calls made with the ctx it receives
// read a consistent, locked snapshot.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

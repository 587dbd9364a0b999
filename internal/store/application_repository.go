package store

import (
	"context"

	"rentbroker/internal/models"
	"rentbroker/internal/query"

	"gorm.io/gorm"
)

type ApplicationRepository struct {
	table table[models.RentalApplication]
}

func NewApplicationRepository(gdb *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{table: table[models.RentalApplication]{db: gdb, noun: "application"}}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *models.RentalApplication) error {
	return r.table.create(ctx, a)
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id int64) (*models.RentalApplication, error) {
	return r.table.findByID(ctx, id)
}

func (r *ApplicationRepository) ExistsForTenant(ctx context.Context, tenantID, propertyID int64) (bool, error) {
	return r.table.exists(ctx, query.All(
		query.Equal("tenant_id", &tenantID),
		query.Equal("property_id", &propertyID),
	))
}

func (r *ApplicationRepository) TransitionStatus(ctx context.Context, id int64, from, to models.ApplicationStatus) error {
	return r.table.transition(ctx, id, from, to)
}

func (r *ApplicationRepository) Search(ctx context.Context, spec query.Spec) (*query.Page[models.RentalApplication], error) {
	return r.table.search(ctx, spec)
}

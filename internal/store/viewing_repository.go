package store

import (
	"context"

	"rentbroker/internal/models"
	"rentbroker/internal/query"

	"gorm.io/gorm"
)

type ViewingRepository struct {
	table table[models.ViewingRequest]
}

func NewViewingRepository(gdb *gorm.DB) *ViewingRepository {
	return &ViewingRepository{table: table[models.ViewingRequest]{db: gdb, noun: "viewing request"}}
}

func (r *ViewingRepository) Create(ctx context.Context, v *models.ViewingRequest) error {
	return r.table.create(ctx, v)
}

func (r *ViewingRepository) FindByID(ctx context.Context, id int64) (*models.ViewingRequest, error) {
	return r.table.findByID(ctx, id)
}

func (r *ViewingRepository) ExistsForTenant(ctx context.Context, tenantID, propertyID int64) (bool, error) {
	return r.table.exists(ctx, query.All(
		query.Equal("tenant_id", &tenantID),
		query.Equal("property_id", &propertyID),
	))
}

func (r *ViewingRepository) TransitionStatus(ctx context.Context, id int64, from, to models.ViewingStatus) error {
	return r.table.transition(ctx, id, from, to)
}

func (r *ViewingRepository) Search(ctx context.Context, spec query.Spec) (*query.Page[models.ViewingRequest], error) {
	return r.table.search(ctx, spec)
}

package store

import (
	"context"
	"fmt"

	"rentbroker/internal/models"
	"rentbroker/internal/query"

	"gorm.io/gorm"
)

type PropertyRepository struct {
	table table[models.Property]
}

func NewPropertyRepository(gdb *gorm.DB) *PropertyRepository {
	return &PropertyRepository{table: table[models.Property]{db: gdb, noun: "property"}}
}

func (r *PropertyRepository) Create(ctx context.Context, p *models.Property) error {
	return r.table.create(ctx, p)
}

func (r *PropertyRepository) FindByID(ctx context.Context, id int64) (*models.Property, error) {
	return r.table.findByID(ctx, id)
}

// UpdateDetails writes the descriptive fields of p. Status and owner are never written.
func (r *PropertyRepository) UpdateDetails(ctx context.Context, p *models.Property) error {
	q, _ := conn(ctx, r.table.db)
	err := q.Model(p).
		Select("title", "description", "address", "city", "price", "bedrooms", "bathrooms", "size", "type").
		Updates(p).Error
	if err != nil {
		return fmt.Errorf("failed to update property %d: %w", p.ID, err)
	}
	return nil
}

func (r *PropertyRepository) TransitionStatus(ctx context.Context, id int64, from, to models.PropertyStatus) error {
	return r.table.transition(ctx, id, from, to)
}

func (r *PropertyRepository) Search(ctx context.Context, spec query.Spec) (*query.Page[models.Property], error) {
	return r.table.search(ctx, spec)
}

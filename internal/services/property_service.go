package services

import (
	"context"
	"errors"

	"rentbroker/internal/apperrors"
	"rentbroker/internal/models"
	"rentbroker/internal/query"

	"github.com/rs/zerolog"
)

type PropertyService struct {
	properties PropertyRepository
	tx         Transactor
	guard      Guard
	logger     zerolog.Logger
}

func NewPropertyService(properties PropertyRepository, tx Transactor, logger zerolog.Logger) *PropertyService {
	return &PropertyService{
		properties: properties,
		tx:         tx,
		logger:     logger,
	}
}

// Create lists a new property for the calling owner. Every new listing waits for an admin.
func (s *PropertyService) Create(ctx context.Context, caller *Identity, req *models.PropertyRequest) (*models.Property, error) {
	if err := s.guard.Authorize(caller, models.RoleOwner); err != nil {
		return nil, err
	}
	if err := Validate(req); err != nil {
		return nil, err
	}

	p := &models.Property{OwnerID: caller.UserID, Status: models.PropertyStatusPending}
	req.Apply(p)
	if err := s.properties.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Int64("owner_id", caller.UserID).Msg("Error creating property")
		return nil, err
	}

	s.logger.Info().Int64("property_id", p.ID).Int64("owner_id", p.OwnerID).Msg("Property created")
	return p, nil
}

// Update rewrites the descriptive fields of an owned property. The status is left alone.
func (s *PropertyService) Update(ctx context.Context, caller *Identity, id int64, req *models.PropertyRequest) (*models.Property, error) {
	if err := s.guard.Authorize(caller, models.RoleOwner); err != nil {
		return nil, err
	}
	if err := Validate(req); err != nil {
		return nil, err
	}

	var updated *models.Property
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.properties.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.guard.Authorize(caller, models.RoleOwner, OwnedBy(p.OwnerID)); err != nil {
			return err
		}
		req.Apply(p)
		if err := s.properties.UpdateDetails(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		s.logFailure(err, "update", id, caller)
		return nil, err
	}

	s.logger.Info().Int64("property_id", id).Msg("Property updated")
	return updated, nil
}

// Resubmit sends a rejected property back to the approval queue.
func (s *PropertyService) Resubmit(ctx context.Context, caller *Identity, id int64) (*models.Property, error) {
	if err := s.guard.Authorize(caller, models.RoleOwner); err != nil {
		return nil, err
	}
	return s.transition(ctx, caller, id, "resubmit", models.PropertyStatusRejected, models.PropertyStatusPending,
		func(p *models.Property) error {
			return s.guard.Authorize(caller, models.RoleOwner, OwnedBy(p.OwnerID))
		})
}

func (s *PropertyService) Approve(ctx context.Context, caller *Identity, id int64) (*models.Property, error) {
	if err := s.guard.Authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.transition(ctx, caller, id, "approve", models.PropertyStatusPending, models.PropertyStatusApproved, nil)
}

func (s *PropertyService) Reject(ctx context.Context, caller *Identity, id int64) (*models.Property, error) {
	if err := s.guard.Authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.transition(ctx, caller, id, "reject", models.PropertyStatusPending, models.PropertyStatusRejected, nil)
}

// transition loads the property, runs check, verifies the source status and moves it to `to`
// with a compare-and-set update, all in one transaction.
func (s *PropertyService) transition(ctx context.Context, caller *Identity, id int64, action string,
	from, to models.PropertyStatus, check func(*models.Property) error,
) (*models.Property, error) {
	var moved *models.Property
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.properties.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(p); err != nil {
				return err
			}
		}
		if err := expectStatus("Property", id, p.Status, from); err != nil {
			return err
		}
		if err := s.properties.TransitionStatus(ctx, id, from, to); err != nil {
			return err
		}
		p.Status = to
		moved = p
		return nil
	})
	if err != nil {
		s.logFailure(err, action, id, caller)
		return nil, err
	}

	s.logger.Info().Int64("property_id", id).Int64("actor_id", caller.UserID).Str("status", string(to)).Msg("Property " + action + " succeeded")
	return moved, nil
}

// Get returns an approved property to anyone. Pending and rejected listings are only visible
// to their owner and to admins; everybody else gets NotFound.
func (s *PropertyService) Get(ctx context.Context, caller *Identity, id int64) (*models.Property, error) {
	p, err := s.properties.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsAvailable() {
		return p, nil
	}
	if caller != nil && (caller.UserID == p.OwnerID || caller.HasRole(models.RoleAdmin)) {
		return p, nil
	}
	return nil, apperrors.NotFound("Property %d not found", id)
}

// Search is the public catalogue. Only admins may look at statuses other than APPROVED.
func (s *PropertyService) Search(ctx context.Context, caller *Identity, filters query.PropertyFilters) (*query.Page[models.Property], error) {
	if filters.Status == nil || !caller.HasRole(models.RoleAdmin) {
		approved := models.PropertyStatusApproved
		filters.Status = &approved
	}
	return s.search(ctx, filters)
}

// ListMine returns the caller's own properties in every status.
func (s *PropertyService) ListMine(ctx context.Context, caller *Identity, filters query.PropertyFilters) (*query.Page[models.Property], error) {
	if err := s.guard.Authorize(caller, models.RoleOwner); err != nil {
		return nil, err
	}
	filters.OwnerID = &caller.UserID
	return s.search(ctx, filters)
}

func (s *PropertyService) ListPending(ctx context.Context, caller *Identity, filters query.PropertyFilters) (*query.Page[models.Property], error) {
	if err := s.guard.Authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	pending := models.PropertyStatusPending
	filters.Status = &pending
	return s.search(ctx, filters)
}

func (s *PropertyService) search(ctx context.Context, filters query.PropertyFilters) (*query.Page[models.Property], error) {
	spec, err := filters.ToSpec()
	if err != nil {
		return nil, err
	}
	return s.properties.Search(ctx, spec)
}

func (s *PropertyService) logFailure(err error, action string, id int64, caller *Identity) {
	var denied *AccessDenied
	switch {
	case errors.As(err, &denied):
		s.logger.Warn().Int64("property_id", id).Int64("actor_id", caller.UserID).
			Str("reason", string(denied.Reason)).Msg("Property " + action + " denied")
	case isDomainError(err):
		s.logger.Debug().Err(err).Int64("property_id", id).Msg("Property " + action + " rejected")
	default:
		s.logger.Error().Err(err).Int64("property_id", id).Msg("Property " + action + " failed")
	}
}

// expectStatus rejects a transition whose source status does not hold as a conflict.
func expectStatus[S ~string](noun string, id int64, actual, want S) error {
	if actual != want {
		return apperrors.AlreadyExists("%s %d is %s, expected %s", noun, id, actual, want)
	}
	return nil
}

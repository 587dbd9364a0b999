package services

import (
	"context"
	"errors"
	"time"

	"rentbroker/internal/apperrors"
	"rentbroker/internal/models"
	"rentbroker/internal/query"

	"github.com/rs/zerolog"
)

// ViewingService runs the viewing lifecycle:
//
//	REQUESTED -> CONFIRMED -> COMPLETED
//	REQUESTED -> DECLINED
type ViewingService struct {
	viewings   ViewingRepository
	properties PropertyRepository
	tx         Transactor
	guard      Guard
	now        func() time.Time
	logger     zerolog.Logger
}

func NewViewingService(viewings ViewingRepository, properties PropertyRepository, tx Transactor, logger zerolog.Logger) *ViewingService {
	return &ViewingService{
		viewings:   viewings,
		properties: properties,
		tx:         tx,
		now:        time.Now,
		logger:     logger,
	}
}

func (s *ViewingService) Request(ctx context.Context, caller *Identity, req *models.ViewingCreateRequest) (*models.ViewingRequest, error) {
	if err := s.guard.Authorize(caller, models.RoleTenant); err != nil {
		return nil, err
	}
	if err := Validate(req); err != nil {
		return nil, err
	}

	v := &models.ViewingRequest{
		TenantID:    caller.UserID,
		PropertyID:  req.PropertyID,
		Notes:       req.Notes,
		RequestedAt: s.now().UTC(),
		Status:      models.ViewingStatusRequested,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.properties.FindByID(ctx, req.PropertyID)
		if err != nil {
			return err
		}
		if !p.IsAvailable() {
			return apperrors.InvalidArgument("Property not available")
		}

		exists, err := s.viewings.ExistsForTenant(ctx, caller.UserID, req.PropertyID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.AlreadyExists("Viewing request already exists for this property")
		}
		return s.viewings.Create(ctx, v)
	})
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Int64("tenant_id", caller.UserID).Int64("property_id", req.PropertyID).Msg("Error requesting viewing")
		}
		return nil, err
	}

	s.logger.Info().Int64("viewing_id", v.ID).Int64("tenant_id", v.TenantID).Int64("property_id", v.PropertyID).Msg("Viewing requested")
	return v, nil
}

func (s *ViewingService) Confirm(ctx context.Context, caller *Identity, id int64) (*models.ViewingRequest, error) {
	return s.advance(ctx, caller, id, models.ViewingStatusRequested, models.ViewingStatusConfirmed)
}

func (s *ViewingService) Decline(ctx context.Context, caller *Identity, id int64) (*models.ViewingRequest, error) {
	return s.advance(ctx, caller, id, models.ViewingStatusRequested, models.ViewingStatusDeclined)
}

func (s *ViewingService) Complete(ctx context.Context, caller *Identity, id int64) (*models.ViewingRequest, error) {
	return s.advance(ctx, caller, id, models.ViewingStatusConfirmed, models.ViewingStatusCompleted)
}

func (s *ViewingService) advance(ctx context.Context, caller *Identity, id int64, from, to models.ViewingStatus) (*models.ViewingRequest, error) {
	if err := s.guard.Authorize(caller, models.RoleOwner); err != nil {
		return nil, err
	}

	var moved *models.ViewingRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.viewings.FindByID(ctx, id)
		if err != nil {
			return err
		}
		p, err := s.properties.FindByID(ctx, v.PropertyID)
		if err != nil {
			return err
		}
		if err := s.guard.Authorize(caller, models.RoleOwner, OwnedBy(p.OwnerID)); err != nil {
			return err
		}
		if err := expectStatus("Viewing request", id, v.Status, from); err != nil {
			return err
		}
		if err := s.viewings.TransitionStatus(ctx, id, from, to); err != nil {
			return err
		}
		v.Status = to
		moved = v
		return nil
	})
	if err != nil {
		var denied *AccessDenied
		switch {
		case errors.As(err, &denied):
			s.logger.Warn().Int64("viewing_id", id).Int64("actor_id", caller.UserID).Str("reason", string(denied.Reason)).Msg("Viewing transition denied")
		case !isDomainError(err):
			s.logger.Error().Err(err).Int64("viewing_id", id).Msg("Error updating viewing request")
		}
		return nil, err
	}

	s.logger.Info().Int64("viewing_id", id).Str("from", string(from)).Str("to", string(to)).Msg("Viewing request updated")
	return moved, nil
}

func (s *ViewingService) ListMine(ctx context.Context, caller *Identity, filters query.ViewingFilters) (*query.Page[models.ViewingRequest], error) {
	if err := s.guard.Authorize(caller, models.RoleTenant); err != nil {
		return nil, err
	}
	filters.TenantID = &caller.UserID
	filters.OwnerID = nil
	return s.search(ctx, filters)
}

func (s *ViewingService) ListForOwner(ctx context.Context, caller *Identity, filters query.ViewingFilters) (*query.Page[models.ViewingRequest], error) {
	if err := s.guard.Authorize(caller, models.RoleOwner); err != nil {
		return nil, err
	}
	filters.OwnerID = &caller.UserID
	filters.TenantID = nil
	return s.search(ctx, filters)
}

func (s *ViewingService) search(ctx context.Context, filters query.ViewingFilters) (*query.Page[models.ViewingRequest], error) {
	spec, err := filters.ToSpec()
	if err != nil {
		return nil, err
	}
	return s.viewings.Search(ctx, spec)
}

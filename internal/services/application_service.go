package services

import (
	"context"
	"errors"

	"rentbroker/internal/apperrors"
	"rentbroker/internal/models"
	"rentbroker/internal/query"

	"github.com/rs/zerolog"
)

type ApplicationService struct {
	applications ApplicationRepository
	properties   PropertyRepository
	tx           Transactor
	guard        Guard
	logger       zerolog.Logger
}

func NewApplicationService(applications ApplicationRepository, properties PropertyRepository, tx Transactor, logger zerolog.Logger) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		properties:   properties,
		tx:           tx,
		logger:       logger,
	}
}

// Submit files a PENDING application of a verified tenant for an approved property.
// A tenant applies at most once per property, whatever became of the earlier application.
func (s *ApplicationService) Submit(ctx context.Context, caller *Identity, req *models.ApplicationRequest) (*models.RentalApplication, error) {
	if err := s.guard.Authorize(caller, models.RoleTenant); err != nil {
		return nil, err
	}
	if !caller.Verified {
		return nil, apperrors.NotAuthorized("Tenant must be verified")
	}
	if err := Validate(req); err != nil {
		return nil, err
	}

	app := &models.RentalApplication{
		TenantID:   caller.UserID,
		PropertyID: req.PropertyID,
		Message:    req.Message,
		Status:     models.ApplicationStatusPending,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.properties.FindByID(ctx, req.PropertyID)
		if err != nil {
			return err
		}
		if !p.IsAvailable() {
			return apperrors.InvalidArgument("Property not available")
		}

		exists, err := s.applications.ExistsForTenant(ctx, caller.UserID, req.PropertyID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.AlreadyExists("Application already exists for this property")
		}
		return s.applications.Create(ctx, app)
	})
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Int64("tenant_id", caller.UserID).Int64("property_id", req.PropertyID).Msg("Error submitting application")
		}
		return nil, err
	}

	s.logger.Info().Int64("application_id", app.ID).Int64("tenant_id", app.TenantID).Int64("property_id", app.PropertyID).Msg("Application submitted")
	return app, nil
}

func (s *ApplicationService) Approve(ctx context.Context, caller *Identity, id int64) (*models.RentalApplication, error) {
	return s.decide(ctx, caller, id, models.ApplicationStatusApproved)
}

func (s *ApplicationService) Reject(ctx context.Context, caller *Identity, id int64) (*models.RentalApplication, error) {
	return s.decide(ctx, caller, id, models.ApplicationStatusRejected)
}

// decide lets the owner of the property settle a PENDING application. An application that
// has already been decided is a conflict.
func (s *ApplicationService) decide(ctx context.Context, caller *Identity, id int64, to models.ApplicationStatus) (*models.RentalApplication, error) {
	if err := s.guard.Authorize(caller, models.RoleOwner); err != nil {
		return nil, err
	}

	var decided *models.RentalApplication
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		app, err := s.applications.FindByID(ctx, id)
		if err != nil {
			return err
		}
		p, err := s.properties.FindByID(ctx, app.PropertyID)
		if err != nil {
			return err
		}
		if err := s.guard.Authorize(caller, models.RoleOwner, OwnedBy(p.OwnerID)); err != nil {
			return err
		}
		if err := expectStatus("Application", id, app.Status, models.ApplicationStatusPending); err != nil {
			return err
		}
		if err := s.applications.TransitionStatus(ctx, id, models.ApplicationStatusPending, to); err != nil {
			return err
		}
		app.Status = to
		decided = app
		return nil
	})
	if err != nil {
		var denied *AccessDenied
		switch {
		case errors.As(err, &denied):
			s.logger.Warn().Int64("application_id", id).Int64("actor_id", caller.UserID).Str("reason", string(denied.Reason)).Msg("Application decision denied")
		case !isDomainError(err):
			s.logger.Error().Err(err).Int64("application_id", id).Msg("Error deciding application")
		}
		return nil, err
	}

	s.logger.Info().Int64("application_id", id).Int64("owner_id", caller.UserID).Str("status", string(to)).Msg("Application decided")
	return decided, nil
}

// ListMine returns the caller's own applications.
func (s *ApplicationService) ListMine(ctx context.Context, caller *Identity, filters query.ApplicationFilters) (*query.Page[models.RentalApplication], error) {
	if err := s.guard.Authorize(caller, models.RoleTenant); err != nil {
		return nil, err
	}
	filters.TenantID = &caller.UserID
	filters.OwnerID = nil
	return s.search(ctx, filters)
}

// ListForOwner returns the applications made for any of the caller's properties.
func (s *ApplicationService) ListForOwner(ctx context.Context, caller *Identity, filters query.ApplicationFilters) (*query.Page[models.RentalApplication], error) {
	if err := s.guard.Authorize(caller, models.RoleOwner); err != nil {
		return nil, err
	}
	filters.OwnerID = &caller.UserID
	filters.TenantID = nil
	return s.search(ctx, filters)
}

func (s *ApplicationService) search(ctx context.Context, filters query.ApplicationFilters) (*query.Page[models.RentalApplication], error) {
	spec, err := filters.ToSpec()
	if err != nil {
		return nil, err
	}
	return s.applications.Search(ctx, spec)
}

package services

import (
	"context"
	"errors"
	"strings"

	"rentbroker/internal/apperrors"
	"rentbroker/internal/models"
	"rentbroker/internal/query"

	"github.com/rs/zerolog"
)

var ErrInvalidCredentials = &apperrors.Error{
	Kind:    apperrors.ErrUnauthenticated,
	Code:    "invalid_credentials",
	Message: "Invalid username/email or password",
}

type UserService struct {
	users  UserRepository
	tx     Transactor
	hasher PasswordHasher
	tokens *TokenService
	guard  Guard
	logger zerolog.Logger
}

func NewUserService(users UserRepository, tx Transactor, hasher PasswordHasher, tokens *TokenService, logger zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		tx:     tx,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates an active OWNER or TENANT account. Owners are verified right away,
// tenants wait for an admin.
func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if role, ok := models.ParseRole(string(req.Role)); ok {
		req.Role = role
	}
	if err := Validate(req); err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     req.Email,
		Username:  req.Username,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Phone:     req.Phone,
		Active:    true,
		Verified:  req.Role == models.RoleOwner,
		RoleRows:  []models.UserRole{{Role: req.Role}},
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		taken, err := s.users.ExistsByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.AlreadyExists("Email already exists")
		}
		taken, err = s.users.ExistsByUsername(ctx, user.Username)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.AlreadyExists("Username already exists")
		}

		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		return s.users.Create(ctx, user)
	})
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Str("email", req.Email).Msg("Error registering user")
		}
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Str("role", string(req.Role)).Msg("User registered successfully")
	return user, nil
}

// Authenticate checks credentials given a username or an email and issues a token.
func (s *UserService) Authenticate(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.FindBySubject(ctx, req.UsernameOrEmail)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Warn().Str("login", req.UsernameOrEmail).Msg("Failed authentication attempt")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error querying user")
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.logger.Warn().Str("login", req.UsernameOrEmail).Msg("Failed authentication attempt")
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, apperrors.WithCode(apperrors.NotAuthorized("Account is disabled"), "account_disabled")
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("User authenticated successfully")
	return &models.AuthResponse{User: user.Response(), Token: token, ExpiresAt: expiresAt}, nil
}

// Me returns the caller's own user record.
func (s *UserService) Me(ctx context.Context, caller *Identity) (*models.User, error) {
	if caller == nil {
		return nil, apperrors.Unauthenticated("Authentication is required")
	}
	return s.users.FindByID(ctx, caller.UserID)
}

func (s *UserService) Get(ctx context.Context, caller *Identity, id int64) (*models.User, error) {
	if err := s.guard.Authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

func (s *UserService) Search(ctx context.Context, caller *Identity, filters query.UserFilters) (*query.Page[models.User], error) {
	if err := s.guard.Authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	spec, err := filters.ToSpec()
	if err != nil {
		return nil, err
	}
	return s.users.Search(ctx, spec)
}

func (s *UserService) Activate(ctx context.Context, caller *Identity, id int64) error {
	return s.setActive(ctx, caller, id, true)
}

// Deactivate locks the user out: the identity resolver rejects tokens of inactive users.
func (s *UserService) Deactivate(ctx context.Context, caller *Identity, id int64) error {
	if caller != nil && caller.UserID == id {
		return apperrors.InvalidArgument("Admins cannot deactivate themselves")
	}
	return s.setActive(ctx, caller, id, false)
}

func (s *UserService) setActive(ctx context.Context, caller *Identity, id int64, active bool) error {
	return s.adminUpdate(ctx, caller, id, func(ctx context.Context, _ *models.User) error {
		return s.users.SetActive(ctx, id, active)
	}, func(e *zerolog.Event) *zerolog.Event {
		return e.Bool("active", active)
	})
}

// VerifyTenant marks a TENANT as verified so that they may submit rental applications.
func (s *UserService) VerifyTenant(ctx context.Context, caller *Identity, id int64) error {
	return s.adminUpdate(ctx, caller, id, func(ctx context.Context, target *models.User) error {
		if !target.HasRole(models.RoleTenant) {
			return apperrors.InvalidArgument("User %d is not a TENANT", id)
		}
		return s.users.SetVerified(ctx, id, true)
	}, func(e *zerolog.Event) *zerolog.Event {
		return e.Bool("verified", true)
	})
}

func (s *UserService) AssignRole(ctx context.Context, caller *Identity, id int64, role models.Role) error {
	if !role.Valid() {
		return apperrors.InvalidArgument("Unknown role %q", role)
	}
	return s.adminUpdate(ctx, caller, id, func(ctx context.Context, _ *models.User) error {
		return s.users.AddRole(ctx, id, role)
	}, func(e *zerolog.Event) *zerolog.Event {
		return e.Str("granted", string(role))
	})
}

func (s *UserService) RemoveRole(ctx context.Context, caller *Identity, id int64, role models.Role) error {
	if !role.Valid() {
		return apperrors.InvalidArgument("Unknown role %q", role)
	}
	if role == models.RoleAdmin && caller != nil && caller.UserID == id {
		return apperrors.InvalidArgument("Admins cannot remove their own ADMIN role")
	}
	return s.adminUpdate(ctx, caller, id, func(ctx context.Context, _ *models.User) error {
		return s.users.RemoveRole(ctx, id, role)
	}, func(e *zerolog.Event) *zerolog.Event {
		return e.Str("revoked", string(role))
	})
}

// adminUpdate runs one ADMIN-only mutation of user id inside a transaction.
func (s *UserService) adminUpdate(ctx context.Context, caller *Identity, id int64,
	apply func(ctx context.Context, target *models.User) error,
	fields func(*zerolog.Event) *zerolog.Event,
) error {
	if err := s.guard.Authorize(caller, models.RoleAdmin); err != nil {
		return err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		target, err := s.users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		return apply(ctx, target)
	})
	if err != nil {
		return err
	}

	fields(s.logger.Info().Int64("user_id", id).Int64("admin_id", caller.UserID)).Msg("User updated by admin")
	return nil
}

// CreateAdmin creates an active, verified ADMIN account, or grants ADMIN to the user that
// already holds the email.
func (s *UserService) CreateAdmin(ctx context.Context, email, username, password string) (*models.User, error) {
	var admin *models.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.users.FindBySubject(ctx, email)
		switch {
		case err == nil:
			if err := s.users.AddRole(ctx, existing.ID, models.RoleAdmin); err != nil {
				return err
			}
			if err := s.users.SetActive(ctx, existing.ID, true); err != nil {
				return err
			}
			admin, err = s.users.FindByID(ctx, existing.ID)
			return err
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}

		if len(password) < 8 {
			return apperrors.InvalidArgument("Password must be at least 8 characters")
		}
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return err
		}
		admin = &models.User{
			Email:        strings.TrimSpace(email),
			Username:     strings.TrimSpace(username),
			PasswordHash: hash,
			Firstname:    "Admin",
			Lastname:     "Admin",
			Active:       true,
			Verified:     true,
			RoleRows:     []models.UserRole{{Role: models.RoleAdmin}},
		}
		return s.users.Create(ctx, admin)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", admin.ID).Str("email", admin.Email).Msg("Admin account ready")
	return admin, nil
}

// isDomainError reports whether err belongs to the caller-facing taxonomy rather than the
// infrastructure.
func isDomainError(err error) bool {
	var appErr *apperrors.Error
	var denied *AccessDenied
	return errors.As(err, &appErr) || errors.As(err, &denied)
}

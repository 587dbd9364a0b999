package services

import (
	"context"
	"errors"
	"strings"

	"rentbroker/internal/apperrors"
	"rentbroker/internal/models"

	"github.com/rs/zerolog"
)

var (
	ErrUnknownSubject  = &apperrors.Error{Kind: apperrors.ErrUnauthenticated, Code: "unauthenticated", Message: "Unknown token subject"}
	ErrAccountDisabled = &apperrors.Error{Kind: apperrors.ErrUnauthenticated, Code: "unauthenticated", Message: "Account is disabled"}
	ErrTokenMismatch   = &apperrors.Error{Kind: apperrors.ErrUnauthenticated, Code: "invalid_token", Message: "Token is not valid"}
)

// Identity is the authenticated caller of one request. Roles are the live roles of the user
// record; TokenRoles are the claims the token was issued with and are informational only.
type Identity struct {
	UserID     int64
	Subject    string
	Roles      models.RoleSet
	Active     bool
	Verified   bool
	TokenRoles []string
}

func (id *Identity) HasRole(r models.Role) bool {
	return id != nil && id.Roles.Has(r)
}

// Clone returns a deep copy; nil stays nil.
func (id *Identity) Clone() *Identity {
	if id == nil {
		return nil
	}
	out := *id
	out.Roles = id.Roles.Clone()
	if id.TokenRoles != nil {
		out.TokenRoles = append([]string(nil), id.TokenRoles...)
	}
	return &out
}

func newIdentity(u *models.User, tokenRoles []string) *Identity {
	return &Identity{
		UserID:     u.ID,
		Subject:    u.Subject(),
		Roles:      u.Roles(),
		Active:     u.Active,
		Verified:   u.Verified,
		TokenRoles: tokenRoles,
	}
}

const bearerPrefix = "Bearer "

// BearerToken extracts the credential from an Authorization header value. The scheme is
// matched case-insensitively.
func BearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

type IdentityResolver struct {
	tokens *TokenService
	users  UserRepository
	logger zerolog.Logger
}

func NewIdentityResolver(tokens *TokenService, users UserRepository, logger zerolog.Logger) *IdentityResolver {
	return &IdentityResolver{
		tokens: tokens,
		users:  users,
		logger: logger,
	}
}

// Resolve turns an Authorization header into an identity. A missing or non-Bearer header is
// anonymous: (nil, nil). Every failure unwraps to apperrors.ErrUnauthenticated.
func (r *IdentityResolver) Resolve(ctx context.Context, header string) (*Identity, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, nil
	}

	claims, err := r.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := r.users.FindBySubject(ctx, claims.Subject)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, ErrUnknownSubject
	}
	if err != nil {
		return nil, err
	}

	if !user.Active {
		return nil, ErrAccountDisabled
	}

	if !r.tokens.IsValidFor(token, user) {
		return nil, ErrTokenMismatch
	}

	return newIdentity(user, claims.Roles), nil
}

package services

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"rentbroker/internal/apperrors"
	"rentbroker/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// Token failure kinds. All of them unwrap to apperrors.ErrUnauthenticated.
var (
	ErrTokenMalformed = &apperrors.Error{Kind: apperrors.ErrUnauthenticated, Code: "invalid_token", Message: "Malformed token"}
	ErrTokenSignature = &apperrors.Error{Kind: apperrors.ErrUnauthenticated, Code: "invalid_token", Message: "Invalid token signature"}
	ErrTokenExpired   = &apperrors.Error{Kind: apperrors.ErrUnauthenticated, Code: "expired_token", Message: "Token has expired"}
)

type TokenClaims struct {
	UserID int64    `json:"uid"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 identity tokens.
type TokenService struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

func NewTokenService(secret string, ttl time.Duration, logger zerolog.Logger) *TokenService {
	return &TokenService{
		secretKey: deriveSigningKey(secret),
		ttl:       ttl,
		now:       time.Now,
		logger:    logger,
	}
}

// deriveSigningKey uses a base64 secret of at least 256 bits as-is and hashes anything else
// down to a 256-bit key.
func deriveSigningKey(secret string) []byte {
	if raw, err := base64.StdEncoding.DecodeString(secret); err == nil && len(raw) >= 32 {
		return raw
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for user. Role claims are a snapshot of the user's roles right now.
func (s *TokenService) Issue(user *models.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := &TokenClaims{
		UserID: user.ID,
		Roles:  user.Roles().Claims(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Subject(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("Error generating token")
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// Validate checks the signature first and the expiry second.
func (s *TokenService) Validate(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		s.logger.Debug().Err(err).Msg("Token rejected")
		return nil, ErrTokenMalformed
	}
}

// IsValidFor reports whether the token names user as its subject and has not expired.
func (s *TokenService) IsValidFor(tokenString string, user *models.User) bool {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return false
	}
	return strings.EqualFold(claims.Subject, user.Subject())
}

package services

import (
	"fmt"

	"rentbroker/internal/apperrors"
	"rentbroker/internal/models"
)

type DenyReason string

const (
	ReasonRoleMissing DenyReason = "role_missing"
	ReasonNotOwner    DenyReason = "not_owner"
)

// AccessDenied is returned by the guard. Callers only see ErrNotAuthorized; the reason is
// kept for logs.
type AccessDenied struct {
	Reason  DenyReason
	Role    models.Role
	Message string
}

func (e *AccessDenied) Error() string {
	return e.Message
}

func (e *AccessDenied) Unwrap() error {
	return apperrors.ErrNotAuthorized
}

// OwnershipCheck decides whether the caller owns the resource at hand.
type OwnershipCheck func(id *Identity) bool

// OwnedBy passes when the caller's user id is ownerID.
func OwnedBy(ownerID int64) OwnershipCheck {
	return func(id *Identity) bool {
		return id.UserID == ownerID
	}
}

// Guard is the authorization rule set. It holds no state.
type Guard struct{}

// Authorize accepts the caller when its live role set contains required and every
// ownership check passes.
func (Guard) Authorize(id *Identity, required models.Role, checks ...OwnershipCheck) error {
	if id == nil {
		return apperrors.Unauthenticated("Authentication is required")
	}
	if !id.Roles.Has(required) {
		return &AccessDenied{
			Reason:  ReasonRoleMissing,
			Role:    required,
			Message: fmt.Sprintf("Forbidden: %s role required", required),
		}
	}
	for _, check := range checks {
		if !check(id) {
			return &AccessDenied{
				Reason:  ReasonNotOwner,
				Role:    required,
				Message: "Forbidden: you do not own this resource",
			}
		}
	}
	return nil
}

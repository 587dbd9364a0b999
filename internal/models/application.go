package models

import "time"

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusApproved ApplicationStatus = "APPROVED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	}
	return false
}

type RentalApplication struct {
	ID         int64             `gorm:"primaryKey" json:"id"`
	TenantID   int64             `gorm:"not null;uniqueIndex:idx_application_tenant_property" json:"tenant_id"`
	PropertyID int64             `gorm:"not null;uniqueIndex:idx_application_tenant_property;index" json:"property_id"`
	Message    string            `gorm:"size:2000" json:"message"`
	Status     ApplicationStatus `gorm:"size:16;not null;index" json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

type ApplicationRequest struct {
	PropertyID int64  `json:"property_id" validate:"required,gt=0"`
	Message    string `json:"message" validate:"max=2000"`
}

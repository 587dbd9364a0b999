package models

import "time"

type ViewingStatus string

const (
	ViewingStatusRequested ViewingStatus = "REQUESTED"
	ViewingStatusConfirmed ViewingStatus = "CONFIRMED"
	ViewingStatusDeclined  ViewingStatus = "DECLINED"
	ViewingStatusCompleted ViewingStatus = "COMPLETED"
)

func (s ViewingStatus) Valid() bool {
	switch s {
	case ViewingStatusRequested, ViewingStatusConfirmed, ViewingStatusDeclined, ViewingStatusCompleted:
		return true
	}
	return false
}

type ViewingRequest struct {
	ID          int64         `gorm:"primaryKey" json:"id"`
	TenantID    int64         `gorm:"not null;uniqueIndex:idx_viewing_tenant_property" json:"tenant_id"`
	PropertyID  int64         `gorm:"not null;uniqueIndex:idx_viewing_tenant_property;index" json:"property_id"`
	Notes       string        `gorm:"size:2000" json:"notes"`
	RequestedAt time.Time     `gorm:"not null;index" json:"requested_at"`
	Status      ViewingStatus `gorm:"size:16;not null;index" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type ViewingCreateRequest struct {
	PropertyID int64  `json:"property_id" validate:"required,gt=0"`
	Notes      string `json:"notes" validate:"max=2000"`
}

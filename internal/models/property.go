package models

import "time"

type PropertyStatus string

const (
	PropertyStatusPending  PropertyStatus = "PENDING"
	PropertyStatusApproved PropertyStatus = "APPROVED"
	PropertyStatusRejected PropertyStatus = "REJECTED"
)

func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyStatusPending, PropertyStatusApproved, PropertyStatusRejected:
		return true
	}
	return false
}

type PropertyType string

const (
	PropertyTypeApartment PropertyType = "APARTMENT"
	PropertyTypeHouse     PropertyType = "HOUSE"
	PropertyTypeStudio    PropertyType = "STUDIO"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeApartment, PropertyTypeHouse, PropertyTypeStudio:
		return true
	}
	return false
}

type Property struct {
	ID          int64          `gorm:"primaryKey" json:"id"`
	OwnerID     int64          `gorm:"not null;index" json:"owner_id"`
	Title       string         `gorm:"size:100;not null" json:"title"`
	Description string         `gorm:"size:2000" json:"description"`
	Address     string         `gorm:"size:255;not null" json:"address"`
	City        string         `gorm:"size:100;not null;index" json:"city"`
	Price       float64        `gorm:"type:decimal(12,2);not null" json:"price"`
	Bedrooms    int            `gorm:"not null" json:"bedrooms"`
	Bathrooms   int            `gorm:"not null" json:"bathrooms"`
	Size        int            `gorm:"not null" json:"size"`
	Type        PropertyType   `gorm:"size:16;not null" json:"type"`
	Status      PropertyStatus `gorm:"size:16;not null;index" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// IsAvailable reports whether the property may be searched publicly and targeted by
// applications and viewing requests.
func (p *Property) IsAvailable() bool {
	return p.Status == PropertyStatusApproved
}

type PropertyRequest struct {
	Title       string       `json:"title" validate:"required,min=5,max=100"`
	Description string       `json:"description" validate:"required,max=2000"`
	Address     string       `json:"address" validate:"required,min=5,max=255"`
	City        string       `json:"city" validate:"required,min=2,max=100"`
	Price       float64      `json:"price" validate:"gt=0"`
	Bedrooms    int          `json:"bedrooms" validate:"gte=0"`
	Bathrooms   int          `json:"bathrooms" validate:"gte=0"`
	Size        int          `json:"size" validate:"gte=1"`
	Type        PropertyType `json:"type" validate:"required,oneof=APARTMENT HOUSE STUDIO"`
}

// Apply copies the editable fields onto p. Status and ownership are never touched.
func (r *PropertyRequest) Apply(p *Property) {
	p.Title = r.Title
	p.Description = r.Description
	p.Address = r.Address
	p.City = r.City
	p.Price = r.Price
	p.Bedrooms = r.Bedrooms
	p.Bathrooms = r.Bathrooms
	p.Size = r.Size
	p.Type = r.Type
}

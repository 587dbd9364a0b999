package query

import (
	"strings"
	"time"

	"rentbroker/internal/models"
)

var (
	propertySortable = SortableColumns("id", "title", "city", "price", "bedrooms", "bathrooms",
		"size", "type", "status", "created_at", "updated_at")
	applicationSortable = SortableColumns("id", "status", "property_id", "tenant_id", "created_at", "updated_at")
	viewingSortable     = SortableColumns("id", "status", "property_id", "tenant_id", "requested_at", "created_at")
	userSortable        = SortableColumns("id", "email", "username", "active", "verified", "created_at")
)

var (
	propertyOwner = Relation{Table: "properties", Key: "id", Column: "owner_id"}
	userRole      = Relation{Table: "user_roles", Key: "user_id", Column: "role"}
)

type PropertyFilters struct {
	PageParams
	City         *string
	Type         *string
	MinPrice     *float64
	MaxPrice     *float64
	MinBedrooms  *int
	MinBathrooms *int
	MinSize      *int
	Status       *models.PropertyStatus
	OwnerID      *int64
}

func (f PropertyFilters) Predicate() Predicate {
	return All(
		Equal("status", f.Status),
		EqualFold("city", f.City),
		propertyType(f.Type),
		Between("price", f.MinPrice, f.MaxPrice),
		AtLeast("bedrooms", f.MinBedrooms),
		AtLeast("bathrooms", f.MinBathrooms),
		AtLeast("size", f.MinSize),
		Equal("owner_id", f.OwnerID),
	)
}

// propertyType matches nothing for an unknown type rather than ignoring it.
func propertyType(v *string) Predicate {
	if v == nil || strings.TrimSpace(*v) == "" {
		return Noop
	}
	t := models.PropertyType(strings.ToUpper(strings.TrimSpace(*v)))
	if !t.Valid() {
		return None
	}
	return Equal("type", &t)
}

func (f PropertyFilters) ToSpec() (Spec, error) {
	page, err := f.Request(propertySortable)
	if err != nil {
		return Spec{}, err
	}
	return Spec{Where: f.Predicate(), Page: page}, nil
}

type ApplicationFilters struct {
	PageParams
	TenantID   *int64
	OwnerID    *int64
	PropertyID *int64
	Status     *models.ApplicationStatus
}

func (f ApplicationFilters) Predicate() Predicate {
	return All(
		Equal("tenant_id", f.TenantID),
		Related("property_id", propertyOwner, f.OwnerID),
		Equal("property_id", f.PropertyID),
		Equal("status", f.Status),
	)
}

func (f ApplicationFilters) ToSpec() (Spec, error) {
	page, err := f.Request(applicationSortable)
	if err != nil {
		return Spec{}, err
	}
	return Spec{Where: f.Predicate(), Page: page}, nil
}

type ViewingFilters struct {
	PageParams
	TenantID      *int64
	OwnerID       *int64
	Status        *models.ViewingStatus
	RequestedFrom *time.Time
	RequestedTo   *time.Time
}

func (f ViewingFilters) Predicate() Predicate {
	return All(
		Equal("tenant_id", f.TenantID),
		Related("property_id", propertyOwner, f.OwnerID),
		Equal("status", f.Status),
		Between("requested_at", f.RequestedFrom, f.RequestedTo),
	)
}

func (f ViewingFilters) ToSpec() (Spec, error) {
	page, err := f.Request(viewingSortable)
	if err != nil {
		return Spec{}, err
	}
	return Spec{Where: f.Predicate(), Page: page}, nil
}

type UserFilters struct {
	PageParams
	Email    *string
	Username *string
	Active   *bool
	Verified *bool
	Role     *models.Role
}

func (f UserFilters) Predicate() Predicate {
	return All(
		Contains("email", f.Email),
		Contains("username", f.Username),
		Equal("active", f.Active),
		Equal("verified", f.Verified),
		Related("id", userRole, f.Role),
	)
}

func (f UserFilters) ToSpec() (Spec, error) {
	page, err := f.Request(userSortable)
	if err != nil {
		return Spec{}, err
	}
	return Spec{Where: f.Predicate(), Page: page}, nil
}

// File: internal/property/model.go
package property

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"propdesk_backend/internal/common"
)

type PropertyType string

const (
	TypeApartmentBuilding PropertyType = "apartment_building"
	TypeSingleFamily      PropertyType = "single_family"
	TypeCommercial        PropertyType = "commercial"
	TypeMixedUse          PropertyType = "mixed_use"
)

type PropertyStatus string

const (
	StatusManaged  PropertyStatus = "managed"
	StatusOnboard  PropertyStatus = "onboarding"
	StatusArchived PropertyStatus = "archived"
)

// Property is a managed object belonging to exactly one company.
type Property struct {
	common.BaseModel
	CompanyID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Name         string         `gorm:"type:varchar(255);not null"`
	Slug         string         `gorm:"type:varchar(280);not null;index"`
	PropertyType PropertyType   `gorm:"type:varchar(50);not null"`
	Status       PropertyStatus `gorm:"type:varchar(50);not null;default:'managed'"`
	AddressLine  string         `gorm:"type:varchar(255);not null"`
	City         string         `gorm:"type:varchar(100);not null"`
	PostalCode   string         `gorm:"type:varchar(20);not null"`
	Country      string         `gorm:"type:varchar(100);not null"`
	UnitsCount   int            `gorm:"not null;default:1"`
	Amenities    pq.StringArray `gorm:"type:text[]"`
	Notes        *string        `gorm:"type:text"`
}

func (Property) TableName() string {
	return "properties"
}

type CreateRequest struct {
	Name         string       `json:"name" binding:"required,min=2,max=255"`
	PropertyType PropertyType `json:"property_type" binding:"required,oneof=apartment_building single_family commercial mixed_use"`
	AddressLine  string       `json:"address_line" binding:"required,max=255"`
	City         string       `json:"city" binding:"required,max=100"`
	PostalCode   string       `json:"postal_code" binding:"required,max=20"`
	Country      string       `json:"country" binding:"required,max=100"`
	UnitsCount   int          `json:"units_count" binding:"required,min=1"`
	Amenities    []string     `json:"amenities" binding:"omitempty,max=50"`
	Notes        *string      `json:"notes" binding:"omitempty,max=5000"`
}

type UpdateRequest struct {
	Name         *string         `json:"name" binding:"omitempty,min=2,max=255"`
	PropertyType *PropertyType   `json:"property_type" binding:"omitempty,oneof=apartment_building single_family commercial mixed_use"`
	Status       *PropertyStatus `json:"status" binding:"omitempty,oneof=managed onboarding archived"`
	AddressLine  *string         `json:"address_line" binding:"omitempty,max=255"`
	City         *string         `json:"city" binding:"omitempty,max=100"`
	PostalCode   *string         `json:"postal_code" binding:"omitempty,max=20"`
	Country      *string         `json:"country" binding:"omitempty,max=100"`
	UnitsCount   *int            `json:"units_count" binding:"omitempty,min=1"`
	Amenities    []string        `json:"amenities" binding:"omitempty,max=50"`
	Notes        *string         `json:"notes" binding:"omitempty,max=5000"`
}

// SearchQuery captures the supported filters for listing properties.
type SearchQuery struct {
	Term     string
	Status   PropertyStatus
	City     string
	Page     int
	PageSize int
}

type Response struct {
	ID           uuid.UUID      `json:"id"`
	CompanyID    uuid.UUID      `json:"company_id"`
	Name         string         `json:"name"`
	Slug         string         `json:"slug"`
	PropertyType PropertyType   `json:"property_type"`
	Status       PropertyStatus `json:"status"`
	AddressLine  string         `json:"address_line"`
	City         string         `json:"city"`
	PostalCode   string         `json:"postal_code"`
	Country      string         `json:"country"`
	UnitsCount   int            `json:"units_count"`
	Amenities    []string       `json:"amenities"`
	Notes        *string        `json:"notes,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func ToResponse(p *Property) Response {
	return Response{
		ID:           p.ID,
		CompanyID:    p.CompanyID,
		Name:         p.Name,
		Slug:         p.Slug,
		PropertyType: p.PropertyType,
		Status:       p.Status,
		AddressLine:  p.AddressLine,
		City:         p.City,
		PostalCode:   p.PostalCode,
		Country:      p.Country,
		UnitsCount:   p.UnitsCount,
		Amenities:    p.Amenities,
		Notes:        p.Notes,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

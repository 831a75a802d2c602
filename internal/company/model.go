// File: internal/company/model.go
package company

import (
	"time"

	"github.com/google/uuid"

	"propdesk_backend/internal/common"
)

// Company is the managed agency. JoinCode is the short numeric code staff
// members type to start the activation side-channel; it is unique across all
// companies and never reused.
type Company struct {
	common.BaseModel
	Name        string  `gorm:"type:varchar(255);not null"`
	Slug        string  `gorm:"type:varchar(280);uniqueIndex;not null"`
	JoinCode    string  `gorm:"type:varchar(16);uniqueIndex;not null"`
	AddressLine *string `gorm:"type:varchar(255)"`
	City        *string `gorm:"type:varchar(100)"`
	PostalCode  *string `gorm:"type:varchar(20)"`
	Country     *string `gorm:"type:varchar(100)"`
	Phone       *string `gorm:"type:varchar(50)"`
}

func (Company) TableName() string {
	return "companies"
}

// SaveDetailsRequest is the agency setup form submitted by a fresh admin.
type SaveDetailsRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=255"`
	AddressLine *string `json:"address_line" binding:"omitempty,max=255"`
	City        *string `json:"city" binding:"omitempty,max=100"`
	PostalCode  *string `json:"postal_code" binding:"omitempty,max=20"`
	Country     *string `json:"country" binding:"omitempty,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
}

type UpdateDetailsRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=255"`
	AddressLine *string `json:"address_line" binding:"omitempty,max=255"`
	City        *string `json:"city" binding:"omitempty,max=100"`
	PostalCode  *string `json:"postal_code" binding:"omitempty,max=20"`
	Country     *string `json:"country" binding:"omitempty,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
}

type Response struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	JoinCode    string    `json:"join_code"`
	AddressLine *string   `json:"address_line,omitempty"`
	City        *string   `json:"city,omitempty"`
	PostalCode  *string   `json:"postal_code,omitempty"`
	Country     *string   `json:"country,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToResponse(c *Company) Response {
	return Response{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		JoinCode:    c.JoinCode,
		AddressLine: c.AddressLine,
		City:        c.City,
		PostalCode:  c.PostalCode,
		Country:     c.Country,
		Phone:       c.Phone,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

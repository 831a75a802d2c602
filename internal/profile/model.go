// File: internal/profile/model.go
package profile

import (
	"time"

	"propdesk_backend/internal/common"
	"propdesk_backend/internal/shared"

	"github.com/google/uuid"
)

// Profile is the application-owned row of business attributes keyed by the
// external identity UID. It is created lazily on first successful sign-in
// when missing, mutated by the verification and onboarding steps, and never
// deleted by the activation workflow.
type Profile struct {
	common.BaseModel
	IdentityUID         string            `gorm:"type:varchar(128);not null;uniqueIndex"`
	Email               string            `gorm:"type:varchar(255);not null;index:idx_profiles_email_company,priority:1"`
	FirstName           *string           `gorm:"type:varchar(100)"`
	LastName            *string           `gorm:"type:varchar(100)"`
	IsAdmin             bool              `gorm:"not null;default:false"`
	IsVerifiedByCode    bool              `gorm:"not null;default:false"`
	VerificationCode    string            `gorm:"type:varchar(16);not null"`
	HasCompanySetUp     bool              `gorm:"not null;default:false"`
	PreferredUILanguage string            `gorm:"type:varchar(8);not null;default:'en'"`
	LanguageChosen      bool              `gorm:"not null;default:false"`
	CompanyID           *uuid.UUID        `gorm:"type:uuid;index:idx_profiles_email_company,priority:2"`
	UserStatus          shared.UserStatus `gorm:"type:varchar(20);not null;default:'New'"`
}

// TableName specifies the table name for the Profile model.
func (Profile) TableName() string {
	return "profiles"
}

// --- DTOs for API responses ---

// Response is the profile shape sent to clients. The verification code never
// leaves the server through this type.
type Response struct {
	ID                  uuid.UUID              `json:"id"`
	Email               string                 `json:"email"`
	FirstName           *string                `json:"first_name,omitempty"`
	LastName            *string                `json:"last_name,omitempty"`
	IsAdmin             bool                   `json:"is_admin"`
	IsVerifiedByCode    bool                   `json:"is_verified_by_code"`
	HasCompanySetUp     bool                   `json:"has_company_set_up"`
	PreferredUILanguage string                 `json:"preferred_ui_language"`
	CompanyID           *uuid.UUID             `json:"company_id,omitempty"`
	UserStatus          shared.UserStatus      `json:"user_status"`
	OnboardingState     shared.OnboardingState `json:"onboarding_state"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// ToResponse converts a shared profile snapshot to the API response DTO.
func ToResponse(p *shared.Profile) Response {
	return Response{
		ID:                  p.ID,
		Email:               p.Email,
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		IsAdmin:             p.IsAdmin,
		IsVerifiedByCode:    p.IsVerifiedByCode,
		HasCompanySetUp:     p.HasCompanySetUp,
		PreferredUILanguage: p.PreferredUILanguage,
		CompanyID:           p.CompanyID,
		UserStatus:          p.UserStatus,
		OnboardingState:     p.OnboardingState(),
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

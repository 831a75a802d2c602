// File: internal/profile/adapter.go
package profile

import "propdesk_backend/internal/shared"

// DBToShared converts a GORM Profile model to the shared snapshot used across
// package boundaries.
func DBToShared(p *Profile) *shared.Profile {
	return &shared.Profile{
		ID:                  p.ID,
		IdentityUID:         p.IdentityUID,
		Email:               p.Email,
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		IsAdmin:             p.IsAdmin,
		IsVerifiedByCode:    p.IsVerifiedByCode,
		VerificationCode:    p.VerificationCode,
		HasCompanySetUp:     p.HasCompanySetUp,
		PreferredUILanguage: p.PreferredUILanguage,
		LanguageChosen:      p.LanguageChosen,
		CompanyID:           p.CompanyID,
		UserStatus:          p.UserStatus,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

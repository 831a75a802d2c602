package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStatus is the lifecycle status of a profile. New and Invited profiles
// are eligible for the company-join activation path; every other status is a
// hard rejection there.
type UserStatus string

const (
	StatusNew      UserStatus = "New"
	StatusInvited  UserStatus = "Invited"
	StatusActive   UserStatus = "Active"
	StatusInactive UserStatus = "Inactive"
	StatusLocked   UserStatus = "Locked"
)

// JoinEligible reports whether a profile in this status may still activate
// itself through the company-join side-channel.
func (s UserStatus) JoinEligible() bool {
	return s == StatusNew || s == StatusInvited
}

// Supported UI languages.
const (
	LanguageEnglish = "en"
	LanguageGerman  = "de"
)

// OnboardingState is the explicit tagged variant derived from the profile
// flags, so a missing flag can never be silently read as "false".
type OnboardingState string

const (
	OnboardingNotStarted      OnboardingState = "not_started"      // not yet verified by code
	OnboardingLanguagePending OnboardingState = "language_pending" // verified admin, no company yet
	OnboardingSetupPending    OnboardingState = "setup_pending"    // language chosen, company still missing
	OnboardingComplete        OnboardingState = "complete"         // verified; staff, or admin with company
)

// Profile is the application-owned record of business attributes keyed by the
// external identity id. It is a plain snapshot; persistence lives in the
// profile package.
type Profile struct {
	ID                  uuid.UUID
	IdentityUID         string
	Email               string
	FirstName           *string
	LastName            *string
	IsAdmin             bool
	IsVerifiedByCode    bool
	VerificationCode    string
	HasCompanySetUp     bool
	PreferredUILanguage string
	LanguageChosen      bool
	CompanyID           *uuid.UUID
	UserStatus          UserStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Role maps the admin flag onto the application role names.
func (p *Profile) Role() string {
	if p.IsAdmin {
		return "admin"
	}
	return "staff"
}

// OnboardingState derives the tagged onboarding variant from the profile.
func (p *Profile) OnboardingState() OnboardingState {
	switch {
	case !p.IsVerifiedByCode:
		return OnboardingNotStarted
	case !p.IsAdmin:
		return OnboardingComplete
	case p.HasCompanySetUp:
		return OnboardingComplete
	case p.LanguageChosen:
		return OnboardingSetupPending
	default:
		return OnboardingLanguagePending
	}
}

// ProfileResolver is the subset of the profile service the auth middleware
// needs; splitting it here avoids an import cycle between middleware and the
// profile package.
type ProfileResolver interface {
	GetByIdentityUID(ctx context.Context, identityUID string) (*Profile, error)
}

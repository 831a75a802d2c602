// File: internal/auth/model.go
package auth

import (
	"propdesk_backend/internal/identity"
	"propdesk_backend/internal/profile"
	"propdesk_backend/internal/shared"
)

// Destination names the screen the client must show next after an
// authentication step. The server is authoritative; the client only renders.
type Destination string

const (
	DestinationVerificationGate  Destination = "verification_gate"
	DestinationTaskList          Destination = "task_list"
	DestinationLanguageSelection Destination = "language_selection"
	DestinationDashboard         Destination = "dashboard"
	DestinationAgencySetup       Destination = "agency_setup"
)

// SignInRequest carries the credential form. Language is the UI locale the
// client is currently rendering in and seeds a freshly bootstrapped profile.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Language string `json:"language" binding:"omitempty,oneof=en de"`
}

type VerifyCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

type LanguageRequest struct {
	Language string `json:"language" binding:"required,oneof=en de"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SignInResult is what every workflow step resolves to: where to go next,
// the current profile snapshot, and (for the initial credential step only)
// the identity provider token pair.
type SignInResult struct {
	Destination Destination
	Profile     *shared.Profile
	Session     *identity.Session
}

// SignInResponse is the wire shape of a SignInResult.
type SignInResponse struct {
	Destination  Destination      `json:"destination"`
	Profile      profile.Response `json:"profile"`
	IDToken      string           `json:"id_token,omitempty"`
	RefreshToken string           `json:"refresh_token,omitempty"`
	ExpiresIn    int64            `json:"expires_in,omitempty"`
}

// SessionStateResponse exposes the stored session flags to the client.
type SessionStateResponse struct {
	OnboardingComplete bool   `json:"onboarding_complete"`
	IsAdmin            bool   `json:"is_admin"`
	PreferredLang      string `json:"preferred_lang,omitempty"`
}

// ToSignInResponse converts a service result into its transport form.
func ToSignInResponse(r *SignInResult) *SignInResponse {
	resp := &SignInResponse{
		Destination: r.Destination,
		Profile:     profile.ToResponse(r.Profile),
	}
	if r.Session != nil {
		resp.IDToken = r.Session.IDToken
		resp.RefreshToken = r.Session.RefreshToken
		resp.ExpiresIn = int64(r.Session.ExpiresIn.Seconds())
	}
	return resp
}

// File: internal/auth/service.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"propdesk_backend/internal/common"
	"propdesk_backend/internal/config"
	"propdesk_backend/internal/identity"
	"propdesk_backend/internal/profile"
	"propdesk_backend/internal/shared"
)

// Service drives the activation and sign-in workflow: credential check,
// profile resolution, the verification gate and the landing decision.
type Service interface {
	SignIn(ctx context.Context, req SignInRequest) (*SignInResult, error)
	SubmitVerificationCode(ctx context.Context, identityUID, code string) (*SignInResult, error)
	SaveLanguagePreference(ctx context.Context, identityUID, lang string) (*SignInResult, error)
	ResendVerification(ctx context.Context, email string) (string, error)
	SignOut(ctx context.Context, identityUID string) error
	SessionState(identityUID string) (SessionState, bool)
}

type ServiceImplementation struct {
	provider identity.Provider
	profiles profile.Service
	sessions SessionStore
	cfg      *config.Config
	logger   *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(provider identity.Provider, profiles profile.Service, sessions SessionStore, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		provider: provider,
		profiles: profiles,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger.Named("AuthService"),
	}
}

// SignIn runs the full credential step: authenticate against the identity
// provider, resolve (or bootstrap) the profile, then decide the landing.
func (s *ServiceImplementation) SignIn(ctx context.Context, req SignInRequest) (*SignInResult, error) {
	sess, err := s.provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.mapSignInError(req.Email, err)
	}

	lang := req.Language
	if lang == "" {
		lang = s.cfg.DefaultUILanguage
	}

	p, err := s.resolveProfile(ctx, sess.UID, sess.Email, lang)
	if err != nil {
		return nil, err
	}

	dest := DecideLanding(p)
	s.applyLanding(p, dest)

	s.logger.Info("Sign-in completed",
		zap.String("identityUID", sess.UID),
		zap.String("destination", string(dest)))

	return &SignInResult{Destination: dest, Profile: p, Session: sess}, nil
}

func (s *ServiceImplementation) mapSignInError(email string, err error) error {
	switch {
	case errors.Is(err, identity.ErrEmailNotVerified):
		s.logger.Info("Sign-in rejected: email not confirmed", zap.String("email", email))
		return common.ErrNeedsEmailVerification
	case errors.Is(err, identity.ErrUnavailable):
		s.logger.Error("Identity provider unavailable during sign-in", zap.Error(err))
		return common.ErrServiceUnavailable
	default:
		// The provider message is surfaced verbatim in the details so the
		// client can display it without re-translating failure modes.
		s.logger.Info("Sign-in rejected: invalid credentials", zap.String("email", email))
		return common.ErrInvalidCredentials.WithDetails(err.Error())
	}
}

// resolveProfile loads the profile for an authenticated identity, lazily
// bootstrapping one when the identity has never had a profile row. Bootstrap
// failure fails closed: the half-authenticated session is revoked and the
// caller is sent back to the credential step.
func (s *ServiceImplementation) resolveProfile(ctx context.Context, uid, email, lang string) (*shared.Profile, error) {
	p, err := s.profiles.GetByIdentityUID(ctx, uid)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	s.logger.Info("No profile found for identity, bootstrapping", zap.String("identityUID", uid))
	if err := s.profiles.Bootstrap(ctx, uid, email, lang); err != nil {
		s.failClosed(ctx, uid, "bootstrap failed", err)
		return nil, common.ErrProfileBootstrapFailed
	}

	p, err = s.profiles.GetByIdentityUID(ctx, uid)
	if err != nil {
		s.failClosed(ctx, uid, "re-read after bootstrap failed", err)
		return nil, common.ErrProfileBootstrapFailed
	}
	return p, nil
}

func (s *ServiceImplementation) failClosed(ctx context.Context, uid, reason string, cause error) {
	s.logger.Error("Profile resolution failed, revoking session",
		zap.String("identityUID", uid),
		zap.String("reason", reason),
		zap.Error(cause))
	s.sessions.Invalidate(uid)
	if err := s.provider.SignOut(ctx, uid); err != nil {
		s.logger.Error("Failed to revoke session after bootstrap failure",
			zap.String("identityUID", uid), zap.Error(err))
	}
}

// DecideLanding is the pure post-authentication routing table. Order matters:
// the verification gate outranks everything, staff are done once verified,
// and admins still need a company before they see the dashboard.
func DecideLanding(p *shared.Profile) Destination {
	switch {
	case !p.IsVerifiedByCode:
		return DestinationVerificationGate
	case !p.IsAdmin:
		return DestinationTaskList
	case !p.HasCompanySetUp:
		return DestinationLanguageSelection
	default:
		return DestinationDashboard
	}
}

// applyLanding records session state for terminal landings. Intermediate
// destinations leave the store untouched so an interrupted onboarding never
// looks complete.
func (s *ServiceImplementation) applyLanding(p *shared.Profile, dest Destination) {
	if dest != DestinationTaskList && dest != DestinationDashboard {
		return
	}
	s.sessions.Put(p.IdentityUID, SessionState{
		OnboardingComplete: true,
		IsAdmin:            p.IsAdmin,
		PreferredLang:      p.PreferredUILanguage,
	})
}

// SubmitVerificationCode checks the submitted code against the profile's
// stored one and, on success, marks the profile verified and re-runs the
// landing decision exactly once.
func (s *ServiceImplementation) SubmitVerificationCode(ctx context.Context, identityUID, code string) (*SignInResult, error) {
	code = strings.TrimSpace(code)
	if err := s.validateCodeFormat(code); err != nil {
		return nil, err
	}

	p, err := s.profiles.GetByIdentityUID(ctx, identityUID)
	if err != nil {
		return nil, err
	}

	if !p.IsVerifiedByCode {
		if code != strings.TrimSpace(p.VerificationCode) {
			s.logger.Info("Verification code mismatch", zap.String("identityUID", identityUID))
			return nil, common.ErrIncorrectCode
		}
		p, err = s.profiles.MarkVerifiedByCode(ctx, identityUID)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Profile verified by code", zap.String("identityUID", identityUID))
	}

	dest := DecideLanding(p)
	s.applyLanding(p, dest)
	return &SignInResult{Destination: dest, Profile: p}, nil
}

func (s *ServiceImplementation) validateCodeFormat(code string) error {
	n := s.cfg.VerificationCodeLength
	if len(code) != n {
		return common.ErrIncorrectCode.WithDetails(fmt.Sprintf("The code must be exactly %d digits.", n))
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return common.ErrIncorrectCode.WithDetails(fmt.Sprintf("The code must be exactly %d digits.", n))
		}
	}
	return nil
}

// SaveLanguagePreference persists the chosen UI language and routes the
// admin on to agency setup. The session locale is updated in place when a
// session entry already exists.
func (s *ServiceImplementation) SaveLanguagePreference(ctx context.Context, identityUID, lang string) (*SignInResult, error) {
	p, err := s.profiles.SetLanguage(ctx, identityUID, lang)
	if err != nil {
		return nil, err
	}

	if state, ok := s.sessions.Get(identityUID); ok {
		state.PreferredLang = lang
		s.sessions.Put(identityUID, state)
	}

	return &SignInResult{Destination: DestinationAgencySetup, Profile: p}, nil
}

// ResendVerification asks the identity provider to send a fresh confirmation
// email and returns the status text the client should display.
func (s *ServiceImplementation) ResendVerification(ctx context.Context, email string) (string, error) {
	if err := s.provider.ResendVerificationEmail(ctx, email); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return "", common.ErrNotFound.WithMessage("No account was found for this email address.")
		}
		s.logger.Error("Failed to resend verification email", zap.String("email", email), zap.Error(err))
		return "", common.ErrServiceUnavailable.WithMessage("The verification email could not be sent. Please try again later.")
	}
	return "A new confirmation email is on its way. Please check your inbox.", nil
}

// SignOut clears the stored session state and revokes the identity session
// as one step, so stale flags can never outlive the session itself.
func (s *ServiceImplementation) SignOut(ctx context.Context, identityUID string) error {
	s.sessions.Invalidate(identityUID)
	if err := s.provider.SignOut(ctx, identityUID); err != nil {
		s.logger.Error("Failed to revoke identity session", zap.String("identityUID", identityUID), zap.Error(err))
		return common.ErrInternalServer.WithDetails("The session could not be fully revoked.")
	}
	s.logger.Info("Signed out", zap.String("identityUID", identityUID))
	return nil
}

func (s *ServiceImplementation) SessionState(identityUID string) (SessionState, bool) {
	return s.sessions.Get(identityUID)
}

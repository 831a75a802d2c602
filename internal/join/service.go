// File: internal/join/service.go
package join

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"propdesk_backend/internal/common"
	"propdesk_backend/internal/company"
	"propdesk_backend/internal/config"
	"propdesk_backend/internal/identity"
	"propdesk_backend/internal/platform/crypto"
	"propdesk_backend/internal/profile"
	"propdesk_backend/internal/shared"
)

const (
	minPasswordLength = 6
	tokenLength       = 32
)

// ActivationResult is the outcome of the final password step. Caveat is
// non-empty when the password was set but the profile could not be marked
// active, which is still reported as success to the user.
type ActivationResult struct {
	State  State
	Caveat string
}

// Service runs the three-step staff activation side-channel. Each step
// validates its own input, advances the stored session, and never exposes
// whether an email exists outside the matched company.
type Service interface {
	SubmitCode(ctx context.Context, code string) (*Session, string, error)
	SubmitEmail(ctx context.Context, token, email string) (*Session, error)
	SubmitPassword(ctx context.Context, token, password, confirm string) (*ActivationResult, error)
}

type ServiceImplementation struct {
	sessions  SessionStore
	companies company.Service
	profiles  profile.Service
	provider  identity.Provider
	cfg       *config.Config
	logger    *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(sessions SessionStore, companies company.Service, profiles profile.Service, provider identity.Provider, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		sessions:  sessions,
		companies: companies,
		profiles:  profiles,
		provider:  provider,
		cfg:       cfg,
		logger:    logger.Named("JoinService"),
	}
}

// SubmitCode resolves the company behind a join code and opens a fresh
// activation session. The returned token identifies the session in the
// following steps.
func (s *ServiceImplementation) SubmitCode(ctx context.Context, code string) (*Session, string, error) {
	code = strings.TrimSpace(code)
	if !s.isWellFormedCode(code) {
		return nil, "", common.ErrInvalidCompanyCode
	}

	c, err := s.companies.GetByJoinCode(ctx, code)
	if err != nil {
		return nil, "", err
	}

	token, err := crypto.GenerateSecureRandomString(tokenLength)
	if err != nil {
		return nil, "", common.ErrInternalServer.WithDetails("Could not open an activation session.")
	}

	sess := Session{
		State:       StateAwaitingEmail,
		CompanyID:   c.ID,
		CompanyName: c.Name,
	}
	s.sessions.Put(token, sess)

	s.logger.Info("Activation session opened", zap.String("companyID", c.ID.String()))
	return &sess, token, nil
}

// isWellFormedCode screens the entered code before it reaches the company
// lookup. Join codes are all digits and share the verification code length.
func (s *ServiceImplementation) isWellFormedCode(code string) bool {
	if len(code) != s.cfg.VerificationCodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SubmitEmail matches the entered email against the company's pre-provisioned
// profiles. Only New or Invited profiles may continue; an already-active
// account is rejected with its dedicated error so the user is told to contact
// their administrator instead of retrying.
func (s *ServiceImplementation) SubmitEmail(ctx context.Context, token, email string) (*Session, error) {
	sess, err := s.load(token, StateAwaitingEmail)
	if err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	p, err := s.profiles.FindJoinCandidate(ctx, email, sess.CompanyID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidOrIneligibleEmail
		}
		return nil, err
	}

	if !p.UserStatus.JoinEligible() {
		if p.UserStatus == shared.StatusActive {
			return nil, common.ErrAccountAlreadyActive
		}
		return nil, common.ErrInvalidOrIneligibleEmail
	}

	sess.State = StateAwaitingPassword
	sess.ProfileID = p.ID
	sess.IdentityUID = p.IdentityUID
	sess.Email = email
	s.sessions.Put(token, sess)

	return &sess, nil
}

// SubmitPassword finishes activation: it validates the password pair locally,
// sets the credential through the privileged identity operation, then marks
// the profile active. A failure after the credential is set is reported as
// success with a caveat, because the user can already sign in.
func (s *ServiceImplementation) SubmitPassword(ctx context.Context, token, password, confirm string) (*ActivationResult, error) {
	sess, err := s.load(token, StateAwaitingPassword)
	if err != nil {
		return nil, err
	}

	if len(password) < minPasswordLength {
		return nil, common.ErrPasswordTooShort
	}
	if password != confirm {
		return nil, common.ErrPasswordMismatch
	}

	if err := s.provider.SetPassword(ctx, sess.IdentityUID, password); err != nil {
		s.logger.Error("Privileged password set failed",
			zap.String("identityUID", sess.IdentityUID),
			zap.Error(err))
		return nil, common.ErrInternalServer.WithMessage("The password could not be set. Please try again.")
	}

	result := &ActivationResult{State: StateActivated}
	if err := s.profiles.SetStatus(ctx, sess.ProfileID, shared.StatusActive); err != nil {
		s.logger.Error("Password set but profile activation failed",
			zap.String("profileID", sess.ProfileID.String()),
			zap.Error(err))
		result.Caveat = "Your password was set, but part of the activation did not complete. You can sign in; if anything looks wrong, contact your administrator."
	}

	s.sessions.Delete(token)
	s.logger.Info("Staff account activated",
		zap.String("profileID", sess.ProfileID.String()),
		zap.Bool("caveat", result.Caveat != ""))
	return result, nil
}

// load fetches a session and checks it is at the expected step. Unknown or
// expired tokens and out-of-order submissions both end the attempt; the user
// has to start over from the code step.
func (s *ServiceImplementation) load(token string, want State) (Session, error) {
	sess, found := s.sessions.Get(token)
	if !found {
		return Session{}, common.ErrUnauthorized.WithMessage("The activation session has expired. Please start over with your company code.")
	}
	if sess.State != want {
		return Session{}, common.ErrBadRequest.WithDetails("This step was submitted out of order.")
	}
	return sess, nil
}

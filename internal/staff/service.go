// File: internal/staff/service.go
package staff

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"propdesk_backend/internal/common"
	"propdesk_backend/internal/config"
	"propdesk_backend/internal/identity"
	"propdesk_backend/internal/platform/crypto"
	"propdesk_backend/internal/profile"
	"propdesk_backend/internal/shared"
)

// throwawayPasswordLength sizes the placeholder credential given to invited
// identities. The staff member replaces it during activation; nobody ever
// learns it.
const throwawayPasswordLength = 24

type Service interface {
	Invite(ctx context.Context, admin *shared.Profile, req InviteRequest) (*shared.Profile, error)
	List(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]shared.Profile, *common.Pagination, error)
	Deactivate(ctx context.Context, admin *shared.Profile, profileID uuid.UUID) error
}

type ServiceImplementation struct {
	profiles profile.Service
	provider identity.Provider
	cfg      *config.Config
	logger   *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(profiles profile.Service, provider identity.Provider, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		profiles: profiles,
		provider: provider,
		cfg:      cfg,
		logger:   logger.Named("StaffService"),
	}
}

// Invite pre-provisions a staff member: an identity with a throwaway
// credential, plus an Invited profile in the admin's company. The staff
// member later claims the account through the company-join flow, which
// replaces the credential with one of their own.
func (s *ServiceImplementation) Invite(ctx context.Context, admin *shared.Profile, req InviteRequest) (*shared.Profile, error) {
	if admin.CompanyID == nil {
		return nil, common.ErrForbidden.WithDetails("Set up your company before inviting staff.")
	}

	throwaway, err := crypto.GenerateSecureRandomString(throwawayPasswordLength)
	if err != nil {
		return nil, common.ErrInternalServer.WithDetails("Could not provision the invitation.")
	}

	ident, err := s.provider.SignUp(ctx, req.Email, throwaway)
	if err != nil {
		if errors.Is(err, identity.ErrEmailAlreadyExists) {
			existing, lookupErr := s.provider.GetByEmail(ctx, req.Email)
			if lookupErr != nil {
				return nil, common.ErrConflict.WithDetails("This email address is already registered.")
			}
			ident = existing
		} else {
			s.logger.Error("Identity creation for invite failed", zap.String("email", req.Email), zap.Error(err))
			return nil, common.ErrInternalServer.WithDetails("The invitation could not be created.")
		}
	}

	code, err := crypto.GenerateNumericCode(s.cfg.VerificationCodeLength)
	if err != nil {
		return nil, common.ErrInternalServer.WithDetails("The invitation could not be created.")
	}

	lang := req.Language
	if lang == "" {
		lang = admin.PreferredUILanguage
	}

	p, err := s.profiles.CreateInvited(ctx, profile.InviteSeed{
		IdentityUID:      ident.UID,
		Email:            req.Email,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		CompanyID:        *admin.CompanyID,
		Language:         lang,
		VerificationCode: code,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Staff member invited",
		zap.String("profileID", p.ID.String()),
		zap.String("companyID", admin.CompanyID.String()))
	return p, nil
}

func (s *ServiceImplementation) List(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]shared.Profile, *common.Pagination, error) {
	return s.profiles.ListByCompany(ctx, companyID, page, pageSize)
}

// Deactivate sets a staff profile to Inactive and revokes its sessions.
// Admins cannot deactivate themselves or profiles outside their company.
func (s *ServiceImplementation) Deactivate(ctx context.Context, admin *shared.Profile, profileID uuid.UUID) error {
	if profileID == admin.ID {
		return common.ErrBadRequest.WithDetails("You cannot deactivate your own account.")
	}

	target, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return err
	}
	if target.CompanyID == nil || admin.CompanyID == nil || *target.CompanyID != *admin.CompanyID {
		return common.ErrForbidden.WithDetails("This profile does not belong to your company.")
	}

	if err := s.profiles.SetStatus(ctx, profileID, shared.StatusInactive); err != nil {
		return err
	}
	if err := s.provider.SignOut(ctx, target.IdentityUID); err != nil {
		s.logger.Warn("Profile deactivated but session revocation failed",
			zap.String("profileID", profileID.String()),
			zap.Error(err))
	}

	s.logger.Info("Staff member deactivated", zap.String("profileID", profileID.String()))
	return nil
}

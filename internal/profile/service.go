// File: internal/profile/service.go
package profile

import (
	"context"
	"errors"
	"fmt"

	"propdesk_backend/internal/common"
	"propdesk_backend/internal/config"
	"propdesk_backend/internal/platform/crypto"
	"propdesk_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service exposes profile operations to the rest of the application.
type Service interface {
	shared.ProfileResolver

	// Bootstrap creates the initial profile for an identity that signed in
	// without one. It is idempotent: an existing profile is left untouched.
	Bootstrap(ctx context.Context, identityUID, email, lang string) error
	MarkVerifiedByCode(ctx context.Context, identityUID string) (*shared.Profile, error)
	SetLanguage(ctx context.Context, identityUID, lang string) (*shared.Profile, error)
	AttachCompany(ctx context.Context, profileID, companyID uuid.UUID) error
	SetStatus(ctx context.Context, profileID uuid.UUID, status shared.UserStatus) error
	FindJoinCandidate(ctx context.Context, email string, companyID uuid.UUID) (*shared.Profile, error)
	CreateInvited(ctx context.Context, seed InviteSeed) (*shared.Profile, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]shared.Profile, *common.Pagination, error)
	ListActiveStaffIDs(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*shared.Profile, error)
}

// InviteSeed carries everything needed to pre-provision a staff profile.
type InviteSeed struct {
	IdentityUID      string
	Email            string
	FirstName        *string
	LastName         *string
	CompanyID        uuid.UUID
	Language         string
	VerificationCode string
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo   Repository
	cfg    *config.Config
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new profile service.
func NewService(repo Repository, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, cfg: cfg, logger: logger}
}

func (s *ServiceImplementation) GetByIdentityUID(ctx context.Context, identityUID string) (*shared.Profile, error) {
	dbProfile, err := s.repo.FindByIdentityUID(ctx, identityUID)
	if err != nil {
		return nil, err
	}
	return DBToShared(dbProfile), nil
}

func (s *ServiceImplementation) GetByID(ctx context.Context, id uuid.UUID) (*shared.Profile, error) {
	dbProfile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return DBToShared(dbProfile), nil
}

// Bootstrap creates the initial profile row for a freshly signed-up identity.
// First-time self-registered users are agency admins; staff profiles are
// pre-provisioned through the invite flow instead and never pass through
// here with a missing row.
func (s *ServiceImplementation) Bootstrap(ctx context.Context, identityUID, email, lang string) error {
	_, err := s.repo.FindByIdentityUID(ctx, identityUID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("failed to check existing profile: %w", err)
	}

	code, err := crypto.GenerateNumericCode(s.cfg.VerificationCodeLength)
	if err != nil {
		s.logger.Error("Failed to generate verification code during bootstrap", zap.Error(err))
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	if lang != shared.LanguageEnglish && lang != shared.LanguageGerman {
		lang = s.cfg.DefaultUILanguage
	}

	dbProfile := &Profile{
		IdentityUID:         identityUID,
		Email:               email,
		IsAdmin:             true,
		VerificationCode:    code,
		PreferredUILanguage: lang,
		UserStatus:          shared.StatusNew,
	}
	if err := s.repo.Create(ctx, dbProfile); err != nil {
		// A concurrent bootstrap for the same identity is fine; the row exists.
		if apiErr, ok := common.IsAPIError(err); ok && apiErr.Code == common.ErrConflict.Code {
			s.logger.Info("Profile already bootstrapped concurrently", zap.String("identityUID", identityUID))
			return nil
		}
		s.logger.Error("Failed to create initial profile", zap.Error(err), zap.String("identityUID", identityUID))
		return fmt.Errorf("failed to create initial profile: %w", err)
	}

	s.logger.Info("Initial profile created",
		zap.String("identityUID", identityUID),
		zap.String("profileID", dbProfile.ID.String()))
	return nil
}

// MarkVerifiedByCode persists the terminal state of the verification gate.
func (s *ServiceImplementation) MarkVerifiedByCode(ctx context.Context, identityUID string) (*shared.Profile, error) {
	dbProfile, err := s.repo.FindByIdentityUID(ctx, identityUID)
	if err != nil {
		return nil, err
	}
	dbProfile.IsVerifiedByCode = true
	if dbProfile.UserStatus == shared.StatusNew {
		dbProfile.UserStatus = shared.StatusActive
	}
	if err := s.repo.Update(ctx, dbProfile); err != nil {
		s.logger.Error("Failed to persist verified-by-code flag", zap.Error(err), zap.String("identityUID", identityUID))
		return nil, err
	}
	return DBToShared(dbProfile), nil
}

func (s *ServiceImplementation) SetLanguage(ctx context.Context, identityUID, lang string) (*shared.Profile, error) {
	if lang != shared.LanguageEnglish && lang != shared.LanguageGerman {
		return nil, common.ErrBadRequest.WithDetails(fmt.Sprintf("Unsupported language %q.", lang))
	}
	dbProfile, err := s.repo.FindByIdentityUID(ctx, identityUID)
	if err != nil {
		return nil, err
	}
	dbProfile.PreferredUILanguage = lang
	dbProfile.LanguageChosen = true
	if err := s.repo.Update(ctx, dbProfile); err != nil {
		s.logger.Error("Failed to persist language preference", zap.Error(err), zap.String("identityUID", identityUID))
		return nil, err
	}
	return DBToShared(dbProfile), nil
}

// AttachCompany links the admin profile to its company and marks agency
// setup as done, completing onboarding.
func (s *ServiceImplementation) AttachCompany(ctx context.Context, profileID, companyID uuid.UUID) error {
	dbProfile, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		return err
	}
	dbProfile.CompanyID = &companyID
	dbProfile.HasCompanySetUp = true
	if err := s.repo.Update(ctx, dbProfile); err != nil {
		s.logger.Error("Failed to attach company to profile", zap.Error(err), zap.String("profileID", profileID.String()))
		return err
	}
	return nil
}

func (s *ServiceImplementation) SetStatus(ctx context.Context, profileID uuid.UUID, status shared.UserStatus) error {
	dbProfile, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		return err
	}
	dbProfile.UserStatus = status
	if err := s.repo.Update(ctx, dbProfile); err != nil {
		s.logger.Error("Failed to update profile status", zap.Error(err),
			zap.String("profileID", profileID.String()),
			zap.String("status", string(status)))
		return err
	}
	return nil
}

// FindJoinCandidate looks up the profile matched during the company-join
// email step. Eligibility (status check) is enforced by the join service, not
// here.
func (s *ServiceImplementation) FindJoinCandidate(ctx context.Context, email string, companyID uuid.UUID) (*shared.Profile, error) {
	dbProfile, err := s.repo.FindByEmailAndCompany(ctx, email, companyID)
	if err != nil {
		return nil, err
	}
	return DBToShared(dbProfile), nil
}

func (s *ServiceImplementation) CreateInvited(ctx context.Context, seed InviteSeed) (*shared.Profile, error) {
	lang := seed.Language
	if lang != shared.LanguageEnglish && lang != shared.LanguageGerman {
		lang = s.cfg.DefaultUILanguage
	}
	companyID := seed.CompanyID
	dbProfile := &Profile{
		IdentityUID:         seed.IdentityUID,
		Email:               seed.Email,
		FirstName:           seed.FirstName,
		LastName:            seed.LastName,
		VerificationCode:    seed.VerificationCode,
		PreferredUILanguage: lang,
		CompanyID:           &companyID,
		UserStatus:          shared.StatusInvited,
	}
	if err := s.repo.Create(ctx, dbProfile); err != nil {
		return nil, err
	}
	s.logger.Info("Invited staff profile created",
		zap.String("profileID", dbProfile.ID.String()),
		zap.String("companyID", companyID.String()))
	return DBToShared(dbProfile), nil
}

func (s *ServiceImplementation) ListByCompany(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]shared.Profile, *common.Pagination, error) {
	dbProfiles, pagination, err := s.repo.ListByCompany(ctx, companyID, page, pageSize)
	if err != nil {
		return nil, nil, err
	}
	out := make([]shared.Profile, 0, len(dbProfiles))
	for i := range dbProfiles {
		out = append(out, *DBToShared(&dbProfiles[i]))
	}
	return out, pagination, nil
}

// ListActiveStaffIDs returns the IDs of every Active profile in the company,
// used to validate task assignees.
func (s *ServiceImplementation) ListActiveStaffIDs(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.ListActiveStaffIDs(ctx, companyID)
}

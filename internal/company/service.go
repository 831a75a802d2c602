// File: internal/company/service.go
package company

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"propdesk_backend/internal/common"
	"propdesk_backend/internal/config"
	"propdesk_backend/internal/platform/crypto"
	"propdesk_backend/internal/profile"
	"propdesk_backend/internal/shared"
)

const joinCodeMaxAttempts = 5

type Service interface {
	SaveDetails(ctx context.Context, admin *shared.Profile, req SaveDetailsRequest) (*Company, error)
	UpdateDetails(ctx context.Context, companyID uuid.UUID, req UpdateDetailsRequest) (*Company, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Company, error)
	GetByJoinCode(ctx context.Context, joinCode string) (*Company, error)
}

type ServiceImplementation struct {
	repo     Repository
	profiles profile.Service
	cfg      *config.Config
	logger   *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(repo Repository, profiles profile.Service, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		profiles: profiles,
		cfg:      cfg,
		logger:   logger.Named("CompanyService"),
	}
}

// SaveDetails creates the company during agency setup and attaches it to the
// admin's profile, which is what flips the admin onto the dashboard landing.
func (s *ServiceImplementation) SaveDetails(ctx context.Context, admin *shared.Profile, req SaveDetailsRequest) (*Company, error) {
	if admin.CompanyID != nil {
		return nil, common.ErrConflict.WithDetails("This account is already attached to a company.")
	}

	c := &Company{
		Name:        req.Name,
		Slug:        s.uniqueSlug(ctx, req.Name),
		AddressLine: req.AddressLine,
		City:        req.City,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
		Phone:       req.Phone,
	}

	var err error
	for attempt := 0; attempt < joinCodeMaxAttempts; attempt++ {
		c.JoinCode, err = crypto.GenerateNumericCode(s.cfg.VerificationCodeLength)
		if err != nil {
			return nil, common.ErrInternalServer.WithDetails("Could not generate a join code.")
		}
		err = s.repo.Create(ctx, c)
		if err == nil {
			break
		}
		if !errors.Is(err, common.ErrConflict) {
			return nil, err
		}
	}
	if err != nil {
		s.logger.Error("Could not allocate a unique join code", zap.String("name", req.Name), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not allocate a unique join code.")
	}

	if err := s.profiles.AttachCompany(ctx, admin.ID, c.ID); err != nil {
		s.logger.Error("Company created but admin attach failed",
			zap.String("companyID", c.ID.String()),
			zap.String("profileID", admin.ID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Company created",
		zap.String("companyID", c.ID.String()),
		zap.String("name", c.Name))
	return c, nil
}

// uniqueSlug derives a URL slug from the name, falling back to a random
// suffix when the plain slug is taken. The unique index on the column still
// guards correctness under races.
func (s *ServiceImplementation) uniqueSlug(ctx context.Context, name string) string {
	base := slug.Make(name)
	if _, err := s.repo.FindBySlug(ctx, base); errors.Is(err, common.ErrNotFound) {
		return base
	}
	suffix, err := crypto.GenerateSecureRandomString(4)
	if err != nil {
		return base
	}
	return base + "-" + suffix
}

func (s *ServiceImplementation) UpdateDetails(ctx context.Context, companyID uuid.UUID, req UpdateDetailsRequest) (*Company, error) {
	c, err := s.repo.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
		c.Slug = s.uniqueSlug(ctx, *req.Name)
	}
	if req.AddressLine != nil {
		c.AddressLine = req.AddressLine
	}
	if req.City != nil {
		c.City = req.City
	}
	if req.PostalCode != nil {
		c.PostalCode = req.PostalCode
	}
	if req.Country != nil {
		c.Country = req.Country
	}
	if req.Phone != nil {
		c.Phone = req.Phone
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ServiceImplementation) GetByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByJoinCode resolves a company from a staff-entered join code. An unknown
// code maps to the workflow's dedicated error so the client can keep the user
// on the code step.
func (s *ServiceImplementation) GetByJoinCode(ctx context.Context, joinCode string) (*Company, error) {
	c, err := s.repo.FindByJoinCode(ctx, joinCode)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCompanyCode
		}
		return nil, err
	}
	return c, nil
}

package profile

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"propdesk_backend/internal/common"
	"propdesk_backend/internal/config"
	"propdesk_backend/internal/shared"
)

// MockRepository is a mock type for the profile Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, p *Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) FindByIdentityUID(ctx context.Context, identityUID string) (*Profile, error) {
	args := m.Called(ctx, identityUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Profile), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Profile), args.Error(1)
}

func (m *MockRepository) FindByEmailAndCompany(ctx context.Context, email string, companyID uuid.UUID) (*Profile, error) {
	args := m.Called(ctx, email, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Profile), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, p *Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]Profile, *common.Pagination, error) {
	args := m.Called(ctx, companyID, page, pageSize)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]Profile), args.Get(1).(*common.Pagination), args.Error(2)
}

func (m *MockRepository) ListActiveStaffIDs(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func newProfileService(repo *MockRepository) *ServiceImplementation {
	cfg := &config.Config{VerificationCodeLength: 8, DefaultUILanguage: "en"}
	return NewService(repo, cfg, zap.NewNop())
}

func TestBootstrap_CreatesAdminProfileWithGeneratedCode(t *testing.T) {
	repo := new(MockRepository)
	svc := newProfileService(repo)

	repo.On("FindByIdentityUID", mock.Anything, "uid-1").Return(nil, common.ErrNotFound)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *Profile) bool {
		return p.IdentityUID == "uid-1" &&
			p.Email == "new@acme.test" &&
			p.IsAdmin &&
			!p.IsVerifiedByCode &&
			p.UserStatus == shared.StatusNew &&
			len(p.VerificationCode) == 8 &&
			p.PreferredUILanguage == "de"
	})).Return(nil)

	err := svc.Bootstrap(context.Background(), "uid-1", "new@acme.test", "de")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestBootstrap_IsIdempotentForExistingProfiles(t *testing.T) {
	repo := new(MockRepository)
	svc := newProfileService(repo)

	repo.On("FindByIdentityUID", mock.Anything, "uid-1").Return(&Profile{IdentityUID: "uid-1"}, nil)

	err := svc.Bootstrap(context.Background(), "uid-1", "new@acme.test", "en")

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBootstrap_ToleratesConcurrentCreate(t *testing.T) {
	repo := new(MockRepository)
	svc := newProfileService(repo)

	repo.On("FindByIdentityUID", mock.Anything, "uid-1").Return(nil, common.ErrNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(common.ErrConflict.WithDetails("duplicate"))

	err := svc.Bootstrap(context.Background(), "uid-1", "new@acme.test", "en")
	assert.NoError(t, err)
}

func TestBootstrap_FallsBackToDefaultLanguage(t *testing.T) {
	repo := new(MockRepository)
	svc := newProfileService(repo)

	repo.On("FindByIdentityUID", mock.Anything, "uid-1").Return(nil, common.ErrNotFound)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *Profile) bool {
		return p.PreferredUILanguage == "en"
	})).Return(nil)

	err := svc.Bootstrap(context.Background(), "uid-1", "new@acme.test", "fr")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestMarkVerifiedByCode_PromotesNewToActive(t *testing.T) {
	repo := new(MockRepository)
	svc := newProfileService(repo)

	stored := &Profile{IdentityUID: "uid-1", UserStatus: shared.StatusNew}
	repo.On("FindByIdentityUID", mock.Anything, "uid-1").Return(stored, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *Profile) bool {
		return p.IsVerifiedByCode && p.UserStatus == shared.StatusActive
	})).Return(nil)

	p, err := svc.MarkVerifiedByCode(context.Background(), "uid-1")

	assert.NoError(t, err)
	assert.True(t, p.IsVerifiedByCode)
	assert.Equal(t, shared.StatusActive, p.UserStatus)
}

func TestMarkVerifiedByCode_LeavesInvitedStatusAlone(t *testing.T) {
	repo := new(MockRepository)
	svc := newProfileService(repo)

	stored := &Profile{IdentityUID: "uid-1", UserStatus: shared.StatusInvited}
	repo.On("FindByIdentityUID", mock.Anything, "uid-1").Return(stored, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	p, err := svc.MarkVerifiedByCode(context.Background(), "uid-1")

	assert.NoError(t, err)
	assert.Equal(t, shared.StatusInvited, p.UserStatus)
}

func TestSetLanguage_RejectsUnsupportedLanguage(t *testing.T) {
	repo := new(MockRepository)
	svc := newProfileService(repo)

	_, err := svc.SetLanguage(context.Background(), "uid-1", "fr")

	assert.ErrorIs(t, err, common.ErrBadRequest)
	repo.AssertNotCalled(t, "FindByIdentityUID", mock.Anything, mock.Anything)
}

func TestSetLanguage_PersistsChoice(t *testing.T) {
	repo := new(MockRepository)
	svc := newProfileService(repo)

	stored := &Profile{IdentityUID: "uid-1", PreferredUILanguage: "en"}
	repo.On("FindByIdentityUID", mock.Anything, "uid-1").Return(stored, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *Profile) bool {
		return p.PreferredUILanguage == "de" && p.LanguageChosen
	})).Return(nil)

	p, err := svc.SetLanguage(context.Background(), "uid-1", "de")

	assert.NoError(t, err)
	assert.Equal(t, "de", p.PreferredUILanguage)
	assert.True(t, p.LanguageChosen)
}

func TestAttachCompany_SetsCompanyAndOnboardingFlag(t *testing.T) {
	repo := new(MockRepository)
	svc := newProfileService(repo)

	profileID := uuid.New()
	companyID := uuid.New()
	stored := &Profile{BaseModel: common.BaseModel{ID: profileID}}

	repo.On("FindByID", mock.Anything, profileID).Return(stored, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *Profile) bool {
		return p.CompanyID != nil && *p.CompanyID == companyID && p.HasCompanySetUp
	})).Return(nil)

	err := svc.AttachCompany(context.Background(), profileID, companyID)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateInvited_DefaultsLanguageAndStatus(t *testing.T) {
	repo := new(MockRepository)
	svc := newProfileService(repo)

	companyID := uuid.New()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *Profile) bool {
		return p.UserStatus == shared.StatusInvited &&
			p.PreferredUILanguage == "en" &&
			p.CompanyID != nil && *p.CompanyID == companyID
	})).Return(nil)

	p, err := svc.CreateInvited(context.Background(), InviteSeed{
		IdentityUID:      "staff-uid",
		Email:            "staff@acme.test",
		CompanyID:        companyID,
		Language:         "xx",
		VerificationCode: "12345678",
	})

	assert.NoError(t, err)
	assert.Equal(t, shared.StatusInvited, p.UserStatus)
}

func TestOnboardingStateDerivation(t *testing.T) {
	tests := []struct {
		name    string
		profile shared.Profile
		want    shared.OnboardingState
	}{
		{"unverified", shared.Profile{IsAdmin: true}, shared.OnboardingNotStarted},
		{"verified staff", shared.Profile{IsVerifiedByCode: true}, shared.OnboardingComplete},
		{"verified admin without language", shared.Profile{IsAdmin: true, IsVerifiedByCode: true}, shared.OnboardingLanguagePending},
		{"verified admin with language", shared.Profile{IsAdmin: true, IsVerifiedByCode: true, LanguageChosen: true}, shared.OnboardingSetupPending},
		{"verified admin with company", shared.Profile{IsAdmin: true, IsVerifiedByCode: true, HasCompanySetUp: true}, shared.OnboardingComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.profile.OnboardingState())
		})
	}
}

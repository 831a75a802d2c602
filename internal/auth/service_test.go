package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"propdesk_backend/internal/common"
	"propdesk_backend/internal/config"
	"propdesk_backend/internal/identity"
	"propdesk_backend/internal/profile"
	"propdesk_backend/internal/shared"
)

// MockIdentityProvider is a mock type for identity.Provider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, email, password string) (*identity.Identity, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

func (m *MockIdentityProvider) GetByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

func (m *MockIdentityProvider) SetPassword(ctx context.Context, uid, newPassword string) error {
	args := m.Called(ctx, uid, newPassword)
	return args.Error(0)
}

func (m *MockIdentityProvider) ResendVerificationEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockIdentityProvider) SignOut(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockIdentityProvider) VerifyIDToken(ctx context.Context, idToken string) (*identity.Claims, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Claims), args.Error(1)
}

// MockProfileService is a mock type for profile.Service
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetByIdentityUID(ctx context.Context, identityUID string) (*shared.Profile, error) {
	args := m.Called(ctx, identityUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Profile), args.Error(1)
}

func (m *MockProfileService) Bootstrap(ctx context.Context, identityUID, email, lang string) error {
	args := m.Called(ctx, identityUID, email, lang)
	return args.Error(0)
}

func (m *MockProfileService) MarkVerifiedByCode(ctx context.Context, identityUID string) (*shared.Profile, error) {
	args := m.Called(ctx, identityUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Profile), args.Error(1)
}

func (m *MockProfileService) SetLanguage(ctx context.Context, identityUID, lang string) (*shared.Profile, error) {
	args := m.Called(ctx, identityUID, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Profile), args.Error(1)
}

func (m *MockProfileService) AttachCompany(ctx context.Context, profileID, companyID uuid.UUID) error {
	args := m.Called(ctx, profileID, companyID)
	return args.Error(0)
}

func (m *MockProfileService) SetStatus(ctx context.Context, profileID uuid.UUID, status shared.UserStatus) error {
	args := m.Called(ctx, profileID, status)
	return args.Error(0)
}

func (m *MockProfileService) FindJoinCandidate(ctx context.Context, email string, companyID uuid.UUID) (*shared.Profile, error) {
	args := m.Called(ctx, email, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Profile), args.Error(1)
}

func (m *MockProfileService) CreateInvited(ctx context.Context, seed profile.InviteSeed) (*shared.Profile, error) {
	args := m.Called(ctx, seed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Profile), args.Error(1)
}

func (m *MockProfileService) ListByCompany(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]shared.Profile, *common.Pagination, error) {
	args := m.Called(ctx, companyID, page, pageSize)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]shared.Profile), args.Get(1).(*common.Pagination), args.Error(2)
}

func (m *MockProfileService) ListActiveStaffIDs(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockProfileService) GetByID(ctx context.Context, id uuid.UUID) (*shared.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Profile), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		VerificationCodeLength: 8,
		DefaultUILanguage:      "en",
		SessionStateTTL:        time.Hour,
	}
}

func newTestService(provider *MockIdentityProvider, profiles *MockProfileService) (*ServiceImplementation, *InMemorySessionStore) {
	sessions := NewInMemorySessionStore(time.Hour)
	svc := NewService(provider, profiles, sessions, testConfig(), zap.NewNop())
	return svc, sessions
}

func verifiedAdmin(uid string) *shared.Profile {
	return &shared.Profile{
		ID:                  uuid.New(),
		IdentityUID:         uid,
		Email:               "admin@acme.test",
		IsAdmin:             true,
		IsVerifiedByCode:    true,
		VerificationCode:    "12345678",
		PreferredUILanguage: "en",
		UserStatus:          shared.StatusActive,
	}
}

func TestDecideLanding(t *testing.T) {
	companyID := uuid.New()

	tests := []struct {
		name    string
		profile *shared.Profile
		want    Destination
	}{
		{
			name:    "unverified profile goes to the verification gate",
			profile: &shared.Profile{IsAdmin: true, IsVerifiedByCode: false, HasCompanySetUp: true},
			want:    DestinationVerificationGate,
		},
		{
			name:    "unverified staff also goes to the verification gate first",
			profile: &shared.Profile{IsAdmin: false, IsVerifiedByCode: false},
			want:    DestinationVerificationGate,
		},
		{
			name:    "verified staff lands on the task list",
			profile: &shared.Profile{IsAdmin: false, IsVerifiedByCode: true},
			want:    DestinationTaskList,
		},
		{
			name:    "verified admin without a company picks a language first",
			profile: &shared.Profile{IsAdmin: true, IsVerifiedByCode: true, HasCompanySetUp: false},
			want:    DestinationLanguageSelection,
		},
		{
			name:    "verified admin with a company lands on the dashboard",
			profile: &shared.Profile{IsAdmin: true, IsVerifiedByCode: true, HasCompanySetUp: true, CompanyID: &companyID},
			want:    DestinationDashboard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecideLanding(tt.profile))
		})
	}
}

func TestSignIn_SuccessfulDashboardLanding(t *testing.T) {
	provider := new(MockIdentityProvider)
	profiles := new(MockProfileService)
	svc, sessions := newTestService(provider, profiles)

	uid := "fb-uid-1"
	p := verifiedAdmin(uid)
	p.HasCompanySetUp = true

	provider.On("SignIn", mock.Anything, "admin@acme.test", "hunter22").
		Return(&identity.Session{UID: uid, Email: "admin@acme.test", IDToken: "tok"}, nil)
	profiles.On("GetByIdentityUID", mock.Anything, uid).Return(p, nil)

	result, err := svc.SignIn(context.Background(), SignInRequest{Email: "admin@acme.test", Password: "hunter22"})

	assert.NoError(t, err)
	assert.Equal(t, DestinationDashboard, result.Destination)
	assert.Equal(t, "tok", result.Session.IDToken)

	state, found := sessions.Get(uid)
	assert.True(t, found)
	assert.True(t, state.OnboardingComplete)
	assert.True(t, state.IsAdmin)
	profiles.AssertNotCalled(t, "Bootstrap", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSignIn_IntermediateLandingLeavesSessionUntouched(t *testing.T) {
	provider := new(MockIdentityProvider)
	profiles := new(MockProfileService)
	svc, sessions := newTestService(provider, profiles)

	uid := "fb-uid-2"
	p := verifiedAdmin(uid)
	p.HasCompanySetUp = false

	provider.On("SignIn", mock.Anything, mock.Anything, mock.Anything).
		Return(&identity.Session{UID: uid, Email: p.Email}, nil)
	profiles.On("GetByIdentityUID", mock.Anything, uid).Return(p, nil)

	result, err := svc.SignIn(context.Background(), SignInRequest{Email: p.Email, Password: "pw"})

	assert.NoError(t, err)
	assert.Equal(t, DestinationLanguageSelection, result.Destination)
	_, found := sessions.Get(uid)
	assert.False(t, found, "intermediate landings must not mark onboarding complete")
}

func TestSignIn_InvalidCredentialsSurfacesProviderMessage(t *testing.T) {
	provider := new(MockIdentityProvider)
	profiles := new(MockProfileService)
	svc, _ := newTestService(provider, profiles)

	provider.On("SignIn", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, identity.ErrInvalidCredentials)

	_, err := svc.SignIn(context.Background(), SignInRequest{Email: "x@y.test", Password: "wrong"})

	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, identity.ErrInvalidCredentials.Error(), apiErr.Details)
}

func TestSignIn_UnconfirmedEmailIsItsOwnError(t *testing.T) {
	provider := new(MockIdentityProvider)
	profiles := new(MockProfileService)
	svc, _ := newTestService(provider, profiles)

	provider.On("SignIn", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, identity.ErrEmailNotVerified)

	_, err := svc.SignIn(context.Background(), SignInRequest{Email: "x@y.test", Password: "pw"})

	assert.ErrorIs(t, err, common.ErrNeedsEmailVerification)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestSignIn_BootstrapsMissingProfileOnce(t *testing.T) {
	provider := new(MockIdentityProvider)
	profiles := new(MockProfileService)
	svc, _ := newTestService(provider, profiles)

	uid := "fresh-uid"
	created := &shared.Profile{
		ID:               uuid.New(),
		IdentityUID:      uid,
		Email:            "fresh@acme.test",
		IsAdmin:          true,
		IsVerifiedByCode: false,
		UserStatus:       shared.StatusNew,
	}

	provider.On("SignIn", mock.Anything, mock.Anything, mock.Anything).
		Return(&identity.Session{UID: uid, Email: "fresh@acme.test"}, nil)
	profiles.On("GetByIdentityUID", mock.Anything, uid).Return(nil, common.ErrNotFound).Once()
	profiles.On("Bootstrap", mock.Anything, uid, "fresh@acme.test", "de").Return(nil).Once()
	profiles.On("GetByIdentityUID", mock.Anything, uid).Return(created, nil).Once()

	result, err := svc.SignIn(context.Background(), SignInRequest{
		Email:    "fresh@acme.test",
		Password: "pw",
		Language: "de",
	})

	assert.NoError(t, err)
	assert.Equal(t, DestinationVerificationGate, result.Destination)
	profiles.AssertExpectations(t)
}

func TestSignIn_BootstrapFailureFailsClosed(t *testing.T) {
	provider := new(MockIdentityProvider)
	profiles := new(MockProfileService)
	svc, sessions := newTestService(provider, profiles)

	uid := "doomed-uid"
	sessions.Put(uid, SessionState{OnboardingComplete: true})

	provider.On("SignIn", mock.Anything, mock.Anything, mock.Anything).
		Return(&identity.Session{UID: uid, Email: "doomed@acme.test"}, nil)
	profiles.On("GetByIdentityUID", mock.Anything, uid).Return(nil, common.ErrNotFound)
	profiles.On("Bootstrap", mock.Anything, uid, mock.Anything, mock.Anything).
		Return(common.ErrInternalServer)
	provider.On("SignOut", mock.Anything, uid).Return(nil)

	_, err := svc.SignIn(context.Background(), SignInRequest{Email: "doomed@acme.test", Password: "pw"})

	assert.ErrorIs(t, err, common.ErrProfileBootstrapFailed)
	provider.AssertCalled(t, "SignOut", mock.Anything, uid)
	_, found := sessions.Get(uid)
	assert.False(t, found, "fail-closed must clear stored session state")
}

func TestSignIn_MissingProfileAfterBootstrapFailsClosed(t *testing.T) {
	provider := new(MockIdentityProvider)
	profiles := new(MockProfileService)
	svc, sessions := newTestService(provider, profiles)

	uid := "ghost-uid"
	sessions.Put(uid, SessionState{OnboardingComplete: true})

	provider.On("SignIn", mock.Anything, mock.Anything, mock.Anything).
		Return(&identity.Session{UID: uid, Email: "ghost@acme.test"}, nil)
	profiles.On("GetByIdentityUID", mock.Anything, uid).Return(nil, common.ErrNotFound).Twice()
	profiles.On("Bootstrap", mock.Anything, uid, "ghost@acme.test", mock.Anything).Return(nil).Once()
	provider.On("SignOut", mock.Anything, uid).Return(nil)

	_, err := svc.SignIn(context.Background(), SignInRequest{Email: "ghost@acme.test", Password: "pw"})

	assert.ErrorIs(t, err, common.ErrProfileBootstrapFailed)
	provider.AssertCalled(t, "SignOut", mock.Anything, uid)
	_, found := sessions.Get(uid)
	assert.False(t, found, "fail-closed must clear stored session state")
	profiles.AssertExpectations(t)
}

func TestSubmitVerificationCode_CorrectCodeLandsOnLanguageSelection(t *testing.T) {
	provider := new(MockIdentityProvider)
	profiles := new(MockProfileService)
	svc, _ := newTestService(provider, profiles)

	uid := "gate-uid"
	before := verifiedAdmin(uid)
	before.IsVerifiedByCode = false
	after := verifiedAdmin(uid)
	after.HasCompanySetUp = false

	profiles.On("GetByIdentityUID", mock.Anything, uid).Return(before, nil)
	profiles.On("MarkVerifiedByCode", mock.Anything, uid).Return(after, nil).Once()

	result, err := svc.SubmitVerificationCode(context.Background(), uid, "12345678")

	assert.NoError(t, err)
	assert.Equal(t, DestinationLanguageSelection, result.Destination)
	profiles.AssertExpectations(t)
}

func TestSubmitVerificationCode_TrimsWhitespaceBeforeComparing(t *testing.T) {
	provider := new(MockIdentityProvider)
	profiles := new(MockProfileService)
	svc, _ := newTestService(provider, profiles)

	uid := "gate-uid"
	before := verifiedAdmin(uid)
	before.IsVerifiedByCode = false
	after := verifiedAdmin(uid)

	profiles.On("GetByIdentityUID", mock.Anything, uid).Return(before, nil)
	profiles.On("MarkVerifiedByCode", mock.Anything, uid).Return(after, nil)

	_, err := svc.SubmitVerificationCode(context.Background(), uid, "  12345678  ")
	assert.NoError(t, err)
}

func TestSubmitVerificationCode_WrongCodeIsRetryable(t *testing.T) {
	provider := new(MockIdentityProvider)
	profiles := new(MockProfileService)
	svc, _ := newTestService(provider, profiles)

	uid := "gate-uid"
	p := verifiedAdmin(uid)
	p.IsVerifiedByCode = false

	profiles.On("GetByIdentityUID", mock.Anything, uid).Return(p, nil)

	_, err := svc.SubmitVerificationCode(context.Background(), uid, "87654321")

	assert.ErrorIs(t, err, common.ErrIncorrectCode)
	profiles.AssertNotCalled(t, "MarkVerifiedByCode", mock.Anything, mock.Anything)
}

func TestSubmitVerificationCode_RejectsMalformedCodes(t *testing.T) {
	provider := new(MockIdentityProvider)
	profiles := new(MockProfileService)
	svc, _ := newTestService(provider, profiles)

	for _, code := range []string{"1234", "123456789", "1234567a", ""} {
		_, err := svc.SubmitVerificationCode(context.Background(), "uid", code)
		assert.ErrorIs(t, err, common.ErrIncorrectCode, "code %q must fail format validation", code)
	}
	profiles.AssertNotCalled(t, "GetByIdentityUID", mock.Anything, mock.Anything)
}

func TestSubmitVerificationCode_AlreadyVerifiedIsIdempotent(t *testing.T) {
	provider := new(MockIdentityProvider)
	profiles := new(MockProfileService)
	svc, _ := newTestService(provider, profiles)

	uid := "gate-uid"
	p := verifiedAdmin(uid)
	p.HasCompanySetUp = true

	profiles.On("GetByIdentityUID", mock.Anything, uid).Return(p, nil)

	result, err := svc.SubmitVerificationCode(context.Background(), uid, "12345678")

	assert.NoError(t, err)
	assert.Equal(t, DestinationDashboard, result.Destination)
	profiles.AssertNotCalled(t, "MarkVerifiedByCode", mock.Anything, mock.Anything)
}

func TestSaveLanguagePreference_RoutesToAgencySetup(t *testing.T) {
	provider := new(MockIdentityProvider)
	profiles := new(MockProfileService)
	svc, sessions := newTestService(provider, profiles)

	uid := "lang-uid"
	sessions.Put(uid, SessionState{OnboardingComplete: false, IsAdmin: true, PreferredLang: "en"})

	updated := verifiedAdmin(uid)
	updated.PreferredUILanguage = "de"
	updated.LanguageChosen = true

	profiles.On("SetLanguage", mock.Anything, uid, "de").Return(updated, nil)

	result, err := svc.SaveLanguagePreference(context.Background(), uid, "de")

	assert.NoError(t, err)
	assert.Equal(t, DestinationAgencySetup, result.Destination)
	state, found := sessions.Get(uid)
	assert.True(t, found)
	assert.Equal(t, "de", state.PreferredLang)
}

func TestSignOut_ClearsSessionStateAndRevokes(t *testing.T) {
	provider := new(MockIdentityProvider)
	profiles := new(MockProfileService)
	svc, sessions := newTestService(provider, profiles)

	uid := "bye-uid"
	sessions.Put(uid, SessionState{OnboardingComplete: true})
	provider.On("SignOut", mock.Anything, uid).Return(nil)

	err := svc.SignOut(context.Background(), uid)

	assert.NoError(t, err)
	_, found := sessions.Get(uid)
	assert.False(t, found)
	provider.AssertCalled(t, "SignOut", mock.Anything, uid)
}

func TestResendVerification_ReturnsStatusText(t *testing.T) {
	provider := new(MockIdentityProvider)
	profiles := new(MockProfileService)
	svc, _ := newTestService(provider, profiles)

	provider.On("ResendVerificationEmail", mock.Anything, "x@y.test").Return(nil)

	msg, err := svc.ResendVerification(context.Background(), "x@y.test")

	assert.NoError(t, err)
	assert.NotEmpty(t, msg)
}

func TestResendVerification_UnknownEmail(t *testing.T) {
	provider := new(MockIdentityProvider)
	profiles := new(MockProfileService)
	svc, _ := newTestService(provider, profiles)

	provider.On("ResendVerificationEmail", mock.Anything, "ghost@y.test").
		Return(identity.ErrUserNotFound)

	_, err := svc.ResendVerification(context.Background(), "ghost@y.test")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

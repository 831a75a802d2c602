package join

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"propdesk_backend/internal/common"
	"propdesk_backend/internal/company"
	"propdesk_backend/internal/config"
	"propdesk_backend/internal/identity"
	"propdesk_backend/internal/profile"
	"propdesk_backend/internal/shared"
)

// stubCompanyService implements company.Service with overridable functions.
type stubCompanyService struct {
	getByJoinCodeFunc func(ctx context.Context, joinCode string) (*company.Company, error)
}

func (s *stubCompanyService) SaveDetails(ctx context.Context, admin *shared.Profile, req company.SaveDetailsRequest) (*company.Company, error) {
	return nil, errors.New("not implemented")
}

func (s *stubCompanyService) UpdateDetails(ctx context.Context, companyID uuid.UUID, req company.UpdateDetailsRequest) (*company.Company, error) {
	return nil, errors.New("not implemented")
}

func (s *stubCompanyService) GetByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	return nil, errors.New("not implemented")
}

func (s *stubCompanyService) GetByJoinCode(ctx context.Context, joinCode string) (*company.Company, error) {
	return s.getByJoinCodeFunc(ctx, joinCode)
}

// stubProfileService implements profile.Service with overridable functions.
type stubProfileService struct {
	findJoinCandidateFunc func(ctx context.Context, email string, companyID uuid.UUID) (*shared.Profile, error)
	setStatusFunc         func(ctx context.Context, profileID uuid.UUID, status shared.UserStatus) error
}

func (s *stubProfileService) GetByIdentityUID(ctx context.Context, identityUID string) (*shared.Profile, error) {
	return nil, errors.New("not implemented")
}

func (s *stubProfileService) Bootstrap(ctx context.Context, identityUID, email, lang string) error {
	return errors.New("not implemented")
}

func (s *stubProfileService) MarkVerifiedByCode(ctx context.Context, identityUID string) (*shared.Profile, error) {
	return nil, errors.New("not implemented")
}

func (s *stubProfileService) SetLanguage(ctx context.Context, identityUID, lang string) (*shared.Profile, error) {
	return nil, errors.New("not implemented")
}

func (s *stubProfileService) AttachCompany(ctx context.Context, profileID, companyID uuid.UUID) error {
	return errors.New("not implemented")
}

func (s *stubProfileService) SetStatus(ctx context.Context, profileID uuid.UUID, status shared.UserStatus) error {
	return s.setStatusFunc(ctx, profileID, status)
}

func (s *stubProfileService) FindJoinCandidate(ctx context.Context, email string, companyID uuid.UUID) (*shared.Profile, error) {
	return s.findJoinCandidateFunc(ctx, email, companyID)
}

func (s *stubProfileService) CreateInvited(ctx context.Context, seed profile.InviteSeed) (*shared.Profile, error) {
	return nil, errors.New("not implemented")
}

func (s *stubProfileService) ListByCompany(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]shared.Profile, *common.Pagination, error) {
	return nil, nil, errors.New("not implemented")
}

func (s *stubProfileService) ListActiveStaffIDs(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	return nil, errors.New("not implemented")
}

func (s *stubProfileService) GetByID(ctx context.Context, id uuid.UUID) (*shared.Profile, error) {
	return nil, errors.New("not implemented")
}

// stubIdentityProvider implements identity.Provider; only SetPassword matters
// for this flow. Calls records how often the privileged set was attempted.
type stubIdentityProvider struct {
	setPasswordFunc func(ctx context.Context, uid, newPassword string) error
	setPasswordCalls int
}

func (s *stubIdentityProvider) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	return nil, errors.New("not implemented")
}

func (s *stubIdentityProvider) SignUp(ctx context.Context, email, password string) (*identity.Identity, error) {
	return nil, errors.New("not implemented")
}

func (s *stubIdentityProvider) GetByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	return nil, errors.New("not implemented")
}

func (s *stubIdentityProvider) SetPassword(ctx context.Context, uid, newPassword string) error {
	s.setPasswordCalls++
	if s.setPasswordFunc != nil {
		return s.setPasswordFunc(ctx, uid, newPassword)
	}
	return nil
}

func (s *stubIdentityProvider) ResendVerificationEmail(ctx context.Context, email string) error {
	return errors.New("not implemented")
}

func (s *stubIdentityProvider) SignOut(ctx context.Context, uid string) error {
	return nil
}

func (s *stubIdentityProvider) VerifyIDToken(ctx context.Context, idToken string) (*identity.Claims, error) {
	return nil, errors.New("not implemented")
}

type joinTestEnv struct {
	svc       *ServiceImplementation
	sessions  *InMemorySessionStore
	companies *stubCompanyService
	profiles  *stubProfileService
	provider  *stubIdentityProvider
}

func newJoinTestEnv() *joinTestEnv {
	env := &joinTestEnv{
		sessions:  NewInMemorySessionStore(time.Hour),
		companies: &stubCompanyService{},
		profiles:  &stubProfileService{},
		provider:  &stubIdentityProvider{},
	}
	cfg := &config.Config{VerificationCodeLength: 8}
	env.svc = NewService(env.sessions, env.companies, env.profiles, env.provider, cfg, zap.NewNop())
	return env
}

func invitedProfile(companyID uuid.UUID, email string) *shared.Profile {
	return &shared.Profile{
		ID:          uuid.New(),
		IdentityUID: "staff-uid",
		Email:       email,
		CompanyID:   &companyID,
		UserStatus:  shared.StatusInvited,
	}
}

func TestSubmitCode_OpensSessionAwaitingEmail(t *testing.T) {
	env := newJoinTestEnv()
	companyID := uuid.New()
	env.companies.getByJoinCodeFunc = func(ctx context.Context, joinCode string) (*company.Company, error) {
		assert.Equal(t, "12345678", joinCode)
		return &company.Company{BaseModel: common.BaseModel{ID: companyID}, Name: "Acme Estates"}, nil
	}

	sess, token, err := env.svc.SubmitCode(context.Background(), " 12345678 ")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, StateAwaitingEmail, sess.State)
	assert.Equal(t, "Acme Estates", sess.CompanyName)

	stored, found := env.sessions.Get(token)
	assert.True(t, found)
	assert.Equal(t, companyID, stored.CompanyID)
}

func TestSubmitCode_UnknownCode(t *testing.T) {
	env := newJoinTestEnv()
	env.companies.getByJoinCodeFunc = func(ctx context.Context, joinCode string) (*company.Company, error) {
		return nil, common.ErrInvalidCompanyCode
	}

	_, _, err := env.svc.SubmitCode(context.Background(), "00000000")
	assert.ErrorIs(t, err, common.ErrInvalidCompanyCode)
}

func TestSubmitCode_EmptyCode(t *testing.T) {
	env := newJoinTestEnv()

	_, _, err := env.svc.SubmitCode(context.Background(), "   ")
	assert.ErrorIs(t, err, common.ErrInvalidCompanyCode)
}

func TestSubmitCode_MalformedCodesNeverReachTheCompanyLookup(t *testing.T) {
	env := newJoinTestEnv()
	lookups := 0
	env.companies.getByJoinCodeFunc = func(ctx context.Context, joinCode string) (*company.Company, error) {
		lookups++
		return nil, common.ErrInvalidCompanyCode
	}

	for _, code := range []string{"12ab", "1234", "123456789", "abcdefgh"} {
		_, _, err := env.svc.SubmitCode(context.Background(), code)
		assert.ErrorIs(t, err, common.ErrInvalidCompanyCode, "code %q", code)
	}

	assert.Equal(t, 0, lookups)
}

func TestSubmitEmail_MatchesInvitedProfile(t *testing.T) {
	env := newJoinTestEnv()
	companyID := uuid.New()
	p := invitedProfile(companyID, "staff@acme.test")

	env.sessions.Put("tok", Session{State: StateAwaitingEmail, CompanyID: companyID, CompanyName: "Acme Estates"})
	env.profiles.findJoinCandidateFunc = func(ctx context.Context, email string, cid uuid.UUID) (*shared.Profile, error) {
		assert.Equal(t, "staff@acme.test", email)
		assert.Equal(t, companyID, cid)
		return p, nil
	}

	sess, err := env.svc.SubmitEmail(context.Background(), "tok", "  Staff@Acme.test ")

	assert.NoError(t, err)
	assert.Equal(t, StateAwaitingPassword, sess.State)
	assert.Equal(t, p.ID, sess.ProfileID)
	assert.Equal(t, "staff-uid", sess.IdentityUID)

	stored, _ := env.sessions.Get("tok")
	assert.Equal(t, StateAwaitingPassword, stored.State)
}

func TestSubmitEmail_UnknownEmailDoesNotLeakExistence(t *testing.T) {
	env := newJoinTestEnv()
	env.sessions.Put("tok", Session{State: StateAwaitingEmail, CompanyID: uuid.New()})
	env.profiles.findJoinCandidateFunc = func(ctx context.Context, email string, cid uuid.UUID) (*shared.Profile, error) {
		return nil, common.ErrNotFound
	}

	_, err := env.svc.SubmitEmail(context.Background(), "tok", "other@elsewhere.test")
	assert.ErrorIs(t, err, common.ErrInvalidOrIneligibleEmail)
}

func TestSubmitEmail_AlreadyActiveAccount(t *testing.T) {
	env := newJoinTestEnv()
	companyID := uuid.New()
	p := invitedProfile(companyID, "staff@acme.test")
	p.UserStatus = shared.StatusActive

	env.sessions.Put("tok", Session{State: StateAwaitingEmail, CompanyID: companyID})
	env.profiles.findJoinCandidateFunc = func(ctx context.Context, email string, cid uuid.UUID) (*shared.Profile, error) {
		return p, nil
	}

	_, err := env.svc.SubmitEmail(context.Background(), "tok", "staff@acme.test")
	assert.ErrorIs(t, err, common.ErrAccountAlreadyActive)
}

func TestSubmitEmail_InactiveStatusIsIndistinguishableFromUnknown(t *testing.T) {
	env := newJoinTestEnv()
	companyID := uuid.New()
	p := invitedProfile(companyID, "staff@acme.test")
	p.UserStatus = shared.StatusInactive

	env.sessions.Put("tok", Session{State: StateAwaitingEmail, CompanyID: companyID})
	env.profiles.findJoinCandidateFunc = func(ctx context.Context, email string, cid uuid.UUID) (*shared.Profile, error) {
		return p, nil
	}

	_, err := env.svc.SubmitEmail(context.Background(), "tok", "staff@acme.test")
	assert.ErrorIs(t, err, common.ErrInvalidOrIneligibleEmail)
}

func TestSubmitEmail_UnknownToken(t *testing.T) {
	env := newJoinTestEnv()

	_, err := env.svc.SubmitEmail(context.Background(), "never-issued", "staff@acme.test")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestSubmitEmail_OutOfOrderStep(t *testing.T) {
	env := newJoinTestEnv()
	env.sessions.Put("tok", Session{State: StateAwaitingPassword, CompanyID: uuid.New()})

	_, err := env.svc.SubmitEmail(context.Background(), "tok", "staff@acme.test")
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestSubmitPassword_ActivatesAccount(t *testing.T) {
	env := newJoinTestEnv()
	profileID := uuid.New()
	env.sessions.Put("tok", Session{
		State:       StateAwaitingPassword,
		ProfileID:   profileID,
		IdentityUID: "staff-uid",
	})

	var gotUID, gotPassword string
	env.provider.setPasswordFunc = func(ctx context.Context, uid, newPassword string) error {
		gotUID, gotPassword = uid, newPassword
		return nil
	}
	env.profiles.setStatusFunc = func(ctx context.Context, pid uuid.UUID, status shared.UserStatus) error {
		assert.Equal(t, profileID, pid)
		assert.Equal(t, shared.StatusActive, status)
		return nil
	}

	result, err := env.svc.SubmitPassword(context.Background(), "tok", "s3cret-pw", "s3cret-pw")

	assert.NoError(t, err)
	assert.Equal(t, StateActivated, result.State)
	assert.Empty(t, result.Caveat)
	assert.Equal(t, "staff-uid", gotUID)
	assert.Equal(t, "s3cret-pw", gotPassword)

	_, found := env.sessions.Get("tok")
	assert.False(t, found, "completed sessions must be removed")
}

func TestSubmitPassword_ValidatesBeforeTouchingTheProvider(t *testing.T) {
	env := newJoinTestEnv()
	env.sessions.Put("tok", Session{State: StateAwaitingPassword, ProfileID: uuid.New(), IdentityUID: "staff-uid"})

	_, err := env.svc.SubmitPassword(context.Background(), "tok", "short", "short")
	assert.ErrorIs(t, err, common.ErrPasswordTooShort)

	_, err = env.svc.SubmitPassword(context.Background(), "tok", "s3cret-pw", "different")
	assert.ErrorIs(t, err, common.ErrPasswordMismatch)

	assert.Equal(t, 0, env.provider.setPasswordCalls)

	// Both rejections keep the session open for a retry.
	stored, found := env.sessions.Get("tok")
	assert.True(t, found)
	assert.Equal(t, StateAwaitingPassword, stored.State)
}

func TestSubmitPassword_ProviderFailureIsAHardError(t *testing.T) {
	env := newJoinTestEnv()
	env.sessions.Put("tok", Session{State: StateAwaitingPassword, ProfileID: uuid.New(), IdentityUID: "staff-uid"})
	env.provider.setPasswordFunc = func(ctx context.Context, uid, newPassword string) error {
		return errors.New("firebase is down")
	}

	_, err := env.svc.SubmitPassword(context.Background(), "tok", "s3cret-pw", "s3cret-pw")
	assert.ErrorIs(t, err, common.ErrInternalServer)
}

func TestSubmitPassword_ActivationFailureAfterPasswordSetIsSuccessWithCaveat(t *testing.T) {
	env := newJoinTestEnv()
	env.sessions.Put("tok", Session{State: StateAwaitingPassword, ProfileID: uuid.New(), IdentityUID: "staff-uid"})
	env.profiles.setStatusFunc = func(ctx context.Context, pid uuid.UUID, status shared.UserStatus) error {
		return errors.New("database is down")
	}

	result, err := env.svc.SubmitPassword(context.Background(), "tok", "s3cret-pw", "s3cret-pw")

	assert.NoError(t, err)
	assert.Equal(t, StateActivated, result.State)
	assert.NotEmpty(t, result.Caveat)
	assert.Equal(t, 1, env.provider.setPasswordCalls)
}

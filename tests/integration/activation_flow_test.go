package integration_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"propdesk_backend/internal/auth"
	"propdesk_backend/internal/common"
	"propdesk_backend/internal/company"
	"propdesk_backend/internal/config"
	"propdesk_backend/internal/identity"
	"propdesk_backend/internal/join"
	"propdesk_backend/internal/profile"
	"propdesk_backend/internal/staff"
)

// fakeIdentityProvider is an in-memory identity.Provider so the full
// activation flow can run against a real database without Firebase.
type fakeIdentityProvider struct {
	accounts map[string]*fakeAccount // keyed by email
	byUID    map[string]*fakeAccount
	nextUID  int
}

type fakeAccount struct {
	uid      string
	email    string
	password string
}

func newFakeIdentityProvider() *fakeIdentityProvider {
	return &fakeIdentityProvider{
		accounts: make(map[string]*fakeAccount),
		byUID:    make(map[string]*fakeAccount),
	}
}

func (f *fakeIdentityProvider) SignUp(ctx context.Context, email, password string) (*identity.Identity, error) {
	if _, exists := f.accounts[email]; exists {
		return nil, identity.ErrEmailAlreadyExists
	}
	f.nextUID++
	acct := &fakeAccount{uid: fmt.Sprintf("uid-%d", f.nextUID), email: email, password: password}
	f.accounts[email] = acct
	f.byUID[acct.uid] = acct
	return &identity.Identity{UID: acct.uid, Email: email, EmailVerified: true}, nil
}

func (f *fakeIdentityProvider) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	acct, ok := f.accounts[email]
	if !ok || acct.password != password {
		return nil, identity.ErrInvalidCredentials
	}
	return &identity.Session{UID: acct.uid, Email: acct.email, IDToken: "test-token", ExpiresIn: time.Hour}, nil
}

func (f *fakeIdentityProvider) GetByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	acct, ok := f.accounts[email]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return &identity.Identity{UID: acct.uid, Email: acct.email, EmailVerified: true}, nil
}

func (f *fakeIdentityProvider) SetPassword(ctx context.Context, uid, newPassword string) error {
	acct, ok := f.byUID[uid]
	if !ok {
		return identity.ErrUserNotFound
	}
	acct.password = newPassword
	return nil
}

func (f *fakeIdentityProvider) ResendVerificationEmail(ctx context.Context, email string) error {
	if _, ok := f.accounts[email]; !ok {
		return identity.ErrUserNotFound
	}
	return nil
}

func (f *fakeIdentityProvider) SignOut(ctx context.Context, uid string) error { return nil }

func (f *fakeIdentityProvider) VerifyIDToken(ctx context.Context, idToken string) (*identity.Claims, error) {
	return nil, identity.ErrUnavailable
}

type testEnv struct {
	db        *gorm.DB
	provider  *fakeIdentityProvider
	profiles  profile.Service
	companies company.Service
	auth      auth.Service
	join      join.Service
	staff     staff.Service
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "failed to open sqlite database")
	// Only the models this flow touches; the property schema is
	// Postgres-specific.
	require.NoError(t, db.AutoMigrate(&profile.Profile{}, &company.Company{}), "failed to migrate schema")

	cfg := &config.Config{
		VerificationCodeLength: 8,
		DefaultUILanguage:      "en",
		SessionStateTTL:        time.Hour,
		JoinSessionTTL:         15 * time.Minute,
	}
	log := zap.NewNop()
	provider := newFakeIdentityProvider()

	profileService := profile.NewService(profile.NewGORMRepository(db), cfg, log)
	companyService := company.NewService(company.NewGORMRepository(db), profileService, cfg, log)
	authService := auth.NewService(provider, profileService, auth.NewInMemorySessionStore(cfg.SessionStateTTL), cfg, log)
	joinService := join.NewService(join.NewInMemorySessionStore(cfg.JoinSessionTTL), companyService, profileService, provider, cfg, log)
	staffService := staff.NewService(profileService, provider, cfg, log)

	return &testEnv{
		db:        db,
		provider:  provider,
		profiles:  profileService,
		companies: companyService,
		auth:      authService,
		join:      joinService,
		staff:     staffService,
	}
}

// onboardAdmin walks a fresh admin through the full first-run flow and
// returns the admin profile with its company attached.
func onboardAdmin(t *testing.T, env *testEnv, email, password, companyName string) *company.Company {
	t.Helper()
	ctx := context.Background()

	_, err := env.provider.SignUp(ctx, email, password)
	require.NoError(t, err)

	result, err := env.auth.SignIn(ctx, auth.SignInRequest{Email: email, Password: password})
	require.NoError(t, err)
	require.Equal(t, auth.DestinationVerificationGate, result.Destination)

	// The profile was bootstrapped lazily; read the generated code back.
	p, err := env.profiles.GetByIdentityUID(ctx, result.Session.UID)
	require.NoError(t, err)
	require.True(t, p.IsAdmin)
	require.Len(t, p.VerificationCode, 8)

	result, err = env.auth.SubmitVerificationCode(ctx, p.IdentityUID, p.VerificationCode)
	require.NoError(t, err)
	require.Equal(t, auth.DestinationLanguageSelection, result.Destination)

	result, err = env.auth.SaveLanguagePreference(ctx, p.IdentityUID, "de")
	require.NoError(t, err)
	require.Equal(t, auth.DestinationAgencySetup, result.Destination)

	admin, err := env.profiles.GetByIdentityUID(ctx, p.IdentityUID)
	require.NoError(t, err)
	c, err := env.companies.SaveDetails(ctx, admin, company.SaveDetailsRequest{Name: companyName})
	require.NoError(t, err)
	return c
}

func TestAdminOnboardingFlow(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	c := onboardAdmin(t, env, "owner@acme.test", "owner-pass", "Acme Estates")
	assert.Len(t, c.JoinCode, 8)
	assert.Equal(t, "acme-estates", c.Slug)

	// A repeat sign-in now lands straight on the dashboard.
	result, err := env.auth.SignIn(ctx, auth.SignInRequest{Email: "owner@acme.test", Password: "owner-pass"})
	require.NoError(t, err)
	assert.Equal(t, auth.DestinationDashboard, result.Destination)
	assert.Equal(t, "de", result.Profile.PreferredUILanguage)

	state, found := env.auth.SessionState(result.Session.UID)
	require.True(t, found)
	assert.True(t, state.OnboardingComplete)
}

func TestAdminOnboarding_WrongCodeKeepsTheGateClosed(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.provider.SignUp(ctx, "owner@acme.test", "owner-pass")
	require.NoError(t, err)
	result, err := env.auth.SignIn(ctx, auth.SignInRequest{Email: "owner@acme.test", Password: "owner-pass"})
	require.NoError(t, err)

	_, err = env.auth.SubmitVerificationCode(ctx, result.Session.UID, "00000000")
	if assert.Error(t, err) {
		assert.ErrorIs(t, err, common.ErrIncorrectCode)
	}

	// Signing in again still routes to the gate.
	result, err = env.auth.SignIn(ctx, auth.SignInRequest{Email: "owner@acme.test", Password: "owner-pass"})
	require.NoError(t, err)
	assert.Equal(t, auth.DestinationVerificationGate, result.Destination)
}

func TestStaffActivationFlow(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	c := onboardAdmin(t, env, "owner@acme.test", "owner-pass", "Acme Estates")
	admin, err := env.profiles.GetByIdentityUID(ctx, "uid-1")
	require.NoError(t, err)

	invited, err := env.staff.Invite(ctx, admin, staff.InviteRequest{Email: "worker@acme.test"})
	require.NoError(t, err)

	// Step 1: company code.
	sess, token, err := env.join.SubmitCode(ctx, c.JoinCode)
	require.NoError(t, err)
	assert.Equal(t, join.StateAwaitingEmail, sess.State)
	assert.Equal(t, "Acme Estates", sess.CompanyName)

	// Step 2: email match against the invited profile.
	sess, err = env.join.SubmitEmail(ctx, token, "Worker@Acme.test")
	require.NoError(t, err)
	assert.Equal(t, join.StateAwaitingPassword, sess.State)
	assert.Equal(t, invited.ID, sess.ProfileID)

	// Step 3: password set and activation.
	activation, err := env.join.SubmitPassword(ctx, token, "worker-pass", "worker-pass")
	require.NoError(t, err)
	assert.Equal(t, join.StateActivated, activation.State)
	assert.Empty(t, activation.Caveat)

	// The token is single-use.
	_, err = env.join.SubmitPassword(ctx, token, "worker-pass", "worker-pass")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	// The staff member can now sign in with the chosen password and is sent
	// to the verification gate first.
	result, err := env.auth.SignIn(ctx, auth.SignInRequest{Email: "worker@acme.test", Password: "worker-pass"})
	require.NoError(t, err)
	assert.Equal(t, auth.DestinationVerificationGate, result.Destination)

	p, err := env.profiles.GetByIdentityUID(ctx, result.Session.UID)
	require.NoError(t, err)
	result, err = env.auth.SubmitVerificationCode(ctx, p.IdentityUID, p.VerificationCode)
	require.NoError(t, err)
	assert.Equal(t, auth.DestinationTaskList, result.Destination)
}

func TestStaffActivation_RejectsForeignAndActiveEmails(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	c := onboardAdmin(t, env, "owner@acme.test", "owner-pass", "Acme Estates")
	admin, err := env.profiles.GetByIdentityUID(ctx, "uid-1")
	require.NoError(t, err)
	_, err = env.staff.Invite(ctx, admin, staff.InviteRequest{Email: "worker@acme.test"})
	require.NoError(t, err)

	// An email with no invitation in this company is rejected without
	// revealing whether it exists elsewhere.
	_, token, err := env.join.SubmitCode(ctx, c.JoinCode)
	require.NoError(t, err)
	_, err = env.join.SubmitEmail(ctx, token, "stranger@elsewhere.test")
	assert.ErrorIs(t, err, common.ErrInvalidOrIneligibleEmail)

	// Activate the invited account, then try to claim it again.
	_, token, err = env.join.SubmitCode(ctx, c.JoinCode)
	require.NoError(t, err)
	_, err = env.join.SubmitEmail(ctx, token, "worker@acme.test")
	require.NoError(t, err)
	_, err = env.join.SubmitPassword(ctx, token, "worker-pass", "worker-pass")
	require.NoError(t, err)

	_, token, err = env.join.SubmitCode(ctx, c.JoinCode)
	require.NoError(t, err)
	_, err = env.join.SubmitEmail(ctx, token, "worker@acme.test")
	assert.ErrorIs(t, err, common.ErrAccountAlreadyActive)
}

func TestStaffActivation_UnknownJoinCode(t *testing.T) {
	env := setupTestEnv(t)

	_, _, err := env.join.SubmitCode(context.Background(), "99999999")
	assert.ErrorIs(t, err, common.ErrInvalidCompanyCode)
}

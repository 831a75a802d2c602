package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"propdesk_backend/internal/config"
)

// signInEndpoint is a variable so tests can point it at a stub server.
var signInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// FirebaseProvider implements Provider on top of the Firebase Admin SDK plus
// the Identity Toolkit REST API. The Admin SDK cannot check passwords, so
// password sign-in goes through the REST endpoint with the web API key; all
// privileged operations (password set, token revocation) use the service
// account.
type FirebaseProvider struct {
	authClient *auth.Client
	httpClient *http.Client
	apiKey     string
	logger     *zap.Logger
}

var _ Provider = (*FirebaseProvider)(nil)

// NewFirebaseProvider initializes the Firebase Admin SDK and creates a new provider.
func NewFirebaseProvider(cfg *config.Config, logger *zap.Logger) (*FirebaseProvider, error) {
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Error("Firebase service account key path is not configured.")
		return nil, fmt.Errorf("firebase service account key path is required")
	}

	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var app *firebase.App
	var err error
	if cfg.FirebaseProjectID != "" {
		conf := &firebase.Config{ProjectID: cfg.FirebaseProjectID}
		app, err = firebase.NewApp(context.Background(), conf, opt)
	} else {
		app, err = firebase.NewApp(context.Background(), nil, opt)
	}
	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(context.Background())
	if err != nil {
		logger.Error("Failed to get Firebase Auth client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return &FirebaseProvider{
		authClient: authClient,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiKey:     cfg.FirebaseWebAPIKey,
		logger:     logger,
	}, nil
}

type signInWithPasswordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInWithPasswordResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type identityToolkitError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn authenticates an email/password pair against the Identity Toolkit
// REST API, then checks the email-verified flag through the Admin SDK. An
// unverified email is rejected the way the original identity service rejects
// unconfirmed accounts.
func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body, err := json.Marshal(signInWithPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal sign-in request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", signInEndpoint, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error("Identity Toolkit sign-in call failed", zap.Error(err))
		return nil, fmt.Errorf("sign-in request failed: %w", ErrUnavailable)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		var toolkitErr identityToolkitError
		if err := json.NewDecoder(res.Body).Decode(&toolkitErr); err != nil {
			p.logger.Error("Failed to decode Identity Toolkit error response", zap.Error(err), zap.Int("status", res.StatusCode))
			return nil, fmt.Errorf("sign-in failed with status %d: %w", res.StatusCode, ErrUnavailable)
		}
		p.logger.Warn("Password sign-in rejected",
			zap.String("email", email),
			zap.String("reason", toolkitErr.Error.Message))
		return nil, mapSignInError(toolkitErr.Error.Message)
	}

	var payload signInWithPasswordResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode sign-in response: %w", err)
	}

	record, err := p.authClient.GetUser(ctx, payload.LocalID)
	if err != nil {
		p.logger.Error("Failed to load user record after sign-in", zap.Error(err), zap.String("uid", payload.LocalID))
		return nil, fmt.Errorf("load user record: %w", ErrUnavailable)
	}
	if !record.EmailVerified {
		return nil, fmt.Errorf("email address %s is not confirmed: %w", email, ErrEmailNotVerified)
	}

	expiresIn := time.Hour
	if secs, convErr := strconv.Atoi(payload.ExpiresIn); convErr == nil {
		expiresIn = time.Duration(secs) * time.Second
	}

	return &Session{
		UID:          payload.LocalID,
		Email:        payload.Email,
		IDToken:      payload.IDToken,
		RefreshToken: payload.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// mapSignInError converts Identity Toolkit error codes into sentinel errors,
// keeping the provider message available verbatim.
func mapSignInError(message string) error {
	switch {
	case strings.HasPrefix(message, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(message, "INVALID_PASSWORD"),
		strings.HasPrefix(message, "INVALID_LOGIN_CREDENTIALS"),
		strings.HasPrefix(message, "USER_DISABLED"):
		return fmt.Errorf("%s: %w", message, ErrInvalidCredentials)
	case strings.HasPrefix(message, "TOO_MANY_ATTEMPTS_TRY_LATER"):
		return fmt.Errorf("%s: %w", message, ErrUnavailable)
	default:
		return fmt.Errorf("%s: %w", message, ErrInvalidCredentials)
	}
}

// SignUp creates a new identity with the given credential. Used when an admin
// pre-provisions a staff member; the initial password is a throwaway.
func (p *FirebaseProvider) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		EmailVerified(false)

	record, err := p.authClient.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, fmt.Errorf("email %s: %w", email, ErrEmailAlreadyExists)
		}
		p.logger.Error("Failed to create identity", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("create user: %w", err)
	}
	return recordToIdentity(record), nil
}

// GetByEmail looks up an identity record by email.
func (p *FirebaseProvider) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	record, err := p.authClient.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, fmt.Errorf("email %s: %w", email, ErrUserNotFound)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return recordToIdentity(record), nil
}

// SetPassword replaces the credential of the target identity using the
// service account. The caller is never authenticated as the target here.
func (p *FirebaseProvider) SetPassword(ctx context.Context, uid, newPassword string) error {
	params := (&auth.UserToUpdate{}).Password(newPassword)
	if _, err := p.authClient.UpdateUser(ctx, uid, params); err != nil {
		if auth.IsUserNotFound(err) {
			return fmt.Errorf("uid %s: %w", uid, ErrUserNotFound)
		}
		p.logger.Error("Failed to set password", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("update user password: %w", err)
	}
	return nil
}

// ResendVerificationEmail generates a fresh email-verification link. Delivery
// is handled by the mail pipeline outside this service; the link is logged at
// debug level only.
func (p *FirebaseProvider) ResendVerificationEmail(ctx context.Context, email string) error {
	link, err := p.authClient.EmailVerificationLink(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return fmt.Errorf("email %s: %w", email, ErrUserNotFound)
		}
		p.logger.Error("Failed to generate email verification link", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("email verification link: %w", err)
	}
	p.logger.Debug("Email verification link generated", zap.String("email", email), zap.String("link", link))
	return nil
}

// SignOut revokes all refresh tokens for the identity.
func (p *FirebaseProvider) SignOut(ctx context.Context, uid string) error {
	if err := p.authClient.RevokeRefreshTokens(ctx, uid); err != nil {
		p.logger.Error("Failed to revoke refresh tokens", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	p.logger.Info("Revoked refresh tokens for identity", zap.String("uid", uid))
	return nil
}

// VerifyIDToken verifies a Firebase ID token and returns the claims this
// application cares about.
func (p *FirebaseProvider) VerifyIDToken(ctx context.Context, idToken string) (*Claims, error) {
	if idToken == "" {
		return nil, fmt.Errorf("ID token must not be empty")
	}

	token, err := p.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		p.logger.Warn("Firebase ID token verification failed", zap.Error(err))
		return nil, fmt.Errorf("failed to verify Firebase ID token: %w", err)
	}

	claims := &Claims{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		claims.Email = email
	}
	return claims, nil
}

func recordToIdentity(record *auth.UserRecord) *Identity {
	return &Identity{
		UID:           record.UID,
		Email:         record.Email,
		EmailVerified: record.EmailVerified,
		Disabled:      record.Disabled,
	}
}

// File: internal/identity/provider.go
package identity

import (
	"context"
	"errors"
	"time"
)

// Errors returned by Provider implementations. Implementations wrap these so
// errors.Is matching works while the provider-supplied message stays available
// verbatim through err.Error().
var (
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrEmailNotVerified   = errors.New("identity: email not verified")
	ErrEmailAlreadyExists = errors.New("identity: email already registered")
	ErrUserNotFound       = errors.New("identity: user not found")
	ErrUnavailable        = errors.New("identity: service unavailable")
)

// Identity is the externally-managed authentication record. The provider owns
// its credential; this application only ever reads the UID/email pair and the
// email-verified flag.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Disabled      bool
}

// Session is the result of a successful password sign-in.
type Session struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Claims are the decoded claims of a verified ID token.
type Claims struct {
	UID   string
	Email string
}

// Provider is the external identity service consumed as an opaque
// collaborator. SetPassword is the privileged variant used by the
// company-join side-channel: the acting caller holds no session for the
// target identity, so the operation must run with service credentials.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Identity, error)
	GetByEmail(ctx context.Context, email string) (*Identity, error)
	SetPassword(ctx context.Context, uid, newPassword string) error
	ResendVerificationEmail(ctx context.Context, email string) error
	SignOut(ctx context.Context, uid string) error
	VerifyIDToken(ctx context.Context, idToken string) (*Claims, error)
}

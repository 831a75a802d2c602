// File: internal/join/model.go
package join

import (
	"github.com/google/uuid"
)

// State is the position inside the staff activation side-channel. The flow
// only ever moves forward: code, then email, then password, then activated.
type State string

const (
	StateAwaitingCode     State = "awaiting_code"
	StateAwaitingEmail    State = "awaiting_email"
	StateAwaitingPassword State = "awaiting_password"
	StateActivated        State = "activated"
)

// Session is the server-side record of one activation attempt, keyed by an
// opaque token handed to the client after the first step.
type Session struct {
	State       State
	CompanyID   uuid.UUID
	CompanyName string
	ProfileID   uuid.UUID
	IdentityUID string
	Email       string
}

type SubmitCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

type SubmitEmailRequest struct {
	Token string `json:"token" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type SubmitPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// StepResponse tells the client which step comes next. Token is issued on the
// first step and echoed back on every subsequent request.
type StepResponse struct {
	Token       string `json:"token"`
	State       State  `json:"state"`
	CompanyName string `json:"company_name,omitempty"`
}

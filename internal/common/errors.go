// File: internal/common/errors.go
package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Severity classifies how a failure should be presented to the user.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityDanger  = "danger"
)

// APIError represents a standard structure for API errors.
type APIError struct {
	StatusCode int         `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Severity   string      `json:"severity"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("APIError: StatusCode=%d, Code=%s, Message=%s", e.StatusCode, e.Code, e.Message)
}

func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message, Severity: SeverityDanger}
}

// WithDetails returns a copy of the error carrying extra detail. The copy
// matters: the package-level sentinel errors below are shared.
func (e *APIError) WithDetails(details interface{}) *APIError {
	clone := *e
	clone.Details = details
	return &clone
}

// WithMessage returns a copy with the message replaced, used to surface
// provider-supplied text verbatim.
func (e *APIError) WithMessage(message string) *APIError {
	clone := *e
	clone.Message = message
	return &clone
}

func (e *APIError) WithSeverity(severity string) *APIError {
	clone := *e
	clone.Severity = severity
	return &clone
}

var (
	ErrBadRequest          = NewAPIError(http.StatusBadRequest, "BAD_REQUEST", "The request is invalid.")
	ErrUnauthorized        = NewAPIError(http.StatusUnauthorized, "UNAUTHORIZED", "Authentication is required and has failed or has not yet been provided.")
	ErrForbidden           = NewAPIError(http.StatusForbidden, "FORBIDDEN", "You do not have permission to access this resource.")
	ErrNotFound            = NewAPIError(http.StatusNotFound, "NOT_FOUND", "The requested resource could not be found.")
	ErrConflict            = NewAPIError(http.StatusConflict, "CONFLICT", "A conflict occurred with the current state of the resource.")
	ErrUnprocessableEntity = NewAPIError(http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", "The request was well-formed but was unable to be followed due to semantic errors.")
	ErrInternalServer      = NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred on the server.")
	ErrServiceUnavailable  = NewAPIError(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "The server is currently unable to handle the request.")
)

// Account-activation and sign-in workflow errors. Every remote-call failure in
// the workflow is converted into one of these plus a user-facing message; none
// propagate as bare errors to the HTTP layer.
var (
	ErrInvalidCredentials       = NewAPIError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password.")
	ErrNeedsEmailVerification   = &APIError{StatusCode: http.StatusForbidden, Code: "NEEDS_EMAIL_VERIFICATION", Message: "Your email address has not been confirmed yet.", Severity: SeverityWarning}
	ErrProfileBootstrapFailed   = NewAPIError(http.StatusInternalServerError, "PROFILE_BOOTSTRAP_FAILED", "Your profile could not be prepared. Please sign in again.")
	ErrIncorrectCode            = &APIError{StatusCode: http.StatusUnprocessableEntity, Code: "INCORRECT_CODE", Message: "The verification code is incorrect.", Severity: SeverityWarning}
	ErrInvalidCompanyCode       = &APIError{StatusCode: http.StatusUnprocessableEntity, Code: "INVALID_COMPANY_CODE", Message: "No agency was found for this code.", Severity: SeverityWarning}
	ErrInvalidOrIneligibleEmail = &APIError{StatusCode: http.StatusUnprocessableEntity, Code: "INVALID_OR_INELIGIBLE_EMAIL", Message: "No invitation was found for this email address.", Severity: SeverityWarning}
	ErrAccountAlreadyActive     = NewAPIError(http.StatusConflict, "ACCOUNT_ALREADY_ACTIVE", "This account has already been activated. Please contact your administrator.")
	ErrPasswordMismatch         = &APIError{StatusCode: http.StatusUnprocessableEntity, Code: "PASSWORD_MISMATCH", Message: "Password and confirmation do not match.", Severity: SeverityWarning}
	ErrPasswordTooShort         = &APIError{StatusCode: http.StatusUnprocessableEntity, Code: "PASSWORD_TOO_SHORT", Message: "The password must be at least 6 characters long.", Severity: SeverityWarning}
)

func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Is makes APIError sentinels usable with errors.Is: two APIErrors match when
// their codes match, regardless of details or message overrides.
func (e *APIError) Is(target error) bool {
	var other *APIError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

func NewValidationAPIError(details interface{}) *APIError {
	return &APIError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       "VALIDATION_ERROR",
		Message:    "Input validation failed.",
		Severity:   SeverityWarning,
		Details:    details,
	}
}

// FormatValidationErrors converts validator.ValidationErrors into a map.
func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMap := make(map[string]string)
	for _, e := range errs {
		field := e.Field()
		var message string
		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("The %s field is required.", strings.ToLower(field))
		case "email":
			message = fmt.Sprintf("The %s field must be a valid email address.", strings.ToLower(field))
		case "min":
			message = fmt.Sprintf("The %s field must be at least %s characters long.", strings.ToLower(field), e.Param())
		case "max":
			message = fmt.Sprintf("The %s field may not be greater than %s characters.", strings.ToLower(field), e.Param())
		case "len":
			message = fmt.Sprintf("The %s field must be exactly %s characters long.", strings.ToLower(field), e.Param())
		case "numeric":
			message = fmt.Sprintf("The %s field may only contain digits.", strings.ToLower(field))
		case "oneof":
			message = fmt.Sprintf("The %s field must be one of the following values: %s.", strings.ToLower(field), e.Param())
		case "uuid":
			message = fmt.Sprintf("The %s field must be a valid UUID.", strings.ToLower(field))
		case "datetime":
			message = fmt.Sprintf("The %s field must be a valid datetime in the format %s.", strings.ToLower(field), e.Param())
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag.", field, e.Tag())
		}
		errorMap[field] = message
	}
	return errorMap
}

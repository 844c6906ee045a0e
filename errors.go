package auth

import "errors"

// Error codes returned alongside user-facing messages
const (
	ErrCodeMissingField     = "missing_field"
	ErrCodeInvalidEmail     = "invalid_email"
	ErrCodeInvalidUsername  = "invalid_username"
	ErrCodeWeakPassword     = "weak_password"
	ErrCodeEmailExists      = "email_exists"
	ErrCodeUsernameTaken    = "username_taken"
	ErrCodeInvalidCreds     = "invalid_credentials"
	ErrCodeSignupFailed     = "signup_failed"
	ErrCodeNotAuthenticated = "not_authenticated"
)

// Fixed user-facing messages for the two known conflict cases
const (
	MsgEmailExists   = "An account with this email already exists. Please sign in instead."
	MsgUsernameTaken = "Username already taken"
)

// AuthError is a structured, user-correctable error. Registration never
// raises: every failure is normalized into one of these.
type AuthError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *AuthError) Error() string {
	return e.Message
}

// NewAuthError creates an AuthError with the given code, message and field
func NewAuthError(code, message, field string) *AuthError {
	return &AuthError{Code: code, Message: message, Field: field}
}

// Sentinel errors for the raising paths (password change, OTP). Callers map
// these to HTTP statuses.
var (
	ErrNotAuthenticated   = errors.New("you must be signed in to change your password")
	ErrNoPassword         = errors.New("no password found for this account")
	ErrIncorrectPassword  = errors.New("current password is incorrect")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrEmailNotRegistered = errors.New("Email not registered. Please sign up first.")
	ErrInvalidOTP         = errors.New("invalid verification code")
	ErrExpiredOTP         = errors.New("verification code expired")
	ErrTooManyAttempts    = errors.New("too many verification attempts")
)

// Store-level sentinels. Stores return these from the insert itself when a
// uniqueness constraint is hit, so handlers never depend on the advisory
// pre-checks alone.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrAccountNotFound      = errors.New("account not found")
	ErrVerificationNotFound = errors.New("verification not found")
	ErrEmailTaken           = errors.New("email already exists")
	ErrUsernameExists       = errors.New("username already exists")
)

package client

import (
	"github.com/appertide/auth"
)

// FormMode selects which flow a form submit runs
type FormMode int

const (
	ModeSignIn FormMode = iota
	ModeSignUp
)

// AuthForm drives a combined sign-in/sign-up flow against an AuthClient.
// It holds the field values and error state a UI would render. In sign-up
// mode the username is validated as it is typed, and a submit registers
// the account and then signs in with the same credentials.
type AuthForm struct {
	client *AuthClient

	Mode     FormMode
	Email    string
	Username string
	Password string

	Loading       bool
	Error         string
	UsernameError string
}

// NewAuthForm creates a form bound to a client, starting in sign-in mode
func NewAuthForm(client *AuthClient) *AuthForm {
	return &AuthForm{client: client, Mode: ModeSignIn}
}

// SetMode switches between sign-in and sign-up and clears any errors
func (f *AuthForm) SetMode(mode FormMode) {
	f.Mode = mode
	f.Error = ""
	f.UsernameError = ""
}

// SetUsername updates the username field. In sign-up mode a non-empty
// value is validated immediately so the error shows while typing.
func (f *AuthForm) SetUsername(value string) {
	f.Username = value
	f.UsernameError = ""

	if f.Mode == ModeSignUp && len(value) > 0 {
		validation := auth.ValidateUsername(value)
		if !validation.Valid {
			f.UsernameError = validation.Err
		}
	}
}

// Submit runs the flow for the current mode. It returns the signed-in user
// on success and nil when any step failed; the failure message lands in
// Error or UsernameError rather than an error return, matching how a UI
// consumes it.
func (f *AuthForm) Submit() *UserInfo {
	f.Error = ""
	f.UsernameError = ""
	f.Loading = true
	defer func() { f.Loading = false }()

	if f.Mode == ModeSignIn {
		user, err := f.client.SignIn(f.Email, f.Password)
		if err != nil {
			f.Error = errMessage(err)
			return nil
		}
		return user
	}

	validation := auth.ValidateUsername(f.Username)
	if !validation.Valid {
		f.UsernameError = validation.Err
		return nil
	}

	if _, err := f.client.SignUp(f.Email, validation.Sanitized, f.Password); err != nil {
		f.Error = errMessage(err)
		return nil
	}

	// registration does not establish a session; sign in right after
	user, err := f.client.SignIn(f.Email, f.Password)
	if err != nil {
		f.Error = errMessage(err)
		return nil
	}
	return user
}

func errMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Something went wrong"
}

package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// SignUpData is the success payload of a signup
type SignUpData struct {
	User *User `json:"user"`
}

// SignUpWithEmail registers a new email/password account. The raw username
// is validated and sanitized first; the sanitized value becomes both the
// username and the display name. Every failure comes back as a structured
// AuthError, never a panic: conflicts map to the two fixed user-facing
// messages, anything else gets a generic fallback.
//
// The email/username lookups before the insert are only a fast path for
// friendly errors. Two concurrent signups can both pass them; the store's
// uniqueness constraints are the source of truth and their violations are
// mapped to the same messages below.
func (a *Auth) SignUpWithEmail(email, password, username string) (*SignUpData, *AuthError) {
	validation := ValidateUsername(username)
	if !validation.Valid {
		return nil, NewAuthError(ErrCodeInvalidUsername, validation.Err, "username")
	}

	if authErr := validateSignupInput(email, password); authErr != nil {
		return nil, authErr
	}

	if _, err := a.Users.GetUserByEmail(email); err == nil {
		return nil, NewAuthError(ErrCodeEmailExists, MsgEmailExists, "email")
	}

	if _, err := a.Users.GetUserByUsername(validation.Sanitized); err == nil {
		return nil, NewAuthError(ErrCodeUsernameTaken, MsgUsernameTaken, "username")
	}

	user, err := a.createUser(email, password, validation.Sanitized)
	if err != nil {
		log.Println("error creating user: ", err)
		switch {
		case errors.Is(err, ErrUsernameExists):
			return nil, NewAuthError(ErrCodeUsernameTaken, MsgUsernameTaken, "username")
		// the substring match catches backends that report the email
		// conflict without wrapping the sentinel
		case errors.Is(err, ErrEmailTaken) || strings.Contains(err.Error(), "already exists"):
			return nil, NewAuthError(ErrCodeEmailExists, MsgEmailExists, "email")
		default:
			return nil, NewAuthError(ErrCodeSignupFailed, "An error occurred during signup. Please try again.", "")
		}
	}

	if a.OTP.SendVerificationOnSignUp && a.EmailSender != nil && a.Verifications != nil {
		if err := a.SendVerificationOTP(user.Email); err != nil {
			log.Println("error sending verification code: ", err)
		}
	}

	return &SignUpData{User: user}, nil
}

// createUser inserts the user row and its credential record. Uniqueness is
// enforced by the store on the insert itself.
func (a *Auth) createUser(email, password, username string) (*User, error) {
	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &User{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  username,
		Name:      username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.Users.CreateUser(user); err != nil {
		return nil, err
	}

	account := &Account{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		ProviderID: ProviderCredential,
		Password:   &passwordHash,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := a.Accounts.CreateAccount(account); err != nil {
		return nil, fmt.Errorf("failed to create credential record: %w", err)
	}

	log.Printf("Created user %s (%s)", user.ID, user.Username)
	return user, nil
}

// validateSignupInput applies the email and password policy
func validateSignupInput(email, password string) *AuthError {
	if email == "" {
		return NewAuthError(ErrCodeMissingField, "Email is required", "email")
	}
	if !emailPattern.MatchString(email) {
		return NewAuthError(ErrCodeInvalidEmail, "Invalid email format", "email")
	}
	if password == "" {
		return NewAuthError(ErrCodeMissingField, "Password is required", "password")
	}
	if len(password) < MinPasswordLength {
		return NewAuthError(ErrCodeWeakPassword, fmt.Sprintf("Password must be at least %d characters", MinPasswordLength), "password")
	}
	return nil
}

// HandleSignUp processes user registration. The response mirrors the
// SignUpWithEmail contract: 200 with {data} on success, 400 with an
// {error: {code, message, field}} envelope otherwise. No session is established here; clients
// sign in with the same credentials afterwards.
func (a *Auth) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	email, password, username, parseErr := parseCredentialsForm(r, "username")
	if parseErr != nil {
		a.writeAuthError(w, http.StatusBadRequest, parseErr)
		return
	}

	data, authErr := a.SignUpWithEmail(email, password, username)
	if authErr != nil {
		a.writeAuthError(w, http.StatusBadRequest, authErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"data":  data,
		"error": nil,
	})
}

// writeAuthError sends the shared {"error": {...}} envelope all handlers use
func (a *Auth) writeAuthError(w http.ResponseWriter, status int, authErr *AuthError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"error": authErr})
}

// parseCredentialsForm reads email/password (and optionally a third field)
// from either a JSON body or an urlencoded form
func parseCredentialsForm(r *http.Request, extraField string) (email, password, extra string, authErr *AuthError) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return "", "", "", NewAuthError("parse_error", "Error parsing form", "")
		}
		email = r.FormValue("email")
		password = r.FormValue("password")
		if extraField != "" {
			extra = r.FormValue(extraField)
		}
	} else {
		var data map[string]any
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil || data == nil {
			return "", "", "", NewAuthError("parse_error", "Invalid post body", "")
		}
		if e, ok := data["email"].(string); ok {
			email = e
		}
		if p, ok := data["password"].(string); ok {
			password = p
		}
		if extraField != "" {
			if x, ok := data[extraField].(string); ok {
				extra = x
			}
		}
	}

	return email, password, extra, nil
}

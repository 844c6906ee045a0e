package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// SignInWithEmail validates an email/password pair and returns the user.
// All failure modes collapse into ErrInvalidCredentials so callers cannot
// probe which emails are registered; the one exception is
// ErrEmailNotVerified when verification is required before login.
func (a *Auth) SignInWithEmail(email, password string) (*User, error) {
	user, err := a.Users.GetUserByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	account, err := a.Accounts.GetAccountByUser(user.ID, ProviderCredential)
	if err != nil || account.Password == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*account.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if a.RequireEmailVerification && !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return user, nil
}

// HandleSignIn authenticates the caller and establishes a session
func (a *Auth) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	email, password, _, parseErr := parseCredentialsForm(r, "")
	if parseErr != nil {
		a.writeAuthError(w, http.StatusBadRequest, parseErr)
		return
	}
	if email == "" || password == "" {
		a.writeAuthError(w, http.StatusBadRequest, NewAuthError(ErrCodeMissingField, "Email and password required", "email"))
		return
	}

	user, err := a.SignInWithEmail(email, password)
	if err != nil {
		log.Println("error validating user: ", err)
		a.writeAuthError(w, http.StatusUnauthorized, NewAuthError(ErrCodeInvalidCreds, err.Error(), ""))
		return
	}

	if a.Session != nil {
		// rotate the session id on privilege change
		if err := a.Session.RenewToken(r.Context()); err != nil {
			log.Println("error renewing session token: ", err)
		}
	}
	a.setLoggedInUser(user, w, r)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"user": user})
}

// HandleSignOut clears the caller's session and auth cookies
func (a *Auth) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	a.setLoggedInUser(nil, w, r)

	toUrl := r.URL.Query().Get("to")
	if toUrl == "" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	} else {
		http.Redirect(w, r, toUrl, http.StatusFound)
	}
}

// HandleMe returns the logged in user, resolved from the request session
func (a *Auth) HandleMe(w http.ResponseWriter, r *http.Request) {
	userId := a.Middleware.GetLoggedInUserId(r)
	if userId == "" {
		a.writeAuthError(w, http.StatusUnauthorized, NewAuthError(ErrCodeNotAuthenticated, "Not authenticated", ""))
		return
	}

	user, err := a.Users.GetUserByID(userId)
	if err != nil {
		a.writeAuthError(w, http.StatusUnauthorized, NewAuthError(ErrCodeNotAuthenticated, "User not found", ""))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"user": user})
}

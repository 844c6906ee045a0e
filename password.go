package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// ChangePassword rotates the password of the logged in caller. The session
// is resolved from the request; without one the call fails with
// ErrNotAuthenticated. The current password must match the stored hash and
// the account must have a password set at all.
//
// The verification read and the overwrite are not one transaction. The
// overwrite itself is a single store call, but a concurrent change between
// compare and write last-writer-wins.
func (a *Auth) ChangePassword(r *http.Request, currentPassword, newPassword string) error {
	userId := a.Middleware.GetLoggedInUserId(r)
	if userId == "" {
		return ErrNotAuthenticated
	}

	account, err := a.Accounts.GetAccountByUser(userId, ProviderCredential)
	if err != nil || account.Password == nil {
		return ErrNoPassword
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*account.Password), []byte(currentPassword)); err != nil {
		return ErrIncorrectPassword
	}

	newHash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := a.Accounts.UpdatePassword(userId, ProviderCredential, newHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	log.Printf("Password updated for user %s", userId)
	return nil
}

// HandleChangePassword maps ChangePassword errors onto HTTP statuses:
// 401 without a session, 400 for the user-correctable failures, 500
// otherwise. Success returns {"success": true}.
func (a *Auth) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.writeAuthError(w, http.StatusBadRequest, NewAuthError("parse_error", "Invalid request body", ""))
		return
	}

	if err := a.ChangePassword(r, body.CurrentPassword, body.NewPassword); err != nil {
		status := http.StatusInternalServerError
		code := ""
		switch {
		case errors.Is(err, ErrNotAuthenticated):
			status = http.StatusUnauthorized
			code = ErrCodeNotAuthenticated
		case errors.Is(err, ErrNoPassword), errors.Is(err, ErrIncorrectPassword):
			status = http.StatusBadRequest
		}
		a.writeAuthError(w, status, NewAuthError(code, err.Error(), ""))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}

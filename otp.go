package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"
)

// SendVerificationOTP generates a code for the email and dispatches it
// through the configured sender. With OTP signup disabled, an email with no
// user row is rejected before anything is generated or sent. Delivery
// errors propagate to the caller unretried.
func (a *Auth) SendVerificationOTP(email string) error {
	if a.EmailSender == nil || a.Verifications == nil {
		return fmt.Errorf("email verification not configured")
	}

	if a.OTP.DisableSignUp {
		if _, err := a.Users.GetUserByEmail(email); err != nil {
			log.Println("email not registered: ", email)
			return ErrEmailNotRegistered
		}
	}

	code, err := GenerateOTP()
	if err != nil {
		return err
	}

	if _, err := a.Verifications.CreateVerification(email, code, a.OTP.Expiry); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	log.Printf("Sending verification code to %s", email)
	if err := a.EmailSender.SendVerificationOTP(email, code); err != nil {
		log.Println("failed to send email: ", err)
		return err
	}
	return nil
}

// VerifyEmailOTP checks a code against the pending verification for the
// email and marks the user's email verified. Codes are single use and
// attempt limited.
func (a *Auth) VerifyEmailOTP(email, code string) error {
	verification, err := a.Verifications.GetVerification(email)
	if err != nil {
		return ErrInvalidOTP
	}

	if verification.IsExpired() {
		_ = a.Verifications.DeleteVerification(email)
		return ErrExpiredOTP
	}

	if verification.Attempts >= OTPMaxAttempts {
		_ = a.Verifications.DeleteVerification(email)
		return ErrTooManyAttempts
	}

	if subtle.ConstantTimeCompare([]byte(verification.Code), []byte(code)) != 1 {
		if err := a.Verifications.IncrementAttempts(email); err != nil {
			log.Println("error recording verification attempt: ", err)
		}
		return ErrInvalidOTP
	}

	if err := a.Verifications.DeleteVerification(email); err != nil {
		log.Printf("Warning: failed to delete verification for %s: %v", email, err)
	}

	user, err := a.Users.GetUserByEmail(email)
	if err != nil {
		return ErrEmailNotRegistered
	}
	if !user.EmailVerified {
		user.EmailVerified = true
		user.UpdatedAt = time.Now()
		if err := a.Users.SaveUser(user); err != nil {
			return fmt.Errorf("failed to verify email: %w", err)
		}
	}

	log.Printf("Email verified for user %s", user.ID)
	return nil
}

// HandleSendOTP handles code delivery requests
func (a *Auth) HandleSendOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		a.writeAuthError(w, http.StatusBadRequest, NewAuthError(ErrCodeMissingField, "Email required", "email"))
		return
	}

	if err := a.SendVerificationOTP(body.Email); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrEmailNotRegistered) {
			status = http.StatusBadRequest
		}
		a.writeAuthError(w, status, NewAuthError("", err.Error(), ""))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}

// HandleVerifyOTP handles code verification requests
func (a *Auth) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.OTP == "" {
		a.writeAuthError(w, http.StatusBadRequest, NewAuthError(ErrCodeMissingField, "Email and code required", ""))
		return
	}

	if err := a.VerifyEmailOTP(body.Email, body.OTP); err != nil {
		a.writeAuthError(w, http.StatusBadRequest, NewAuthError("", err.Error(), ""))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}

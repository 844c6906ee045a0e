package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// OTP parameters. Codes are short-lived and single use.
const (
	OTPLength      = 6
	OTPExpiry      = 5 * time.Minute
	OTPMaxAttempts = 3
)

// Verification is an ephemeral email verification code. At most one row
// exists per email; resending replaces it.
type Verification struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired checks if the code has expired
func (v *Verification) IsExpired() bool {
	return time.Now().After(v.ExpiresAt)
}

// VerificationStore manages pending verification codes
type VerificationStore interface {
	// CreateVerification stores a code for an email, replacing any pending one
	CreateVerification(email, code string, expiry time.Duration) (*Verification, error)

	// GetVerification retrieves the pending code for an email, or
	// ErrVerificationNotFound
	GetVerification(email string) (*Verification, error)

	// DeleteVerification removes the pending code for an email
	DeleteVerification(email string) error

	// IncrementAttempts records a failed verification attempt
	IncrementAttempts(email string) error
}

// GenerateOTP generates a cryptographically secure numeric code
func GenerateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < OTPLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", OTPLength, n), nil
}

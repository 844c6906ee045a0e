package stores

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/appertide/auth"
)

// FSVerificationStore stores pending verification codes as JSON files, one
// per email. Creating a code replaces any pending one.
type FSVerificationStore struct {
	StoragePath string
}

func NewFSVerificationStore(storagePath string) *FSVerificationStore {
	return &FSVerificationStore{StoragePath: storagePath}
}

func (s *FSVerificationStore) verificationPath(email string) string {
	return filepath.Join(s.StoragePath, "verifications", escapeKey(email)+".json")
}

func (s *FSVerificationStore) CreateVerification(email, code string, expiry time.Duration) (*auth.Verification, error) {
	now := time.Now()
	verification := &auth.Verification{
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(expiry),
	}
	if err := s.writeVerification(verification); err != nil {
		return nil, err
	}
	return verification, nil
}

func (s *FSVerificationStore) GetVerification(email string) (*auth.Verification, error) {
	data, err := os.ReadFile(s.verificationPath(email))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, auth.ErrVerificationNotFound
		}
		return nil, err
	}

	var verification auth.Verification
	if err := json.Unmarshal(data, &verification); err != nil {
		return nil, err
	}
	return &verification, nil
}

func (s *FSVerificationStore) DeleteVerification(email string) error {
	err := os.Remove(s.verificationPath(email))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FSVerificationStore) IncrementAttempts(email string) error {
	verification, err := s.GetVerification(email)
	if err != nil {
		return err
	}
	verification.Attempts++
	return s.writeVerification(verification)
}

func (s *FSVerificationStore) writeVerification(verification *auth.Verification) error {
	data, err := json.MarshalIndent(verification, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomicFile(s.verificationPath(verification.Email), data)
}

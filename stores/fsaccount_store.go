package stores

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/appertide/auth"
)

// fsAccount carries the password hash explicitly since auth.Account keeps
// it out of its JSON form
type fsAccount struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ProviderID string    `json:"provider_id"`
	Password   *string   `json:"password"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FSAccountStore stores credential records as JSON files keyed by user and
// provider
type FSAccountStore struct {
	StoragePath string
}

func NewFSAccountStore(storagePath string) *FSAccountStore {
	return &FSAccountStore{StoragePath: storagePath}
}

func (s *FSAccountStore) accountPath(userID, providerID string) string {
	return filepath.Join(s.StoragePath, "accounts", escapeKey(userID)+"_"+escapeKey(providerID)+".json")
}

func (s *FSAccountStore) CreateAccount(account *auth.Account) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = account.CreatedAt
	}
	return s.writeAccount(account)
}

func (s *FSAccountStore) GetAccountByUser(userID, providerID string) (*auth.Account, error) {
	data, err := os.ReadFile(s.accountPath(userID, providerID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}

	var stored fsAccount
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	return &auth.Account{
		ID:         stored.ID,
		UserID:     stored.UserID,
		ProviderID: stored.ProviderID,
		Password:   stored.Password,
		CreatedAt:  stored.CreatedAt,
		UpdatedAt:  stored.UpdatedAt,
	}, nil
}

func (s *FSAccountStore) UpdatePassword(userID, providerID, passwordHash string) error {
	account, err := s.GetAccountByUser(userID, providerID)
	if err != nil {
		return err
	}
	account.Password = &passwordHash
	account.UpdatedAt = time.Now()
	return s.writeAccount(account)
}

func (s *FSAccountStore) writeAccount(account *auth.Account) error {
	stored := fsAccount{
		ID:         account.ID,
		UserID:     account.UserID,
		ProviderID: account.ProviderID,
		Password:   account.Password,
		CreatedAt:  account.CreatedAt,
		UpdatedAt:  account.UpdatedAt,
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomicFile(s.accountPath(account.UserID, account.ProviderID), data)
}

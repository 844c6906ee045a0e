package stores

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/appertide/auth"
)

// FSUserStore stores users as JSON files, with index files mapping email
// and username to user id. Uniqueness here is check-then-write without
// locking; the relational backend is the one with real constraints.
type FSUserStore struct {
	StoragePath string
}

func NewFSUserStore(storagePath string) *FSUserStore {
	return &FSUserStore{StoragePath: storagePath}
}

func (s *FSUserStore) userPath(id string) string {
	return filepath.Join(s.StoragePath, "users", id+".json")
}

func (s *FSUserStore) emailIndexPath(email string) string {
	return filepath.Join(s.StoragePath, "users_by_email", escapeKey(email)+".json")
}

func (s *FSUserStore) usernameIndexPath(username string) string {
	return filepath.Join(s.StoragePath, "users_by_username", escapeKey(username)+".json")
}

type userIndexEntry struct {
	UserID string `json:"user_id"`
}

func (s *FSUserStore) CreateUser(user *auth.User) error {
	if _, err := os.Stat(s.emailIndexPath(user.Email)); err == nil {
		return auth.ErrEmailTaken
	}
	if _, err := os.Stat(s.usernameIndexPath(user.Username)); err == nil {
		return auth.ErrUsernameExists
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	if err := s.writeUser(user); err != nil {
		return err
	}

	entry, err := json.Marshal(userIndexEntry{UserID: user.ID})
	if err != nil {
		return err
	}
	if err := writeAtomicFile(s.emailIndexPath(user.Email), entry); err != nil {
		return err
	}
	return writeAtomicFile(s.usernameIndexPath(user.Username), entry)
}

func (s *FSUserStore) GetUserByID(id string) (*auth.User, error) {
	data, err := os.ReadFile(s.userPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}

	var user auth.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *FSUserStore) GetUserByEmail(email string) (*auth.User, error) {
	return s.getByIndex(s.emailIndexPath(email))
}

func (s *FSUserStore) GetUserByUsername(username string) (*auth.User, error) {
	return s.getByIndex(s.usernameIndexPath(username))
}

func (s *FSUserStore) getByIndex(indexPath string) (*auth.User, error) {
	data, err := os.ReadFile(indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}

	var entry userIndexEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return s.GetUserByID(entry.UserID)
}

func (s *FSUserStore) SaveUser(user *auth.User) error {
	if _, err := os.Stat(s.userPath(user.ID)); err != nil {
		if os.IsNotExist(err) {
			return auth.ErrUserNotFound
		}
		return err
	}
	user.UpdatedAt = time.Now()
	return s.writeUser(user)
}

func (s *FSUserStore) writeUser(user *auth.User) error {
	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomicFile(s.userPath(user.ID), data)
}

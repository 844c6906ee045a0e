package gorm

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/appertide/auth"
)

// AutoMigrate runs database migrations for all auth tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&AccountModel{},
		&VerificationModel{},
	)
}

// UserStore implements auth.UserStore using GORM
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) CreateUser(user *auth.User) error {
	err := s.db.Create(UserToModel(user)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Which constraint fired: re-query to tell email from username
		var existing UserModel
		if s.db.First(&existing, "email = ?", user.Email).Error == nil {
			return auth.ErrEmailTaken
		}
		return auth.ErrUsernameExists
	}
	return err
}

func (s *UserStore) GetUserByID(id string) (*auth.User, error) {
	return s.getUser("id = ?", id)
}

func (s *UserStore) GetUserByEmail(email string) (*auth.User, error) {
	return s.getUser("email = ?", email)
}

func (s *UserStore) GetUserByUsername(username string) (*auth.User, error) {
	return s.getUser("username = ?", username)
}

func (s *UserStore) getUser(query string, arg any) (*auth.User, error) {
	var model UserModel
	if err := s.db.First(&model, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return model.ToUser(), nil
}

func (s *UserStore) SaveUser(user *auth.User) error {
	return s.db.Save(UserToModel(user)).Error
}

// AccountStore implements auth.AccountStore using GORM
type AccountStore struct {
	db *gorm.DB
}

func NewAccountStore(db *gorm.DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) CreateAccount(account *auth.Account) error {
	return s.db.Create(AccountToModel(account)).Error
}

func (s *AccountStore) GetAccountByUser(userID, providerID string) (*auth.Account, error) {
	var model AccountModel
	err := s.db.First(&model, "user_id = ? AND provider_id = ?", userID, providerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}
	return model.ToAccount(), nil
}

func (s *AccountStore) UpdatePassword(userID, providerID, passwordHash string) error {
	return s.db.Model(&AccountModel{}).
		Where("user_id = ? AND provider_id = ?", userID, providerID).
		Updates(map[string]any{
			"password":   passwordHash,
			"updated_at": time.Now(),
		}).Error
}

// VerificationStore implements auth.VerificationStore using GORM
type VerificationStore struct {
	db *gorm.DB
}

func NewVerificationStore(db *gorm.DB) *VerificationStore {
	return &VerificationStore{db: db}
}

func (s *VerificationStore) CreateVerification(email, code string, expiry time.Duration) (*auth.Verification, error) {
	now := time.Now()
	model := &VerificationModel{
		Email:     email,
		Code:      code,
		Attempts:  0,
		CreatedAt: now,
		ExpiresAt: now.Add(expiry),
	}

	// Resending replaces the pending code and resets the attempt count
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "attempts", "created_at", "expires_at"}),
	}).Create(model).Error
	if err != nil {
		return nil, err
	}
	return model.ToVerification(), nil
}

func (s *VerificationStore) GetVerification(email string) (*auth.Verification, error) {
	var model VerificationModel
	if err := s.db.First(&model, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrVerificationNotFound
		}
		return nil, err
	}
	return model.ToVerification(), nil
}

func (s *VerificationStore) DeleteVerification(email string) error {
	return s.db.Delete(&VerificationModel{}, "email = ?", email).Error
}

func (s *VerificationStore) IncrementAttempts(email string) error {
	return s.db.Model(&VerificationModel{}).
		Where("email = ?", email).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

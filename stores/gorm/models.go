package gorm

import (
	"time"

	"github.com/appertide/auth"
)

// UserModel is the GORM model for users
type UserModel struct {
	ID            string    `gorm:"primaryKey;size:64"`
	Email         string    `gorm:"size:255;uniqueIndex"`
	Username      string    `gorm:"size:64;uniqueIndex"`
	Name          string    `gorm:"size:255"`
	EmailVerified bool      `gorm:"default:false"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) ToUser() *auth.User {
	return &auth.User{
		ID:            m.ID,
		Email:         m.Email,
		Username:      m.Username,
		Name:          m.Name,
		EmailVerified: m.EmailVerified,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func UserToModel(u *auth.User) *UserModel {
	return &UserModel{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		Name:          u.Name,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// AccountModel is the GORM model for credential records. Password is
// nullable: OAuth-style accounts without a password keep it nil.
type AccountModel struct {
	ID         string    `gorm:"primaryKey;size:64"`
	UserID     string    `gorm:"size:64;uniqueIndex:idx_accounts_user_provider"`
	ProviderID string    `gorm:"size:32;uniqueIndex:idx_accounts_user_provider"`
	Password   *string   `gorm:"size:255"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (AccountModel) TableName() string {
	return "accounts"
}

func (m *AccountModel) ToAccount() *auth.Account {
	return &auth.Account{
		ID:         m.ID,
		UserID:     m.UserID,
		ProviderID: m.ProviderID,
		Password:   m.Password,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func AccountToModel(a *auth.Account) *AccountModel {
	return &AccountModel{
		ID:         a.ID,
		UserID:     a.UserID,
		ProviderID: a.ProviderID,
		Password:   a.Password,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// VerificationModel is the GORM model for pending verification codes
type VerificationModel struct {
	Email     string    `gorm:"primaryKey;size:255"`
	Code      string    `gorm:"size:16"`
	Attempts  int       `gorm:"default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	ExpiresAt time.Time `gorm:"index"`
}

func (VerificationModel) TableName() string {
	return "verifications"
}

func (m *VerificationModel) ToVerification() *auth.Verification {
	return &auth.Verification{
		Email:     m.Email,
		Code:      m.Code,
		Attempts:  m.Attempts,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
	}
}

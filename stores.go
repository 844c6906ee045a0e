package auth

import "time"

// ProviderCredential is the provider id for email/password accounts
const ProviderCredential = "credential"

// User is a registered account. Email and Username are each globally
// unique; the storage layer's constraints are the source of truth.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	Name          string    `json:"name"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Account is the per-provider credential record for a user. For the
// credential provider, Password holds the bcrypt hash; nil means the user
// has no password set (and cannot change one).
type Account struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ProviderID string    `json:"provider_id"`
	Password   *string   `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserStore manages user rows
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrEmailTaken or
	// ErrUsernameExists when a uniqueness constraint is violated.
	CreateUser(user *User) error

	// GetUserByID retrieves a user by id, or ErrUserNotFound
	GetUserByID(id string) (*User, error)

	// GetUserByEmail retrieves a user by email, or ErrUserNotFound
	GetUserByEmail(email string) (*User, error)

	// GetUserByUsername retrieves a user by canonical username, or ErrUserNotFound
	GetUserByUsername(username string) (*User, error)

	// SaveUser updates an existing user
	SaveUser(user *User) error
}

// AccountStore manages credential records
type AccountStore interface {
	// CreateAccount inserts a new credential record
	CreateAccount(account *Account) error

	// GetAccountByUser retrieves the credential record for a user and
	// provider, or ErrAccountNotFound
	GetAccountByUser(userID, providerID string) (*Account, error)

	// UpdatePassword overwrites the password hash and update timestamp of
	// the matching credential record
	UpdatePassword(userID, providerID, passwordHash string) error
}

// Package auth implements email/password authentication with unique
// usernames and email-OTP verification for a web application.
//
// The provider owns three kinds of rows: users (profile, unique email and
// username), accounts (per-provider credential records holding the bcrypt
// password hash), and verifications (short-lived email codes). Sessions are
// managed by scs and consumed through request lookups only.
//
// # Basic Usage
//
// Wire the stores, session manager and email sender into a provider:
//
//	sessions := scs.New()
//	a := auth.New(auth.Config{
//	    Users:         stores.NewFSUserStore(storagePath),
//	    Accounts:      stores.NewFSAccountStore(storagePath),
//	    Verifications: stores.NewFSVerificationStore(storagePath),
//	    Session:       sessions,
//	    EmailSender:   &auth.ConsoleEmailSender{},
//	    OTP: auth.OTPOptions{
//	        DisableSignUp:            true,
//	        SendVerificationOnSignUp: true,
//	    },
//	})
//	http.Handle("/auth/", http.StripPrefix("/auth", a.Handler()))
//
// Registration is a structured-result operation: SignUpWithEmail never
// panics and maps every failure, including uniqueness-constraint hits from
// the store, to a user-facing AuthError. Password changes and OTP
// operations return sentinel errors that the bundled handlers translate to
// HTTP statuses.
//
// # Store Implementations
//
// File-based stores in the stores package suit development and tests. The
// stores/gorm package provides the relational backend whose unique indexes
// are the authoritative uniqueness check; stores/redis holds verification
// codes with native TTLs.
//
// # Security
//
// Passwords are hashed with bcrypt at cost 12. Verification codes are
// 6-digit cryptographically random values that expire after 5 minutes, are
// deleted after single use, and tolerate at most 3 wrong attempts.
package auth

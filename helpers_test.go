package auth_test

import (
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/appertide/auth"
	"github.com/appertide/auth/stores"
)

var errTestDelivery = errors.New("smtp unreachable")

// fakeEmailSender records every code it is asked to deliver
type fakeEmailSender struct {
	mu   sync.Mutex
	sent []sentEmail
	fail error
}

type sentEmail struct {
	To   string
	Code string
}

func (f *fakeEmailSender) SendVerificationOTP(to, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, sentEmail{To: to, Code: code})
	return nil
}

func (f *fakeEmailSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeEmailSender) last() sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentEmail{}
	}
	return f.sent[len(f.sent)-1]
}

type testAuthOption func(*auth.Config)

func withSession(sm *scs.SessionManager) testAuthOption {
	return func(cfg *auth.Config) { cfg.Session = sm }
}

func withOTPOnSignup() testAuthOption {
	return func(cfg *auth.Config) {
		cfg.OTP.SendVerificationOnSignUp = true
	}
}

// newTestAuth builds a provider over file stores in a temp dir
func newTestAuth(t *testing.T, opts ...testAuthOption) (*auth.Auth, *fakeEmailSender) {
	t.Helper()

	dir := t.TempDir()
	sender := &fakeEmailSender{}

	cfg := auth.Config{
		Users:         stores.NewFSUserStore(dir),
		Accounts:      stores.NewFSAccountStore(dir),
		Verifications: stores.NewFSVerificationStore(dir),
		EmailSender:   sender,
		OTP: auth.OTPOptions{
			DisableSignUp: true,
		},
		JWTSecretKey: "test-secret-key",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return auth.New(cfg), sender
}

// loggedInAs stubs session resolution so calls carry the given user id
func loggedInAs(a *auth.Auth, userID string) {
	a.Middleware.SessionGetter = func(r *http.Request, param string) any {
		return userID
	}
}

// signUp registers a user or fails the test
func signUp(t *testing.T, a *auth.Auth, email, password, username string) *auth.User {
	t.Helper()
	data, authErr := a.SignUpWithEmail(email, password, username)
	if authErr != nil {
		t.Fatalf("SignUpWithEmail(%q) error = %v", email, authErr)
	}
	return data.User
}

package auth

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt cost factor for stored password hashes
const PasswordHashCost = 12

// MinPasswordLength is the minimum accepted password length at signup
const MinPasswordLength = 8

// OTPOptions configures the email-OTP behavior of the provider
type OTPOptions struct {
	// DisableSignUp blocks OTP-triggered self-service signup: codes are
	// only ever sent to emails that already have a user row.
	DisableSignUp bool

	// SendVerificationOnSignUp sends a verification code automatically
	// after a successful signup. Delivery failures are logged, not fatal.
	SendVerificationOnSignUp bool

	// Expiry overrides the default code lifetime
	Expiry time.Duration
}

// Config wires the provider to its collaborators. Construct once at
// process start and pass to New; there is no implicit global instance.
type Config struct {
	AppName string

	Users         UserStore
	Accounts      AccountStore
	Verifications VerificationStore

	Session     *scs.SessionManager
	EmailSender EmailSender

	// Whether email verification is required before login
	RequireEmailVerification bool

	OTP OTPOptions

	// All the domains where the auth token cookies will be set on a login
	// success or logout
	CookieDomains []string

	// JWT related fields
	JwtIssuer    string
	JWTSecretKey string

	// How long is a session cookie valid for. Defaults to 1 day.
	SessionTimeoutInSeconds int
}

// Auth is the configured authentication provider. All handlers and
// operations hang off this.
type Auth struct {
	Users         UserStore
	Accounts      AccountStore
	Verifications VerificationStore

	Session     *scs.SessionManager
	EmailSender EmailSender
	Middleware  Middleware

	AppName                  string
	AuthTokenSessionVar      string
	RequireEmailVerification bool
	OTP                      OTPOptions
	CookieDomains            []string
	JwtIssuer                string
	JWTSecretKey             string
	SessionTimeoutInSeconds  int
}

// New constructs the provider from explicit dependencies
func New(cfg Config) *Auth {
	a := &Auth{
		Users:                    cfg.Users,
		Accounts:                 cfg.Accounts,
		Verifications:            cfg.Verifications,
		Session:                  cfg.Session,
		EmailSender:              cfg.EmailSender,
		AppName:                  cfg.AppName,
		RequireEmailVerification: cfg.RequireEmailVerification,
		OTP:                      cfg.OTP,
		CookieDomains:            cfg.CookieDomains,
		JwtIssuer:                cfg.JwtIssuer,
		JWTSecretKey:             cfg.JWTSecretKey,
		SessionTimeoutInSeconds:  cfg.SessionTimeoutInSeconds,
	}
	return a.EnsureDefaults()
}

func (a *Auth) EnsureDefaults() *Auth {
	if a.AppName == "" {
		a.AppName = "Appertide"
	}
	if a.SessionTimeoutInSeconds <= 0 {
		a.SessionTimeoutInSeconds = 86400
	}
	if a.JwtIssuer == "" {
		a.JwtIssuer = fmt.Sprintf("%s-Issuer", a.AppName)
	}
	if a.AuthTokenSessionVar == "" {
		a.AuthTokenSessionVar = fmt.Sprintf("%sAuthToken", a.AppName)
	}
	if a.JWTSecretKey == "" {
		a.JWTSecretKey = strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET_KEY"))
		if a.JWTSecretKey == "" {
			a.JWTSecretKey = "MyTestJWTSecretKey123456"
		}
	}
	if a.OTP.Expiry <= 0 {
		a.OTP.Expiry = OTPExpiry
	}
	if a.Middleware.AuthTokenCookieName == "" {
		a.Middleware.AuthTokenCookieName = a.AuthTokenSessionVar
	}
	if a.Middleware.VerifyToken == nil {
		a.Middleware.VerifyToken = a.verifyJWT
	}
	if a.Middleware.SessionGetter == nil && a.Session != nil {
		a.Middleware.SessionGetter = func(r *http.Request, param string) any {
			return a.Session.Get(r.Context(), param)
		}
	}
	return a
}

func (a *Auth) verifyJWT(tokenString string) (loggedInUserId string, t any, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(a.JWTSecretKey), nil
	})
	if err != nil {
		return "", nil, err
	}
	if !token.Valid {
		return "", nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims == nil {
		return "", nil, fmt.Errorf("claims is not a map")
	}
	sub, err := claims.GetSubject()
	if sub == "" {
		return "", nil, fmt.Errorf("subject not found")
	} else if err != nil {
		return "", nil, err
	}
	return sub, token, nil
}

// hashPassword hashes a plaintext password at the configured cost
func hashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), PasswordHashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// setLoggedInUser sets the session var and auth token cookies for the user
// on all cookie domains we care about. Passing nil logs the user out.
func (a *Auth) setLoggedInUser(user *User, w http.ResponseWriter, r *http.Request) string {
	a.EnsureDefaults()
	domains := a.CookieDomains
	if slices.Index(a.CookieDomains, "") < 0 { // default domain
		domains = append(domains, "")
	}

	if user == nil {
		// clear the session and cookie values
		log.Println("Logging out user")
		if a.Session != nil {
			if err := a.Session.Clear(r.Context()); err != nil {
				slog.Warn("error clearing session ", "err", err)
			}
		}
		for _, cookieDomain := range domains {
			http.SetCookie(w, &http.Cookie{
				Name:    "loggedInUserId",
				Domain:  cookieDomain,
				Path:    "/",
				MaxAge:  -1,
				Expires: time.Now(),
			})
			http.SetCookie(w, &http.Cookie{
				Name:    a.AuthTokenSessionVar,
				Domain:  cookieDomain,
				Path:    "/",
				MaxAge:  -1,
				Expires: time.Now(),
			})
		}
		return ""
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID,
		"iss": a.JwtIssuer,
		"exp": time.Now().Add(time.Second * time.Duration(a.SessionTimeoutInSeconds)).Unix(),
		"iat": time.Now().Unix(),
	})
	tokenString, err := token.SignedString([]byte(a.JWTSecretKey))
	if err != nil {
		slog.Info("error signing token", "err", err)
	}

	if a.Session != nil {
		a.Session.Put(r.Context(), "loggedInUserId", user.ID)
		a.Session.Put(r.Context(), a.AuthTokenSessionVar, tokenString)
	}

	expiresAt := time.Now().Add(time.Second * time.Duration(a.SessionTimeoutInSeconds))
	for _, cookieDomain := range domains {
		http.SetCookie(w, &http.Cookie{
			Name:    "loggedInUserId",
			Value:   user.ID,
			Domain:  cookieDomain,
			Path:    "/",
			Expires: expiresAt, MaxAge: a.SessionTimeoutInSeconds,
		})
		http.SetCookie(w, &http.Cookie{
			Name:    a.AuthTokenSessionVar,
			Value:   tokenString,
			Domain:  cookieDomain,
			Path:    "/",
			Expires: expiresAt, MaxAge: a.SessionTimeoutInSeconds,
		})
	}
	return tokenString
}

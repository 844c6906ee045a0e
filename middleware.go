package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

type userParamNameKey string

// Middleware resolves the logged-in user for a request: request context
// first, then the session, then the auth token header/cookie.
type Middleware struct {
	AuthTokenHeaderName string
	AuthTokenCookieName string
	UserParamName       string
	CallbackURLParam    string
	SessionGetter       func(r *http.Request, param string) any
	GetRedirURL         func(r *http.Request) string
	VerifyToken         func(tokenString string) (loggedInUserId string, token any, err error)
}

func (m *Middleware) EnsureReasonableDefaults() {
	if m.UserParamName == "" {
		m.UserParamName = "loggedInUserId"
	}
	if m.CallbackURLParam == "" {
		m.CallbackURLParam = "callbackURL"
	}
	if m.AuthTokenHeaderName == "" {
		m.AuthTokenHeaderName = "Authorization"
	}
}

// GetLoggedInUserId returns the ID of the logged in user for the current
// request, or "" when no session or valid token is present
func (m *Middleware) GetLoggedInUserId(r *http.Request) string {
	m.EnsureReasonableDefaults()

	if v := r.Context().Value(userParamNameKey(m.UserParamName)); v != nil {
		if userId, ok := v.(string); ok && userId != "" {
			return userId
		}
	}

	if m.SessionGetter != nil {
		if v := m.SessionGetter(r, m.UserParamName); v != nil && v != "" {
			if userId, ok := v.(string); ok {
				return userId
			}
		}
	}

	if m.VerifyToken == nil {
		slog.Warn("No auth token verifier found.  Please set one")
		return ""
	}

	// Otherwise check the Authorization header and the auth token cookie
	authTokens := r.Header.Values(m.AuthTokenHeaderName)
	for i, token := range authTokens {
		authTokens[i] = strings.TrimPrefix(token, "Bearer ")
	}
	for _, cookie := range r.Cookies() {
		if cookie.Name == m.AuthTokenCookieName && len(cookie.Value) > 0 {
			authTokens = append(authTokens, cookie.Value)
		}
	}

	for _, authToken := range authTokens {
		userId, _, err := m.VerifyToken(authToken)
		if err == nil && userId != "" {
			return userId
		} else if err != nil {
			slog.Warn("Error verifying token: ", "error", err)
		}
	}

	return ""
}

// ExtractUser loads the logged in user ID into the request context for
// downstream handlers. No redirect happens when the user is not logged in;
// use EnsureUser for that.
func (m *Middleware) ExtractUser(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			userId := m.GetLoggedInUserId(r)
			next.ServeHTTP(w, m.setLoggedInUserId(userId, r))
		},
	)
}

// EnsureUser enforces a logged in user, redirecting to the login page if
// one is configured and returning 401 otherwise
func (m *Middleware) EnsureUser(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			userId := m.GetLoggedInUserId(r)
			if userId == "" {
				redirUrl := ""
				if m.GetRedirURL != nil {
					redirUrl = m.GetRedirURL(r)
				}
				if redirUrl != "" {
					encodedUrl := strings.Replace(url.QueryEscape(r.URL.Path), "+", "%20", -1)
					http.Redirect(w, r, fmt.Sprintf("%s?%s=%s", redirUrl, m.CallbackURLParam, encodedUrl), http.StatusFound)
				} else {
					http.Error(w, "Login Failed", http.StatusUnauthorized)
				}
				return
			}
			next.ServeHTTP(w, m.setLoggedInUserId(userId, r))
		},
	)
}

// setLoggedInUserId makes the user id available to downstream handlers as
// a request scoped variable
func (m *Middleware) setLoggedInUserId(userId string, r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), userParamNameKey(m.UserParamName), userId)
	return r.WithContext(ctx)
}

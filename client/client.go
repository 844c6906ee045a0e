// Package client provides a Go client for servers built on the auth package.
// It keeps the session cookie between calls so a sign-in carries over to
// subsequent requests, the same way a browser would.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
)

// AuthClient is an HTTP client for the auth endpoints of a server
type AuthClient struct {
	mu         sync.Mutex
	serverURL  string
	basePath   string // e.g., "/auth"
	httpClient *http.Client
}

// UserInfo is the user object returned by the server
type UserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	Name          string `json:"name,omitempty"`
	EmailVerified bool   `json:"email_verified"`
}

// APIError is a structured error returned by the server
type APIError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

type serverResponse struct {
	User    *UserInfo `json:"user,omitempty"`
	Data    *struct {
		User *UserInfo `json:"user"`
	} `json:"data,omitempty"`
	Success bool      `json:"success,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// ClientOption configures an AuthClient
type ClientOption func(*AuthClient)

// WithBasePath sets the path prefix the auth routes are mounted under
func WithBasePath(path string) ClientOption {
	return func(c *AuthClient) {
		c.basePath = path
	}
}

// WithHTTPClient sets a custom base HTTP client (for timeouts, TLS config, etc.)
// A cookie jar is attached if the client does not already have one.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *AuthClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewAuthClient creates a new client for a server
func NewAuthClient(serverURL string, opts ...ClientOption) *AuthClient {
	// Normalize server URL
	u, err := url.Parse(serverURL)
	if err == nil && u.Scheme != "" && u.Host != "" {
		serverURL = fmt.Sprintf("%s://%s", u.Scheme, u.Host)
	}

	c := &AuthClient{
		serverURL:  serverURL,
		basePath:   "/auth",
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		jar, _ := cookiejar.New(nil)
		c.httpClient.Jar = jar
	}

	return c
}

// HTTPClient returns the underlying HTTP client, including its cookie jar
func (c *AuthClient) HTTPClient() *http.Client {
	return c.httpClient
}

// ServerURL returns the server URL this client is configured for
func (c *AuthClient) ServerURL() string {
	return c.serverURL
}

// SignUp registers a new account. The session is not established; call
// SignIn afterwards to log in.
func (c *AuthClient) SignUp(email, username, password string) (*UserInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.postJSON("/signup", map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if resp.Data != nil {
		return resp.Data.User, nil
	}
	return resp.User, nil
}

// SignIn authenticates with email/password. The session cookie is kept in
// the client's jar for later requests.
func (c *AuthClient) SignIn(email, password string) (*UserInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.postJSON("/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

// SignOut ends the current session
func (c *AuthClient) SignOut() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.postJSON("/logout", nil)
	return err
}

// ChangePassword changes the password of the signed-in user
func (c *AuthClient) ChangePassword(currentPassword, newPassword string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.postJSON("/change-password", map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	})
	return err
}

// SendOTP requests a verification code for an email address
func (c *AuthClient) SendOTP(email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.postJSON("/send-otp", map[string]string{"email": email})
	return err
}

// VerifyOTP submits a verification code for an email address
func (c *AuthClient) VerifyOTP(email, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.postJSON("/verify-otp", map[string]string{
		"email": email,
		"otp":   code,
	})
	return err
}

// Me returns the currently signed-in user, or nil if there is no session
func (c *AuthClient) Me() (*UserInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req, err := http.NewRequest(http.MethodGet, c.serverURL+c.basePath+"/me", nil)
	if err != nil {
		return nil, err
	}
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusUnauthorized {
		return nil, nil
	}

	resp, err := decodeResponse(httpResp)
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

// IsLoggedIn reports whether the client currently has a valid session
func (c *AuthClient) IsLoggedIn() bool {
	user, err := c.Me()
	return err == nil && user != nil
}

// postJSON makes a JSON POST to an auth endpoint and decodes the envelope.
// Caller must hold c.mu.
func (c *AuthClient) postJSON(path string, body any) (*serverResponse, error) {
	endpoint := c.serverURL + c.basePath + path

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	httpResp, err := c.httpClient.Post(endpoint, "application/json", reader)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	defer httpResp.Body.Close()

	return decodeResponse(httpResp)
}

func decodeResponse(httpResp *http.Response) (*serverResponse, error) {
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp serverResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid response from server: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		if resp.Error != nil {
			return nil, resp.Error
		}
		return nil, fmt.Errorf("request failed: HTTP %d", httpResp.StatusCode)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return &resp, nil
}

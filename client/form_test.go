package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestAuthForm_SetUsername_LiveValidation(t *testing.T) {
	form := NewAuthForm(NewAuthClient("http://localhost"))

	// no validation while signing in
	form.SetUsername("Invalid User!")
	if form.UsernameError != "" {
		t.Errorf("UsernameError = %q in sign-in mode, want empty", form.UsernameError)
	}

	form.SetMode(ModeSignUp)
	form.SetUsername("Invalid User!")
	if form.UsernameError == "" {
		t.Error("UsernameError empty for invalid username in sign-up mode")
	}

	form.SetUsername("gooduser")
	if form.UsernameError != "" {
		t.Errorf("UsernameError = %q for valid username, want empty", form.UsernameError)
	}

	// empty input never shows an error
	form.SetUsername("")
	if form.UsernameError != "" {
		t.Errorf("UsernameError = %q for empty username, want empty", form.UsernameError)
	}
}

func TestAuthForm_SetMode_ClearsErrors(t *testing.T) {
	form := NewAuthForm(NewAuthClient("http://localhost"))
	form.Error = "boom"
	form.UsernameError = "bad"

	form.SetMode(ModeSignUp)
	if form.Error != "" || form.UsernameError != "" {
		t.Errorf("errors not cleared: %q / %q", form.Error, form.UsernameError)
	}
}

func TestAuthForm_Submit_SignUpThenSignIn(t *testing.T) {
	var signups, logins int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/signup":
			atomic.AddInt32(&signups, 1)
			body, _ := io.ReadAll(r.Body)
			var req map[string]string
			json.Unmarshal(body, &req)
			// the form submits the sanitized username
			if req["username"] != "anna" {
				t.Errorf("username = %q, want anna", req["username"])
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"user": UserInfo{ID: "u1", Email: req["email"], Username: req["username"]},
				},
			})
		case "/auth/login":
			atomic.AddInt32(&logins, 1)
			json.NewEncoder(w).Encode(map[string]any{
				"user": UserInfo{ID: "u1", Email: "a@x.com", Username: "anna"},
			})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	form := NewAuthForm(NewAuthClient(server.URL))
	form.SetMode(ModeSignUp)
	form.Email = "a@x.com"
	form.Password = "Secret123!"
	form.SetUsername("  Anna  ")

	user := form.Submit()
	if user == nil {
		t.Fatalf("Submit() = nil, Error = %q, UsernameError = %q", form.Error, form.UsernameError)
	}
	if user.Username != "anna" {
		t.Errorf("Username = %v, want anna", user.Username)
	}
	if signups != 1 || logins != 1 {
		t.Errorf("signups = %d, logins = %d, want 1 each", signups, logins)
	}
	if form.Loading {
		t.Error("Loading still true after submit")
	}
}

func TestAuthForm_Submit_InvalidUsernameShortCircuits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("server should not be called, got %s", r.URL.Path)
	}))
	defer server.Close()

	form := NewAuthForm(NewAuthClient(server.URL))
	form.SetMode(ModeSignUp)
	form.Email = "a@x.com"
	form.Password = "Secret123!"
	form.Username = "x" // too short, set directly to bypass live validation

	if user := form.Submit(); user != nil {
		t.Fatalf("Submit() = %+v, want nil", user)
	}
	if form.UsernameError == "" {
		t.Error("UsernameError empty after invalid submit")
	}
}

func TestAuthForm_Submit_SignUpErrorStopsSignIn(t *testing.T) {
	var logins int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/signup":
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"error": APIError{Code: "username_taken", Message: "Username already taken", Field: "username"},
			})
		case "/auth/login":
			atomic.AddInt32(&logins, 1)
		}
	}))
	defer server.Close()

	form := NewAuthForm(NewAuthClient(server.URL))
	form.SetMode(ModeSignUp)
	form.Email = "a@x.com"
	form.Password = "Secret123!"
	form.SetUsername("anna")

	if user := form.Submit(); user != nil {
		t.Fatalf("Submit() = %+v, want nil", user)
	}
	if form.Error != "Username already taken" {
		t.Errorf("Error = %q, want the server message", form.Error)
	}
	if logins != 0 {
		t.Errorf("logins = %d, want 0 after failed signup", logins)
	}
}

func TestAuthForm_Submit_SignIn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"user": UserInfo{ID: "u1", Email: "a@x.com", Username: "anna"},
		})
	}))
	defer server.Close()

	form := NewAuthForm(NewAuthClient(server.URL))
	form.Email = "a@x.com"
	form.Password = "Secret123!"

	user := form.Submit()
	if user == nil {
		t.Fatalf("Submit() = nil, Error = %q", form.Error)
	}
	if user.ID != "u1" {
		t.Errorf("ID = %v, want u1", user.ID)
	}
}

func TestAuthForm_Submit_SignInFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": APIError{Code: "invalid_credentials", Message: "invalid email or password"},
		})
	}))
	defer server.Close()

	form := NewAuthForm(NewAuthClient(server.URL))
	form.Email = "a@x.com"
	form.Password = "wrong"

	if user := form.Submit(); user != nil {
		t.Fatalf("Submit() = %+v, want nil", user)
	}
	if form.Error != "invalid email or password" {
		t.Errorf("Error = %q, want the server message", form.Error)
	}
}

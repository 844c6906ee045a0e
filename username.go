package auth

import (
	"regexp"
	"strings"
)

// UsernameValidation is the result of validating a candidate username.
// When Valid is true, Sanitized holds the canonical value to store.
type UsernameValidation struct {
	Valid     bool
	Sanitized string
	Err       string
}

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Names that would collide with application surfaces or mislead other users
var reservedUsernames = map[string]bool{
	"admin":         true,
	"administrator": true,
	"api":           true,
	"moderator":     true,
	"root":          true,
	"support":       true,
	"system":        true,
}

// SanitizeUsername normalizes a raw username to its canonical stored form
func SanitizeUsername(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ValidateUsername checks a raw username and produces either the sanitized
// canonical value or a user-facing error message. It is pure and
// deterministic, and idempotent over its own output: validating the
// Sanitized value of a valid input is always valid. The same function gates
// both the client form and the server handler; the server side is the
// authoritative one.
func ValidateUsername(raw string) UsernameValidation {
	username := SanitizeUsername(raw)

	if len(username) < 3 || len(username) > 20 {
		return UsernameValidation{Err: "Username must be 3-20 characters"}
	}
	if !usernamePattern.MatchString(username) {
		return UsernameValidation{Err: "Username can only contain letters, numbers, underscores, and hyphens"}
	}
	if username[0] == '_' || username[0] == '-' {
		return UsernameValidation{Err: "Username must start with a letter or number"}
	}
	if reservedUsernames[username] {
		return UsernameValidation{Err: "This username is reserved"}
	}

	return UsernameValidation{Valid: true, Sanitized: username}
}

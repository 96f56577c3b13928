package auth

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// Username validation pattern: alphanumeric and underscore only
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Loose RFC 5322-ish check; the mail provider is the real validator.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 32
	MinPasswordLen = 9
	MaxEmailLen    = 254
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidateUsername checks if username meets requirements:
// - 3-32 characters
// - Only letters (a-z, A-Z), numbers (0-9), and underscores (_)
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("username required")
	}
	if len(username) < MinUsernameLen || len(username) > MaxUsernameLen {
		return errors.New("username must be 3-32 characters")
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username must contain only letters, numbers, and underscores")
	}
	return nil
}

// ValidateEmail checks basic shape and length of an email address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email required")
	}
	if len(email) > MaxEmailLen {
		return errors.New("email too long")
	}
	if !emailPattern.MatchString(email) {
		return errors.New("email is not valid")
	}
	return nil
}

// ValidatePassword checks if password meets requirements:
// - At least 9 characters
// - Contains at least one uppercase letter
// - Contains at least one lowercase letter
// - Contains at least one number
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return errors.New("password must be at least 9 characters")
	}

	var hasUpper, hasLower, hasNumber bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsNumber(c):
			hasNumber = true
		}
	}

	if !hasUpper || !hasLower || !hasNumber {
		return errors.New("password must contain uppercase, lowercase, and numbers")
	}

	return nil
}

// ValidateRole accepts the two application roles.
func ValidateRole(role string) error {
	switch role {
	case RoleAdmin, RoleUser:
		return nil
	default:
		return errors.New("role must be admin or user")
	}
}

package domain

import (
	"errors"
	"strings"
)

// MinPasswordLength is the shortest password the signup form accepts.
const MinPasswordLength = 8

var (
	// ErrMissingField is returned when a required form field is empty.
	ErrMissingField = errors.New("missing required field")
	// ErrPasswordTooShort is returned when a signup password is under MinPasswordLength.
	ErrPasswordTooShort = errors.New("password too short")
)

// Credentials is the login request body.
type Credentials struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RedirectTo string `json:"redirectTo"`
}

// Validate checks required login fields.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return ErrMissingField
	}
	return nil
}

// Signup is the onboarding request body.
type Signup struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks required signup fields and the password length hint.
func (s Signup) Validate() error {
	if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Email) == "" || s.Password == "" {
		return ErrMissingField
	}
	if len([]rune(s.Password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

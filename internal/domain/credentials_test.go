package domain

import (
	"errors"
	"testing"
)

func TestSignupValidate(t *testing.T) {
	tests := []struct {
		name string
		in   Signup
		want error
	}{
		{"valid", Signup{Name: "Ada", Email: "ada@example.com", Password: "12345678"}, nil},
		{"short password", Signup{Name: "Ada", Email: "ada@example.com", Password: "1234567"}, ErrPasswordTooShort},
		{"missing name", Signup{Email: "ada@example.com", Password: "12345678"}, ErrMissingField},
		{"blank email", Signup{Name: "Ada", Email: "  ", Password: "12345678"}, ErrMissingField},
		{"missing password", Signup{Name: "Ada", Email: "ada@example.com"}, ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Validate(); !errors.Is(got, tt.want) {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCredentialsValidate(t *testing.T) {
	if err := (Credentials{Email: "a@b.c", Password: "x"}).Validate(); err != nil {
		t.Errorf("Expected valid credentials, got %v", err)
	}
	if err := (Credentials{Email: "a@b.c"}).Validate(); !errors.Is(err, ErrMissingField) {
		t.Errorf("Expected ErrMissingField, got %v", err)
	}
}

package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/userdash/internal/client/client"
)

type Kind int

const (
	Other Kind = iota
	UserNotFound
	WrongPassword
	InvalidEmail
	EmailExists
	WeakPassword
	MissingFields
)

func (k Kind) String() string {
	switch k {
	case UserNotFound:
		return "user_not_found"
	case WrongPassword:
		return "wrong_password"
	case InvalidEmail:
		return "invalid_email"
	case EmailExists:
		return "email_exists"
	case WeakPassword:
		return "weak_password"
	case MissingFields:
		return "missing_fields"
	default:
		return "other"
	}
}

// Op names the operation an AuthError came from.
type Op string

const (
	OpSignUp Op = "signup"
	OpSignIn Op = "signin"
)

// AuthError is a rejection by the identity provider or a local precondition
// failure of a sign-up or sign-in.
type AuthError struct {
	Op   Op
	Kind Kind

	// Code is the provider's error message, e.g. EMAIL_NOT_FOUND.
	Code string

	// Message overrides the default user-facing text.
	Message string
}

func (e *AuthError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Op, e.Kind, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// NewMissingFields reports that required input was left empty.
func NewMissingFields(op Op, message string) *AuthError {
	return &AuthError{Op: op, Kind: MissingFields, Message: message}
}

func kindFromCode(code string) Kind {
	switch {
	case code == "EMAIL_NOT_FOUND":
		return UserNotFound
	case code == "INVALID_PASSWORD", code == "INVALID_LOGIN_CREDENTIALS":
		return WrongPassword
	case code == "INVALID_EMAIL":
		return InvalidEmail
	case code == "EMAIL_EXISTS":
		return EmailExists
	case strings.HasPrefix(code, "WEAK_PASSWORD"):
		return WeakPassword
	case code == "MISSING_EMAIL", code == "MISSING_PASSWORD":
		return MissingFields
	default:
		return Other
	}
}

// UserMessage maps err to text suitable for showing to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ae *AuthError
	if errors.As(err, &ae) {
		if ae.Message != "" {
			return ae.Message
		}
		switch ae.Kind {
		case MissingFields:
			if ae.Op == OpSignUp {
				return "All fields are required."
			}
			return "Please fill in both fields."
		case UserNotFound:
			return "User not found. Please sign up."
		case WrongPassword:
			return "Incorrect password. Please try again."
		case InvalidEmail:
			return "Invalid email format. Please check your email."
		case EmailExists:
			return "An account with this email already exists. Please log in."
		case WeakPassword:
			return "Password is too weak. Use at least 6 characters."
		}
		if ae.Op == OpSignUp {
			return "Sign up failed. Please try again later."
		}
		return "Login failed. Please try again later."
	}

	if errors.Is(err, client.ErrUnavailable) {
		return "Service unavailable. Please check your connection and try again."
	}
	return "Login failed. Please try again later."
}

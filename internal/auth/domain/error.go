package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrSignUpDisabled     = errors.New("sign up disabled")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrInvalidSession     = errors.New("invalid session")
)

// AuthErrorType classifies failures reported by the identity bridge.
type AuthErrorType string

const (
	CredentialsSignin  AuthErrorType = "CredentialsSignin"
	OAuthSignin        AuthErrorType = "OAuthSignin"
	OAuthCallbackError AuthErrorType = "OAuthCallbackError"
	AccessDenied       AuthErrorType = "AccessDenied"
	CallbackRouteError AuthErrorType = "CallbackRouteError"
	Configuration      AuthErrorType = "Configuration"
)

// AuthError is an authentication failure recognised by the bridge.
type AuthError struct {
	Type AuthErrorType
	Err  error
}

func NewAuthError(t AuthErrorType, err error) *AuthError {
	return &AuthError{Type: t, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return string(e.Type)
	}
	return fmt.Sprintf("%s: %v", e.Type, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// AsAuthError reports whether err carries an *AuthError.
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}

package domain

import (
	"context"
	"time"
)

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	LoginWithIdentity(ctx context.Context, req IdentityLoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*Session, error)
}

type CreateUserRequest struct {
	Email       string
	Password    string
	DisplayName string
}

type LoginRequest struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// IdentityLoginRequest signs in a user vouched for by an OAuth provider.
type IdentityLoginRequest struct {
	Provider    string
	ExternalID  string
	Email       string
	DisplayName string
	AllowSignUp bool
	UserAgent   string
	IPAddress   string
}

type LoginResult struct {
	Session   *Session
	RawToken  string
	ExpiresAt time.Time
	Created   bool
}

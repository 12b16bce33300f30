// Package auth resolves who the current user is. A Gate authenticates
// credentials and maps a bearer token to a Session; which Gate backs the
// service is chosen at start-up.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/luxebite/luxebite-backend/internal/user"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidProfile      = errors.New("invalid profile")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	ErrNoSession           = errors.New("no active session")
)

// Session is one signed-in client. It is handed to request handlers through
// the fiber context and never stored globally.
type Session struct {
	ID        string    `json:"-"`
	Token     string    `json:"token"`
	User      user.User `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Gate interface {
	Login(ctx context.Context, email, password string) (Session, error)
	// Register creates the identity and signs it in.
	Register(ctx context.Context, reg Registration) (Session, error)
	Logout(ctx context.Context, token string) error
	UpdateProfile(ctx context.Context, token string, patch ProfilePatch) (user.User, error)
	// CurrentUser returns ErrNoSession for unknown, expired or revoked tokens.
	CurrentUser(ctx context.Context, token string) (Session, error)
}

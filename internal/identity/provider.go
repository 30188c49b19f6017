package identity

import (
	"context"
	"errors"
)

var (
	// ErrUserNotFound is returned when the provider has no account for the lookup key.
	ErrUserNotFound = errors.New("identity: user not found")
	// ErrInvalidPassword is returned by VerifyPassword for a wrong email/password pair.
	ErrInvalidPassword = errors.New("identity: invalid password")
	// ErrEmailExists is returned by CreateUser when the email is already registered.
	ErrEmailExists = errors.New("identity: email already exists")
)

// User is an account held by the identity provider.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL,omitempty"`
	Disabled    bool   `json:"disabled"`
}

// IProvider is the external identity service the API delegates credentials to.
type IProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (*User, error)
	GetUser(ctx context.Context, uid string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	DeleteUser(ctx context.Context, uid string) error
	// VerifyPassword checks a password for email. Providers that cannot
	// verify passwords server-side return (false, nil).
	VerifyPassword(ctx context.Context, email, password string) (bool, error)
}

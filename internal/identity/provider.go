package identity

import (
	"context"
	"errors"
	"fmt"
)

// Identity is the subject described by a verified id token or a newly
// created account at the external identity service.
type Identity struct {
	ID    string
	Email string
}

// Provider is the external identity service boundary. It is the sole
// source of truth for whether a caller is authenticated.
type Provider interface {
	// VerifyToken checks an id token and returns the identity it names.
	// An unverifiable token yields ErrInvalidToken; a failure to reach
	// the provider yields a *ProviderError, which callers must surface
	// as a dependency failure rather than treating the caller as
	// unauthenticated.
	VerifyToken(ctx context.Context, token string) (Identity, error)

	// CreateUser registers a new account with the identity service.
	CreateUser(ctx context.Context, email, password string) (Identity, error)
}

var ErrInvalidToken = errors.New("invalid identity token")

// ProviderError marks a failure of the identity service itself.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

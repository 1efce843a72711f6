package identity

import (
	"context"
	"errors"
)

// User is the resolved identity behind a bearer token.
type User struct {
	UserID string
	Role   string
	Email  string
}

var (
	ErrUnauthorized = errors.New("identity_unauthorized")
	ErrUnavailable  = errors.New("identity_unavailable")
)

// Provider resolves bearer tokens against an external identity service.
type Provider interface {
	Verify(ctx context.Context, token string) (*User, error)
}

// DisabledProvider is used when no identity backend is configured.
type DisabledProvider struct{}

func (DisabledProvider) Verify(ctx context.Context, token string) (*User, error) {
	return nil, ErrUnavailable
}

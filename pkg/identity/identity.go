// Package identity verifies bearer tokens issued by the external identity
// provider and exposes the authenticated subject.
package identity

import (
	"context"
	"errors"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Identity is the verified subject of a bearer token. UID is the provider's
// stable user id (the Firebase uid).
type Identity struct {
	UID   string
	Email string
	Name  string
}

type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

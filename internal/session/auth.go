package session

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Official is the logged-in health official.
type Official struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	Jurisdiction string `json:"jurisdiction"`
}

type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*Official, error)
}

// StaticAuthenticator accepts exactly one configured official.
type StaticAuthenticator struct {
	official     Official
	passwordHash []byte
}

func NewStaticAuthenticator(official Official, passwordHash string) *StaticAuthenticator {
	return &StaticAuthenticator{official: official, passwordHash: []byte(passwordHash)}
}

func (a *StaticAuthenticator) Authenticate(ctx context.Context, email, password string) (*Official, error) {
	if !strings.EqualFold(strings.TrimSpace(email), a.official.Email) {
		_ = bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	official := a.official
	return &official, nil
}

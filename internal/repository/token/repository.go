package token

import (
	"context"
	"time"
)

// Kind separates email verification tokens from password reset tokens.
type Kind string

const (
	KindVerify Kind = "verify"
	KindReset  Kind = "reset"
)

// Token is a one-time token bound to a user.
type Token struct {
	Token     string
	UserID    string
	Kind      Kind
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (t Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	// Consume deletes the token and returns it, expired or not. Only one
	// caller can consume a given token.
	Consume(ctx context.Context, token string, kind Kind) (*Token, error)
	// DeleteForUser drops every token of kind held by the user.
	DeleteForUser(ctx context.Context, userID string, kind Kind) error
}

package auth

import (
	"context"
	"fmt"

	"github.com/padhy-04/LifeSenseAI/internal"
)

// Provider resolves a bearer token to a user.
type Provider interface {
	Authenticate(ctx context.Context, token string) (*internal.User, error)
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*internal.User, error)
}

// JWTProvider verifies tokens locally and loads the subject from storage.
type JWTProvider struct {
	tokens *TokenIssuer
	users  UserLookup
}

func NewJWTProvider(tokens *TokenIssuer, users UserLookup) *JWTProvider {
	return &JWTProvider{tokens: tokens, users: users}
}

func (p *JWTProvider) Authenticate(ctx context.Context, token string) (*internal.User, error) {
	userID, err := p.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	user, err := p.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	return user.Public(), nil
}

var _ Provider = (*JWTProvider)(nil)

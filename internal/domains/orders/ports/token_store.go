package ports

import "context"

// TokenKey names the persisted bearer token slot.
const TokenKey = "auth.token"

// TokenStore holds the operator's bearer token. An empty token means signed out.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/Apurer/pos-console/internal/domains/orders/ports"
)

var _ ports.TokenStore = (*TokenStore)(nil)

// TokenStore is an in-memory bearer token slot.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewTokenStore(token string) *TokenStore {
	return &TokenStore{token: strings.TrimSpace(token)}
}

func (s *TokenStore) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *TokenStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
	return nil
}

func (s *TokenStore) ClearToken(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

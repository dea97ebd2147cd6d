package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pos-console/internal/domains/orders/ports"
)

// TokenStore persists the operator's bearer token in PostgreSQL.
type TokenStore struct {
	db  *gorm.DB
	key string
}

// NewTokenStore wires a PostgreSQL-backed token slot. Caller owns DB lifecycle.
func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{db: db, key: ports.TokenKey}
}

type tokenRecord struct {
	Key       string    `gorm:"primaryKey;column:name;size:128"`
	Token     string    `gorm:"column:token;size:2048"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (tokenRecord) TableName() string { return "console_tokens" }

// Token returns the stored token or "" when signed out.
func (s *TokenStore) Token(ctx context.Context) (string, error) {
	if err := s.ensureDB(); err != nil {
		return "", err
	}
	var record tokenRecord
	if err := s.db.WithContext(ctx).First(&record, "name = ?", s.key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return record.Token, nil
}

// SetToken upserts the token; a blank token clears the slot.
func (s *TokenStore) SetToken(ctx context.Context, token string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return s.ClearToken(ctx)
	}
	rec := tokenRecord{Key: s.key, Token: token}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
		}).
		Create(&rec).Error
}

// ClearToken removes the token row.
func (s *TokenStore) ClearToken(ctx context.Context) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&tokenRecord{}, "name = ?", s.key).Error
}

func (s *TokenStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres token store not configured")
	}
	return nil
}

var _ ports.TokenStore = (*TokenStore)(nil)

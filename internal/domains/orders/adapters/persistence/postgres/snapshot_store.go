package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pos-console/internal/domains/orders/domain"
	"github.com/Apurer/pos-console/internal/domains/orders/ports"
)

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore persists the seen-order set as one text[] row keyed by name.
type SnapshotStore struct {
	db  *gorm.DB
	key string
}

// NewSnapshotStore wires a PostgreSQL-backed snapshot store. Caller manages DB lifecycle.
func NewSnapshotStore(db *gorm.DB) *SnapshotStore {
	return &SnapshotStore{db: db, key: domain.SnapshotKey}
}

// snapshotRecord maps a named id set to a relational row.
type snapshotRecord struct {
	Key       string         `gorm:"primaryKey;column:name;size:128"`
	OrderIDs  pq.StringArray `gorm:"column:order_ids;type:text[]"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;index"`
}

func (snapshotRecord) TableName() string { return "order_snapshots" }

// Load returns the persisted set, empty when nothing was stored yet.
func (s *SnapshotStore) Load(ctx context.Context) (domain.SeenSet, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record snapshotRecord
	if err := s.db.WithContext(ctx).First(&record, "name = ?", s.key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewSeenSet(), nil
		}
		return nil, err
	}
	return domain.NewSeenSet(record.OrderIDs...), nil
}

// Mutate locks the row for the duration of fn so concurrent pollers serialize.
func (s *SnapshotStore) Mutate(ctx context.Context, fn func(domain.SeenSet) domain.SeenSet) (domain.SeenSet, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var result domain.SeenSet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := snapshotRecord{Key: s.key, OrderIDs: pq.StringArray{}}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}
		var record snapshotRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "name = ?", s.key).Error; err != nil {
			return err
		}
		next := fn(domain.NewSeenSet(record.OrderIDs...))
		if next == nil {
			next = domain.NewSeenSet()
		}
		if err := tx.Model(&snapshotRecord{}).
			Where("name = ?", s.key).
			Updates(map[string]any{
				"order_ids":  pq.StringArray(next.IDs()),
				"updated_at": gorm.Expr("NOW()"),
			}).Error; err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reset deletes the stored set; the next Mutate starts from an empty row.
func (s *SnapshotStore) Reset(ctx context.Context) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("name = ?", s.key).
		Delete(&snapshotRecord{}).Error
}

func (s *SnapshotStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres snapshot store not configured")
	}
	return nil
}

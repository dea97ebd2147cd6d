package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the console schema. Adapters do not automigrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&snapshotRecord{},
		&tokenRecord{},
	)
}

// Snapshot schema mirrors the orders snapshot store.
type snapshotRecord struct {
	Key       string         `gorm:"primaryKey;column:name;size:128"`
	OrderIDs  pq.StringArray `gorm:"column:order_ids;type:text[]"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;index"`
}

func (snapshotRecord) TableName() string { return "order_snapshots" }

// Token schema mirrors the orders token store.
type tokenRecord struct {
	Key       string    `gorm:"primaryKey;column:name;size:128"`
	Token     string    `gorm:"column:token;size:2048"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (tokenRecord) TableName() string { return "console_tokens" }

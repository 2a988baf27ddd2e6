package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is the row shape of the sql driver.
type Entry struct {
	Key       string `gorm:"column:kv_key;primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	Version   int64  `gorm:"not null;default:0"`
	ExpiresAt *time.Time
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "kv_entries" }

// SQLStore stores keys in a single kv_entries table through gorm, so any of
// sqlite, postgres, mysql or sqlserver can back the shop.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore migrates the kv_entries table and returns the store.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("kv/sql: migrate: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, int64, error) {
	var e Entry
	err := s.db.WithContext(ctx).Where("kv_key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("kv/sql: get %s: %w", key, err)
	}
	if e.ExpiresAt != nil && time.Now().After(*e.ExpiresAt) {
		return nil, 0, ErrNotFound
	}
	return []byte(e.Value), e.Version, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	e := Entry{Key: key, Value: string(value), Version: 1, ExpiresAt: expiry(ttl), UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "kv_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      e.Value,
			"version":    gorm.Expr("kv_entries.version + 1"),
			"expires_at": e.ExpiresAt,
			"updated_at": e.UpdatedAt,
		}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("kv/sql: set %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) CompareAndSet(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	db := s.db.WithContext(ctx)

	if expected == 0 {
		db.Where("kv_key = ? AND expires_at IS NOT NULL AND expires_at < ?", key, time.Now()).Delete(&Entry{})

		res := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&Entry{Key: key, Value: string(value), Version: 1, UpdatedAt: time.Now()})
		if res.Error != nil {
			return 0, fmt.Errorf("kv/sql: cas %s: %w", key, res.Error)
		}
		if res.RowsAffected == 0 {
			return s.currentVersion(ctx, key), ErrVersionMismatch
		}
		return 1, nil
	}

	res := db.Model(&Entry{}).
		Where("kv_key = ? AND version = ?", key, expected).
		Updates(map[string]interface{}{
			"value":      string(value),
			"version":    expected + 1,
			"expires_at": nil,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("kv/sql: cas %s: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return s.currentVersion(ctx, key), ErrVersionMismatch
	}
	return expected + 1, nil
}

func (s *SQLStore) currentVersion(ctx context.Context, key string) int64 {
	var e Entry
	if err := s.db.WithContext(ctx).Select("version").Where("kv_key = ?", key).Take(&e).Error; err != nil {
		return 0
	}
	return e.Version
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStore) Driver() string { return "sql" }

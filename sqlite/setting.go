package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fwojciec/opdscli"
)

// Compile-time interface verification.
var _ opdscli.SettingService = (*SettingService)(nil)

// SettingService implements opdscli.SettingService using SQLite.
type SettingService struct {
	db *DB
}

// NewSettingService creates a new SettingService.
func NewSettingService(db *DB) *SettingService {
	return &SettingService{db: db}
}

// Setting returns the value stored under key.
func (s *SettingService) Setting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", opdscli.Errorf(opdscli.ENOTFOUND, "setting %q is not set", key)
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting stores value under key, replacing any previous value.
func (s *SettingService) SetSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return opdscli.Errorf(opdscli.EINVALID, "setting key required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/household-ledger/internal/model"
)

// GetSetting returns the value stored under key and whether it was present.
func (s *SQLiteStorage) GetSetting(ctx context.Context, key string) (string, bool, error) {
	if err := validateContext(ctx); err != nil {
		return "", false, err
	}
	if err := validateString(key, "key"); err != nil {
		return "", false, err
	}

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, true, nil
}

// PutSetting upserts a setting.
func (s *SQLiteStorage) PutSetting(ctx context.Context, key, value string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	return putSetting(ctx, s.db, key, value)
}

func putSetting(ctx context.Context, q queryable, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

// LoadSettings reads the typed settings view.
func (s *SQLiteStorage) LoadSettings(ctx context.Context) (*model.Settings, error) {
	settings := &model.Settings{}

	var err error
	if settings.User, _, err = s.GetSetting(ctx, model.SettingUser); err != nil {
		return nil, err
	}
	if settings.SyncURL, _, err = s.GetSetting(ctx, model.SettingSyncURL); err != nil {
		return nil, err
	}

	raw, ok, err := s.GetSetting(ctx, model.SettingLastSynced)
	if err != nil {
		return nil, err
	}
	if ok && raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s setting %q: %w", model.SettingLastSynced, raw, err)
		}
		settings.LastSynced = &ts
	}

	return settings, nil
}

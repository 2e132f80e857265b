package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
)

// Preference reads a device-wide setting that belongs to no user. Absence is reported with false.
func (s *Store) Preference(ctx context.Context, key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, ErrClosed
	}
	var value string
	err := s.reader.QueryRowContext(ctx, `SELECT value FROM _preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, classify(err)
	}
	return value, true, nil
}

func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if _, err := s.writer.ExecContext(ctx,
		`INSERT INTO _preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
		err = classify(err)
		s.logger.Error("Failed to save preference", slog.String("key", key), slog.Any("err", err))
		return err
	}
	return nil
}

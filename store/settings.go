package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hazyhaar/extswitch/dbopen"
)

const keyGlobalEnabled = "global_enabled"

// GlobalEnabled reports whether the switcher is globally enabled. Defaults
// to true when the setting has never been written — a fresh install starts
// active.
func (s *Store) GlobalEnabled(ctx context.Context) (bool, error) {
	var v string
	err := s.DB.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, keyGlobalEnabled).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return v == "1", nil
}

// SetGlobalEnabled flips the global enable flag.
func (s *Store) SetGlobalEnabled(ctx context.Context, enabled bool) error {
	v := "0"
	if enabled {
		v = "1"
	}
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value, updated_at) VALUES (?,?,?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			keyGlobalEnabled, v, time.Now().UnixMilli())
		return err
	})
}

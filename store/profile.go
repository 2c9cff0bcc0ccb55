package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hazyhaar/extswitch/dbopen"
	"github.com/hazyhaar/extswitch/profiles"
)

// InsertProfile inserts a new profile group. Keep entries are pruned before
// writing — absence means keep.
func (s *Store) InsertProfile(ctx context.Context, p *profiles.ProfileGroup) error {
	p.PruneKeepStates()

	conds, err := json.Marshal(p.Conditions)
	if err != nil {
		return fmt.Errorf("store: marshal conditions: %w", err)
	}
	states, err := json.Marshal(p.ExtensionStates)
	if err != nil {
		return fmt.Errorf("store: marshal extension states: %w", err)
	}

	now := time.Now().UnixMilli()
	if p.CreatedAt == 0 {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO profile_groups
				(id, name, description, enabled, priority, conditions, extension_states, created_at, updated_at)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			p.ID, p.Name, p.Description, boolInt(p.Enabled), p.Priority,
			string(conds), string(states), p.CreatedAt, p.UpdatedAt,
		)
		return err
	})
}

// GetProfile retrieves a profile group by ID. Returns nil, nil when absent.
func (s *Store) GetProfile(ctx context.Context, id string) (*profiles.ProfileGroup, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT id, name, description, enabled, priority, conditions, extension_states, created_at, updated_at
		FROM profile_groups WHERE id = ?`, id)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// ListProfiles returns all profile groups ordered by descending priority,
// then most recently updated. This is the order the resolver receives, so
// equal-priority ties resolve to the most recently edited group.
func (s *Store) ListProfiles(ctx context.Context) ([]*profiles.ProfileGroup, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, description, enabled, priority, conditions, extension_states, created_at, updated_at
		FROM profile_groups
		ORDER BY priority DESC, updated_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*profiles.ProfileGroup
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateProfile rewrites an existing profile group and bumps updated_at.
func (s *Store) UpdateProfile(ctx context.Context, p *profiles.ProfileGroup) error {
	p.PruneKeepStates()

	conds, err := json.Marshal(p.Conditions)
	if err != nil {
		return fmt.Errorf("store: marshal conditions: %w", err)
	}
	states, err := json.Marshal(p.ExtensionStates)
	if err != nil {
		return fmt.Errorf("store: marshal extension states: %w", err)
	}
	p.UpdatedAt = time.Now().UnixMilli()

	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE profile_groups
			SET name = ?, description = ?, enabled = ?, priority = ?,
			    conditions = ?, extension_states = ?, updated_at = ?
			WHERE id = ?`,
			p.Name, p.Description, boolInt(p.Enabled), p.Priority,
			string(conds), string(states), p.UpdatedAt, p.ID,
		)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return fmt.Errorf("store: profile %s not found", p.ID)
		}
		return nil
	})
}

// DeleteProfile removes a profile group. Deleting an absent group is not an
// error.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM profile_groups WHERE id = ?`, id)
		return err
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*profiles.ProfileGroup, error) {
	p := &profiles.ProfileGroup{}
	var enabled int
	var conds, states string

	err := row.Scan(&p.ID, &p.Name, &p.Description, &enabled, &p.Priority,
		&conds, &states, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Enabled = enabled != 0

	if err := json.Unmarshal([]byte(conds), &p.Conditions); err != nil {
		return nil, fmt.Errorf("store: profile %s: conditions column: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(states), &p.ExtensionStates); err != nil {
		return nil, fmt.Errorf("store: profile %s: extension_states column: %w", p.ID, err)
	}
	return p, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Package store is the SQLite persistence layer for profile groups and the
// global settings of extswitch. The daemon reads it, the editing surfaces
// (HTTP API, MCP tools) write it; the runtime match state is never persisted
// here.
package store

import (
	"database/sql"

	"github.com/hazyhaar/extswitch/dbopen"
)

// Store is the extswitch database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the extswitch SQLite database at path, applies
// the production pragmas and the schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

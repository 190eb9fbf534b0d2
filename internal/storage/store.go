package storage

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// Record is a schemaless entity row. Validation of individual fields is
// the upstream backend's job; the store only persists and retrieves.
type Record map[string]any

var ErrNotFound = errors.New("record not found")

// Store is the CRUD persistence contract. Implementations: SQLite (bun)
// with a memory mirror, and a pure in-memory fallback.
type Store interface {
	Insert(ctx context.Context, entity string, rec Record) error
	Update(ctx context.Context, entity, id string, rec Record) error
	Delete(ctx context.Context, entity, id string) error
	GetAll(ctx context.Context, entity string) ([]Record, error)
	GetByID(ctx context.Context, entity, id string) (Record, error)
	Close() error
}

// IDColumn returns the conventional id column for an entity table,
// e.g. "id_animal" for "animal".
func IDColumn(entity string) string {
	return "id_" + entity
}

// Open returns the SQLite store, or the in-memory store when the database
// cannot be opened. The fallback keeps the CRUD surface usable in
// environments without a writable filesystem.
func Open(ctx context.Context, path string) Store {
	s, err := OpenSQLite(ctx, path)
	if err != nil {
		log.Warn().Err(err).Str("module", "storage").Str("path", path).Msg("sqlite unavailable, using in-memory store")
		return NewMemory()
	}
	log.Info().Str("module", "storage").Str("path", path).Msg("sqlite store ready")
	return s
}

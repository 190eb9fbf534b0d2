package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Table layout mirrors the upstream data model. Everything is TEXT;
// SQLite's type affinity handles the numeric fields.
const schema = `
CREATE TABLE IF NOT EXISTS usuario (id_usuario TEXT PRIMARY KEY, nombre TEXT, email TEXT UNIQUE, contrasenia TEXT, telefono TEXT, direccion TEXT, fecha_registro TEXT);
CREATE TABLE IF NOT EXISTS especie (id_especie TEXT PRIMARY KEY, nombre TEXT UNIQUE);
CREATE TABLE IF NOT EXISTS refugio (id_refugio TEXT PRIMARY KEY, nombre TEXT, direccion TEXT, telefono TEXT, descripcion TEXT);
CREATE TABLE IF NOT EXISTS animal (id_animal TEXT PRIMARY KEY, nombre TEXT, id_especie TEXT, edad TEXT, estado TEXT, descripcion TEXT, fotos TEXT, estado_adopcion TEXT, id_refugio TEXT);
CREATE TABLE IF NOT EXISTS publicacion (id_publicacion TEXT PRIMARY KEY, titulo TEXT, descripcion TEXT, fecha_subida TEXT, estado TEXT, id_usuario TEXT, id_animal TEXT);
CREATE TABLE IF NOT EXISTS adopcion (id_adopcion TEXT PRIMARY KEY, fecha_adopcion TEXT, estado TEXT, id_publicacion TEXT, id_usuario TEXT);
CREATE TABLE IF NOT EXISTS donacion (id_donacion TEXT PRIMARY KEY, monto REAL, fecha TEXT, id_usuario TEXT, id_causa_urgente TEXT);
`

// SQLite persists records through bun and keeps a memory mirror. A failing
// statement falls back to the mirror so a broken database file degrades
// service instead of breaking it, matching the relay's best-effort posture.
type SQLite struct {
	db  *bun.DB
	mem *Memory
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	sqldb, err := sql.Open(sqliteshim.DriverName(), path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db, mem: NewMemory()}, nil
}

func (s *SQLite) Insert(ctx context.Context, entity string, rec Record) error {
	m := bindable(rec)
	if _, err := s.db.NewInsert().Model(&m).TableExpr(entity).Exec(ctx); err != nil {
		log.Warn().Err(err).Str("module", "storage").Str("entity", entity).Msg("sqlite insert failed, caching in memory")
	}
	return s.mem.Insert(ctx, entity, rec)
}

func (s *SQLite) Update(ctx context.Context, entity, id string, rec Record) error {
	m := bindable(rec)
	delete(m, IDColumn(entity))
	_, err := s.db.NewUpdate().
		Model(&m).
		TableExpr(entity).
		Where("? = ?", bun.Ident(IDColumn(entity)), id).
		Exec(ctx)
	if err != nil {
		log.Warn().Err(err).Str("module", "storage").Str("entity", entity).Msg("sqlite update failed, caching in memory")
	}
	next := clone(rec)
	next[IDColumn(entity)] = id
	return s.mem.Insert(ctx, entity, next)
}

func (s *SQLite) Delete(ctx context.Context, entity, id string) error {
	_, err := s.db.NewDelete().
		TableExpr(entity).
		Where("? = ?", bun.Ident(IDColumn(entity)), id).
		Exec(ctx)
	if err != nil {
		log.Warn().Err(err).Str("module", "storage").Str("entity", entity).Msg("sqlite delete failed")
	}
	memErr := s.mem.Delete(ctx, entity, id)
	if err == nil {
		return nil
	}
	return memErr
}

func (s *SQLite) GetAll(ctx context.Context, entity string) ([]Record, error) {
	var rows []map[string]any
	err := s.db.NewSelect().TableExpr(entity).Scan(ctx, &rows)
	if err == nil && len(rows) > 0 {
		out := make([]Record, len(rows))
		for i, r := range rows {
			out[i] = Record(r)
		}
		return out, nil
	}
	if err != nil {
		log.Warn().Err(err).Str("module", "storage").Str("entity", entity).Msg("sqlite select failed, reading memory cache")
	}
	return s.mem.GetAll(ctx, entity)
}

func (s *SQLite) GetByID(ctx context.Context, entity, id string) (Record, error) {
	var row map[string]any
	err := s.db.NewSelect().
		TableExpr(entity).
		Where("? = ?", bun.Ident(IDColumn(entity)), id).
		Limit(1).
		Scan(ctx, &row)
	if err == nil && len(row) > 0 {
		return Record(row), nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Warn().Err(err).Str("module", "storage").Str("entity", entity).Msg("sqlite get failed, reading memory cache")
	}
	return s.mem.GetByID(ctx, entity, id)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// bindable flattens composite values (arrays, nested objects) to JSON
// strings the driver can bind into TEXT columns.
func bindable(rec Record) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		switch v.(type) {
		case nil, string, bool, int, int64, float64:
			out[k] = v
		default:
			b, err := json.Marshal(v)
			if err != nil {
				continue
			}
			out[k] = string(b)
		}
	}
	return out
}

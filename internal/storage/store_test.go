package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	rec := Record{"id_animal": "a1", "nombre": "Luna", "edad": 3}
	require.NoError(t, m.Insert(ctx, "animal", rec))

	t.Run("get by id", func(t *testing.T) {
		got, err := m.GetByID(ctx, "animal", "a1")
		require.NoError(t, err)
		assert.Equal(t, "Luna", got["nombre"])
	})

	t.Run("returned record is a copy", func(t *testing.T) {
		got, err := m.GetByID(ctx, "animal", "a1")
		require.NoError(t, err)
		got["nombre"] = "mutated"
		again, err := m.GetByID(ctx, "animal", "a1")
		require.NoError(t, err)
		assert.Equal(t, "Luna", again["nombre"])
	})

	t.Run("update", func(t *testing.T) {
		require.NoError(t, m.Update(ctx, "animal", "a1", Record{"nombre": "Max"}))
		got, err := m.GetByID(ctx, "animal", "a1")
		require.NoError(t, err)
		assert.Equal(t, "Max", got["nombre"])
		assert.Equal(t, "a1", got["id_animal"])
	})

	t.Run("update unknown id", func(t *testing.T) {
		assert.ErrorIs(t, m.Update(ctx, "animal", "nope", Record{}), ErrNotFound)
	})

	t.Run("get all", func(t *testing.T) {
		all, err := m.GetAll(ctx, "animal")
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, m.Delete(ctx, "animal", "a1"))
		_, err := m.GetByID(ctx, "animal", "a1")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, m.Delete(ctx, "animal", "a1"), ErrNotFound)
	})
}

func setupSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := setupSQLite(t)

	rec := Record{"id_refugio": "r1", "nombre": "Patitas", "direccion": "Av. Siempre Viva 1"}
	require.NoError(t, s.Insert(ctx, "refugio", rec))

	got, err := s.GetByID(ctx, "refugio", "r1")
	require.NoError(t, err)
	assert.Equal(t, "Patitas", got["nombre"])

	require.NoError(t, s.Update(ctx, "refugio", "r1", Record{"nombre": "Patitas Felices"}))
	got, err = s.GetByID(ctx, "refugio", "r1")
	require.NoError(t, err)
	assert.Equal(t, "Patitas Felices", got["nombre"])

	all, err := s.GetAll(ctx, "refugio")
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, s.Delete(ctx, "refugio", "r1"))
	_, err = s.GetByID(ctx, "refugio", "r1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteFlattensCompositeValues(t *testing.T) {
	ctx := context.Background()
	s := setupSQLite(t)

	rec := Record{"id_animal": "a1", "nombre": "Luna", "fotos": []string{"a.jpg", "b.jpg"}}
	require.NoError(t, s.Insert(ctx, "animal", rec))

	got, err := s.GetByID(ctx, "animal", "a1")
	require.NoError(t, err)
	assert.Equal(t, "Luna", got["nombre"])
}

func TestOpenFallsBackToMemory(t *testing.T) {
	// a directory path is not a usable database file
	s := Open(context.Background(), t.TempDir())
	_, ok := s.(*Memory)
	assert.True(t, ok)
}

package storage

import (
	"context"
	"sync"
)

// Memory is a map-backed store. Used as the full fallback when SQLite is
// unavailable and as the per-call cache inside the SQLite store.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]map[string]Record
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[string]map[string]Record)}
}

func (m *Memory) table(entity string) map[string]Record {
	t, ok := m.tables[entity]
	if !ok {
		t = make(map[string]Record)
		m.tables[entity] = t
	}
	return t
}

func (m *Memory) Insert(_ context.Context, entity string, rec Record) error {
	id, _ := rec[IDColumn(entity)].(string)
	if id == "" {
		return ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table(entity)[id] = clone(rec)
	return nil
}

func (m *Memory) Update(_ context.Context, entity, id string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.table(entity)
	if _, ok := t[id]; !ok {
		return ErrNotFound
	}
	next := clone(rec)
	next[IDColumn(entity)] = id
	t[id] = next
	return nil
}

func (m *Memory) Delete(_ context.Context, entity, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.table(entity)
	if _, ok := t[id]; !ok {
		return ErrNotFound
	}
	delete(t, id)
	return nil
}

func (m *Memory) GetAll(_ context.Context, entity string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t := m.tables[entity]
	out := make([]Record, 0, len(t))
	for _, rec := range t {
		out = append(out, clone(rec))
	}
	return out, nil
}

func (m *Memory) GetByID(_ context.Context, entity, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.tables[entity][id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(rec), nil
}

func (m *Memory) Close() error { return nil }

func clone(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

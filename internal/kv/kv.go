// Package kv implements the host's generic key-value persistence facility.
package kv

import (
	"context"
	"fmt"
	"sync"

	"github.com/starford/tscanvas/internal/apperr"
)

// Drivers accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Store loads and saves opaque blobs by key.
type Store interface {
	// Load returns the blob stored under key, or apperr.ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save replaces the blob stored under key.
	Save(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open opens a store with the named driver at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(path)
	case DriverBadger:
		return OpenBadger(path)
	default:
		return nil, fmt.Errorf("kv: unknown driver %q", driver)
	}
}

// Memory is an in-process Store.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Load implements Store.
func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Save implements Store.
func (m *Memory) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Close implements Store.
func (m *Memory) Close() error { return nil }

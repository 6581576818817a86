// Package settings loads, merges and saves the plugin configuration through the
// host's key-value persistence facility.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/starford/tscanvas/internal/apperr"
	"github.com/starford/tscanvas/internal/kv"
	"github.com/starford/tscanvas/internal/timefmt"
)

// Key is the KV key the configuration record is stored under.
const Key = "settings"

// Settings is the plugin configuration.
type Settings struct {
	DateFormat string `json:"dateFormat"`

	// Hidden is the hide/show state of timestamp overlays. It lives for the
	// process only and is never persisted.
	Hidden bool `json:"-"`
}

// Default returns the configuration used for absent fields.
func Default() Settings {
	return Settings{DateFormat: timefmt.DefaultPattern}
}

// Store holds the live configuration and writes every change back.
type Store struct {
	kv     kv.Store
	logger *slog.Logger

	mu  sync.RWMutex
	cur Settings

	// One writer drains pending; a burst of edits collapses to its last snapshot.
	wmu     sync.Mutex
	pending *Settings
	writing bool
	lastErr error
	writes  errgroup.Group
}

// Load reads the stored record and merges it over Default. A missing record
// yields the defaults.
func Load(ctx context.Context, store kv.Store, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cur := Default()
	data, err := store.Load(ctx, Key)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		logger.Info("settings: no stored record, using defaults")
	case err != nil:
		return nil, fmt.Errorf("settings: load: %w", err)
	default:
		// Unmarshal over the defaults so absent fields keep them.
		if err := json.Unmarshal(data, &cur); err != nil {
			return nil, fmt.Errorf("settings: decode: %w", err)
		}
	}
	return &Store{kv: store, logger: logger, cur: cur}, nil
}

// Get returns a copy of the current configuration.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// DateFormat returns the current stamp pattern.
func (s *Store) DateFormat() string {
	return s.Get().DateFormat
}

// SetDateFormat updates the pattern and persists the record. The write runs in
// the background; Flush waits for it.
func (s *Store) SetDateFormat(pattern string) {
	s.mu.Lock()
	s.cur.DateFormat = pattern
	snapshot := s.cur
	s.mu.Unlock()

	s.save(snapshot)
}

// Hidden reports whether overlays are currently hidden.
func (s *Store) Hidden() bool {
	return s.Get().Hidden
}

// ToggleHidden flips the hide/show flag and returns the new value.
func (s *Store) ToggleHidden() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Hidden = !s.cur.Hidden
	return s.cur.Hidden
}

// Flush waits for pending writes and returns the error of the latest one.
// A later successful write clears an earlier failure.
func (s *Store) Flush() error {
	_ = s.writes.Wait()
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.lastErr
}

// save queues snapshot behind any write in flight. Writes land in submission
// order and only the newest queued snapshot is written.
func (s *Store) save(snapshot Settings) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	s.pending = &snapshot
	if s.writing {
		return
	}
	s.writing = true
	s.writes.Go(s.drain)
}

func (s *Store) drain() error {
	for {
		s.wmu.Lock()
		next := s.pending
		s.pending = nil
		if next == nil {
			s.writing = false
			s.wmu.Unlock()
			return nil
		}
		s.wmu.Unlock()

		err := s.write(*next)
		s.wmu.Lock()
		s.lastErr = err
		s.wmu.Unlock()
	}
}

func (s *Store) write(snapshot Settings) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := s.kv.Save(context.Background(), Key, data); err != nil {
		s.logger.Error("settings: save failed", slog.String("error", err.Error()))
		return fmt.Errorf("settings: save: %w", err)
	}
	s.logger.Debug("settings: saved", slog.String("date_format", snapshot.DateFormat))
	return nil
}

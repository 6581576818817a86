// Package testutil provides shared test helpers for vaults, stores and the
// canvas event loop.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starford/tscanvas/internal/canvas"
	"github.com/starford/tscanvas/internal/kv"
	"github.com/starford/tscanvas/internal/models"
	"github.com/starford/tscanvas/internal/parser"
	"github.com/starford/tscanvas/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestVault creates a temporary vault directory with a storage provider.
func TestVault(t *testing.T) (string, *storage.FS) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	require.NoError(t, err)
	return vaultDir, store
}

// TestKV opens a temporary SQLite key-value store that is closed on cleanup.
func TestKV(t *testing.T) kv.Store {
	t.Helper()
	store, err := kv.Open(kv.DriverSQLite, filepath.Join(t.TempDir(), "plugin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// WriteCanvas encodes c into the vault at path.
func WriteCanvas(t *testing.T, store storage.Provider, path string, c *models.Canvas) {
	t.Helper()
	data, err := parser.Encode(c)
	require.NoError(t, err)
	require.NoError(t, store.Write(path, data))
}

// RunApp runs the host event loop until the test ends.
func RunApp(t *testing.T, app *canvas.App) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = app.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

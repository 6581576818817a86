package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/tscanvas/internal/apperr"
	"github.com/starford/tscanvas/internal/checksum"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	require.NoError(t, err)
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempVault(t)
	content := []byte(`{"nodes":[],"edges":[]}`)
	require.NoError(t, s.Write("board.canvas", content))
	got, err := s.Read("board.canvas")
	require.NoError(t, err)
	assert.Equal(t, string(content), string(got))
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempVault(t)
	require.NoError(t, s.Write("a/b/c.canvas", []byte("{}")))
	assert.FileExists(t, filepath.Join(s.Root(), "a", "b", "c.canvas"))
}

func TestReadMissingIsNotFound(t *testing.T) {
	s := tempVault(t)
	_, err := s.Read("nope.canvas")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, s.Delete("nope.canvas"), apperr.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("del.canvas", []byte("{}"))
	require.NoError(t, s.Delete("del.canvas"))
	_, err := s.Read("del.canvas")
	assert.Error(t, err, "reading a deleted file")
}

func TestListOnlyCanvasFiles(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("b.canvas", []byte("b"))
	_ = s.Write("sub/a.canvas", []byte("a"))
	_ = s.Write("notes.md", []byte("not a canvas"))

	items, err := s.List("")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b.canvas", items[0].Path)
	assert.Equal(t, "sub/a.canvas", items[1].Path)
	assert.Equal(t, checksum.Sum([]byte("b")), items[0].Checksum)
}

func TestTraversalBlocked(t *testing.T) {
	s := tempVault(t)
	for _, p := range []string{"../../etc/passwd", "../outside.canvas", "/etc/shadow"} {
		_, err := s.Read(p)
		assert.Error(t, err, "read %q", p)
		assert.Error(t, s.Write(p, []byte("x")), "write %q", p)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("atomic.canvas", []byte("original"))
	require.NoError(t, s.Write("atomic.canvas", []byte("updated")))
	got, _ := s.Read("atomic.canvas")
	assert.Equal(t, "updated", string(got))

	matches, _ := filepath.Glob(filepath.Join(s.Root(), tmpPattern))
	assert.Empty(t, matches, "leftover temp files")
}

func TestNewFS_Errors(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err, "non-existent dir")

	f, err := os.CreateTemp(t.TempDir(), "file-*")
	require.NoError(t, err)
	_ = f.Close()
	_, err = NewFS(f.Name())
	assert.Error(t, err, "root is a file")
}

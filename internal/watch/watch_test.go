package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(kind, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind+":"+path)
}

func (r *recorder) has(want string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == want {
			return true
		}
	}
	return false
}

func (r *recorder) count(want string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == want {
			n++
		}
	}
	return n
}

func startWatch(t *testing.T) (string, *recorder) {
	t.Helper()
	dir := t.TempDir()
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, dir, 50*time.Millisecond, slog.New(slog.NewJSONHandler(io.Discard, nil)), rec.record)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)
	return dir, rec
}

func TestWatch_WriteReportedOnce(t *testing.T) {
	dir, rec := startWatch(t)

	p := filepath.Join(dir, "board.canvas")
	_ = os.WriteFile(p, []byte("{}"), 0o644)
	_ = os.WriteFile(p, []byte(`{"nodes":[]}`), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644)

	assert.Eventually(t, func() bool {
		return rec.has(Changed + ":board.canvas")
	}, 5*time.Second, 25*time.Millisecond, "expected changed:board.canvas")
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, rec.count(Changed+":board.canvas"), "burst reported more than once")
	assert.False(t, rec.has(Changed+":notes.md"), "non-canvas file reported")
}

func TestWatch_NewDirAndRemove(t *testing.T) {
	dir, rec := startWatch(t)

	sub := filepath.Join(dir, "sub")
	_ = os.MkdirAll(sub, 0o755)
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(sub, "deep.canvas"), []byte("{}"), 0o644)

	assert.Eventually(t, func() bool {
		return rec.has(Changed + ":sub/deep.canvas")
	}, 5*time.Second, 25*time.Millisecond, "file in new subdir not reported")

	_ = os.Remove(filepath.Join(sub, "deep.canvas"))
	assert.Eventually(t, func() bool {
		return rec.has(Removed + ":sub/deep.canvas")
	}, 5*time.Second, 25*time.Millisecond, "removal not reported")
}

func TestWatch_RenameReportsBothPaths(t *testing.T) {
	dir, rec := startWatch(t)

	_ = os.WriteFile(filepath.Join(dir, "old.canvas"), []byte("{}"), 0o644)
	assert.Eventually(t, func() bool {
		return rec.has(Changed + ":old.canvas")
	}, 5*time.Second, 25*time.Millisecond, "initial write not reported")

	_ = os.Rename(filepath.Join(dir, "old.canvas"), filepath.Join(dir, "renamed.canvas"))
	assert.Eventually(t, func() bool {
		return rec.has(Removed+":old.canvas") && rec.has(Changed+":renamed.canvas")
	}, 5*time.Second, 25*time.Millisecond, "rename should report old removed and new changed")
}

package canvasservice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/tscanvas/internal/apperr"
	"github.com/starford/tscanvas/internal/canvas"
	"github.com/starford/tscanvas/internal/host"
	"github.com/starford/tscanvas/internal/models"
	"github.com/starford/tscanvas/internal/parser"
	"github.com/starford/tscanvas/internal/settings"
	"github.com/starford/tscanvas/internal/stamp"
	"github.com/starford/tscanvas/internal/storage"
	"github.com/starford/tscanvas/internal/testutil"
	"github.com/starford/tscanvas/internal/watch"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) PublishCanvas(kind, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind+":"+path)
}

func (r *recorder) PublishLayout(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "layout:"+path)
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

type env struct {
	svc      *Service
	store    *storage.FS
	dir      string
	settings *settings.Store
	events   *recorder
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir, store := testutil.TestVault(t)
	st, err := settings.Load(context.Background(), testutil.TestKV(t), testutil.Logger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Flush() })

	app := canvas.NewApp(testutil.Logger())
	testutil.RunApp(t, app)
	clock := func() time.Time { return time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC) }
	plugin := stamp.New(app.Workspace(), st, stamp.WithLogger(testutil.Logger()), stamp.WithClock(clock))

	rec := &recorder{}
	svc := New(app, store, plugin, st, rec, testutil.Logger())
	require.NoError(t, svc.Start(context.Background()))
	return &env{svc: svc, store: store, dir: dir, settings: st, events: rec}
}

func readCanvas(t *testing.T, store storage.Provider, path string) *models.Canvas {
	t.Helper()
	data, err := store.Read(path)
	require.NoError(t, err)
	c, err := parser.Parse(data)
	require.NoError(t, err)
	return c
}

func TestCreateNodeIsStampedAndSaved(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Create(ctx, "board.canvas")
	require.NoError(t, err)
	assert.True(t, e.events.has("opened:board.canvas"))

	nd, err := e.svc.CreateNode(ctx, "board.canvas", canvas.NodeOptions{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 10:05", nd.Extra[stamp.DataKey])

	saved := readCanvas(t, e.store, "board.canvas")
	require.Len(t, saved.Nodes, 1)
	assert.Equal(t, "2024-03-01 10:05", saved.Nodes[0].Extra[stamp.DataKey])

	html, err := e.svc.Render(ctx, "board.canvas")
	require.NoError(t, err)
	assert.Contains(t, html, `class="canvas-node-timestamp"`)
	assert.Contains(t, html, "2024-03-01 10:05")
	assert.True(t, e.events.has("layout:board.canvas"))
}

func TestCreateAlreadyExists(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.svc.Create(ctx, "board.canvas")
	require.NoError(t, err)
	_, err = e.svc.Create(ctx, "board.canvas")
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
	_, err = e.svc.Create(ctx, "notes.md")
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestOpenKeepsStoredStamps(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	testutil.WriteCanvas(t, e.store, "old.canvas", &models.Canvas{Nodes: []models.NodeData{
		{ID: "a", Type: "text", Width: 10, Height: 10, Extra: map[string]any{stamp.DataKey: "2020-01-01 00:00"}},
	}})

	d, err := e.svc.Open(ctx, "old.canvas")
	require.NoError(t, err)
	assert.Equal(t, "2020-01-01 00:00", d.Canvas.Nodes[0].Extra[stamp.DataKey], "loading does not restamp")

	html, err := e.svc.Render(ctx, "old.canvas")
	require.NoError(t, err)
	assert.Contains(t, html, "2020-01-01 00:00")
}

func TestMenuAndClick(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.svc.Create(ctx, "board.canvas")
	require.NoError(t, err)
	a, err := e.svc.CreateNode(ctx, "board.canvas", canvas.NodeOptions{})
	require.NoError(t, err)
	b, err := e.svc.CreateNode(ctx, "board.canvas", canvas.NodeOptions{X: 300})
	require.NoError(t, err)
	edge, err := e.svc.CreateEdge(ctx, "board.canvas", a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 10:05", edge.Extra[stamp.DataKey])

	items, err := e.svc.Menu(ctx, "board.canvas", Target{Kind: host.KindEdge, ID: edge.ID})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, MenuItem{Section: stamp.MenuSection, Title: stamp.TitleClear, Icon: stamp.IconClear}, items[0])

	require.NoError(t, e.svc.Click(ctx, "board.canvas", Target{Kind: host.KindNode, ID: a.ID}, stamp.TitleClear))
	saved := readCanvas(t, e.store, "board.canvas")
	for _, n := range saved.Nodes {
		if n.ID == a.ID {
			assert.Equal(t, "", n.Extra[stamp.DataKey])
		}
	}

	hidden, err := e.svc.ToggleTimestamps(ctx, "board.canvas")
	require.NoError(t, err)
	assert.True(t, hidden)
	html, err := e.svc.Render(ctx, "board.canvas")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(html, "canvas-node-timestamp-hide"))

	_, err = e.svc.Menu(ctx, "board.canvas", Target{Kind: host.KindNode, ID: "missing"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = e.svc.Menu(ctx, "board.canvas", Target{Kind: "group"})
	assert.ErrorIs(t, err, apperr.ErrInvalid)
	err = e.svc.Click(ctx, "board.canvas", Target{Kind: host.KindCanvas}, "Nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRemoveNodeAndClose(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.svc.Create(ctx, "board.canvas")
	require.NoError(t, err)
	n, err := e.svc.CreateNode(ctx, "board.canvas", canvas.NodeOptions{})
	require.NoError(t, err)

	require.NoError(t, e.svc.RemoveNode(ctx, "board.canvas", n.ID))
	assert.ErrorIs(t, e.svc.RemoveNode(ctx, "board.canvas", n.ID), apperr.ErrNotFound)
	assert.Empty(t, readCanvas(t, e.store, "board.canvas").Nodes)

	items, err := e.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Open)

	require.NoError(t, e.svc.Close(ctx, "board.canvas"))
	assert.ErrorIs(t, e.svc.Close(ctx, "board.canvas"), apperr.ErrNotFound)
	_, err = e.svc.Get(ctx, "board.canvas")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestSettings(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.svc.SetSetting("dateFormat", "DD.MM.YYYY"))
	assert.ErrorIs(t, e.svc.SetSetting("nope", "x"), apperr.ErrNotFound)
	assert.Equal(t, "DD.MM.YYYY", e.svc.Settings()[0].Value)

	_, err := e.svc.Create(ctx, "board.canvas")
	require.NoError(t, err)
	n, err := e.svc.CreateNode(ctx, "board.canvas", canvas.NodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "01.03.2024", n.Extra[stamp.DataKey])
}

func TestHandleFileEvent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.svc.Create(ctx, "board.canvas")
	require.NoError(t, err)
	_, err = e.svc.CreateNode(ctx, "board.canvas", canvas.NodeOptions{})
	require.NoError(t, err)

	// Our own write is ignored.
	e.svc.HandleFileEvent(ctx, watch.Changed, "board.canvas")
	d, err := e.svc.Get(ctx, "board.canvas")
	require.NoError(t, err)
	assert.Len(t, d.Canvas.Nodes, 1)

	// An external edit reloads the view.
	testutil.WriteCanvas(t, e.store, "board.canvas", &models.Canvas{})
	e.svc.HandleFileEvent(ctx, watch.Changed, "board.canvas")
	d, err = e.svc.Get(ctx, "board.canvas")
	require.NoError(t, err)
	assert.Empty(t, d.Canvas.Nodes)
	assert.True(t, e.events.has("updated:board.canvas"))

	require.NoError(t, os.Remove(filepath.Join(e.dir, "board.canvas")))
	e.svc.HandleFileEvent(ctx, watch.Removed, "board.canvas")
	_, err = e.svc.Get(ctx, "board.canvas")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.True(t, e.events.has("deleted:board.canvas"))
}

package stamp

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/tscanvas/internal/behavior"
	"github.com/starford/tscanvas/internal/canvas"
	"github.com/starford/tscanvas/internal/dom"
	"github.com/starford/tscanvas/internal/host"
	"github.com/starford/tscanvas/internal/intercept"
	"github.com/starford/tscanvas/internal/kv"
	"github.com/starford/tscanvas/internal/models"
	"github.com/starford/tscanvas/internal/readiness"
	"github.com/starford/tscanvas/internal/settings"
)

var march1 = time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC)

type harness struct {
	app      *canvas.App
	settings *settings.Store
	plugin   *Plugin
	now      time.Time
}

func quiet() *slog.Logger { return slog.New(slog.NewJSONHandler(io.Discard, nil)) }

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	store, err := settings.Load(context.Background(), kv.NewMemory(), quiet())
	require.NoError(t, err)
	h := &harness{app: canvas.NewApp(quiet()), settings: store, now: march1}
	opts = append([]Option{WithLogger(quiet()), WithClock(func() time.Time { return h.now })}, opts...)
	h.plugin = New(h.app.Workspace(), store, opts...)
	t.Cleanup(func() {
		h.plugin.Unload()
		_ = store.Flush()
	})
	return h
}

func (h *harness) open(data *models.Canvas) *canvas.Canvas {
	return h.app.Workspace().OpenCanvas("board.canvas", data).Container()
}

func (h *harness) start() {
	h.plugin.Load()
	h.app.Workspace().MarkLayoutReady()
}

func twoNodes() *models.Canvas {
	return &models.Canvas{Nodes: []models.NodeData{
		{ID: "a", Type: "text", X: 0, Y: 0, Width: 100, Height: 50},
		{ID: "b", Type: "text", X: 200, Y: 100, Width: 100, Height: 50},
	}}
}

func nodeOverlay(t *testing.T, n *canvas.Node) *dom.Element {
	t.Helper()
	found := n.Root().FindByClass(NodeOverlayClass)
	require.Len(t, found, 1, "node should carry exactly one overlay")
	return found[0]
}

func edgeOverlays(c *canvas.Canvas) []*dom.Element {
	return c.Root().FindByClass(EdgeOverlayClass)
}

func TestEndToEnd_NodeStampAndOverlay(t *testing.T) {
	h := newHarness(t)
	c := h.open(&models.Canvas{})
	h.start()
	require.True(t, h.plugin.Installed(host.KindCanvas))
	assert.False(t, h.plugin.Installed(host.KindNode), "no node exists yet")

	n := c.CreateTextNode(canvas.NodeOptions{Text: "hello"})

	assert.Equal(t, "2024-03-01 10:05", n.Data()[DataKey])
	assert.True(t, h.plugin.Installed(host.KindNode))
	assert.Equal(t, "2024-03-01 10:05", nodeOverlay(t, n).Text())
}

func TestNodeStampedBeforeFirstRender(t *testing.T) {
	h := newHarness(t)
	c := h.open(twoNodes())
	h.start()
	require.True(t, h.plugin.Installed(host.KindNode))

	var seen []string
	dispose, err := intercept.Install(h.app.Kind(host.KindNode), map[string]intercept.Factory{
		host.MethodRender: intercept.Before(quiet(), func(self any, _ []any) {
			seen = append(seen, Stamp(self.(host.Node)))
		}),
	}, quiet())
	require.NoError(t, err)
	defer dispose()

	c.CreateTextNode(canvas.NodeOptions{})
	require.Len(t, seen, 1)
	assert.NotEmpty(t, seen[0])
}

func TestRenderIsIdempotentAndTracksStamp(t *testing.T) {
	h := newHarness(t)
	c := h.open(twoNodes())
	h.start()

	a, _ := c.Node("a")
	assert.Equal(t, "", nodeOverlay(t, a).Text(), "loaded node without stamp renders blank")

	a.Data()[DataKey] = "manual"
	a.Render()
	a.Render()
	assert.Equal(t, "manual", nodeOverlay(t, a).Text())

	delete(a.Data(), DataKey)
	a.Render()
	assert.Equal(t, "", nodeOverlay(t, a).Text())
	assert.NotContains(t, a.Root().String(), "undefined")
}

func TestEdgeStampAndOverlayPosition(t *testing.T) {
	h := newHarness(t)
	c := h.open(twoNodes())
	h.start()

	a, _ := c.Node("a")
	b, _ := c.Node("b")
	e := c.CreateEdge(a, b)

	assert.Equal(t, "2024-03-01 10:05", Stamp(e))
	assert.True(t, h.plugin.Installed(host.KindEdge))

	overlays := edgeOverlays(c)
	require.Len(t, overlays, 1)
	assert.Equal(t, "2024-03-01 10:05", overlays[0].Text())
	assert.Equal(t, "translate(150px, 75px)", overlays[0].Style("transform"))
	assert.True(t, overlays[0].Parent().Is(c.Root()), "edge overlay lives on the container root")

	e.Render()
	assert.Len(t, edgeOverlays(c), 1, "re-render reuses the overlay")
}

func TestEdgeDestroyRemovesOverlay(t *testing.T) {
	h := newHarness(t)
	c := h.open(twoNodes())
	h.start()

	a, _ := c.Node("a")
	b, _ := c.Node("b")
	e := c.CreateEdge(a, b)
	require.Len(t, edgeOverlays(c), 1)

	e.Destroy()
	assert.Empty(t, edgeOverlays(c))
	_, tracked := h.plugin.overlays.get(e)
	assert.False(t, tracked)
	assert.Equal(t, len(c.Nodes()), h.plugin.overlays.size())
}

func TestNodeRemovalTakesOverlayAlong(t *testing.T) {
	h := newHarness(t)
	c := h.open(twoNodes())
	h.start()

	a, _ := c.Node("a")
	el := nodeOverlay(t, a)
	c.RemoveNode(a)
	assert.False(t, c.Root().Contains(el))

	_, tracked := h.plugin.overlays.get(a)
	assert.False(t, tracked, "removed node overlay is pruned")
	assert.Equal(t, 1, h.plugin.overlays.size())
}

func TestReopenAndCloseKeepOverlaysToLiveObjects(t *testing.T) {
	h := newHarness(t)
	withEdge := func() *models.Canvas {
		data := twoNodes()
		data.Edges = []models.EdgeData{{ID: "ab", FromNode: "a", ToNode: "b"}}
		return data
	}
	h.open(withEdge())
	h.start()
	ws := h.app.Workspace()
	ws.OpenCanvas("other.canvas", twoNodes())

	live := func() int {
		n := 0
		for _, v := range ws.OpenCanvases() {
			n += len(v.Canvas().Nodes()) + len(v.Canvas().Edges())
		}
		return n
	}
	require.Equal(t, 5, live())
	assert.Equal(t, live(), h.plugin.overlays.size())

	for i := 0; i < 5; i++ {
		c := h.open(withEdge())
		assert.Len(t, c.Root().FindByClass(NodeOverlayClass), 2)
		assert.Len(t, edgeOverlays(c), 1)
		assert.Equal(t, live(), h.plugin.overlays.size(), "reopen %d", i)
	}

	require.True(t, ws.CloseCanvas("other.canvas"))
	assert.Equal(t, 3, h.plugin.overlays.size())

	require.True(t, ws.CloseCanvas("board.canvas"))
	assert.Equal(t, 0, h.plugin.overlays.size())
}

func TestMenuClearAndUpdate(t *testing.T) {
	for _, kind := range []string{host.KindNode, host.KindEdge} {
		t.Run(kind, func(t *testing.T) {
			h := newHarness(t)
			c := h.open(twoNodes())
			h.start()

			a, _ := c.Node("a")
			b, _ := c.Node("b")
			var (
				obj  host.Object
				show func(*canvas.Menu)
			)
			if kind == host.KindNode {
				n := c.CreateTextNode(canvas.NodeOptions{})
				obj, show = n, n.ShowMenu
			} else {
				e := c.CreateEdge(a, b)
				obj, show = e, e.ShowMenu
			}
			require.NotEmpty(t, Stamp(obj))

			m := canvas.NewMenu()
			show(m)
			titles := make([]string, 0, len(m.Items()))
			for _, it := range m.Items() {
				titles = append(titles, it.Title())
			}
			assert.Equal(t, []string{TitleClear, TitleUpdate, "Delete"}, titles)
			assert.Equal(t, MenuSection, m.Items()[0].Section())
			assert.Equal(t, IconClear, m.Items()[0].Icon())
			assert.Equal(t, IconUpdate, m.Items()[1].Icon())

			require.NoError(t, m.Click(TitleClear))
			assert.Equal(t, "", Stamp(obj))
			require.NoError(t, m.Click(TitleClear), "clearing an empty stamp is a no-op")
			assert.Equal(t, "", Stamp(obj))

			h.now = march1.Add(26 * time.Hour)
			require.NoError(t, m.Click(TitleUpdate))
			assert.Equal(t, "2024-03-02 12:05", Stamp(obj))
			require.NoError(t, m.Click(TitleUpdate))
			assert.Equal(t, "2024-03-02 12:05", Stamp(obj))
		})
	}
}

func TestToggleTwiceRestoresVisibility(t *testing.T) {
	h := newHarness(t)
	c := h.open(twoNodes())
	h.start()

	a, _ := c.Node("a")
	b, _ := c.Node("b")
	c.CreateEdge(a, b)

	m := canvas.NewMenu()
	c.ShowQuickSettingsMenu(m)
	require.Len(t, m.Items(), 1)
	assert.Equal(t, TitleToggle, m.Items()[0].Title())
	assert.Equal(t, IconToggle, m.Items()[0].Icon())

	all := func() []*dom.Element {
		return append(c.Root().FindByClass(NodeOverlayClass), edgeOverlays(c)...)
	}
	require.Len(t, all(), 3)

	require.NoError(t, m.Click(TitleToggle))
	assert.True(t, h.settings.Hidden())
	for _, el := range all() {
		assert.True(t, el.HasClass(HideClass))
	}

	late := c.CreateTextNode(canvas.NodeOptions{})
	assert.True(t, nodeOverlay(t, late).HasClass(HideClass), "new overlays honor the flag")

	require.NoError(t, m.Click(TitleToggle))
	assert.False(t, h.settings.Hidden())
	for _, el := range all() {
		assert.False(t, el.HasClass(HideClass))
	}
}

func TestUnloadRestoresOriginals(t *testing.T) {
	h := newHarness(t)
	originals := map[string]map[string]*behavior.Method{}
	for _, kind := range []string{host.KindCanvas, host.KindNode, host.KindEdge} {
		table := h.app.Kind(kind)
		originals[kind] = map[string]*behavior.Method{}
		for _, name := range table.Names() {
			originals[kind][name] = table.Lookup(name)
		}
	}

	c := h.open(twoNodes())
	h.start()
	a, _ := c.Node("a")
	b, _ := c.Node("b")
	c.CreateEdge(a, b)
	require.True(t, h.plugin.Installed(host.KindEdge))
	assert.NotSame(t, originals[host.KindNode][host.MethodRender], h.app.Kind(host.KindNode).Lookup(host.MethodRender))

	h.plugin.Unload()

	for kind, methods := range originals {
		for name, m := range methods {
			assert.Same(t, m, h.app.Kind(kind).Lookup(name), "%s.%s", kind, name)
		}
	}
	assert.Empty(t, c.Root().FindByClass(NodeOverlayClass))
	assert.Empty(t, edgeOverlays(c))

	n := c.CreateTextNode(canvas.NodeOptions{})
	assert.Empty(t, Stamp(n), "unloaded plugin no longer stamps")
}

func TestReloadPatchesAgain(t *testing.T) {
	h := newHarness(t)
	c := h.open(twoNodes())
	h.start()
	h.plugin.Unload()
	h.plugin.Load()

	assert.True(t, h.plugin.Installed(host.KindCanvas))
	assert.True(t, h.plugin.Installed(host.KindNode))
	a, _ := c.Node("a")
	nodeOverlay(t, a)
}

func TestWaitsForCanvas(t *testing.T) {
	h := newHarness(t)
	h.start()
	require.Len(t, h.plugin.pollers, 3)
	for _, p := range h.plugin.pollers {
		assert.Equal(t, readiness.Waiting, p.State())
	}
	assert.False(t, h.plugin.Installed(host.KindCanvas))

	c := h.open(twoNodes())
	assert.True(t, h.plugin.Installed(host.KindCanvas))
	assert.True(t, h.plugin.Installed(host.KindNode))
	assert.False(t, h.plugin.Installed(host.KindEdge))

	a, _ := c.Node("a")
	nodeOverlay(t, a)
}

func TestUnloadBeforeLayoutReady(t *testing.T) {
	h := newHarness(t)
	h.open(twoNodes())
	h.plugin.Load()
	h.plugin.Unload()
	h.app.Workspace().MarkLayoutReady()
	assert.Empty(t, h.plugin.pollers)
	assert.False(t, h.plugin.Installed(host.KindCanvas))
}

func TestDateFormatChangeAppliesToNextStamp(t *testing.T) {
	h := newHarness(t)
	c := h.open(&models.Canvas{})
	h.start()

	h.settings.SetDateFormat("DD/MM/YYYY")
	n := c.CreateTextNode(canvas.NodeOptions{})
	assert.Equal(t, "01/03/2024", Stamp(n))
}

func TestEdgeLabelVariant(t *testing.T) {
	h := newHarness(t, WithEdgeLabels())
	c := h.open(twoNodes())
	h.start()

	a, _ := c.Node("a")
	b, _ := c.Node("b")
	e := c.CreateEdge(a, b)
	assert.Equal(t, "2024-03-01 10:05", e.Label())
	assert.Empty(t, Stamp(e))
	assert.Empty(t, edgeOverlays(c))

	m := canvas.NewMenu()
	e.ShowMenu(m)
	require.NoError(t, m.Click(TitleClear))
	assert.Equal(t, "", e.Label())
}

func TestStampsPersistThroughSnapshot(t *testing.T) {
	h := newHarness(t)
	c := h.open(&models.Canvas{})
	h.start()

	n := c.CreateTextNode(canvas.NodeOptions{})
	snap := c.Snapshot()
	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, n.ID(), snap.Nodes[0].ID)
	assert.Equal(t, "2024-03-01 10:05", snap.Nodes[0].Extra[DataKey])
}

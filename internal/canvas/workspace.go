package canvas

import (
	"sort"

	"github.com/starford/tscanvas/internal/host"
	"github.com/starford/tscanvas/internal/models"
)

// Workspace holds the open canvas views and reports layout changes.
type Workspace struct {
	app   *App
	views []*View

	subs    map[int]func()
	nextSub int

	ready    bool
	onReady  []func()
	changing bool
	pending  bool
}

func newWorkspace(app *App) *Workspace {
	return &Workspace{app: app, subs: make(map[int]func())}
}

// View is an open canvas leaf.
type View struct {
	path      string
	workspace *Workspace
	canvas    *Canvas
}

// Path returns the vault path the view shows.
func (v *View) Path() string { return v.path }

// Canvas implements host.View.
func (v *View) Canvas() host.Canvas { return v.canvas }

// Container returns the concrete canvas of the view.
func (v *View) Container() *Canvas { return v.canvas }

// Rebuild re-renders every node and edge and reports a layout change.
func (v *View) Rebuild() {
	for _, n := range v.canvas.sortedNodes() {
		n.Render()
	}
	for _, e := range v.canvas.sortedEdges() {
		e.Render()
	}
	v.workspace.changed()
}

// OpenCanvas opens path with content data, replacing a view already showing it.
// Loaded nodes and edges are inserted directly; they do not go through addNode
// or addEdge.
func (w *Workspace) OpenCanvas(path string, data *models.Canvas) *View {
	v := &View{path: path, workspace: w}
	v.canvas = newCanvas(w.app, v)
	v.canvas.load(data)

	replaced := false
	for i, existing := range w.views {
		if existing.path == path {
			existing.canvas.root.Remove()
			w.views[i] = v
			replaced = true
			break
		}
	}
	if !replaced {
		w.views = append(w.views, v)
	}
	v.Rebuild()
	return v
}

// CloseCanvas closes the view showing path.
func (w *Workspace) CloseCanvas(path string) bool {
	for i, v := range w.views {
		if v.path == path {
			v.canvas.root.Remove()
			w.views = append(w.views[:i], w.views[i+1:]...)
			w.changed()
			return true
		}
	}
	return false
}

// View returns the view showing path.
func (w *Workspace) View(path string) (*View, bool) {
	for _, v := range w.views {
		if v.path == path {
			return v, true
		}
	}
	return nil, false
}

// Views returns the open views sorted by path.
func (w *Workspace) Views() []*View {
	out := append([]*View(nil), w.views...)
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out
}

// ActiveCanvas implements host.Workspace. The first opened view is the active one.
func (w *Workspace) ActiveCanvas() (host.View, bool) {
	if len(w.views) == 0 {
		return nil, false
	}
	return w.views[0], true
}

// OpenCanvases implements host.Workspace.
func (w *Workspace) OpenCanvases() []host.View {
	out := make([]host.View, len(w.views))
	for i, v := range w.views {
		out[i] = v
	}
	return out
}

// OnLayoutChanged implements host.Workspace.
func (w *Workspace) OnLayoutChanged(fn func()) func() {
	id := w.nextSub
	w.nextSub++
	w.subs[id] = fn
	return func() { delete(w.subs, id) }
}

// OnLayoutReady implements host.Workspace.
func (w *Workspace) OnLayoutReady(fn func()) {
	if w.ready {
		fn()
		return
	}
	w.onReady = append(w.onReady, fn)
}

// MarkLayoutReady runs the OnLayoutReady callbacks. Later calls do nothing.
func (w *Workspace) MarkLayoutReady() {
	if w.ready {
		return
	}
	w.ready = true
	fns := w.onReady
	w.onReady = nil
	for _, fn := range fns {
		fn()
	}
}

// changed notifies layout subscribers. A change reported while subscribers are
// running is delivered once after they return.
func (w *Workspace) changed() {
	if w.changing {
		w.pending = true
		return
	}
	w.changing = true
	defer func() { w.changing = false }()
	for {
		w.pending = false
		ids := make([]int, 0, len(w.subs))
		for id := range w.subs {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			if fn, ok := w.subs[id]; ok {
				fn()
			}
		}
		if !w.pending {
			return
		}
	}
}

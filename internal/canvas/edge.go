package canvas

import (
	"github.com/starford/tscanvas/internal/behavior"
	"github.com/starford/tscanvas/internal/dom"
	"github.com/starford/tscanvas/internal/host"
	"github.com/starford/tscanvas/internal/models"
)

// Edge connects two nodes of the same canvas.
type Edge struct {
	canvas   *Canvas
	id       string
	from, to *Node
	fromSide string
	toSide   string
	label    string
	data     map[string]any

	path    *dom.Element
	labelEl *dom.Element
}

func newEdge(c *Canvas, ed models.EdgeData, from, to *Node) *Edge {
	data := make(map[string]any, len(ed.Extra))
	for k, v := range ed.Extra {
		data[k] = v
	}
	path := dom.New("div", "canvas-edge")
	path.SetAttr("data-id", ed.ID)
	return &Edge{
		canvas:   c,
		id:       ed.ID,
		from:     from,
		to:       to,
		fromSide: ed.FromSide,
		toSide:   ed.ToSide,
		label:    ed.Label,
		data:     data,
		path:     path,
		labelEl:  path.CreateDiv("canvas-edge-label"),
	}
}

// ID returns the edge id.
func (e *Edge) ID() string { return e.id }

// From returns the source node.
func (e *Edge) From() *Node { return e.from }

// To returns the target node.
func (e *Edge) To() *Node { return e.to }

// Behavior implements host.Object.
func (e *Edge) Behavior() *behavior.Table { return e.canvas.app.edgeKind }

// Data implements host.Object.
func (e *Edge) Data() map[string]any { return e.data }

// Canvas implements host.Edge.
func (e *Edge) Canvas() host.Canvas { return e.canvas }

// Label implements host.Edge.
func (e *Edge) Label() string { return e.label }

// SetLabel implements host.Edge.
func (e *Edge) SetLabel(label string) { e.label = label }

// Center implements host.Edge: the midpoint between the two node centres.
func (e *Edge) Center() host.Point {
	a, b := e.from.Center(), e.to.Center()
	return host.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Render dispatches render.
func (e *Edge) Render() {
	e.Behavior().Call(host.MethodRender, e)
}

// ShowMenu dispatches showMenu into m.
func (e *Edge) ShowMenu(m *Menu) {
	e.Behavior().Call(host.MethodShowMenu, e, m)
}

// Destroy dispatches destroy.
func (e *Edge) Destroy() {
	e.Behavior().Call(host.MethodDestroy, e)
}

func (e *Edge) snapshot() models.EdgeData {
	extra := make(map[string]any, len(e.data))
	for k, v := range e.data {
		extra[k] = v
	}
	return models.EdgeData{
		ID:       e.id,
		FromNode: e.from.id,
		ToNode:   e.to.id,
		FromSide: e.fromSide,
		ToSide:   e.toSide,
		Label:    e.label,
		Extra:    extra,
	}
}

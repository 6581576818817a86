package canvas

import (
	"github.com/starford/tscanvas/internal/behavior"
	"github.com/starford/tscanvas/internal/dom"
	"github.com/starford/tscanvas/internal/host"
	"github.com/starford/tscanvas/internal/models"
)

// Node is a text box on a canvas.
type Node struct {
	canvas *Canvas
	id     string
	kind   string
	text   string
	x, y   float64
	w, h   float64
	data   map[string]any

	root    *dom.Element
	content *dom.Element
}

func newNode(c *Canvas, nd models.NodeData) *Node {
	data := make(map[string]any, len(nd.Extra))
	for k, v := range nd.Extra {
		data[k] = v
	}
	root := dom.New("div", "canvas-node")
	root.SetAttr("data-id", nd.ID)
	return &Node{
		canvas:  c,
		id:      nd.ID,
		kind:    nd.Type,
		text:    nd.Text,
		x:       nd.X,
		y:       nd.Y,
		w:       nd.Width,
		h:       nd.Height,
		data:    data,
		root:    root,
		content: root.CreateDiv("canvas-node-content"),
	}
}

// ID returns the node id.
func (n *Node) ID() string { return n.id }

// Text returns the node text.
func (n *Node) Text() string { return n.text }

// SetText replaces the node text. It shows on the next render.
func (n *Node) SetText(s string) { n.text = s }

// Behavior implements host.Object.
func (n *Node) Behavior() *behavior.Table { return n.canvas.app.nodeKind }

// Data implements host.Object.
func (n *Node) Data() map[string]any { return n.data }

// Root implements host.Node.
func (n *Node) Root() *dom.Element { return n.root }

// Canvas implements host.Node.
func (n *Node) Canvas() host.Canvas { return n.canvas }

// Center returns the centre of the node box.
func (n *Node) Center() host.Point {
	return host.Point{X: n.x + n.w/2, Y: n.y + n.h/2}
}

// Render dispatches render.
func (n *Node) Render() {
	n.Behavior().Call(host.MethodRender, n)
}

// ShowMenu dispatches showMenu into m.
func (n *Node) ShowMenu(m *Menu) {
	n.Behavior().Call(host.MethodShowMenu, n, m)
}

func (n *Node) snapshot() models.NodeData {
	extra := make(map[string]any, len(n.data))
	for k, v := range n.data {
		extra[k] = v
	}
	return models.NodeData{
		ID:     n.id,
		Type:   n.kind,
		Text:   n.text,
		X:      n.x,
		Y:      n.y,
		Width:  n.w,
		Height: n.h,
		Extra:  extra,
	}
}

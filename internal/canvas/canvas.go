package canvas

import (
	"sort"

	"github.com/starford/tscanvas/internal/behavior"
	"github.com/starford/tscanvas/internal/dom"
	"github.com/starford/tscanvas/internal/host"
	"github.com/starford/tscanvas/internal/models"
)

// Canvas is the container of nodes and edges of one view.
type Canvas struct {
	app  *App
	view *View
	root *dom.Element

	nodes map[string]*Node
	edges map[string]*Edge
}

func newCanvas(app *App, view *View) *Canvas {
	return &Canvas{
		app:   app,
		view:  view,
		root:  dom.New("div", "canvas"),
		nodes: make(map[string]*Node),
		edges: make(map[string]*Edge),
	}
}

// Behavior implements host.Canvas.
func (c *Canvas) Behavior() *behavior.Table { return c.app.canvasKind }

// Root implements host.Canvas.
func (c *Canvas) Root() *dom.Element { return c.root }

// Nodes implements host.Canvas.
func (c *Canvas) Nodes() []host.Node {
	sorted := c.sortedNodes()
	out := make([]host.Node, len(sorted))
	for i, n := range sorted {
		out[i] = n
	}
	return out
}

// Edges implements host.Canvas.
func (c *Canvas) Edges() []host.Edge {
	sorted := c.sortedEdges()
	out := make([]host.Edge, len(sorted))
	for i, e := range sorted {
		out[i] = e
	}
	return out
}

// Node returns the node with id.
func (c *Canvas) Node(id string) (*Node, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// Edge returns the edge with id.
func (c *Canvas) Edge(id string) (*Edge, bool) {
	e, ok := c.edges[id]
	return e, ok
}

// NodeOptions describes a text node to create.
type NodeOptions struct {
	Text   string
	X, Y   float64
	Width  float64
	Height float64
}

// CreateTextNode builds a text node and adds it through addNode.
func (c *Canvas) CreateTextNode(opts NodeOptions) *Node {
	if opts.Width <= 0 {
		opts.Width = 250
	}
	if opts.Height <= 0 {
		opts.Height = 60
	}
	n := newNode(c, models.NodeData{
		ID:     newID(),
		Type:   "text",
		Text:   opts.Text,
		X:      opts.X,
		Y:      opts.Y,
		Width:  opts.Width,
		Height: opts.Height,
	})
	c.AddNode(n)
	return n
}

// CreateEdge builds an edge between two nodes and adds it through addEdge.
func (c *Canvas) CreateEdge(from, to *Node) *Edge {
	e := newEdge(c, models.EdgeData{ID: newID(), FromNode: from.id, ToNode: to.id}, from, to)
	c.AddEdge(e)
	return e
}

// AddNode dispatches addNode.
func (c *Canvas) AddNode(n *Node) {
	c.Behavior().Call(host.MethodAddNode, c, n)
}

// AddEdge dispatches addEdge.
func (c *Canvas) AddEdge(e *Edge) {
	c.Behavior().Call(host.MethodAddEdge, c, e)
}

// ShowQuickSettingsMenu dispatches showQuickSettingsMenu into m.
func (c *Canvas) ShowQuickSettingsMenu(m *Menu) {
	c.Behavior().Call(host.MethodShowQuickSettingsMenu, c, m)
}

// RemoveNode deletes n and every edge attached to it.
func (c *Canvas) RemoveNode(n *Node) {
	for _, e := range c.sortedEdges() {
		if e.from == n || e.to == n {
			e.Destroy()
		}
	}
	n.root.Remove()
	delete(c.nodes, n.id)
	c.view.workspace.changed()
}

// Snapshot returns the canvas as file content, extension data included.
func (c *Canvas) Snapshot() *models.Canvas {
	out := &models.Canvas{
		Nodes: make([]models.NodeData, 0, len(c.nodes)),
		Edges: make([]models.EdgeData, 0, len(c.edges)),
	}
	for _, n := range c.sortedNodes() {
		out.Nodes = append(out.Nodes, n.snapshot())
	}
	for _, e := range c.sortedEdges() {
		out.Edges = append(out.Edges, e.snapshot())
	}
	return out
}

func (c *Canvas) load(data *models.Canvas) {
	if data == nil {
		return
	}
	for _, nd := range data.Nodes {
		c.nodes[nd.ID] = newNode(c, nd)
	}
	for _, ed := range data.Edges {
		from, okFrom := c.nodes[ed.FromNode]
		to, okTo := c.nodes[ed.ToNode]
		if !okFrom || !okTo {
			c.app.logger.Warn("canvas: dropping dangling edge", "edge", ed.ID)
			continue
		}
		c.edges[ed.ID] = newEdge(c, ed, from, to)
	}
}

func (c *Canvas) sortedNodes() []*Node {
	out := make([]*Node, 0, len(c.nodes))
	for _, n := range c.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (c *Canvas) sortedEdges() []*Edge {
	out := make([]*Edge, 0, len(c.edges))
	for _, e := range c.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

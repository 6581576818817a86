// Package host declares what the timestamp plugin needs from the canvas editor
// it augments. The editor owns every object behind these interfaces.
package host

import (
	"github.com/starford/tscanvas/internal/behavior"
	"github.com/starford/tscanvas/internal/dom"
)

// Method names on the shared behavior tables.
const (
	// Canvas container.
	MethodAddNode               = "addNode"
	MethodAddEdge               = "addEdge"
	MethodShowQuickSettingsMenu = "showQuickSettingsMenu"

	// Nodes and edges.
	MethodRender   = "render"
	MethodShowMenu = "showMenu"

	// Edges only.
	MethodDestroy = "destroy"
)

// Kind names of the behavior tables.
const (
	KindCanvas = "canvas"
	KindNode   = "node"
	KindEdge   = "edge"
)

// Point is a position in canvas coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Workspace is the editor's layout manager.
type Workspace interface {
	// ActiveCanvas returns the first open canvas view.
	ActiveCanvas() (View, bool)
	// OpenCanvases returns every open canvas view.
	OpenCanvases() []View
	// OnLayoutChanged calls fn after every layout change until unsubscribed.
	OnLayoutChanged(fn func()) (unsubscribe func())
	// OnLayoutReady calls fn once the initial layout is built. If it already is,
	// fn runs immediately.
	OnLayoutReady(fn func())
}

// View is an open canvas leaf.
type View interface {
	Canvas() Canvas
	// Rebuild re-renders every node and edge of the view.
	Rebuild()
}

// Object is anything dispatching through a shared behavior table and carrying
// an extension-data slot.
type Object interface {
	Behavior() *behavior.Table
	// Data is the generic extension-data slot. It is never nil and is persisted
	// with the object.
	Data() map[string]any
}

// Canvas is the graphical container of nodes and edges.
type Canvas interface {
	Behavior() *behavior.Table
	Nodes() []Node
	Edges() []Edge
	Root() *dom.Element
}

// Node is a box on the canvas.
type Node interface {
	Object
	Root() *dom.Element
	Canvas() Canvas
}

// Edge connects two nodes. It has no box of its own, only a centre point.
type Edge interface {
	Object
	Canvas() Canvas
	Center() Point
	Label() string
	SetLabel(label string)
}

// Menu collects items for a context or quick-settings menu.
type Menu interface {
	AddItem(build func(MenuItem))
}

// MenuItem is configured by the builder passed to Menu.AddItem.
type MenuItem interface {
	SetSection(section string) MenuItem
	SetTitle(title string) MenuItem
	SetIcon(icon string) MenuItem
	OnClick(fn func()) MenuItem
}

package stamp

import (
	"github.com/starford/tscanvas/internal/dom"
	"github.com/starford/tscanvas/internal/host"
)

// Overlay classes.
const (
	NodeOverlayClass = "canvas-node-timestamp"
	EdgeOverlayClass = "canvas-edge-timestamp"
	HideClass        = "canvas-node-timestamp-hide"
)

// DataKey is the extension-data key holding an object's stamp.
const DataKey = "timestamp"

// Stamp returns the stamp stored in obj's extension data, or "" when there is none.
func Stamp(obj host.Object) string {
	s, _ := obj.Data()[DataKey].(string)
	return s
}

func setStamp(obj host.Object, s string) {
	obj.Data()[DataKey] = s
}

// overlays maps foreign objects to the overlay element created for them.
type overlays struct {
	entries map[host.Object]*dom.Element
}

func newOverlays() *overlays {
	return &overlays{entries: make(map[host.Object]*dom.Element)}
}

func (o *overlays) get(obj host.Object) (*dom.Element, bool) {
	el, ok := o.entries[obj]
	return el, ok
}

// ensure returns the overlay of obj under parent, creating it when missing or
// when it is no longer parented there.
func (o *overlays) ensure(obj host.Object, parent *dom.Element, class string, hidden bool) *dom.Element {
	if el, ok := o.entries[obj]; ok {
		if p := el.Parent(); p != nil && p.Is(parent) {
			return el
		}
		el.Remove()
	}
	el := parent.CreateDiv(class)
	el.ToggleClass(HideClass, hidden)
	o.entries[obj] = el
	return el
}

// drop removes the overlay of obj from the document and forgets it.
func (o *overlays) drop(obj host.Object) bool {
	el, ok := o.entries[obj]
	if !ok {
		return false
	}
	el.Remove()
	delete(o.entries, obj)
	return true
}

// prune removes the overlays of objects not in live. Removed nodes, destroyed
// edges and everything of a closed or reloaded view fall out here.
func (o *overlays) prune(live map[host.Object]bool) int {
	n := 0
	for obj, el := range o.entries {
		if !live[obj] {
			el.Remove()
			delete(o.entries, obj)
			n++
		}
	}
	return n
}

func (o *overlays) clear() {
	for obj, el := range o.entries {
		el.Remove()
		delete(o.entries, obj)
	}
}

func (o *overlays) size() int { return len(o.entries) }

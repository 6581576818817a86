package stamp

import (
	"github.com/starford/tscanvas/internal/host"
	"github.com/starford/tscanvas/internal/intercept"
)

func (p *Plugin) nodeWrappers() map[string]intercept.Factory {
	return map[string]intercept.Factory{
		host.MethodRender:   intercept.After(p.logger, p.afterNodeRender),
		host.MethodShowMenu: intercept.Before(p.logger, p.beforeShowMenu),
	}
}

// afterNodeRender syncs the node overlay with the stored stamp. The overlay is
// a child of the node root, so it goes away with the node.
func (p *Plugin) afterNodeRender(self any, _ []any) {
	n, ok := self.(host.Node)
	if !ok {
		return
	}
	el := p.overlays.ensure(n, n.Root(), NodeOverlayClass, p.settings.Hidden())
	el.SetText(Stamp(n))
}

// beforeShowMenu adds the clear/update actions for nodes and edges.
// Neither action re-renders; the next render picks the new value up.
func (p *Plugin) beforeShowMenu(self any, args []any) {
	m, ok := arg[host.Menu](args)
	if !ok {
		return
	}
	get, set, ok := p.accessor(self)
	if !ok {
		return
	}
	m.AddItem(func(it host.MenuItem) {
		it.SetSection(MenuSection).
			SetTitle(TitleClear).
			SetIcon(IconClear).
			OnClick(func() {
				if get() != "" {
					set("")
				}
			})
	})
	m.AddItem(func(it host.MenuItem) {
		it.SetSection(MenuSection).
			SetTitle(TitleUpdate).
			SetIcon(IconUpdate).
			OnClick(func() { set(p.Now()) })
	})
}

// accessor returns how the stamp of obj is read and written.
func (p *Plugin) accessor(obj any) (get func() string, set func(string), ok bool) {
	if e, isEdge := obj.(host.Edge); isEdge && p.edgeLabels {
		return e.Label, e.SetLabel, true
	}
	o, isObj := obj.(host.Object)
	if !isObj {
		return nil, nil, false
	}
	return func() string { return Stamp(o) }, func(s string) { setStamp(o, s) }, true
}

package stamp

import (
	"log/slog"

	"github.com/starford/tscanvas/internal/host"
	"github.com/starford/tscanvas/internal/intercept"
)

func (p *Plugin) containerWrappers() map[string]intercept.Factory {
	return map[string]intercept.Factory{
		host.MethodAddNode:               intercept.Before(p.logger, p.beforeAddNode),
		host.MethodAddEdge:               intercept.Before(p.logger, p.beforeAddEdge),
		host.MethodShowQuickSettingsMenu: intercept.Before(p.logger, p.beforeQuickSettings),
	}
}

// beforeAddNode stamps a node being created. Creation always overwrites.
func (p *Plugin) beforeAddNode(_ any, args []any) {
	n, ok := arg[host.Node](args)
	if !ok {
		return
	}
	setStamp(n, p.Now())
}

func (p *Plugin) beforeAddEdge(_ any, args []any) {
	e, ok := arg[host.Edge](args)
	if !ok {
		return
	}
	if p.edgeLabels {
		e.SetLabel(p.Now())
		return
	}
	setStamp(e, p.Now())
}

func (p *Plugin) beforeQuickSettings(self any, args []any) {
	c, ok := self.(host.Canvas)
	if !ok {
		return
	}
	m, ok := arg[host.Menu](args)
	if !ok {
		return
	}
	m.AddItem(func(it host.MenuItem) {
		it.SetSection(MenuSection).
			SetTitle(TitleToggle).
			SetIcon(IconToggle).
			OnClick(func() { p.ToggleHidden(c) })
	})
}

// ToggleHidden flips the hide/show flag and applies it to every overlay of c.
// Objects without an overlay are skipped. It returns the new flag.
func (p *Plugin) ToggleHidden(c host.Canvas) bool {
	hidden := p.settings.ToggleHidden()
	p.sweep()
	for _, n := range c.Nodes() {
		if el, ok := p.overlays.get(n); ok {
			el.ToggleClass(HideClass, hidden)
		}
	}
	for _, e := range c.Edges() {
		if el, ok := p.overlays.get(e); ok {
			el.ToggleClass(HideClass, hidden)
		}
	}
	p.logger.Info("stamp: toggled overlays", slog.Bool("hidden", hidden))
	return hidden
}

func arg[T any](args []any) (T, bool) {
	var zero T
	if len(args) == 0 {
		return zero, false
	}
	v, ok := args[0].(T)
	return v, ok
}

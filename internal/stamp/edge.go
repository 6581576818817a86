package stamp

import (
	"strconv"

	"github.com/starford/tscanvas/internal/host"
	"github.com/starford/tscanvas/internal/intercept"
)

func (p *Plugin) edgeWrappers() map[string]intercept.Factory {
	w := map[string]intercept.Factory{
		host.MethodShowMenu: intercept.Before(p.logger, p.beforeShowMenu),
	}
	if !p.edgeLabels {
		w[host.MethodRender] = intercept.After(p.logger, p.afterEdgeRender)
		w[host.MethodDestroy] = intercept.Before(p.logger, p.beforeEdgeDestroy)
	}
	return w
}

// afterEdgeRender places the edge overlay on the container root at the edge
// centre. Edges have no root of their own.
func (p *Plugin) afterEdgeRender(self any, _ []any) {
	e, ok := self.(host.Edge)
	if !ok {
		return
	}
	el := p.overlays.ensure(e, e.Canvas().Root(), EdgeOverlayClass, p.settings.Hidden())
	el.SetStyle("transform", translate(e.Center()))
	el.SetText(Stamp(e))
}

// beforeEdgeDestroy removes the overlay; destroying an edge does not touch the
// container root.
func (p *Plugin) beforeEdgeDestroy(self any, _ []any) {
	if e, ok := self.(host.Edge); ok {
		p.overlays.drop(e)
	}
}

func translate(pt host.Point) string {
	return "translate(" + px(pt.X) + ", " + px(pt.Y) + ")"
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

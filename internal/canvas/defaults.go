package canvas

import (
	"strconv"

	"github.com/starford/tscanvas/internal/behavior"
	"github.com/starford/tscanvas/internal/host"
)

func defineCanvasBehavior(t *behavior.Table) {
	t.Define(host.MethodAddNode, func(self any, args ...any) any {
		c := self.(*Canvas)
		n := args[0].(*Node)
		c.nodes[n.id] = n
		c.view.workspace.changed()
		n.Render()
		return nil
	})
	t.Define(host.MethodAddEdge, func(self any, args ...any) any {
		c := self.(*Canvas)
		e := args[0].(*Edge)
		c.edges[e.id] = e
		c.view.workspace.changed()
		e.Render()
		return nil
	})
	t.Define(host.MethodShowQuickSettingsMenu, func(any, ...any) any { return nil })
}

func defineNodeBehavior(t *behavior.Table) {
	t.Define(host.MethodRender, func(self any, _ ...any) any {
		n := self.(*Node)
		if n.root.Parent() == nil || !n.root.Parent().Is(n.canvas.root) {
			n.canvas.root.Append(n.root)
		}
		n.root.SetStyle("left", px(n.x))
		n.root.SetStyle("top", px(n.y))
		n.root.SetStyle("width", px(n.w))
		n.root.SetStyle("height", px(n.h))
		n.content.SetText(n.text)
		return nil
	})
	t.Define(host.MethodShowMenu, func(self any, args ...any) any {
		n := self.(*Node)
		m := args[0].(host.Menu)
		m.AddItem(func(it host.MenuItem) {
			it.SetTitle("Delete").SetIcon("lucide-trash").OnClick(func() {
				n.canvas.RemoveNode(n)
			})
		})
		return nil
	})
}

func defineEdgeBehavior(t *behavior.Table) {
	t.Define(host.MethodRender, func(self any, _ ...any) any {
		e := self.(*Edge)
		if e.path.Parent() == nil || !e.path.Parent().Is(e.canvas.root) {
			e.canvas.root.Append(e.path)
		}
		mid := e.Center()
		e.path.SetAttr("data-from", e.from.id)
		e.path.SetAttr("data-to", e.to.id)
		e.labelEl.SetStyle("left", px(mid.X))
		e.labelEl.SetStyle("top", px(mid.Y))
		e.labelEl.SetText(e.label)
		return nil
	})
	t.Define(host.MethodDestroy, func(self any, _ ...any) any {
		e := self.(*Edge)
		e.path.Remove()
		delete(e.canvas.edges, e.id)
		e.canvas.view.workspace.changed()
		return nil
	})
	t.Define(host.MethodShowMenu, func(self any, args ...any) any {
		e := self.(*Edge)
		m := args[0].(host.Menu)
		m.AddItem(func(it host.MenuItem) {
			it.SetTitle("Delete").SetIcon("lucide-trash").OnClick(e.Destroy)
		})
		return nil
	})
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

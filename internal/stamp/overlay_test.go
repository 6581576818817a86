package stamp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starford/tscanvas/internal/behavior"
	"github.com/starford/tscanvas/internal/dom"
	"github.com/starford/tscanvas/internal/host"
)

type fakeObject struct{ data map[string]any }

func (f *fakeObject) Behavior() *behavior.Table { return nil }
func (f *fakeObject) Data() map[string]any      { return f.data }

func TestOverlaysEnsureReusesAndReparents(t *testing.T) {
	o := newOverlays()
	obj := &fakeObject{data: map[string]any{}}
	first := dom.New("div")
	second := dom.New("div")

	el := o.ensure(obj, first, NodeOverlayClass, false)
	assert.True(t, o.ensure(obj, first, NodeOverlayClass, false).Is(el))
	assert.Len(t, first.Children(), 1)

	moved := o.ensure(obj, second, NodeOverlayClass, true)
	assert.False(t, moved.Is(el))
	assert.Empty(t, first.Children(), "stale overlay is removed")
	assert.True(t, moved.HasClass(HideClass))
}

func TestOverlaysPruneAndClear(t *testing.T) {
	o := newOverlays()
	root := dom.New("div")
	nodeRoot := root.CreateDiv("canvas-node")
	a := &fakeObject{data: map[string]any{}}
	b := &fakeObject{data: map[string]any{}}
	o.ensure(a, nodeRoot, NodeOverlayClass, false)
	o.ensure(b, root, EdgeOverlayClass, false)

	assert.Equal(t, 0, o.prune(map[host.Object]bool{a: true, b: true}))
	assert.Equal(t, 1, o.prune(map[host.Object]bool{a: true}))
	assert.Equal(t, 1, o.size())
	assert.Empty(t, root.FindByClass(EdgeOverlayClass), "pruned overlay leaves the tree")
	assert.Len(t, nodeRoot.FindByClass(NodeOverlayClass), 1)

	o.clear()
	assert.Equal(t, 0, o.size())
	assert.Empty(t, root.FindByClass(EdgeOverlayClass))
}

func TestStampIgnoresNonStrings(t *testing.T) {
	obj := &fakeObject{data: map[string]any{DataKey: 42}}
	assert.Equal(t, "", Stamp(obj))
	setStamp(obj, "x")
	assert.Equal(t, "x", Stamp(obj))
}

// Package stamp stamps canvas nodes and edges with their creation time and
// shows the stamp as an overlay label.
//
// The plugin never owns canvas objects. It waits for the host to build them,
// decorates the shared behavior tables of the canvas container, nodes and
// edges, and keeps overlay elements in a side-table keyed by object identity.
// Unload restores every decorated method and removes every overlay.
//
// Like the host, a Plugin is driven from the host's event loop and is not safe
// for concurrent use.
package stamp

import (
	"log/slog"
	"time"

	"github.com/starford/tscanvas/internal/host"
	"github.com/starford/tscanvas/internal/intercept"
	"github.com/starford/tscanvas/internal/readiness"
	"github.com/starford/tscanvas/internal/settings"
	"github.com/starford/tscanvas/internal/timefmt"
)

// Menu vocabulary.
const (
	MenuSection = "canvas"

	TitleClear  = "Clear timestamp"
	TitleUpdate = "Update timestamp"
	TitleToggle = "Hide/show timestamps"

	IconClear  = "lucide-alarm-minus"
	IconUpdate = "lucide-alarm-plus"
	IconToggle = "lucide-eye-off"
)

// Plugin is the timestamp extension of one workspace.
type Plugin struct {
	workspace host.Workspace
	settings  *settings.Store
	formatter *timefmt.Formatter
	logger    *slog.Logger

	clock      func() time.Time
	edgeLabels bool

	registry *intercept.Registry
	overlays *overlays
	pollers  []*readiness.Poller
	unsweep  func()
	loaded   bool
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Plugin) {
		p.logger = l
	}
}

// WithClock overrides the time source used for stamps.
func WithClock(now func() time.Time) Option {
	return func(p *Plugin) {
		p.clock = now
	}
}

// WithEdgeLabels writes edge stamps into the edge label instead of an overlay.
func WithEdgeLabels() Option {
	return func(p *Plugin) {
		p.edgeLabels = true
	}
}

// New creates a plugin for ws. Stamps use the date format held by store.
func New(ws host.Workspace, store *settings.Store, opts ...Option) *Plugin {
	p := &Plugin{
		workspace: ws,
		settings:  store,
		logger:    slog.Default(),
		clock:     time.Now,
		overlays:  newOverlays(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.formatter = timefmt.New(store.DateFormat, timefmt.WithClock(p.clock))
	p.registry = intercept.NewRegistry(p.logger)
	return p
}

// Load arms the patchers once the workspace layout is ready. Loading twice is a no-op.
func (p *Plugin) Load() {
	if p.loaded {
		return
	}
	p.loaded = true
	p.logger.Info("stamp: loaded", slog.Bool("edge_labels", p.edgeLabels))
	p.workspace.OnLayoutReady(p.arm)
}

// Unload cancels pending patchers, restores every decorated method and removes
// every overlay element.
func (p *Plugin) Unload() {
	if !p.loaded {
		return
	}
	p.loaded = false
	for _, poller := range p.pollers {
		poller.Stop()
	}
	p.pollers = nil
	if p.unsweep != nil {
		p.unsweep()
		p.unsweep = nil
	}
	p.registry.Close()
	p.overlays.clear()
	p.logger.Info("stamp: unloaded")
}

// Installed reports whether the behavior table of kind is decorated.
func (p *Plugin) Installed(kind string) bool {
	return p.registry.Installed(kind)
}

// Now returns a stamp for the current instant.
func (p *Plugin) Now() string {
	return p.formatter.Now()
}

func (p *Plugin) arm() {
	if !p.loaded {
		// Unloaded before the layout became ready.
		return
	}
	subscribe := readiness.Subscribe(p.workspace.OnLayoutChanged)

	// Nodes and edges first, so the container patch re-renders through them.
	p.pollers = append(p.pollers,
		readiness.Arm(host.KindNode, p.locateNode, p.patchNode, subscribe, p.logger),
		readiness.Arm(host.KindEdge, p.locateEdge, p.patchEdge, subscribe, p.logger),
		readiness.Arm(host.KindCanvas, p.workspace.ActiveCanvas, p.patchContainer, subscribe, p.logger),
	)
	p.unsweep = p.workspace.OnLayoutChanged(p.sweep)
}

// sweep drops the overlays of objects that no open canvas holds anymore.
func (p *Plugin) sweep() {
	if p.overlays.size() == 0 {
		return
	}
	live := make(map[host.Object]bool)
	for _, v := range p.workspace.OpenCanvases() {
		c := v.Canvas()
		for _, n := range c.Nodes() {
			live[n] = true
		}
		for _, e := range c.Edges() {
			live[e] = true
		}
	}
	if n := p.overlays.prune(live); n > 0 {
		p.logger.Debug("stamp: pruned stale overlays", slog.Int("count", n), slog.Int("live", p.overlays.size()))
	}
}

func (p *Plugin) locateNode() (host.Node, bool) {
	v, ok := p.workspace.ActiveCanvas()
	if !ok {
		return nil, false
	}
	nodes := v.Canvas().Nodes()
	if len(nodes) == 0 {
		return nil, false
	}
	return nodes[0], true
}

func (p *Plugin) locateEdge() (host.Edge, bool) {
	v, ok := p.workspace.ActiveCanvas()
	if !ok {
		return nil, false
	}
	edges := v.Canvas().Edges()
	if len(edges) == 0 {
		return nil, false
	}
	return edges[0], true
}

func (p *Plugin) patchContainer(v host.View) error {
	if err := p.registry.Install(host.KindCanvas, v.Canvas().Behavior(), p.containerWrappers()); err != nil {
		return err
	}
	v.Rebuild()
	return nil
}

func (p *Plugin) patchNode(n host.Node) error {
	return p.registry.Install(host.KindNode, n.Behavior(), p.nodeWrappers())
}

func (p *Plugin) patchEdge(e host.Edge) error {
	return p.registry.Install(host.KindEdge, e.Behavior(), p.edgeWrappers())
}

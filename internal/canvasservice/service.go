// Package canvasservice drives the canvas host for the API, the MCP server
// and the vault watcher: it opens canvas files into views, forwards edits and
// menu actions to the host, and saves the result back to the vault.
package canvasservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/starford/tscanvas/internal/apperr"
	"github.com/starford/tscanvas/internal/canvas"
	"github.com/starford/tscanvas/internal/checksum"
	"github.com/starford/tscanvas/internal/host"
	"github.com/starford/tscanvas/internal/models"
	"github.com/starford/tscanvas/internal/parser"
	"github.com/starford/tscanvas/internal/settings"
	"github.com/starford/tscanvas/internal/sse"
	"github.com/starford/tscanvas/internal/stamp"
	"github.com/starford/tscanvas/internal/storage"
	"github.com/starford/tscanvas/internal/watch"
)

// Publisher receives change notifications. *sse.Broker implements it.
type Publisher interface {
	PublishCanvas(kind, path string)
	PublishLayout(path string)
}

type nopPublisher struct{}

func (nopPublisher) PublishCanvas(string, string) {}
func (nopPublisher) PublishLayout(string)         {}

// CanvasItem is one entry of List.
type CanvasItem struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
	Open      bool      `json:"open"`
}

// Detail is an open canvas with its current content.
type Detail struct {
	Path     string         `json:"path"`
	Checksum string         `json:"checksum"`
	Canvas   *models.Canvas `json:"canvas"`
}

// Target names what a menu is opened on: the canvas itself (quick settings),
// a node or an edge.
type Target struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
}

// MenuItem is one menu entry as shown to clients.
type MenuItem struct {
	Section string `json:"section,omitempty"`
	Title   string `json:"title"`
	Icon    string `json:"icon,omitempty"`
}

// Service coordinates the host, the timestamp plugin and the vault.
type Service struct {
	app      *canvas.App
	store    storage.Provider
	plugin   *stamp.Plugin
	settings *settings.Store
	events   Publisher
	logger   *slog.Logger

	mu   sync.Mutex
	sums map[string]string // last content seen or written per open path
}

// New creates a Service. events may be nil.
func New(app *canvas.App, store storage.Provider, plugin *stamp.Plugin, st *settings.Store, events Publisher, logger *slog.Logger) *Service {
	if events == nil {
		events = nopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		app:      app,
		store:    store,
		plugin:   plugin,
		settings: st,
		events:   events,
		logger:   logger,
		sums:     make(map[string]string),
	}
}

// Start loads the plugin, forwards layout changes to the publisher and marks
// the workspace layout ready.
func (s *Service) Start(ctx context.Context) error {
	return s.app.Do(ctx, func() error {
		ws := s.app.Workspace()
		s.plugin.Load()
		ws.OnLayoutChanged(func() {
			if v, ok := ws.ActiveCanvas(); ok {
				s.events.PublishLayout(v.(*canvas.View).Path())
			}
		})
		ws.MarkLayoutReady()
		return nil
	})
}

// Stop unloads the plugin.
func (s *Service) Stop(ctx context.Context) error {
	return s.app.Do(ctx, func() error {
		s.plugin.Unload()
		return nil
	})
}

// List returns every canvas file of the vault.
func (s *Service) List(ctx context.Context) ([]CanvasItem, error) {
	metas, err := s.store.List("")
	if err != nil {
		return nil, err
	}
	open := make(map[string]bool)
	err = s.app.Do(ctx, func() error {
		for _, v := range s.app.Workspace().Views() {
			open[v.Path()] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	items := make([]CanvasItem, len(metas))
	for i, m := range metas {
		items[i] = CanvasItem{Path: m.Path, Checksum: m.Checksum, UpdatedAt: m.UpdatedAt, Open: open[m.Path]}
	}
	return items, nil
}

// Create writes an empty canvas file and opens it.
func (s *Service) Create(ctx context.Context, path string) (*Detail, error) {
	if err := validPath(path); err != nil {
		return nil, err
	}
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	data, err := parser.Encode(&models.Canvas{})
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}
	return s.Open(ctx, path)
}

// Open reads path from the vault into a view, replacing a view already showing it.
func (s *Service) Open(ctx context.Context, path string) (*Detail, error) {
	if err := validPath(path); err != nil {
		return nil, err
	}
	data, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	c, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("canvas %s: %w: %v", path, apperr.ErrInvalid, err)
	}
	var d *Detail
	err = s.app.Do(ctx, func() error {
		v := s.app.Workspace().OpenCanvas(path, c)
		d = &Detail{Path: path, Checksum: checksum.Sum(data), Canvas: v.Container().Snapshot()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.remember(path, d.Checksum)
	s.logger.Info("canvas opened", slog.String("path", path))
	s.events.PublishCanvas(sse.CanvasOpened, path)
	return d, nil
}

// Close closes the view showing path.
func (s *Service) Close(ctx context.Context, path string) error {
	err := s.app.Do(ctx, func() error {
		if !s.app.Workspace().CloseCanvas(path) {
			return fmt.Errorf("canvas %s: %w", path, apperr.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.forget(path)
	s.events.PublishCanvas(sse.CanvasClosed, path)
	return nil
}

// Get returns the current content of an open canvas.
func (s *Service) Get(ctx context.Context, path string) (*Detail, error) {
	var d *Detail
	err := s.onView(ctx, path, func(v *canvas.View) error {
		d = &Detail{Path: path, Canvas: v.Container().Snapshot()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	d.Checksum = s.sum(path)
	return d, nil
}

// Render returns the HTML of an open canvas, overlays included.
func (s *Service) Render(ctx context.Context, path string) (string, error) {
	var out string
	err := s.onView(ctx, path, func(v *canvas.View) error {
		out = v.Container().Root().String()
		return nil
	})
	return out, err
}

// CreateNode adds a text node to an open canvas and saves it.
func (s *Service) CreateNode(ctx context.Context, path string, opts canvas.NodeOptions) (models.NodeData, error) {
	var nd models.NodeData
	err := s.mutate(ctx, path, func(c *canvas.Canvas) error {
		n := c.CreateTextNode(opts)
		nd = nodeData(c, n.ID())
		return nil
	})
	return nd, err
}

// CreateEdge connects two nodes of an open canvas and saves it.
func (s *Service) CreateEdge(ctx context.Context, path, from, to string) (models.EdgeData, error) {
	var ed models.EdgeData
	err := s.mutate(ctx, path, func(c *canvas.Canvas) error {
		a, ok := c.Node(from)
		if !ok {
			return fmt.Errorf("node %s: %w", from, apperr.ErrNotFound)
		}
		b, ok := c.Node(to)
		if !ok {
			return fmt.Errorf("node %s: %w", to, apperr.ErrNotFound)
		}
		e := c.CreateEdge(a, b)
		for _, candidate := range c.Snapshot().Edges {
			if candidate.ID == e.ID() {
				ed = candidate
			}
		}
		return nil
	})
	return ed, err
}

// RemoveNode deletes a node and its edges from an open canvas and saves it.
func (s *Service) RemoveNode(ctx context.Context, path, id string) error {
	return s.mutate(ctx, path, func(c *canvas.Canvas) error {
		n, ok := c.Node(id)
		if !ok {
			return fmt.Errorf("node %s: %w", id, apperr.ErrNotFound)
		}
		c.RemoveNode(n)
		return nil
	})
}

// Menu lists the items the host and the plugin contribute for t.
func (s *Service) Menu(ctx context.Context, path string, t Target) ([]MenuItem, error) {
	var items []MenuItem
	err := s.onView(ctx, path, func(v *canvas.View) error {
		m, err := buildMenu(v.Container(), t)
		if err != nil {
			return err
		}
		for _, it := range m.Items() {
			items = append(items, MenuItem{Section: it.Section(), Title: it.Title(), Icon: it.Icon()})
		}
		return nil
	})
	return items, err
}

// Click runs the menu item titled title on t, re-renders the view and saves it.
func (s *Service) Click(ctx context.Context, path string, t Target, title string) error {
	return s.mutate(ctx, path, func(c *canvas.Canvas) error {
		m, err := buildMenu(c, t)
		if err != nil {
			return err
		}
		return m.Click(title)
	})
}

// ToggleTimestamps clicks the hide/show item of the quick-settings menu and
// returns whether overlays are now hidden.
func (s *Service) ToggleTimestamps(ctx context.Context, path string) (bool, error) {
	if err := s.Click(ctx, path, Target{Kind: host.KindCanvas}, stamp.TitleToggle); err != nil {
		return false, err
	}
	return s.settings.Hidden(), nil
}

// Settings returns the settings panel.
func (s *Service) Settings() []settings.Field {
	return s.settings.Panel()
}

// SetSetting applies a panel edit. The new value is persisted in the background.
func (s *Service) SetSetting(key, value string) error {
	if !s.settings.Apply(key, value) {
		return fmt.Errorf("setting %q: %w", key, apperr.ErrNotFound)
	}
	s.logger.Info("setting changed", slog.String("key", key), slog.String("value", value))
	return nil
}

// HandleFileEvent reloads or closes an open canvas after an external change.
// Changes matching our own last write are ignored.
func (s *Service) HandleFileEvent(ctx context.Context, kind, path string) {
	known, open := s.lookup(path)
	switch kind {
	case watch.Removed:
		if !open {
			s.events.PublishCanvas(sse.CanvasDeleted, path)
			return
		}
		if err := s.Close(ctx, path); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			s.logger.Warn("close after delete failed", slog.String("path", path), slog.String("error", err.Error()))
		}
		s.events.PublishCanvas(sse.CanvasDeleted, path)
	case watch.Changed:
		if !open {
			s.events.PublishCanvas(sse.CanvasUpdated, path)
			return
		}
		data, err := s.store.Read(path)
		if err != nil {
			s.logger.Warn("reload read failed", slog.String("path", path), slog.String("error", err.Error()))
			return
		}
		if checksum.Equal(data, known) {
			return
		}
		if _, err := s.Open(ctx, path); err != nil {
			s.logger.Warn("reload failed", slog.String("path", path), slog.String("error", err.Error()))
			return
		}
		s.events.PublishCanvas(sse.CanvasUpdated, path)
	}
}

// mutate runs fn on the view of path, re-renders it and saves the result.
func (s *Service) mutate(ctx context.Context, path string, fn func(c *canvas.Canvas) error) error {
	var snap *models.Canvas
	err := s.onView(ctx, path, func(v *canvas.View) error {
		if err := fn(v.Container()); err != nil {
			return err
		}
		v.Rebuild()
		snap = v.Container().Snapshot()
		return nil
	})
	if err != nil {
		return err
	}
	data, err := parser.Encode(snap)
	if err != nil {
		return err
	}
	if err := s.store.Write(path, data); err != nil {
		return err
	}
	s.remember(path, checksum.Sum(data))
	s.events.PublishCanvas(sse.CanvasUpdated, path)
	return nil
}

func (s *Service) onView(ctx context.Context, path string, fn func(v *canvas.View) error) error {
	return s.app.Do(ctx, func() error {
		v, ok := s.app.Workspace().View(path)
		if !ok {
			return fmt.Errorf("canvas %s is not open: %w", path, apperr.ErrNotFound)
		}
		return fn(v)
	})
}

func buildMenu(c *canvas.Canvas, t Target) (*canvas.Menu, error) {
	m := canvas.NewMenu()
	switch t.Kind {
	case host.KindCanvas:
		c.ShowQuickSettingsMenu(m)
	case host.KindNode:
		n, ok := c.Node(t.ID)
		if !ok {
			return nil, fmt.Errorf("node %s: %w", t.ID, apperr.ErrNotFound)
		}
		n.ShowMenu(m)
	case host.KindEdge:
		e, ok := c.Edge(t.ID)
		if !ok {
			return nil, fmt.Errorf("edge %s: %w", t.ID, apperr.ErrNotFound)
		}
		e.ShowMenu(m)
	default:
		return nil, fmt.Errorf("menu target %q: %w", t.Kind, apperr.ErrInvalid)
	}
	return m, nil
}

func nodeData(c *canvas.Canvas, id string) models.NodeData {
	for _, nd := range c.Snapshot().Nodes {
		if nd.ID == id {
			return nd
		}
	}
	return models.NodeData{}
}

func validPath(path string) error {
	if path == "" || !strings.HasSuffix(path, storage.Ext) {
		return fmt.Errorf("path %q must end in %s: %w", path, storage.Ext, apperr.ErrInvalid)
	}
	return nil
}

func (s *Service) remember(path, sum string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sums[path] = sum
}

func (s *Service) forget(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sums, path)
}

func (s *Service) sum(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sums[path]
}

func (s *Service) lookup(path string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.sums[path]
	return sum, ok
}

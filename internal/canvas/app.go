// Package canvas is a reference implementation of the canvas editor the
// timestamp plugin augments.
//
// Canvas containers, nodes and edges dispatch their methods through three
// shared behavior tables owned by the App, so decorating a table changes every
// instance of that kind. All host state is owned by a single event loop: call
// host operations from Do, or from code already running on the loop.
package canvas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/tscanvas/internal/behavior"
	"github.com/starford/tscanvas/internal/host"
)

// ErrStopped is returned by Do once the event loop has exited.
var ErrStopped = errors.New("canvas: event loop stopped")

type task struct {
	fn   func() error
	done chan error
}

// App owns the behavior tables, the workspace and the event loop.
type App struct {
	canvasKind *behavior.Table
	nodeKind   *behavior.Table
	edgeKind   *behavior.Table

	workspace *Workspace
	logger    *slog.Logger

	tasks   chan task
	stopped chan struct{}
}

// NewApp creates an App with the default host behavior installed.
func NewApp(logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		canvasKind: behavior.NewTable(host.KindCanvas),
		nodeKind:   behavior.NewTable(host.KindNode),
		edgeKind:   behavior.NewTable(host.KindEdge),
		logger:     logger,
		tasks:      make(chan task),
		stopped:    make(chan struct{}),
	}
	a.workspace = newWorkspace(a)
	defineCanvasBehavior(a.canvasKind)
	defineNodeBehavior(a.nodeKind)
	defineEdgeBehavior(a.edgeKind)
	return a
}

// Workspace returns the layout manager.
func (a *App) Workspace() *Workspace { return a.workspace }

// Kind returns the shared behavior table for a kind name, or nil.
func (a *App) Kind(kind string) *behavior.Table {
	switch kind {
	case host.KindCanvas:
		return a.canvasKind
	case host.KindNode:
		return a.nodeKind
	case host.KindEdge:
		return a.edgeKind
	default:
		return nil
	}
}

// Run executes queued host operations until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer close(a.stopped)
	a.logger.Info("canvas: event loop started")
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("canvas: event loop stopped")
			return nil
		case t := <-a.tasks:
			t.done <- a.exec(t.fn)
		}
	}
}

// Do runs fn on the event loop and waits for it to finish.
func (a *App) Do(ctx context.Context, fn func() error) error {
	t := task{fn: fn, done: make(chan error, 1)}
	select {
	case a.tasks <- t:
	case <-a.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *App) exec(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("canvas: operation panicked", slog.String("panic", fmt.Sprint(r)))
			err = fmt.Errorf("canvas: operation panicked: %v", r)
		}
	}()
	return fn()
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

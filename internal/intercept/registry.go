package intercept

import (
	"log/slog"
	"sync"

	"github.com/starford/tscanvas/internal/behavior"
)

// Registry tracks installs by object kind so each kind is decorated at most
// once and everything can be removed together.
type Registry struct {
	mu     sync.Mutex
	logger *slog.Logger

	disposers map[string]Disposer
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:    logger,
		disposers: make(map[string]Disposer),
	}
}

// Install decorates table under kind. A kind that is already installed is left
// alone and nil is returned. A nil table returns apperr.ErrNotReady.
func (r *Registry) Install(kind string, table *behavior.Table, wrappers map[string]Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.disposers[kind]; ok {
		return nil
	}
	dispose, err := Install(table, wrappers, r.logger)
	if err != nil {
		return err
	}
	r.disposers[kind] = dispose
	r.order = append(r.order, kind)
	r.logger.Info("intercept: installed", slog.String("kind", kind))
	return nil
}

// Installed reports whether kind has been decorated.
func (r *Registry) Installed(kind string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.disposers[kind]
	return ok
}

// Close removes every install, most recent first.
func (r *Registry) Close() {
	r.mu.Lock()
	order := r.order
	disposers := r.disposers
	r.order = nil
	r.disposers = make(map[string]Disposer)
	r.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		disposers[order[i]]()
		r.logger.Info("intercept: removed", slog.String("kind", order[i]))
	}
}

// Package intercept decorates methods of a shared behavior table and undoes
// the decoration later.
//
// Each Install adds one layer per method. A layer wraps whatever was bound
// before it, so independent installs compose. Disposing a layer restores the
// method it captured when it is still the top of the stack; otherwise the layer
// becomes a pass-through and the layers above it keep working.
package intercept

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/starford/tscanvas/internal/apperr"
	"github.com/starford/tscanvas/internal/behavior"
)

// Factory builds a replacement for a method. next is the implementation that
// was bound before the replacement; the factory decides whether and when to call it.
type Factory func(next *behavior.Method) behavior.Func

// Disposer removes the layers added by one Install. Calling it more than once is a no-op.
type Disposer func()

type layer struct {
	name      string
	original  *behavior.Method
	installed *behavior.Method
	inert     atomic.Bool
}

// Install decorates table with wrappers, keyed by method name.
//
// A nil table returns apperr.ErrNotReady and installs nothing. A name that is
// not bound on the table is logged and skipped; the other wrappers still apply.
func Install(table *behavior.Table, wrappers map[string]Factory, logger *slog.Logger) (Disposer, error) {
	if table == nil {
		return nil, apperr.ErrNotReady
	}
	if logger == nil {
		logger = slog.Default()
	}

	names := make([]string, 0, len(wrappers))
	for name := range wrappers {
		names = append(names, name)
	}
	sort.Strings(names)

	layers := make([]*layer, 0, len(names))
	for _, name := range names {
		original := table.Lookup(name)
		if original == nil {
			logger.Error("intercept: skipping wrapper",
				slog.String("kind", table.Kind()),
				slog.String("method", name),
				slog.String("error", fmt.Errorf("%s.%s: %w", table.Kind(), name, apperr.ErrMissingOriginal).Error()))
			continue
		}

		l := &layer{name: name, original: original}
		wrapped := wrappers[name](original)
		l.installed = behavior.NewMethod(name, func(self any, args ...any) any {
			if l.inert.Load() {
				return l.original.Call(self, args...)
			}
			return wrapped(self, args...)
		})
		table.Set(name, l.installed)
		layers = append(layers, l)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(layers) - 1; i >= 0; i-- {
				l := layers[i]
				if !table.CompareAndSwap(l.name, l.installed, l.original) {
					// Someone wrapped on top of us; keep their layer and step aside.
					l.inert.Store(true)
				}
			}
		})
	}, nil
}

// Before returns a factory that runs hook, then the original method.
// A panic in hook is logged and the original still runs.
func Before(logger *slog.Logger, hook func(self any, args []any)) Factory {
	return func(next *behavior.Method) behavior.Func {
		return func(self any, args ...any) any {
			safely(logger, next.Name(), func() { hook(self, args) })
			return next.Call(self, args...)
		}
	}
}

// After returns a factory that runs the original method, then hook.
// The original's result is returned unchanged.
func After(logger *slog.Logger, hook func(self any, args []any)) Factory {
	return func(next *behavior.Method) behavior.Func {
		return func(self any, args ...any) any {
			result := next.Call(self, args...)
			safely(logger, next.Name(), func() { hook(self, args) })
			return result
		}
	}
}

func safely(logger *slog.Logger, method string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if logger == nil {
				logger = slog.Default()
			}
			logger.Error("intercept: hook panicked",
				slog.String("method", method),
				slog.String("panic", fmt.Sprint(r)))
		}
	}()
	fn()
}

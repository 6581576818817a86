// Package readiness waits for a lazily constructed host object and patches it
// exactly once.
package readiness

import (
	"errors"
	"log/slog"

	"github.com/starford/tscanvas/internal/apperr"
)

// State is the poller state.
type State int

const (
	// Waiting means the target has not been patched yet.
	Waiting State = iota
	// Patched is terminal: the target was found and patched.
	Patched
	// Stopped means the poller was cancelled before it succeeded.
	Stopped
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Patched:
		return "patched"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Subscribe registers fn for a recurring notification and returns a function
// that cancels the registration.
type Subscribe func(fn func()) (unsubscribe func())

// Poller retries locate+patch on every notification until it succeeds once.
//
// A Poller is driven from the host's event loop and is not safe for concurrent use.
type Poller struct {
	name    string
	logger  *slog.Logger
	attempt func() bool

	state       State
	busy        bool
	unsubscribe func()
}

// Arm tries locate/patch immediately and, if the target is not ready, retries on
// every notification delivered through subscribe.
//
// locate reports false while the target does not exist. patch returning an
// error wrapping apperr.ErrNotReady keeps the poller waiting silently; any other
// error is logged and the poller keeps waiting as well.
func Arm[T any](name string, locate func() (T, bool), patch func(T) error, subscribe Subscribe, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Poller{name: name, logger: logger}
	p.attempt = func() bool {
		target, ok := locate()
		if !ok {
			return false
		}
		if err := patch(target); err != nil {
			if !errors.Is(err, apperr.ErrNotReady) {
				logger.Warn("readiness: patch failed",
					slog.String("target", name),
					slog.String("error", err.Error()))
			}
			return false
		}
		return true
	}

	p.try()
	if p.state != Waiting {
		return p
	}

	unsubscribe := subscribe(p.try)
	if p.state != Waiting {
		// The subscription fired synchronously and already succeeded.
		unsubscribe()
		return p
	}
	p.unsubscribe = unsubscribe
	logger.Debug("readiness: waiting", slog.String("target", name))
	return p
}

// State returns the current state.
func (p *Poller) State() State { return p.state }

// Stop cancels a waiting poller. It has no effect once the poller is patched.
func (p *Poller) Stop() {
	if p.state != Waiting {
		return
	}
	p.state = Stopped
	p.release()
}

func (p *Poller) try() {
	if p.state != Waiting || p.busy {
		return
	}
	p.busy = true
	ok := p.attempt()
	p.busy = false
	if !ok || p.state != Waiting {
		return
	}
	p.state = Patched
	p.release()
	p.logger.Info("readiness: patched", slog.String("target", p.name))
}

func (p *Poller) release() {
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
}

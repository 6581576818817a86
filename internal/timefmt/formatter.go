package timefmt

import "time"

// Formatter produces stamps for "now" using a pattern that may change at runtime.
type Formatter struct {
	pattern func() string
	now     func() time.Time
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(f *Formatter) {
		f.now = now
	}
}

// New creates a Formatter that reads the current pattern from pattern on every call.
func New(pattern func() string, opts ...Option) *Formatter {
	f := &Formatter{pattern: pattern, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Static returns a pattern source that always yields p.
func Static(p string) func() string {
	return func() string { return p }
}

// Now formats the current instant.
func (f *Formatter) Now() string {
	return Format(f.now(), f.pattern())
}

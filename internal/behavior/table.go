// Package behavior models a shared method table: the set of named methods every
// instance of one host object kind dispatches through.
//
// Replacing a method on a Table changes the behavior of all existing and future
// instances of that kind at once.
package behavior

import (
	"sort"
	"sync"
)

// Func is the dynamic signature of a table method. self is the receiving
// instance; args and the result are method specific.
type Func func(self any, args ...any) any

// Method is a named entry of a Table. Methods are compared by pointer identity.
type Method struct {
	name string
	fn   Func
}

// NewMethod wraps fn as a method called name.
func NewMethod(name string, fn Func) *Method {
	return &Method{name: name, fn: fn}
}

// Name returns the method name.
func (m *Method) Name() string { return m.name }

// Call invokes the method on self.
func (m *Method) Call(self any, args ...any) any {
	if m == nil || m.fn == nil {
		return nil
	}
	return m.fn(self, args...)
}

// Table maps method names to the current implementation for one object kind.
type Table struct {
	kind string

	mu      sync.RWMutex
	methods map[string]*Method
}

// NewTable creates an empty table for kind.
func NewTable(kind string) *Table {
	return &Table{kind: kind, methods: make(map[string]*Method)}
}

// Kind returns the object kind the table belongs to.
func (t *Table) Kind() string { return t.kind }

// Define sets fn as the implementation of name and returns the new method.
func (t *Table) Define(name string, fn Func) *Method {
	m := NewMethod(name, fn)
	t.Set(name, m)
	return m
}

// Lookup returns the current method bound to name, or nil.
func (t *Table) Lookup(name string) *Method {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.methods[name]
}

// Set binds m to name.
func (t *Table) Set(name string, m *Method) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.methods[name] = m
}

// CompareAndSwap binds next to name only if name is currently bound to old.
func (t *Table) CompareAndSwap(name string, old, next *Method) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.methods[name] != old {
		return false
	}
	t.methods[name] = next
	return true
}

// Call dispatches name on self. An unbound name returns nil.
// The table lock is not held while the method runs.
func (t *Table) Call(name string, self any, args ...any) any {
	return t.Lookup(name).Call(self, args...)
}

// Names returns the bound method names in sorted order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.methods))
	for name := range t.methods {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

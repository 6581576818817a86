package canvas

import (
	"fmt"

	"github.com/starford/tscanvas/internal/apperr"
	"github.com/starford/tscanvas/internal/host"
)

// Menu is a context or quick-settings menu being built.
type Menu struct {
	items []*MenuItem
}

// NewMenu creates an empty menu.
func NewMenu() *Menu { return &Menu{} }

// AddItem implements host.Menu.
func (m *Menu) AddItem(build func(host.MenuItem)) {
	it := &MenuItem{}
	build(it)
	m.items = append(m.items, it)
}

// Items returns the items in insertion order.
func (m *Menu) Items() []*MenuItem { return m.items }

// Click runs the first item titled title.
func (m *Menu) Click(title string) error {
	for _, it := range m.items {
		if it.title == title {
			if it.onClick != nil {
				it.onClick()
			}
			return nil
		}
	}
	return fmt.Errorf("menu item %q: %w", title, apperr.ErrNotFound)
}

// MenuItem is one entry of a Menu.
type MenuItem struct {
	section string
	title   string
	icon    string
	onClick func()
}

// SetSection implements host.MenuItem.
func (it *MenuItem) SetSection(section string) host.MenuItem { it.section = section; return it }

// SetTitle implements host.MenuItem.
func (it *MenuItem) SetTitle(title string) host.MenuItem { it.title = title; return it }

// SetIcon implements host.MenuItem.
func (it *MenuItem) SetIcon(icon string) host.MenuItem { it.icon = icon; return it }

// OnClick implements host.MenuItem.
func (it *MenuItem) OnClick(fn func()) host.MenuItem { it.onClick = fn; return it }

// Section returns the item section.
func (it *MenuItem) Section() string { return it.section }

// Title returns the item title.
func (it *MenuItem) Title() string { return it.title }

// Icon returns the item icon name.
func (it *MenuItem) Icon() string { return it.icon }

// Package dom is a small element tree for canvas rendering, backed by
// golang.org/x/net/html nodes.
package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is an HTML element. Two Elements are the same element when Is reports true.
type Element struct {
	n *html.Node
}

// New creates a detached element with the given tag and classes.
func New(tag string, classes ...string) *Element {
	e := &Element{n: &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}}
	for _, c := range classes {
		e.AddClass(c)
	}
	return e
}

func wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{n: n}
}

// Tag returns the element tag name.
func (e *Element) Tag() string { return e.n.Data }

// Is reports whether e and other refer to the same node.
func (e *Element) Is(other *Element) bool {
	return e != nil && other != nil && e.n == other.n
}

// CreateDiv appends a new div with class cls and returns it.
func (e *Element) CreateDiv(cls string) *Element {
	child := New("div", cls)
	e.n.AppendChild(child.n)
	return child
}

// Append attaches child as the last child of e, detaching it first if needed.
func (e *Element) Append(child *Element) {
	if child.n.Parent != nil {
		child.n.Parent.RemoveChild(child.n)
	}
	e.n.AppendChild(child.n)
}

// Remove detaches e from its parent. Detached elements are left alone.
func (e *Element) Remove() {
	if e.n.Parent != nil {
		e.n.Parent.RemoveChild(e.n)
	}
}

// Parent returns the parent element, or nil when detached.
func (e *Element) Parent() *Element {
	return wrap(e.n.Parent)
}

// Children returns the element children of e.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, wrap(c))
		}
	}
	return out
}

// Contains reports whether other is e or a descendant of e.
func (e *Element) Contains(other *Element) bool {
	if other == nil {
		return false
	}
	for n := other.n; n != nil; n = n.Parent {
		if n == e.n {
			return true
		}
	}
	return false
}

// FindByClass returns all descendants of e carrying cls, in document order.
func (e *Element) FindByClass(cls string) []*Element {
	var out []*Element
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if wrap(c).HasClass(cls) {
				out = append(out, wrap(c))
			}
			walk(c)
		}
	}
	walk(e.n)
	return out
}

// SetText replaces the children of e with a single text node. An empty string
// leaves the element empty.
func (e *Element) SetText(s string) {
	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		e.n.RemoveChild(c)
		c = next
	}
	if s != "" {
		e.n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	}
}

// Text returns the concatenated text content of e.
func (e *Element) Text() string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(e.n)
	return b.String()
}

// Attr returns the value of attribute key.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets attribute key. An empty value removes it.
func (e *Element) SetAttr(key, val string) {
	for i, a := range e.n.Attr {
		if a.Key != key {
			continue
		}
		if val == "" {
			e.n.Attr = append(e.n.Attr[:i], e.n.Attr[i+1:]...)
		} else {
			e.n.Attr[i].Val = val
		}
		return
	}
	if val != "" {
		e.n.Attr = append(e.n.Attr, html.Attribute{Key: key, Val: val})
	}
}

// Render writes e and its subtree as HTML.
func (e *Element) Render(w io.Writer) error {
	return html.Render(w, e.n)
}

// String returns the HTML of e.
func (e *Element) String() string {
	var buf bytes.Buffer
	if err := e.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

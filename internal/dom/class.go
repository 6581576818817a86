package dom

import "strings"

// Classes returns the class list of e.
func (e *Element) Classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether e carries cls.
func (e *Element) HasClass(cls string) bool {
	for _, c := range e.Classes() {
		if c == cls {
			return true
		}
	}
	return false
}

// AddClass adds cls unless already present.
func (e *Element) AddClass(cls string) {
	if cls == "" || e.HasClass(cls) {
		return
	}
	e.SetAttr("class", strings.Join(append(e.Classes(), cls), " "))
}

// RemoveClass removes cls if present.
func (e *Element) RemoveClass(cls string) {
	classes := e.Classes()
	kept := classes[:0]
	for _, c := range classes {
		if c != cls {
			kept = append(kept, c)
		}
	}
	e.SetAttr("class", strings.Join(kept, " "))
}

// ToggleClass adds cls when on is true and removes it otherwise.
func (e *Element) ToggleClass(cls string, on bool) {
	if on {
		e.AddClass(cls)
	} else {
		e.RemoveClass(cls)
	}
}

// Style returns the inline style property prop.
func (e *Element) Style(prop string) string {
	for _, decl := range e.styles() {
		if decl[0] == prop {
			return decl[1]
		}
	}
	return ""
}

// SetStyle sets inline style property prop. An empty value removes it.
func (e *Element) SetStyle(prop, val string) {
	decls := e.styles()
	out := make([]string, 0, len(decls)+1)
	found := false
	for _, decl := range decls {
		if decl[0] == prop {
			found = true
			if val == "" {
				continue
			}
			decl[1] = val
		}
		out = append(out, decl[0]+": "+decl[1])
	}
	if !found && val != "" {
		out = append(out, prop+": "+val)
	}
	e.SetAttr("style", strings.Join(out, "; "))
}

func (e *Element) styles() [][2]string {
	v, _ := e.Attr("style")
	var out [][2]string
	for _, part := range strings.Split(v, ";") {
		k, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		out = append(out, [2]string{strings.TrimSpace(k), strings.TrimSpace(val)})
	}
	return out
}

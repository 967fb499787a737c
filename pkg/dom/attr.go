package dom

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

func (n *Node) Attr(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

func (n *Node) SetAttr(name, value string) {
	name = strings.ToLower(name)
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attribute{Name: name, Value: value})
}

func (n *Node) RemoveAttr(name string) bool {
	name = strings.ToLower(name)
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return true
		}
	}
	return false
}

// Attrs returns a copy of the attributes in document order.
func (n *Node) Attrs() []Attribute {
	return append([]Attribute(nil), n.attrs...)
}

// Classes returns the class tokens in order, without duplicates.
func (n *Node) Classes() []string {
	v, _ := n.Attr("class")
	seen := mapset.NewThreadUnsafeSet[string]()
	var out []string
	for _, c := range strings.Fields(v) {
		if seen.Add(c) {
			out = append(out, c)
		}
	}
	return out
}

func (n *Node) HasClass(name string) bool {
	return mapset.NewThreadUnsafeSet(n.Classes()...).Contains(name)
}

func (n *Node) setClasses(classes []string) {
	if len(classes) == 0 {
		n.RemoveAttr("class")
		return
	}
	n.SetAttr("class", strings.Join(classes, " "))
}

// AddClass adds class tokens; a token may hold several space separated names.
func (n *Node) AddClass(names ...string) {
	classes := n.Classes()
	present := mapset.NewThreadUnsafeSet(classes...)
	for _, name := range names {
		for _, c := range strings.Fields(name) {
			if present.Add(c) {
				classes = append(classes, c)
			}
		}
	}
	n.setClasses(classes)
}

func (n *Node) RemoveClass(names ...string) {
	drop := mapset.NewThreadUnsafeSet[string]()
	for _, name := range names {
		for _, c := range strings.Fields(name) {
			drop.Add(c)
		}
	}
	var kept []string
	for _, c := range n.Classes() {
		if !drop.Contains(c) {
			kept = append(kept, c)
		}
	}
	n.setClasses(kept)
}

func (n *Node) ToggleClass(name string, on bool) {
	if on {
		n.AddClass(name)
	} else {
		n.RemoveClass(name)
	}
}

type styleDecl struct {
	name, value string
}

func (n *Node) styles() []styleDecl {
	v, _ := n.Attr("style")
	var out []styleDecl
	for _, part := range strings.Split(v, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		out = append(out, styleDecl{name: name, value: strings.TrimSpace(value)})
	}
	return out
}

func (n *Node) setStyles(decls []styleDecl) {
	if len(decls) == 0 {
		n.RemoveAttr("style")
		return
	}
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.name + ": " + d.value
	}
	n.SetAttr("style", strings.Join(parts, "; "))
}

// Style returns the inline value of a style property.
func (n *Node) Style(name string) string {
	name = strings.ToLower(name)
	for _, d := range n.styles() {
		if d.name == name {
			return d.value
		}
	}
	return ""
}

// SetStyle sets an inline style property. An empty value removes it.
func (n *Node) SetStyle(name, value string) {
	if value == "" {
		n.RemoveStyle(name)
		return
	}
	name = strings.ToLower(name)
	decls := n.styles()
	for i, d := range decls {
		if d.name == name {
			decls[i].value = value
			n.setStyles(decls)
			return
		}
	}
	n.setStyles(append(decls, styleDecl{name: name, value: value}))
}

func (n *Node) RemoveStyle(name string) {
	name = strings.ToLower(name)
	var kept []styleDecl
	for _, d := range n.styles() {
		if d.name != name {
			kept = append(kept, d)
		}
	}
	n.setStyles(kept)
}

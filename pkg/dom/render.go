package dom

import (
	"io"
	"strings"

	"github.com/valyala/quicktemplate"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

var rawTextElements = map[string]bool{
	"script": true, "style": true,
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// Render writes n as HTML. Text and attribute values are escaped.
func (n *Node) Render(w io.Writer) error {
	ew := &errWriter{w: w}
	qw := quicktemplate.AcquireWriter(ew)
	defer quicktemplate.ReleaseWriter(qw)

	n.render(qw)
	return ew.err
}

func (n *Node) renderChildren(qw *quicktemplate.Writer) {
	for _, c := range n.children {
		c.render(qw)
	}
}

func (n *Node) render(qw *quicktemplate.Writer) {
	switch n.Type {
	case DocumentNode:
		n.renderChildren(qw)
	case DoctypeNode:
		qw.N().S("<!DOCTYPE ")
		qw.N().S(n.Data)
		qw.N().S(">")
	case CommentNode:
		qw.N().S("<!--")
		qw.N().S(n.Data)
		qw.N().S("-->")
	case TextNode:
		if n.Parent != nil && rawTextElements[n.Parent.Tag] {
			qw.N().S(n.Data)
		} else {
			qw.E().S(n.Data)
		}
	case ElementNode:
		qw.N().S("<")
		qw.N().S(n.Tag)
		input, textarea := n.Tag == "input", n.Tag == "textarea"
		checked, value := n.checked, n.valueSet && !textarea
		for _, a := range n.attrs {
			switch {
			case input && a.Name == "checked":
				if !checked {
					continue
				}
				checked = false
			case value && a.Name == "value":
				a.Value = n.value
				value = false
			}
			renderAttr(qw, a.Name, a.Value)
		}
		if input && checked {
			renderAttr(qw, "checked", "")
		}
		if value {
			renderAttr(qw, "value", n.value)
		}
		qw.N().S(">")
		if voidElements[n.Tag] {
			return
		}
		if textarea && n.valueSet {
			qw.E().S(n.value)
		} else {
			n.renderChildren(qw)
		}
		qw.N().S("</")
		qw.N().S(n.Tag)
		qw.N().S(">")
	}
}

// renderAttr writes one attribute. The live checked state and form value
// take the place of the attributes they started from.
func renderAttr(qw *quicktemplate.Writer, name, value string) {
	qw.N().S(" ")
	qw.N().S(name)
	qw.N().S(`="`)
	qw.E().S(value)
	qw.N().S(`"`)
}

func (n *Node) OuterHTML() string {
	var sb strings.Builder
	n.Render(&sb)
	return sb.String()
}

func (n *Node) InnerHTML() string {
	var sb strings.Builder
	for _, c := range n.children {
		c.Render(&sb)
	}
	return sb.String()
}

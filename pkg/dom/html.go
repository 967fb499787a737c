package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return fromHTML(doc), nil
}

func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

// ParseFragment parses s as the content of context. A nil context parses as
// body content.
func ParseFragment(s string, context *Node) ([]*Node, error) {
	tag := "body"
	if context.IsElement() {
		tag = context.Tag
	}
	ctx := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}
	out := make([]*Node, 0, len(nodes))
	for _, hn := range nodes {
		out = append(out, fromHTML(hn))
	}
	return out, nil
}

// ParseBody parses s into a detached body element.
func ParseBody(s string) (*Node, error) {
	body := NewElement("body")
	nodes, err := ParseFragment(s, body)
	if err != nil {
		return nil, err
	}
	body.AppendChild(nodes...)
	return body, nil
}

// SetInnerHTML replaces n's children with the parsed content of s.
func (n *Node) SetInnerHTML(s string) error {
	nodes, err := ParseFragment(s, n)
	if err != nil {
		return err
	}
	n.ReplaceChildren(nodes...)
	return nil
}

func fromHTML(hn *html.Node) *Node {
	n := &Node{}
	switch hn.Type {
	case html.DocumentNode:
		n.Type = DocumentNode
	case html.ElementNode:
		n.Type = ElementNode
		n.Tag = strings.ToLower(hn.Data)
		for _, a := range hn.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			n.attrs = append(n.attrs, Attribute{Name: strings.ToLower(name), Value: a.Val})
		}
		n.checked = n.HasAttr("checked")
	case html.TextNode:
		n.Type = TextNode
		n.Data = hn.Data
	case html.CommentNode:
		n.Type = CommentNode
		n.Data = hn.Data
	case html.DoctypeNode:
		n.Type = DoctypeNode
		n.Data = hn.Data
	default:
		n.Type = CommentNode
	}
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		n.AppendChild(fromHTML(c))
	}
	return n
}

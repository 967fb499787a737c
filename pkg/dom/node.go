// Package dom is a small in-memory DOM: element trees with attributes, form
// state and events, parsed from and rendered back to HTML.
package dom

import "strings"

type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	DocumentNode
	DoctypeNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case DocumentNode:
		return "document"
	case DoctypeNode:
		return "doctype"
	default:
		return "unknown"
	}
}

type Attribute struct {
	Name  string
	Value string
}

// Node is an element, text, comment or document node.
type Node struct {
	Type NodeType
	// Tag is the lower-case tag name of element nodes.
	Tag string
	// Data is the content of text, comment and doctype nodes.
	Data   string
	Parent *Node

	children []*Node
	attrs    []Attribute

	checked  bool
	value    string
	valueSet bool

	listeners map[string][]*listener
}

func NewElement(tag string, attrs ...Attribute) *Node {
	n := &Node{Type: ElementNode, Tag: strings.ToLower(tag)}
	for _, a := range attrs {
		n.SetAttr(a.Name, a.Value)
	}
	_, n.checked = n.Attr("checked")
	return n
}

func NewText(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

func NewComment(data string) *Node {
	return &Node{Type: CommentNode, Data: data}
}

func NewDocument() *Node {
	return &Node{Type: DocumentNode}
}

func (n *Node) IsElement(tags ...string) bool {
	if n == nil || n.Type != ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Tag == t {
			return true
		}
	}
	return false
}

// InputType returns the lower-case type attribute of an input element, or ""
// for anything else.
func (n *Node) InputType() string {
	if !n.IsElement("input") {
		return ""
	}
	t, ok := n.Attr("type")
	if !ok {
		return "text"
	}
	return strings.ToLower(t)
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

func (n *Node) ChildCount() int {
	return len(n.children)
}

func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

func (n *Node) LastChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) NextSibling() *Node {
	if n.Parent == nil {
		return nil
	}
	i := n.Parent.indexOf(n)
	if i < 0 || i+1 >= len(n.Parent.children) {
		return nil
	}
	return n.Parent.children[i+1]
}

func (n *Node) detach() {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func (n *Node) AppendChild(children ...*Node) {
	for _, c := range children {
		c.detach()
		c.Parent = n
		n.children = append(n.children, c)
	}
}

// InsertBefore inserts child before ref. A nil or foreign ref appends.
func (n *Node) InsertBefore(child, ref *Node) {
	i := -1
	if ref != nil {
		i = n.indexOf(ref)
	}
	if i < 0 {
		n.AppendChild(child)
		return
	}
	child.detach()
	// detaching may have shifted ref
	i = n.indexOf(ref)
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
}

func (n *Node) RemoveChild(child *Node) bool {
	i := n.indexOf(child)
	if i < 0 {
		return false
	}
	n.children = append(n.children[:i], n.children[i+1:]...)
	child.Parent = nil
	return true
}

// RemoveChildren detaches and returns all children.
func (n *Node) RemoveChildren() []*Node {
	old := n.children
	n.children = nil
	for _, c := range old {
		c.Parent = nil
	}
	return old
}

func (n *Node) ReplaceChildren(children ...*Node) {
	n.RemoveChildren()
	n.AppendChild(children...)
}

// Clone copies the node, its attributes and form state. Listeners are not
// copied. A deep clone copies descendants too.
func (n *Node) Clone(deep bool) *Node {
	c := &Node{
		Type:     n.Type,
		Tag:      n.Tag,
		Data:     n.Data,
		checked:  n.checked,
		value:    n.value,
		valueSet: n.valueSet,
	}
	c.attrs = append([]Attribute(nil), n.attrs...)
	if deep {
		for _, child := range n.children {
			c.AppendChild(child.Clone(true))
		}
	}
	return c
}

// CloneChildren returns deep clones of n's children.
func (n *Node) CloneChildren() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c.Clone(true))
	}
	return out
}

func (n *Node) Root() *Node {
	r := n
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		c.Walk(fn)
	}
}

func (n *Node) Find(match func(*Node) bool) []*Node {
	var out []*Node
	n.Walk(func(x *Node) bool {
		if match(x) {
			out = append(out, x)
		}
		return true
	})
	return out
}

func (n *Node) ElementsByTag(tag string) []*Node {
	tag = strings.ToLower(tag)
	return n.Find(func(x *Node) bool { return x.IsElement(tag) })
}

func (n *Node) GetElementByID(id string) *Node {
	found := n.Find(func(x *Node) bool {
		v, ok := x.Attr("id")
		return ok && v == id && x.Type == ElementNode
	})
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

func (n *Node) TextContent() string {
	switch n.Type {
	case TextNode:
		return n.Data
	case CommentNode, DoctypeNode:
		return ""
	}
	var sb strings.Builder
	n.Walk(func(x *Node) bool {
		if x.Type == TextNode {
			sb.WriteString(x.Data)
		}
		return true
	})
	return sb.String()
}

// SetTextContent replaces all children with a single text node.
func (n *Node) SetTextContent(s string) {
	if n.Type == TextNode || n.Type == CommentNode {
		n.Data = s
		return
	}
	n.RemoveChildren()
	if s != "" {
		n.AppendChild(NewText(s))
	}
}

func (n *Node) Checked() bool {
	return n.checked
}

// SetChecked sets the checked state. Checking a radio button unchecks the
// other radios of its group.
func (n *Node) SetChecked(checked bool) {
	n.checked = checked
	if checked && n.InputType() == "radio" {
		for _, other := range n.radioGroup() {
			if other != n {
				other.checked = false
			}
		}
	}
}

func (n *Node) radioGroup() []*Node {
	name, ok := n.Attr("name")
	if !ok || name == "" {
		return nil
	}
	return n.Root().Find(func(x *Node) bool {
		v, ok := x.Attr("name")
		return ok && v == name && x.InputType() == "radio"
	})
}

// Value returns the form value: the value property once set, otherwise the
// value attribute (text content for textarea).
func (n *Node) Value() string {
	if n.valueSet {
		return n.value
	}
	if n.IsElement("textarea") {
		return n.TextContent()
	}
	v, _ := n.Attr("value")
	return v
}

func (n *Node) SetValue(v string) {
	n.value = v
	n.valueSet = true
}

func (n *Node) Disabled() bool {
	return n.HasAttr("disabled")
}

func (n *Node) SetDisabled(disabled bool) {
	if disabled {
		n.SetAttr("disabled", "")
	} else {
		n.RemoveAttr("disabled")
	}
}

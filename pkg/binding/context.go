package binding

import (
	"github.com/delaneyj/domwire/pkg/expr"
)

// DataContext is the immutable scope chain visible to expressions in a
// subtree. Contexts are created by scope-changing bindings (with, if, foreach,
// view) and are never modified afterwards.
type DataContext struct {
	data   any
	parent *DataContext
	root   any

	index    int
	hasIndex bool

	// extra names, e.g. view parameters
	vars map[string]any
}

// NewContext creates a root context for model.
func NewContext(model any) *DataContext {
	return &DataContext{data: model, root: model}
}

// Child creates a context for model nested under c.
func (c *DataContext) Child(model any) *DataContext {
	return &DataContext{data: model, parent: c, root: c.root}
}

// ChildAt creates a child context for the index-th item of a sequence.
func (c *DataContext) ChildAt(model any, index int) *DataContext {
	child := c.Child(model)
	child.index, child.hasIndex = index, true
	return child
}

// With returns a copy of c that additionally resolves name to v.
func (c *DataContext) With(name string, v any) *DataContext {
	cp := *c
	cp.vars = make(map[string]any, len(c.vars)+1)
	for k, x := range c.vars {
		cp.vars[k] = x
	}
	cp.vars[name] = v
	return &cp
}

func (c *DataContext) Data() any {
	return c.data
}

func (c *DataContext) Parent() *DataContext {
	return c.parent
}

func (c *DataContext) Root() any {
	return c.root
}

// Index returns the position of the data within its foreach sequence.
func (c *DataContext) Index() (int, bool) {
	return c.index, c.hasIndex
}

// Parents returns the data of every ancestor context, nearest first.
func (c *DataContext) Parents() []any {
	var out []any
	for p := c.parent; p != nil; p = p.parent {
		out = append(out, p.data)
	}
	return out
}

// Resolve implements expr.Scope. Special names come first. Other names are
// looked up on each context from c outwards, extra variables before members
// of its data, and finally on the root.
func (c *DataContext) Resolve(name string) (any, bool) {
	switch name {
	case "$data":
		return c.data, true
	case "$parent":
		if c.parent == nil {
			return nil, true
		}
		return c.parent.data, true
	case "$parents":
		return c.Parents(), true
	case "$root":
		return c.root, true
	case "$index":
		if !c.hasIndex {
			return nil, true
		}
		return c.index, true
	case "$context":
		return c, true
	}
	for s := c; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
		if v, ok := expr.Member(s.data, name); ok {
			return v, true
		}
	}
	return expr.Member(c.root, name)
}

// Member exposes the context itself to expressions as `$context`.
func (c *DataContext) Member(name string) (any, bool) {
	switch name {
	case "data", "$data":
		return c.data, true
	case "parent":
		return c.parent, true
	case "root":
		return c.root, true
	case "index":
		return c.Resolve("$index")
	}
	return nil, false
}

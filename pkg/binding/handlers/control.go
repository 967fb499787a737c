package handlers

import (
	"reflect"

	"github.com/delaneyj/domwire/pkg/binding"
	"github.com/delaneyj/domwire/pkg/dom"
	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/delaneyj/domwire/pkg/expr"
)

// template is a snapshot of a node's children taken when a scope-controlling
// binding is applied. Every render works on fresh clones of it.
type template []*dom.Node

func snapshot(node *dom.Node) template {
	return template(node.CloneChildren())
}

func (t template) clone() []*dom.Node {
	out := make([]*dom.Node, len(t))
	for i, n := range t {
		out[i] = n.Clone(true)
	}
	return out
}

// clear releases the bindings below node before removing its content.
func (b *base) clear(node *dom.Node) {
	b.dm.CleanDescendants(node)
	node.RemoveChildren()
}

// ifHandler renders the node's content while its value is truthy, or falsy
// when negated. Showing again renders a fresh clone of the content the node
// had when bound.
type ifHandler struct {
	base
	negate bool
}

func (h *ifHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.if", node, options); err != nil {
		return err
	}
	tmpl := snapshot(node)
	rendered, shown := false, false
	return h.watch(state, options, ctx, false, func(v any) error {
		show := expr.Truthy(v) != h.negate
		if rendered && show == shown {
			return nil
		}
		rendered, shown = true, show
		h.clear(node)
		if !show {
			return nil
		}
		node.AppendChild(tmpl.clone()...)
		return h.dm.ApplyBindingsToDescendants(ctx, node)
	})
}

// withHandler binds the node's content in a child context of its value. A
// falsy value renders nothing.
type withHandler struct{ base }

func (h *withHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.with", node, options); err != nil {
		return err
	}
	tmpl := snapshot(node)
	return h.watch(state, options, ctx, false, func(v any) error {
		h.clear(node)
		if !expr.Truthy(v) {
			return nil
		}
		node.AppendChild(tmpl.clone()...)
		return h.dm.ApplyBindingsToDescendants(ctx.Child(v), node)
	})
}

// foreachHandler renders the node's content once per item of a slice or
// array, each copy bound in a child context of its item with `$index` set.
// Options are the items or `{data: items, as: 'name'}`, which also exposes
// the item under name.
type foreachHandler struct{ base }

func (h *foreachHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.foreach", node, options); err != nil {
		return err
	}
	o, err := h.dm.CompileBindingOptions(options)
	if err != nil {
		return err
	}
	data, alias := o.Single, ""
	if o.IsObject() {
		if data = o.Field("data"); data == nil {
			return errors.Validation("handlers.foreach", "missing data in %q", options)
		}
		if as := o.Field("as"); as != nil {
			v, err := as.Eval(expr.Env{Scope: ctx})
			if err != nil {
				return err
			}
			alias = expr.ToString(v)
		}
	}

	tmpl := snapshot(node)
	return h.watchExpr(state, data, ctx, false, func(v any) error {
		h.clear(node)
		if v == nil {
			return nil
		}
		items := reflect.ValueOf(v)
		if k := items.Kind(); k != reflect.Slice && k != reflect.Array {
			return errors.InvalidTarget("handlers.foreach", data.Source(), v)
		}
		for i := 0; i < items.Len(); i++ {
			item := items.Index(i).Interface()
			child := ctx.ChildAt(item, i)
			if alias != "" {
				child = child.With(alias, item)
			}
			for _, n := range tmpl.clone() {
				node.AppendChild(n)
				if err := h.dm.ApplyBindings(child, n); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

package handlers

import (
	"strings"

	"github.com/delaneyj/domwire/pkg/binding"
	"github.com/delaneyj/domwire/pkg/dom"
	"github.com/delaneyj/domwire/pkg/expr"
)

type textHandler struct{ base }

func (h *textHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.text", node, options); err != nil {
		return err
	}
	return h.watch(state, options, ctx, false, func(v any) error {
		node.SetTextContent(expr.ToString(v))
		return nil
	})
}

// htmlHandler replaces the content of the node with parsed markup. The
// markup is not bound.
type htmlHandler struct{ base }

func (h *htmlHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.html", node, options); err != nil {
		return err
	}
	return h.watch(state, options, ctx, false, func(v any) error {
		h.dm.CleanDescendants(node)
		return node.SetInnerHTML(expr.ToString(v))
	})
}

// cssHandler toggles classes. The object form toggles each key by the
// truthiness of its value; the single form sets the class names the value
// spells, replacing those it set before.
type cssHandler struct{ base }

func (h *cssHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.css", node, options); err != nil {
		return err
	}
	o, err := h.dm.CompileBindingOptions(options)
	if err != nil {
		return err
	}
	if !o.IsObject() {
		var prev string
		return h.watchExpr(state, o.Single, ctx, false, func(v any) error {
			if prev != "" {
				node.RemoveClass(prev)
			}
			prev = strings.TrimSpace(expr.ToString(v))
			if prev != "" {
				node.AddClass(prev)
			}
			return nil
		})
	}
	for _, key := range o.Keys {
		key := key
		err := h.watchExpr(state, o.Field(key), ctx, false, func(v any) error {
			node.ToggleClass(key, expr.Truthy(v))
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// attrHandler sets one attribute per key. nil and false remove it.
type attrHandler struct{ base }

func (h *attrHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.attr", node, options); err != nil {
		return err
	}
	o, err := h.objectOptions("handlers.attr", options)
	if err != nil {
		return err
	}
	for _, key := range o.Keys {
		key := key
		err := h.watchExpr(state, o.Field(key), ctx, false, func(v any) error {
			if v == nil || v == false {
				node.RemoveAttr(key)
				return nil
			}
			node.SetAttr(key, expr.ToString(v))
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// styleHandler sets one style property per key. nil, false and "" clear it.
type styleHandler struct{ base }

func (h *styleHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.style", node, options); err != nil {
		return err
	}
	o, err := h.objectOptions("handlers.style", options)
	if err != nil {
		return err
	}
	for _, key := range o.Keys {
		key := key
		err := h.watchExpr(state, o.Field(key), ctx, false, func(v any) error {
			s := expr.ToString(v)
			if v == false || s == "" {
				node.RemoveStyle(key)
				return nil
			}
			node.SetStyle(key, s)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// visibilityHandler shows the node while its value is truthy, or falsy when
// negated.
type visibilityHandler struct {
	base
	negate bool
}

func (h *visibilityHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.visible", node, options); err != nil {
		return err
	}
	display := node.Style("display")
	if display == "none" {
		display = ""
	}
	return h.watch(state, options, ctx, false, func(v any) error {
		switch {
		case expr.Truthy(v) == h.negate:
			node.SetStyle("display", "none")
		case display != "":
			node.SetStyle("display", display)
		default:
			node.RemoveStyle("display")
		}
		return nil
	})
}

// enableHandler disables the node while its value is falsy, or truthy when
// negated.
type enableHandler struct {
	base
	negate bool
}

func (h *enableHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.enable", node, options); err != nil {
		return err
	}
	return h.watch(state, options, ctx, false, func(v any) error {
		node.SetDisabled(expr.Truthy(v) == h.negate)
		return nil
	})
}

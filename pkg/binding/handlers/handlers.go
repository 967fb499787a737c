// Package handlers contains the built-in binding handlers.
package handlers

import (
	"fmt"
	"sort"

	"github.com/delaneyj/domwire/pkg/binding"
	"github.com/delaneyj/domwire/pkg/dom"
	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/delaneyj/domwire/pkg/expr"
	"github.com/delaneyj/domwire/pkg/router"
)

// Priorities of the built-in handlers. Scope-controlling handlers run last so
// the other bindings of their node are in place when they render.
const (
	PriorityModule  = -100
	PriorityDefault = 0
	PriorityTwoWay  = 10
	PriorityControl = 100
)

// Builtins returns every built-in handler keyed by binding name. r may be nil,
// in which case the router bindings fail validation when used.
func Builtins(dm binding.DOM, r router.Router) map[string]binding.Handler {
	b := func(priority int, caps binding.Caps) base {
		return base{dm: dm, priority: priority, caps: caps}
	}
	return map[string]binding.Handler{
		"text": &textHandler{base: b(PriorityDefault, 0)},
		"html": &htmlHandler{base: b(PriorityDefault, binding.CapControlsDescendants)},

		"css":   &cssHandler{base: b(PriorityDefault, 0)},
		"attr":  &attrHandler{base: b(PriorityDefault, 0)},
		"style": &styleHandler{base: b(PriorityDefault, 0)},

		"visible": &visibilityHandler{base: b(PriorityDefault, 0)},
		"hidden":  &visibilityHandler{base: b(PriorityDefault, 0), negate: true},
		"enable":  &enableHandler{base: b(PriorityDefault, 0)},
		"disable": &enableHandler{base: b(PriorityDefault, 0), negate: true},

		"checked":       &checkedHandler{base: b(PriorityTwoWay, 0)},
		"value":         &valueHandler{base: b(PriorityTwoWay, 0), events: []string{"change"}},
		"textInput":     &valueHandler{base: b(PriorityTwoWay, 0), events: []string{"input", "change"}},
		"selectedValue": &selectedValueHandler{base: b(PriorityTwoWay, 0)},

		"command": &commandHandler{base: b(PriorityDefault, 0)},
		"event":   &eventHandler{base: b(PriorityDefault, 0)},
		"click":   &eventHandler{base: b(PriorityDefault, 0), event: "click"},
		"submit":  &eventHandler{base: b(PriorityDefault, 0), event: "submit"},

		"if":      &ifHandler{base: b(PriorityControl, binding.CapControlsDescendants)},
		"ifnot":   &ifHandler{base: b(PriorityControl, binding.CapControlsDescendants), negate: true},
		"with":    &withHandler{base: b(PriorityControl, binding.CapControlsDescendants)},
		"foreach": &foreachHandler{base: b(PriorityControl, binding.CapControlsDescendants)},

		"module": &moduleHandler{base: b(PriorityModule, binding.CapAllowRebind)},

		"view":        &viewHandler{base: b(PriorityControl, binding.CapControlsDescendants), router: r},
		"stateRef":    &stateRefHandler{base: b(PriorityDefault, 0), router: r},
		"stateActive": &stateActiveHandler{base: b(PriorityDefault, 0), router: r},
	}
}

// Register adds every built-in handler to m.
func Register(m *binding.Module, dm binding.DOM, r router.Router) {
	all := Builtins(dm, r)
	names := make([]string, 0, len(all))
	for n := range all {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		m.Register(n, all[n])
	}
}

// base carries what every handler shares.
type base struct {
	dm       binding.DOM
	priority int
	caps     binding.Caps
}

func (b *base) Info() binding.Info {
	return binding.Info{Priority: b.priority, Caps: b.caps}
}

// Configure understands `priority`.
func (b *base) Configure(options map[string]any) error {
	v, ok := options["priority"]
	if !ok {
		return nil
	}
	p, err := toInt(v)
	if err != nil {
		return errors.Wrap("handlers.Configure", errors.KindValidation, fmt.Errorf("priority: %w", err))
	}
	b.priority = p
	return nil
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case uint64:
		return int(x), nil
	case float64:
		if x == float64(int(x)) {
			return int(x), nil
		}
	}
	return 0, fmt.Errorf("expected an integer, got %v", v)
}

// watch compiles src and runs fn for its value now and on every change. The
// watcher belongs to the node's state.
func (b *base) watch(state *binding.NodeState, src string, ctx *binding.DataContext, passProperty bool, fn func(any) error) error {
	x, err := b.dm.Compile(src)
	if err != nil {
		return err
	}
	return b.watchExpr(state, x, ctx, passProperty, fn)
}

func (b *base) watchExpr(state *binding.NodeState, x *expr.Expression, ctx *binding.DataContext, passProperty bool, fn func(any) error) error {
	d, err := b.dm.Watch(x, ctx, passProperty, fn)
	if err != nil {
		return err
	}
	state.Cleanup.Add(d)
	return nil
}

// eval evaluates src once without tracking.
func (b *base) eval(src string, ctx *binding.DataContext) (any, error) {
	x, err := b.dm.Compile(src)
	if err != nil {
		return nil, err
	}
	return x.Eval(expr.Env{Scope: ctx})
}

// objectOptions compiles src and requires the object literal form.
func (b *base) objectOptions(op, src string) (*expr.Options, error) {
	o, err := b.dm.CompileBindingOptions(src)
	if err != nil {
		return nil, err
	}
	if !o.IsObject() {
		return nil, errors.Validation(op, "expected an object literal of keyed expressions, got %q", src)
	}
	return o, nil
}

func (b *base) report(err error) {
	errors.Report(b.dm.Sink(), err)
}

// validate rejects a binding on anything but an element (one of tags when
// given) or without options.
func validate(op string, node *dom.Node, options string, tags ...string) error {
	if options == "" {
		return errors.Validation(op, "missing options")
	}
	if !node.IsElement(tags...) {
		if len(tags) > 0 {
			return errors.Validation(op, "cannot bind to <%s>, expected one of %v", nodeName(node), tags)
		}
		return errors.Validation(op, "cannot bind to %s node", node.Type)
	}
	return nil
}

func nodeName(n *dom.Node) string {
	if n.Type == dom.ElementNode {
		return n.Tag
	}
	return n.Type.String()
}

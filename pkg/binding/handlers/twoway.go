package handlers

import (
	"fmt"

	"github.com/delaneyj/domwire/pkg/binding"
	"github.com/delaneyj/domwire/pkg/dom"
	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/delaneyj/domwire/pkg/expr"
	"github.com/delaneyj/domwire/pkg/property"
	"github.com/delaneyj/domwire/pkg/rx"
)

// twoWay wires a bound target to the node. A property pushes every change to
// the node through apply and, unless read-only, gets written back by write
// when one of events fires. A plain value is applied once. Each resolution
// drops the listeners of the previous one.
func (b *base) twoWay(
	state *binding.NodeState,
	options string,
	ctx *binding.DataContext,
	node *dom.Node,
	events []string,
	apply func(v any),
	write func(p property.Untyped, ev *dom.Event) error,
) error {
	serial := &rx.Serial{}
	state.Cleanup.Add(serial)
	return b.watch(state, options, ctx, true, func(target any) error {
		kind := binding.Classify(target)
		if kind != binding.TargetProperty && kind != binding.TargetComputed {
			serial.Set(rx.Empty())
			apply(target)
			return nil
		}

		p := target.(property.Untyped)
		apply(p.Get())
		subs := rx.NewComposite(p.Observe().Subscribe(func(v any) error {
			apply(v)
			return nil
		}))
		if kind == binding.TargetProperty {
			for _, typ := range events {
				subs.Add(node.AddEventListener(typ, func(ev *dom.Event) {
					if err := write(p, ev); err != nil {
						b.report(err)
					}
				}))
			}
		}
		serial.Set(subs)
		return nil
	})
}

// checkedHandler binds the checked state of a checkbox to a boolean, or of
// a radio button to whether the bound value equals its value.
type checkedHandler struct{ base }

func (h *checkedHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.checked", node, options, "input"); err != nil {
		return err
	}
	radio := false
	switch node.InputType() {
	case "checkbox":
	case "radio":
		radio = true
	default:
		return errors.Validation("handlers.checked", "cannot bind checked to input of type %q", node.InputType())
	}

	apply := func(v any) {
		if radio {
			node.SetChecked(expr.LooseEqual(v, node.Value()))
			return
		}
		node.SetChecked(expr.Truthy(v))
	}
	write := func(p property.Untyped, _ *dom.Event) error {
		if !radio {
			return p.Set(node.Checked())
		}
		if node.Checked() {
			return p.Set(node.Value())
		}
		return nil
	}
	return h.twoWay(state, options, ctx, node, []string{"click", "change"}, apply, write)
}

// valueHandler binds the value of a form control.
type valueHandler struct {
	base
	events []string
}

// Configure understands `priority` and `events`, a name or list of names
// of the events that write back.
func (h *valueHandler) Configure(options map[string]any) error {
	if err := h.base.Configure(options); err != nil {
		return err
	}
	v, ok := options["events"]
	if !ok {
		return nil
	}
	switch x := v.(type) {
	case string:
		h.events = []string{x}
	case []string:
		h.events = x
	case []any:
		events := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return errors.New("handlers.Configure", errors.KindValidation, "events: expected strings, got %T", e)
			}
			events = append(events, s)
		}
		h.events = events
	default:
		return errors.New("handlers.Configure", errors.KindValidation, "events: expected a string or list, got %T", v)
	}
	return nil
}

func (h *valueHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.value", node, options, "input", "textarea", "select"); err != nil {
		return err
	}
	apply := func(v any) {
		s := expr.ToString(v)
		if node.Value() != s {
			node.SetValue(s)
		}
	}
	write := func(p property.Untyped, _ *dom.Event) error {
		if err := p.Set(node.Value()); err != nil {
			return fmt.Errorf("writing %q back: %w", node.Value(), err)
		}
		return nil
	}
	return h.twoWay(state, options, ctx, node, h.events, apply, write)
}

// selectedValueHandler binds the selection of a group of radio buttons: the
// node itself or the radios below it. The radio whose value equals the bound
// value is checked.
type selectedValueHandler struct{ base }

func (h *selectedValueHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.selectedValue", node, options); err != nil {
		return err
	}
	radios := func() []*dom.Node {
		return node.Find(func(n *dom.Node) bool { return n.InputType() == "radio" })
	}
	apply := func(v any) {
		for _, r := range radios() {
			r.SetChecked(expr.LooseEqual(v, r.Value()))
		}
	}
	write := func(p property.Untyped, ev *dom.Event) error {
		t := ev.Target
		if t.InputType() != "radio" || !t.Checked() {
			return nil
		}
		return p.Set(t.Value())
	}
	return h.twoWay(state, options, ctx, node, []string{"change"}, apply, write)
}

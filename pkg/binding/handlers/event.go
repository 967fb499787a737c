package handlers

import (
	"reflect"

	"github.com/delaneyj/domwire/pkg/binding"
	"github.com/delaneyj/domwire/pkg/dom"
	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/delaneyj/domwire/pkg/expr"
)

// eventHandler binds DOM events. With no fixed event the options are an
// object of event name to handler (`event: {keyup: onKey}`), otherwise a
// single handler (`click: save`).
//
// A handler that is a path must resolve to a func when the binding is
// applied. It is called with whichever of the event, the context and the
// data its parameters ask for; returning false prevents the default action.
// Any other expression, such as `add(item)`, is evaluated on every event.
type eventHandler struct {
	base
	event string
}

var (
	eventType   = reflect.TypeOf((*dom.Event)(nil))
	contextType = reflect.TypeOf((*binding.DataContext)(nil))
)

func (h *eventHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.event", node, options); err != nil {
		return err
	}
	o, err := h.dm.CompileBindingOptions(options)
	if err != nil {
		return err
	}

	events := map[string]*expr.Expression{}
	var order []string
	switch {
	case h.event != "" && !o.IsObject():
		events[h.event], order = o.Single, []string{h.event}
	case h.event == "" && o.IsObject():
		for _, k := range o.Keys {
			events[k] = o.Field(k)
		}
		order = o.Keys
	case h.event != "":
		return errors.Validation("handlers."+h.event, "expected a handler, got %q", options)
	default:
		return errors.Validation("handlers.event", "expected an object of event handlers, got %q", options)
	}

	for _, typ := range order {
		x := events[typ]
		if x.IsPath() {
			fn, err := x.Eval(expr.Env{Scope: ctx})
			if err != nil {
				return err
			}
			if binding.Classify(fn) != binding.TargetFunc {
				return errors.InvalidTarget("handlers.event", x.Source(), fn)
			}
		}
		state.Cleanup.Add(node.AddEventListener(typ, func(ev *dom.Event) {
			if err := h.dispatch(x, ctx, ev); err != nil {
				h.report(err)
			}
		}))
	}
	return nil
}

func (h *eventHandler) dispatch(x *expr.Expression, ctx *binding.DataContext, ev *dom.Event) error {
	v, err := x.Eval(expr.Env{Scope: ctx})
	if err != nil || !x.IsPath() {
		return err
	}
	if binding.Classify(v) != binding.TargetFunc {
		return errors.InvalidTarget("handlers.event", x.Source(), v)
	}

	ft := reflect.TypeOf(v)
	args := make([]any, ft.NumIn())
	for i := range args {
		switch ft.In(i) {
		case eventType:
			args[i] = ev
		case contextType:
			args[i] = ctx
		default:
			args[i] = ctx.Data()
		}
	}
	if ft.IsVariadic() {
		args = args[:len(args)-1]
	}
	out, err := expr.Call(v, args...)
	if err != nil {
		return err
	}
	if out == false {
		ev.PreventDefault()
	}
	return nil
}

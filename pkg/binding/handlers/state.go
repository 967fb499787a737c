package handlers

import (
	"github.com/delaneyj/domwire/pkg/binding"
	"github.com/delaneyj/domwire/pkg/dom"
	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/delaneyj/domwire/pkg/expr"
	"github.com/delaneyj/domwire/pkg/router"
)

// View is a template the view binding renders for a router state.
type View struct {
	Template string
	// Model builds the data the template is bound to from the state
	// parameters. Without it the parameters themselves are the data.
	Model func(params map[string]any) any
}

const viewPrefix = "view:"

// RegisterView makes a view available to view bindings in m and the modules
// below it.
func RegisterView(m *binding.Module, name string, v View) *binding.Module {
	return m.Provide(viewPrefix+name, v)
}

func needRouter(op string, r router.Router) error {
	if r == nil {
		return errors.Validation(op, "no router configured")
	}
	return nil
}

// viewHandler renders, for every router state, the view the state assigns to
// the slot named by its options. The view is bound in a child context of
// its model, with the parameters also available as `$params`.
type viewHandler struct {
	base
	router router.Router
}

func (h *viewHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.view", node, options); err != nil {
		return err
	}
	if err := needRouter("handlers.view", h.router); err != nil {
		return err
	}
	v, err := h.eval(options, ctx)
	if err != nil {
		return err
	}
	slot := expr.ToString(v)

	render := func(st router.State) error {
		h.clear(node)
		name := st.Views[slot]
		if name == "" {
			return nil
		}
		// a module binding on this node has already switched state.Module
		module := state.Module
		found, ok := module.Resolve(viewPrefix + name)
		if !ok {
			return errors.Binding("handlers.view", name, "no view %q in module %q", name, module.Name)
		}
		view, ok := found.(View)
		if !ok {
			return errors.InvalidTarget("handlers.view", name, found)
		}
		nodes, err := dom.ParseFragment(view.Template, node)
		if err != nil {
			return errors.Wrap("handlers.view", errors.KindParse, err)
		}
		node.AppendChild(nodes...)

		var model any = st.Params
		if view.Model != nil {
			model = view.Model(st.Params)
		}
		return h.dm.ApplyBindingsToDescendants(ctx.Child(model).With("$params", st.Params), node)
	}

	current := h.router.CurrentState()
	if err := render(current.Value()); err != nil {
		return err
	}
	state.Cleanup.Add(current.Changed().Subscribe(render))
	return nil
}

// stateTarget is the state name and parameters of a state binding, written
// as `'name'` or `{name: 'name', params: {...}}`.
type stateTarget struct {
	name   string
	params map[string]any
}

func (b *base) watchState(state *binding.NodeState, op, options string, ctx *binding.DataContext, target *stateTarget, changed func()) error {
	o, err := b.dm.CompileBindingOptions(options)
	if err != nil {
		return err
	}
	nameX := o.Single
	if o.IsObject() {
		if nameX = o.Field("name"); nameX == nil {
			return errors.Validation(op, "missing name in %q", options)
		}
		if paramsX := o.Field("params"); paramsX != nil {
			err := b.watchExpr(state, paramsX, ctx, false, func(v any) error {
				p, ok := v.(map[string]any)
				if !ok && v != nil {
					return errors.InvalidTarget(op, paramsX.Source(), v)
				}
				target.params = p
				changed()
				return nil
			})
			if err != nil {
				return err
			}
		}
	}
	return b.watchExpr(state, nameX, ctx, false, func(v any) error {
		target.name = expr.ToString(v)
		changed()
		return nil
	})
}

// stateRefHandler links the node to a router state: anchors get the state's
// URL as href and a click transitions to it.
type stateRefHandler struct {
	base
	router router.Router
}

func (h *stateRefHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.stateRef", node, options); err != nil {
		return err
	}
	if err := needRouter("handlers.stateRef", h.router); err != nil {
		return err
	}
	target := &stateTarget{}
	update := func() {
		if node.IsElement("a") && target.name != "" {
			node.SetAttr("href", h.router.Uri(target.name, target.params))
		}
	}
	if err := h.watchState(state, "handlers.stateRef", options, ctx, target, update); err != nil {
		return err
	}
	state.Cleanup.Add(node.AddEventListener("click", func(ev *dom.Event) {
		ev.PreventDefault()
		if err := h.router.Go(target.name, target.params, router.GoOptions{}); err != nil {
			h.report(err)
		}
	}))
	return nil
}

// stateActiveHandler toggles a class, `active` unless given as `class`,
// while the router's current state is the named one.
type stateActiveHandler struct {
	base
	router router.Router
}

func (h *stateActiveHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.stateActive", node, options); err != nil {
		return err
	}
	if err := needRouter("handlers.stateActive", h.router); err != nil {
		return err
	}
	current := h.router.CurrentState()
	class := "active"
	target := &stateTarget{}
	update := func() {
		node.ToggleClass(class, target.name != "" && current.Value().Name == target.name)
	}

	o, err := h.dm.CompileBindingOptions(options)
	if err != nil {
		return err
	}
	if x := o.Field("class"); x != nil {
		v, err := x.Eval(expr.Env{Scope: ctx})
		if err != nil {
			return err
		}
		class = expr.ToString(v)
	}
	if err := h.watchState(state, "handlers.stateActive", options, ctx, target, update); err != nil {
		return err
	}
	state.Cleanup.Add(current.Changed().Subscribe(func(router.State) error {
		update()
		return nil
	}))
	return nil
}

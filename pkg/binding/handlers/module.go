package handlers

import (
	"github.com/delaneyj/domwire/pkg/binding"
	"github.com/delaneyj/domwire/pkg/dom"
	"github.com/delaneyj/domwire/pkg/errors"
)

// moduleHandler switches handler and view resolution for the node's subtree
// to a module, given by name or as a *binding.Module. Applying it again
// reassigns the module.
type moduleHandler struct{ base }

func (h *moduleHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.module", node, options); err != nil {
		return err
	}
	v, err := h.eval(options, ctx)
	if err != nil {
		return err
	}
	switch x := v.(type) {
	case *binding.Module:
		state.Module = x
	case string:
		m, ok := h.dm.Registry().Lookup(x)
		if !ok {
			return errors.Binding("handlers.module", options, "unknown module %q", x)
		}
		state.Module = m
	default:
		return errors.InvalidTarget("handlers.module", options, v)
	}
	return nil
}

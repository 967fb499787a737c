package handlers

import (
	"github.com/delaneyj/domwire/pkg/binding"
	"github.com/delaneyj/domwire/pkg/dom"
	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/delaneyj/domwire/pkg/expr"
	"github.com/delaneyj/domwire/pkg/rx"
)

// commandHandler binds `command: cmd` or `{command: cmd, parameter: expr}`.
// The node is disabled while the command cannot execute with the parameter
// and a click executes it.
type commandHandler struct{ base }

func (h *commandHandler) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	if err := validate("handlers.command", node, options); err != nil {
		return err
	}
	o, err := h.dm.CompileBindingOptions(options)
	if err != nil {
		return err
	}
	cmdX, paramX := o.Single, (*expr.Expression)(nil)
	if o.IsObject() {
		cmdX, paramX = o.Field("command"), o.Field("parameter")
		if cmdX == nil {
			return errors.Validation("handlers.command", "missing command in %q", options)
		}
	}

	var (
		cmd   binding.Command
		param any
	)
	refresh := func() {
		if cmd != nil {
			node.SetDisabled(!cmd.CanExecute(param))
		}
	}
	if paramX != nil {
		err := h.watchExpr(state, paramX, ctx, false, func(v any) error {
			param = v
			refresh()
			return nil
		})
		if err != nil {
			return err
		}
	}

	serial := &rx.Serial{}
	state.Cleanup.Add(serial)
	return h.watchExpr(state, cmdX, ctx, false, func(target any) error {
		if binding.Classify(target) != binding.TargetCommand {
			serial.Set(rx.Empty())
			return errors.InvalidTarget("handlers.command", cmdX.Source(), target)
		}
		cmd = target.(binding.Command)
		refresh()
		subs := rx.NewComposite(
			cmd.CanExecuteObservable().Subscribe(func(bool) error {
				refresh()
				return nil
			}),
			node.AddEventListener("click", func(*dom.Event) {
				if err := cmd.Execute(param); err != nil {
					h.report(err)
				}
			}),
		)
		serial.Set(subs)
		return nil
	})
}

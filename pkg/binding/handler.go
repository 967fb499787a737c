package binding

import (
	"reflect"

	"github.com/delaneyj/domwire/pkg/dom"
	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/delaneyj/domwire/pkg/expr"
	"github.com/delaneyj/domwire/pkg/property"
	"github.com/delaneyj/domwire/pkg/rx"
)

// Caps is the set of capabilities a handler declares.
type Caps uint8

const (
	// CapControlsDescendants stops the manager from binding the node's
	// children; the handler binds them itself.
	CapControlsDescendants Caps = 1 << iota
	// CapAllowRebind lets bindings be applied again to a bound node.
	CapAllowRebind
)

func (c Caps) Has(x Caps) bool {
	return c&x == x
}

// Info describes how the manager schedules a handler. Lower priorities run
// first.
type Info struct {
	Priority int
	Caps     Caps
}

// Handler implements one binding type. Handlers are stateless: everything a
// binding creates belongs to the node's state.
type Handler interface {
	Info() Info
	// Configure applies options from configuration. Unknown keys are
	// ignored.
	Configure(options map[string]any) error
	ApplyBinding(node *dom.Node, options string, ctx *DataContext, state *NodeState, module *Module) error
}

// DOM is what the manager exposes to handlers.
type DOM interface {
	Compile(src string) (*expr.Expression, error)
	CompileBindingOptions(src string) (*expr.Options, error)
	ExpressionToObservable(x *expr.Expression, ctx *DataContext) rx.Observable[any]
	FieldAccessToObservable(path string, ctx *DataContext, passProperty bool) (rx.Observable[any], error)
	Watch(x *expr.Expression, ctx *DataContext, passProperty bool, fn func(any) error) (rx.Disposable, error)
	WatchField(path string, ctx *DataContext, passProperty bool, fn func(any) error) (rx.Disposable, error)
	GetDataContext(node *dom.Node) *DataContext
	CleanNode(node *dom.Node)
	CleanDescendants(node *dom.Node)
	ApplyBindings(model any, node *dom.Node) error
	ApplyBindingsToDescendants(ctx *DataContext, node *dom.Node) error
	Registry() *Registry
	Sink() errors.Sink
}

// Command is the shape the command binding accepts.
type Command interface {
	CanExecute(param any) bool
	CanExecuteObservable() rx.Observable[bool]
	Execute(param any) error
}

// Target classifies a value a binding resolved to.
type Target uint8

const (
	TargetValue Target = iota
	// TargetProperty is a writable property.
	TargetProperty
	// TargetComputed is a read-only property.
	TargetComputed
	TargetCommand
	TargetFunc
)

func (t Target) String() string {
	switch t {
	case TargetProperty:
		return "property"
	case TargetComputed:
		return "computed"
	case TargetCommand:
		return "command"
	case TargetFunc:
		return "func"
	default:
		return "value"
	}
}

// Classify reports the capability of v.
func Classify(v any) Target {
	switch x := v.(type) {
	case nil:
		return TargetValue
	case property.Untyped:
		if x.ReadOnly() {
			return TargetComputed
		}
		return TargetProperty
	case Command:
		return TargetCommand
	}
	if reflect.TypeOf(v).Kind() == reflect.Func {
		return TargetFunc
	}
	return TargetValue
}

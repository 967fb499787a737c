package binding

import (
	"github.com/delaneyj/domwire/pkg/rx"
)

// NodeState is the bookkeeping the engine keeps for one DOM node while it is
// bound. Handlers add every subscription and listener they create to Cleanup.
type NodeState struct {
	Cleanup *rx.Composite
	// Properties is a bag for handler data, e.g. the injected model.
	Properties map[string]any
	// Module scopes handler resolution for the node and its subtree.
	Module *Module
	// Context is the data context the node's bindings were applied with.
	Context *DataContext
	// ChildContext is the context its descendants were bound with, when a
	// handler applied them itself.
	ChildContext *DataContext

	bound    bool
	disposed bool
}

func newNodeState(ctx *DataContext, module *Module) *NodeState {
	return &NodeState{
		Cleanup:    rx.NewComposite(),
		Properties: map[string]any{},
		Module:     module,
		Context:    ctx,
	}
}

func (s *NodeState) Get(key string) (any, bool) {
	v, ok := s.Properties[key]
	return v, ok
}

func (s *NodeState) Set(key string, v any) {
	s.Properties[key] = v
}

// Bound reports whether bindings have been applied to the node.
func (s *NodeState) Bound() bool {
	return s.bound
}

func (s *NodeState) IsDisposed() bool {
	return s.disposed
}

// Dispose releases everything registered on the node. Disposing twice is a
// no-op.
func (s *NodeState) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.bound = false
	s.Cleanup.Dispose()
	s.Properties = map[string]any{}
}

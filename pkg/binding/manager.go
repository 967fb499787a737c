// Package binding is the engine that applies declarative bindings to a DOM
// tree: data contexts, per-node state, the module registry and the DOM
// manager that walks the tree.
package binding

import (
	stderrors "errors"
	"sort"
	"strings"

	"github.com/delaneyj/domwire/pkg/dom"
	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/delaneyj/domwire/pkg/expr"
	"github.com/delaneyj/domwire/pkg/rx"
)

// DefaultAttribute is the attribute bindings are declared in.
const DefaultAttribute = "data-bind"

// Manager walks DOM trees, applies bindings and tracks per-node state.
type Manager struct {
	registry *Registry
	compiler *expr.Compiler
	attr     string
	sink     errors.Sink
	states   map[*dom.Node]*NodeState
}

type Option func(*Manager)

// WithAttribute changes the attribute bindings are read from.
func WithAttribute(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.attr = name
		}
	}
}

// WithSink routes errors raised after setup to sink instead of the default
// sink.
func WithSink(sink errors.Sink) Option {
	return func(m *Manager) { m.sink = sink }
}

// WithCompiler shares a compile cache between managers.
func WithCompiler(c *expr.Compiler) Option {
	return func(m *Manager) { m.compiler = c }
}

func NewManager(registry *Registry, opts ...Option) *Manager {
	m := &Manager{
		registry: registry,
		attr:     DefaultAttribute,
		states:   map[*dom.Node]*NodeState{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = NewRegistry()
	}
	if m.compiler == nil {
		m.compiler = expr.NewCompiler()
	}
	return m
}

var _ DOM = (*Manager)(nil)

func (m *Manager) Registry() *Registry { return m.registry }

func (m *Manager) Attribute() string { return m.attr }

// Sink returns the sink for errors raised after setup, which may be nil to
// mean the process-wide default.
func (m *Manager) Sink() errors.Sink { return m.sink }

func (m *Manager) Compile(src string) (*expr.Expression, error) {
	return m.compiler.Compile(src)
}

func (m *Manager) CompileBindingOptions(src string) (*expr.Options, error) {
	return m.compiler.CompileOptions(src)
}

// Watch calls fn with the value of x now and again whenever a property it
// depends on changes to a different result. Errors of the first evaluation
// are returned; later ones go to the sink of the property that changed.
func (m *Manager) Watch(x *expr.Expression, ctx *DataContext, passProperty bool, fn func(any) error) (rx.Disposable, error) {
	w := newWatcher(x, ctx, passProperty, fn)
	if err := w.start(); err != nil {
		w.Dispose()
		return nil, err
	}
	return w, nil
}

// WatchField is Watch for a field access path such as `a.b[0]`.
func (m *Manager) WatchField(path string, ctx *DataContext, passProperty bool, fn func(any) error) (rx.Disposable, error) {
	x, err := m.fieldAccess(path)
	if err != nil {
		return nil, err
	}
	return m.Watch(x, ctx, passProperty, fn)
}

func (m *Manager) fieldAccess(path string) (*expr.Expression, error) {
	x, err := m.compiler.Compile(path)
	if err != nil {
		return nil, err
	}
	if !x.IsPath() {
		return nil, errors.Binding("binding.FieldAccess", path, "not a field access path")
	}
	return x, nil
}

// ExpressionToObservable streams the value of x in ctx. Each subscriber gets
// the current value synchronously, then every distinct change. Evaluation
// errors go to the manager's sink.
func (m *Manager) ExpressionToObservable(x *expr.Expression, ctx *DataContext) rx.Observable[any] {
	return m.observe(x, ctx, false)
}

// FieldAccessToObservable streams the value at path. With passProperty set a
// path ending on a property emits the property itself. A path that does not
// resolve in ctx is returned as a binding error; errors on later changes go
// to the sink.
func (m *Manager) FieldAccessToObservable(path string, ctx *DataContext, passProperty bool) (rx.Observable[any], error) {
	x, err := m.fieldAccess(path)
	if err != nil {
		return nil, err
	}
	eval := x.Eval
	if passProperty {
		eval = x.Ref
	}
	if _, err := eval(expr.Env{Scope: ctx}); err != nil {
		return nil, err
	}
	return m.observe(x, ctx, passProperty), nil
}

func (m *Manager) observe(x *expr.Expression, ctx *DataContext, passProperty bool) rx.Observable[any] {
	return rx.Func[any](func(fn func(any) error) rx.Disposable {
		w := newWatcher(x, ctx, passProperty, func(v any) error {
			rx.Deliver(m.sink, "binding.observe", fn, v)
			return nil
		})
		if err := w.start(); err != nil {
			errors.Report(m.sink, err)
			return rx.Empty()
		}
		return w
	})
}

// NodeState returns the state of a bound node.
func (m *Manager) NodeState(node *dom.Node) (*NodeState, bool) {
	s, ok := m.states[node]
	return s, ok
}

func (m *Manager) state(node *dom.Node, ctx *DataContext) *NodeState {
	s, ok := m.states[node]
	if !ok {
		s = newNodeState(ctx, m.moduleFor(node))
		m.states[node] = s
	}
	return s
}

// moduleFor finds the module of the nearest node with state.
func (m *Manager) moduleFor(node *dom.Node) *Module {
	for n := node; n != nil; n = n.Parent {
		if s, ok := m.states[n]; ok && s.Module != nil {
			return s.Module
		}
	}
	return m.registry.Root()
}

// GetDataContext returns the data context node is bound in.
func (m *Manager) GetDataContext(node *dom.Node) *DataContext {
	for n := node; n != nil; n = n.Parent {
		s, ok := m.states[n]
		if !ok {
			continue
		}
		if n != node && s.ChildContext != nil {
			return s.ChildContext
		}
		if s.Context != nil {
			return s.Context
		}
	}
	return nil
}

// CleanNode disposes the state of node and of all its descendants. The DOM
// itself is left alone.
func (m *Manager) CleanNode(node *dom.Node) {
	if s, ok := m.states[node]; ok {
		delete(m.states, node)
		s.Dispose()
	}
	m.CleanDescendants(node)
}

func (m *Manager) CleanDescendants(node *dom.Node) {
	for _, c := range node.Children() {
		m.CleanNode(c)
	}
}

// RemoveNode cleans node and detaches it from its parent.
func (m *Manager) RemoveNode(node *dom.Node) {
	m.CleanNode(node)
	if node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
}

// ApplyBindings binds root and its subtree to model, which may be a
// *DataContext. Bindings that fail validation are skipped and reported
// together once the walk is done; any other error stops the walk.
func (m *Manager) ApplyBindings(model any, root *dom.Node) error {
	ctx, ok := model.(*DataContext)
	if !ok {
		ctx = NewContext(model)
	}
	s := m.state(root, ctx)
	if !s.bound {
		s.Context = ctx
	}
	var verrs []error
	if err := m.applyToNode(ctx, root, &verrs); err != nil {
		return err
	}
	return stderrors.Join(verrs...)
}

// ApplyBindingsToDescendants binds the children of node in ctx. Handlers
// that control descendants call it themselves.
func (m *Manager) ApplyBindingsToDescendants(ctx *DataContext, node *dom.Node) error {
	m.state(node, ctx).ChildContext = ctx
	var verrs []error
	for _, c := range node.Children() {
		if err := m.applyToNode(ctx, c, &verrs); err != nil {
			return err
		}
	}
	return stderrors.Join(verrs...)
}

func (m *Manager) applyToNode(ctx *DataContext, node *dom.Node, verrs *[]error) error {
	if node.Type == dom.ElementNode {
		controls, err := m.applyBindingsToNode(ctx, node)
		if err != nil {
			if !validationOnly(err) {
				return err
			}
			*verrs = append(*verrs, err)
		}
		if controls {
			return nil
		}
	}
	for _, c := range node.Children() {
		if err := m.applyToNode(ctx, c, verrs); err != nil {
			return err
		}
	}
	return nil
}

type scheduled struct {
	decl    expr.Declaration
	handler Handler
	info    Info
}

func (m *Manager) applyBindingsToNode(ctx *DataContext, node *dom.Node) (bool, error) {
	src, ok := node.Attr(m.attr)
	if !ok || strings.TrimSpace(src) == "" {
		return false, nil
	}
	decls, err := m.compiler.ParseDeclarations(src)
	if err != nil {
		return false, err
	}

	module := m.moduleFor(node)
	list := make([]scheduled, 0, len(decls))
	controls, rebind := false, true
	for _, d := range decls {
		h, ok := module.Handler(d.Name)
		if !ok {
			return false, errors.Binding("binding.apply", d.Name, "no handler for binding %q in module %q", d.Name, module.Name)
		}
		info := h.Info()
		controls = controls || info.Caps.Has(CapControlsDescendants)
		rebind = rebind && info.Caps.Has(CapAllowRebind)
		list = append(list, scheduled{decl: d, handler: h, info: info})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].info.Priority < list[j].info.Priority })

	s, exists := m.states[node]
	if exists && s.bound && !rebind {
		return controls, errors.New("binding.apply", errors.KindAlreadyBound, "bindings already applied to <%s>", node.Tag)
	}
	if !exists || s.disposed {
		s = newNodeState(ctx, module)
		m.states[node] = s
	}
	s.Context = ctx
	s.bound = true

	var verrs []error
	for _, sc := range list {
		if err := sc.handler.ApplyBinding(node, sc.decl.Options, ctx, s, module); err != nil {
			if !validationOnly(err) {
				return controls, err
			}
			verrs = append(verrs, err)
		}
	}
	return controls, stderrors.Join(verrs...)
}

// validationOnly reports whether every error joined in err is a validation
// error.
func validationOnly(err error) bool {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !validationOnly(e) {
				return false
			}
		}
		return true
	}
	return errors.KindOf(err) == errors.KindValidation
}

// Stats summarizes what the manager is tracking.
type Stats struct {
	// Nodes with state.
	Nodes int
	// Bound nodes.
	Bound int
	// Disposables registered across all bound nodes.
	Disposables int
	// Compiled entries in the expression cache.
	Compiled int
}

func (m *Manager) Stats() Stats {
	st := Stats{Nodes: len(m.states), Compiled: m.compiler.Len()}
	for _, s := range m.states {
		if s.bound {
			st.Bound++
		}
		st.Disposables += s.Cleanup.Len()
	}
	return st
}

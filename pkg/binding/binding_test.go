package binding_test

import (
	"testing"

	"github.com/delaneyj/domwire/pkg/binding"
	"github.com/delaneyj/domwire/pkg/dom"
	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/delaneyj/domwire/pkg/expr"
	"github.com/delaneyj/domwire/pkg/property"
	"github.com/delaneyj/domwire/pkg/rx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	name string
	info binding.Info
	log  *[]string
	err  error
}

func (r *recorder) Info() binding.Info { return r.info }
func (r *recorder) Configure(map[string]any) error { return nil }
func (r *recorder) String() string { return r.name }
func (r *recorder) ApplyBinding(node *dom.Node, options string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	*r.log = append(*r.log, r.name+":"+options)
	state.Cleanup.Add(rx.Action(func() { *r.log = append(*r.log, "dispose "+r.name) }))
	return r.err
}

func setup(t *testing.T, markup string) (*binding.Manager, *dom.Node, *[]string) {
	t.Helper()
	log := &[]string{}
	reg := binding.NewRegistry()
	reg.Root().
		Register("a", &recorder{name: "a", info: binding.Info{Priority: 10}, log: log}).
		Register("b", &recorder{name: "b", info: binding.Info{Priority: -5}, log: log}).
		Register("c", &recorder{name: "c", log: log}).
		Register("scope", &recorder{name: "scope", info: binding.Info{Caps: binding.CapControlsDescendants}, log: log}).
		Register("again", &recorder{name: "again", info: binding.Info{Caps: binding.CapAllowRebind}, log: log}).
		Register("bad", &recorder{name: "bad", log: log, err: errors.Validation("test.bad", "wrong node")}).
		Register("broken", &recorder{name: "broken", log: log, err: errors.Binding("test.broken", "x.y", "unresolved")})
	body, err := dom.ParseBody(markup)
	require.NoError(t, err)
	return binding.NewManager(reg), body, log
}

func TestContextResolution(t *testing.T) {
	root := binding.NewContext(map[string]any{"title": "root", "shared": 1})
	mid := root.Child(map[string]any{"name": "mid", "shared": 2})
	leaf := mid.ChildAt(map[string]any{"name": "leaf"}, 3)

	get := func(c *binding.DataContext, name string) any {
		v, ok := c.Resolve(name)
		require.True(t, ok, name)
		return v
	}
	assert.Equal(t, "leaf", get(leaf, "name"))
	assert.Equal(t, 2, get(leaf, "shared"))
	assert.Equal(t, "root", get(leaf, "title"))
	assert.Equal(t, 3, get(leaf, "$index"))
	assert.Equal(t, mid.Data(), get(leaf, "$parent"))
	assert.Equal(t, root.Data(), get(leaf, "$root"))
	assert.Equal(t, []any{mid.Data(), root.Data()}, get(leaf, "$parents"))
	assert.Nil(t, get(root, "$parent"))
	assert.Nil(t, get(mid, "$index"))

	_, ok := leaf.Resolve("missing")
	assert.False(t, ok)

	aliased := leaf.With("item", "x")
	assert.Equal(t, "x", get(aliased, "item"))
	assert.Equal(t, "x", get(aliased.Child(nil), "item"))
	_, ok = leaf.Resolve("item")
	assert.False(t, ok)
}

// bindings on a node run by ascending priority, stable for ties
func TestPriorityOrder(t *testing.T) {
	m, body, log := setup(t, `<div data-bind="a: 1, c: 2, b: 3, c: 4"></div>`)
	err := m.ApplyBindings(nil, body)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindParse), "duplicate binding names are rejected")

	m, body, log = setup(t, `<div data-bind="a: 1, c: 2, b: 3"><span data-bind="c: 5"></span></div>`)
	require.NoError(t, m.ApplyBindings(nil, body))
	assert.Equal(t, []string{"b:3", "c:2", "a:1", "c:5"}, *log)
}

func TestControlsDescendantsSkipsChildren(t *testing.T) {
	m, body, log := setup(t, `<div data-bind="scope: 1"><p data-bind="c: 2"></p></div><p data-bind="c: 3"></p>`)
	require.NoError(t, m.ApplyBindings(nil, body))
	assert.Equal(t, []string{"scope:1", "c:3"}, *log)

	div := body.FirstChild()
	require.NoError(t, m.ApplyBindingsToDescendants(binding.NewContext("inner"), div))
	assert.Equal(t, []string{"scope:1", "c:3", "c:2"}, *log)
	assert.Equal(t, "inner", m.GetDataContext(div.FirstChild()).Data())
}

func TestAlreadyBound(t *testing.T) {
	m, body, _ := setup(t, `<div data-bind="c: 1"></div>`)
	require.NoError(t, m.ApplyBindings(nil, body))
	err := m.ApplyBindings(nil, body)
	assert.True(t, errors.Is(err, errors.KindAlreadyBound))
}

func TestRebindAllowed(t *testing.T) {
	m, body, log := setup(t, `<div data-bind="again: 1"></div>`)
	require.NoError(t, m.ApplyBindings(nil, body))
	require.NoError(t, m.ApplyBindings(nil, body.FirstChild()))
	assert.Equal(t, []string{"again:1", "again:1"}, *log)
}

// a validation error skips that binding only and is reported after the walk
func TestValidationErrorsAreCollected(t *testing.T) {
	m, body, log := setup(t, `<div data-bind="bad: 1, c: 2"></div><p data-bind="bad: 3"></p><i data-bind="a: 4"></i>`)
	err := m.ApplyBindings(nil, body)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindValidation))
	assert.Equal(t, []string{"bad:1", "c:2", "bad:3", "a:4"}, *log)
}

// a binding error stops the walk
func TestBindingErrorAborts(t *testing.T) {
	m, body, log := setup(t, `<div data-bind="broken: 1, c: 2"></div><p data-bind="c: 3"></p>`)
	err := m.ApplyBindings(nil, body)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindBinding))
	assert.Equal(t, []string{"broken:1"}, *log)
}

func TestUnknownBinding(t *testing.T) {
	m, body, _ := setup(t, `<div data-bind="nope: 1"></div>`)
	err := m.ApplyBindings(nil, body)
	assert.True(t, errors.Is(err, errors.KindBinding))
	assert.Contains(t, err.Error(), "nope")
}

func TestCleanNodeDisposesOnce(t *testing.T) {
	m, body, log := setup(t, `<div data-bind="c: 1"><p data-bind="a: 2"></p></div>`)
	require.NoError(t, m.ApplyBindings(nil, body))
	div := body.FirstChild()
	state, ok := m.NodeState(div)
	require.True(t, ok)

	m.CleanNode(div)
	m.CleanNode(div)
	state.Dispose()
	assert.Equal(t, []string{"c:1", "a:2", "dispose c", "dispose a"}, *log)
	assert.True(t, state.IsDisposed())
	_, ok = m.NodeState(div.FirstChild())
	assert.False(t, ok)

	// a cleaned node can be bound again
	require.NoError(t, m.ApplyBindings(nil, div))
}

// scoped switches the module of its node and binds the children itself
type scoped struct {
	dm     *binding.Manager
	module *binding.Module
}

func (s *scoped) Info() binding.Info {
	return binding.Info{Caps: binding.CapControlsDescendants}
}
func (s *scoped) Configure(map[string]any) error { return nil }
func (s *scoped) ApplyBinding(node *dom.Node, _ string, ctx *binding.DataContext, state *binding.NodeState, _ *binding.Module) error {
	state.Module = s.module
	return s.dm.ApplyBindingsToDescendants(ctx, node)
}

func TestModuleScoping(t *testing.T) {
	m, body, log := setup(t, `<section data-bind="special: 1"><p data-bind="c: 1"></p></section><p data-bind="c: 2"></p>`)
	special := m.Registry().Define("special", nil)
	special.Register("c", &recorder{name: "special-c", log: log})
	m.Registry().Root().Register("special", &scoped{dm: m, module: special})

	require.NoError(t, m.ApplyBindings(nil, body))
	assert.Equal(t, []string{"special-c:1", "c:2"}, *log)

	h, ok := special.Handler("a")
	assert.True(t, ok, "lookups fall back to the parent module")
	assert.NotNil(t, h)
	_, ok = m.Registry().Root().Handler("nope")
	assert.False(t, ok)
	assert.Equal(t, []string{"app", "special"}, m.Registry().Names())
}

func TestWatchTracksDynamicDependencies(t *testing.T) {
	m := binding.NewManager(nil)
	useA := property.New(true)
	a, b := property.New("a1"), property.New("b1")
	ctx := binding.NewContext(map[string]any{"useA": useA, "a": a, "b": b})

	x, err := m.Compile(`useA ? a : b`)
	require.NoError(t, err)
	var seen []any
	d, err := m.Watch(x, ctx, false, func(v any) error {
		seen = append(seen, v)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.SetValue("b2"))
	require.NoError(t, a.SetValue("a2"))
	require.NoError(t, useA.SetValue(false))
	require.NoError(t, a.SetValue("a3"))
	require.NoError(t, b.SetValue("b3"))
	assert.Equal(t, []any{"a1", "a2", "b2", "b3"}, seen)

	d.Dispose()
	require.NoError(t, b.SetValue("b4"))
	assert.Len(t, seen, 4)
}

func TestWatchReportsSetupErrors(t *testing.T) {
	m := binding.NewManager(nil)
	_, err := m.WatchField("missing.path", binding.NewContext(map[string]any{}), false, func(any) error { return nil })
	assert.True(t, errors.Is(err, errors.KindBinding))

	_, err = m.WatchField("a + b", binding.NewContext(nil), false, func(any) error { return nil })
	assert.True(t, errors.Is(err, errors.KindBinding))
}

func TestFieldAccessToObservable(t *testing.T) {
	m := binding.NewManager(nil)
	name := property.New("ann")
	ctx := binding.NewContext(map[string]any{"user": map[string]any{"name": name}})

	values, err := m.FieldAccessToObservable("user.name", ctx, false)
	require.NoError(t, err)
	var got []any
	d := values.Subscribe(func(v any) error {
		got = append(got, v)
		return nil
	})
	require.NoError(t, name.SetValue("bob"))
	d.Dispose()
	require.NoError(t, name.SetValue("cy"))
	assert.Equal(t, []any{"ann", "bob"}, got)

	refs, err := m.FieldAccessToObservable("user.name", ctx, true)
	require.NoError(t, err)
	var ref any
	refs.Subscribe(func(v any) error {
		ref = v
		return nil
	})
	assert.Same(t, name, ref)
}

func TestFieldAccessToObservableUnresolved(t *testing.T) {
	var reported []error
	m := binding.NewManager(nil, binding.WithSink(errors.SinkFunc(func(err error) { reported = append(reported, err) })))
	ctx := binding.NewContext(map[string]any{"user": map[string]any{"name": nil}})

	_, err := m.FieldAccessToObservable("nobody.name", ctx, false)
	assert.True(t, errors.Is(err, errors.KindBinding))
	_, err = m.FieldAccessToObservable("nobody", ctx, true)
	assert.True(t, errors.Is(err, errors.KindBinding))
	assert.Empty(t, reported)

	values, err := m.FieldAccessToObservable("user.name", ctx, false)
	require.NoError(t, err)
	var got []any
	values.Subscribe(func(v any) error {
		got = append(got, v)
		return nil
	})
	assert.Equal(t, []any{nil}, got)
}

func TestExpressionToObservableRoutesErrors(t *testing.T) {
	var reported []error
	m := binding.NewManager(nil, binding.WithSink(errors.SinkFunc(func(err error) { reported = append(reported, err) })))
	x, err := m.Compile(`missing`)
	require.NoError(t, err)
	m.ExpressionToObservable(x, binding.NewContext(nil)).Subscribe(func(any) error { return nil })
	require.Len(t, reported, 1)
	assert.True(t, errors.Is(reported[0], errors.KindBinding))
}

type cmd struct{}

func (cmd) CanExecute(any) bool { return true }
func (cmd) CanExecuteObservable() rx.Observable[bool] { return rx.Just(true) }
func (cmd) Execute(any) error { return nil }

func TestClassify(t *testing.T) {
	assert.Equal(t, binding.TargetValue, binding.Classify(nil))
	assert.Equal(t, binding.TargetValue, binding.Classify(3))
	assert.Equal(t, binding.TargetProperty, binding.Classify(property.New(1)))
	assert.Equal(t, binding.TargetComputed, binding.Classify(property.Computed(rx.Just(1))))
	assert.Equal(t, binding.TargetCommand, binding.Classify(cmd{}))
	assert.Equal(t, binding.TargetFunc, binding.Classify(func() {}))
	assert.Equal(t, "computed", binding.TargetComputed.String())
}

func TestStats(t *testing.T) {
	m, body, _ := setup(t, `<div data-bind="c: 1"></div><p data-bind="c: 1"></p>`)
	require.NoError(t, m.ApplyBindings(nil, body))
	st := m.Stats()
	assert.Equal(t, 2, st.Bound)
	assert.Equal(t, 3, st.Nodes)
	assert.Equal(t, 2, st.Disposables)
	assert.Equal(t, 1, st.Compiled)
}

var _ expr.Scope = (*binding.DataContext)(nil)

package binding

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/delaneyj/domwire/pkg/expr"
	"github.com/delaneyj/domwire/pkg/property"
	"github.com/delaneyj/domwire/pkg/rx"
)

// watcher re-evaluates an expression whenever a property it read changes.
// Dependencies are collected on every evaluation, so branches that stop
// reading a property stop listening to it.
type watcher struct {
	eval func(env expr.Env) (any, error)
	ctx  *DataContext
	fn   func(any) error

	deps     mapset.Set[property.Untyped]
	subs     map[property.Untyped]rx.Disposable
	last     any
	disposed bool
}

func newWatcher(x *expr.Expression, ctx *DataContext, passProperty bool, fn func(any) error) *watcher {
	eval := x.Eval
	if passProperty {
		eval = x.Ref
	}
	return &watcher{
		eval: eval,
		ctx:  ctx,
		fn:   fn,
		deps: mapset.NewThreadUnsafeSet[property.Untyped](),
		subs: map[property.Untyped]rx.Disposable{},
	}
}

// start runs the first evaluation synchronously and returns its error.
func (w *watcher) start() error {
	v, err := w.evaluate()
	if err != nil {
		w.Dispose()
		return err
	}
	w.last = v
	return w.fn(v)
}

func (w *watcher) evaluate() (any, error) {
	deps := mapset.NewThreadUnsafeSet[property.Untyped]()
	v, err := w.eval(expr.Env{
		Scope: w.ctx,
		Track: func(p property.Untyped) { deps.Add(p) },
	})
	if w.disposed {
		return v, err
	}
	for p := range w.deps.Difference(deps).Iter() {
		w.subs[p].Dispose()
		delete(w.subs, p)
	}
	for p := range deps.Difference(w.deps).Iter() {
		w.subs[p] = p.Observe().Subscribe(w.changed)
	}
	w.deps = deps
	return v, err
}

func (w *watcher) changed(any) error {
	if w.disposed {
		return nil
	}
	v, err := w.evaluate()
	if err != nil {
		return err
	}
	if rx.Same(w.last, v) {
		return nil
	}
	w.last = v
	return w.fn(v)
}

func (w *watcher) Dispose() {
	if w.disposed {
		return
	}
	w.disposed = true
	for _, d := range w.subs {
		d.Dispose()
	}
	w.subs = nil
	w.deps.Clear()
}

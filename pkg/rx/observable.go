// Package rx implements the small push-stream toolkit the binding engine is
// built on: observables, subjects and disposables.
//
// Everything here is single-threaded. Callbacks run synchronously on the
// goroutine that emits; errors they return or panics they raise are routed to
// an errors.Sink instead of unwinding the emitter.
package rx

import (
	"github.com/delaneyj/domwire/pkg/errors"
)

// Observable is a push stream of values.
type Observable[T any] interface {
	Subscribe(fn func(T) error) Disposable
}

// Func adapts a subscribe function to Observable.
type Func[T any] func(fn func(T) error) Disposable

func (f Func[T]) Subscribe(fn func(T) error) Disposable {
	return f(fn)
}

// Deliver calls fn with v, sending a returned error or a recovered panic to
// sink (or the default sink when sink is nil).
func Deliver[T any](sink errors.Sink, op string, fn func(T) error, v T) {
	defer errors.Recover(op, sink)
	if err := fn(v); err != nil {
		errors.Report(sink, err)
	}
}

// Just emits v once, synchronously, on subscription.
func Just[T any](v T) Observable[T] {
	return Func[T](func(fn func(T) error) Disposable {
		Deliver(nil, "rx.Just", fn, v)
		return Empty()
	})
}

// Never returns an Observable that never emits.
func Never[T any]() Observable[T] {
	return Func[T](func(fn func(T) error) Disposable {
		return Empty()
	})
}

// Map projects every value of src through project.
func Map[T, R any](src Observable[T], project func(T) R) Observable[R] {
	return Func[R](func(fn func(R) error) Disposable {
		return src.Subscribe(func(v T) error {
			return fn(project(v))
		})
	})
}

// Filter forwards only the values for which keep returns true.
func Filter[T any](src Observable[T], keep func(T) bool) Observable[T] {
	return Func[T](func(fn func(T) error) Disposable {
		return src.Subscribe(func(v T) error {
			if !keep(v) {
				return nil
			}
			return fn(v)
		})
	})
}

// DistinctUntilChanged drops values that are the Same as the immediately
// previous one. Older values are not remembered.
func DistinctUntilChanged[T any](src Observable[T]) Observable[T] {
	return Func[T](func(fn func(T) error) Disposable {
		var (
			last T
			seen bool
		)
		return src.Subscribe(func(v T) error {
			if seen && Same(last, v) {
				return nil
			}
			last, seen = v, true
			return fn(v)
		})
	})
}

// ToAny erases the element type of src.
func ToAny[T any](src Observable[T]) Observable[any] {
	return Map(src, func(v T) any { return v })
}

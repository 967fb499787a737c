// Package property implements observable properties: single mutable cells that
// announce writes on a changing and a changed stream.
package property

import (
	"fmt"
	"reflect"

	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/delaneyj/domwire/pkg/rx"
)

// Untyped is the view of a Property the binding engine works with, independent
// of the type parameter.
type Untyped interface {
	Get() any
	Set(v any) error
	ReadOnly() bool
	// Observe streams every value announced on the changed stream.
	Observe() rx.Observable[any]
}

// Property is an observable cell holding a T.
//
// Writing a value that is rx.Same as the current one is a no-op, except for
// the very first write to a property created without an initial value.
type Property[T any] struct {
	value    T
	hasValue bool

	changing *rx.Subject[T]
	changed  *rx.Subject[T]

	// computed properties only
	source    rx.Observable[T]
	sourceSub rx.Disposable
	connected bool

	disposed bool
}

// New creates a writable property. With no argument the property starts at
// the zero value of T and its first write always notifies.
func New[T any](initial ...T) *Property[T] {
	p := &Property[T]{
		changing: rx.NewSubject[T](),
		changed:  rx.NewSubject[T](),
	}
	if len(initial) > 0 {
		p.value = initial[0]
		p.hasValue = true
	}
	return p
}

// Computed creates a read-only property mirroring source. The source is
// subscribed on first read or first subscription, not at construction.
func Computed[T any](source rx.Observable[T]) *Property[T] {
	p := New[T]()
	p.source = source
	return p
}

func (p *Property[T]) connect() {
	if p.source == nil || p.connected || p.disposed {
		return
	}
	p.connected = true
	p.sourceSub = p.source.Subscribe(func(v T) error {
		p.assign(v)
		return nil
	})
}

func (p *Property[T]) Value() T {
	p.connect()
	return p.value
}

func (p *Property[T]) SetValue(v T) error {
	if p.source != nil {
		return errors.New("property.SetValue", errors.KindReadOnly, "cannot write %v to a computed property", v)
	}
	if p.disposed {
		return errors.New("property.SetValue", errors.KindDisposed, "property is disposed")
	}
	p.assign(v)
	return nil
}

func (p *Property[T]) assign(v T) {
	if p.disposed || (p.hasValue && rx.Same(p.value, v)) {
		return
	}
	p.changing.Next(v)
	p.value = v
	p.hasValue = true
	p.changed.Next(v)
}

// Changing emits the incoming value before it is assigned.
func (p *Property[T]) Changing() rx.Observable[T] {
	return rx.Func[T](func(fn func(T) error) rx.Disposable {
		p.connect()
		return p.changing.Subscribe(fn)
	})
}

// Changed emits the new value after it is assigned.
func (p *Property[T]) Changed() rx.Observable[T] {
	return rx.Func[T](func(fn func(T) error) rx.Disposable {
		p.connect()
		return p.changed.Subscribe(fn)
	})
}

// SetSink overrides where errors raised by this property's subscribers go.
func (p *Property[T]) SetSink(sink errors.Sink) {
	p.changing.SetSink(sink)
	p.changed.SetSink(sink)
}

func (p *Property[T]) ReadOnly() bool {
	return p.source != nil
}

func (p *Property[T]) IsDisposed() bool {
	return p.disposed
}

// Dispose releases all subscribers and, for computed properties, the source
// subscription. The last value stays readable.
func (p *Property[T]) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	if p.sourceSub != nil {
		p.sourceSub.Dispose()
		p.sourceSub = nil
	}
	p.changing.Complete()
	p.changed.Complete()
}

func (p *Property[T]) String() string {
	return fmt.Sprint(p.value)
}

func (p *Property[T]) Get() any {
	return p.Value()
}

// Set converts v to T and writes it. nil writes the zero value.
func (p *Property[T]) Set(v any) error {
	t, err := convert[T](v)
	if err != nil {
		return err
	}
	return p.SetValue(t)
}

func (p *Property[T]) Observe() rx.Observable[any] {
	return rx.ToAny(p.Changed())
}

func convert[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	target := reflect.TypeOf((*T)(nil)).Elem()
	rv := reflect.ValueOf(v)
	if rv.Type().ConvertibleTo(target) && convertible(rv.Kind(), target.Kind()) {
		return rv.Convert(target).Interface().(T), nil
	}
	return zero, errors.New("property.Set", errors.KindValidation, "cannot assign %T to property of %s", v, target)
}

// convertible rejects conversions reflect allows but that lose meaning, such
// as int to string.
func convertible(from, to reflect.Kind) bool {
	if to == reflect.String {
		return from == reflect.String
	}
	return true
}

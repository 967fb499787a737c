package rx_test

import (
	stderrors "errors"
	"testing"

	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/delaneyj/domwire/pkg/rx"
	"github.com/stretchr/testify/assert"
)

// composite disposes each child exactly once
func TestCompositeDisposeOnce(t *testing.T) {
	calls := 0
	c := rx.NewComposite(rx.Action(func() { calls++ }), rx.Action(func() { calls++ }))
	assert.Equal(t, 2, c.Len())

	c.Dispose()
	c.Dispose()
	assert.Equal(t, 2, calls)
	assert.True(t, c.IsDisposed())
	assert.Equal(t, 0, c.Len())
}

// a child disposing its parent while being disposed is harmless
func TestCompositeReentrantDispose(t *testing.T) {
	calls := 0
	c := rx.NewComposite()
	c.Add(rx.Action(func() {
		calls++
		c.Dispose()
	}))
	c.Add(rx.Action(func() { calls++ }))

	c.Dispose()
	assert.Equal(t, 2, calls)
}

func TestCompositeAddAfterDispose(t *testing.T) {
	c := rx.NewComposite()
	c.Dispose()

	disposed := false
	c.Add(rx.Action(func() { disposed = true }))
	assert.True(t, disposed)
}

func TestCompositeRemove(t *testing.T) {
	disposed := false
	d := rx.Action(func() { disposed = true })
	c := rx.NewComposite(d)

	assert.True(t, c.Remove(d))
	assert.True(t, disposed)
	assert.False(t, c.Remove(d))
	assert.Equal(t, 0, c.Len())
}

func TestSerialDisposesPrevious(t *testing.T) {
	var s rx.Serial
	first, second := 0, 0
	s.Set(rx.Action(func() { first++ }))
	s.Set(rx.Action(func() { second++ }))
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)

	s.Dispose()
	assert.Equal(t, 1, second)

	late := false
	s.Set(rx.Action(func() { late = true }))
	assert.True(t, late)
}

// subjects do not replay values emitted before subscription
func TestSubjectNoReplay(t *testing.T) {
	s := rx.NewSubject[int]()
	s.Next(1)

	var got []int
	sub := s.Subscribe(func(v int) error {
		got = append(got, v)
		return nil
	})
	s.Next(2)
	sub.Dispose()
	s.Next(3)

	assert.Equal(t, []int{2}, got)
	assert.False(t, s.HasObservers())
}

// subscribers are notified in subscription order
func TestSubjectOrder(t *testing.T) {
	s := rx.NewSubject[string]()
	var got []string
	s.Subscribe(func(v string) error { got = append(got, "a"+v); return nil })
	s.Subscribe(func(v string) error { got = append(got, "b"+v); return nil })
	s.Next("1")
	assert.Equal(t, []string{"a1", "b1"}, got)
}

func TestSubjectUnsubscribeDuringNext(t *testing.T) {
	s := rx.NewSubject[int]()
	var second rx.Disposable
	calls := 0
	s.Subscribe(func(int) error {
		second.Dispose()
		return nil
	})
	second = s.Subscribe(func(int) error {
		calls++
		return nil
	})

	s.Next(1)
	s.Next(2)
	assert.Equal(t, 0, calls)
}

// callback errors and panics go to the sink, other subscribers still run
func TestSubjectRoutesErrorsToSink(t *testing.T) {
	var reported []error
	s := rx.NewSubject[int]()
	s.SetSink(errors.SinkFunc(func(err error) { reported = append(reported, err) }))

	delivered := 0
	s.Subscribe(func(int) error { return stderrors.New("bad") })
	s.Subscribe(func(int) error { panic("worse") })
	s.Subscribe(func(int) error { delivered++; return nil })

	s.Next(1)
	assert.Equal(t, 1, delivered)
	assert.Len(t, reported, 2)
	assert.Equal(t, errors.KindPanic, errors.KindOf(reported[1]))
}

func TestSubjectComplete(t *testing.T) {
	s := rx.NewSubject[int]()
	calls := 0
	s.Subscribe(func(int) error { calls++; return nil })
	s.Complete()
	s.Next(1)
	s.Subscribe(func(int) error { calls++; return nil })
	s.Next(2)
	assert.Equal(t, 0, calls)
}

func TestOperators(t *testing.T) {
	s := rx.NewSubject[int]()
	var got []string
	src := rx.Map(rx.Filter(rx.DistinctUntilChanged[int](s), func(v int) bool { return v > 0 }),
		func(v int) string { return string(rune('a' + v)) })
	src.Subscribe(func(v string) error {
		got = append(got, v)
		return nil
	})

	for _, v := range []int{1, 1, 2, 0, 2, 2, 1} {
		s.Next(v)
	}
	assert.Equal(t, []string{"b", "c", "c", "b"}, got)
}

func TestJustEmitsSynchronously(t *testing.T) {
	var got any
	rx.ToAny(rx.Just(42)).Subscribe(func(v any) error {
		got = v
		return nil
	})
	assert.Equal(t, 42, got)
}

func TestSame(t *testing.T) {
	slice := []int{1, 2}
	m := map[string]int{}
	assert.True(t, rx.Same(nil, nil))
	assert.True(t, rx.Same(1, 1))
	assert.False(t, rx.Same(1, int64(1)))
	assert.False(t, rx.Same(0, nil))
	assert.False(t, rx.Same(false, nil))
	assert.True(t, rx.Same(slice, slice))
	assert.False(t, rx.Same(slice, []int{1, 2}))
	assert.True(t, rx.Same(m, m))
	assert.False(t, rx.Same(m, map[string]int{}))

	type holder struct{ v any }
	assert.False(t, rx.Same(holder{v: []int{1}}, holder{v: []int{1}}))
}

package property_test

import (
	"testing"

	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/delaneyj/domwire/pkg/property"
	"github.com/delaneyj/domwire/pkg/rx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reading back a write returns the same value, falsy ones included
func TestReadBackFalsyValues(t *testing.T) {
	p := property.New[any]("initial")
	for _, v := range []any{nil, false, 0, "", 0.0, "x", true} {
		require.NoError(t, p.SetValue(v))
		assert.Equal(t, v, p.Value())
	}

	b := property.New(true)
	require.NoError(t, b.SetValue(false))
	assert.False(t, b.Value())
}

// writing 1, 2, 2 yields two changed notifications
func TestChangedDeduplicates(t *testing.T) {
	p := property.New[int]()
	var got []int
	p.Changed().Subscribe(func(v int) error {
		got = append(got, v)
		return nil
	})

	for _, v := range []int{1, 2, 2} {
		require.NoError(t, p.SetValue(v))
	}
	assert.Equal(t, []int{1, 2}, got)
}

// the first write to an uninitialised property is never suppressed
func TestFirstWriteNotifies(t *testing.T) {
	p := property.New[int]()
	calls := 0
	p.Changed().Subscribe(func(int) error { calls++; return nil })

	require.NoError(t, p.SetValue(0))
	require.NoError(t, p.SetValue(0))
	assert.Equal(t, 1, calls)

	q := property.New(0)
	q.Changed().Subscribe(func(int) error { calls++; return nil })
	require.NoError(t, q.SetValue(0))
	assert.Equal(t, 1, calls)
}

// changing reaches every subscriber before changed reaches any
func TestChangingBeforeChanged(t *testing.T) {
	p := property.New("a")
	var log []string
	p.Changed().Subscribe(func(v string) error {
		log = append(log, "changed1:"+v+":"+p.Value())
		return nil
	})
	p.Changing().Subscribe(func(v string) error {
		log = append(log, "changing1:"+v+":"+p.Value())
		return nil
	})
	p.Changing().Subscribe(func(v string) error {
		log = append(log, "changing2:"+v)
		return nil
	})
	p.Changed().Subscribe(func(v string) error {
		log = append(log, "changed2:"+v)
		return nil
	})

	require.NoError(t, p.SetValue("b"))
	assert.Equal(t, []string{"changing1:b:a", "changing2:b", "changed1:b:b", "changed2:b"}, log)
}

func TestComputedIsReadOnly(t *testing.T) {
	src := rx.NewSubject[int]()
	c := property.Computed[int](src)

	err := c.SetValue(3)
	require.Error(t, err)
	assert.Equal(t, errors.KindReadOnly, errors.KindOf(err))
	assert.True(t, c.ReadOnly())

	err = c.Set(3)
	assert.True(t, errors.Is(err, errors.KindReadOnly))
}

// computed properties connect lazily and dedup only against the last value
func TestComputedLazyAndDistinct(t *testing.T) {
	subscribed := 0
	src := rx.NewSubject[int]()
	source := rx.Func[int](func(fn func(int) error) rx.Disposable {
		subscribed++
		return src.Subscribe(fn)
	})

	c := property.Computed[int](source)
	assert.Equal(t, 0, subscribed)

	assert.Equal(t, 0, c.Value())
	assert.Equal(t, 1, subscribed)

	var got []int
	c.Changed().Subscribe(func(v int) error {
		got = append(got, v)
		return nil
	})
	for _, v := range []int{1, 1, 2, 1} {
		src.Next(v)
	}
	assert.Equal(t, []int{1, 2, 1}, got)
	assert.Equal(t, 1, c.Value())
	assert.Equal(t, 1, subscribed)
}

func TestComputedDisposeStopsUpdates(t *testing.T) {
	src := rx.NewSubject[string]()
	c := property.Computed[string](src)
	c.Value()

	src.Next("a")
	c.Dispose()
	src.Next("b")

	assert.Equal(t, "a", c.Value())
	assert.False(t, src.HasObservers())
}

func TestDisposeReleasesSubscribers(t *testing.T) {
	p := property.New(1)
	calls := 0
	p.Changed().Subscribe(func(int) error { calls++; return nil })

	p.Dispose()
	p.Dispose()
	err := p.SetValue(2)
	assert.True(t, errors.Is(err, errors.KindDisposed))
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, p.Value())
}

func TestUntypedSet(t *testing.T) {
	p := property.New(1.5)
	var u property.Untyped = p

	require.NoError(t, u.Set(2))
	assert.Equal(t, 2.0, p.Value())

	require.NoError(t, u.Set(nil))
	assert.Equal(t, 0.0, p.Value())

	err := u.Set("nope")
	assert.True(t, errors.Is(err, errors.KindValidation))

	s := property.New("x")
	assert.Error(t, s.Set(65))
}

func TestObserveUntyped(t *testing.T) {
	p := property.New("a")
	var got []any
	p.Observe().Subscribe(func(v any) error {
		got = append(got, v)
		return nil
	})
	require.NoError(t, p.Set("b"))
	assert.Equal(t, []any{"b"}, got)
}

// a per-property sink intercepts subscriber failures
func TestPropertySinkOverride(t *testing.T) {
	p := property.New(0)
	var reported error
	p.SetSink(errors.SinkFunc(func(err error) { reported = err }))
	p.Changed().Subscribe(func(int) error { panic("subscriber failed") })

	require.NoError(t, p.SetValue(1))
	assert.Equal(t, errors.KindPanic, errors.KindOf(reported))
	assert.Equal(t, 1, p.Value())
}

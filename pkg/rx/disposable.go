package rx

// Disposable releases a resource. Dispose must be safe to call more than once.
type Disposable interface {
	Dispose()
}

type action struct {
	fn func()
}

func (a *action) Dispose() {
	if fn := a.fn; fn != nil {
		a.fn = nil
		fn()
	}
}

// Action returns a Disposable that runs fn the first time it is disposed.
func Action(fn func()) Disposable {
	return &action{fn: fn}
}

type empty struct{}

func (empty) Dispose() {}

// Empty returns a Disposable that does nothing.
func Empty() Disposable {
	return empty{}
}

// Composite owns a group of disposables and releases them together.
//
// Disposing a Composite disposes every child exactly once, in the order they
// were added. Anything added after disposal is disposed immediately.
type Composite struct {
	items    []Disposable
	disposed bool
}

func NewComposite(items ...Disposable) *Composite {
	c := &Composite{}
	for _, d := range items {
		c.Add(d)
	}
	return c
}

func (c *Composite) Add(d Disposable) {
	if d == nil {
		return
	}
	if c.disposed {
		d.Dispose()
		return
	}
	c.items = append(c.items, d)
}

// Remove disposes d and drops it from the group. It reports whether d was a
// member.
func (c *Composite) Remove(d Disposable) bool {
	for i, item := range c.items {
		if item == d {
			c.items = append(c.items[:i], c.items[i+1:]...)
			d.Dispose()
			return true
		}
	}
	return false
}

func (c *Composite) Len() int {
	return len(c.items)
}

func (c *Composite) IsDisposed() bool {
	return c.disposed
}

func (c *Composite) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true

	// children may dispose the composite again while we iterate
	items := c.items
	c.items = nil
	for _, d := range items {
		d.Dispose()
	}
}

// Serial holds at most one disposable; replacing it disposes the previous one.
type Serial struct {
	current  Disposable
	disposed bool
}

func (s *Serial) Set(d Disposable) {
	if s.disposed {
		if d != nil {
			d.Dispose()
		}
		return
	}
	prev := s.current
	s.current = d
	if prev != nil {
		prev.Dispose()
	}
}

func (s *Serial) IsDisposed() bool {
	return s.disposed
}

func (s *Serial) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	if prev := s.current; prev != nil {
		s.current = nil
		prev.Dispose()
	}
}

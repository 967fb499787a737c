package rx

import (
	"github.com/delaneyj/domwire/pkg/errors"
)

type subscription[T any] struct {
	fn     func(T) error
	active bool
	owner  *Subject[T]
}

func (s *subscription[T]) Dispose() {
	if !s.active {
		return
	}
	s.active = false
	s.owner.remove(s)
}

// Subject is a hot Observable that pushes values to its current subscribers in
// subscription order. Values emitted while nobody listens are dropped.
type Subject[T any] struct {
	subs      []*subscription[T]
	sink      errors.Sink
	completed bool
}

func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

func (s *Subject[T]) Subscribe(fn func(T) error) Disposable {
	if s.completed {
		return Empty()
	}
	sub := &subscription[T]{fn: fn, active: true, owner: s}
	s.subs = append(s.subs, sub)
	return sub
}

func (s *Subject[T]) remove(sub *subscription[T]) {
	for i, x := range s.subs {
		if x == sub {
			// copy so an in-flight Next keeps its snapshot intact
			next := make([]*subscription[T], 0, len(s.subs)-1)
			next = append(next, s.subs[:i]...)
			s.subs = append(next, s.subs[i+1:]...)
			return
		}
	}
}

// Next delivers v to a snapshot of the current subscribers. Subscribers
// disposed during delivery are skipped.
func (s *Subject[T]) Next(v T) {
	if s.completed {
		return
	}
	for _, sub := range s.subs {
		if !sub.active {
			continue
		}
		Deliver(s.sink, "rx.Subject.Next", sub.fn, v)
	}
}

// SetSink overrides where errors raised by this subject's subscribers go.
func (s *Subject[T]) SetSink(sink errors.Sink) {
	s.sink = sink
}

func (s *Subject[T]) HasObservers() bool {
	return len(s.subs) > 0
}

func (s *Subject[T]) Len() int {
	return len(s.subs)
}

// Complete releases every subscriber. Later emissions and subscriptions are
// ignored.
func (s *Subject[T]) Complete() {
	if s.completed {
		return
	}
	s.completed = true
	for _, sub := range s.subs {
		sub.active = false
	}
	s.subs = nil
}

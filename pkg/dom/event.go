package dom

import "github.com/delaneyj/domwire/pkg/rx"

// Event is dispatched to a target and bubbles up through its ancestors.
type Event struct {
	Type          string
	Target        *Node
	CurrentTarget *Node
	// Detail carries event specific data, e.g. the key of a keyboard event.
	Detail any

	defaultPrevented bool
	stopped          bool
}

func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

func (e *Event) StopPropagation() {
	e.stopped = true
}

type listener struct {
	fn     func(*Event)
	active bool
	owner  *Node
	typ    string
}

func (l *listener) Dispose() {
	if !l.active {
		return
	}
	l.active = false
	l.owner.removeListener(l)
}

// AddEventListener registers fn for events of type typ. Disposing the result
// removes the listener.
func (n *Node) AddEventListener(typ string, fn func(*Event)) rx.Disposable {
	if n.listeners == nil {
		n.listeners = map[string][]*listener{}
	}
	l := &listener{fn: fn, active: true, owner: n, typ: typ}
	n.listeners[typ] = append(n.listeners[typ], l)
	return l
}

func (n *Node) removeListener(l *listener) {
	ls := n.listeners[l.typ]
	for i, x := range ls {
		if x == l {
			next := make([]*listener, 0, len(ls)-1)
			next = append(next, ls[:i]...)
			next = append(next, ls[i+1:]...)
			if len(next) == 0 {
				delete(n.listeners, l.typ)
			} else {
				n.listeners[l.typ] = next
			}
			return
		}
	}
}

// ListenerCount returns the number of listeners for typ on this node only.
func (n *Node) ListenerCount(typ string) int {
	return len(n.listeners[typ])
}

// Dispatch delivers ev to n and then to its ancestors until propagation is
// stopped. It reports whether the default action was not prevented.
func (n *Node) Dispatch(ev *Event) bool {
	if ev.Target == nil {
		ev.Target = n
	}
	for cur := n; cur != nil && !ev.stopped; cur = cur.Parent {
		ev.CurrentTarget = cur
		for _, l := range cur.listeners[ev.Type] {
			if l.active {
				l.fn(ev)
			}
		}
	}
	ev.CurrentTarget = nil
	return !ev.defaultPrevented
}

// Fire dispatches a plain event of the given type.
func (n *Node) Fire(typ string) bool {
	return n.Dispatch(&Event{Type: typ})
}

// Click simulates a user click. Checkboxes toggle and radios check before the
// click is dispatched; a change event follows when the state changed. A
// prevented click reverts the state.
func (n *Node) Click() bool {
	kind := n.InputType()
	before := n.checked
	switch kind {
	case "checkbox":
		n.SetChecked(!before)
	case "radio":
		n.SetChecked(true)
	}

	ok := n.Dispatch(&Event{Type: "click"})
	if kind != "checkbox" && kind != "radio" {
		return ok
	}
	if !ok {
		n.checked = before
		return false
	}
	if n.checked != before {
		n.Fire("change")
	}
	return true
}

// Input simulates typing: the value is set and an input event fired.
func (n *Node) Input(value string) {
	n.SetValue(value)
	n.Fire("input")
}

// Change simulates committing a value: the value is set and a change event
// fired.
func (n *Node) Change(value string) {
	n.SetValue(value)
	n.Fire("change")
}

package dom

import (
	"github.com/wippyai/wasm-dom/event"
)

// ListenerID identifies a listener added with AddEventListener.
type ListenerID uint64

// Listener handles an event.
type Listener func(*event.Event)

// EventTarget is the window, the document or an element.
type EventTarget interface {
	target() *Target
}

type registration struct {
	fn      Listener
	typ     string
	id      ListenerID
	capture bool
	removed bool
}

// Target holds the listeners of one event target. It is embedded in Window,
// Document and Element.
type Target struct {
	doc       *Document
	id        string
	listeners []*registration
	kind      event.TargetKind
}

func (t *Target) target() *Target { return t }

// Kind reports whether the target is an element, the document or the window.
func (t *Target) Kind() event.TargetKind { return t.kind }

// AddEventListener attaches fn for events of type typ. Capture listeners
// run on the way down to the target, others at the target and while
// bubbling.
func (t *Target) AddEventListener(typ string, fn Listener, capture bool) ListenerID {
	t.doc.nextID++
	id := t.doc.nextID
	t.listeners = append(t.listeners, &registration{id: id, typ: typ, fn: fn, capture: capture})
	return id
}

// RemoveEventListener detaches a listener. A listener removed during
// dispatch does not run for the rest of that dispatch.
func (t *Target) RemoveEventListener(id ListenerID) bool {
	for i, r := range t.listeners {
		if r.id == id {
			r.removed = true
			t.listeners = append(t.listeners[:i:i], t.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Listen implements listener.Target.
func (t *Target) Listen(typ string, capture bool, fn func(*event.Event)) func() {
	id := t.AddEventListener(typ, fn, capture)
	return func() { t.RemoveEventListener(id) }
}

// ListenerCount returns the number of listeners for typ.
func (t *Target) ListenerCount(typ string) int {
	n := 0
	for _, r := range t.listeners {
		if r.typ == typ {
			n++
		}
	}
	return n
}

// invoke runs the matching listeners of t for the event's current phase.
func (t *Target) invoke(ev *event.Event) {
	ev.CurrentTarget = t.kind
	snapshot := append([]*registration(nil), t.listeners...)
	for _, r := range snapshot {
		if r.removed || r.typ != ev.Type {
			continue
		}
		switch ev.Phase {
		case event.PhaseCapturing:
			if !r.capture {
				continue
			}
		case event.PhaseBubbling:
			if r.capture {
				continue
			}
		}
		r.fn(ev)
		if ev.ImmediatePropagationStopped() {
			return
		}
	}
}

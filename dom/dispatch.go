package dom

import (
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-dom/event"
)

// Dispatch fires ev at t: capture listeners from the window down to t's
// parent, then t's own listeners, then, if the event bubbles, non-capture
// listeners back up to the window. A zero TimeStamp is stamped with Now.
// Returns false if a listener canceled the event.
func (d *Document) Dispatch(t EventTarget, ev *event.Event) bool {
	tgt := t.target()
	if ev.TimeStamp == 0 {
		ev.TimeStamp = d.Now()
	}
	ev.Target = tgt.kind
	ev.TargetID = tgt.id

	path := d.path(tgt)
	Logger().Debug("dispatch",
		zap.String("type", ev.Type),
		zap.Stringer("target", tgt.kind),
		zap.String("id", tgt.id),
		zap.Int("depth", len(path)))

	ev.Phase = event.PhaseCapturing
	for _, cur := range path {
		cur.invoke(ev)
		if ev.PropagationStopped() {
			return d.finish(ev)
		}
	}

	ev.Phase = event.PhaseAtTarget
	tgt.invoke(ev)
	if ev.PropagationStopped() || !ev.Bubbles() {
		return d.finish(ev)
	}

	ev.Phase = event.PhaseBubbling
	for i := len(path) - 1; i >= 0; i-- {
		path[i].invoke(ev)
		if ev.PropagationStopped() {
			break
		}
	}
	return d.finish(ev)
}

// DispatchID resolves id with Lookup and dispatches ev there. The second
// result is false if id does not resolve.
func (d *Document) DispatchID(id string, ev *event.Event) (notCanceled, found bool) {
	t, ok := d.Lookup(id)
	if !ok {
		return false, false
	}
	return d.Dispatch(t, ev), true
}

func (d *Document) finish(ev *event.Event) bool {
	ev.Phase = event.PhaseNone
	ev.CurrentTarget = event.TargetElement
	return !ev.DefaultPrevented()
}

// path returns the targets above tgt, outermost first.
func (d *Document) path(tgt *Target) []*Target {
	switch tgt.kind {
	case event.TargetWindow:
		return nil
	case event.TargetDocument:
		return []*Target{&d.window.Target}
	}
	var up []*Target
	if e, ok := d.elements[tgt.id]; ok {
		for p := e.parent; p != nil; p = p.parent {
			up = append(up, &p.Target)
		}
	}
	up = append(up, &d.Target, &d.window.Target)
	slices.Reverse(up)
	return up
}

// Package dom is a headless document model: the window, the document and
// elements addressed by id, with event listeners and three-phase dispatch.
//
// Dispatch walks the path window, document, ancestors, target. Capture
// listeners run on the way down, every listener of the target runs at the
// target, and non-capture listeners run on the way back up when the event
// bubbles. StopPropagation ends the walk after the current target;
// StopImmediatePropagation ends it before the next listener.
//
// A Document provides the scroll and visibility state the event encoder
// reads, and resolves element ids for the listener registry:
//
//	doc, _ := dom.LoadFixture(dom.Fixture{
//	    Elements: []dom.ElementFixture{{ID: "app"}, {ID: "canvas", Parent: "app"}},
//	})
//	doc.DispatchID("canvas", event.New("click", event.Bubbles))
//
// Once a guest is attached, dispatch through runtime.Runtime.Dispatch so
// guest callback errors reach the caller.
package dom

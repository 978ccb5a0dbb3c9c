package dom

import (
	"slices"
	"strconv"
	"time"

	"github.com/wippyai/wasm-dom/errors"
	"github.com/wippyai/wasm-dom/event"
	"github.com/wippyai/wasm-dom/listener"
)

// Names Lookup resolves to the window and the document when no element
// has that id.
const (
	WindowID   = "window"
	DocumentID = "document"
)

// Rect is a rectangle in CSS pixels.
type Rect struct {
	X      float64 `yaml:"x" mapstructure:"x"`
	Y      float64 `yaml:"y" mapstructure:"y"`
	Width  float64 `yaml:"width" mapstructure:"width"`
	Height float64 `yaml:"height" mapstructure:"height"`
}

// Window is the top of the event path.
type Window struct {
	Target
	rect       Rect
	scrollX    float64
	scrollY    float64
	pixelRatio float64
}

// Rect returns the window's screen position and the screen size.
func (w *Window) Rect() Rect { return w.rect }

// SetRect sets the window's screen position and the screen size.
func (w *Window) SetRect(r Rect) { w.rect = r }

// Scroll returns the scroll offsets.
func (w *Window) Scroll() (x, y float64) { return w.scrollX, w.scrollY }

// ScrollTo sets the scroll offsets. It does not fire a scroll event.
func (w *Window) ScrollTo(x, y float64) {
	w.scrollX, w.scrollY = x, y
}

// DevicePixelRatio returns the ratio of device pixels to CSS pixels.
func (w *Window) DevicePixelRatio() float64 { return w.pixelRatio }

// SetDevicePixelRatio sets the device pixel ratio.
func (w *Window) SetDevicePixelRatio(r float64) { w.pixelRatio = r }

// Element is a node with an id and a form value.
type Element struct {
	Target
	parent *Element
	value  string
	rect   Rect
	min    float64
	max    float64
}

// ID returns the element id.
func (e *Element) ID() string { return e.id }

// Parent returns the parent element, nil for top-level elements.
func (e *Element) Parent() *Element { return e.parent }

// Value returns the element's value.
func (e *Element) Value() string { return e.value }

// SetValue sets the element's value.
func (e *Element) SetValue(v string) { e.value = v }

// ValueF64 returns the value as a number, 0 if it does not parse.
func (e *Element) ValueF64() float64 {
	f, err := strconv.ParseFloat(e.value, 64)
	if err != nil {
		return 0
	}
	return f
}

// SetValueF64 stores a number as the element's value.
func (e *Element) SetValueF64(f float64) {
	e.value = strconv.FormatFloat(f, 'g', -1, 64)
}

// MinMax returns the element's range bounds.
func (e *Element) MinMax() (lo, hi float64) { return e.min, e.max }

// SetMinMax sets the element's range bounds.
func (e *Element) SetMinMax(lo, hi float64) { e.min, e.max = lo, hi }

// Rect returns the element's bounding client rect.
func (e *Element) Rect() Rect { return e.rect }

// SetRect sets the element's bounding client rect.
func (e *Element) SetRect(r Rect) { e.rect = r }

// Document is a headless document: a window, a set of elements addressed
// by id and a visibility state. Not safe for concurrent use.
type Document struct {
	Target
	origin   time.Time
	now      func() time.Time
	window   *Window
	elements map[string]*Element
	nextID   ListenerID
	hidden   bool
}

// NewDocument creates an empty visible document.
func NewDocument() *Document {
	d := &Document{
		now:      time.Now,
		elements: make(map[string]*Element),
	}
	d.origin = d.now()
	d.Target = Target{doc: d, kind: event.TargetDocument}
	d.window = &Window{
		Target:     Target{doc: d, kind: event.TargetWindow},
		pixelRatio: 1,
	}
	return d
}

// SetClock replaces the time source and restarts the timestamp origin.
func (d *Document) SetClock(now func() time.Time) {
	d.now = now
	d.origin = now()
}

// Now returns the milliseconds elapsed since the document was created.
func (d *Document) Now() float64 {
	return float64(d.now().Sub(d.origin)) / float64(time.Millisecond)
}

// Window returns the document's window.
func (d *Document) Window() *Window { return d.window }

// Element returns the element with the given id.
func (d *Document) Element(id string) (*Element, bool) {
	e, ok := d.elements[id]
	return e, ok
}

// ElementIDs returns the ids of all elements, sorted.
func (d *Document) ElementIDs() []string {
	ids := make([]string, 0, len(d.elements))
	for id := range d.elements {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// CreateElement adds an element under parent, or at the top level when
// parent is nil.
func (d *Document) CreateElement(id string, parent *Element) (*Element, error) {
	if id == "" {
		return nil, errors.InvalidInput(errors.PhaseConfigure, "element id cannot be empty")
	}
	if _, dup := d.elements[id]; dup {
		return nil, errors.InvalidInput(errors.PhaseConfigure, "duplicate element id "+strconv.Quote(id))
	}
	if parent != nil && parent.doc != d {
		return nil, errors.InvalidInput(errors.PhaseConfigure, "parent belongs to another document")
	}
	e := &Element{
		Target: Target{doc: d, id: id, kind: event.TargetElement},
		parent: parent,
	}
	d.elements[id] = e
	return e, nil
}

// Lookup resolves an element id, falling back to WindowID and DocumentID.
func (d *Document) Lookup(id string) (EventTarget, bool) {
	if e, ok := d.elements[id]; ok {
		return e, true
	}
	switch id {
	case WindowID:
		return d.window, true
	case DocumentID:
		return d, true
	}
	return nil, false
}

// Hidden reports whether the document is hidden.
func (d *Document) Hidden() bool { return d.hidden }

// SetHidden changes the visibility state. It does not fire
// visibilitychange.
func (d *Document) SetHidden(hidden bool) { d.hidden = hidden }

// ScrollOffset implements event.Env.
func (d *Document) ScrollOffset() (x, y float64) { return d.window.Scroll() }

// Visible implements event.Env.
func (d *Document) Visible() bool { return !d.hidden }

// ResolveElement implements listener.Resolver.
func (d *Document) ResolveElement(id string) (listener.Target, bool) {
	e, ok := d.elements[id]
	if !ok {
		return nil, false
	}
	return e, true
}

// ResolveWindow implements listener.Resolver.
func (d *Document) ResolveWindow() listener.Target { return d.window }

var (
	_ event.Env         = (*Document)(nil)
	_ listener.Resolver = (*Document)(nil)
)

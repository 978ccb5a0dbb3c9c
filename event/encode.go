package event

import (
	"github.com/wippyai/wasm-dom/errors"
	"github.com/wippyai/wasm-dom/memory"
)

// Env supplies the window and document state some variants read at encode
// time.
type Env interface {
	// ScrollOffset returns the window's horizontal and vertical scroll offsets.
	ScrollOffset() (x, y float64)
	// Visible reports whether the document is visible.
	Visible() bool
}

type staticEnv struct{}

func (staticEnv) ScrollOffset() (float64, float64) { return 0, 0 }
func (staticEnv) Visible() bool                    { return true }

// Pending is the context of the event currently being dispatched to the
// guest: the event itself plus what the guest supplied when it registered
// the listener.
type Pending struct {
	Event    *Event
	NameCode uint32
	IDPtr    uint32
	IDLen    uint64
}

// Encoder serializes pending events into guest memory.
type Encoder struct {
	view *memory.View
	env  Env
}

// NewEncoder creates an encoder writing through view. A nil env reports a
// visible document scrolled to the origin.
func NewEncoder(view *memory.View, env Env) *Encoder {
	if env == nil {
		env = staticEnv{}
	}
	return &Encoder{view: view, env: env}
}

// Encode writes the record for p at base and returns the number of bytes
// the record spans.
//
// With no pending event nothing is written and the error matches
// errors.ErrNoActiveEvent. A record that does not fit guest memory fails
// before any byte is written. Any other failure may leave the region
// partially written; do not read it.
func (e *Encoder) Encode(base uint32, p *Pending) (uint32, error) {
	if p == nil || p.Event == nil {
		return 0, errors.NoActiveEvent()
	}
	width := e.view.Width()
	if !width.Valid() {
		return 0, errors.UnsupportedWidth(errors.PhaseEncode, uint32(width))
	}
	kind := Classify(p.Event)

	probe := writer{c: newCursor(base, width)}
	probe.record(p, kind, e.env)
	if _, err := e.view.Bytes(base, probe.c.size()); err != nil {
		if !errors.Is(err, errors.ErrOutOfBounds) {
			return 0, err
		}
		return 0, errors.New(errors.PhaseEncode, errors.KindOutOfBounds).
			Path(kind.String()).
			Value(base).
			Detail("record of %d bytes at %d does not fit memory of %d bytes", probe.c.size(), base, e.view.Len()).
			Cause(err).
			Build()
	}

	w := writer{v: e.view, c: newCursor(base, width)}
	w.record(p, kind, e.env)
	if w.err != nil {
		return 0, w.err
	}
	return w.c.size(), nil
}

// writer reserves fields through a cursor and stores them through a view.
// With a nil view it only measures. The first store error sticks and
// suppresses later stores.
type writer struct {
	v   *memory.View
	err error
	c   cursor
}

func (w *writer) store(fn func() error) {
	if w.v == nil || w.err != nil {
		return
	}
	w.err = fn()
}

func (w *writer) u8(name string, x uint8) {
	at := w.c.reserve(name, 1, 0)
	w.store(func() error { return w.v.StoreU8(at, x) })
}

func (w *writer) boolean(name string, x bool) {
	at := w.c.reserve(name, 1, 0)
	w.store(func() error { return w.v.StoreBool(at, x) })
}

func (w *writer) i16(name string, x int16) {
	at := w.c.reserve(name, 2, 0)
	w.store(func() error { return w.v.StoreI16(at, x) })
}

func (w *writer) u16(name string, x uint16) {
	at := w.c.reserve(name, 2, 0)
	w.store(func() error { return w.v.StoreU16(at, x) })
}

func (w *writer) u32(name string, x uint32) {
	at := w.c.reserve(name, 4, 0)
	w.store(func() error { return w.v.StoreU32(at, x) })
}

func (w *writer) i64(name string, x int64) {
	at := w.c.reserve(name, 8, 0)
	w.store(func() error { return w.v.StoreI64(at, x) })
}

func (w *writer) f64(name string, x float64) {
	at := w.c.reserve(name, 8, 0)
	w.store(func() error { return w.v.StoreF64(at, x) })
}

func (w *writer) nativeInt(name string, x int64) {
	at := w.c.reserve(name, w.c.width, 0)
	w.store(func() error { return w.v.StoreInt(at, x) })
}

func (w *writer) nativeUint(name string, x uint64) {
	at := w.c.reserve(name, w.c.width, 0)
	w.store(func() error { return w.v.StoreUint(at, x) })
}

// text stores s into a byte buffer of the given capacity, 1-byte aligned.
func (w *writer) text(name string, s string, capacity uint32) {
	at := w.c.reserve(name, capacity, 1)
	w.store(func() error {
		_, err := w.v.StoreStringN(at, s, capacity)
		return err
	})
}

// skip reserves a slot the guest fills itself.
func (w *writer) skip(name string, size, align uint32) {
	w.c.reserve(name, size, align)
}

func (w *writer) record(p *Pending, kind Kind, env Env) {
	ev := p.Event
	width := w.c.width

	w.u32("name_code", p.NameCode)
	w.u32("target", uint32(ev.Target))
	w.u32("current_target", uint32(ev.CurrentTarget))

	w.c.align(width)
	// id_ptr is a signed native int: sign-extended at width 8.
	w.nativeInt("id_ptr", int64(int32(p.IDPtr)))
	w.nativeUint("id_len", p.IDLen)

	w.c.align(8)
	w.f64("timestamp", ev.TimeStamp*1e-3)

	w.u8("phase", uint8(ev.Phase))
	w.u8("options", uint8(ev.Options&optionMask))
	w.boolean("is_composing", ev.IsComposing)
	w.boolean("is_trusted", ev.IsTrusted)

	w.c.align(8)
	switch kind {
	case KindWheel:
		wh, _ := ev.Payload.(*Wheel)
		if wh == nil {
			wh = &Wheel{}
		}
		w.f64("delta_x", wh.DeltaX)
		w.f64("delta_y", wh.DeltaY)
		w.f64("delta_z", wh.DeltaZ)
		w.u32("delta_mode", uint32(wh.DeltaMode))

	case KindMouse:
		m, _ := ev.Payload.(*Mouse)
		if m == nil {
			m = &Mouse{}
		}
		w.i64("screen_x", m.ScreenX)
		w.i64("screen_y", m.ScreenY)
		w.i64("client_x", m.ClientX)
		w.i64("client_y", m.ClientY)
		w.i64("offset_x", m.OffsetX)
		w.i64("offset_y", m.OffsetY)
		w.i64("page_x", m.PageX)
		w.i64("page_y", m.PageY)
		w.i64("movement_x", m.MovementX)
		w.i64("movement_y", m.MovementY)

		w.boolean("ctrl", m.Ctrl)
		w.boolean("shift", m.Shift)
		w.boolean("alt", m.Alt)
		w.boolean("meta", m.Meta)

		w.i16("button", m.Button)
		w.u16("buttons", m.Buttons)

	case KindKeyboard:
		k, _ := ev.Payload.(*Keyboard)
		if k == nil {
			k = &Keyboard{}
		}
		// key and code are (ptr, len) strings the guest points at its own
		// key_buf/code_buf after reading the record
		w.skip("key", 2*width, width)
		w.skip("code", 2*width, width)

		w.u8("location", uint8(k.Location))

		w.boolean("ctrl", k.Ctrl)
		w.boolean("shift", k.Shift)
		w.boolean("alt", k.Alt)
		w.boolean("meta", k.Meta)
		w.boolean("repeat", k.Repeat)

		key := memory.TruncateString(k.Key, KeyBufferSize)
		code := memory.TruncateString(k.Code, KeyBufferSize)
		w.nativeInt("key_len", int64(len(key)))
		w.nativeInt("code_len", int64(len(code)))
		w.text("key_buf", key, KeyBufferSize)
		w.text("code_buf", code, KeyBufferSize)

	case KindScroll:
		x, y := env.ScrollOffset()
		w.f64("scroll_x", x)
		w.f64("scroll_y", y)

	case KindVisibility:
		w.boolean("is_visible", env.Visible())
	}
}

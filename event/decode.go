package event

import (
	"github.com/wippyai/wasm-dom/errors"
	"github.com/wippyai/wasm-dom/memory"
)

// Record is an event record read back from guest memory, the way the guest
// sees it. Only the payload matching Kind is set.
type Record struct {
	Wheel         *Wheel
	Mouse         *Mouse
	Keyboard      *Keyboard
	TimeStamp     float64 // seconds
	IDLen         uint64
	ScrollX       float64
	ScrollY       float64
	NameCode      uint32
	IDPtr         uint32
	Target        TargetKind
	CurrentTarget TargetKind
	Kind          Kind
	Phase         Phase
	Options       Options
	IsComposing   bool
	IsTrusted     bool
	Visible       bool
}

// Decode reads a record of the given kind at base. The guest knows the
// kind from the name code it registered with; the record carries no
// discriminant of its own.
func Decode(v *memory.View, base uint32, kind Kind) (*Record, error) {
	width := v.Width()
	if !width.Valid() {
		return nil, errors.UnsupportedWidth(errors.PhaseDecode, uint32(width))
	}
	probe := writer{c: newCursor(base, width)}
	probe.record(&Pending{Event: sample(kind)}, kind, staticEnv{})
	if _, err := v.Bytes(base, probe.c.size()); err != nil {
		return nil, err
	}

	r := reader{v: v, c: newCursor(base, width)}
	rec := &Record{Kind: kind}

	rec.NameCode = r.u32("name_code")
	rec.Target = TargetKind(r.u32("target"))
	rec.CurrentTarget = TargetKind(r.u32("current_target"))

	r.c.align(uint32(width))
	rec.IDPtr = uint32(r.nativeInt("id_ptr"))
	rec.IDLen = r.nativeUint("id_len")

	r.c.align(8)
	rec.TimeStamp = r.f64("timestamp")
	rec.Phase = Phase(r.u8("phase"))
	rec.Options = Options(r.u8("options"))
	rec.IsComposing = r.u8("is_composing") != 0
	rec.IsTrusted = r.u8("is_trusted") != 0

	r.c.align(8)
	switch kind {
	case KindWheel:
		rec.Wheel = &Wheel{
			DeltaX: r.f64("delta_x"),
			DeltaY: r.f64("delta_y"),
			DeltaZ: r.f64("delta_z"),
		}
		rec.Wheel.DeltaMode = DeltaMode(r.u32("delta_mode"))

	case KindMouse:
		m := &Mouse{}
		m.ScreenX = r.i64("screen_x")
		m.ScreenY = r.i64("screen_y")
		m.ClientX = r.i64("client_x")
		m.ClientY = r.i64("client_y")
		m.OffsetX = r.i64("offset_x")
		m.OffsetY = r.i64("offset_y")
		m.PageX = r.i64("page_x")
		m.PageY = r.i64("page_y")
		m.MovementX = r.i64("movement_x")
		m.MovementY = r.i64("movement_y")
		m.Modifiers = r.modifiers()
		m.Button = r.i16("button")
		m.Buttons = r.u16("buttons")
		rec.Mouse = m

	case KindKeyboard:
		k := &Keyboard{}
		r.c.reserve("key", 2*uint32(width), uint32(width))
		r.c.reserve("code", 2*uint32(width), uint32(width))
		k.Location = Location(r.u8("location"))
		k.Modifiers = r.modifiers()
		k.Repeat = r.u8("repeat") != 0
		keyLen := r.nativeInt("key_len")
		codeLen := r.nativeInt("code_len")
		k.Key = r.text("key_buf", keyLen)
		k.Code = r.text("code_buf", codeLen)
		rec.Keyboard = k

	case KindScroll:
		rec.ScrollX = r.f64("scroll_x")
		rec.ScrollY = r.f64("scroll_y")

	case KindVisibility:
		rec.Visible = r.u8("is_visible") != 0
	}

	if r.err != nil {
		return nil, r.err
	}
	return rec, nil
}

// reader mirrors writer. The first load error sticks; later loads return
// zero values.
type reader struct {
	v   *memory.View
	err error
	c   cursor
}

func (r *reader) ok(err error) bool {
	if r.err == nil {
		r.err = err
	}
	return r.err == nil
}

func (r *reader) u8(name string) uint8 {
	x, err := r.v.LoadU8(r.c.reserve(name, 1, 0))
	if !r.ok(err) {
		return 0
	}
	return x
}

func (r *reader) i16(name string) int16 {
	x, err := r.v.LoadI16(r.c.reserve(name, 2, 0))
	if !r.ok(err) {
		return 0
	}
	return x
}

func (r *reader) u16(name string) uint16 {
	x, err := r.v.LoadU16(r.c.reserve(name, 2, 0))
	if !r.ok(err) {
		return 0
	}
	return x
}

func (r *reader) u32(name string) uint32 {
	x, err := r.v.LoadU32(r.c.reserve(name, 4, 0))
	if !r.ok(err) {
		return 0
	}
	return x
}

func (r *reader) i64(name string) int64 {
	x, err := r.v.LoadI64(r.c.reserve(name, 8, 0))
	if !r.ok(err) {
		return 0
	}
	return x
}

func (r *reader) f64(name string) float64 {
	x, err := r.v.LoadF64(r.c.reserve(name, 8, 0))
	if !r.ok(err) {
		return 0
	}
	return x
}

func (r *reader) nativeInt(name string) int64 {
	x, err := r.v.LoadInt(r.c.reserve(name, r.c.width, 0))
	if !r.ok(err) {
		return 0
	}
	return x
}

func (r *reader) nativeUint(name string) uint64 {
	x, err := r.v.LoadUint(r.c.reserve(name, r.c.width, 0))
	if !r.ok(err) {
		return 0
	}
	return x
}

func (r *reader) text(name string, n int64) string {
	at := r.c.reserve(name, KeyBufferSize, 1)
	if n < 0 || n > KeyBufferSize {
		r.ok(errors.InvalidData(errors.PhaseDecode, []string{name}, "text length outside buffer"))
		return ""
	}
	s, err := r.v.String(at, uint32(n))
	if !r.ok(err) {
		return ""
	}
	return s
}

func (r *reader) modifiers() Modifiers {
	return Modifiers{
		Ctrl:  r.u8("ctrl") != 0,
		Shift: r.u8("shift") != 0,
		Alt:   r.u8("alt") != 0,
		Meta:  r.u8("meta") != 0,
	}
}

package event

import (
	"bytes"
	"errors"
	"hash/crc32"
	"testing"

	wasmdom "github.com/wippyai/wasm-dom"
	werrors "github.com/wippyai/wasm-dom/errors"
	"github.com/wippyai/wasm-dom/memory"
)

type fakeEnv struct {
	x, y    float64
	visible bool
}

func (e fakeEnv) ScrollOffset() (float64, float64) { return e.x, e.y }
func (e fakeEnv) Visible() bool                    { return e.visible }

func newView(t *testing.T, width wasmdom.Width, buf []byte) *memory.View {
	t.Helper()
	v, err := memory.New(width)
	if err != nil {
		t.Fatalf("memory.New(%d) failed: %v", width, err)
	}
	v.Bind(buf)
	return v
}

func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = 0xA5
	}
	return b
}

func TestEncode_NoPendingEvent(t *testing.T) {
	buf := pattern(256)
	sum := crc32.ChecksumIEEE(buf)
	enc := NewEncoder(newView(t, wasmdom.Width32, buf), nil)

	for _, p := range []*Pending{nil, {NameCode: 7}} {
		n, err := enc.Encode(0, p)
		if !errors.Is(err, werrors.ErrNoActiveEvent) {
			t.Errorf("Encode error = %v, want no active event", err)
		}
		if n != 0 {
			t.Errorf("Encode returned %d bytes, want 0", n)
		}
	}
	if crc32.ChecksumIEEE(buf) != sum {
		t.Error("memory changed without a pending event")
	}
}

func TestEncode_Mouse32(t *testing.T) {
	buf := make([]byte, 256)
	v := newView(t, wasmdom.Width32, buf)
	ev := New("click", Bubbles|Cancelable)
	ev.TimeStamp = 1500
	ev.Phase = PhaseBubbling
	ev.IsTrusted = true
	ev.Payload = &Mouse{
		ClientX:   10,
		ClientY:   20,
		Modifiers: Modifiers{Ctrl: true},
		Button:    0,
		Buttons:   1,
	}
	p := &Pending{Event: ev, NameCode: 3, IDPtr: 0x1000, IDLen: 6}

	n, err := NewEncoder(v, nil).Encode(0, p)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if n != 128 {
		t.Errorf("bytesWritten = %d, want 128", n)
	}

	checkU32 := func(off uint32, want uint32) {
		t.Helper()
		got, err := v.LoadU32(off)
		if err != nil || got != want {
			t.Errorf("u32 at %d = %d (%v), want %d", off, got, err, want)
		}
	}
	checkI64 := func(off uint32, want int64) {
		t.Helper()
		got, err := v.LoadI64(off)
		if err != nil || got != want {
			t.Errorf("i64 at %d = %d (%v), want %d", off, got, err, want)
		}
	}

	checkU32(0, 3)
	checkU32(12, 0x1000)
	checkU32(16, 6)
	if ts, _ := v.LoadF64(24); ts != 1.5 {
		t.Errorf("timestamp = %v, want 1.5 seconds", ts)
	}
	if buf[32] != uint8(PhaseBubbling) || buf[33] != 0b011 || buf[34] != 0 || buf[35] != 1 {
		t.Errorf("phase/options/composing/trusted = %v, want [3 3 0 1]", buf[32:36])
	}
	checkI64(56, 10)
	checkI64(64, 20)
	if buf[120] != 1 || buf[121] != 0 {
		t.Errorf("ctrl/shift = %d/%d, want 1/0", buf[120], buf[121])
	}
	if b, _ := v.LoadI16(124); b != 0 {
		t.Errorf("button = %d, want 0", b)
	}
	if b, _ := v.LoadU16(126); b != 1 {
		t.Errorf("buttons = %d, want 1", b)
	}
}

func TestEncode_Keyboard32(t *testing.T) {
	buf := pattern(256)
	v := newView(t, wasmdom.Width32, buf)
	ev := New("keydown", Bubbles)
	ev.Payload = &Keyboard{Key: "Enter", Code: "Enter", Modifiers: Modifiers{Shift: true}}

	n, err := NewEncoder(v, nil).Encode(0, &Pending{Event: ev})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if n != 104 {
		t.Errorf("bytesWritten = %d, want 104", n)
	}
	if kl, _ := v.LoadI32(64); kl != 5 {
		t.Errorf("key_len = %d, want 5", kl)
	}
	if cl, _ := v.LoadI32(68); cl != 5 {
		t.Errorf("code_len = %d, want 5", cl)
	}
	if !bytes.Equal(buf[72:77], []byte("Enter")) {
		t.Errorf("key_buf = %q, want Enter", buf[72:77])
	}
	if !bytes.Equal(buf[88:93], []byte("Enter")) {
		t.Errorf("code_buf = %q, want Enter", buf[88:93])
	}
	if buf[58] != 1 {
		t.Errorf("shift = %d, want 1", buf[58])
	}
	// guest-owned string slots and unused buffer tails keep their contents
	for _, r := range [][2]int{{40, 56}, {77, 88}, {93, 104}} {
		for i := r[0]; i < r[1]; i++ {
			if buf[i] != 0xA5 {
				t.Fatalf("byte %d = %#x, want untouched 0xa5", i, buf[i])
			}
		}
	}
	// padding between prefix and payload stays untouched as well
	for i := 36; i < 40; i++ {
		if buf[i] != 0xA5 {
			t.Errorf("padding byte %d = %#x, want untouched", i, buf[i])
		}
	}
}

func TestEncode_KeyboardTruncatesOnRuneBoundary(t *testing.T) {
	buf := make([]byte, 256)
	v := newView(t, wasmdom.Width64, buf)
	ev := New("keydown", 0)
	// 15 ASCII bytes then a 2-byte rune that does not fit
	ev.Payload = &Keyboard{Key: "abcdefghijklmnoé", Code: "KeyA"}

	if _, err := NewEncoder(v, nil).Encode(0, &Pending{Event: ev}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	rec, err := Decode(v, 0, KindKeyboard)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if rec.Keyboard.Key != "abcdefghijklmno" {
		t.Errorf("key = %q, want 15-byte prefix", rec.Keyboard.Key)
	}
	if rec.Keyboard.Code != "KeyA" {
		t.Errorf("code = %q, want KeyA", rec.Keyboard.Code)
	}
}

func TestEncode_WindowVariants(t *testing.T) {
	env := fakeEnv{x: 12.5, y: 300, visible: false}
	for _, width := range []wasmdom.Width{wasmdom.Width32, wasmdom.Width64} {
		buf := make([]byte, 128)
		v := newView(t, width, buf)
		enc := NewEncoder(v, env)

		scroll := New("scroll", 0)
		scroll.Target = TargetWindow
		if _, err := enc.Encode(0, &Pending{Event: scroll}); err != nil {
			t.Fatalf("width %d: scroll Encode failed: %v", width, err)
		}
		rec, err := Decode(v, 0, KindScroll)
		if err != nil {
			t.Fatalf("width %d: Decode failed: %v", width, err)
		}
		if rec.ScrollX != 12.5 || rec.ScrollY != 300 || rec.Target != TargetWindow {
			t.Errorf("width %d: scroll record = %+v", width, rec)
		}

		vis := New("visibilitychange", 0)
		vis.Target = TargetDocument
		if _, err := enc.Encode(0, &Pending{Event: vis}); err != nil {
			t.Fatalf("width %d: visibility Encode failed: %v", width, err)
		}
		rec, err = Decode(v, 0, KindVisibility)
		if err != nil {
			t.Fatalf("width %d: Decode failed: %v", width, err)
		}
		if rec.Visible {
			t.Errorf("width %d: is_visible = true, want false", width)
		}
	}
}

func TestEncodeDecode_Agree(t *testing.T) {
	events := []*Event{
		{Type: "wheel", Payload: &Wheel{DeltaX: 1.25, DeltaY: -3, DeltaZ: 0.5, DeltaMode: DeltaLine}},
		{Type: "mousemove", Payload: &Mouse{
			ScreenX: -1 << 40, ScreenY: 2, ClientX: 3, ClientY: 4, OffsetX: 5,
			OffsetY: 6, PageX: 7, PageY: 8, MovementX: -9, MovementY: 10,
			Modifiers: Modifiers{Alt: true, Meta: true}, Button: -1, Buttons: 0xFFFF,
		}},
		{Type: "keyup", Payload: &Keyboard{Key: "ß", Code: "Minus", Location: LocationNumpad, Repeat: true}},
		{Type: "focus"},
	}
	for _, width := range []wasmdom.Width{wasmdom.Width32, wasmdom.Width64} {
		for _, ev := range events {
			ev.Options = Bubbles | Composed
			ev.Phase = PhaseAtTarget
			ev.IsComposing = true
			ev.TimeStamp = 250
			buf := make([]byte, 512)
			v := newView(t, width, buf)
			p := &Pending{Event: ev, NameCode: 42, IDPtr: 0x80000000, IDLen: 3}
			if _, err := NewEncoder(v, nil).Encode(64, p); err != nil {
				t.Fatalf("%s/%d: Encode failed: %v", ev.Type, width, err)
			}
			kind := Classify(ev)
			rec, err := Decode(v, 64, kind)
			if err != nil {
				t.Fatalf("%s/%d: Decode failed: %v", ev.Type, width, err)
			}
			if rec.NameCode != 42 || rec.IDPtr != 0x80000000 || rec.IDLen != 3 {
				t.Errorf("%s/%d: prefix = %+v", ev.Type, width, rec)
			}
			if rec.TimeStamp != 0.25 || rec.Phase != PhaseAtTarget || rec.Options != Bubbles|Composed || !rec.IsComposing {
				t.Errorf("%s/%d: prefix flags = %+v", ev.Type, width, rec)
			}
			switch want := ev.Payload.(type) {
			case *Wheel:
				if *rec.Wheel != *want {
					t.Errorf("%d: wheel = %+v, want %+v", width, *rec.Wheel, *want)
				}
			case *Mouse:
				if *rec.Mouse != *want {
					t.Errorf("%d: mouse = %+v, want %+v", width, *rec.Mouse, *want)
				}
			case *Keyboard:
				if *rec.Keyboard != *want {
					t.Errorf("%d: keyboard = %+v, want %+v", width, *rec.Keyboard, *want)
				}
			}
		}
	}
}

func TestEncode_IDPtrSignExtends(t *testing.T) {
	tests := []struct {
		width wasmdom.Width
		off   uint32
		want  uint64
	}{
		{wasmdom.Width32, 12, 0x80000000},
		{wasmdom.Width64, 16, 0xFFFFFFFF_80000000},
	}
	for _, tt := range tests {
		v := newView(t, tt.width, make([]byte, 256))
		p := &Pending{Event: New("focus", 0), IDPtr: 0x80000000, IDLen: 1}
		if _, err := NewEncoder(v, nil).Encode(0, p); err != nil {
			t.Fatalf("%d: Encode failed: %v", tt.width, err)
		}
		var got uint64
		if tt.width == wasmdom.Width32 {
			x, _ := v.LoadU32(tt.off)
			got = uint64(x)
		} else {
			got, _ = v.LoadU64(tt.off)
		}
		if got != tt.want {
			t.Errorf("%d: id_ptr bits = %#x, want %#x", tt.width, got, tt.want)
		}
	}
}

func TestEncode_OutOfBoundsWritesNothing(t *testing.T) {
	buf := pattern(150)
	sum := crc32.ChecksumIEEE(buf)
	v := newView(t, wasmdom.Width32, buf)
	ev := New("click", 0)
	ev.Payload = &Mouse{ClientX: 1}

	// 128-byte record starting 40 bytes before the end
	_, err := NewEncoder(v, nil).Encode(110, &Pending{Event: ev})
	if !errors.Is(err, werrors.ErrOutOfBounds) {
		t.Fatalf("Encode error = %v, want out of bounds", err)
	}
	var we *werrors.Error
	if !errors.As(err, &we) || we.Phase != werrors.PhaseEncode {
		t.Errorf("error = %v, want encode phase", err)
	}
	if crc32.ChecksumIEEE(buf) != sum {
		t.Error("memory changed by a record that does not fit")
	}
}

func TestEncode_Unbound(t *testing.T) {
	v, _ := memory.New(wasmdom.Width32)
	_, err := NewEncoder(v, nil).Encode(0, &Pending{Event: New("focus", 0)})
	if !errors.Is(err, werrors.ErrUnbound) {
		t.Errorf("Encode error = %v, want unbound", err)
	}
}

func TestEncode_WidthChangeMovesFields(t *testing.T) {
	buf := make([]byte, 128)
	v := newView(t, wasmdom.Width32, buf)
	enc := NewEncoder(v, nil)
	ev := New("focus", 0)
	ev.TimeStamp = 2000

	if _, err := enc.Encode(0, &Pending{Event: ev}); err != nil {
		t.Fatal(err)
	}
	if ts, _ := v.LoadF64(24); ts != 2 {
		t.Errorf("width 4: timestamp at 24 = %v, want 2", ts)
	}

	if err := v.SetWidth(wasmdom.Width64); err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Encode(0, &Pending{Event: ev}); err != nil {
		t.Fatal(err)
	}
	if ts, _ := v.LoadF64(32); ts != 2 {
		t.Errorf("width 8: timestamp at 32 = %v, want 2", ts)
	}
}

func TestDecode_BadTextLength(t *testing.T) {
	buf := make([]byte, 128)
	v := newView(t, wasmdom.Width32, buf)
	if err := v.StoreI32(64, 17); err != nil {
		t.Fatal(err)
	}
	_, err := Decode(v, 0, KindKeyboard)
	var we *werrors.Error
	if !errors.As(err, &we) || we.Kind != werrors.KindInvalidData {
		t.Errorf("Decode error = %v, want invalid data", err)
	}
}

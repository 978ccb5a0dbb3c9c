package memory

import (
	wasmdom "github.com/wippyai/wasm-dom"
	"github.com/wippyai/wasm-dom/errors"
)

// View is a typed accessor over a single byte buffer.
// View is not safe for concurrent use.
type View struct {
	buf   []byte
	width wasmdom.Width
	bound bool
}

// New creates an unbound view with the given native width.
func New(width wasmdom.Width) (*View, error) {
	v := &View{}
	if err := v.SetWidth(width); err != nil {
		return nil, err
	}
	return v, nil
}

// SetWidth changes the native int/uint width. Only 4 and 8 are accepted.
func (v *View) SetWidth(width wasmdom.Width) error {
	if !width.Valid() {
		return errors.UnsupportedWidth(errors.PhaseConfigure, uint32(width))
	}
	v.width = width
	return nil
}

// Width returns the configured native width, 0 if unset.
func (v *View) Width() wasmdom.Width {
	return v.width
}

// Bind attaches the view to buf. A nil buf unbinds the view.
// Offsets computed against an earlier binding stay valid.
func (v *View) Bind(buf []byte) {
	v.buf = buf
	v.bound = buf != nil
}

// BindMemory attaches the view to the whole of mem.
func (v *View) BindMemory(mem wasmdom.Memory) error {
	if mem == nil {
		v.Bind(nil)
		return errors.Unbound(errors.PhaseConfigure, "memory")
	}
	size := mem.Size()
	buf, ok := mem.Read(0, size)
	if !ok {
		return errors.OutOfBounds(errors.PhaseConfigure, "memory", 0, int(size), int(size))
	}
	if buf == nil {
		buf = []byte{}
	}
	v.Bind(buf)
	return nil
}

// Bound reports whether the view has a buffer.
func (v *View) Bound() bool {
	return v.bound
}

// Len returns the length of the bound buffer in bytes.
func (v *View) Len() int {
	return len(v.buf)
}

// span returns the live bytes [addr, addr+size) or a structured error.
// A view without a native width is unusable for every access.
func (v *View) span(phase errors.Phase, typ string, addr uint32, size int) ([]byte, error) {
	if !v.bound {
		return nil, errors.Unbound(phase, typ)
	}
	if !v.width.Valid() {
		return nil, errors.NotConfigured(phase, typ)
	}
	end := uint64(addr) + uint64(size)
	if end > uint64(len(v.buf)) {
		return nil, errors.OutOfBounds(phase, typ, uint64(addr), size, len(v.buf))
	}
	return v.buf[addr:end:end], nil
}

// nativeWidth checks the view is usable for a native int access.
func (v *View) nativeWidth(phase errors.Phase, typ string) (wasmdom.Width, error) {
	if !v.bound {
		return 0, errors.Unbound(phase, typ)
	}
	if !v.width.Valid() {
		return 0, errors.NotConfigured(phase, typ)
	}
	return v.width, nil
}

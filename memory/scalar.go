package memory

import (
	"encoding/binary"
	"math"

	wasmdom "github.com/wippyai/wasm-dom"
	"github.com/wippyai/wasm-dom/errors"
)

var le = binary.LittleEndian

// LoadU8 reads an unsigned 8-bit value.
func (v *View) LoadU8(addr uint32) (uint8, error) {
	b, err := v.span(errors.PhaseLoad, "u8", addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// LoadI8 reads a signed 8-bit value.
func (v *View) LoadI8(addr uint32) (int8, error) {
	b, err := v.span(errors.PhaseLoad, "i8", addr, 1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// LoadU16 reads an unsigned 16-bit little-endian value.
func (v *View) LoadU16(addr uint32) (uint16, error) {
	b, err := v.span(errors.PhaseLoad, "u16", addr, 2)
	if err != nil {
		return 0, err
	}
	return le.Uint16(b), nil
}

// LoadI16 reads a signed 16-bit little-endian value.
func (v *View) LoadI16(addr uint32) (int16, error) {
	b, err := v.span(errors.PhaseLoad, "i16", addr, 2)
	if err != nil {
		return 0, err
	}
	return int16(le.Uint16(b)), nil
}

// LoadU32 reads an unsigned 32-bit little-endian value.
func (v *View) LoadU32(addr uint32) (uint32, error) {
	b, err := v.span(errors.PhaseLoad, "u32", addr, 4)
	if err != nil {
		return 0, err
	}
	return le.Uint32(b), nil
}

// LoadI32 reads a signed 32-bit little-endian value.
func (v *View) LoadI32(addr uint32) (int32, error) {
	b, err := v.span(errors.PhaseLoad, "i32", addr, 4)
	if err != nil {
		return 0, err
	}
	return int32(le.Uint32(b)), nil
}

// LoadU64 reads an unsigned 64-bit value stored as two little-endian
// 32-bit halves, low word first.
func (v *View) LoadU64(addr uint32) (uint64, error) {
	b, err := v.span(errors.PhaseLoad, "u64", addr, 8)
	if err != nil {
		return 0, err
	}
	lo := le.Uint32(b[0:4])
	hi := le.Uint32(b[4:8])
	return uint64(hi)<<32 | uint64(lo), nil
}

// LoadI64 reads a signed 64-bit value; the high half carries the sign.
func (v *View) LoadI64(addr uint32) (int64, error) {
	b, err := v.span(errors.PhaseLoad, "i64", addr, 8)
	if err != nil {
		return 0, err
	}
	lo := le.Uint32(b[0:4])
	hi := int32(le.Uint32(b[4:8]))
	return int64(hi)<<32 | int64(lo), nil
}

// LoadF32 reads a 32-bit float.
func (v *View) LoadF32(addr uint32) (float32, error) {
	b, err := v.span(errors.PhaseLoad, "f32", addr, 4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(le.Uint32(b)), nil
}

// LoadF64 reads a 64-bit float.
func (v *View) LoadF64(addr uint32) (float64, error) {
	b, err := v.span(errors.PhaseLoad, "f64", addr, 8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(le.Uint64(b)), nil
}

// LoadInt reads a native-width signed integer.
func (v *View) LoadInt(addr uint32) (int64, error) {
	w, err := v.nativeWidth(errors.PhaseLoad, "int")
	if err != nil {
		return 0, err
	}
	if w == wasmdom.Width64 {
		return v.LoadI64(addr)
	}
	x, err := v.LoadI32(addr)
	return int64(x), err
}

// LoadUint reads a native-width unsigned integer.
func (v *View) LoadUint(addr uint32) (uint64, error) {
	w, err := v.nativeWidth(errors.PhaseLoad, "uint")
	if err != nil {
		return 0, err
	}
	if w == wasmdom.Width64 {
		return v.LoadU64(addr)
	}
	x, err := v.LoadU32(addr)
	return uint64(x), err
}

// LoadPtr reads a pointer. Pointers are 32-bit whatever the native width.
func (v *View) LoadPtr(addr uint32) (uint32, error) {
	b, err := v.span(errors.PhaseLoad, "ptr", addr, 4)
	if err != nil {
		return 0, err
	}
	return le.Uint32(b), nil
}

// LoadB32 reads a 32-bit boolean: any non-zero value is true.
func (v *View) LoadB32(addr uint32) (bool, error) {
	b, err := v.span(errors.PhaseLoad, "b32", addr, 4)
	if err != nil {
		return false, err
	}
	return le.Uint32(b) != 0, nil
}

// StoreU8 writes an unsigned 8-bit value.
func (v *View) StoreU8(addr uint32, x uint8) error {
	b, err := v.span(errors.PhaseStore, "u8", addr, 1)
	if err != nil {
		return err
	}
	b[0] = x
	return nil
}

// StoreI8 writes a signed 8-bit value.
func (v *View) StoreI8(addr uint32, x int8) error {
	b, err := v.span(errors.PhaseStore, "i8", addr, 1)
	if err != nil {
		return err
	}
	b[0] = uint8(x)
	return nil
}

// StoreU16 writes an unsigned 16-bit little-endian value.
func (v *View) StoreU16(addr uint32, x uint16) error {
	b, err := v.span(errors.PhaseStore, "u16", addr, 2)
	if err != nil {
		return err
	}
	le.PutUint16(b, x)
	return nil
}

// StoreI16 writes a signed 16-bit little-endian value.
func (v *View) StoreI16(addr uint32, x int16) error {
	b, err := v.span(errors.PhaseStore, "i16", addr, 2)
	if err != nil {
		return err
	}
	le.PutUint16(b, uint16(x))
	return nil
}

// StoreU32 writes an unsigned 32-bit little-endian value.
func (v *View) StoreU32(addr uint32, x uint32) error {
	b, err := v.span(errors.PhaseStore, "u32", addr, 4)
	if err != nil {
		return err
	}
	le.PutUint32(b, x)
	return nil
}

// StoreI32 writes a signed 32-bit little-endian value.
func (v *View) StoreI32(addr uint32, x int32) error {
	b, err := v.span(errors.PhaseStore, "i32", addr, 4)
	if err != nil {
		return err
	}
	le.PutUint32(b, uint32(x))
	return nil
}

// StoreU64 writes an unsigned 64-bit value as two 32-bit halves, low first.
func (v *View) StoreU64(addr uint32, x uint64) error {
	b, err := v.span(errors.PhaseStore, "u64", addr, 8)
	if err != nil {
		return err
	}
	le.PutUint32(b[0:4], uint32(x))
	le.PutUint32(b[4:8], uint32(x>>32))
	return nil
}

// StoreI64 writes a signed 64-bit value as two 32-bit halves, low first.
func (v *View) StoreI64(addr uint32, x int64) error {
	b, err := v.span(errors.PhaseStore, "i64", addr, 8)
	if err != nil {
		return err
	}
	le.PutUint32(b[0:4], uint32(x))
	le.PutUint32(b[4:8], uint32(int32(x>>32)))
	return nil
}

// StoreF32 writes a 32-bit float.
func (v *View) StoreF32(addr uint32, x float32) error {
	b, err := v.span(errors.PhaseStore, "f32", addr, 4)
	if err != nil {
		return err
	}
	le.PutUint32(b, math.Float32bits(x))
	return nil
}

// StoreF64 writes a 64-bit float.
func (v *View) StoreF64(addr uint32, x float64) error {
	b, err := v.span(errors.PhaseStore, "f64", addr, 8)
	if err != nil {
		return err
	}
	le.PutUint64(b, math.Float64bits(x))
	return nil
}

// StoreInt writes a native-width signed integer. With a 4-byte width,
// values outside the int32 range fail with errors.ErrOverflow.
func (v *View) StoreInt(addr uint32, x int64) error {
	w, err := v.nativeWidth(errors.PhaseStore, "int")
	if err != nil {
		return err
	}
	if w == wasmdom.Width64 {
		return v.StoreI64(addr, x)
	}
	if x < math.MinInt32 || x > math.MaxInt32 {
		return errors.Overflow(errors.PhaseStore, x, "i32")
	}
	return v.StoreI32(addr, int32(x))
}

// StoreUint writes a native-width unsigned integer. With a 4-byte width,
// values above MaxUint32 fail with errors.ErrOverflow.
func (v *View) StoreUint(addr uint32, x uint64) error {
	w, err := v.nativeWidth(errors.PhaseStore, "uint")
	if err != nil {
		return err
	}
	if w == wasmdom.Width64 {
		return v.StoreU64(addr, x)
	}
	if x > math.MaxUint32 {
		return errors.Overflow(errors.PhaseStore, x, "u32")
	}
	return v.StoreU32(addr, uint32(x))
}

// StorePtr writes a 32-bit pointer.
func (v *View) StorePtr(addr uint32, ptr uint32) error {
	b, err := v.span(errors.PhaseStore, "ptr", addr, 4)
	if err != nil {
		return err
	}
	le.PutUint32(b, ptr)
	return nil
}

// StoreBool writes a 1-byte boolean, 1 for true and 0 for false.
func (v *View) StoreBool(addr uint32, x bool) error {
	var u uint8
	if x {
		u = 1
	}
	return v.StoreU8(addr, u)
}

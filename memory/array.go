package memory

import (
	"math"

	"github.com/wippyai/wasm-dom/errors"
)

// Elem is an element type an Array window can hold.
type Elem interface {
	float32 | float64 | uint32 | int32
}

// Array is a window over n contiguous little-endian elements of guest
// memory. It shares the view's backing store: Set is visible to scalar
// loads at the same offsets and scalar stores are visible to At.
//
// At and Set panic on an index outside [0, Len()), like slice indexing.
type Array[T Elem] struct {
	b    []byte
	addr uint32
	size int
}

// Addr returns the guest address of element 0.
func (a *Array[T]) Addr() uint32 { return a.addr }

// Len returns the number of elements.
func (a *Array[T]) Len() int { return len(a.b) / a.size }

// At returns element i.
func (a *Array[T]) At(i int) T {
	p := a.b[i*a.size : (i+1)*a.size]
	var x T
	switch any(x).(type) {
	case float32:
		return any(math.Float32frombits(le.Uint32(p))).(T)
	case float64:
		return any(math.Float64frombits(le.Uint64(p))).(T)
	case uint32:
		return any(le.Uint32(p)).(T)
	default:
		return any(int32(le.Uint32(p))).(T)
	}
}

// Set writes element i.
func (a *Array[T]) Set(i int, x T) {
	p := a.b[i*a.size : (i+1)*a.size]
	switch val := any(x).(type) {
	case float32:
		le.PutUint32(p, math.Float32bits(val))
	case float64:
		le.PutUint64(p, math.Float64bits(val))
	case uint32:
		le.PutUint32(p, val)
	case int32:
		le.PutUint32(p, uint32(val))
	}
}

// Slice copies the elements out into a new Go slice.
func (a *Array[T]) Slice() []T {
	out := make([]T, a.Len())
	for i := range out {
		out[i] = a.At(i)
	}
	return out
}

// Assign copies src into the window and returns the number of elements
// written, min(len(src), Len()).
func (a *Array[T]) Assign(src []T) int {
	n := min(len(src), a.Len())
	for i := 0; i < n; i++ {
		a.Set(i, src[i])
	}
	return n
}

func elemSize[T Elem]() int {
	var x T
	switch any(x).(type) {
	case float64:
		return 8
	default:
		return 4
	}
}

func arrayOf[T Elem](v *View, typ string, addr, n uint32) (*Array[T], error) {
	size := elemSize[T]()
	if addr%uint32(size) != 0 {
		return nil, errors.Misaligned(errors.PhaseLoad, typ, addr, uint32(size))
	}
	b, err := v.span(errors.PhaseLoad, typ, addr, int(n)*size)
	if err != nil {
		return nil, err
	}
	return &Array[T]{b: b, addr: addr, size: size}, nil
}

// F32Array returns a window over n float32 values at addr.
// addr must be 4-byte aligned.
func (v *View) F32Array(addr, n uint32) (*Array[float32], error) {
	return arrayOf[float32](v, "[]f32", addr, n)
}

// F64Array returns a window over n float64 values at addr.
// addr must be 8-byte aligned.
func (v *View) F64Array(addr, n uint32) (*Array[float64], error) {
	return arrayOf[float64](v, "[]f64", addr, n)
}

// U32Array returns a window over n uint32 values at addr.
func (v *View) U32Array(addr, n uint32) (*Array[uint32], error) {
	return arrayOf[uint32](v, "[]u32", addr, n)
}

// I32Array returns a window over n int32 values at addr.
func (v *View) I32Array(addr, n uint32) (*Array[int32], error) {
	return arrayOf[int32](v, "[]i32", addr, n)
}

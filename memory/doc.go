// Package memory provides a typed view over WebAssembly linear memory.
//
// A View reads and writes little-endian scalars, bulk arrays and text at
// byte offsets of a single buffer. It owns one piece of configuration, the
// guest's native integer width (4 or 8 bytes), which selects the encoding of
// LoadInt/LoadUint/StoreInt/StoreUint. Pointers are always 32-bit.
//
// # Binding
//
// The view holds a live slice of guest memory, not a copy:
//
//	v, _ := memory.New(wasmdom.Width32)
//	if err := v.BindMemory(mod.Memory()); err != nil {
//	    return err
//	}
//	n, err := v.LoadU32(addr)
//
// Guest memory growth reallocates the backing array. Re-bind after any call
// into the guest that may have grown memory; slices and arrays obtained before
// the growth keep pointing at the old backing array.
//
// # Errors
//
// Every access is bounds checked. An access that does not fit the buffer
// fails with errors.ErrOutOfBounds and leaves memory untouched. A view that
// is unbound or has no native width fails every access with
// errors.ErrUnbound. New and SetWidth reject widths other than 4 and 8 with
// errors.ErrUnsupportedWidth.
package memory

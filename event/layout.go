package event

import (
	wasmdom "github.com/wippyai/wasm-dom"
)

// KeyBufferSize is the capacity of the keyboard key and code text buffers.
const KeyBufferSize = 16

// Field is one reserved slot of a record.
type Field struct {
	Name   string
	Offset uint32 // relative to the record base
	Size   uint32
}

func alignTo(offset, align uint64) uint64 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// cursor walks a record, padding each field to its alignment.
// Positions are 64-bit so a record based near the top of the address space
// measures its true size instead of wrapping.
type cursor struct {
	trace func(Field)
	base  uint64
	off   uint64
	end   uint64
	width uint32
}

func newCursor(base uint32, width wasmdom.Width) cursor {
	b := uint64(base)
	return cursor{base: b, off: b, end: b, width: uint32(width)}
}

// reserve pads to align (min(size, width) when align is 0), claims size
// bytes and returns the aligned address.
func (c *cursor) reserve(name string, size, align uint32) uint32 {
	if align == 0 {
		align = min(size, c.width)
	}
	c.off = alignTo(c.off, uint64(align))
	at := c.off
	c.off += uint64(size)
	c.end = max(c.end, c.off)
	if c.trace != nil {
		c.trace(Field{Name: name, Offset: uint32(at - c.base), Size: size})
	}
	return uint32(at)
}

// align pads without reserving.
func (c *cursor) align(a uint32) {
	c.off = alignTo(c.off, uint64(a))
}

// size is the extent of every field reserved so far.
func (c *cursor) size() uint32 {
	return uint32(c.end - c.base)
}

// Layout returns the fields of a record of the given kind, in write order.
// It panics if width is not 4 or 8.
func Layout(kind Kind, width wasmdom.Width) []Field {
	if !width.Valid() {
		panic("event: unsupported native width")
	}
	var fields []Field
	w := writer{c: newCursor(0, width)}
	w.c.trace = func(f Field) { fields = append(fields, f) }
	w.record(&Pending{Event: sample(kind)}, kind, staticEnv{})
	return fields
}

// Size returns the number of bytes a record of the given kind spans.
func Size(kind Kind, width wasmdom.Width) uint32 {
	w := writer{c: newCursor(0, width)}
	w.record(&Pending{Event: sample(kind)}, kind, staticEnv{})
	return w.c.size()
}

func sample(kind Kind) *Event {
	e := &Event{}
	switch kind {
	case KindWheel:
		e.Payload = &Wheel{}
	case KindMouse:
		e.Payload = &Mouse{}
	case KindKeyboard:
		e.Payload = &Keyboard{}
	case KindScroll:
		e.Type = "scroll"
	case KindVisibility:
		e.Type = "visibilitychange"
	}
	return e
}

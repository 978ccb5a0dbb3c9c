// Package testguest assembles small core wasm modules for tests.
package testguest

import (
	"bytes"
	"math"
)

// ValType is a wasm value type.
type ValType byte

const (
	I32 ValType = 0x7F
	I64 ValType = 0x7E
	F32 ValType = 0x7D
	F64 ValType = 0x7C
)

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (ft FuncType) encode() []byte {
	var b bytes.Buffer
	b.WriteByte(0x60)
	b.Write(uleb(uint64(len(ft.Params))))
	for _, p := range ft.Params {
		b.WriteByte(byte(p))
	}
	b.Write(uleb(uint64(len(ft.Results))))
	for _, r := range ft.Results {
		b.WriteByte(byte(r))
	}
	return b.Bytes()
}

type imported struct {
	module, name string
	typ          uint32
}

type function struct {
	body []byte
	typ  uint32
}

type export struct {
	name string
	kind byte
	idx  uint32
}

type segment struct {
	data   []byte
	offset uint32
}

// Module builds a wasm binary. Imports must be added before functions.
type Module struct {
	types   [][]byte
	imports []imported
	funcs   []function
	exports []export
	data    []segment
	pages   uint32
	memory  bool
}

// NewModule creates an empty module.
func NewModule() *Module {
	return &Module{}
}

func (m *Module) typeIndex(ft FuncType) uint32 {
	enc := ft.encode()
	for i, t := range m.types {
		if bytes.Equal(t, enc) {
			return uint32(i)
		}
	}
	m.types = append(m.types, enc)
	return uint32(len(m.types) - 1)
}

// Import declares an imported function and returns its function index.
func (m *Module) Import(module, name string, ft FuncType) uint32 {
	if len(m.funcs) > 0 {
		panic("testguest: import after function")
	}
	m.imports = append(m.imports, imported{module: module, name: name, typ: m.typeIndex(ft)})
	return uint32(len(m.imports) - 1)
}

// Func defines a function with no locals beyond its params and returns its
// function index. body must not include the final end opcode.
func (m *Module) Func(ft FuncType, body []byte) uint32 {
	m.funcs = append(m.funcs, function{typ: m.typeIndex(ft), body: body})
	return uint32(len(m.imports) + len(m.funcs) - 1)
}

// Export exports a function.
func (m *Module) Export(name string, fn uint32) {
	m.exports = append(m.exports, export{name: name, kind: 0x00, idx: fn})
}

// Memory defines memory 0 with the given minimum pages and exports it as
// "memory".
func (m *Module) Memory(pages uint32) {
	m.memory = true
	m.pages = pages
	m.exports = append(m.exports, export{name: "memory", kind: 0x02, idx: 0})
}

// Data places b at offset in memory 0.
func (m *Module) Data(offset uint32, b []byte) {
	m.data = append(m.data, segment{offset: offset, data: b})
}

// Bytes encodes the module.
func (m *Module) Bytes() []byte {
	var out bytes.Buffer
	out.Write([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})

	section(&out, 1, len(m.types), func(b *bytes.Buffer) {
		for _, t := range m.types {
			b.Write(t)
		}
	})
	section(&out, 2, len(m.imports), func(b *bytes.Buffer) {
		for _, im := range m.imports {
			name(b, im.module)
			name(b, im.name)
			b.WriteByte(0x00)
			b.Write(uleb(uint64(im.typ)))
		}
	})
	section(&out, 3, len(m.funcs), func(b *bytes.Buffer) {
		for _, f := range m.funcs {
			b.Write(uleb(uint64(f.typ)))
		}
	})
	if m.memory {
		section(&out, 5, 1, func(b *bytes.Buffer) {
			b.WriteByte(0x00)
			b.Write(uleb(uint64(m.pages)))
		})
	}
	section(&out, 7, len(m.exports), func(b *bytes.Buffer) {
		for _, e := range m.exports {
			name(b, e.name)
			b.WriteByte(e.kind)
			b.Write(uleb(uint64(e.idx)))
		}
	})
	section(&out, 10, len(m.funcs), func(b *bytes.Buffer) {
		for _, f := range m.funcs {
			body := append([]byte{0x00}, f.body...)
			body = append(body, 0x0B)
			b.Write(uleb(uint64(len(body))))
			b.Write(body)
		}
	})
	section(&out, 11, len(m.data), func(b *bytes.Buffer) {
		for _, d := range m.data {
			b.WriteByte(0x00)
			b.WriteByte(0x41)
			b.Write(sleb(int64(d.offset)))
			b.WriteByte(0x0B)
			b.Write(uleb(uint64(len(d.data))))
			b.Write(d.data)
		}
	})
	return out.Bytes()
}

func section(out *bytes.Buffer, id byte, n int, fill func(*bytes.Buffer)) {
	if n == 0 {
		return
	}
	var b bytes.Buffer
	b.Write(uleb(uint64(n)))
	fill(&b)
	out.WriteByte(id)
	out.Write(uleb(uint64(b.Len())))
	out.Write(b.Bytes())
}

func name(b *bytes.Buffer, s string) {
	b.Write(uleb(uint64(len(s))))
	b.WriteString(s)
}

func uleb(v uint64) []byte {
	var out []byte
	for {
		c := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		out = append(out, c)
		if v == 0 {
			return out
		}
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		c := byte(v & 0x7F)
		v >>= 7
		done := (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0)
		if !done {
			c |= 0x80
		}
		out = append(out, c)
		if done {
			return out
		}
	}
}

// Code accumulates an instruction sequence.
type Code struct {
	b []byte
}

func (c *Code) op(b ...byte) *Code {
	c.b = append(c.b, b...)
	return c
}

// LocalGet pushes local i.
func (c *Code) LocalGet(i uint32) *Code { return c.op(append([]byte{0x20}, uleb(uint64(i))...)...) }

// Call calls function fn.
func (c *Code) Call(fn uint32) *Code { return c.op(append([]byte{0x10}, uleb(uint64(fn))...)...) }

// I32 pushes an i32 constant.
func (c *Code) I32(v int32) *Code { return c.op(append([]byte{0x41}, sleb(int64(v))...)...) }

// I64 pushes an i64 constant.
func (c *Code) I64(v int64) *Code { return c.op(append([]byte{0x42}, sleb(v)...)...) }

// F64 pushes an f64 constant.
func (c *Code) F64(v float64) *Code {
	bits := math.Float64bits(v)
	b := []byte{0x44}
	for i := 0; i < 8; i++ {
		b = append(b, byte(bits>>(8*i)))
	}
	return c.op(b...)
}

// Int pushes a native int constant: i32 for width 4, i64 for width 8.
func (c *Code) Int(width uint32, v int64) *Code {
	if width == 8 {
		return c.I64(v)
	}
	return c.I32(int32(v))
}

// I32Eq compares the top two i32 values.
func (c *Code) I32Eq() *Code { return c.op(0x46) }

// If opens a block with no result, taken when the top i32 is non-zero.
func (c *Code) If() *Code { return c.op(0x04, 0x40) }

// End closes the innermost block.
func (c *Code) End() *Code { return c.op(0x0B) }

// Drop discards the top value.
func (c *Code) Drop() *Code { return c.op(0x1A) }

// I32Store stores the top i32 at [address + offset].
func (c *Code) I32Store(offset uint32) *Code {
	return c.op(append([]byte{0x36, 0x02}, uleb(uint64(offset))...)...)
}

// I64Store stores the top i64 at [address + offset].
func (c *Code) I64Store(offset uint32) *Code {
	return c.op(append([]byte{0x37, 0x03}, uleb(uint64(offset))...)...)
}

// F64Store stores the top f64 at [address + offset].
func (c *Code) F64Store(offset uint32) *Code {
	return c.op(append([]byte{0x39, 0x03}, uleb(uint64(offset))...)...)
}

// Unreachable traps.
func (c *Code) Unreachable() *Code { return c.op(0x00) }

// Bytes returns the encoded instructions.
func (c *Code) Bytes() []byte { return c.b }

package wasmdom

// Memory is the guest linear memory as seen by the host.
// wazero's api.Memory satisfies it.
type Memory interface {
	// Read returns a live view of byteCount bytes at offset.
	Read(offset, byteCount uint32) ([]byte, bool)
	// Size returns the current size in bytes.
	Size() uint32
}

// Width is the byte size of the guest's native int/uint.
type Width uint32

const (
	Width32 Width = 4
	Width64 Width = 8
)

// Valid reports whether w is a supported native width.
func (w Width) Valid() bool {
	return w == Width32 || w == Width64
}

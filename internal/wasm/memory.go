package wasm

import (
	"errors"

	"github.com/tetratelabs/wazero/api"
)

// PageSize is the size of one Wasm memory page.
const PageSize = 65536

var errOutOfRange = errors.New("out of range of memory size")

// Memory provides bounds-checked access to a module's linear memory.
//
// Every read returns a copy, so callers never alias guest memory that the
// module may later grow or rewrite. Offsets are byte offsets.
type Memory struct {
	mem api.Memory
}

// NewMemory wraps an exported memory.
func NewMemory(mem api.Memory) *Memory {
	return &Memory{mem: mem}
}

// Size returns the current memory size in bytes.
func (m *Memory) Size() uint32 {
	return m.mem.Size()
}

// EnsureCapacity grows memory until at least end bytes are addressable.
func (m *Memory) EnsureCapacity(end uint64) error {
	size := uint64(m.mem.Size())
	if end <= size {
		return nil
	}

	pages := (end - size + PageSize - 1) / PageSize
	if pages > 1<<16 {
		return &OutOfMemoryError{Requested: end, Size: m.mem.Size()}
	}
	if _, ok := m.mem.Grow(uint32(pages)); !ok {
		return &OutOfMemoryError{Requested: end, Size: m.mem.Size()}
	}
	return nil
}

// ReadBytes copies length bytes starting at ptr.
func (m *Memory) ReadBytes(ptr uint32, length uint32) ([]byte, error) {
	view, ok := m.mem.Read(ptr, length)
	if !ok {
		return nil, &MemoryAccessError{Operation: "read", Address: ptr, Length: length, Err: errOutOfRange}
	}

	buf := make([]byte, len(view))
	copy(buf, view)
	return buf, nil
}

// ReadUint32Le reads a little-endian u32 at ptr.
func (m *Memory) ReadUint32Le(ptr uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(ptr)
	if !ok {
		return 0, &MemoryAccessError{Operation: "read_u32", Address: ptr, Length: 4, Err: errOutOfRange}
	}
	return v, nil
}

// WriteBytes writes data at ptr.
func (m *Memory) WriteBytes(ptr uint32, data []byte) error {
	if !m.mem.Write(ptr, data) {
		return &MemoryAccessError{Operation: "write", Address: ptr, Length: uint32(len(data)), Err: errOutOfRange}
	}
	return nil
}

// WriteUint32Le writes v as little-endian u32 at ptr.
func (m *Memory) WriteUint32Le(ptr uint32, v uint32) error {
	if !m.mem.WriteUint32Le(ptr, v) {
		return &MemoryAccessError{Operation: "write_u32", Address: ptr, Length: 4, Err: errOutOfRange}
	}
	return nil
}

package exchange

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woxQAQ/aoc-wasm-host/pkg/abi"
)

var errFake = errors.New("fake failure")

// sliceMemory is a growable byte slice standing in for linear memory.
type sliceMemory struct {
	buf   []byte
	limit uint64
}

func newSliceMemory(size int, limit uint64) *sliceMemory {
	return &sliceMemory{buf: make([]byte, size), limit: limit}
}

func (m *sliceMemory) Size() uint32 { return uint32(len(m.buf)) }

func (m *sliceMemory) EnsureCapacity(end uint64) error {
	if end <= uint64(len(m.buf)) {
		return nil
	}
	if end > m.limit {
		return errFake
	}
	m.buf = append(m.buf, make([]byte, end-uint64(len(m.buf)))...)
	return nil
}

func (m *sliceMemory) ReadBytes(ptr, length uint32) ([]byte, error) {
	if uint64(ptr)+uint64(length) > uint64(len(m.buf)) {
		return nil, errFake
	}
	return append([]byte{}, m.buf[ptr:ptr+length]...), nil
}

func (m *sliceMemory) WriteBytes(ptr uint32, data []byte) error {
	if uint64(ptr)+uint64(len(data)) > uint64(len(m.buf)) {
		return errFake
	}
	copy(m.buf[ptr:], data)
	return nil
}

// bumpAllocator mimics a module-side bump allocator.
type bumpAllocator struct {
	free       uint32
	advanced   []uint32
	freeErr    error
	advanceErr error
}

func (a *bumpAllocator) FreePointer(context.Context) (uint32, error) {
	return a.free, a.freeErr
}

func (a *bumpAllocator) Advance(_ context.Context, n uint32) error {
	if a.advanceErr != nil {
		return a.advanceErr
	}
	a.advanced = append(a.advanced, n)
	a.free += n
	return nil
}

func TestWrite_LengthPrefixAndPayload(t *testing.T) {
	ctx := context.Background()
	mem := newSliceMemory(1024, 1024)
	alloc := &bumpAllocator{free: 100}
	payload := []byte("1abc2\npqr3stu8vwx\n")

	ptr, err := Write(ctx, alloc, mem, payload)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), ptr)

	// The word at the returned pointer is the payload length.
	assert.Equal(t, uint32(len(payload)), binary.LittleEndian.Uint32(mem.buf[ptr:]))

	// The payload follows the 4-byte prefix byte for byte.
	assert.Equal(t, payload, mem.buf[ptr+abi.LengthPrefixSize:ptr+abi.LengthPrefixSize+uint32(len(payload))])

	// The allocator moved exactly past the frame.
	free, err := alloc.FreePointer(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(100+4+len(payload)), free)
	assert.Equal(t, []uint32{uint32(4 + len(payload))}, alloc.advanced)
}

func TestWrite_EmptyInput(t *testing.T) {
	ctx := context.Background()
	mem := newSliceMemory(64, 64)
	for i := range mem.buf {
		mem.buf[i] = 0xff
	}
	alloc := &bumpAllocator{free: 8}

	ptr, err := Write(ctx, alloc, mem, nil)
	require.NoError(t, err)

	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(mem.buf[ptr:]))
	assert.Equal(t, uint32(12), alloc.free)
	assert.Equal(t, []uint32{4}, alloc.advanced)
}

func TestWrite_GrowsMemory(t *testing.T) {
	mem := newSliceMemory(16, 1<<20)
	alloc := &bumpAllocator{free: 10}
	payload := bytes.Repeat([]byte{'z'}, 100)

	ptr, err := Write(context.Background(), alloc, mem, payload)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(mem.buf), 114)
	assert.Equal(t, payload, mem.buf[ptr+4:ptr+104])
}

func TestWrite_OutOfMemory(t *testing.T) {
	mem := newSliceMemory(16, 16)
	alloc := &bumpAllocator{free: 10}

	_, err := Write(context.Background(), alloc, mem, []byte("too long"))
	require.ErrorIs(t, err, errFake)
	assert.Empty(t, alloc.advanced, "allocator must not advance when the write fails")
}

func TestWrite_AddressOverflow(t *testing.T) {
	mem := newSliceMemory(16, 1<<40)
	alloc := &bumpAllocator{free: 0xffff_fffe}

	_, err := Write(context.Background(), alloc, mem, []byte("abc"))
	require.ErrorIs(t, err, ErrAddressOverflow)
}

func TestWrite_AllocatorErrors(t *testing.T) {
	mem := newSliceMemory(64, 64)

	_, err := Write(context.Background(), &bumpAllocator{freeErr: errFake}, mem, []byte("x"))
	require.ErrorIs(t, err, errFake)

	_, err = Write(context.Background(), &bumpAllocator{advanceErr: errFake}, mem, []byte("x"))
	require.ErrorIs(t, err, errFake)
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	mem := newSliceMemory(64, 64)
	alloc := &bumpAllocator{free: 4}

	_, err := Write(ctx, alloc, mem, []byte("hey"))
	require.NoError(t, err)

	// The module may claim more memory while it runs.
	require.NoError(t, alloc.Advance(ctx, 5))

	out, err := Snapshot(ctx, alloc, mem)
	require.NoError(t, err)
	assert.Len(t, out, 16)
	assert.Equal(t, mem.buf[:16], out)

	// The snapshot does not alias memory.
	mem.buf[0] = 0x42
	assert.Equal(t, byte(0), out[0])
}

func TestSnapshot_FreePointerError(t *testing.T) {
	_, err := Snapshot(context.Background(), &bumpAllocator{freeErr: errFake}, newSliceMemory(8, 8))
	require.ErrorIs(t, err, errFake)
}

func TestPersist(t *testing.T) {
	fs := afero.NewMemMapFs()

	require.NoError(t, Persist(fs, "/out/output.bin", []byte{0, 1, 2}))

	got, err := afero.ReadFile(fs, "/out/output.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2}, got)
}

func TestPersist_ReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	err := Persist(fs, "/output.bin", []byte{1})
	require.Error(t, err)
}

type stubCaller struct {
	calls   []string
	params  [][]uint64
	results map[string][]uint64
	err     error
}

func (c *stubCaller) Call(_ context.Context, name string, params ...uint64) ([]uint64, error) {
	c.calls = append(c.calls, name)
	c.params = append(c.params, params)
	return c.results[name], c.err
}

func TestExportAllocator(t *testing.T) {
	ctx := context.Background()
	caller := &stubCaller{results: map[string][]uint64{"get-free-ptr": {64}}}
	alloc := NewExportAllocator(caller, "get-free-ptr", "incr-free-ptr")

	free, err := alloc.FreePointer(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(64), free)

	require.NoError(t, alloc.Advance(ctx, 9))
	assert.Equal(t, []string{"get-free-ptr", "incr-free-ptr"}, caller.calls)
	assert.Equal(t, []uint64{9}, caller.params[1])
}

func TestExportAllocator_BadArity(t *testing.T) {
	caller := &stubCaller{results: map[string][]uint64{}}
	alloc := NewExportAllocator(caller, "get-free-ptr", "incr-free-ptr")

	_, err := alloc.FreePointer(context.Background())
	require.Error(t, err)
}

package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/woxQAQ/aoc-wasm-host/pkg/abi"
)

// ErrAddressOverflow is returned when a frame would end past the 32-bit address space.
var ErrAddressOverflow = errors.New("exchange buffer exceeds 32-bit address space")

// Memory is the linear memory view the writer and materializer need.
type Memory interface {
	Size() uint32
	EnsureCapacity(end uint64) error
	ReadBytes(ptr uint32, length uint32) ([]byte, error)
	WriteBytes(ptr uint32, data []byte) error
}

// Write places payload into mem as an exchange buffer at the module's free
// pointer and advances the allocator past it. The returned pointer is the
// byte offset of the length prefix.
func Write(ctx context.Context, alloc Allocator, mem Memory, payload []byte) (uint32, error) {
	frame, err := abi.EncodeExchangeBuffer(payload)
	if err != nil {
		return 0, err
	}

	ptr, err := alloc.FreePointer(ctx)
	if err != nil {
		return 0, fmt.Errorf("query free pointer: %w", err)
	}

	end := uint64(ptr) + uint64(len(frame))
	if end > 1<<32 {
		return 0, fmt.Errorf("%w: ptr %d, frame %d bytes", ErrAddressOverflow, ptr, len(frame))
	}

	if err := mem.EnsureCapacity(end); err != nil {
		return 0, err
	}

	if err := mem.WriteBytes(ptr, frame); err != nil {
		return 0, err
	}

	if err := alloc.Advance(ctx, uint32(len(frame))); err != nil {
		return 0, fmt.Errorf("advance free pointer: %w", err)
	}

	return ptr, nil
}

package exchange

import (
	"context"
	"fmt"
)

// Allocator is the memory bookkeeping a module exposes to the host.
// Offsets are byte offsets into linear memory.
type Allocator interface {
	// FreePointer returns the first unused byte offset.
	FreePointer(ctx context.Context) (uint32, error)

	// Advance marks n more bytes past the free pointer as used.
	Advance(ctx context.Context, n uint32) error
}

// Caller invokes module exports by name.
type Caller interface {
	Call(ctx context.Context, name string, params ...uint64) ([]uint64, error)
}

// ExportAllocator implements Allocator over a pair of module exports.
type ExportAllocator struct {
	caller      Caller
	freePointer string
	advance     string
}

// NewExportAllocator returns an allocator calling freePointer () -> i32
// and advance (i32) -> ().
func NewExportAllocator(caller Caller, freePointer, advance string) *ExportAllocator {
	return &ExportAllocator{
		caller:      caller,
		freePointer: freePointer,
		advance:     advance,
	}
}

// FreePointer calls the free pointer export.
func (a *ExportAllocator) FreePointer(ctx context.Context) (uint32, error) {
	results, err := a.caller.Call(ctx, a.freePointer)
	if err != nil {
		return 0, err
	}
	if len(results) != 1 {
		return 0, fmt.Errorf("export '%s' returned %d values, want 1", a.freePointer, len(results))
	}
	return uint32(results[0]), nil
}

// Advance calls the advance export with n.
func (a *ExportAllocator) Advance(ctx context.Context, n uint32) error {
	_, err := a.caller.Call(ctx, a.advance, uint64(n))
	return err
}

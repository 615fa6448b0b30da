package exchange

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
)

// Snapshot copies linear memory from offset 0 up to the current free pointer.
func Snapshot(ctx context.Context, alloc Allocator, mem Memory) ([]byte, error) {
	free, err := alloc.FreePointer(ctx)
	if err != nil {
		return nil, fmt.Errorf("query free pointer: %w", err)
	}
	return mem.ReadBytes(0, free)
}

// Persist writes data verbatim to path.
func Persist(fs afero.Fs, path string, data []byte) error {
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("write output '%s': %w", path, err)
	}
	return nil
}

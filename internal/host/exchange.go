package host

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/woxQAQ/aoc-wasm-host/internal/exchange"
	"go.uber.org/zap"
)

// ExchangeJob describes one buffer-passing run.
type ExchangeJob struct {
	ModulePath string
	InputPath  string
	OutputPath string
}

// ExchangeResult reports what a buffer-passing run did.
type ExchangeResult struct {
	// Pointer is the byte offset of the exchange buffer.
	Pointer uint32
	// Result is the rendered entry point return value.
	Result string
	// OutputSize is the number of memory bytes persisted.
	OutputSize int
}

// RunExchange reads the input file, hands it to the module as an exchange
// buffer, calls the entry point with its pointer, prints the return value
// and persists memory up to the final free pointer.
func (h *Host) RunExchange(ctx context.Context, job ExchangeJob) (*ExchangeResult, error) {
	logger := h.logger.With(zap.String("module", job.ModulePath))

	input, err := afero.ReadFile(h.fs, job.InputPath)
	if err != nil {
		return nil, fmt.Errorf("read input '%s': %w", job.InputPath, err)
	}

	instance, err := h.instantiate(ctx, job.ModulePath)
	if err != nil {
		return nil, err
	}
	defer instance.Close(ctx)

	mem, err := instance.Memory(h.exports.Memory)
	if err != nil {
		return nil, err
	}

	alloc := exchange.NewExportAllocator(instance, h.exports.FreePointer, h.exports.AdvanceFreePointer)

	ptr, err := exchange.Write(ctx, alloc, mem, input)
	if err != nil {
		return nil, fmt.Errorf("write exchange buffer: %w", err)
	}

	logger.Debug("Exchange buffer written",
		zap.Uint32("ptr", ptr),
		zap.Int("input_bytes", len(input)),
	)

	result, err := instance.CallFormatted(ctx, h.exports.Entry, uint64(ptr))
	if err != nil {
		return nil, err
	}

	if err := h.printResult(result); err != nil {
		return nil, err
	}

	snapshot, err := exchange.Snapshot(ctx, alloc, mem)
	if err != nil {
		return nil, fmt.Errorf("snapshot memory: %w", err)
	}

	if err := exchange.Persist(h.fs, job.OutputPath, snapshot); err != nil {
		return nil, err
	}

	logger.Info("Exchange run complete",
		zap.String("result", result),
		zap.String("output", job.OutputPath),
		zap.Int("output_bytes", len(snapshot)),
	)

	return &ExchangeResult{
		Pointer:    ptr,
		Result:     result,
		OutputSize: len(snapshot),
	}, nil
}

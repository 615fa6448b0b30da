package host

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/woxQAQ/aoc-wasm-host/internal/config"
	"github.com/woxQAQ/aoc-wasm-host/internal/wasm"
	"go.uber.org/zap"
)

// Host owns one Wasm runtime and runs puzzle modules on it.
type Host struct {
	exports   config.ExportsConfig
	runtime   *wasm.Runtime
	loader    *wasm.ModuleLoader
	instances *wasm.InstanceManager
	fs        afero.Fs
	stdout    io.Writer
	logger    *zap.Logger
}

type options struct {
	fs     afero.Fs
	stdout io.Writer
}

// Option configures a Host.
type Option func(*options)

// WithFs sets the filesystem modules, inputs and outputs live on.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithStdout sets where entry point results are printed.
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		o.stdout = w
	}
}

// New builds a Host and its Wasm runtime from cfg.
func New(ctx context.Context, cfg *config.HostConfig, logger *zap.Logger, opts ...Option) (*Host, error) {
	o := options{
		fs:     afero.NewOsFs(),
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	runtime, err := wasm.NewRuntime(ctx, logger, cfg.Wasm.RuntimeConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Wasm runtime: %w", err)
	}

	logger.Info("Host initialized",
		zap.Uint32("wasm_memory_pages", cfg.Wasm.MemoryPages),
		zap.String("wasm_cache_dir", cfg.Wasm.CacheDir),
		zap.String("entry", cfg.Exports.Entry),
	)

	return &Host{
		exports:   cfg.Exports,
		runtime:   runtime,
		loader:    wasm.NewModuleLoader(runtime, o.fs, logger),
		instances: wasm.NewInstanceManager(runtime, wasm.NewHostFunctions(logger), logger),
		fs:        o.fs,
		stdout:    o.stdout,
		logger:    logger.With(zap.String("component", "host")),
	}, nil
}

// Loader returns the module loader, so callers can precompile modules.
func (h *Host) Loader() *wasm.ModuleLoader {
	return h.loader
}

// Fs returns the filesystem the host reads and writes.
func (h *Host) Fs() afero.Fs {
	return h.fs
}

// Close gracefully shuts down the host.
func (h *Host) Close(ctx context.Context) error {
	h.logger.Info("Shutting down host")

	if err := h.runtime.Close(ctx); err != nil {
		h.logger.Error("Failed to shutdown Wasm runtime", zap.Error(err))
		return err
	}

	return nil
}

// instantiate compiles (or reuses) the module at path and instantiates it.
func (h *Host) instantiate(ctx context.Context, path string) (*wasm.Instance, error) {
	compiled, err := h.loader.LoadModuleFromFile(ctx, path)
	if err != nil {
		return nil, err
	}

	return h.instances.Instantiate(ctx, &wasm.InstanceConfig{ModuleName: compiled.Name})
}

// printResult writes a non-empty result as one line.
func (h *Host) printResult(result string) error {
	if result == "" {
		return nil
	}
	_, err := fmt.Fprintln(h.stdout, result)
	return err
}

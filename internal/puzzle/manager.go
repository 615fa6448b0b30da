package puzzle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/woxQAQ/aoc-wasm-host/internal/host"
	"go.uber.org/zap"
)

// Manager manages puzzle discovery and runs.
type Manager struct {
	paths    []string
	host     *host.Host
	loader   *Loader
	registry *Registry
	logger   *zap.Logger

	mu     sync.RWMutex
	loaded bool
}

// NewManager creates a new puzzle manager scanning paths for puzzles.
func NewManager(paths []string, h *host.Host, logger *zap.Logger) *Manager {
	return &Manager{
		paths:    paths,
		host:     h,
		loader:   NewLoader(h.Fs(), h.Loader(), logger),
		registry: NewRegistry(logger),
		logger:   logger.With(zap.String("component", "puzzle-manager")),
	}
}

// LoadAll discovers and loads all puzzles from configured paths.
func (m *Manager) LoadAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return fmt.Errorf("puzzles already loaded")
	}

	m.logger.Info("Loading puzzles",
		zap.Strings("paths", m.paths),
	)

	puzzles, err := m.loader.DiscoverPuzzles(ctx, m.paths)
	if err != nil {
		var none *NoPuzzlesFoundError
		if errors.As(err, &none) {
			m.logger.Warn("No puzzles found in configured paths",
				zap.Strings("paths", m.paths),
			)
			m.loaded = true
			return nil
		}
		return err
	}

	for _, puzzle := range puzzles {
		if err := m.registry.Register(puzzle); err != nil {
			m.logger.Error("Failed to register puzzle",
				zap.String("name", puzzle.Manifest.Name),
				zap.Error(err),
			)
			continue
		}
	}

	m.loaded = true

	m.logger.Info("Puzzles loaded successfully",
		zap.Int("count", m.registry.Count()),
	)

	return nil
}

// GetPuzzle retrieves a puzzle by name.
func (m *Manager) GetPuzzle(name string) (*Puzzle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	puzzle, ok := m.registry.Get(name)
	if !ok {
		return nil, &PuzzleNotFoundError{PuzzleName: name}
	}

	return puzzle, nil
}

// Run runs every program of one puzzle in manifest order.
func (m *Manager) Run(ctx context.Context, name string) error {
	puzzle, err := m.GetPuzzle(name)
	if err != nil {
		return err
	}
	return m.runPuzzle(ctx, puzzle)
}

// RunAll runs every registered puzzle in name order, stopping at the first failure.
func (m *Manager) RunAll(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, puzzle := range m.registry.List() {
		if err := m.runPuzzle(ctx, puzzle); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) runPuzzle(ctx context.Context, puzzle *Puzzle) error {
	manifest := puzzle.Manifest

	for _, p := range manifest.Programs {
		m.logger.Info("Running program",
			zap.String("puzzle", manifest.Name),
			zap.String("program", p.Name),
			zap.String("mode", string(p.Mode)),
		)

		var err error
		switch p.Mode {
		case ModeExchange:
			_, err = m.host.RunExchange(ctx, host.ExchangeJob{
				ModulePath: manifest.Resolve(p.Wasm),
				InputPath:  manifest.Resolve(p.Input),
				OutputPath: manifest.Resolve(p.Output),
			})
		case ModeInvoke:
			_, err = m.host.RunInvoke(ctx, host.InvokeJob{
				ModulePath: manifest.Resolve(p.Wasm),
			})
		default:
			err = fmt.Errorf("unsupported mode %q", p.Mode)
		}

		if err != nil {
			return &ProgramRunError{
				PuzzleName:  manifest.Name,
				ProgramName: p.Name,
				Err:         err,
			}
		}
	}

	return nil
}

// Shutdown gracefully shuts down the host.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Shutting down puzzle manager")

	if err := m.host.Close(ctx); err != nil {
		m.logger.Error("Failed to shutdown host", zap.Error(err))
		return err
	}

	m.logger.Info("Puzzle manager shutdown complete")
	return nil
}

// Registry returns the puzzle registry (for testing/inspection).
func (m *Manager) Registry() *Registry {
	return m.registry
}

// IsLoaded returns whether puzzles have been loaded.
func (m *Manager) IsLoaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

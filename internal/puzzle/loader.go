package puzzle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/woxQAQ/aoc-wasm-host/internal/wasm"
	"go.uber.org/zap"
)

// Loader handles loading puzzles from disk.
type Loader struct {
	fs           afero.Fs
	moduleLoader *wasm.ModuleLoader
	logger       *zap.Logger
}

// NewLoader creates a new puzzle loader.
func NewLoader(fs afero.Fs, moduleLoader *wasm.ModuleLoader, logger *zap.Logger) *Loader {
	return &Loader{
		fs:           fs,
		moduleLoader: moduleLoader,
		logger:       logger.With(zap.String("component", "puzzle-loader")),
	}
}

// LoadPuzzle loads a single puzzle from a directory and precompiles its modules.
func (l *Loader) LoadPuzzle(ctx context.Context, dir string) (*Puzzle, error) {
	l.logger.Debug("Loading puzzle", zap.String("dir", dir))

	manifest, err := ParseManifest(l.fs, dir)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Loading puzzle",
		zap.String("name", manifest.Name),
		zap.Int("programs", len(manifest.Programs)),
	)

	modules := make(map[string]*wasm.CompiledModule, len(manifest.Programs))
	for _, p := range manifest.Programs {
		// Compiled modules are cached by path, so shared files compile once.
		compiled, err := l.moduleLoader.LoadModuleFromFile(ctx, manifest.Resolve(p.Wasm))
		if err != nil {
			return nil, &PuzzleLoadError{
				PuzzleName: manifest.Name,
				Err:        err,
			}
		}
		modules[p.Name] = compiled
	}

	puzzle := &Puzzle{
		Manifest: manifest,
		Modules:  modules,
		LoadedAt: time.Now(),
	}

	l.logger.Info("Puzzle loaded successfully",
		zap.String("name", manifest.Name),
	)

	return puzzle, nil
}

// DiscoverPuzzles scans directories for puzzles.
func (l *Loader) DiscoverPuzzles(ctx context.Context, paths []string) ([]*Puzzle, error) {
	var puzzles []*Puzzle
	var errs []error

	for _, basePath := range paths {
		l.logger.Debug("Scanning puzzle directory", zap.String("path", basePath))

		entries, err := afero.ReadDir(l.fs, basePath)
		if err != nil {
			if os.IsNotExist(err) {
				l.logger.Warn("Puzzle path does not exist", zap.String("path", basePath))
				continue
			}
			return nil, fmt.Errorf("failed to read directory '%s': %w", basePath, err)
		}

		// Try to load each subdirectory as a puzzle
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			puzzleDir := filepath.Join(basePath, entry.Name())

			if ok, _ := afero.Exists(l.fs, filepath.Join(puzzleDir, ManifestFile)); !ok {
				l.logger.Debug("Skipping directory without manifest", zap.String("dir", puzzleDir))
				continue
			}

			puzzle, err := l.LoadPuzzle(ctx, puzzleDir)
			if err != nil {
				l.logger.Error("Failed to load puzzle",
					zap.String("dir", puzzleDir),
					zap.Error(err),
				)
				errs = append(errs, err)
				continue
			}

			puzzles = append(puzzles, puzzle)
		}
	}

	if len(puzzles) > 0 && len(errs) > 0 {
		l.logger.Warn("Some puzzles failed to load",
			zap.Int("loaded", len(puzzles)),
			zap.Int("failed", len(errs)),
		)
	}

	if len(puzzles) == 0 {
		return nil, &NoPuzzlesFoundError{Paths: paths}
	}

	return puzzles, nil
}

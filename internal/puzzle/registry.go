package puzzle

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Registry manages loaded puzzles.
type Registry struct {
	sync.RWMutex
	puzzles map[string]*Puzzle // name -> puzzle
	logger  *zap.Logger
}

// NewRegistry creates a new puzzle registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		puzzles: make(map[string]*Puzzle),
		logger:  logger.With(zap.String("component", "puzzle-registry")),
	}
}

// Register adds a puzzle to the registry.
func (r *Registry) Register(puzzle *Puzzle) error {
	r.Lock()
	defer r.Unlock()

	name := puzzle.Manifest.Name

	if _, exists := r.puzzles[name]; exists {
		return &PuzzleAlreadyRegisteredError{PuzzleName: name}
	}

	r.puzzles[name] = puzzle

	r.logger.Info("Puzzle registered",
		zap.String("name", name),
		zap.Int("programs", len(puzzle.Manifest.Programs)),
	)

	return nil
}

// Get retrieves a puzzle by name.
func (r *Registry) Get(name string) (*Puzzle, bool) {
	r.RLock()
	defer r.RUnlock()

	puzzle, ok := r.puzzles[name]
	return puzzle, ok
}

// List returns all registered puzzles ordered by name.
func (r *Registry) List() []*Puzzle {
	r.RLock()
	defer r.RUnlock()

	result := make([]*Puzzle, 0, len(r.puzzles))
	for _, puzzle := range r.puzzles {
		result = append(result, puzzle)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Manifest.Name < result[j].Manifest.Name
	})
	return result
}

// Unregister removes a puzzle from the registry.
func (r *Registry) Unregister(name string) {
	r.Lock()
	defer r.Unlock()

	if _, ok := r.puzzles[name]; !ok {
		return
	}

	delete(r.puzzles, name)

	r.logger.Info("Puzzle unregistered", zap.String("name", name))
}

// Count returns the number of registered puzzles.
func (r *Registry) Count() int {
	r.RLock()
	defer r.RUnlock()

	return len(r.puzzles)
}

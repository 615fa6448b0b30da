package puzzle

import (
	"time"

	"github.com/woxQAQ/aoc-wasm-host/internal/wasm"
)

// Puzzle represents a loaded puzzle with its manifest and compiled modules.
type Puzzle struct {
	// Manifest is the parsed puzzle metadata
	Manifest *Manifest

	// Modules maps program names to their compiled modules
	Modules map[string]*wasm.CompiledModule

	// LoadedAt is the timestamp when the puzzle was loaded
	LoadedAt time.Time
}

// Name returns the puzzle name.
func (p *Puzzle) Name() string {
	return p.Manifest.Name
}

// Programs returns the programs in manifest order.
func (p *Puzzle) Programs() []Program {
	return p.Manifest.Programs
}

// Program looks up a program by name.
func (p *Puzzle) Program(name string) (Program, bool) {
	for _, prog := range p.Manifest.Programs {
		if prog.Name == name {
			return prog, true
		}
	}
	return Program{}, false
}

package puzzle

import (
	"fmt"
)

// ManifestNotFoundError occurs when manifest.yaml is not found in a directory.
type ManifestNotFoundError struct {
	Path string
	Err  error
}

func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("manifest not found at '%s': %v", e.Path, e.Err)
}

func (e *ManifestNotFoundError) Unwrap() error {
	return e.Err
}

// ManifestParseError occurs when manifest.yaml cannot be parsed as valid YAML.
type ManifestParseError struct {
	Path string
	Err  error
}

func (e *ManifestParseError) Error() string {
	return fmt.Sprintf("failed to parse manifest at '%s': %v", e.Path, e.Err)
}

func (e *ManifestParseError) Unwrap() error {
	return e.Err
}

// ManifestValidationError occurs when manifest.yaml fails validation.
type ManifestValidationError struct {
	Path    string
	Field   string
	Message string
}

func (e *ManifestValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("manifest validation failed at '%s': %s (field: %s)",
			e.Path, e.Message, e.Field)
	}
	return fmt.Sprintf("manifest validation failed at '%s': %s", e.Path, e.Message)
}

// WasmNotFoundError occurs when the Wasm file referenced in manifest doesn't exist.
type WasmNotFoundError struct {
	ManifestPath string
	WasmFile     string
}

func (e *WasmNotFoundError) Error() string {
	return fmt.Sprintf("Wasm file '%s' not found (referenced in manifest '%s')",
		e.WasmFile, e.ManifestPath)
}

// PuzzleLoadError occurs when puzzle loading fails.
type PuzzleLoadError struct {
	PuzzleName string
	Err        error
}

func (e *PuzzleLoadError) Error() string {
	return fmt.Sprintf("failed to load puzzle '%s': %v", e.PuzzleName, e.Err)
}

func (e *PuzzleLoadError) Unwrap() error {
	return e.Err
}

// ProgramRunError occurs when one program of a puzzle fails.
type ProgramRunError struct {
	PuzzleName  string
	ProgramName string
	Err         error
}

func (e *ProgramRunError) Error() string {
	return fmt.Sprintf("puzzle '%s' program '%s' failed: %v", e.PuzzleName, e.ProgramName, e.Err)
}

func (e *ProgramRunError) Unwrap() error {
	return e.Err
}

// PuzzleNotFoundError occurs when a puzzle is not found in the registry.
type PuzzleNotFoundError struct {
	PuzzleName string
}

func (e *PuzzleNotFoundError) Error() string {
	return fmt.Sprintf("puzzle '%s' not found", e.PuzzleName)
}

// PuzzleAlreadyRegisteredError occurs when attempting to register a duplicate puzzle.
type PuzzleAlreadyRegisteredError struct {
	PuzzleName string
}

func (e *PuzzleAlreadyRegisteredError) Error() string {
	return fmt.Sprintf("puzzle '%s' is already registered", e.PuzzleName)
}

// NoPuzzlesFoundError occurs when no puzzles are found in the configured paths.
type NoPuzzlesFoundError struct {
	Paths []string
}

func (e *NoPuzzlesFoundError) Error() string {
	return fmt.Sprintf("no puzzles found in paths: %v", e.Paths)
}

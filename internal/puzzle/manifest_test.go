package puzzle

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/woxQAQ/aoc-wasm-host/internal/testutil"
)

const validManifest = `
name: day1
description: Trebuchet
programs:
  - name: part1
    mode: exchange
    wasm: part1.wasm
    input: input.txt
    output: output.bin
  - name: step0
    mode: invoke
    wasm: step0.wasm
`

// writePuzzle lays out a puzzle directory with the given manifest and both fixture modules.
func writePuzzle(t *testing.T, fs afero.Fs, dir, manifest string) {
	t.Helper()

	files := map[string][]byte{
		ManifestFile: []byte(manifest),
		"part1.wasm": testutil.ExchangeModule,
		"step0.wasm": testutil.ConstantModule,
		"input.txt":  []byte("abc"),
	}
	for name, data := range files {
		if err := afero.WriteFile(fs, filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestParseManifest_Valid(t *testing.T) {
	fs := afero.NewMemMapFs()
	writePuzzle(t, fs, "/puzzles/day1", validManifest)

	manifest, err := ParseManifest(fs, "/puzzles/day1")
	if err != nil {
		t.Fatalf("ParseManifest() failed: %v", err)
	}

	if manifest.Name != "day1" {
		t.Errorf("expected Name 'day1', got '%s'", manifest.Name)
	}

	if len(manifest.Programs) != 2 {
		t.Fatalf("expected 2 programs, got %d", len(manifest.Programs))
	}

	if manifest.Programs[0].Mode != ModeExchange || manifest.Programs[1].Mode != ModeInvoke {
		t.Errorf("unexpected modes: %s, %s", manifest.Programs[0].Mode, manifest.Programs[1].Mode)
	}

	if manifest.Programs[1].Input != "" {
		t.Errorf("invoke program should have no input, got '%s'", manifest.Programs[1].Input)
	}
}

func TestParseManifest_NotFound(t *testing.T) {
	_, err := ParseManifest(afero.NewMemMapFs(), "/puzzles/nonexistent")
	if err == nil {
		t.Fatal("ParseManifest() should fail for nonexistent directory")
	}

	if _, ok := err.(*ManifestNotFoundError); !ok {
		t.Errorf("expected ManifestNotFoundError, got %T", err)
	}
}

func TestParseManifest_InvalidYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	writePuzzle(t, fs, "/puzzles/bad", "name: [unterminated\nprograms: {")

	_, err := ParseManifest(fs, "/puzzles/bad")
	if err == nil {
		t.Fatal("ParseManifest() should fail for invalid YAML")
	}

	if _, ok := err.(*ManifestParseError); !ok {
		t.Errorf("expected ManifestParseError, got %T", err)
	}
}

func TestParseManifest_ValidationFailures(t *testing.T) {
	tests := []struct {
		name      string
		manifest  string
		wantField string
	}{
		{
			name: "missing name",
			manifest: `
programs:
  - name: step0
    mode: invoke
    wasm: step0.wasm
`,
			wantField: "name",
		},
		{
			name:      "no programs",
			manifest:  "name: day1\nprograms: []\n",
			wantField: "programs",
		},
		{
			name: "bad mode",
			manifest: `
name: day1
programs:
  - name: step0
    mode: stream
    wasm: step0.wasm
`,
			wantField: "programs[0].mode",
		},
		{
			name: "exchange without input",
			manifest: `
name: day1
programs:
  - name: step0
    mode: invoke
    wasm: step0.wasm
  - name: part1
    mode: exchange
    wasm: part1.wasm
    output: output.bin
`,
			wantField: "programs[1].input",
		},
		{
			name: "missing wasm",
			manifest: `
name: day1
programs:
  - name: step0
    mode: invoke
`,
			wantField: "programs[0].wasm",
		},
		{
			name: "duplicate program",
			manifest: `
name: day1
programs:
  - name: step0
    mode: invoke
    wasm: step0.wasm
  - name: step0
    mode: invoke
    wasm: step0.wasm
`,
			wantField: "programs[1].name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writePuzzle(t, fs, "/puzzles/day1", tt.manifest)

			_, err := ParseManifest(fs, "/puzzles/day1")
			if err == nil {
				t.Fatal("ParseManifest() should fail")
			}

			validationErr, ok := err.(*ManifestValidationError)
			if !ok {
				t.Fatalf("expected ManifestValidationError, got %T: %v", err, err)
			}

			if validationErr.Field != tt.wantField {
				t.Errorf("expected Field '%s', got '%s' (%s)", tt.wantField, validationErr.Field, validationErr.Message)
			}
		})
	}
}

func TestParseManifest_WasmNotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	writePuzzle(t, fs, "/puzzles/day1", `
name: day1
programs:
  - name: part2
    mode: invoke
    wasm: part2.wasm
`)

	_, err := ParseManifest(fs, "/puzzles/day1")
	if err == nil {
		t.Fatal("ParseManifest() should fail for missing Wasm file")
	}

	notFound, ok := err.(*WasmNotFoundError)
	if !ok {
		t.Fatalf("expected WasmNotFoundError, got %T", err)
	}

	if notFound.WasmFile != "part2.wasm" {
		t.Errorf("expected WasmFile 'part2.wasm', got '%s'", notFound.WasmFile)
	}
}

func TestManifest_Paths(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/puzzles/day1"
	writePuzzle(t, fs, dir, validManifest)

	manifest, err := ParseManifest(fs, dir)
	if err != nil {
		t.Fatalf("ParseManifest() failed: %v", err)
	}

	if manifest.Dir() != dir {
		t.Errorf("expected Dir '%s', got '%s'", dir, manifest.Dir())
	}

	if manifest.Path() != filepath.Join(dir, ManifestFile) {
		t.Errorf("unexpected Path '%s'", manifest.Path())
	}

	if got := manifest.Resolve("part1.wasm"); got != filepath.Join(dir, "part1.wasm") {
		t.Errorf("unexpected Resolve result '%s'", got)
	}

	if got := manifest.Resolve("/abs/input.txt"); got != "/abs/input.txt" {
		t.Errorf("absolute paths should be kept, got '%s'", got)
	}
}

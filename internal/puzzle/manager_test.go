package puzzle

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/woxQAQ/aoc-wasm-host/internal/config"
	"github.com/woxQAQ/aoc-wasm-host/internal/host"
	"github.com/woxQAQ/aoc-wasm-host/internal/testutil"
	"github.com/woxQAQ/aoc-wasm-host/internal/wasm"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T, fs afero.Fs, paths ...string) (*Manager, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	cfg, err := config.LoadHostConfig("", config.ProgramPuzzles)
	if err != nil {
		t.Fatalf("LoadHostConfig() failed: %v", err)
	}

	var stdout bytes.Buffer
	h, err := host.New(ctx, cfg, zap.NewNop(), host.WithFs(fs), host.WithStdout(&stdout))
	if err != nil {
		t.Fatalf("host.New() failed: %v", err)
	}

	manager := NewManager(paths, h, zap.NewNop())
	t.Cleanup(func() { manager.Shutdown(ctx) })

	return manager, &stdout
}

func TestManager_NewManager(t *testing.T) {
	manager, _ := newTestManager(t, afero.NewMemMapFs(), "/puzzles")

	if manager.IsLoaded() {
		t.Error("Manager should not be loaded initially")
	}

	if manager.Registry().Count() != 0 {
		t.Errorf("expected 0 puzzles, got %d", manager.Registry().Count())
	}
}

func TestManager_LoadAll_NoPuzzles(t *testing.T) {
	manager, _ := newTestManager(t, afero.NewMemMapFs(), "/nonexistent")

	if err := manager.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() should tolerate empty paths: %v", err)
	}

	if !manager.IsLoaded() {
		t.Error("Manager should be loaded after LoadAll()")
	}

	if err := manager.LoadAll(context.Background()); err == nil {
		t.Error("second LoadAll() should fail")
	}
}

func TestManager_RunAll(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	writePuzzle(t, fs, "/puzzles/day1", validManifest)

	manager, stdout := newTestManager(t, fs, "/puzzles")
	if err := manager.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}

	if err := manager.RunAll(ctx); err != nil {
		t.Fatalf("RunAll() failed: %v", err)
	}

	if got := stdout.String(); got != "3\n42\n" {
		t.Errorf("unexpected stdout %q", got)
	}

	output, err := afero.ReadFile(fs, "/puzzles/day1/output.bin")
	if err != nil {
		t.Fatalf("output.bin not written: %v", err)
	}

	// 16 reserved bytes, the 4+3 byte frame, then the 4 bytes main claimed.
	if len(output) != testutil.ExchangeStartFreePointer+4+3+4 {
		t.Errorf("unexpected output size %d", len(output))
	}

	if !bytes.Equal(output[testutil.ExchangeStartFreePointer+4:testutil.ExchangeStartFreePointer+7], []byte("abc")) {
		t.Errorf("input not found in output: %v", output)
	}
}

func TestManager_Run(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	writePuzzle(t, fs, "/puzzles/day1", validManifest)

	manager, stdout := newTestManager(t, fs, "/puzzles")
	if err := manager.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}

	if err := manager.Run(ctx, "day1"); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if got := stdout.String(); got != "3\n42\n" {
		t.Errorf("unexpected stdout %q", got)
	}

	err := manager.Run(ctx, "day9")
	if _, ok := err.(*PuzzleNotFoundError); !ok {
		t.Errorf("expected PuzzleNotFoundError, got %T", err)
	}
}

func TestManager_RunAll_StopsAtFailure(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	writePuzzle(t, fs, "/puzzles/day1", validManifest)
	writePuzzle(t, fs, "/puzzles/day2", `
name: day2
programs:
  - name: crash
    mode: invoke
    wasm: crash.wasm
  - name: step0
    mode: invoke
    wasm: step0.wasm
`)
	if err := afero.WriteFile(fs, "/puzzles/day2/crash.wasm", testutil.TrapModule, 0644); err != nil {
		t.Fatal(err)
	}

	manager, stdout := newTestManager(t, fs, "/puzzles")
	if err := manager.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}

	err := manager.RunAll(ctx)
	if err == nil {
		t.Fatal("RunAll() should fail when a program traps")
	}

	var runErr *ProgramRunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected ProgramRunError, got %T", err)
	}
	if runErr.PuzzleName != "day2" || runErr.ProgramName != "crash" {
		t.Errorf("unexpected failing program %s/%s", runErr.PuzzleName, runErr.ProgramName)
	}

	var trapErr *wasm.TrapError
	if !errors.As(err, &trapErr) {
		t.Errorf("expected wrapped TrapError, got %v", runErr.Err)
	}

	// day1 ran before day2 failed, and day2's step0 never ran.
	if got := stdout.String(); got != "3\n42\n" {
		t.Errorf("unexpected stdout %q", got)
	}
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/woxQAQ/aoc-wasm-host/internal/wasm"
	"github.com/woxQAQ/aoc-wasm-host/pkg/abi"
)

// EnvPrefix prefixes environment overrides, e.g. AOC_HOST_WASM_MEMORY_PAGES.
const EnvPrefix = "AOC_HOST"

// Program selects the defaults a host binary starts from.
type Program string

const (
	// ProgramExchange passes an input buffer to the module (part1.wasm).
	ProgramExchange Program = "exchange"
	// ProgramInvoke calls the entry point without arguments (step0.wasm).
	ProgramInvoke Program = "invoke"
	// ProgramPuzzles runs every puzzle found under the puzzle paths.
	ProgramPuzzles Program = "puzzles"
)

// HostConfig holds the configuration shared by the host binaries.
type HostConfig struct {
	LogLevel    string        `mapstructure:"log_level"`
	ModulePath  string        `mapstructure:"module"`
	InputPath   string        `mapstructure:"input"`
	OutputPath  string        `mapstructure:"output"`
	PuzzlePaths []string      `mapstructure:"puzzle_paths"`
	Exports     ExportsConfig `mapstructure:"exports"`
	Wasm        WasmConfig    `mapstructure:"wasm"`
}

// ExportsConfig names the module exports the hosts rely on.
type ExportsConfig struct {
	Memory             string `mapstructure:"memory"`
	FreePointer        string `mapstructure:"free_pointer"`
	AdvanceFreePointer string `mapstructure:"advance_free_pointer"`
	Entry              string `mapstructure:"entry"`
}

// WasmConfig holds Wasm runtime configuration.
type WasmConfig struct {
	// Memory limit per module (in pages, 64KB each).
	MemoryPages uint32 `mapstructure:"memory_pages"`
	// Enable debug logging.
	Debug bool `mapstructure:"debug"`
	// Compilation cache directory.
	CacheDir string `mapstructure:"cache_dir"`
	// Maximum concurrent instances.
	MaxInstances int `mapstructure:"max_instances"`
	// Entry point execution timeout (seconds, 0 disables).
	ExecutionTimeout int `mapstructure:"execution_timeout"`
}

// RuntimeConfig converts the wasm section for wasm.NewRuntime.
func (c WasmConfig) RuntimeConfig() *wasm.RuntimeConfig {
	return &wasm.RuntimeConfig{
		MemoryPages:      c.MemoryPages,
		DebugEnabled:     c.Debug,
		CacheDir:         c.CacheDir,
		MaxInstances:     c.MaxInstances,
		ExecutionTimeout: time.Duration(c.ExecutionTimeout) * time.Second,
	}
}

// LoadHostConfig loads configuration for program from defaults, an optional file and the environment.
func LoadHostConfig(configPath string, program Program) (*HostConfig, error) {
	v := viper.New()

	v.SetDefault("log_level", "info")
	v.SetDefault("input", "input.txt")
	v.SetDefault("output", "output.bin")
	v.SetDefault("puzzle_paths", []string{"."})

	switch program {
	case ProgramExchange:
		v.SetDefault("module", "part1.wasm")
	case ProgramInvoke:
		v.SetDefault("module", "step0.wasm")
	case ProgramPuzzles:
		v.SetDefault("module", "")
	default:
		return nil, fmt.Errorf("unknown program %q", program)
	}

	// Export defaults
	v.SetDefault("exports.memory", abi.ExportMemory)
	v.SetDefault("exports.free_pointer", abi.ExportFreePointer)
	v.SetDefault("exports.advance_free_pointer", abi.ExportAdvanceFreePointer)
	v.SetDefault("exports.entry", abi.ExportEntry)

	// Wasm defaults
	v.SetDefault("wasm.memory_pages", 256) // 16MB
	v.SetDefault("wasm.debug", false)
	v.SetDefault("wasm.cache_dir", "")
	v.SetDefault("wasm.max_instances", 100)
	v.SetDefault("wasm.execution_timeout", 0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg HostConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

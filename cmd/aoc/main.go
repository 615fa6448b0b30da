package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/woxQAQ/aoc-wasm-host/internal/config"
	"github.com/woxQAQ/aoc-wasm-host/internal/host"
	"github.com/woxQAQ/aoc-wasm-host/internal/puzzle"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to configuration file")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	puzzlePaths := flag.String("paths", "", "Comma-separated directories to scan for puzzles")
	puzzleName := flag.String("puzzle", "", "Run only the named puzzle")
	flag.Parse()

	cfg, err := config.LoadHostConfig(*configPath, config.ProgramPuzzles)
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("Failed to load configuration", zap.Error(err))
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *puzzlePaths != "" {
		cfg.PuzzlePaths = strings.Split(*puzzlePaths, ",")
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("Invalid log level", zap.Error(err))
	}
	defer logger.Sync()

	logger.Info("Starting puzzle runner",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("date", date),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, err := host.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create host", zap.Error(err))
	}

	manager := puzzle.NewManager(cfg.PuzzlePaths, h, logger)
	if err := manager.LoadAll(ctx); err != nil {
		manager.Shutdown(ctx)
		logger.Fatal("Failed to load puzzles", zap.Error(err))
	}

	if *puzzleName != "" {
		err = manager.Run(ctx, *puzzleName)
	} else {
		err = manager.RunAll(ctx)
	}

	if shutdownErr := manager.Shutdown(ctx); shutdownErr != nil {
		logger.Warn("Shutdown failed", zap.Error(shutdownErr))
	}
	if err != nil {
		logger.Fatal("Puzzle run failed", zap.Error(err))
	}

	logger.Info("All puzzles complete")
}

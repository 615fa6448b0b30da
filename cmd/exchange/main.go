package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/woxQAQ/aoc-wasm-host/internal/config"
	"github.com/woxQAQ/aoc-wasm-host/internal/host"
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
	modulePath := flag.String("module", "", "Module to run (default part1.wasm)")
	inputPath := flag.String("input", "", "Input file passed to the module (default input.txt)")
	outputPath := flag.String("output", "", "Memory dump destination (default output.bin)")
	flag.Parse()

	cfg, err := config.LoadHostConfig(*configPath, config.ProgramExchange)
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("Failed to load configuration", zap.Error(err))
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *modulePath != "" {
		cfg.ModulePath = *modulePath
	}
	if *inputPath != "" {
		cfg.InputPath = *inputPath
	}
	if *outputPath != "" {
		cfg.OutputPath = *outputPath
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("Invalid log level", zap.Error(err))
	}
	defer logger.Sync()

	logger.Info("Starting exchange host",
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

	_, err = h.RunExchange(ctx, host.ExchangeJob{
		ModulePath: cfg.ModulePath,
		InputPath:  cfg.InputPath,
		OutputPath: cfg.OutputPath,
	})
	if closeErr := h.Close(ctx); closeErr != nil {
		logger.Warn("Failed to close host", zap.Error(closeErr))
	}
	if err != nil {
		logger.Fatal("Exchange run failed", zap.Error(err))
	}
}

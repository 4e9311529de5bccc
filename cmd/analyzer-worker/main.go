package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/bgstats/config"
	"github.com/domino14/bgstats/evaluator/pipcount"
	"github.com/domino14/bgstats/worker"
)

func main() {
	// Set up logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.DefaultConfig()
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	exePath, err := os.Executable()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get executable path")
	}
	cfg.AdjustRelativePaths(filepath.Dir(exePath))

	log.Info().Interface("config", cfg.SanitizedSettings()).Msg("loaded config")

	workerConfig := worker.DefaultWorkerConfig(cfg)
	if cfg.GetBool(config.ConfigWorkerStore) && workerConfig.DBPath == "" {
		workerConfig.DBPath = cfg.GetString(config.ConfigDBPath)
	}

	ev, err := pipcount.FromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create evaluator")
	}
	w, err := worker.NewAnalysisWorker(workerConfig, ev)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create worker")
	}
	defer w.Close()

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("worker failed")
	}

	log.Info().Msg("analyzer worker stopped")
}

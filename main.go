package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/chase/config"
	"github.com/pthm-cable/chase/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, event log, and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster runs)")
	intentEnabled := flag.Bool("intent", false, "Connect to the external intent bridge")
	intentURL := flag.String("intent-url", "", "Intent bridge websocket URL (empty = use config)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		StepsPerUpdate: *stepsPerUpdate,
		IntentEnabled:  *intentEnabled || cfg.Intent.Enabled,
		IntentURL:      *intentURL,
	}

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to create game", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.StartIntent(ctx)

	slog.Info("starting simulation",
		"seed", rngSeed,
		"max_ticks", *maxTicks,
		"steps_per_update", *stepsPerUpdate,
		"intent", opts.IntentEnabled,
	)

	for {
		g.UpdateHeadless()

		if *maxTicks > 0 && g.Tick() >= *maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}

	cancel()
	if err := g.Close(); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

// Command arenasim runs the arena physics headless: it spawns a player,
// enemies and pickups on the configured terrain, fires at enemies along
// raycasts and reports what happened.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"arenaphys/internal/config"
	"arenaphys/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (built-in defaults when empty)")
	ticks := flag.Int("ticks", -1, "override sim.ticks (0 runs until interrupted)")
	watch := flag.Bool("watch", false, "reload physics and terrain settings when the config file changes")
	realtime := flag.Bool("realtime", false, "pace ticks with the wall clock")
	flag.Parse()

	if err := run(*configPath, *ticks, *watch, *realtime); err != nil {
		fmt.Fprintf(os.Stderr, "arenasim: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, ticks int, watch, realtime bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if ticks >= 0 {
		cfg.Sim.Ticks = ticks
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}

	a, err := newArena(cfg, logger)
	if err != nil {
		return err
	}

	var (
		reloads <-chan config.Config
		errs    <-chan error
	)
	if watch {
		if configPath == "" {
			return fmt.Errorf("-watch needs -config")
		}
		w, err := config.NewWatcher(configPath)
		if err != nil {
			return err
		}
		defer w.Close()
		reloads, errs = w.Reloads, w.Errors
		logger.Info("Arena: watching config", "path", configPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a.run(ctx, reloads, errs, realtime)

	logger.Info("Arena: finished",
		"ticks", a.tick,
		"bodies", a.world.Len(),
		"shots", a.stats.Shots,
		"kills", a.stats.Kills,
		"pickups", a.stats.Pickups,
		"contacts", a.stats.Contacts,
	)
	return nil
}

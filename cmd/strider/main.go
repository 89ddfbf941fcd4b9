package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/strider/internal/config"
	"github.com/zeusync/strider/internal/core/debug"
	"github.com/zeusync/strider/internal/core/observability/log"
	"github.com/zeusync/strider/internal/injector"
	"github.com/zeusync/strider/internal/simulation"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "strider:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		envFile    = flag.String("env", ".env", "dotenv file applied before the process environment")
		view       = flag.Bool("view", false, "draw the creature in the terminal")
		serve      = flag.String("serve", "", "stream poses over websocket on this address")
		sound      = flag.Bool("sound", false, "play a tone on every footstep")
		ticks      = flag.Uint64("ticks", 0, "stop after this many ticks, 0 runs until interrupted")
		walk       = flag.String("walk", "", "held movement keys for a headless run, e.g. \"wd\"")
		logLevel   = flag.String("log-level", "", "debug, info, warn or error")
		logFile    = flag.String("log-file", "", "write logs to this file instead of stderr")
		report     = flag.Bool("report", false, "print a gait summary when the run ends")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		return err
	}
	if *report {
		cfg.Report.Enabled = true
	}
	if err := applyFlags(&cfg, *view, *serve, *sound, *ticks, *walk, *logLevel, *logFile); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim, cleanup, err := injector.InitializeSimulation(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := runSimulation(ctx, sim, cfg); err != nil {
		return err
	}
	if r := sim.Report(); r != nil {
		fmt.Println(r.Render(cfg.Report.Height))
	}
	return nil
}

// runSimulation releases the terminal before returning so the report can be
// printed.
func runSimulation(ctx context.Context, sim *simulation.Simulation, cfg config.Config) error {
	var tv *debug.TerminalView
	if cfg.Debug.View {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		if tv, err = debug.NewTerminalView(screen, cfg.Debug.Screen); err != nil {
			return err
		}
		defer tv.Close()
	}
	return sim.Run(ctx, tv)
}

func applyFlags(cfg *config.Config, view bool, serve string, sound bool, ticks uint64, walk, level, file string) error {
	if view {
		cfg.Debug.View = true
	}
	if serve != "" {
		cfg.Server.Enabled = true
		cfg.Server.Addr = serve
	}
	if sound {
		cfg.Audio.Enabled = true
	}
	if ticks > 0 {
		cfg.Simulation.Ticks = ticks
	}
	if walk != "" {
		cfg.Simulation.Walk = walk
	}
	if level != "" {
		l, err := log.ParseLevel(level)
		if err != nil {
			return err
		}
		cfg.Log.Level = l
	}
	if file != "" {
		cfg.Log.File = file
	}
	// the viewer owns the terminal, so logs must go elsewhere
	if cfg.Debug.View && cfg.Log.File == "" {
		return errors.New("-view needs a log file, set -log-file or log.file")
	}
	return cfg.Validate()
}

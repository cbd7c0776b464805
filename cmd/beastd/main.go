package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/beastmind/internal/ai"
	"github.com/udisondev/beastmind/internal/config"
	"github.com/udisondev/beastmind/internal/db"
	"github.com/udisondev/beastmind/internal/model"
	"github.com/udisondev/beastmind/internal/snapshot"
	"github.com/udisondev/beastmind/internal/world"
)

const (
	ConfigPath     = "configs/beastd.yaml"
	reloadDebounce = 500 * time.Millisecond
	statsInterval  = 30 * time.Second
	shutdownSave   = 10 * time.Second
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("BEASTMIND_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading server config: %w", err)
	}
	if p := os.Getenv("BEASTMIND_SPECIES_DIR"); p != "" {
		cfg.SpeciesDir = p
	}

	logLevel := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("beastd starting", "log_level", cfg.LogLevel, "tick", cfg.TickInterval)

	registry := config.NewRegistry(nil)
	if err := registry.LoadDir(cfg.SpeciesDir); err != nil {
		return fmt.Errorf("loading species: %w", err)
	}
	slog.Info("species loaded", "dir", cfg.SpeciesDir, "species", registry.Names())

	var stores []snapshot.Store
	if cfg.Database.Enabled {
		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		stores = append(stores, database.Snapshots())
		slog.Info("database connected")
	}
	if cfg.Snapshot.Dir != "" {
		fs, err := snapshot.NewFileStore(cfg.Snapshot.Dir)
		if err != nil {
			return err
		}
		stores = append(stores, fs)
	}

	w := world.New(cfg.World.GroundHeight)
	w.SetDaytime(cfg.World.Daytime)
	weather, ok := model.ParseWeather(cfg.World.Weather)
	if !ok {
		return fmt.Errorf("unknown weather %q", cfg.World.Weather)
	}
	w.SetWeather(weather)

	sim := newSimulation(cfg, registry, w, stores)

	existing := map[string]int{}
	if cfg.Snapshot.RestoreOnBoot {
		existing, err = sim.restore(ctx)
		if err != nil {
			return fmt.Errorf("restoring agents: %w", err)
		}
		slog.Info("agents restored", "species", existing)
	}
	if err := sim.populate(existing); err != nil {
		return err
	}
	sim.mgr.AfterTick(sim.afterTick)
	slog.Info("world populated", "agents", sim.mgr.Count(), "objects", w.ObjectCount())

	// running agents keep their tuning; spawns and offspring use the reloaded set
	var watcher *config.Watcher
	if cfg.WatchSpecies {
		watcher, err = config.NewWatcher(cfg.SpeciesDir, registry, reloadDebounce, nil)
		if err != nil {
			return fmt.Errorf("watching species: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := sim.mgr.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("tick manager: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sim.persist(gctx)
	})

	if watcher != nil {
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				published, rejected := sim.hub.Stats()
				slog.Info("simulation stats",
					"tick", sim.mgr.Ticks(),
					"agents", sim.mgr.Count(),
					"objects", w.ObjectCount(),
					"events", published,
					"rejected", rejected)
			}
		}
	})

	err = g.Wait()

	if len(stores) > 0 {
		saveCtx, cancel := context.WithTimeout(context.Background(), shutdownSave)
		defer cancel()
		if serr := sim.save(saveCtx, sim.collect()); serr != nil {
			slog.Error("final snapshot save", "error", serr)
		}
	}
	sim.mgr.Range(func(c ai.Controller) bool {
		c.Stop()
		return true
	})
	slog.Info("beastd stopped")
	return err
}

package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/nhle/twodo/internal/logging"
	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/persist"
	"github.com/nhle/twodo/internal/store"
	appsync "github.com/nhle/twodo/internal/sync"
	"github.com/nhle/twodo/internal/tables"
	"github.com/nhle/twodo/internal/theme"
)

// runtime bundles the services shared by every command.
type runtime struct {
	ctx       context.Context
	cancel    context.CancelFunc
	cfg       *model.AppConfig
	logger    *zap.Logger
	store     *store.Store
	persister persist.Persister
	watcher   *appsync.Watcher
	dataDir   string
}

// openRuntime loads the config, opens the configured backend, loads the
// store from it and starts auto-saving. Interactive runs also seed an
// empty store when configured to, and follow external edits of a JSON
// data file.
func openRuntime(parent context.Context, interactive bool) (*runtime, error) {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging, verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	rt := &runtime{
		ctx:     ctx,
		cancel:  cancel,
		cfg:     cfg,
		logger:  logger,
		dataDir: dataDir(cfg.Storage),
	}

	rt.store = store.New(tables.New())
	rt.watcher = appsync.New(rt.store)

	p, err := persist.Open(cfg.Storage, rt.store.Tables(), logger, persist.WithErrorHandler(rt.watcher.ReportError))
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	rt.persister = p

	if err := persist.LoadThenAutoSave(ctx, p); err != nil {
		rt.Close()
		return nil, err
	}
	logger.Info("storage ready", zap.String("storage", p.Describe()))

	if interactive {
		if cfg.SeedOnFirstRun && rt.store.IsEmpty() && rt.store.Seed() {
			logger.Info("seeded sample data")
		}
		if fp, ok := p.(*persist.FilePersister); ok {
			if err := fp.StartAutoLoad(ctx); err != nil {
				logger.Warn("auto-load unavailable", zap.Error(err))
			}
		}
		theme.Use(cfg.Display.Theme)
	}

	return rt, nil
}

// Close flushes pending saves and releases the backend.
func (rt *runtime) Close() {
	if rt.watcher != nil {
		rt.watcher.Stop()
	}
	if rt.persister != nil {
		rt.persister.StopAutoSave()
		if err := rt.persister.Close(); err != nil {
			rt.logger.Warn("closing storage", zap.Error(err))
		}
	}
	rt.cancel()
	_ = rt.logger.Sync()
}

// dataDir is where exports and shared notes go: next to the data file,
// or the default data directory for in-memory databases.
func dataDir(cfg model.StorageConfig) string {
	path := cfg.StoragePath()
	if path == ":memory:" {
		return model.DefaultDataDir()
	}
	return filepath.Dir(path)
}

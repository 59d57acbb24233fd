package main

import (
	"context"
	"fmt"

	"github.com/scottcame/piet/config"
	analysissvc "github.com/scottcame/piet/internal/api/analysis/service"
	basesvc "github.com/scottcame/piet/internal/api/base/service"
	"github.com/scottcame/piet/internal/database"
	"github.com/scottcame/piet/internal/global"
	"github.com/scottcame/piet/internal/logger"
)

// initLogger configures the named loggers from LOG_* variables
func initLogger() {
	cfg, err := logger.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load logger configuration: %v", err))
	}
	if err := logger.Init(cfg); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// initConfig loads and validates the configuration
func initConfig() (*config.Configuration, error) {
	global.InitValidator()

	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	logger.GetAppLogger().WithFields(map[string]interface{}{
		"store_driver":        cfg.StoreDriver,
		"database":            cfg.MongoDB_DBName,
		"collection":          cfg.MongoDB_Collection,
		"read_counter_atomic": cfg.ReadCounterAtomic,
		"api_version":         cfg.UI().APIVersion,
	}).Info("Configuration loaded")
	return cfg, nil
}

// initStore builds the analysis store selected by STORE_DRIVER. For MongoDB it connects with
// bounded retry, registers the collection and ensures the collection and its indexes.
func initStore(ctx context.Context, cfg *config.Configuration) (analysissvc.AnalysisStore, error) {
	switch cfg.StoreDriver {
	case global.StoreDriverMemory:
		logger.GetAppLogger().Warn("Using the in-memory analysis store, data is lost on restart")
		return analysissvc.NewAnalysisMemoryStore(), nil

	case global.StoreDriverMongoDB:
		client, err := database.GetInstance(ctx, cfg)
		if err != nil {
			return nil, err
		}
		global.MongoDB_Session = client

		if err := InitCollections(client, cfg); err != nil {
			return nil, err
		}
		collection, err := global.RegistryCollections.MustGet(cfg.MongoDB_Collection)
		if err != nil {
			return nil, err
		}

		store := analysissvc.NewAnalysisMongoStore(collection, basesvc.WithOperationTimeout(cfg.MongoDB_OperationTimeout()))
		if cfg.EnsureCollectionsAndIndexes {
			if err := store.EnsureSchema(ctx); err != nil {
				return nil, fmt.Errorf("ensure collection %s: %w", cfg.MongoDB_Collection, err)
			}
		}
		return store, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

// initService wires the analysis service over store
func initService(cfg *config.Configuration, store analysissvc.AnalysisStore) *analysissvc.AnalysisService {
	return analysissvc.NewAnalysisService(store, analysissvc.WithAtomicReadCounter(cfg.ReadCounterAtomic))
}

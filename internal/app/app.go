// Package app wires the searchsync components from configuration.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/config"
	dbRedis "github.com/kailas-cloud/searchsync/internal/db/redis"
	"github.com/kailas-cloud/searchsync/internal/registry"
	recordrepo "github.com/kailas-cloud/searchsync/internal/repository/record"
	"github.com/kailas-cloud/searchsync/internal/repository/searchindex"
	healthuc "github.com/kailas-cloud/searchsync/internal/usecase/health"
	"github.com/kailas-cloud/searchsync/internal/usecase/indexsync"
	"github.com/kailas-cloud/searchsync/internal/usecase/query"
	"github.com/kailas-cloud/searchsync/internal/usecase/rebuild"
)

// App holds the wired services of one process.
type App struct {
	Store    *dbRedis.Store
	Registry *registry.Registry
	Engine   *indexsync.Engine
	Records  *recordrepo.Repo
	Query    *query.Service
	Rebuild  *rebuild.Service
	Health   *healthuc.Service

	cfg    config.Config
	sqlDB  *sql.DB
	logger *zap.Logger
}

// New connects the stores and builds every service. Close releases them.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Database.Addrs,
		Username:   cfg.Database.Username,
		Password:   cfg.Database.Password,
		DB:         cfg.Database.DB,
		ForceRESP2: cfg.Database.Driver == "redis",
	})
	if err != nil {
		return nil, fmt.Errorf("create index store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("index store not ready: %w", err)
	}
	logger.Info("Connected to index store",
		zap.String("driver", cfg.Database.Driver),
		zap.Strings("addrs", cfg.Database.Addrs),
	)

	reg, err := buildRegistry(cfg.Types, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	index := searchindex.New(store, cfg.Storage.KeyPrefix)
	engine := indexsync.New(reg, index, logger)

	sqlDB, err := recordrepo.OpenDB(ctx, cfg.Records.Path)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open record store: %w", err)
	}
	records := recordrepo.New(sqlDB, engine, logger)
	for _, t := range cfg.Types {
		if err := records.RegisterTable(ctx, t.Name, t.Table); err != nil {
			_ = sqlDB.Close()
			store.Close()
			return nil, fmt.Errorf("register table for %s: %w", t.Name, err)
		}
	}

	return &App{
		Store:    store,
		Registry: reg,
		Engine:   engine,
		Records:  records,
		Query:    query.New(reg, index),
		Rebuild:  rebuild.New(engine, logger).WithWorkers(cfg.Rebuild.Workers).WithMarker(index),
		Health:   healthuc.New(store, records),
		cfg:      cfg,
		sqlDB:    sqlDB,
		logger:   logger,
	}, nil
}

// Rebuilder binds the rebuild service to the record store.
func (a *App) Rebuilder() *rebuild.Runner {
	return a.Rebuild.Bind(a.Records, a.cfg.Rebuild.BatchSize)
}

// RebuildAll reindexes the given types, or every registered type when none are given.
func (a *App) RebuildAll(ctx context.Context, types []string) ([]rebuild.Summary, error) {
	if len(types) == 0 {
		types = a.Registry.Types()
	}
	return a.Rebuild.RebuildRegistered(ctx, types, a.Records, a.cfg.Rebuild.BatchSize)
}

// Close releases the record and index stores.
func (a *App) Close() {
	if err := a.sqlDB.Close(); err != nil {
		a.logger.Warn("Failed to close record store", zap.Error(err))
	}
	a.Store.Close()
}

func buildRegistry(types []config.TypeConfig, logger *zap.Logger) (*registry.Registry, error) {
	reg := registry.New(logger)
	for _, t := range types {
		if _, err := reg.Register(t.Name, Options(t)); err != nil {
			return nil, fmt.Errorf("register %s: %w", t.Name, err)
		}
	}
	return reg, nil
}

// Options converts a configured type into registration options.
func Options(t config.TypeConfig) registry.Options {
	return registry.Options{
		TitleField:      t.TitleField,
		AliasField:      t.AliasField,
		ExtFields:       t.ExtFields,
		ScoreField:      t.ScoreField,
		ConditionFields: t.ConditionFields,
		ClassName:       t.ClassName,
	}
}

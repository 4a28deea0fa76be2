package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/amaumene/bestmovies/internal/cache"
	"github.com/amaumene/bestmovies/internal/config"
	"github.com/amaumene/bestmovies/internal/database"
	"github.com/amaumene/bestmovies/internal/fetcher"
	"github.com/amaumene/bestmovies/internal/handlers"
	"github.com/amaumene/bestmovies/internal/services"
	"github.com/amaumene/bestmovies/pkg/httputil"
	"github.com/amaumene/bestmovies/pkg/logger"
)

// app is everything a command needs, built once per invocation.
type app struct {
	config    *config.Config
	container *services.Container
	handler   *handlers.Handler
}

func (a *app) Close() {
	if err := a.container.Close(); err != nil {
		a.container.Logger.Errorf("[App] failed to close resources: %v", err)
	}
}

// newApp loads the configuration and wires the services. The database is
// opened only for commands that persist.
func newApp(cmd *cobra.Command, withDatabase bool) (*app, error) {
	cfg, err := InitializeConfig(cmd)
	if err != nil {
		return nil, err
	}

	log := InitializeLogger(cfg)

	store, err := InitializeCache(cfg, log)
	if err != nil {
		return nil, err
	}

	container := InitializeServices(cfg, store, log)

	if withDatabase {
		db, err := InitializeDatabase(cfg, log)
		if err != nil {
			container.Close()
			return nil, err
		}
		container.DB = db
	}

	return &app{
		config:    cfg,
		container: container,
		handler:   handlers.New(container, cfg, cmd.OutOrStdout()),
	}, nil
}

// InitializeConfig loads the configuration and applies the command line
// flags on top of it.
func InitializeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("cache") {
		cfg.CachePath = opts.cachePath
	}
	if flags.Changed("cache-backend") {
		cfg.CacheBackend = opts.cacheBackend
	}
	if flags.Changed("db") {
		cfg.DatabasePath = opts.databasePath
	}
	if opts.debug {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func InitializeLogger(cfg *config.Config) logger.Logger {
	log := logger.NewWithLevel(cfg.LogLevel, os.Stderr)

	switch cfg.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		log.Warnf("[App] unknown log level '%s', defaulting to info", cfg.LogLevel)
	}
	return log
}

func InitializeCache(cfg *config.Config, log logger.Logger) (cache.Store, error) {
	store, err := cache.Open(cfg.CacheBackend, cfg.CachePath, log)
	if err != nil {
		return nil, err
	}
	log.Debugf("[App] %s cache at %s holds %d entries", cfg.CacheBackend, cfg.CachePath, store.Len())
	return store, nil
}

func InitializeDatabase(cfg *config.Config, log logger.Logger) (database.Database, error) {
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	log.Debugf("[App] SQLite database at %s", cfg.DatabasePath)
	return db, nil
}

func InitializeServices(cfg *config.Config, store cache.Store, log logger.Logger) *services.Container {
	exec := fetcher.New(store, httputil.NewHTTPClient(cfg.HTTPTimeout), log)

	site := services.NewRottenTomatoes(cfg.DirectoryURL(), exec, log)
	omdb := services.NewOMDb(cfg, exec, log)
	exec.SetRedactor(omdb.Redact)

	return &services.Container{
		Catalog: site,
		OMDb:    omdb,
		Films:   services.NewFilms(site, omdb, log),
		Fetcher: exec,
		Cache:   store,
		Logger:  log,
	}
}

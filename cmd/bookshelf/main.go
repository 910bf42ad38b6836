// Bookshelf serves a small book collection over a JSON API and three
// server-rendered pages.
//
// Configuration is read from configs/config.yaml (override with
// BOOKSHELF_CONFIG), a .env file and the environment. See the configs
// directory for the full set of keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/bookshelf/internal/api"
	"github.com/nerrad567/bookshelf/internal/auth"
	"github.com/nerrad567/bookshelf/internal/book"
	"github.com/nerrad567/bookshelf/internal/events"
	"github.com/nerrad567/bookshelf/internal/infrastructure/config"
	"github.com/nerrad567/bookshelf/internal/infrastructure/database"
	"github.com/nerrad567/bookshelf/internal/infrastructure/logging"
	"github.com/nerrad567/bookshelf/internal/infrastructure/mqtt"
	"github.com/nerrad567/bookshelf/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
// It returns nil on clean shutdown after ctx is cancelled.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Bookshelf",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"env", cfg.App.Env,
		"storage", cfg.Storage.Driver,
	)

	// Book storage
	var (
		repo book.Repository = book.NewMemoryRepository()
		db   *database.DB
	)
	if cfg.Storage.Driver == config.StorageSQLite {
		db, err = openDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		log.Info("database ready", "path", db.Path())
		repo = book.NewSQLiteRepository(db.DB)
	}

	registry := book.NewRegistry(repo)
	registry.SetLogger(log)
	if loadErr := registry.Load(ctx, cfg.Storage.Seed); loadErr != nil {
		return fmt.Errorf("loading books: %w", loadErr)
	}
	count, err := registry.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting books: %w", err)
	}
	log.Info("book registry initialised", "books", count)

	gate, err := auth.NewGate(cfg.Security)
	if err != nil {
		return fmt.Errorf("creating page gate: %w", err)
	}

	// Optional MQTT change feed
	var broker api.BrokerStatus
	if cfg.MQTT.Enabled {
		mqttClient, stopFeed, mqttErr := startEventFeed(ctx, cfg.MQTT, registry, log)
		if mqttErr != nil {
			return mqttErr
		}
		defer func() {
			stopFeed()
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		broker = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log,
		Registry: registry,
		Gate:     gate,
		MQTT:     broker,
		DB:       db,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal",
		"gate", cfg.Security.Gate.Mode,
		"login", cfg.LoginEnabled(),
		"access_log", cfg.API.AccessLog,
	)

	<-ctx.Done()

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. MQTT (after the event queue drains)
	// 3. Database
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses BOOKSHELF_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("BOOKSHELF_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// openDatabase opens the SQLite file and applies the embedded migrations.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// startEventFeed connects to the broker and forwards registry events to it.
// ctx bounds only the connection check; the feed runs until the returned
// stop function is called, which drains the event queue.
func startEventFeed(ctx context.Context, cfg config.MQTTConfig, registry *book.Registry, log *logging.Logger) (*mqtt.Client, func(), error) {
	client, err := mqtt.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log)
	if err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("mqtt: %w", err)
	}
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"client_id", cfg.Broker.ClientID,
	)

	forwarder := events.NewForwarder(client, client.QoS())
	forwarder.SetLogger(log)
	registry.Subscribe(forwarder.Handle)

	return client, runForwarder(forwarder), nil
}

// runForwarder starts f on its own context. The returned function stops it
// and blocks until every queued event has been published.
func runForwarder(f *events.Forwarder) func() {
	ctx, cancel := context.WithCancel(context.Background())
	go f.Run(ctx)
	return func() {
		cancel()
		<-f.Done()
	}
}

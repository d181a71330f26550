// Command api is the Gardenwatch notifier service.
//
// Usage:
//
//	gardenwatch-api
//	API_PORT=8080 STORE_DRIVER=postgres DATABASE_URL=postgres://... gardenwatch-api

// @title Gardenwatch API
// @version 1.0.0
// @description Shop and weather notifier for the garden game: notifier rows, weather odds, alert preferences, audio rules and a websocket state stream.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Gardenwatch
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/albapepper/gardenwatch/internal/api"
	"github.com/albapepper/gardenwatch/internal/api/handler"
	"github.com/albapepper/gardenwatch/internal/audio"
	"github.com/albapepper/gardenwatch/internal/cache"
	"github.com/albapepper/gardenwatch/internal/catalog"
	"github.com/albapepper/gardenwatch/internal/config"
	"github.com/albapepper/gardenwatch/internal/db"
	"github.com/albapepper/gardenwatch/internal/engine"
	"github.com/albapepper/gardenwatch/internal/kv"
	"github.com/albapepper/gardenwatch/internal/listener"
	"github.com/albapepper/gardenwatch/internal/maintenance"
	"github.com/albapepper/gardenwatch/internal/notifications"
	"github.com/albapepper/gardenwatch/internal/prefs"
	"github.com/albapepper/gardenwatch/internal/stats"

	_ "github.com/albapepper/gardenwatch/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Connect to database (optional)
	var pool *db.Pool
	var pgPool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		logger.Info("Connecting to database...")
		pool, err = db.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		pgPool = pool.Pool
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
	}

	// Preference store
	backend, err := kv.Open(ctx, cfg, pgPool)
	if err != nil {
		logger.Error("Failed to open preference store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer backend.Close()
	store := prefs.New(backend, logger)
	logger.Info("Preference store opened", "driver", cfg.StoreDriver)

	// Static catalogs
	cat, err := catalog.Load(cfg.CatalogItemsFile, cfg.CatalogWeatherFile)
	if err != nil {
		logger.Error("Failed to load catalogs", "error", err)
		os.Exit(1)
	}
	logger.Info("Catalogs loaded", "items", len(cat.Items()), "weather", len(cat.Weather()))

	// Metrics and audio
	recorder := stats.New()
	player := audio.NewPlayer(audio.Options{
		Sounds:       cfg.AudioSounds,
		DefaultSound: cfg.AudioDefaultSound,
		Defaults: map[audio.Context]audio.Settings{
			audio.ContextShops:   {StopMode: audio.StopMode(cfg.AudioStopMode), LoopIntervalMs: cfg.AudioLoopIntervalMS},
			audio.ContextWeather: {StopMode: audio.StopManual, LoopIntervalMs: cfg.AudioLoopIntervalMS},
		},
	}, logger)
	player.AddOutput(audio.LogOutput(logger))
	player.AddOutput(audio.OutputFunc(func(e audio.Event) {
		recorder.ObserveAlert(string(e.Context), string(e.Kind))
	}))
	defer player.StopAll()

	// Live feeds
	feeds := listener.NewFeeds()
	feeds.Observer = recorder
	if cfg.ListenerEnabled() {
		go listener.Start(ctx, cfg.DatabaseURL, pgPool, feeds, logger)
	} else {
		logger.Info("Feed listener disabled, accepting payloads on POST /api/v1/feeds/{channel}")
	}

	// Engine
	eng := engine.New(engine.Options{
		Catalog:   cat,
		Prefs:     store,
		Shop:      feeds.Shop,
		Purchases: feeds.Purchases,
		Tools:     feeds.Tools,
		Weather:   feeds.Weather,
		Audio:     player,
		Stats:     recorder,
		Logger:    logger,
	})
	stopEngine := eng.Start(ctx)
	defer stopEngine()

	// Shop alert dispatcher
	go notifications.NewDispatcher(eng, player, logger).Run(ctx)

	// Start maintenance tickers (cleanup, digest, catch-up sweep)
	go maintenance.Start(ctx, maintenance.Deps{Engine: eng, Pool: pgPool, Feeds: feeds}, maintenance.Config{
		CleanupInterval: cfg.CleanupInterval,
		DigestInterval:  cfg.DigestInterval,
		CatchUpInterval: cfg.CatchUpInterval,
	}, logger)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	defer appCache.Close()
	unwatch := handler.Watch(eng, appCache, recorder)
	defer unwatch()
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Create router
	router := api.NewRouter(handler.Deps{
		Engine:    eng,
		Player:    player,
		Catalog:   cat,
		Cache:     appCache,
		Pool:      pool,
		Feeds:     feeds,
		Listening: cfg.ListenerEnabled(),
		Logger:    logger,
	}, cfg, recorder.Handler())

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Gardenwatch API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

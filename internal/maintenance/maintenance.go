// Package maintenance runs periodic background tasks as Go tickers: a state
// digest for the logs, a catch-up replay of the stored feed payloads and a
// cleanup of stale feed rows.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/gardenwatch/internal/engine"
	"github.com/albapepper/gardenwatch/internal/listener"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	CleanupInterval time.Duration // Stale feed_state rows
	DigestInterval  time.Duration // State summary log line
	CatchUpInterval time.Duration // Replay feed_state for missed NOTIFY events
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		CleanupInterval: 30 * time.Minute,
		DigestInterval:  1 * time.Hour,
		CatchUpInterval: 15 * time.Minute,
	}
}

// Deps are the components the tasks act on. Pool and Feeds may be nil, which
// disables the cleanup and catch-up tasks.
type Deps struct {
	Engine *engine.Engine
	Pool   *pgxpool.Pool
	Feeds  *listener.Feeds
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, deps Deps, cfg Config, logger *slog.Logger) {
	if deps.Pool == nil || deps.Feeds == nil {
		cfg.CleanupInterval = 0
		cfg.CatchUpInterval = 0
	}
	logger.Info("Maintenance tickers started",
		"cleanup", cfg.CleanupInterval,
		"digest", cfg.DigestInterval,
		"catchup", cfg.CatchUpInterval)

	tickers := make([]*time.Ticker, 0, 3)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	// Cleanup: drop payloads of retired channels
	if cfg.CleanupInterval > 0 {
		t := time.NewTicker(cfg.CleanupInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, "cleanup", func() {
			_ = PurgeFeedState(ctx, deps.Pool, listener.Channels, logger)
		})
	}

	// Digest: one summary line of the notifier state
	if cfg.DigestInterval > 0 {
		t := time.NewTicker(cfg.DigestInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, "digest", func() { Digest(ctx, deps.Engine, logger) })
	}

	// Catch-up: replay stored payloads missed during listener downtime
	if cfg.CatchUpInterval > 0 {
		t := time.NewTicker(cfg.CatchUpInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, "catchup", func() { catchUpSweep(ctx, deps, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, name string, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

// DigestSummary is what Digest logs.
type DigestSummary struct {
	Items          int
	Followed       int
	CurrentWeather string
	WeatherAlerts  int
	Rules          int
}

// Digest logs a one-line summary of the notifier state and returns it.
func Digest(ctx context.Context, eng *engine.Engine, logger *slog.Logger) DigestSummary {
	state := eng.Get(ctx)
	weather := eng.WeatherState()
	s := DigestSummary{
		Items:          state.Counts.Items,
		Followed:       state.Counts.Followed,
		CurrentWeather: weather.CurrentID,
		Rules:          len(eng.AllRules()),
	}
	for _, r := range weather.Rows {
		if r.NotifyEnabled {
			s.WeatherAlerts++
		}
	}
	logger.Info("Notifier digest",
		"items", s.Items,
		"followed", s.Followed,
		"weather", s.CurrentWeather,
		"weather_alerts", s.WeatherAlerts,
		"rules", s.Rules,
		"running", eng.Started())
	return s
}

// catchUpSweep replays every stored feed payload. The engine gates each
// reducer on its signature, so payloads already seen produce no updates.
func catchUpSweep(ctx context.Context, deps Deps, logger *slog.Logger) {
	n, err := listener.Replay(ctx, deps.Pool, deps.Feeds, logger)
	if err != nil {
		logger.Warn("Catch-up sweep: failed", "error", err)
		return
	}
	logger.Debug("Catch-up sweep: replayed feed state", "channels", n)
}

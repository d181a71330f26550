// Package listener provides a Postgres LISTEN/NOTIFY consumer for the live
// game feeds. It holds a dedicated pgx connection (not from the pool)
// listening on one channel per feed, and replays the last payload of every
// channel from the feed_state table on each (re)connect so that nothing sent
// while disconnected is lost.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/gardenwatch/internal/feed"
	"github.com/albapepper/gardenwatch/internal/toolcap"
)

const (
	ChannelShop      = "shop_snapshot"
	ChannelPurchases = "purchase_snapshot"
	ChannelTools     = "tool_inventory"
	ChannelWeather   = "weather_changed"

	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// Channels lists every feed channel.
var Channels = []string{ChannelShop, ChannelPurchases, ChannelTools, ChannelWeather}

// Observer counts dispatched payloads.
type Observer interface {
	ObserveFeed(channel, outcome string)
}

// Feeds are the observable sources fed by the listener.
type Feeds struct {
	Shop      *feed.Feed[feed.Shop]
	Purchases *feed.Feed[feed.Purchases]
	Tools     *feed.Feed[[]toolcap.Item]
	Weather   *feed.Feed[string]

	// Observer is optional.
	Observer Observer
}

// NewFeeds returns empty feeds.
func NewFeeds() *Feeds {
	return &Feeds{
		Shop:      feed.New[feed.Shop](ChannelShop),
		Purchases: feed.New[feed.Purchases](ChannelPurchases),
		Tools:     feed.New[[]toolcap.Item](ChannelTools),
		Weather:   feed.New[string](ChannelWeather),
	}
}

// Dispatch decodes a payload for channel and sets the matching feed.
func (f *Feeds) Dispatch(channel, payload string) error {
	err := f.dispatch(channel, payload)
	if f.Observer != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		f.Observer.ObserveFeed(channel, outcome)
	}
	return err
}

func (f *Feeds) dispatch(channel, payload string) error {
	switch channel {
	case ChannelShop:
		var s feed.Shop
		if err := json.Unmarshal([]byte(payload), &s); err != nil {
			return fmt.Errorf("decode shop snapshot: %w", err)
		}
		f.Shop.Set(s)
	case ChannelPurchases:
		var p feed.Purchases
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return fmt.Errorf("decode purchase snapshot: %w", err)
		}
		f.Purchases.Set(p)
	case ChannelTools:
		var items []toolcap.Item
		if err := json.Unmarshal([]byte(payload), &items); err != nil {
			return fmt.Errorf("decode tool inventory: %w", err)
		}
		f.Tools.Set(items)
	case ChannelWeather:
		f.Weather.Set(DecodeWeather(payload))
	default:
		return fmt.Errorf("unknown feed channel %q", channel)
	}
	return nil
}

// DecodeWeather accepts a JSON string, an object with a "weather" field, or
// plain text.
func DecodeWeather(payload string) string {
	trimmed := strings.TrimSpace(payload)
	var s string
	if err := json.Unmarshal([]byte(trimmed), &s); err == nil {
		return s
	}
	var obj struct {
		Weather *string `json:"weather"`
	}
	if err := json.Unmarshal([]byte(trimmed), &obj); err == nil && obj.Weather != nil {
		return *obj.Weather
	}
	return payload
}

// --------------------------------------------------------------------------
// Postgres
// --------------------------------------------------------------------------

// Publish stores payload as the latest value of channel and notifies
// listeners, in one statement.
func Publish(ctx context.Context, pool *pgxpool.Pool, channel, payload string) error {
	if !slices.Contains(Channels, channel) {
		return fmt.Errorf("unknown feed channel %q", channel)
	}
	if _, err := pool.Exec(ctx, "feed_publish", channel, payload); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// Replay dispatches the stored payload of every channel. Payloads that fail
// to decode are logged and skipped.
func Replay(ctx context.Context, pool *pgxpool.Pool, feeds *Feeds, logger *slog.Logger) (int, error) {
	rows, err := pool.Query(ctx, "feed_state_all")
	if err != nil {
		return 0, fmt.Errorf("load feed state: %w", err)
	}
	defer rows.Close()

	type stored struct{ channel, payload string }
	var all []stored
	for rows.Next() {
		var s stored
		if err := rows.Scan(&s.channel, &s.payload); err != nil {
			return 0, fmt.Errorf("scan feed state: %w", err)
		}
		all = append(all, s)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("load feed state: %w", err)
	}

	n := 0
	for _, s := range all {
		if err := feeds.Dispatch(s.channel, s.payload); err != nil {
			logger.Warn("Skipping stored feed payload", "channel", s.channel, "error", err)
			continue
		}
		n++
	}
	return n, nil
}

// Start opens a dedicated connection and listens on every feed channel. It
// reconnects automatically on connection loss. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, pool *pgxpool.Pool, feeds *Feeds, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, pool, feeds, logger)
		if ctx.Err() != nil {
			logger.Info("Feed listener stopped (context cancelled)")
			return
		}

		logger.Error("Feed listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, pool *pgxpool.Pool, feeds *Feeds, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	for _, ch := range Channels {
		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{ch}.Sanitize()); err != nil {
			return fmt.Errorf("LISTEN %s: %w", ch, err)
		}
	}
	logger.Info("Feed listener connected", "channels", Channels)

	// Replay after LISTEN: anything published in between arrives twice and
	// the duplicate is absorbed by the engine.
	n, err := Replay(ctx, pool, feeds, logger)
	if err != nil {
		logger.Warn("Feed replay failed", "error", err)
	} else {
		logger.Info("Feed state replayed", "channels", n)
	}

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		if err := feeds.Dispatch(notification.Channel, notification.Payload); err != nil {
			logger.Warn("Failed to dispatch feed payload",
				"channel", notification.Channel, "error", err)
			continue
		}
		logger.Debug("Feed payload received", "channel", notification.Channel, "bytes", len(notification.Payload))
	}
}

package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PurgeFeedState removes stored payloads for channels nothing listens to
// any more, so a catch-up replay only dispatches live channels.
func PurgeFeedState(ctx context.Context, pool *pgxpool.Pool, channels []string, logger *slog.Logger) error {
	start := time.Now()
	tag, err := pool.Exec(ctx, `DELETE FROM feed_state WHERE NOT (channel = ANY($1))`, channels)
	dur := time.Since(start).Round(time.Millisecond)

	if err != nil {
		logger.Warn("Failed to purge feed state", "duration", dur, "error", err)
		return fmt.Errorf("purge feed state: %w", err)
	}
	if tag.RowsAffected() > 0 {
		logger.Info("Purged stale feed state", "count", tag.RowsAffected(), "duration", dur)
	}
	return nil
}

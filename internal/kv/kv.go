// Package kv is the persistence seam for the preference store: a flat map of
// keys to JSON payloads with interchangeable backends.
package kv

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/gardenwatch/internal/config"
	"github.com/albapepper/gardenwatch/internal/kv/memory"
	"github.com/albapepper/gardenwatch/internal/kv/postgres"
	"github.com/albapepper/gardenwatch/internal/kv/s3"
	"github.com/albapepper/gardenwatch/internal/kv/sqlite"
)

// Store is a key-value backend. Get reports ok=false for absent keys.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

var (
	_ Store = (*memory.Store)(nil)
	_ Store = (*sqlite.Store)(nil)
	_ Store = (*postgres.Store)(nil)
	_ Store = (*s3.Store)(nil)
)

// Open selects a backend from configuration. pool is required for the
// postgres driver and ignored otherwise.
func Open(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return memory.New(), nil
	case config.StoreSQLite, "":
		return sqlite.NewStore(cfg.SQLitePath)
	case config.StorePostgres:
		if pool == nil {
			return nil, fmt.Errorf("postgres store requires a database pool")
		}
		return postgres.NewStore(pool), nil
	case config.StoreS3:
		return s3.New(ctx, s3.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown store driver %s", cfg.StoreDriver)
	}
}

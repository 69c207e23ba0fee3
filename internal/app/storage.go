package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-admin/internal/storage"
)

// OpenStorage returns the record backend selected by cfg.StorageDriver. The
// Redis driver shares client with the session store. close releases anything
// OpenStorage created itself.
func OpenStorage(ctx context.Context, cfg *Config, client *redis.Client) (s storage.Storage, close func(), err error) {
	noop := func() {}
	switch cfg.StorageDriver {
	case DriverMemory:
		return storage.NewMemory(), noop, nil
	case DriverRedis:
		if client == nil {
			return nil, noop, fmt.Errorf("storage: redis driver needs a client")
		}
		return storage.NewRedis(client, cfg.StoragePrefix), noop, nil
	case DriverPostgres:
		pool, err := storage.Connect(ctx, cfg.PGDSN)
		if err != nil {
			return nil, noop, err
		}
		pg := storage.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return pg, pool.Close, nil
	default:
		return nil, noop, fmt.Errorf("storage: unknown driver %q", cfg.StorageDriver)
	}
}

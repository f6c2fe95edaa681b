package cache

import (
	"strings"

	"github.com/redis/go-redis/v9"

	errs "scrapekit/pkg/errors"
	"scrapekit/pkg/config"
)

// Open builds a Store from configuration. An empty backend returns
// (nil, nil): caching disabled.
func Open(cfg config.CacheConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "":
		return nil, nil
	case "memory":
		return NewMemoryWithLimit(cfg.MaxEntries), nil
	case "file":
		store, err := NewFile(cfg.Dir)
		if err != nil {
			return nil, errs.Wrap(errs.ErrorTypeConfiguration, err, "cannot open file cache")
		}
		return store, nil
	case "sqlite":
		store, err := NewSQLite(cfg.Path)
		if err != nil {
			return nil, errs.Wrap(errs.ErrorTypeConfiguration, err, "cannot open sqlite cache")
		}
		return store, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
		return NewRedis(client, cfg.TTL), nil
	default:
		return nil, errs.Newf(errs.ErrorTypeConfiguration, "unknown cache backend %q", cfg.Backend)
	}
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces cache entries in a shared Redis instance.
const keyPrefix = "scrapekit:cache:"

// Redis stores entries in a Redis server, for caches shared across
// hosts. Entries are JSON-marshalled; an optional TTL bounds their
// lifetime.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	ctx    context.Context
}

// NewRedis creates a Redis-backed cache. A ttl of 0 stores entries
// without expiry.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
		ctx:    context.Background(),
	}
}

// Get returns the entry for key; a missing or expired key is a miss.
func (r *Redis) Get(key string) (*Entry, bool, error) {
	data, err := r.client.Get(r.ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, err
	}

	return &entry, true, nil
}

// Set stores entry under key with the configured TTL.
func (r *Redis) Set(key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return r.client.Set(r.ctx, keyPrefix+key, data, r.ttl).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Store = (*Redis)(nil)

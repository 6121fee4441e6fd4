package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore stores entries in redis under an optional key prefix
type RedisStore struct {
	name      string
	client    *redis.Client
	keyPrefix string
	ownClient bool
}

// NewRedisStore wraps an existing client; Close leaves it open
func NewRedisStore(name string, client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{
		name:      name,
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// newOwnedRedisStore creates the client itself and closes it on Close
func newOwnedRedisStore(name string, opts *redis.Options, keyPrefix string) *RedisStore {
	s := NewRedisStore(name, redis.NewClient(opts), keyPrefix)
	s.ownClient = true
	return s
}

func (s *RedisStore) Name() string {
	return s.name
}

// Client exposes the underlying client
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func (s *RedisStore) buildKey(key string) string {
	return s.keyPrefix + key
}

// Ping checks the server answers
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return ErrStoreUnavailable.Wrap(err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.Get(ctx, s.buildKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, ErrStoreGet.Wrap(err)
	}
	return result, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.buildKey(key), value, ttl).Err(); err != nil {
		return ErrStoreSet.Wrap(err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.buildKey(key)).Err(); err != nil {
		return ErrStoreDelete.Wrap(err)
	}
	return nil
}

// globEscaper quotes the characters SCAN MATCH treats as wildcards
var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// DeleteByPrefix scans in batches of 100 so large keyspaces do not block redis
func (s *RedisStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	full := s.buildKey(prefix)
	pattern := globEscaper.Replace(full) + "*"

	var cursor uint64
	var keys []string
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return ErrStoreDelete.Wrap(err)
		}
		for _, key := range batch {
			if strings.HasPrefix(key, full) {
				keys = append(keys, key)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return ErrStoreDelete.Wrap(err)
		}
	}
	return nil
}

func (s *RedisStore) Exists(ctx context.Context, key string) bool {
	n, err := s.client.Exists(ctx, s.buildKey(key)).Result()
	return err == nil && n > 0
}

// Close closes the client only when the store created it
func (s *RedisStore) Close() error {
	if !s.ownClient {
		return nil
	}
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)

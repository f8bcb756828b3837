package artifact

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisSink stores artifacts as string values and indexes their keys per kind.
// Suitable when several instances share generated documents.
type RedisSink struct {
	client    redis.Cmdable
	keyPrefix string
	ttl       time.Duration
	layout    Layout
}

// NewRedisSink connects to Redis and verifies the connection
func NewRedisSink(ctx context.Context, cfg *config.RedisConfig, layout Layout) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSinkWithClient(client, cfg.KeyPrefix, cfg.TTL, layout), nil
}

// NewRedisSinkWithClient creates a sink with an existing Redis client
func NewRedisSinkWithClient(client redis.Cmdable, keyPrefix string, ttl time.Duration, layout Layout) *RedisSink {
	if keyPrefix == "" {
		keyPrefix = "backoffice:artifact:"
	}
	if layout == nil {
		layout = DefaultLayout()
	}
	return &RedisSink{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		layout:    layout,
	}
}

// Write stores data and appends its key to the kind's index list.
// A zero TTL keeps the artifact until deleted.
func (s *RedisSink) Write(ctx context.Context, kind Kind, name string, data []byte) (string, error) {
	key := s.Key(kind, name)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, s.ttl)
	pipe.RPush(ctx, s.IndexKey(kind), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store artifact %s: %w", key, err)
	}

	return key, nil
}

// Key returns the Redis key an artifact is stored under
func (s *RedisSink) Key(kind Kind, name string) string {
	return s.keyPrefix + s.layout.location(kind) + ":" + SanitizeName(name)
}

// IndexKey returns the list that records every key written for a kind
func (s *RedisSink) IndexKey(kind Kind) string {
	return s.keyPrefix + "index:" + s.layout.location(kind)
}

// Close closes the underlying client when it owns one
func (s *RedisSink) Close() error {
	if c, ok := s.client.(*redis.Client); ok {
		return c.Close()
	}
	return nil
}

// Ensure RedisSink implements Sink
var _ Sink = (*RedisSink)(nil)

// Package redismedium stores local session state in Redis, one key namespace per
// client context.
package redismedium

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-session-guard/localstore"
	"github.com/redis/go-redis/v9"
)

var _ localstore.Medium = (*Medium)(nil)

const defaultOpTimeout = 2 * time.Second

// Medium is a localstore.Medium over a Redis client. Keys are stored as
// "<namespace>:<key>".
type Medium struct {
	client    redis.UniversalClient
	namespace string
	timeout   time.Duration
}

// New creates a Medium that prefixes every key with namespace.
func New(client redis.UniversalClient, namespace string) (*Medium, error) {
	if client == nil {
		return nil, errors.New("[redismedium.New] client is required")
	}
	if namespace == "" {
		return nil, errors.New("[redismedium.New] namespace is required")
	}
	return &Medium{
		client:    client,
		namespace: namespace,
		timeout:   defaultOpTimeout,
	}, nil
}

// NewClient parses redisURL and verifies connectivity.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("[redismedium.NewClient] parse URL: %w", err)
	}
	options.DialTimeout = 3 * time.Second
	options.ReadTimeout = defaultOpTimeout
	options.WriteTimeout = defaultOpTimeout

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, defaultOpTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[redismedium.NewClient] ping: %w", err)
	}
	return client, nil
}

func (m *Medium) Get(key string) (string, error) {
	ctx, cancel := m.opContext()
	defer cancel()

	value, err := m.client.Get(ctx, m.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", localstore.ErrNotFound
		}
		return "", fmt.Errorf("[redismedium.Get] %s: %w", key, err)
	}
	return value, nil
}

// Set stores value without a Redis TTL; expiry is decided by the Store on read.
func (m *Medium) Set(key, value string) error {
	ctx, cancel := m.opContext()
	defer cancel()

	if err := m.client.Set(ctx, m.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("[redismedium.Set] %s: %w", key, err)
	}
	return nil
}

func (m *Medium) Delete(key string) error {
	ctx, cancel := m.opContext()
	defer cancel()

	if err := m.client.Del(ctx, m.key(key)).Err(); err != nil {
		return fmt.Errorf("[redismedium.Delete] %s: %w", key, err)
	}
	return nil
}

func (m *Medium) key(key string) string {
	return m.namespace + ":" + key
}

func (m *Medium) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.timeout)
}

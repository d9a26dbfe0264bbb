package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"freelance-hub/internal/pkg/logger"
)

const redisKeyPrefix = "blob:"

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

type Redis struct {
	client *redis.Client
	logger logger.Logger

	warnedUnavailable atomic.Bool
}

// NewRedis connects and pings. Unlike a cache, a blob store cannot be
// bypassed, so an unreachable server is an error.
func NewRedis(ctx context.Context, opts RedisOptions, l logger.Logger) (*Redis, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unavailable: %w", addr, err)
	}

	return NewRedisFromClient(client, l), nil
}

func NewRedisFromClient(client *redis.Client, l logger.Logger) *Redis {
	return &Redis{client: client, logger: logger.OrNop(l)}
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.WithError(err).Warn("redis blob store error", nil)
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Get(ctx context.Context, name string) ([]byte, error) {
	b, err := r.client.Get(ctx, redisKeyPrefix+name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		r.warnUnavailableOnce(err)
		return nil, err
	}
	r.warnedUnavailable.Store(false)
	return b, nil
}

func (r *Redis) Put(ctx context.Context, name string, data []byte) error {
	if err := r.client.Set(ctx, redisKeyPrefix+name, data, 0).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	r.warnedUnavailable.Store(false)
	return nil
}

func (r *Redis) Delete(ctx context.Context, name string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+name).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

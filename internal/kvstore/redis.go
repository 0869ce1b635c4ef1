// Package kvstore builds the Redis client that holds the board's posts and comments.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"board/internal/config"
	"board/internal/observability"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

// Reserved keys. Every other key in the keyspace is a post id.
const (
	CounterKey  = "0"
	CommentsKey = "comments"
)

// IsReserved reports whether key is one of the non-post keys.
func IsReserved(key string) bool {
	return key == CounterKey || key == CommentsKey
}

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// Options converts the configuration into go-redis options. REDIS_URL wins over
// REDIS_HOST/REDIS_PORT when set; a bare host:port URL is accepted as well.
func Options(cfg *config.Config) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		if strings.Contains(cfg.RedisURL, "://") {
			opts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				return nil, fmt.Errorf("invalid REDIS_URL %q: %w", cfg.RedisURL, err)
			}
			return opts, nil
		}
		return &redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, nil
	}

	return &redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

// NewClient returns an instrumented client for opts without contacting the server.
func NewClient(opts *redis.Options) *redis.Client {
	// Servers without CLIENT MAINT_NOTIFICATIONS would fail the handshake.
	if opts.MaintNotificationsConfig == nil {
		opts.MaintNotificationsConfig = &maintnotifications.Config{Mode: maintnotifications.ModeDisabled}
	}
	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})
	return client
}

// Connect builds the client from cfg and checks the connection.
// Unlike a cache, the board cannot run without its store, so a failed ping is an error.
func Connect(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	client := NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	observability.Logger.Info("Redis connected successfully", "addr", opts.Addr, "db", opts.DB)
	return client, nil
}

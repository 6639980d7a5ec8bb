package redis_wrapper

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisConfig holds the connection settings for the trade feed
// publisher. The feed only ever publishes, so the pool is tuned for
// write throughput rather than fan-in.
type RedisConfig struct {
	ConnectionURL      string `yaml:"connection_url"`
	PoolSize           int    `yaml:"pool_size"`
	MinIdleConns       int    `yaml:"min_idle_conns"`
	DialTimeoutSeconds int    `yaml:"dial_timeout_seconds"`
	PublishTimeoutMs   int    `yaml:"publish_timeout_ms"`
	PingTimeoutSeconds int    `yaml:"ping_timeout_seconds"`
}

const (
	defaultDialTimeout    = 5 * time.Second
	defaultPublishTimeout = 500 * time.Millisecond
	defaultPingTimeout    = 3 * time.Second
)

// InitRedis creates a redis client for the feed and verifies the
// connection before handing it out. A feed that cannot reach redis at
// startup should fail loudly instead of silently dropping trades later.
func InitRedis(cfg *RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	dialTimeout := defaultDialTimeout
	if cfg.DialTimeoutSeconds > 0 {
		dialTimeout = time.Duration(cfg.DialTimeoutSeconds) * time.Second
	}
	publishTimeout := defaultPublishTimeout
	if cfg.PublishTimeoutMs > 0 {
		publishTimeout = time.Duration(cfg.PublishTimeoutMs) * time.Millisecond
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = dialTimeout
	// Publishing a trade report is small and fire-and-forget; a stuck
	// write should time out fast and surface in the feed's error log.
	opts.WriteTimeout = publishTimeout
	opts.ReadTimeout = publishTimeout

	client := redis.NewClient(opts)

	pingTimeout := defaultPingTimeout
	if cfg.PingTimeoutSeconds > 0 {
		pingTimeout = time.Duration(cfg.PingTimeoutSeconds) * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	zap.S().Debugf("connected to redis, pool_size=%d", opts.PoolSize)
	return client, nil
}

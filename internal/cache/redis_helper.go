package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/devicehub/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultCacheTTL  = 10 * time.Minute
	redisPingTimeout = 5 * time.Second
	redisIOTimeout   = 2 * time.Second
)

// connectRedis opens a client and pings it once; an unreachable server is an
// error so the caller can fall back to the noop cache.
func connectRedis(cfg config.CacheConfig) (*redis.Client, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func cacheTTL(seconds int) time.Duration {
	if seconds <= 0 {
		return defaultCacheTTL
	}
	return time.Duration(seconds) * time.Second
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:         net.JoinHostPort(host, port),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		ReadTimeout:  redisIOTimeout,
		WriteTimeout: redisIOTimeout,
	}, nil
}

// setTracked stores payload under key and records key in the index set, so
// every variant can be dropped later without a keyspace scan.
func setTracked(ctx context.Context, client *redis.Client, index, key string, payload []byte, ttl time.Duration) error {
	_, err := client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, key, payload, ttl)
		p.SAdd(ctx, index, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// deleteTracked removes every key recorded in index, then the index itself.
func deleteTracked(ctx context.Context, client *redis.Client, index string) error {
	keys, err := client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("redis smembers failed: %w", err)
	}

	keys = append(keys, index)
	if err := client.Unlink(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis unlink failed: %w", err)
	}
	return nil
}

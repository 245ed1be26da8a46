package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hostcompare/internal/app/config"
	"hostcompare/internal/app/metrics"

	"github.com/go-redis/redis/v8"
)

const (
	servicePrefix = "hostcompare."
	jwtPrefix     = "jwt."
	cachePrefix   = "cache."
)

type Client struct {
	cfg    config.RedisConfig
	client *redis.Client
}

func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	client := &Client{cfg: cfg}

	redisClient := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Username:    cfg.User,
		Password:    cfg.Password,
		DB:          0,
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
	})

	client.client = redisClient

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("cant ping redis: %w", err)
	}

	return client, nil
}

// NewWithClient оборачивает готовый клиент (используется в тестах с miniredis).
func NewWithClient(rc *redis.Client) *Client {
	return &Client{client: rc}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.client.Close()
}

func getJWTKey(token string) string {
	return servicePrefix + jwtPrefix + token
}

// WriteJWTToBlacklist помечает токен отозванным до истечения его срока.
func (c *Client) WriteJWTToBlacklist(ctx context.Context, jwtStr string, jwtTTL time.Duration) error {
	if jwtTTL <= 0 {
		return nil
	}
	return c.client.Set(ctx, getJWTKey(jwtStr), true, jwtTTL).Err()
}

// CheckJWTInBlacklist возвращает nil, если токен в blacklist, и redis.Nil, если нет.
func (c *Client) CheckJWTInBlacklist(ctx context.Context, jwtStr string) error {
	return c.client.Get(ctx, getJWTKey(jwtStr)).Err()
}

// IsBlacklisted - обёртка над CheckJWTInBlacklist, отличающая отсутствие ключа от ошибки Redis.
func (c *Client) IsBlacklisted(ctx context.Context, jwtStr string) (bool, error) {
	err := c.CheckJWTInBlacklist(ctx, jwtStr)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}

// Кэш публичных ответов

func cacheKey(key string) string {
	return servicePrefix + cachePrefix + key
}

func HostingCacheKey(slug string) string {
	return "hosting." + strings.ToLower(slug)
}

func (c *Client) CacheGet(ctx context.Context, key string, dst interface{}) (bool, error) {
	v, err := c.client.Get(ctx, cacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	metrics.ObserveCache("redis", "hit")
	return true, json.Unmarshal(v, dst)
}

func (c *Client) CacheSet(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	metrics.ObserveCache("redis", "set")
	return c.client.Set(ctx, cacheKey(key), b, ttl).Err()
}

func (c *Client) CacheDel(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = cacheKey(k)
	}
	metrics.ObserveCache("redis", "del")
	return c.client.Del(ctx, full...).Err()
}

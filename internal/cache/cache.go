// Package cache реализует кэш каталога книг в Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mmeshcher/bookheaven/internal/metrics"
)

// Ключи кэша каталога.
const (
	KeyAllBooks    = "books:all"
	KeyRecentBooks = "books:recent"
	keyBookPrefix  = "book:"
)

// KeyBook возвращает ключ кэша для отдельной книги.
func KeyBook(id string) string {
	return keyBookPrefix + id
}

// Cache хранит сериализованные значения в Redis.
// Ошибки Redis только логируются: при недоступности кэша запросы идут в хранилище.
// Методы безопасно вызывать на nil-получателе.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New подключается к Redis по адресу addr и проверяет соединение.
func New(ctx context.Context, addr string, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewWithClient(client, ttl, m, logger), nil
}

// NewWithClient создаёт кэш поверх готового клиента Redis.
func NewWithClient(client *redis.Client, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		client:  client,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
	}
}

// Get читает значение по ключу в dest и сообщает, было ли попадание.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get error", zap.String("key", key), zap.Error(err))
		}
		c.metrics.CacheMiss(metricKey(key))
		return false
	}

	if err := sonic.Unmarshal(data, dest); err != nil {
		c.logger.Warn("cache decode error", zap.String("key", key), zap.Error(err))
		c.metrics.CacheMiss(metricKey(key))
		return false
	}

	c.metrics.CacheHit(metricKey(key))
	return true
}

// Set сохраняет значение на время жизни кэша.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}

	data, err := sonic.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode error", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set error", zap.String("key", key), zap.Error(err))
	}
}

// Delete удаляет ключи из кэша.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache delete error", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Close закрывает соединение с Redis.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// metricKey схлопывает ключи отдельных книг в одну метку.
func metricKey(key string) string {
	if strings.HasPrefix(key, keyBookPrefix) {
		return keyBookPrefix + "{id}"
	}
	return key
}

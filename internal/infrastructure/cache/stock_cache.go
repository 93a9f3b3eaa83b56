package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	appledger "github.com/merchstock/backend/internal/application/ledger"
	"github.com/merchstock/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisStockCache caches stock snapshots in Redis. A miss is reported as
// (nil, nil) so callers fall through to the database read.
type RedisStockCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStockCache creates a snapshot cache backed by a new Redis client
func NewRedisStockCache(cfg *config.RedisConfig, ttl time.Duration) (*RedisStockCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStockCacheWithClient(client, ttl), nil
}

// NewRedisStockCacheWithClient creates a cache over an existing Redis client
func NewRedisStockCacheWithClient(client *redis.Client, ttl time.Duration) *RedisStockCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisStockCache{
		client:    client,
		keyPrefix: "stock:snapshot:",
		ttl:       ttl,
	}
}

// Get returns the cached snapshot for a product, or (nil, nil) on a miss
func (c *RedisStockCache) Get(ctx context.Context, productID uuid.UUID) (*appledger.StockSnapshot, error) {
	payload, err := c.client.Get(ctx, c.key(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read stock snapshot: %w", err)
	}

	var snapshot appledger.StockSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it.
		return nil, nil
	}
	return &snapshot, nil
}

// Set stores a snapshot with the configured TTL
func (c *RedisStockCache) Set(ctx context.Context, snapshot *appledger.StockSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode stock snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key(snapshot.ProductID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store stock snapshot: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot for a product
func (c *RedisStockCache) Invalidate(ctx context.Context, productID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(productID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate stock snapshot: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (c *RedisStockCache) Close() error {
	return c.client.Close()
}

func (c *RedisStockCache) key(productID uuid.UUID) string {
	return c.keyPrefix + productID.String()
}

// Ensure RedisStockCache implements SnapshotCache
var _ appledger.SnapshotCache = (*RedisStockCache)(nil)

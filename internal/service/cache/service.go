package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/atlasops/salesops-bot-go/internal/constants"
	"github.com/atlasops/salesops-bot-go/internal/util"
	"github.com/atlasops/salesops-bot-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type CacheService struct {
	client *redis.Client
	logger *zap.Logger
}

const accountHashKey = "salesops:accounts"

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return &CacheService{
		client: client,
		logger: logger,
	}, nil
}

// NewCacheServiceWithClient wraps an existing client. Used by tests running
// against miniredis.
func NewCacheServiceWithClient(client *redis.Client, logger *zap.Logger) *CacheService {
	return &CacheService{client: client, logger: logger}
}

func (c *CacheService) Get(ctx context.Context, key string, dest any) error {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // Key doesn't exist - not an error
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("get failed", "get", key, err)
	}

	if dest != nil {
		if err := json.Unmarshal([]byte(value), dest); err != nil {
			c.logger.Error("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
			return errors.NewCacheError("unmarshal failed", "get", key, err)
		}
	}

	return nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if err := c.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}

	return nil
}

func (c *CacheService) Del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("delete failed", "del", key, err)
	}
	return nil
}

func (c *CacheService) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
		return err
	}
	c.logger.Info("Redis disconnected")
	return nil
}

func (c *CacheService) IsConnected(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}

func (c *CacheService) WaitUntilReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for Redis to be ready")
		case <-ticker.C:
			if c.IsConnected(ctx) {
				return nil
			}
		}
	}
}

// InitializeAccountIndex replaces the shared account index mirror. The mirror
// lets sibling bot instances resolve accounts without their own DB round trip.
func (c *CacheService) InitializeAccountIndex(ctx context.Context, accounts map[string]string) error {
	if err := c.client.Del(ctx, accountHashKey).Err(); err != nil {
		c.logger.Error("Failed to clear account index", zap.Error(err))
		return errors.NewCacheError("del failed", "del", accountHashKey, err)
	}

	if len(accounts) == 0 {
		c.logger.Info("Account index cleared (no accounts provided)")
		return nil
	}

	values := make([]any, 0, len(accounts)*2)
	for name, id := range accounts {
		values = append(values, name, id)
	}

	if err := c.client.HSet(ctx, accountHashKey, values...).Err(); err != nil {
		c.logger.Error("Failed to initialize account index", zap.Error(err))
		return errors.NewCacheError("hset failed", "hset", accountHashKey, err)
	}

	// The mirror expires so siblings never serve an index the sync job
	// stopped refreshing.
	if err := c.client.Expire(ctx, accountHashKey, constants.CacheTTL.AccountIndex).Err(); err != nil {
		c.logger.Error("Failed to set account index TTL", zap.Error(err))
		return errors.NewCacheError("expire failed", "expire", accountHashKey, err)
	}

	c.logger.Info("Account index initialized",
		zap.Int("accounts", len(accounts)),
	)
	return nil
}

// GetAccountID resolves an account name to its CRM id via the shared mirror.
// Hash fields are display names; a miss on the exact field falls back to a
// punctuation-insensitive scan so "G.E." still finds "GE".
func (c *CacheService) GetAccountID(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}

	value, err := c.client.HGet(ctx, accountHashKey, name).Result()
	if err == nil {
		return value, nil
	}
	if err != redis.Nil {
		c.logger.Error("Failed to get account ID", zap.String("account", name), zap.Error(err))
		return "", errors.NewCacheError("hget failed", "hget", accountHashKey, err)
	}

	want := util.NormalizeKey(name)
	if want == "" {
		return "", nil
	}
	index, err := c.GetAccountIndex(ctx)
	if err != nil {
		return "", err
	}
	for field, id := range index {
		if util.NormalizeKey(field) == want {
			return id, nil
		}
	}
	return "", nil
}

func (c *CacheService) GetAccountIndex(ctx context.Context) (map[string]string, error) {
	values, err := c.client.HGetAll(ctx, accountHashKey).Result()
	if err != nil {
		c.logger.Error("Failed to get account index", zap.Error(err))
		return map[string]string{}, errors.NewCacheError("hgetall failed", "hgetall", accountHashKey, err)
	}
	return values, nil
}

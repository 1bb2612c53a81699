package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trogers1052/alert-relevance-service/internal/config"
	"github.com/trogers1052/alert-relevance-service/internal/models"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Client wraps the Redis client with per-user cache operations
type Client struct {
	rdb *redis.Client
}

// New creates a new Redis client
func New(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks if Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func portfolioKey(userID string) string {
	return fmt.Sprintf("user:%s:portfolio_context", userID)
}

func preferencesKey(userID string) string {
	return fmt.Sprintf("user:%s:preferences", userID)
}

// Portfolio context caching

// SetPortfolioContext caches a user's portfolio context with TTL
func (c *Client) SetPortfolioContext(ctx context.Context, userID string, pc models.PortfolioContext, ttl time.Duration) error {
	return c.setJSON(ctx, portfolioKey(userID), pc, ttl)
}

// GetPortfolioContext retrieves a cached portfolio context
func (c *Client) GetPortfolioContext(ctx context.Context, userID string) (*models.PortfolioContext, error) {
	var pc models.PortfolioContext
	if err := c.getJSON(ctx, portfolioKey(userID), &pc); err != nil {
		return nil, err
	}
	return &pc, nil
}

// DeletePortfolioContext drops a user's cached portfolio context
func (c *Client) DeletePortfolioContext(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, portfolioKey(userID)).Err()
}

// Preferences caching

// SetPreferences caches a user's preferences with TTL
func (c *Client) SetPreferences(ctx context.Context, userID string, prefs models.Preferences, ttl time.Duration) error {
	return c.setJSON(ctx, preferencesKey(userID), prefs, ttl)
}

// GetPreferences retrieves cached preferences
func (c *Client) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	var prefs models.Preferences
	if err := c.getJSON(ctx, preferencesKey(userID), &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// DeletePreferences drops a user's cached preferences
func (c *Client) DeletePreferences(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, preferencesKey(userID)).Err()
}

func (c *Client) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, jsonData, ttl).Err()
}

func (c *Client) getJSON(ctx context.Context, key string, dest any) error {
	jsonData, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(jsonData, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

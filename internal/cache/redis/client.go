package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/contentpulse/backend/internal/storage/models"
	"github.com/contentpulse/backend/pkg/logger"
)

// Client is a best-effort cache in front of the scoring pipeline. Callers
// treat every error here as a miss; the store stays the source of truth.
type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// SetContentScore caches a scored page keyed by URL hash.
func (c *Client) SetContentScore(ctx context.Context, urlHash string, score *models.ContentScore, ttl time.Duration) error {
	data, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("failed to marshal content score: %w", err)
	}

	err = c.client.Set(ctx, fmt.Sprintf("score:%s", urlHash), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set score cache: %w", err)
	}

	logger.Debug("Content score cached", zap.String("url_hash", urlHash), zap.Duration("ttl", ttl))
	return nil
}

// GetContentScore returns the cached score for a URL hash, or false on miss.
func (c *Client) GetContentScore(ctx context.Context, urlHash string) (*models.ContentScore, bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf("score:%s", urlHash)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get score cache: %w", err)
	}

	var score models.ContentScore
	err = json.Unmarshal(data, &score)
	if err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal content score: %w", err)
	}

	logger.Debug("Content score cache hit", zap.String("url_hash", urlHash))
	return &score, true, nil
}

// SetSERPSnapshot caches the latest ranked results for a query hash so
// repeated difficulty analyses within the TTL skip the search provider.
func (c *Client) SetSERPSnapshot(ctx context.Context, queryHash string, results []models.SERPResult, ttl time.Duration) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal serp snapshot: %w", err)
	}

	err = c.client.Set(ctx, fmt.Sprintf("serp:%s", queryHash), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set serp cache: %w", err)
	}

	logger.Debug("SERP snapshot cached", zap.String("query_hash", queryHash))
	return nil
}

// GetSERPSnapshot returns the cached ranked results for a query hash.
func (c *Client) GetSERPSnapshot(ctx context.Context, queryHash string) ([]models.SERPResult, bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf("serp:%s", queryHash)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get serp cache: %w", err)
	}

	var results []models.SERPResult
	err = json.Unmarshal(data, &results)
	if err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal serp snapshot: %w", err)
	}

	logger.Debug("SERP snapshot cache hit", zap.String("query_hash", queryHash))
	return results, true, nil
}

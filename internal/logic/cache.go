package logic

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fixturecast/predictor-api/internal/models"
)

// DefaultCacheTTL bounds how long a served prediction is reused.
const DefaultCacheTTL = 10 * time.Minute

// RedisPredictionCache keeps JSON encoded results in Redis. Errors are
// logged and treated as misses so the cache never fails a request.
type RedisPredictionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewRedisPredictionCache(client *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *RedisPredictionCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &RedisPredictionCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisPredictionCache) Get(ctx context.Context, key string) (*models.PredictionResult, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debugw("Prediction cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var res models.PredictionResult
	if err := json.Unmarshal(data, &res); err != nil {
		c.logger.Debugw("Prediction cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return &res, true
}

func (c *RedisPredictionCache) Set(ctx context.Context, key string, result *models.PredictionResult) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Debugw("Prediction cache write failed", "key", key, "error", err)
	}
}

package recommend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/martin-coser/ArqViewBack-sub000/internal/common/logger"
	"github.com/martin-coser/ArqViewBack-sub000/internal/engine"
	"github.com/martin-coser/ArqViewBack-sub000/internal/models"
)

const weightsKeyPrefix = "weights:"

type cachedWeights struct {
	Weights engine.Weights `json:"weights"`
	Ranges  engine.Ranges  `json:"ranges"`
}

// RedisWeightsCache memoizes computed weight vectors in Redis. Entries are
// keyed by a digest of the reference set's scored features, so two clients
// with identical interest lists share one entry and any list change misses.
type RedisWeightsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewRedisWeightsCache(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisWeightsCache {
	return &RedisWeightsCache{client: client, ttl: ttl, logger: log}
}

func (c *RedisWeightsCache) Get(ctx context.Context, key string) (engine.Weights, engine.Ranges, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("weights cache read failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		return engine.Weights{}, engine.Ranges{}, false
	}

	var cached cachedWeights
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		c.logger.Warn("weights cache entry corrupt", map[string]interface{}{"key": key})
		return engine.Weights{}, engine.Ranges{}, false
	}
	return cached.Weights, cached.Ranges, true
}

func (c *RedisWeightsCache) Set(ctx context.Context, key string, w engine.Weights, r engine.Ranges) {
	data, err := json.Marshal(cachedWeights{Weights: w, Ranges: r})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("weights cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// WeightsCacheKey digests the features of a reference set in list order.
// The key depends only on list contents, never on who owns the list.
func WeightsCacheKey(refs []models.Property) string {
	var sb strings.Builder
	for _, p := range refs {
		fmt.Fprintf(&sb, "%d:%g:%g:%d:%d:%d:%d;",
			p.ID, p.Price, p.Surface, p.Bathrooms, p.Bedrooms, p.Rooms, p.Type.ID)
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return weightsKeyPrefix + hex.EncodeToString(sum[:])
}

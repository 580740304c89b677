package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martin-coser/ArqViewBack-sub000/internal/common/logger"
	"github.com/martin-coser/ArqViewBack-sub000/internal/engine"
	"github.com/martin-coser/ArqViewBack-sub000/internal/models"
)

func setupCache(t *testing.T, ttl time.Duration) (*RedisWeightsCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisWeightsCache(client, ttl, logger.NewNoOpLogger()), mr
}

func TestRedisWeightsCache_RoundTrip(t *testing.T) {
	cache, _ := setupCache(t, time.Minute)
	ctx := context.Background()

	refs := referenceSet()
	w, r := engine.ComputeWeights(refs)
	key := WeightsCacheKey(refs)

	_, _, ok := cache.Get(ctx, key)
	assert.False(t, ok)

	cache.Set(ctx, key, w, r)

	gotW, gotR, ok := cache.Get(ctx, key)
	require.True(t, ok)
	assert.InDelta(t, w.Price, gotW.Price, 1e-12)
	assert.InDelta(t, w.PropertyType, gotW.PropertyType, 1e-12)
	assert.Equal(t, r, gotR)
}

func TestRedisWeightsCache_Expiry(t *testing.T) {
	cache, mr := setupCache(t, time.Second)
	ctx := context.Background()

	refs := referenceSet()
	w, r := engine.ComputeWeights(refs)
	key := WeightsCacheKey(refs)
	cache.Set(ctx, key, w, r)

	mr.FastForward(2 * time.Second)

	_, _, ok := cache.Get(ctx, key)
	assert.False(t, ok)
}

func TestWeightsCacheKey_DependsOnContentsOnly(t *testing.T) {
	listA := referenceSet()
	listB := referenceSet()
	assert.Equal(t, WeightsCacheKey(listA), WeightsCacheKey(listB))

	// Any change to a scored feature produces a different key.
	changed := referenceSet()
	changed[1].Price += 1000
	assert.NotEqual(t, WeightsCacheKey(listA), WeightsCacheKey(changed))

	// Order matters: the reference set is an ordered list.
	reversed := []models.Property{listA[1], listA[0]}
	assert.NotEqual(t, WeightsCacheKey(listA), WeightsCacheKey(reversed))
}

func TestService_UsesCachedWeights(t *testing.T) {
	cache, _ := setupCache(t, time.Minute)
	refs := referenceSet()
	store := &fakeStore{
		clients:  []models.Client{ana()},
		interest: map[int64][]models.Property{7: refs},
		catalog:  append(refs, casa(10, "Casa diez", 155000, 105)),
	}
	svc := NewService(testConfig(), store, cache, nil, nil, logger.NewNoOpLogger(), nil)

	first, err := svc.GenerateRecommendations(context.Background(), 7)
	require.NoError(t, err)

	// Second run hits the cached weight vector and returns the same list.
	_, _, ok := cache.Get(context.Background(), WeightsCacheKey(refs))
	require.True(t, ok)

	second, err := svc.GenerateRecommendations(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

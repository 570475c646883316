package ml

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedPredictor memoizes predictions per record. Pipelines are deterministic and
// immutable, so a hit is the value a fresh prediction would return.
type CachedPredictor struct {
	next  Predictor
	cache *lru.Cache[HousingRecord, float64]
}

// NewCachedPredictor wraps next with an LRU of the given size. size <= 0 disables
// caching.
func NewCachedPredictor(next Predictor, size int) (*CachedPredictor, error) {
	if size <= 0 {
		return &CachedPredictor{next: next}, nil
	}
	cache, err := lru.New[HousingRecord, float64](size)
	if err != nil {
		return nil, err
	}
	return &CachedPredictor{next: next, cache: cache}, nil
}

func (c *CachedPredictor) Predict(ctx context.Context, record HousingRecord) (float64, error) {
	if c.cache == nil {
		return c.next.Predict(ctx, record)
	}
	if prediction, ok := c.cache.Get(record); ok {
		return prediction, nil
	}
	prediction, err := c.next.Predict(ctx, record)
	if err != nil {
		return 0, err
	}
	c.cache.Add(record, prediction)
	return prediction, nil
}

func (c *CachedPredictor) Len() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}

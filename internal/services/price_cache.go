package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pricegov/internal/models"
)

// PriceCache keeps farmer price answers for a short time. Failures are
// logged and treated as misses, so an unavailable cache only costs a query.
type PriceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPriceCache(rdb *redis.Client, ttl time.Duration) *PriceCache {
	return &PriceCache{rdb: rdb, ttl: ttl}
}

func farmerPriceKey(skuID, districtID int64) string {
	return fmt.Sprintf("farmer_prices_%d_%d", skuID, districtID)
}

func (c *PriceCache) Get(ctx context.Context, skuID, districtID int64) (models.FarmerPriceView, bool) {
	if c == nil || c.rdb == nil {
		return models.FarmerPriceView{}, false
	}
	raw, err := c.rdb.Get(ctx, farmerPriceKey(skuID, districtID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.L().Warn("price cache get failed", zap.Error(err))
		}
		return models.FarmerPriceView{}, false
	}
	var view models.FarmerPriceView
	if err := json.Unmarshal(raw, &view); err != nil {
		zap.L().Warn("price cache entry unreadable", zap.Error(err))
		return models.FarmerPriceView{}, false
	}
	return view, true
}

func (c *PriceCache) Set(ctx context.Context, skuID, districtID int64, view models.FarmerPriceView) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, farmerPriceKey(skuID, districtID), raw, c.ttl).Err(); err != nil {
		zap.L().Warn("price cache set failed", zap.Error(err))
	}
}

// Invalidate drops one (sku, district) entry.
func (c *PriceCache) Invalidate(ctx context.Context, skuID, districtID int64) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, farmerPriceKey(skuID, districtID)).Err(); err != nil {
		zap.L().Warn("price cache invalidate failed", zap.Error(err))
	}
}

// InvalidateSKU drops the entries of every district for the sku; global
// reference prices reach all of them.
func (c *PriceCache) InvalidateSKU(ctx context.Context, skuID int64) {
	if c == nil || c.rdb == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, fmt.Sprintf("farmer_prices_%d_*", skuID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		zap.L().Warn("price cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		zap.L().Warn("price cache invalidate failed", zap.Error(err))
	}
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hasanRafi2002/asgn-12-server/internal/models"
	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

// IListingCache is a read-through cache of listings keyed by their external propertyId.
type IListingCache interface {
	Get(ctx context.Context, propertyID string) (*models.Property, error)
	Set(ctx context.Context, property *models.Property) error
	Invalidate(ctx context.Context, propertyIDs ...string) error
}

// ErrCacheMiss is returned by Get when the listing is not cached.
var ErrCacheMiss = errors.New("cache miss")

type listingCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewListingCache creates a listing cache. A non-positive ttl disables caching.
func NewListingCache(rdb redis.Cmdable, ttl time.Duration) IListingCache {
	return &listingCache{rdb: rdb, ttl: ttl}
}

func listingKey(propertyID string) string {
	return fmt.Sprintf("property:%s", propertyID)
}

func (c *listingCache) Get(ctx context.Context, propertyID string) (*models.Property, error) {
	if c.ttl <= 0 {
		return nil, ErrCacheMiss
	}
	raw, err := c.rdb.Get(ctx, listingKey(propertyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		utils.ListingCacheRequestsTotal.WithLabelValues("miss").Inc()
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached listing %s: %w", propertyID, err)
	}

	var property models.Property
	if err := json.Unmarshal(raw, &property); err != nil {
		// Drop an undecodable entry so the next read repopulates it.
		_ = c.rdb.Del(ctx, listingKey(propertyID)).Err()
		return nil, ErrCacheMiss
	}
	utils.ListingCacheRequestsTotal.WithLabelValues("hit").Inc()
	return &property, nil
}

func (c *listingCache) Set(ctx context.Context, property *models.Property) error {
	if c.ttl <= 0 || property == nil {
		return nil
	}
	raw, err := json.Marshal(property)
	if err != nil {
		return fmt.Errorf("failed to encode listing %s: %w", property.PropertyID, err)
	}
	return c.rdb.Set(ctx, listingKey(property.PropertyID), raw, c.ttl).Err()
}

func (c *listingCache) Invalidate(ctx context.Context, propertyIDs ...string) error {
	keys := make([]string, 0, len(propertyIDs))
	for _, id := range propertyIDs {
		if id != "" {
			keys = append(keys, listingKey(id))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

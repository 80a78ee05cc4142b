package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// Default TTLs for published picks
const (
	DefaultPicksTTL      = 5 * time.Minute
	DefaultEmptyPicksTTL = 1 * time.Minute
)

const (
	picksPrefix = "picks:published:"
	anyScope    = "all"
)

// PicksKey builds the cache key for a filter combination
// picks:published:<sport|all>:<bet_type|all>:<hierarchy|all>
func PicksKey(f models.PickFilters) string {
	return fmt.Sprintf("%s%s:%s:%s", picksPrefix,
		scope(string(f.Sport)), scope(string(f.BetType)), scope(string(f.Hierarchy)))
}

func scope(v string) string {
	if v == "" {
		return anyScope
	}
	return v
}

// PicksCache is the read-side cache of published picks. It is never the
// source of truth: a miss or error always means "ask the store".
type PicksCache struct {
	store    Store
	ttl      time.Duration
	emptyTTL time.Duration
}

// NewPicksCache creates a picks cache. Non-positive TTLs use the defaults.
func NewPicksCache(store Store, ttl, emptyTTL time.Duration) *PicksCache {
	if ttl <= 0 {
		ttl = DefaultPicksTTL
	}
	if emptyTTL <= 0 {
		emptyTTL = DefaultEmptyPicksTTL
	}
	return &PicksCache{store: store, ttl: ttl, emptyTTL: emptyTTL}
}

// TTLFor returns how long a result of n picks may be served from cache
func (c *PicksCache) TTLFor(n int) time.Duration {
	if n == 0 {
		return c.emptyTTL
	}
	return c.ttl
}

// Get returns the cached picks for f
func (c *PicksCache) Get(ctx context.Context, f models.PickFilters) ([]models.PublishedPick, bool, error) {
	data, found, err := c.store.Get(ctx, PicksKey(f))
	if err != nil || !found {
		return nil, false, err
	}

	var picks []models.PublishedPick
	if err := json.Unmarshal(data, &picks); err != nil {
		return nil, false, fmt.Errorf("decoding cached picks: %w", err)
	}
	if picks == nil {
		picks = []models.PublishedPick{}
	}

	return picks, true, nil
}

// Set caches picks for f with the TTL their count calls for
func (c *PicksCache) Set(ctx context.Context, f models.PickFilters, picks []models.PublishedPick) error {
	if picks == nil {
		picks = []models.PublishedPick{}
	}

	data, err := json.Marshal(picks)
	if err != nil {
		return fmt.Errorf("encoding picks: %w", err)
	}

	return c.store.Set(ctx, PicksKey(f), data, c.TTLFor(len(picks)))
}

// InvalidateSport drops every cached view that can contain sport's picks:
// the sport's own keys and the cross-sport "all" keys
func (c *PicksCache) InvalidateSport(ctx context.Context, sport models.Sport) (int, error) {
	total := 0
	for _, prefix := range []string{
		picksPrefix + string(sport) + ":",
		picksPrefix + anyScope + ":",
	} {
		n, err := c.store.DeletePrefix(ctx, prefix)
		total += n
		if err != nil {
			return total, fmt.Errorf("invalidating %s picks: %w", sport, err)
		}
	}
	return total, nil
}

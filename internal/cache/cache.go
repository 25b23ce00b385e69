package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mr1hm/go-migrant-health/internal/models"
	"github.com/mr1hm/go-migrant-health/internal/source"
)

// Cache memoizes the location and migrant collections of a Source for
// the lifetime of the service. Snapshots expire after ttl (never when
// ttl is 0) and are dropped by Refresh. Failed fetches are not cached.
// Phone lookups always go to the source.
type Cache struct {
	src   source.Source
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	flightTimeout time.Duration

	mu        sync.RWMutex
	locations *entry[[]models.Location]
	migrants  *entry[[]models.Migrant]
	hits      int64
	misses    int64
}

const defaultFlightTimeout = 30 * time.Second

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

type Stats struct {
	Hits        int64      `json:"hits"`
	Misses      int64      `json:"misses"`
	LocationsAt *time.Time `json:"locations_fetched_at,omitempty"`
	MigrantsAt  *time.Time `json:"migrants_fetched_at,omitempty"`
	TTL         string     `json:"ttl"`
}

func New(src source.Source, ttl time.Duration) *Cache {
	return &Cache{
		src: src,
		ttl: ttl,
		now: time.Now,

		flightTimeout: defaultFlightTimeout,
	}
}

func (c *Cache) Locations(ctx context.Context) ([]models.Location, error) {
	return load(ctx, c, "locations", &c.locations, c.src.Locations)
}

func (c *Cache) Migrants(ctx context.Context) ([]models.Migrant, error) {
	return load(ctx, c, "migrants", &c.migrants, c.src.Migrants)
}

func (c *Cache) MigrantByPhone(ctx context.Context, phone string) (*models.Migrant, error) {
	return c.src.MigrantByPhone(ctx, phone)
}

// Refresh drops both snapshots; the next read goes to the source.
func (c *Cache) Refresh() {
	c.mu.Lock()
	c.locations = nil
	c.migrants = nil
	c.mu.Unlock()
	slog.Info("cache refreshed")
}

func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{Hits: c.hits, Misses: c.misses, TTL: c.ttl.String()}
	if c.locations != nil {
		at := c.locations.fetchedAt
		s.LocationsAt = &at
	}
	if c.migrants != nil {
		at := c.migrants.fetchedAt
		s.MigrantsAt = &at
	}
	return s
}

func (c *Cache) fresh(fetchedAt time.Time) bool {
	return c.ttl == 0 || c.now().Sub(fetchedAt) < c.ttl
}

func load[T any](ctx context.Context, c *Cache, key string, slot **entry[T], fetch func(context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	if e := *slot; e != nil && c.fresh(e.fetchedAt) {
		c.hits++
		c.mu.Unlock()
		return e.value, nil
	}
	c.misses++
	c.mu.Unlock()

	ch := c.group.DoChan(key, func() (any, error) {
		// a flight that finished between the check above and DoChan
		c.mu.RLock()
		if e := *slot; e != nil && c.fresh(e.fetchedAt) {
			c.mu.RUnlock()
			return e.value, nil
		}
		c.mu.RUnlock()

		// waiters share the flight; it ignores the starting caller's cancellation
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.flightTimeout)
		defer cancel()

		value, err := fetch(fctx)
		if err != nil {
			return value, err
		}
		c.mu.Lock()
		*slot = &entry[T]{value: value, fetchedAt: c.now()}
		c.mu.Unlock()
		return value, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res = <-ch:
	}
	if res.Shared {
		slog.Debug("coalesced upstream fetch", "collection", key)
	}
	if res.Err != nil {
		var zero T
		return zero, res.Err
	}
	return res.Val.(T), nil
}

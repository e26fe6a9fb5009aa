// Package refdata caches the states and cities reference lists. Concurrent
// requests for the same list collapse into a single loader call and the
// result is kept for the lifetime of the Cache.
package refdata

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/formresume/internal/metrics"
	"github.com/atinyakov/formresume/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const statesKey = "refdata:states"

// loadTimeout bounds a shared load, which outlives the caller that
// started it.
const loadTimeout = 30 * time.Second

func citiesKey(state string) string {
	return "refdata:cities:" + strings.ToUpper(strings.TrimSpace(state))
}

// Loader fetches reference lists from their source of truth.
type Loader interface {
	States(ctx context.Context) ([]models.State, error)
	Cities(ctx context.Context, state string) ([]models.City, error)
}

// Store is an optional shared tier consulted before the Loader.
type Store interface {
	// Get decodes the value stored at key into dst. It reports false when
	// the key is absent.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Cache holds reference lists in memory.
type Cache struct {
	loader Loader
	store  Store
	log    *zap.Logger

	group singleflight.Group

	mu     sync.RWMutex
	states []models.State
	cities map[string][]models.City
}

// NewCache returns an empty Cache. store may be nil.
func NewCache(loader Loader, store Store, log *zap.Logger) *Cache {
	return &Cache{
		loader: loader,
		store:  store,
		log:    log,
		cities: make(map[string][]models.City),
	}
}

// States returns the states list, loading it at most once at a time.
// Failed loads are not cached.
func (c *Cache) States(ctx context.Context) ([]models.State, error) {
	if s, ok := c.cachedStates(); ok {
		return s, nil
	}

	v, err := c.shared(ctx, statesKey, func(ctx context.Context) (any, error) {
		if s, ok := c.cachedStates(); ok {
			return s, nil
		}

		var s []models.State
		if c.fromStore(ctx, statesKey, &s) {
			c.setStates(s)
			return s, nil
		}

		metrics.RefDataLoadsTotal.WithLabelValues("states").Inc()
		s, err := c.loader.States(ctx)
		if err != nil {
			return nil, err
		}
		if s == nil {
			s = []models.State{}
		}
		c.setStates(s)
		c.toStore(ctx, statesKey, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.State), nil
}

// Cities returns the cities of state, collapsing concurrent requests for
// the same state.
func (c *Cache) Cities(ctx context.Context, state string) ([]models.City, error) {
	key := citiesKey(state)
	if cs, ok := c.cachedCities(key); ok {
		return cs, nil
	}

	v, err := c.shared(ctx, key, func(ctx context.Context) (any, error) {
		if cs, ok := c.cachedCities(key); ok {
			return cs, nil
		}

		var cs []models.City
		if c.fromStore(ctx, key, &cs) {
			c.setCities(key, cs)
			return cs, nil
		}

		metrics.RefDataLoadsTotal.WithLabelValues("cities").Inc()
		cs, err := c.loader.Cities(ctx, state)
		if err != nil {
			return nil, err
		}
		if cs == nil {
			cs = []models.City{}
		}
		c.setCities(key, cs)
		c.toStore(ctx, key, cs)
		return cs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.City), nil
}

// shared runs load once per key at a time. The load is detached from the
// cancellation of whichever caller started it; each caller still stops
// waiting when its own ctx is done.
func (c *Cache) shared(ctx context.Context, key string, load func(context.Context) (any, error)) (any, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return load(loadCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// Reset drops every in-memory entry. The shared store is left untouched.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states = nil
	c.cities = make(map[string][]models.City)
}

func (c *Cache) cachedStates() ([]models.State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.states, c.states != nil
}

func (c *Cache) setStates(s []models.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states = s
}

func (c *Cache) cachedCities(key string) ([]models.City, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cs, ok := c.cities[key]
	return cs, ok
}

func (c *Cache) setCities(key string, cs []models.City) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cities[key] = cs
}

func (c *Cache) fromStore(ctx context.Context, key string, dst any) bool {
	if c.store == nil {
		return false
	}
	found, err := c.store.Get(ctx, key, dst)
	if err != nil {
		c.log.Warn("refdata store get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

func (c *Cache) toStore(ctx context.Context, key string, value any) {
	if c.store == nil {
		return
	}
	if err := c.store.Set(ctx, key, value); err != nil {
		c.log.Warn("refdata store set failed", zap.String("key", key), zap.Error(err))
	}
}

package rental

import (
	"context"
	"sync"
)

// =============================================================================
// CACHE - Read-through list cache with explicit invalidation
// =============================================================================

// Cache memoizes the list queries of a Store. Entries live until a writer
// calls Invalidate for their entity type; nothing expires on its own.
//
// Callers own the invalidation: every successful write through the Store
// must be followed by Invalidate for each entity type it touched.
type Cache struct {
	store Store

	mu      sync.RWMutex
	entries map[EntityType]any
	gen     map[EntityType]uint64 // bumped on invalidation
}

func NewCache(store Store) *Cache {
	return &Cache{
		store:   store,
		entries: make(map[EntityType]any),
		gen:     make(map[EntityType]uint64),
	}
}

func (c *Cache) Properties(ctx context.Context) ([]Property, error) {
	return cached(ctx, c, EntityProperties, c.store.ListProperties)
}

func (c *Cache) Units(ctx context.Context) ([]Unit, error) {
	return cached(ctx, c, EntityUnits, c.store.ListUnits)
}

func (c *Cache) Tenants(ctx context.Context) ([]Tenant, error) {
	return cached(ctx, c, EntityTenants, c.store.ListTenants)
}

func (c *Cache) Payments(ctx context.Context) ([]Payment, error) {
	return cached(ctx, c, EntityPayments, c.store.ListPayments)
}

func (c *Cache) Reminders(ctx context.Context) ([]Reminder, error) {
	return cached(ctx, c, EntityReminders, c.store.ListReminders)
}

// Invalidate drops the cached lists for the given entity types.
func (c *Cache) Invalidate(types ...EntityType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range types {
		delete(c.entries, t)
		c.gen[t]++
	}
}

// InvalidateAll drops every cached list.
func (c *Cache) InvalidateAll() {
	c.Invalidate(EntityProperties, EntityUnits, EntityTenants, EntityPayments, EntityReminders)
}

// Cached reports whether a list for the entity type is currently held.
func (c *Cache) Cached(t EntityType) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[t]
	return ok
}

func cached[T any](ctx context.Context, c *Cache, kind EntityType, load func(context.Context) ([]T, error)) ([]T, error) {
	c.mu.RLock()
	v, ok := c.entries[kind]
	gen := c.gen[kind]
	c.mu.RUnlock()
	if ok {
		return clone(v.([]T)), nil
	}

	items, err := load(ctx)
	if err != nil {
		return nil, err
	}

	// A write that landed while loading invalidates what we just read.
	c.mu.Lock()
	if c.gen[kind] == gen {
		c.entries[kind] = items
	}
	c.mu.Unlock()
	return clone(items), nil
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

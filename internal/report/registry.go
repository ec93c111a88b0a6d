package report

import (
	"context"
	"sync"
	"time"
)

const defaultMemoryEntries = 1000

// MemoryRegistry keeps the most recent reports in process, dropping the
// oldest once maxEntries is reached.
type MemoryRegistry struct {
	mu         sync.Mutex
	maxEntries int
	byID       map[string]Report
	order      []string
}

func NewMemoryRegistry(maxEntries int) *MemoryRegistry {
	if maxEntries <= 0 {
		maxEntries = defaultMemoryEntries
	}
	return &MemoryRegistry{maxEntries: maxEntries, byID: make(map[string]Report)}
}

func (m *MemoryRegistry) Save(_ context.Context, rep Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[rep.ID]; !ok {
		m.order = append(m.order, rep.ID)
	}
	m.byID[rep.ID] = rep
	for len(m.order) > m.maxEntries {
		delete(m.byID, m.order[0])
		m.order = m.order[1:]
	}
	return nil
}

func (m *MemoryRegistry) Get(_ context.Context, id string) (*Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rep, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rep, nil
}

type cacheEntry struct {
	report    Report
	expiresAt time.Time
}

// CachedRegistry fronts a slower registry with a short-lived lookup cache.
// Reports are immutable, so entries never need invalidation.
type CachedRegistry struct {
	next       Registry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewCachedRegistry(next Registry, ttl time.Duration, maxEntries int) *CachedRegistry {
	if maxEntries <= 0 {
		maxEntries = 500
	}
	return &CachedRegistry{
		next:       next,
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		entries:    make(map[string]cacheEntry),
	}
}

func (c *CachedRegistry) Save(ctx context.Context, rep Report) error {
	if err := c.next.Save(ctx, rep); err != nil {
		return err
	}
	c.set(rep)
	return nil
}

func (c *CachedRegistry) Get(ctx context.Context, id string) (*Report, error) {
	if rep, ok := c.get(id); ok {
		return rep, nil
	}
	rep, err := c.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(*rep)
	return rep, nil
}

func (c *CachedRegistry) get(id string) (*Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, id)
		return nil, false
	}
	rep := entry.report
	return &rep, true
}

func (c *CachedRegistry) set(rep Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[rep.ID] = cacheEntry{report: rep, expiresAt: c.now().Add(c.ttl)}
	if len(c.entries) > c.maxEntries {
		c.entries = map[string]cacheEntry{rep.ID: c.entries[rep.ID]}
	}
}

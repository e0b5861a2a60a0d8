package viewcache

import (
	"context"
	"sync"
	"time"

	"github.com/smallbiznis/dashboard/internal/cache"
	"github.com/smallbiznis/dashboard/internal/clock"
)

const memoryMaxEntries = 1024

type memoryEntry struct {
	generation int64
	value      []byte
}

// Memory is a process-local Cache. Each route has a generation counter;
// entries written under an older generation are misses.
type Memory struct {
	mu          sync.Mutex
	generations map[string]int64
	entries     cache.Cache[string, memoryEntry]
	ttl         time.Duration
}

func NewMemory(ttl time.Duration, clk clock.Clock) *Memory {
	return &Memory{
		generations: make(map[string]int64),
		entries: cache.NewTTLCache[string, memoryEntry](
			cache.WithNow(clk.Now),
			cache.WithMaxSize(memoryMaxEntries),
		),
		ttl: ttl,
	}
}

func (m *Memory) Get(_ context.Context, route, key string) ([]byte, int64, bool) {
	current := m.generation(route)
	entry, ok := m.entries.Get(route + "|" + key)
	if !ok || entry.generation != current {
		return nil, current, false
	}
	return entry.value, current, true
}

// Set drops values computed under a generation that has since been
// revalidated.
func (m *Memory) Set(_ context.Context, route, key string, generation int64, value []byte) {
	if generation < 0 || generation != m.generation(route) {
		return
	}
	m.entries.Set(route+"|"+key, memoryEntry{generation: generation, value: value}, m.ttl)
}

func (m *Memory) Revalidate(_ context.Context, route string) error {
	m.mu.Lock()
	m.generations[route]++
	m.mu.Unlock()
	return nil
}

func (m *Memory) generation(route string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generations[route]
}

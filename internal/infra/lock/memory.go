package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryGuard блокировки в памяти процесса (один инстанс сервиса, тесты)
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]memoryLease
	ttl  time.Duration
	now  func() time.Time
	seq  uint64
}

type memoryLease struct {
	id      uint64
	expires time.Time
}

// NewMemoryGuard создает guard в памяти
func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{held: make(map[string]memoryLease), ttl: ttl, now: time.Now}
}

// TryLock пытается захватить key без ожидания
func (g *MemoryGuard) TryLock(_ context.Context, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if lease, ok := g.held[key]; ok && now.Before(lease.expires) {
		return nil, ErrLocked
	}

	g.seq++
	id := g.seq
	g.held[key] = memoryLease{id: id, expires: now.Add(g.ttl)}

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if lease, ok := g.held[key]; ok && lease.id == id {
			delete(g.held, key)
		}
	}, nil
}

package library

import "sync"

// generations counts writes per owner. A list read from the database is only
// cached if no write to that owner completed while it was being read, so a
// slow read cannot put back a list that a concurrent write just invalidated.
type generations struct {
	mu   sync.Mutex
	gens map[string]uint64
}

func newGenerations() *generations {
	return &generations{gens: make(map[string]uint64)}
}

func (g *generations) current(ownerID string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gens[ownerID]
}

// bump must run after the write is durable and before the cache is invalidated.
func (g *generations) bump(ownerID string) {
	g.mu.Lock()
	g.gens[ownerID]++
	g.mu.Unlock()
}

// fillIf runs fill while holding the lock, and only when ownerID is still at gen.
func (g *generations) fillIf(ownerID string, gen uint64, fill func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.gens[ownerID] != gen {
		return false
	}

	fill()
	return true
}

package models

import (
	"sort"
	"sync"
)

// SequentialIDGenerator hands out increasing ids starting at 1. Released ids
// are handed out again, lowest first, before new ones.
type SequentialIDGenerator struct {
	mutex    sync.Mutex
	last     uint32
	released []uint32
}

func (g *SequentialIDGenerator) New() uint32 {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if len(g.released) != 0 {
		id := g.released[0]
		g.released = g.released[1:]
		return id
	}

	g.last++
	return g.last
}

// Reuse releases an id previously returned by New. Ids that were never handed
// out or that are already released are ignored.
func (g *SequentialIDGenerator) Reuse(id uint32) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if id == 0 || id > g.last {
		return
	}

	i := sort.Search(len(g.released), func(i int) bool {
		return g.released[i] >= id
	})
	if i < len(g.released) && g.released[i] == id {
		return
	}

	g.released = append(g.released, 0)
	copy(g.released[i+1:], g.released[i:])
	g.released[i] = id
}

// Len returns the number of ids currently handed out.
func (g *SequentialIDGenerator) Len() int {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	return int(g.last) - len(g.released)
}

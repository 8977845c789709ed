package agent

import "overseer/internal/engine/memory"

// PathCostCache memoizes region-to-region travel costs. The cache is an
// optimization only: it persists in its own memory segment and a failed
// decode on restore is treated as a cold cache, never an error.
type PathCostCache struct {
	costs map[string]int
	dirty bool
}

func NewPathCostCache() *PathCostCache {
	return &PathCostCache{costs: map[string]int{}}
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// Cost returns the travel cost between two regions, computing and caching
// the grid distance on a miss.
func (p *PathCostCache) Cost(ctx *Context, a, b string) int {
	key := pairKey(a, b)
	if c, ok := p.costs[key]; ok {
		return c
	}
	c := ctx.World.LinearDistance(a, b)
	p.costs[key] = c
	p.dirty = true
	return c
}

func (p *PathCostCache) Len() int { return len(p.costs) }

// load replaces the cache with the segment's contents. Any failure leaves
// an empty cache.
func (p *PathCostCache) load(ctx *Context) {
	data, ok := ctx.Memory.Get(ctx.Config.PathCostSegment)
	if !ok || data == "" {
		return
	}
	costs := map[string]int{}
	if err := decodeString(data, &costs); err != nil {
		ctx.Log.Printf("WARN: path cost cache decode failed, starting cold: %v", err)
		return
	}
	p.costs = costs
	p.dirty = false
}

// storePathCosts writes the cache back when it changed this tick. An
// oversize cache is reset rather than persisted; it will rebuild warm
// entries as they are used.
func storePathCosts(ctx *Context) {
	p := ctx.PathCosts
	if !p.dirty {
		return
	}
	data, err := encodeString(p.costs)
	if err != nil {
		ctx.Log.Printf("ERROR: path cost cache encode: %v", err)
		return
	}
	if len(data) > memory.SegmentCapacity {
		ctx.Log.Printf("WARN: path cost cache grew past segment capacity (%d bytes), resetting", len(data))
		p.costs = map[string]int{}
		data, err = encodeString(p.costs)
		if err != nil {
			return
		}
	}
	ctx.Memory.Set(ctx.Config.PathCostSegment, data)
	p.dirty = false
}

package agent

import (
	"log"

	"overseer/internal/engine/memory"
	"overseer/internal/engine/store"
	"overseer/internal/sim/tuning"
)

// Context carries everything a task may touch during a tick. It lives for
// the life of the engine; the World and per-tick queues are refreshed each
// tick by the engine loop.
type Context struct {
	Config tuning.Tuning
	Log    *log.Logger
	World  World
	Memory *memory.Arbiter

	Arena      *store.Arena
	Directives *store.Table[DirectiveData]
	Missions   *store.Table[MissionData]
	Jobs       *store.Table[JobData]
	Owners     *store.Table[Owner]
	Regions    *store.Table[RegionData]
	Units      *store.Table[UnitData]

	Mapping    *Mapping
	Visibility *VisibilityQueue
	Spawns     *SpawnQueue
	PathCosts  *PathCostCache
	Cleanup    *CleanupQueue
	Report     *Report

	invariants int
	actionSeq  uint64
	deferred   []func(*Context)
}

func NewContext(cfg tuning.Tuning, logger *log.Logger, world World, mem *memory.Arbiter) *Context {
	spawns := NewSpawnQueue()
	spawns.MaxPerRegion = cfg.Spawning.MaxQueueLength
	return &Context{
		Config:     cfg,
		Log:        logger,
		World:      world,
		Memory:     mem,
		Arena:      store.NewArena(),
		Directives: store.NewTable[DirectiveData](),
		Missions:   store.NewTable[MissionData](),
		Jobs:       store.NewTable[JobData](),
		Owners:     store.NewTable[Owner](),
		Regions:    store.NewTable[RegionData](),
		Units:      store.NewTable[UnitData](),
		Mapping:    NewMapping(),
		Visibility: NewVisibilityQueue(),
		Spawns:     spawns,
		PathCosts:  NewPathCostCache(),
		Cleanup:    NewCleanupQueue(),
		Report:     &Report{},
	}
}

// Defer queues a structural mutation to run after all systems have ticked.
// Tasks created this way first run on the next tick.
func (c *Context) Defer(fn func(*Context)) {
	c.deferred = append(c.deferred, fn)
}

// apply drains the deferred queue. Mutations queued while applying run in
// the same drain.
func (c *Context) apply() {
	for len(c.deferred) > 0 {
		batch := c.deferred
		c.deferred = nil
		for _, fn := range batch {
			fn(c)
		}
	}
}

// Invariant records a broken engine invariant. These are bugs, not world
// conditions; they are logged loudly and counted so tests can assert on
// them.
func (c *Context) Invariant(format string, args ...any) {
	c.invariants++
	c.Log.Printf("INVARIANT: "+format, args...)
}

func (c *Context) InvariantCount() int { return c.invariants }

// DestroyEntity removes an entity from every attribute table and releases
// it. It does not notify owners; use the cleanup queue for that.
func (c *Context) DestroyEntity(e store.Entity) {
	c.Directives.Remove(e)
	c.Missions.Remove(e)
	c.Jobs.Remove(e)
	c.Owners.Remove(e)
	c.Regions.Remove(e)
	c.Units.Remove(e)
	c.Arena.Destroy(e)
}

package agent

import (
	"log"
	"runtime/debug"

	"overseer/internal/engine/memory"
	"overseer/internal/engine/store"
	"overseer/internal/sim/tuning"
)

// ReportSink receives the per-tick report after the tick completes.
type ReportSink interface {
	Emit(r *Report) error
}

// Engine owns the context and drives the per-tick system pipeline.
type Engine struct {
	Ctx  *Context
	sink ReportSink
}

func NewEngine(cfg tuning.Tuning, logger *log.Logger, world World, platform memory.Platform, sink ReportSink) *Engine {
	mem := memory.NewArbiter(platform, logger)
	ctx := NewContext(cfg, logger, world, mem)
	e := &Engine{Ctx: ctx, sink: sink}

	mem.Register(&memory.Requirement{
		Label:          "components",
		Segments:       cfg.ComponentSegments,
		GatesExecution: true,
		OnLoad:         func() { restoreState(ctx) },
	})
	mem.Register(&memory.Requirement{
		Label:    "pathcosts",
		Segments: []int{cfg.PathCostSegment},
		OnLoad:   func() { ctx.PathCosts.load(ctx) },
	})
	return e
}

// Tick runs one full engine pass against the current observation. A panic
// anywhere in the pass is caught and logged; the next tick starts clean.
func (e *Engine) Tick() {
	ctx := e.Ctx
	defer func() {
		if r := recover(); r != nil {
			ctx.Log.Printf("ERROR: tick %d panicked: %v\n%s", ctx.World.Time(), r, debug.Stack())
		}
	}()

	ctx.Report.reset(ctx.World.Time())
	ctx.Memory.RequestRegistered()
	if !ctx.Memory.GatesReady() {
		ctx.Log.Printf("waiting for memory segments to activate")
		ctx.Memory.Flush()
		return
	}
	ctx.Memory.RunPendingLoads()

	createRegions(ctx)
	updateRegions(ctx)
	rebuildMapping(ctx)
	pruneVisibility(ctx)
	scanDeadUnits(ctx)
	ensureDirectives(ctx)

	preRunDirectives(ctx)
	preRunMissions(ctx)
	runDirectives(ctx)
	runMissions(ctx)
	runJobs(ctx)

	processSpawns(ctx)

	// Structural mutations land here, after every system has seen a
	// consistent tick. Tasks created now first run next tick.
	ctx.apply()
	processCleanup(ctx)
	ctx.checkOwnerIntegrity()

	storePathCosts(ctx)
	serializeState(ctx)
	ctx.Memory.Flush()

	ctx.Report.Directives = ctx.Directives.Len()
	ctx.Report.Missions = ctx.Missions.Len()
	ctx.Report.Jobs = ctx.Jobs.Len()
	ctx.Report.Regions = ctx.Regions.Len()
	ctx.Report.Invariants = ctx.invariants
	if e.sink != nil {
		if err := e.sink.Emit(ctx.Report); err != nil {
			ctx.Log.Printf("ERROR: report emit: %v", err)
		}
	}
}

// ensureDirectives bootstraps the standing top-level directives: one claim
// planner, one scout planner, and a colony directive per owned region.
func ensureDirectives(ctx *Context) {
	var haveClaim, haveScout bool
	colonies := map[string]bool{}
	ctx.Directives.Each(func(_ store.Entity, d *DirectiveData) bool {
		switch {
		case d.Claim != nil:
			haveClaim = true
		case d.Scout != nil:
			haveScout = true
		case d.Colony != nil:
			colonies[d.Colony.Region] = true
		}
		return true
	})
	if !haveClaim {
		ctx.Defer(func(c *Context) {
			e := c.Arena.Create()
			c.Directives.Set(e, &DirectiveData{Claim: &ClaimDirective{}})
			c.Report.Decision("created claim directive %v", e)
		})
	}
	if !haveScout {
		ctx.Defer(func(c *Context) {
			e := c.Arena.Create()
			c.Directives.Set(e, &DirectiveData{Scout: &ScoutDirective{}})
			c.Report.Decision("created scout directive %v", e)
		})
	}
	for _, re := range ownedRegions(ctx) {
		r, ok := ctx.Regions.Get(re)
		if !ok || colonies[r.Name] {
			continue
		}
		name := r.Name
		ctx.Defer(func(c *Context) {
			e := c.Arena.Create()
			c.Directives.Set(e, &DirectiveData{Colony: &ColonyDirective{Region: name}})
			c.Report.Decision("created colony directive %v for %s", e, name)
		})
	}
}

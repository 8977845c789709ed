package agent

import (
	"strings"
	"testing"

	"overseer/internal/engine/store"
	"overseer/internal/protocol"
)

func TestEngineWaitsForSegments(t *testing.T) {
	h := newHarness(t)
	h.world.addRegion(homeRegion())

	h.step()
	if !strings.Contains(h.logs.String(), "waiting for memory segments") {
		t.Fatalf("first tick did not wait for activation: %q", h.logs.String())
	}
	if h.ctx().Directives.Len() != 0 {
		t.Fatalf("engine ran its body while gated")
	}

	h.step()
	if h.ctx().Directives.Len() == 0 {
		t.Fatalf("engine still idle after segments activated")
	}
}

func TestEngineBootstrapsStandingDirectives(t *testing.T) {
	h := newHarness(t)
	h.world.addRegion(homeRegion())
	h.step() // gated warmup
	h.step()

	var claim, scout, colony int
	h.ctx().Directives.Each(func(_ store.Entity, d *DirectiveData) bool {
		switch {
		case d.Claim != nil:
			claim++
		case d.Scout != nil:
			scout++
		case d.Colony != nil:
			colony++
			if d.Colony.Region != "W1N1" {
				t.Fatalf("colony directive for %q, want W1N1", d.Colony.Region)
			}
		}
		return true
	})
	if claim != 1 || scout != 1 || colony != 1 {
		t.Fatalf("bootstrap directives = claim %d, scout %d, colony %d", claim, scout, colony)
	}

	// The bootstrap is idempotent: further ticks never duplicate the
	// standing directives.
	for i := 0; i < 5; i++ {
		h.step()
	}
	if got := countDirectives(h.ctx(), func(d *DirectiveData) bool { return d.Claim != nil }); got != 1 {
		t.Fatalf("claim directives after settling = %d, want 1", got)
	}
}

func countDirectives(ctx *Context, pred func(*DirectiveData) bool) int {
	n := 0
	ctx.Directives.Each(func(_ store.Entity, d *DirectiveData) bool {
		if pred(d) {
			n++
		}
		return true
	})
	return n
}

func TestDeferredMutationsLandAfterSystems(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	var created store.Entity
	ctx.Defer(func(c *Context) {
		created = c.Arena.Create()
		c.Jobs.Set(created, &JobData{Scout: &ScoutJob{}})
	})
	if ctx.Arena.Len() != 0 {
		t.Fatalf("deferred creation visible before apply")
	}
	ctx.apply()
	if !ctx.Arena.Alive(created) || !ctx.Jobs.Has(created) {
		t.Fatalf("deferred creation missing after apply")
	}
}

func TestDeferredNestingDrainsSameTick(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	order := []string{}
	ctx.Defer(func(c *Context) {
		order = append(order, "outer")
		c.Defer(func(*Context) { order = append(order, "inner") })
	})
	ctx.apply()
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Fatalf("drain order = %v", order)
	}
}

func TestJobPersistsAcrossTicks(t *testing.T) {
	h := newHarness(t)
	h.world.addRegion(homeRegion())
	h.world.addUnit(unitObs("h1", "W1N1"))
	h.step() // gated warmup

	ctx := h.ctx()
	mis := ctx.Arena.Create()
	ctx.Missions.Set(mis, &MissionData{Mining: &MiningMission{Region: "W1N1", Home: "W1N1"}})
	job := ctx.Arena.Create()
	ctx.Jobs.Set(job, &JobData{Harvest: &HarvestJob{Region: "W1N1", Source: "src1"}})
	ctx.Units.Set(job, &UnitData{Name: "h1", Created: h.world.tick, Seen: true})
	ctx.SetOwner(job, OwnerMission, mis)

	for i := 0; i < 20; i++ {
		h.step()
	}

	if !ctx.Arena.Alive(job) || !ctx.Jobs.Has(job) {
		t.Fatalf("running job did not survive 20 ticks")
	}
	jd, _ := ctx.Jobs.Get(job)
	if jd.Harvest == nil {
		t.Fatalf("job kind changed to %s", jd.Kind())
	}
	if jd.Harvest.Phase != phaseHarvest {
		t.Fatalf("harvest phase = %q, want %q", jd.Harvest.Phase, phaseHarvest)
	}
	if got := ctx.GetOwner(job); got.Kind != OwnerMission || got.Entity != mis {
		t.Fatalf("job owner drifted to %s", got)
	}
	if ctx.InvariantCount() != 0 {
		t.Fatalf("steady-state run raised %d invariants", ctx.InvariantCount())
	}
}

func TestDeadUnitReapsJobAndOrphanListPrunes(t *testing.T) {
	h := newHarness(t)
	h.world.addRegion(homeRegion())
	h.world.addUnit(unitObs("h1", "W1N1"))
	h.step()

	ctx := h.ctx()
	mis := ctx.Arena.Create()
	job := ctx.Arena.Create()
	ctx.Missions.Set(mis, &MissionData{Mining: &MiningMission{
		Region: "W1N1", Home: "W1N1", Harvesters: []store.Entity{job},
	}})
	ctx.Jobs.Set(job, &JobData{Harvest: &HarvestJob{Region: "W1N1", Source: "src1"}})
	ctx.Units.Set(job, &UnitData{Name: "h1", Created: h.world.tick, Seen: true})
	ctx.SetOwner(job, OwnerMission, mis)
	h.step()

	delete(h.world.units, "h1")
	h.step()
	if ctx.Arena.Alive(job) {
		t.Fatalf("job survived its unit's death")
	}

	// The owning mission notices on its next setup pass.
	h.step()
	if !ctx.Arena.Alive(mis) {
		t.Fatalf("mission died with its job")
	}
	md, _ := ctx.Missions.Get(mis)
	for _, he := range md.Mining.Harvesters {
		if he == job {
			t.Fatalf("dead harvester still listed by mission")
		}
	}
}

func TestUnseenUnitGetsSpawnGrace(t *testing.T) {
	h := newHarness(t)
	h.world.addRegion(homeRegion())
	h.step()

	ctx := h.ctx()
	job := ctx.Arena.Create()
	ctx.Jobs.Set(job, &JobData{Scout: &ScoutJob{}})
	ctx.Units.Set(job, &UnitData{Name: "ghost", Created: h.world.tick + 1})

	for i := 0; i < 5; i++ {
		h.step()
	}
	if !ctx.Arena.Alive(job) {
		t.Fatalf("unseen unit reaped inside the spawn grace window")
	}

	h.world.tick += spawnGraceTicks
	h.step()
	if ctx.Arena.Alive(job) {
		t.Fatalf("unit that never arrived survived past the grace window")
	}
}

func TestEmptyJobUnionFlagged(t *testing.T) {
	h := newHarness(t)
	h.world.addRegion(homeRegion())
	h.step()

	ctx := h.ctx()
	bad := ctx.Arena.Create()
	ctx.Jobs.Set(bad, &JobData{})
	ctx.Units.Set(bad, &UnitData{Name: "x", Seen: true})
	h.step()
	if ctx.InvariantCount() == 0 {
		t.Fatalf("empty job union not flagged")
	}
}

func TestTickRecoversFromPanic(t *testing.T) {
	h := newHarness(t)
	h.world.addRegion(homeRegion())
	h.step()
	h.step()

	h.ctx().Units = nil
	h.step() // must not take the test binary down
	if !strings.Contains(h.logs.String(), "panicked") {
		t.Fatalf("panicking tick not caught: %q", h.logs.String())
	}
}

func TestReportCarriesDescribeLinesEachTick(t *testing.T) {
	h := newHarness(t)
	h.world.addRegion(homeRegion())
	h.world.addUnit(unitObs("h1", "W1N1"))
	h.step() // gated warmup

	ctx := h.ctx()
	mis := ctx.Arena.Create()
	ctx.Missions.Set(mis, &MissionData{Mining: &MiningMission{Region: "W1N1", Home: "W1N1"}})
	job := ctx.Arena.Create()
	ctx.Jobs.Set(job, &JobData{Harvest: &HarvestJob{Region: "W1N1", Source: "src1"}})
	ctx.Units.Set(job, &UnitData{Name: "h1", Created: h.world.tick, Seen: true})
	ctx.SetOwner(job, OwnerMission, mis)

	for i := 0; i < 3; i++ {
		h.step()
		lines := strings.Join(ctx.Report.Tasks, "\n")
		if !strings.Contains(lines, "directive ") {
			t.Fatalf("tick %d: no directive lines in %q", i, lines)
		}
		if !strings.Contains(lines, "mission mining") || !strings.Contains(lines, "mining W1N1") {
			t.Fatalf("tick %d: mission line missing from %q", i, lines)
		}
		if !strings.Contains(lines, "job harvest") || !strings.Contains(lines, "unit h1") {
			t.Fatalf("tick %d: job line missing from %q", i, lines)
		}
	}
}

func TestActionIDsScopedToContext(t *testing.T) {
	ctx1, world1, _, _ := newTestContext(t)
	ctx2, world2, _, _ := newTestContext(t)

	var f1, f2, f3 ActionFlags
	submit(ctx1, &f1, ActionMove, protocol.ActionReq{Unit: "a", Op: protocol.OpMoveTo})
	submit(ctx1, &f2, ActionMove, protocol.ActionReq{Unit: "a", Op: protocol.OpMoveTo})
	submit(ctx2, &f3, ActionMove, protocol.ActionReq{Unit: "b", Op: protocol.OpMoveTo})

	if got := world1.acts[1].ID; got != "a0_2" {
		t.Fatalf("second action id = %q, want a0_2", got)
	}
	// A fresh context starts its own sequence; nothing leaks across.
	if got := world2.acts[0].ID; got != "a0_1" {
		t.Fatalf("first action id in second context = %q, want a0_1", got)
	}
}

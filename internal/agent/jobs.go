package agent

import (
	"overseer/internal/engine/store"
	"overseer/internal/protocol"
)

// Job is the capability interface of leaf tasks. Jobs have no setup step
// and own nothing below them; they act through the unit they ride.
type Job interface {
	Describe(ctx *Context, self store.Entity) string
	Run(ctx *Context, self store.Entity, unit *protocol.UnitObs, flags *ActionFlags) (TaskState, error)
}

// JobData is the closed union of job kinds. Exactly one field is non-nil.
type JobData struct {
	Harvest   *HarvestJob   `json:"harvest,omitempty"`
	Haul      *HaulJob      `json:"haul,omitempty"`
	Upgrade   *UpgradeJob   `json:"upgrade,omitempty"`
	Build     *BuildJob     `json:"build,omitempty"`
	Scout     *ScoutJob     `json:"scout,omitempty"`
	Reserve   *ReserveJob   `json:"reserve,omitempty"`
	Claim     *ClaimJob     `json:"claim,omitempty"`
	Dismantle *DismantleJob `json:"dismantle,omitempty"`
}

func (j *JobData) Job() Job {
	switch {
	case j.Harvest != nil:
		return j.Harvest
	case j.Haul != nil:
		return j.Haul
	case j.Upgrade != nil:
		return j.Upgrade
	case j.Build != nil:
		return j.Build
	case j.Scout != nil:
		return j.Scout
	case j.Reserve != nil:
		return j.Reserve
	case j.Claim != nil:
		return j.Claim
	case j.Dismantle != nil:
		return j.Dismantle
	}
	return nil
}

func (j *JobData) Kind() string {
	switch {
	case j.Harvest != nil:
		return "harvest"
	case j.Haul != nil:
		return "haul"
	case j.Upgrade != nil:
		return "upgrade"
	case j.Build != nil:
		return "build"
	case j.Scout != nil:
		return "scout"
	case j.Reserve != nil:
		return "reserve"
	case j.Claim != nil:
		return "claim"
	case j.Dismantle != nil:
		return "dismantle"
	}
	return "empty"
}

// UnitData binds a task entity to a named world unit.
type UnitData struct {
	Name string `json:"name"`
	// Created is the tick the spawn was accepted; Seen flips once the
	// unit shows up in an observation.
	Created uint64 `json:"created"`
	Seen    bool   `json:"seen,omitempty"`
}

// spawnGraceTicks is how long a requested unit may stay unseen before the
// engine gives up on it arriving.
const spawnGraceTicks = 150

// runJobs advances every job that still has a live world unit. Jobs whose
// unit is mid-spawn are skipped. A done job is queued for removal; its
// unit entity goes with it.
func runJobs(ctx *Context) {
	for _, e := range sortedByMarker(ctx.Arena, ctx.Jobs) {
		j, ok := ctx.Jobs.Get(e)
		if !ok || j.Job() == nil {
			ctx.Invariant("job %v has empty union", e)
			continue
		}
		ud, ok := ctx.Units.Get(e)
		if !ok {
			ctx.Invariant("job %v has no unit attribute", e)
			continue
		}
		ctx.Report.Task("job %s %v (unit %s): %s", j.Kind(), e, ud.Name, j.Job().Describe(ctx, e))
		unit, ok := ctx.World.Unit(ud.Name)
		if !ok || unit.Spawning {
			continue
		}
		var flags ActionFlags
		state, err := j.Job().Run(ctx, e, unit, &flags)
		if err != nil {
			ctx.Log.Printf("ERROR: job %v (%s, unit %s) run: %v", e, j.Kind(), ud.Name, err)
			continue
		}
		switch state {
		case TaskDone:
			ctx.Report.Decision("job %s %v (unit %s) complete", j.Kind(), e, ud.Name)
			completeTask(ctx, e)
		case TaskReplaced:
			ctx.Report.Decision("job %s %v (unit %s) replaced", j.Kind(), e, ud.Name)
		}
	}
}

// scanDeadUnits removes task entities whose world unit no longer exists.
// Owning missions observe the death through their own liveness pruning.
func scanDeadUnits(ctx *Context) {
	for _, e := range sortedByMarker(ctx.Arena, ctx.Units) {
		ud, ok := ctx.Units.Get(e)
		if !ok {
			continue
		}
		if _, alive := ctx.World.Unit(ud.Name); alive {
			if !ud.Seen {
				ud.Seen = true
			}
			continue
		}
		if !ud.Seen && ctx.World.Time() < ud.Created+spawnGraceTicks {
			continue
		}
		ctx.Report.UnitDeaths++
		ctx.Cleanup.Push(e)
	}
}

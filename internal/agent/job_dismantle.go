package agent

import (
	"fmt"

	"overseer/internal/engine/store"
	"overseer/internal/protocol"
)

// DismantleJob tears down one structure, then finishes.
type DismantleJob struct {
	Region string `json:"region"`
	Target string `json:"target"`
}

func (j *DismantleJob) Describe(ctx *Context, self store.Entity) string {
	return fmt.Sprintf("dismantle %s in %s", j.Target, j.Region)
}

func (j *DismantleJob) Run(ctx *Context, self store.Entity, unit *protocol.UnitObs, flags *ActionFlags) (TaskState, error) {
	if unit.Region != j.Region {
		moveToRegion(ctx, flags, unit, j.Region)
		return TaskRunning, nil
	}
	obs, ok := ctx.World.Region(j.Region)
	if !ok || !obs.Visible {
		return TaskRunning, nil
	}
	var target *protocol.StructureObs
	for i := range obs.Structures {
		if obs.Structures[i].ID == j.Target {
			target = &obs.Structures[i]
			break
		}
	}
	if target == nil {
		// Already gone.
		return TaskDone, nil
	}
	code := submit(ctx, flags, ActionDismantle, protocol.ActionReq{
		Unit: unit.Name, Op: protocol.OpDismantle, TargetID: target.ID,
	})
	if code == protocol.ErrNotInRange {
		moveTo(ctx, flags, unit, target.Pos)
	}
	return TaskRunning, nil
}

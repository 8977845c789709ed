package agent

import (
	"fmt"

	"overseer/internal/engine/store"
	"overseer/internal/protocol"
)

// ReserveJob parks a claim-bodied unit on a remote controller and keeps
// reserving it until the unit expires.
type ReserveJob struct {
	Target string `json:"target"`
}

func (j *ReserveJob) Describe(ctx *Context, self store.Entity) string {
	return fmt.Sprintf("reserve %s", j.Target)
}

func (j *ReserveJob) Run(ctx *Context, self store.Entity, unit *protocol.UnitObs, flags *ActionFlags) (TaskState, error) {
	if unit.Region != j.Target {
		moveToRegion(ctx, flags, unit, j.Target)
		return TaskRunning, nil
	}
	obs, ok := ctx.World.Region(j.Target)
	if !ok || !obs.Visible || obs.Controller == nil {
		return TaskRunning, nil
	}
	code := submit(ctx, flags, ActionReserve, protocol.ActionReq{
		Unit: unit.Name, Op: protocol.OpReserve, TargetID: obs.Controller.ID,
	})
	if code == protocol.ErrNotInRange {
		moveTo(ctx, flags, unit, obs.Controller.Pos)
	}
	return TaskRunning, nil
}

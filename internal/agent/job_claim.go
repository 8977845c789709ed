package agent

import (
	"fmt"

	"overseer/internal/engine/store"
	"overseer/internal/protocol"
)

// ClaimJob walks to a target region and claims its controller. Done once
// the region reads as ours.
type ClaimJob struct {
	Target string `json:"target"`
}

func (j *ClaimJob) Describe(ctx *Context, self store.Entity) string {
	return fmt.Sprintf("claim %s", j.Target)
}

func (j *ClaimJob) Run(ctx *Context, self store.Entity, unit *protocol.UnitObs, flags *ActionFlags) (TaskState, error) {
	if unit.Region != j.Target {
		moveToRegion(ctx, flags, unit, j.Target)
		return TaskRunning, nil
	}
	obs, ok := ctx.World.Region(j.Target)
	if !ok || !obs.Visible || obs.Controller == nil {
		return TaskRunning, nil
	}
	if obs.Disposition == protocol.DispMine {
		return TaskDone, nil
	}
	code := submit(ctx, flags, ActionClaim, protocol.ActionReq{
		Unit: unit.Name, Op: protocol.OpClaim, TargetID: obs.Controller.ID,
	})
	switch code {
	case protocol.ErrNotInRange:
		moveTo(ctx, flags, unit, obs.Controller.Pos)
	case protocol.CodeOK:
		ctx.Report.Decision("unit %s claimed controller in %s", unit.Name, j.Target)
	}
	return TaskRunning, nil
}

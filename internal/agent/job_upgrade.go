package agent

import (
	"fmt"

	"overseer/internal/engine/machine"
	"overseer/internal/engine/store"
	"overseer/internal/protocol"
)

const phaseUpgrade = "upgrade"

// UpgradeJob feeds the region controller: gather energy from buffers (or
// a source when the region has none), carry it to the controller, sink
// it.
type UpgradeJob struct {
	Region string `json:"region"`
	Phase  string `json:"phase,omitempty"`
}

func (j *UpgradeJob) Describe(ctx *Context, self store.Entity) string {
	return fmt.Sprintf("upgrade %s [%s]", j.Region, j.Phase)
}

func (j *UpgradeJob) Run(ctx *Context, self store.Entity, unit *protocol.UnitObs, flags *ActionFlags) (TaskState, error) {
	machine.Run(ctx.Log, "upgrade "+unit.Name, j, func(s *UpgradeJob) *UpgradeJob {
		if unit.Region != s.Region {
			moveToRegion(ctx, flags, unit, s.Region)
			return nil
		}
		obs, ok := ctx.World.Region(s.Region)
		if !ok || !obs.Visible {
			return nil
		}
		switch s.Phase {
		case phaseCollect, "":
			if full(unit) {
				next := *s
				next.Phase = phaseUpgrade
				return &next
			}
			collectEnergy(ctx, flags, unit, obs)
			return nil
		case phaseUpgrade:
			if empty(unit) {
				next := *s
				next.Phase = phaseCollect
				return &next
			}
			if obs.Controller == nil {
				return nil
			}
			code := submit(ctx, flags, ActionUpgrade, protocol.ActionReq{
				Unit: unit.Name, Op: protocol.OpUpgrade, TargetID: obs.Controller.ID,
			})
			if code == protocol.ErrNotInRange {
				moveTo(ctx, flags, unit, obs.Controller.Pos)
			}
			return nil
		default:
			next := *s
			next.Phase = phaseCollect
			return &next
		}
	})
	return TaskRunning, nil
}

// collectEnergy withdraws from a buffer, falling back to harvesting the
// first source when the region holds no stored energy.
func collectEnergy(ctx *Context, flags *ActionFlags, unit *protocol.UnitObs, obs *protocol.RegionObs) {
	if id, pos, ok := withdrawTarget(obs); ok {
		code := submit(ctx, flags, ActionWithdraw, protocol.ActionReq{
			Unit: unit.Name, Op: protocol.OpWithdraw, TargetID: id,
		})
		if code == protocol.ErrNotInRange {
			moveTo(ctx, flags, unit, pos)
		}
		return
	}
	if len(obs.Sources) > 0 {
		src := obs.Sources[0]
		code := submit(ctx, flags, ActionHarvest, protocol.ActionReq{
			Unit: unit.Name, Op: protocol.OpHarvest, TargetID: src.ID,
		})
		if code == protocol.ErrNotInRange {
			moveTo(ctx, flags, unit, src.Pos)
		}
	}
}

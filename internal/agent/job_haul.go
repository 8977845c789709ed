package agent

import (
	"fmt"

	"overseer/internal/engine/machine"
	"overseer/internal/engine/store"
	"overseer/internal/protocol"
)

const (
	phaseCollect = "collect"
)

// HaulJob shuttles energy from a source region's containers back to the
// home region's sinks.
type HaulJob struct {
	Region string `json:"region"`
	Home   string `json:"home"`
	Source string `json:"source"`
	Phase  string `json:"phase,omitempty"`
}

func (j *HaulJob) Describe(ctx *Context, self store.Entity) string {
	return fmt.Sprintf("haul %s -> %s [%s]", j.Region, j.Home, j.Phase)
}

func (j *HaulJob) Run(ctx *Context, self store.Entity, unit *protocol.UnitObs, flags *ActionFlags) (TaskState, error) {
	machine.Run(ctx.Log, "haul "+unit.Name, j, func(s *HaulJob) *HaulJob {
		switch s.Phase {
		case phaseCollect, "":
			if full(unit) {
				next := *s
				next.Phase = phaseDeliver
				return &next
			}
			if unit.Region != s.Region {
				moveToRegion(ctx, flags, unit, s.Region)
				return nil
			}
			obs, ok := ctx.World.Region(s.Region)
			if !ok || !obs.Visible {
				return nil
			}
			id, pos, ok := withdrawTarget(obs)
			if !ok {
				// Nothing buffered yet; wait by the source.
				if src, ok := sourceByID(obs, s.Source); ok {
					moveTo(ctx, flags, unit, src.Pos)
				}
				return nil
			}
			code := submit(ctx, flags, ActionWithdraw, protocol.ActionReq{
				Unit: unit.Name, Op: protocol.OpWithdraw, TargetID: id,
			})
			if code == protocol.ErrNotInRange {
				moveTo(ctx, flags, unit, pos)
			}
			return nil
		case phaseDeliver:
			if empty(unit) {
				next := *s
				next.Phase = phaseCollect
				return &next
			}
			if unit.Region != s.Home {
				moveToRegion(ctx, flags, unit, s.Home)
				return nil
			}
			obs, ok := ctx.World.Region(s.Home)
			if !ok || !obs.Visible {
				return nil
			}
			id, pos, ok := depositTarget(obs)
			if !ok {
				return nil
			}
			code := submit(ctx, flags, ActionTransfer, protocol.ActionReq{
				Unit: unit.Name, Op: protocol.OpTransfer, TargetID: id,
			})
			if code == protocol.ErrNotInRange {
				moveTo(ctx, flags, unit, pos)
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

package agent

import (
	"fmt"

	"overseer/internal/engine/machine"
	"overseer/internal/engine/store"
	"overseer/internal/protocol"
)

// Harvest phases.
const (
	phaseTravel  = ""
	phaseHarvest = "harvest"
	phaseDeliver = "deliver"
)

// HarvestJob works one source: fill up, walk the energy to the nearest
// sink, repeat until the unit dies.
type HarvestJob struct {
	Region string `json:"region"`
	Source string `json:"source"`
	Phase  string `json:"phase,omitempty"`
}

func (j *HarvestJob) Describe(ctx *Context, self store.Entity) string {
	return fmt.Sprintf("harvest %s in %s [%s]", j.Source, j.Region, j.Phase)
}

func (j *HarvestJob) Run(ctx *Context, self store.Entity, unit *protocol.UnitObs, flags *ActionFlags) (TaskState, error) {
	err := machine.RunErr(ctx.Log, "harvest "+unit.Name, j, func(s *HarvestJob) (*HarvestJob, error) {
		switch s.Phase {
		case phaseTravel:
			if unit.Region != s.Region {
				moveToRegion(ctx, flags, unit, s.Region)
				return nil, nil
			}
			next := *s
			next.Phase = phaseHarvest
			return &next, nil
		case phaseHarvest:
			if full(unit) {
				next := *s
				next.Phase = phaseDeliver
				return &next, nil
			}
			obs, ok := ctx.World.Region(s.Region)
			if !ok || !obs.Visible {
				return nil, fmt.Errorf("region %s not visible", s.Region)
			}
			src, ok := sourceByID(obs, s.Source)
			if !ok {
				return nil, fmt.Errorf("source %s gone from %s", s.Source, s.Region)
			}
			code := submit(ctx, flags, ActionHarvest, protocol.ActionReq{
				Unit: unit.Name, Op: protocol.OpHarvest, TargetID: src.ID,
			})
			if code == protocol.ErrNotInRange {
				moveTo(ctx, flags, unit, src.Pos)
			}
			return nil, nil
		case phaseDeliver:
			if empty(unit) {
				next := *s
				next.Phase = phaseHarvest
				return &next, nil
			}
			obs, ok := ctx.World.Region(unit.Region)
			if !ok || !obs.Visible {
				return nil, nil
			}
			id, pos, ok := depositTarget(obs)
			if !ok {
				// Nowhere to put it; sit on the load.
				return nil, nil
			}
			code := submit(ctx, flags, ActionTransfer, protocol.ActionReq{
				Unit: unit.Name, Op: protocol.OpTransfer, TargetID: id,
			})
			if code == protocol.ErrNotInRange {
				moveTo(ctx, flags, unit, pos)
			}
			return nil, nil
		default:
			next := *s
			next.Phase = phaseTravel
			return &next, nil
		}
	})
	return TaskRunning, err
}

package agent

import (
	"fmt"

	"overseer/internal/engine/machine"
	"overseer/internal/engine/store"
	"overseer/internal/protocol"
)

// Scout phases.
const (
	phasePick = ""
	phaseMove = "move"
	phaseIdle = "idle"
)

// ScoutJob walks a throwaway unit into regions the visibility queue wants
// eyes on. With no requests it loiters, and after enough idle ticks it
// wanders into an unexplored neighbor on its own.
type ScoutJob struct {
	Target    string `json:"target,omitempty"`
	Phase     string `json:"phase,omitempty"`
	IdleTicks int    `json:"idle_ticks,omitempty"`
}

func (j *ScoutJob) Describe(ctx *Context, self store.Entity) string {
	if j.Target != "" {
		return fmt.Sprintf("scouting %s", j.Target)
	}
	return "scout idle"
}

func (j *ScoutJob) Run(ctx *Context, self store.Entity, unit *protocol.UnitObs, flags *ActionFlags) (TaskState, error) {
	machine.Run(ctx.Log, "scout "+unit.Name, j, func(s *ScoutJob) *ScoutJob {
		switch s.Phase {
		case phasePick:
			target := nearestRequest(ctx, unit.Region)
			if target == "" {
				next := *s
				next.Phase = phaseIdle
				next.IdleTicks = 0
				return &next
			}
			ctx.Visibility.Claim(target)
			next := *s
			next.Phase = phaseMove
			next.Target = target
			return &next
		case phaseMove:
			if s.Target == "" || unit.Region == s.Target {
				next := *s
				next.Phase = phasePick
				next.Target = ""
				return &next
			}
			// Claims reset every tick; renew while still traveling.
			ctx.Visibility.Claim(s.Target)
			moveToRegion(ctx, flags, unit, s.Target)
			return nil
		case phaseIdle:
			if len(ctx.Visibility.Unclaimed()) > 0 {
				next := *s
				next.Phase = phasePick
				return &next
			}
			if s.IdleTicks >= ctx.Config.Scouting.IdleExploreTicks {
				for _, n := range neighborRegions(unit.Region) {
					if _, known := ctx.Mapping.RegionByName(n); !known {
						next := *s
						next.Phase = phaseMove
						next.Target = n
						next.IdleTicks = 0
						return &next
					}
				}
			}
			s.IdleTicks++
			return nil
		default:
			next := *s
			next.Phase = phasePick
			return &next
		}
	})
	return TaskRunning, nil
}

// nearestRequest picks the closest unclaimed visibility request to the
// scout's current region.
func nearestRequest(ctx *Context, from string) string {
	best := ""
	bestDist := 1 << 20
	for _, region := range ctx.Visibility.Unclaimed() {
		d := ctx.PathCosts.Cost(ctx, from, region)
		if d < bestDist {
			best, bestDist = region, d
		}
	}
	return best
}

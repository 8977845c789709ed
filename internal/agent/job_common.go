package agent

import (
	"fmt"

	"overseer/internal/protocol"
)

// submit sends a unit action if its pipeline is still free this tick.
// Returns the result code, or "" when the pipeline was already consumed.
// Action ids come from the context's own counter, so two engines in one
// process never interleave sequences.
func submit(ctx *Context, flags *ActionFlags, flag ActionFlags, req protocol.ActionReq) string {
	if !flags.Consume(flag) {
		return ""
	}
	ctx.actionSeq++
	req.ID = fmt.Sprintf("a%d_%d", ctx.World.Time(), ctx.actionSeq)
	return ctx.World.Act(req)
}

func moveTo(ctx *Context, flags *ActionFlags, unit *protocol.UnitObs, pos protocol.Pos) {
	p := pos
	submit(ctx, flags, ActionMove, protocol.ActionReq{
		Unit: unit.Name, Op: protocol.OpMoveTo, Region: unit.Region, Pos: &p,
	})
}

func moveToRegion(ctx *Context, flags *ActionFlags, unit *protocol.UnitObs, region string) {
	submit(ctx, flags, ActionMove, protocol.ActionReq{
		Unit: unit.Name, Op: protocol.OpMoveToRegion, Region: region,
	})
}

// depositTarget picks a structure in the region that can absorb energy:
// spawns first, then extensions, then storage and containers.
func depositTarget(obs *protocol.RegionObs) (string, protocol.Pos, bool) {
	for _, sp := range obs.Spawns {
		if sp.Energy < sp.EnergyCapacity {
			return sp.ID, sp.Pos, true
		}
	}
	for _, kind := range []string{"EXTENSION", "STORAGE", "CONTAINER"} {
		for _, s := range obs.Structures {
			if s.Kind == kind && s.Store < s.StoreCapacity {
				return s.ID, s.Pos, true
			}
		}
	}
	return "", protocol.Pos{}, false
}

// withdrawTarget picks a structure holding spare energy.
func withdrawTarget(obs *protocol.RegionObs) (string, protocol.Pos, bool) {
	for _, kind := range []string{"CONTAINER", "STORAGE"} {
		for _, s := range obs.Structures {
			if s.Kind == kind && s.Store > 0 {
				return s.ID, s.Pos, true
			}
		}
	}
	return "", protocol.Pos{}, false
}

func sourceByID(obs *protocol.RegionObs, id string) (protocol.SourceObs, bool) {
	for _, s := range obs.Sources {
		if s.ID == id {
			return s, true
		}
	}
	return protocol.SourceObs{}, false
}

func full(unit *protocol.UnitObs) bool {
	return unit.CarryCapacity > 0 && unit.Carry >= unit.CarryCapacity
}

func empty(unit *protocol.UnitObs) bool {
	return unit.Carry == 0
}

package agent

import (
	"fmt"

	"overseer/internal/engine/store"
)

// MiningOutpostDirective works a remote source region from a home colony:
// a reserve mission holds the controller while a mining mission hauls
// energy home. Hostiles moving in end the outpost.
type MiningOutpostDirective struct {
	Region   string         `json:"region"`
	Home     string         `json:"home"`
	Missions []store.Entity `json:"missions"`
}

func (d *MiningOutpostDirective) Describe(ctx *Context, self store.Entity) string {
	return fmt.Sprintf("mining outpost %s from %s: %d missions", d.Region, d.Home, len(d.Missions))
}

func (d *MiningOutpostDirective) PreRun(ctx *Context, self store.Entity) error {
	d.Missions = pruneDead(ctx, d.Missions)
	return nil
}

func (d *MiningOutpostDirective) Run(ctx *Context, self store.Entity) (TaskState, error) {
	re, ok := ctx.Mapping.RegionByName(d.Region)
	if !ok {
		return TaskRunning, fmt.Errorf("region %s unknown", d.Region)
	}
	r, ok := ctx.Regions.Get(re)
	if !ok {
		return TaskRunning, fmt.Errorf("region %s has no data", d.Region)
	}
	switch r.Disposition {
	case DispositionHostile, DispositionReservedHostile, DispositionFriendly:
		ctx.Report.Decision("outpost %s contested, abandoning", d.Region)
		ctx.Cleanup.PushRecursive(self)
		return TaskDone, nil
	case DispositionMine:
		// Promoted to a full colony; the colony directive takes over.
		ctx.Cleanup.PushRecursive(self)
		return TaskDone, nil
	}
	if r.HostileCount > 0 {
		ctx.Report.Decision("outpost %s has %d hostiles, abandoning", d.Region, r.HostileCount)
		ctx.Cleanup.PushRecursive(self)
		return TaskDone, nil
	}

	// The home colony must still stand to absorb the hauled energy.
	if he, ok := ctx.Mapping.RegionByName(d.Home); ok {
		if hr, ok := ctx.Regions.Get(he); ok && hr.LastSeen > 0 && hr.Disposition != DispositionMine {
			ctx.Cleanup.PushRecursive(self)
			return TaskDone, nil
		}
	}

	var haveReserve, haveMining bool
	for _, me := range d.Missions {
		m, ok := ctx.Missions.Get(me)
		if !ok {
			continue
		}
		switch {
		case m.Reserve != nil:
			haveReserve = true
		case m.Mining != nil:
			haveMining = true
		}
	}
	if !haveReserve && r.HasController {
		d.spawnMission(ctx, self, &MissionData{Reserve: &ReserveMission{Region: d.Region, Home: d.Home}})
	}
	if !haveMining {
		d.spawnMission(ctx, self, &MissionData{Mining: &MiningMission{Region: d.Region, Home: d.Home}})
	}
	return TaskRunning, nil
}

func (d *MiningOutpostDirective) spawnMission(ctx *Context, self store.Entity, data *MissionData) {
	ctx.Defer(func(c *Context) {
		me := c.Arena.Create()
		c.Missions.Set(me, data)
		c.SetOwner(me, OwnerDirective, self)
		if dd, ok := c.Directives.Get(self); ok && dd.Mining != nil {
			dd.Mining.Missions = append(dd.Mining.Missions, me)
		}
		c.Report.Decision("outpost %s created %s mission %v", d.Region, data.Kind(), me)
	})
}

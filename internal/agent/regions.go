package agent

import (
	"overseer/internal/engine/store"
	"overseer/internal/protocol"
)

// RegionData is the engine's persistent memory of one region. Observation
// fields refresh whenever the region is visible and go stale otherwise;
// LastSeen dates the freshness.
type RegionData struct {
	Name        string      `json:"name"`
	LastSeen    uint64      `json:"last_seen"`
	Disposition Disposition `json:"disposition"`

	SourceCount     int  `json:"source_count"`
	HasController   bool `json:"has_controller,omitempty"`
	ControllerLevel int  `json:"controller_level,omitempty"`
	HostileCount    int  `json:"hostile_count,omitempty"`
}

// Visible reports whether the region is in this tick's observation.
func (r *RegionData) Visible(ctx *Context) bool {
	reg, ok := ctx.World.Region(r.Name)
	return ok && reg.Visible
}

// Stale reports whether the last observation is older than the scouting
// threshold.
func (r *RegionData) Stale(ctx *Context) bool {
	age := ctx.World.Time() - r.LastSeen
	return age > uint64(ctx.Config.Scouting.StaleTicks)
}

// createRegions makes a region entity for every region name the world
// reports that the engine has not met before.
func createRegions(ctx *Context) {
	for _, name := range ctx.World.Regions() {
		if _, ok := ctx.Mapping.RegionByName(name); ok {
			continue
		}
		e := ctx.Arena.Create()
		ctx.Regions.Set(e, &RegionData{Name: name})
		ctx.Mapping.setRegion(name, e)
	}
}

// updateRegions refreshes every region entity from this tick's
// observation.
func updateRegions(ctx *Context) {
	ctx.Regions.Each(func(e store.Entity, r *RegionData) bool {
		obs, ok := ctx.World.Region(r.Name)
		if !ok || !obs.Visible {
			return true
		}
		r.LastSeen = ctx.World.Time()
		r.Disposition = ParseDisposition(obs.Disposition)
		r.SourceCount = len(obs.Sources)
		r.HasController = obs.Controller != nil
		if obs.Controller != nil {
			r.ControllerLevel = obs.Controller.Level
		}
		r.HostileCount = obs.HostileCount
		return true
	})
}

// regionEntity finds or lazily creates the entity for a region name. Used
// by tasks that learn about regions the observation has never shown.
func regionEntity(ctx *Context, name string) store.Entity {
	if e, ok := ctx.Mapping.RegionByName(name); ok {
		return e
	}
	e := ctx.Arena.Create()
	ctx.Regions.Set(e, &RegionData{Name: name})
	ctx.Mapping.setRegion(name, e)
	return e
}

// ownedRegions lists regions currently held by the player.
func ownedRegions(ctx *Context) []store.Entity {
	var out []store.Entity
	for _, e := range sortedByMarker(ctx.Arena, ctx.Regions) {
		if r, ok := ctx.Regions.Get(e); ok && r.Disposition == DispositionMine {
			out = append(out, e)
		}
	}
	return out
}

// firstIdleSpawn returns an idle, funded spawn in the region, if any.
func firstIdleSpawn(obs *protocol.RegionObs, minEnergy int) (protocol.SpawnObs, bool) {
	for _, sp := range obs.Spawns {
		if !sp.Busy && sp.Energy >= minEnergy {
			return sp, true
		}
	}
	return protocol.SpawnObs{}, false
}

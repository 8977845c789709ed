package agent

import (
	"fmt"

	"overseer/internal/engine/store"
)

// ColonyDirective runs one owned region: it keeps the standing mining,
// upgrade and build missions alive and plants mining outpost directives in
// nearby source regions. Losing the region tears the whole subtree down.
type ColonyDirective struct {
	Region   string         `json:"region"`
	Missions []store.Entity `json:"missions"`
}

func (d *ColonyDirective) Describe(ctx *Context, self store.Entity) string {
	return fmt.Sprintf("colony %s: %d missions", d.Region, len(d.Missions))
}

func (d *ColonyDirective) PreRun(ctx *Context, self store.Entity) error {
	d.Missions = pruneDead(ctx, d.Missions)
	return nil
}

func (d *ColonyDirective) Run(ctx *Context, self store.Entity) (TaskState, error) {
	re, ok := ctx.Mapping.RegionByName(d.Region)
	if !ok {
		return TaskRunning, fmt.Errorf("region %s unknown", d.Region)
	}
	r, ok := ctx.Regions.Get(re)
	if !ok {
		return TaskRunning, fmt.Errorf("region %s has no data", d.Region)
	}
	if r.LastSeen > 0 && r.Disposition != DispositionMine {
		ctx.Report.Decision("colony %s lost, tearing down", d.Region)
		ctx.Cleanup.PushRecursive(self)
		return TaskDone, nil
	}

	var haveMining, haveUpgrade, haveBuild bool
	for _, me := range d.Missions {
		m, ok := ctx.Missions.Get(me)
		if !ok {
			continue
		}
		switch {
		case m.Mining != nil:
			haveMining = true
		case m.Upgrade != nil:
			haveUpgrade = true
		case m.Build != nil:
			haveBuild = true
		}
	}
	if !haveMining {
		d.spawnMission(ctx, self, &MissionData{Mining: &MiningMission{Region: d.Region, Home: d.Region}})
	}
	if !haveUpgrade {
		d.spawnMission(ctx, self, &MissionData{Upgrade: &UpgradeMission{Region: d.Region}})
	}
	if !haveBuild {
		d.spawnMission(ctx, self, &MissionData{Build: &BuildMission{Region: d.Region}})
	}

	d.plantOutposts(ctx)
	return TaskRunning, nil
}

func (d *ColonyDirective) spawnMission(ctx *Context, self store.Entity, data *MissionData) {
	ctx.Defer(func(c *Context) {
		me := c.Arena.Create()
		c.Missions.Set(me, data)
		c.SetOwner(me, OwnerDirective, self)
		if dd, ok := c.Directives.Get(self); ok && dd.Colony != nil {
			dd.Colony.Missions = append(dd.Colony.Missions, me)
		}
		c.Report.Decision("colony %s created %s mission %v", d.Region, data.Kind(), me)
	})
}

// plantOutposts creates a mining outpost directive for each nearby source
// region that nobody owns or works yet.
func (d *ColonyDirective) plantOutposts(ctx *Context) {
	outposts := map[string]bool{}
	ctx.Directives.Each(func(_ store.Entity, dd *DirectiveData) bool {
		if dd.Mining != nil {
			outposts[dd.Mining.Region] = true
		}
		return true
	})
	for _, re := range sortedByMarker(ctx.Arena, ctx.Regions) {
		r, ok := ctx.Regions.Get(re)
		if !ok || outposts[r.Name] || r.Name == d.Region {
			continue
		}
		if r.Disposition != DispositionNeutral && r.Disposition != DispositionReservedMine {
			continue
		}
		if r.SourceCount == 0 || r.HostileCount > 0 || r.LastSeen == 0 {
			continue
		}
		if ctx.PathCosts.Cost(ctx, d.Region, r.Name) > ctx.Config.Mining.MaxOutpostDistance {
			continue
		}
		region := r.Name
		home := d.Region
		ctx.Defer(func(c *Context) {
			e := c.Arena.Create()
			c.Directives.Set(e, &DirectiveData{Mining: &MiningOutpostDirective{Region: region, Home: home}})
			c.Report.Decision("colony %s planted mining outpost directive for %s", home, region)
		})
		outposts[region] = true
	}
}

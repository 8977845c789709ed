package agent

import (
	"fmt"

	"overseer/internal/engine/store"
)

// ScoutDirective keeps the map fresh: it files visibility requests for
// every stale known region plus the unexplored neighbors of owned
// regions, and maintains a scout mission while requests are open.
type ScoutDirective struct {
	Mission store.Entity `json:"mission"`
}

func (d *ScoutDirective) Describe(ctx *Context, self store.Entity) string {
	return fmt.Sprintf("scout: %d visibility requests open", ctx.Visibility.Len())
}

func (d *ScoutDirective) PreRun(ctx *Context, self store.Entity) error {
	if !d.Mission.IsNil() && !ctx.Arena.Alive(d.Mission) {
		d.Mission = store.Nil
	}
	return nil
}

func (d *ScoutDirective) Run(ctx *Context, self store.Entity) (TaskState, error) {
	ctx.Regions.Each(func(_ store.Entity, r *RegionData) bool {
		if r.LastSeen > 0 && r.Stale(ctx) && r.Disposition != DispositionHostile {
			ctx.Visibility.Request(r.Name, VisibilityLow)
		}
		return true
	})
	for _, oe := range ownedRegions(ctx) {
		r, ok := ctx.Regions.Get(oe)
		if !ok {
			continue
		}
		for _, n := range neighborRegions(r.Name) {
			if _, known := ctx.Mapping.RegionByName(n); !known {
				ctx.Visibility.Request(n, VisibilityMedium)
			}
		}
	}

	owned := ownedRegions(ctx)
	if len(owned) == 0 || ctx.Visibility.Len() == 0 {
		return TaskRunning, nil
	}
	if d.Mission.IsNil() {
		home, _ := ctx.Regions.Get(owned[0])
		homeName := home.Name
		ctx.Defer(func(c *Context) {
			me := c.Arena.Create()
			c.Missions.Set(me, &MissionData{Scout: &ScoutMission{Home: homeName}})
			c.SetOwner(me, OwnerDirective, self)
			if dd, ok := c.Directives.Get(self); ok && dd.Scout != nil {
				dd.Scout.Mission = me
			}
			c.Report.Decision("scout directive created mission %v from %s", me, homeName)
		})
	}
	return TaskRunning, nil
}

// neighborRegions lists the four orthogonal neighbors of a region name.
func neighborRegions(name string) []string {
	x, y, err := ParseRegionName(name)
	if err != nil {
		return nil
	}
	return []string{
		formatRegionName(x-1, y),
		formatRegionName(x+1, y),
		formatRegionName(x, y-1),
		formatRegionName(x, y+1),
	}
}

func formatRegionName(x, y int) string {
	h, hv := "E", x
	if x < 0 {
		h, hv = "W", -x-1
	}
	v, vv := "N", y
	if y < 0 {
		v, vv = "S", -y-1
	}
	return fmt.Sprintf("%s%d%s%d", h, hv, v, vv)
}

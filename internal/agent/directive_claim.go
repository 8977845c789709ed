package agent

import (
	"fmt"

	"overseer/internal/engine/store"
)

// ClaimDirective watches the known map for regions worth owning and runs
// one claim mission per chosen target. It never finishes on its own.
type ClaimDirective struct {
	Missions []store.Entity `json:"missions"`
}

func (d *ClaimDirective) Describe(ctx *Context, self store.Entity) string {
	return fmt.Sprintf("claim: %d missions, %d/%d regions owned",
		len(d.Missions), len(ownedRegions(ctx)), ctx.Config.Claim.MaxOwnedRegions)
}

func (d *ClaimDirective) PreRun(ctx *Context, self store.Entity) error {
	d.Missions = pruneDead(ctx, d.Missions)
	return nil
}

func (d *ClaimDirective) Run(ctx *Context, self store.Entity) (TaskState, error) {
	owned := ownedRegions(ctx)
	if len(owned)+len(d.Missions) >= ctx.Config.Claim.MaxOwnedRegions {
		return TaskRunning, nil
	}
	if len(owned) == 0 {
		// Nothing to stage a claim from yet.
		return TaskRunning, nil
	}

	targeted := map[string]bool{}
	for _, me := range d.Missions {
		if m, ok := ctx.Missions.Get(me); ok && m.Claim != nil {
			targeted[m.Claim.Target] = true
		}
	}

	best := store.Nil
	bestScore := 0
	var bestHome string
	for _, re := range sortedByMarker(ctx.Arena, ctx.Regions) {
		r, ok := ctx.Regions.Get(re)
		if !ok || targeted[r.Name] {
			continue
		}
		if r.Disposition != DispositionNeutral && r.Disposition != DispositionReservedMine {
			continue
		}
		if !r.HasController {
			continue
		}
		home, dist := nearestOwned(ctx, owned, r.Name)
		if home == "" || dist > ctx.Config.Claim.MaxClaimDistance {
			continue
		}
		if r.Stale(ctx) {
			// Score with fresh eyes before committing a claimer.
			ctx.Visibility.Request(r.Name, VisibilityMedium)
			continue
		}
		score := r.SourceCount - r.HostileCount - dist/2
		if score >= ctx.Config.Claim.CandidateMinScore && score > bestScore {
			best, bestScore, bestHome = re, score, r.Name
		}
	}
	if best.IsNil() {
		return TaskRunning, nil
	}

	r, _ := ctx.Regions.Get(best)
	targetName, home := r.Name, bestHome
	ctx.Report.Decision("claim directive targeting %s (score %d)", targetName, bestScore)
	ctx.Defer(func(c *Context) {
		me := c.Arena.Create()
		c.Missions.Set(me, &MissionData{Claim: &ClaimMission{Target: targetName, Home: home}})
		c.SetOwner(me, OwnerDirective, self)
		if dd, ok := c.Directives.Get(self); ok && dd.Claim != nil {
			dd.Claim.Missions = append(dd.Claim.Missions, me)
		}
	})
	return TaskRunning, nil
}

// nearestOwned returns the closest owned region to target and its
// distance.
func nearestOwned(ctx *Context, owned []store.Entity, target string) (string, int) {
	bestName := ""
	bestDist := 1 << 20
	for _, oe := range owned {
		r, ok := ctx.Regions.Get(oe)
		if !ok {
			continue
		}
		d := ctx.PathCosts.Cost(ctx, r.Name, target)
		if d < bestDist {
			bestName, bestDist = r.Name, d
		}
	}
	return bestName, bestDist
}

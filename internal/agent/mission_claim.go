package agent

import (
	"fmt"

	"overseer/internal/engine/store"
)

// ClaimMission walks a claimer unit to a target region and finishes once
// the controller is ours. A target that turns hostile abandons the
// mission and its units.
type ClaimMission struct {
	Target   string         `json:"target"`
	Home     string         `json:"home"`
	Claimers []store.Entity `json:"claimers"`

	// Pending tracks an in-flight spawn request; it is rebuilt after a
	// restore by simply re-requesting.
	Pending SpawnToken `json:"-"`
}

func (m *ClaimMission) Describe(ctx *Context, self store.Entity) string {
	return fmt.Sprintf("claim %s from %s (%d claimers)", m.Target, m.Home, len(m.Claimers))
}

func (m *ClaimMission) PreRun(ctx *Context, self store.Entity) error {
	m.Claimers = pruneDead(ctx, m.Claimers)
	return nil
}

func (m *ClaimMission) Run(ctx *Context, self store.Entity) (TaskState, error) {
	if te, ok := ctx.Mapping.RegionByName(m.Target); ok {
		if r, ok := ctx.Regions.Get(te); ok && r.LastSeen > 0 {
			switch r.Disposition {
			case DispositionMine:
				ctx.Report.Decision("claim of %s succeeded", m.Target)
				return TaskDone, nil
			case DispositionHostile, DispositionReservedHostile, DispositionFriendly:
				ctx.Report.Decision("claim of %s abandoned: taken by others", m.Target)
				ctx.Cleanup.PushRecursive(self)
				return TaskDone, nil
			}
		}
	}

	want := ctx.Config.Claim.ClaimersPerTarget
	if len(m.Claimers)+pendingCount(m.Pending) < want {
		target := m.Target
		m.Pending = ctx.Spawns.Request(SpawnRequest{
			Region:     m.Home,
			Priority:   SpawnPriorityHigh,
			NamePrefix: "claim",
			Body:       []string{"CLAIM", "MOVE", "MOVE"},
			Completion: func(c *Context, name string, unit store.Entity) {
				c.Jobs.Set(unit, &JobData{Claim: &ClaimJob{Target: target}})
				c.SetOwner(unit, OwnerMission, self)
				if md, ok := c.Missions.Get(self); ok && md.Claim != nil {
					md.Claim.Claimers = append(md.Claim.Claimers, unit)
					md.Claim.Pending = 0
				}
			},
		})
	}
	return TaskRunning, nil
}

func pendingCount(t SpawnToken) int {
	if t != 0 {
		return 1
	}
	return 0
}

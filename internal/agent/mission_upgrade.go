package agent

import (
	"fmt"

	"overseer/internal/engine/store"
)

// UpgradeMission keeps one upgrader feeding the region's controller.
type UpgradeMission struct {
	Region    string         `json:"region"`
	Upgraders []store.Entity `json:"upgraders"`

	Pending SpawnToken `json:"-"`
}

func (m *UpgradeMission) Describe(ctx *Context, self store.Entity) string {
	return fmt.Sprintf("upgrade %s (%d upgraders)", m.Region, len(m.Upgraders))
}

func (m *UpgradeMission) PreRun(ctx *Context, self store.Entity) error {
	m.Upgraders = pruneDead(ctx, m.Upgraders)
	return nil
}

func (m *UpgradeMission) Run(ctx *Context, self store.Entity) (TaskState, error) {
	if re, ok := ctx.Mapping.RegionByName(m.Region); ok {
		if r, ok := ctx.Regions.Get(re); ok && r.LastSeen > 0 && r.Disposition != DispositionMine {
			ctx.Cleanup.PushRecursive(self)
			return TaskDone, nil
		}
	}
	if len(m.Upgraders)+pendingCount(m.Pending) < 1 {
		region := m.Region
		m.Pending = ctx.Spawns.Request(SpawnRequest{
			Region:     m.Region,
			Priority:   SpawnPriorityMedium,
			NamePrefix: "upgrade",
			Body:       ScaleBody([]string{"WORK", "CARRY", "MOVE"}, []string{"WORK", "CARRY", "MOVE"}, 600),
			Completion: func(c *Context, name string, unit store.Entity) {
				c.Jobs.Set(unit, &JobData{Upgrade: &UpgradeJob{Region: region}})
				c.SetOwner(unit, OwnerMission, self)
				if md, ok := c.Missions.Get(self); ok && md.Upgrade != nil {
					md.Upgrade.Upgraders = append(md.Upgrade.Upgraders, unit)
					md.Upgrade.Pending = 0
				}
			},
		})
	}
	return TaskRunning, nil
}

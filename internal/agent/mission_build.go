package agent

import (
	"fmt"

	"overseer/internal/engine/store"
	"overseer/internal/protocol"
)

// BuildMission staffs construction in a region: builders while sites
// exist, a dismantler when foreign structures squat on owned ground. With
// nothing to do it idles cheaply.
type BuildMission struct {
	Region      string         `json:"region"`
	Builders    []store.Entity `json:"builders"`
	Dismantlers []store.Entity `json:"dismantlers"`

	PendingBuild     SpawnToken `json:"-"`
	PendingDismantle SpawnToken `json:"-"`
}

func (m *BuildMission) Describe(ctx *Context, self store.Entity) string {
	return fmt.Sprintf("build %s (%d builders, %d dismantlers)", m.Region, len(m.Builders), len(m.Dismantlers))
}

func (m *BuildMission) PreRun(ctx *Context, self store.Entity) error {
	m.Builders = pruneDead(ctx, m.Builders)
	m.Dismantlers = pruneDead(ctx, m.Dismantlers)
	return nil
}

func (m *BuildMission) Run(ctx *Context, self store.Entity) (TaskState, error) {
	obs, ok := ctx.World.Region(m.Region)
	if !ok || !obs.Visible {
		return TaskRunning, nil
	}

	if len(obs.Sites) > 0 && len(m.Builders)+pendingCount(m.PendingBuild) < 1 {
		region := m.Region
		m.PendingBuild = ctx.Spawns.Request(SpawnRequest{
			Region:     m.Region,
			Priority:   SpawnPriorityMedium,
			NamePrefix: "build",
			Body:       ScaleBody([]string{"WORK", "CARRY", "MOVE"}, []string{"WORK", "CARRY", "MOVE"}, 600),
			Completion: func(c *Context, name string, unit store.Entity) {
				c.Jobs.Set(unit, &JobData{Build: &BuildJob{Region: region}})
				c.SetOwner(unit, OwnerMission, self)
				if md, ok := c.Missions.Get(self); ok && md.Build != nil {
					md.Build.Builders = append(md.Build.Builders, unit)
					md.Build.PendingBuild = 0
				}
			},
		})
	}

	if target := foreignStructure(ctx, obs.Structures); target != "" &&
		len(m.Dismantlers)+pendingCount(m.PendingDismantle) < 1 {
		region := m.Region
		m.PendingDismantle = ctx.Spawns.Request(SpawnRequest{
			Region:     m.Region,
			Priority:   SpawnPriorityLow,
			NamePrefix: "dismantle",
			Body:       ScaleBody([]string{"WORK", "MOVE"}, []string{"WORK", "MOVE"}, 400),
			Completion: func(c *Context, name string, unit store.Entity) {
				c.Jobs.Set(unit, &JobData{Dismantle: &DismantleJob{Region: region, Target: target}})
				c.SetOwner(unit, OwnerMission, self)
				if md, ok := c.Missions.Get(self); ok && md.Build != nil {
					md.Build.Dismantlers = append(md.Build.Dismantlers, unit)
					md.Build.PendingDismantle = 0
				}
			},
		})
	}
	return TaskRunning, nil
}

// foreignStructure picks the first structure owned by another player that
// is worth tearing down. Controllers are never dismantled.
func foreignStructure(ctx *Context, structures []protocol.StructureObs) string {
	for _, s := range structures {
		if s.Owner != "" && s.Owner != ctx.World.Player() && s.Kind != "CONTROLLER" {
			return s.ID
		}
	}
	return ""
}

package agent

import (
	"fmt"

	"overseer/internal/engine/store"
)

// MiningMission keeps every source in a region staffed: harvesters pull
// energy out, haulers carry it to the home region's spawns. It runs for
// as long as its owner keeps it.
type MiningMission struct {
	Region string `json:"region"`
	Home   string `json:"home"`

	Harvesters []store.Entity `json:"harvesters"`
	Haulers    []store.Entity `json:"haulers"`

	PendingHarvest SpawnToken `json:"-"`
	PendingHaul    SpawnToken `json:"-"`
}

func (m *MiningMission) Describe(ctx *Context, self store.Entity) string {
	return fmt.Sprintf("mining %s: %d harvesters, %d haulers", m.Region, len(m.Harvesters), len(m.Haulers))
}

func (m *MiningMission) PreRun(ctx *Context, self store.Entity) error {
	m.Harvesters = pruneDead(ctx, m.Harvesters)
	m.Haulers = pruneDead(ctx, m.Haulers)
	return nil
}

func (m *MiningMission) Run(ctx *Context, self store.Entity) (TaskState, error) {
	obs, ok := ctx.World.Region(m.Region)
	if !ok || !obs.Visible {
		ctx.Visibility.Request(m.Region, VisibilityHigh)
		return TaskRunning, nil
	}

	bySource := map[string]int{}
	for _, he := range m.Harvesters {
		if j, ok := ctx.Jobs.Get(he); ok && j.Harvest != nil {
			bySource[j.Harvest.Source]++
		}
	}
	haulBySource := map[string]int{}
	for _, he := range m.Haulers {
		if j, ok := ctx.Jobs.Get(he); ok && j.Haul != nil {
			haulBySource[j.Haul.Source]++
		}
	}

	for _, src := range obs.Sources {
		if bySource[src.ID] < ctx.Config.Mining.HarvestersPerSource && m.PendingHarvest == 0 {
			m.PendingHarvest = m.requestHarvester(ctx, self, src.ID)
		}
		if haulBySource[src.ID] < ctx.Config.Mining.HaulersPerSource && m.PendingHaul == 0 {
			m.PendingHaul = m.requestHauler(ctx, self, src.ID)
		}
	}
	return TaskRunning, nil
}

func (m *MiningMission) requestHarvester(ctx *Context, self store.Entity, source string) SpawnToken {
	region := m.Region
	return ctx.Spawns.Request(SpawnRequest{
		Region:     m.Home,
		Priority:   SpawnPriorityCritical,
		NamePrefix: "harvest",
		Body:       ScaleBody([]string{"WORK", "CARRY", "MOVE"}, []string{"WORK", "MOVE"}, 550),
		Completion: func(c *Context, name string, unit store.Entity) {
			c.Jobs.Set(unit, &JobData{Harvest: &HarvestJob{Region: region, Source: source}})
			c.SetOwner(unit, OwnerMission, self)
			if md, ok := c.Missions.Get(self); ok && md.Mining != nil {
				md.Mining.Harvesters = append(md.Mining.Harvesters, unit)
				md.Mining.PendingHarvest = 0
			}
		},
	})
}

func (m *MiningMission) requestHauler(ctx *Context, self store.Entity, source string) SpawnToken {
	region, home := m.Region, m.Home
	return ctx.Spawns.Request(SpawnRequest{
		Region:     m.Home,
		Priority:   SpawnPriorityHigh,
		NamePrefix: "haul",
		Body:       ScaleBody([]string{"CARRY", "CARRY", "MOVE"}, []string{"CARRY", "MOVE"}, 500),
		Completion: func(c *Context, name string, unit store.Entity) {
			c.Jobs.Set(unit, &JobData{Haul: &HaulJob{Region: region, Home: home, Source: source}})
			c.SetOwner(unit, OwnerMission, self)
			if md, ok := c.Missions.Get(self); ok && md.Mining != nil {
				md.Mining.Haulers = append(md.Mining.Haulers, unit)
				md.Mining.PendingHaul = 0
			}
		},
	})
}

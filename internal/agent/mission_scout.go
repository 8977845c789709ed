package agent

import (
	"fmt"

	"overseer/internal/engine/store"
)

// ScoutMission maintains a small pool of scouts working the visibility
// queue.
type ScoutMission struct {
	Home   string         `json:"home"`
	Scouts []store.Entity `json:"scouts"`

	Pending SpawnToken `json:"-"`
}

func (m *ScoutMission) Describe(ctx *Context, self store.Entity) string {
	return fmt.Sprintf("scouting from %s (%d scouts)", m.Home, len(m.Scouts))
}

func (m *ScoutMission) PreRun(ctx *Context, self store.Entity) error {
	m.Scouts = pruneDead(ctx, m.Scouts)
	return nil
}

func (m *ScoutMission) Run(ctx *Context, self store.Entity) (TaskState, error) {
	open := len(ctx.Visibility.Unclaimed())
	if open == 0 && len(m.Scouts) == 0 {
		// All quiet; dissolve and let the directive recreate us when the
		// map goes stale again.
		return TaskDone, nil
	}
	want := ctx.Config.Scouting.MaxScouts
	if want > open {
		want = open
	}
	if len(m.Scouts)+pendingCount(m.Pending) < want {
		m.Pending = ctx.Spawns.Request(SpawnRequest{
			Region:     m.Home,
			Priority:   SpawnPriorityLow,
			NamePrefix: "scout",
			Body:       []string{"MOVE"},
			Completion: func(c *Context, name string, unit store.Entity) {
				c.Jobs.Set(unit, &JobData{Scout: &ScoutJob{}})
				c.SetOwner(unit, OwnerMission, self)
				if md, ok := c.Missions.Get(self); ok && md.Scout != nil {
					md.Scout.Scouts = append(md.Scout.Scouts, unit)
					md.Scout.Pending = 0
				}
			},
		})
	}
	return TaskRunning, nil
}

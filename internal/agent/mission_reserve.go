package agent

import (
	"fmt"

	"overseer/internal/engine/store"
)

// reserveRefreshTicks is the reservation level below which a fresh
// reserver gets requested.
const reserveRefreshTicks = 1000

// ReserveMission keeps a remote region's controller reserved so its
// sources run at full capacity.
type ReserveMission struct {
	Region    string         `json:"region"`
	Home      string         `json:"home"`
	Reservers []store.Entity `json:"reservers"`

	Pending SpawnToken `json:"-"`
}

func (m *ReserveMission) Describe(ctx *Context, self store.Entity) string {
	return fmt.Sprintf("reserve %s from %s (%d reservers)", m.Region, m.Home, len(m.Reservers))
}

func (m *ReserveMission) PreRun(ctx *Context, self store.Entity) error {
	m.Reservers = pruneDead(ctx, m.Reservers)
	return nil
}

func (m *ReserveMission) Run(ctx *Context, self store.Entity) (TaskState, error) {
	obs, ok := ctx.World.Region(m.Region)
	if ok && obs.Visible && obs.Controller != nil {
		res := obs.Controller.Reservation
		if res != nil && res.Player == ctx.World.Player() && res.TicksLeft > reserveRefreshTicks {
			return TaskRunning, nil
		}
		if obs.Controller.Owner != "" && obs.Controller.Owner != ctx.World.Player() {
			ctx.Cleanup.PushRecursive(self)
			return TaskDone, nil
		}
	}
	if len(m.Reservers)+pendingCount(m.Pending) < 1 {
		region := m.Region
		m.Pending = ctx.Spawns.Request(SpawnRequest{
			Region:     m.Home,
			Priority:   SpawnPriorityLow,
			NamePrefix: "reserve",
			Body:       []string{"CLAIM", "CLAIM", "MOVE", "MOVE"},
			Completion: func(c *Context, name string, unit store.Entity) {
				c.Jobs.Set(unit, &JobData{Reserve: &ReserveJob{Target: region}})
				c.SetOwner(unit, OwnerMission, self)
				if md, ok := c.Missions.Get(self); ok && md.Reserve != nil {
					md.Reserve.Reservers = append(md.Reserve.Reservers, unit)
					md.Reserve.Pending = 0
				}
			},
		})
	}
	return TaskRunning, nil
}

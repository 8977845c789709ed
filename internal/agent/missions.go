package agent

import "overseer/internal/engine/store"

// Mission is the capability interface of mid-level tasks.
type Mission interface {
	Describe(ctx *Context, self store.Entity) string
	PreRun(ctx *Context, self store.Entity) error
	Run(ctx *Context, self store.Entity) (TaskState, error)
}

// MissionData is the closed union of mission kinds. Exactly one field is
// non-nil.
type MissionData struct {
	Claim   *ClaimMission   `json:"claim,omitempty"`
	Mining  *MiningMission  `json:"mining,omitempty"`
	Upgrade *UpgradeMission `json:"upgrade,omitempty"`
	Build   *BuildMission   `json:"build,omitempty"`
	Reserve *ReserveMission `json:"reserve,omitempty"`
	Scout   *ScoutMission   `json:"scout,omitempty"`
}

func (m *MissionData) Mission() Mission {
	switch {
	case m.Claim != nil:
		return m.Claim
	case m.Mining != nil:
		return m.Mining
	case m.Upgrade != nil:
		return m.Upgrade
	case m.Build != nil:
		return m.Build
	case m.Reserve != nil:
		return m.Reserve
	case m.Scout != nil:
		return m.Scout
	}
	return nil
}

func (m *MissionData) Kind() string {
	switch {
	case m.Claim != nil:
		return "claim"
	case m.Mining != nil:
		return "mining"
	case m.Upgrade != nil:
		return "upgrade"
	case m.Build != nil:
		return "build"
	case m.Reserve != nil:
		return "reserve"
	case m.Scout != nil:
		return "scout"
	}
	return "empty"
}

func preRunMissions(ctx *Context) {
	for _, e := range sortedByMarker(ctx.Arena, ctx.Missions) {
		m, ok := ctx.Missions.Get(e)
		if !ok || m.Mission() == nil {
			ctx.Invariant("mission %v has empty union", e)
			continue
		}
		if err := m.Mission().PreRun(ctx, e); err != nil {
			ctx.Log.Printf("ERROR: mission %v (%s) pre_run: %v", e, m.Kind(), err)
		}
	}
}

func runMissions(ctx *Context) {
	for _, e := range sortedByMarker(ctx.Arena, ctx.Missions) {
		m, ok := ctx.Missions.Get(e)
		if !ok || m.Mission() == nil {
			continue
		}
		ctx.Report.Task("mission %s %v: %s", m.Kind(), e, m.Mission().Describe(ctx, e))
		state, err := m.Mission().Run(ctx, e)
		if err != nil {
			ctx.Log.Printf("ERROR: mission %v (%s) run: %v", e, m.Kind(), err)
			continue
		}
		switch state {
		case TaskDone:
			ctx.Report.Decision("mission %s %v complete: %s", m.Kind(), e, m.Mission().Describe(ctx, e))
			completeTask(ctx, e)
		case TaskReplaced:
			ctx.Report.Decision("mission %s %v replaced", m.Kind(), e)
		}
	}
}

// pruneDead drops entries from a mission's entity list whose entities have
// died. Generational handles make this safe against slot reuse.
func pruneDead(ctx *Context, list []store.Entity) []store.Entity {
	out := list[:0]
	for _, e := range list {
		if ctx.Arena.Alive(e) {
			out = append(out, e)
		}
	}
	return out
}

package agent

import (
	"fmt"

	"overseer/internal/engine/machine"
	"overseer/internal/engine/store"
	"overseer/internal/protocol"
)

const phaseBuild = "build"

// BuildJob works construction sites in a region. When the last site
// finishes the job replaces itself with an upgrade job so the body is not
// wasted.
type BuildJob struct {
	Region string `json:"region"`
	Phase  string `json:"phase,omitempty"`
}

func (j *BuildJob) Describe(ctx *Context, self store.Entity) string {
	return fmt.Sprintf("build %s [%s]", j.Region, j.Phase)
}

func (j *BuildJob) Run(ctx *Context, self store.Entity, unit *protocol.UnitObs, flags *ActionFlags) (TaskState, error) {
	if unit.Region == j.Region {
		if obs, ok := ctx.World.Region(j.Region); ok && obs.Visible && len(obs.Sites) == 0 {
			region := j.Region
			ctx.Defer(func(c *Context) {
				c.Jobs.Set(self, &JobData{Upgrade: &UpgradeJob{Region: region}})
			})
			return TaskReplaced, nil
		}
	}
	machine.Run(ctx.Log, "build "+unit.Name, j, func(s *BuildJob) *BuildJob {
		if unit.Region != s.Region {
			moveToRegion(ctx, flags, unit, s.Region)
			return nil
		}
		obs, ok := ctx.World.Region(s.Region)
		if !ok || !obs.Visible {
			return nil
		}
		switch s.Phase {
		case phaseCollect, "":
			if full(unit) {
				next := *s
				next.Phase = phaseBuild
				return &next
			}
			collectEnergy(ctx, flags, unit, obs)
			return nil
		case phaseBuild:
			if empty(unit) {
				next := *s
				next.Phase = phaseCollect
				return &next
			}
			if len(obs.Sites) == 0 {
				return nil
			}
			site := obs.Sites[0]
			code := submit(ctx, flags, ActionBuild, protocol.ActionReq{
				Unit: unit.Name, Op: protocol.OpBuild, TargetID: site.ID,
			})
			if code == protocol.ErrNotInRange {
				moveTo(ctx, flags, unit, site.Pos)
			}
			return nil
		default:
			next := *s
			next.Phase = phaseCollect
			return &next
		}
	})
	return TaskRunning, nil
}

package agent

import "overseer/internal/engine/store"

// Directive is the capability interface of top-level tasks. Describe must
// not mutate task state; PreRun resolves transient world references; Run
// advances the task one tick.
type Directive interface {
	Describe(ctx *Context, self store.Entity) string
	PreRun(ctx *Context, self store.Entity) error
	Run(ctx *Context, self store.Entity) (TaskState, error)
}

// DirectiveData is the closed union of directive kinds. Exactly one field
// is non-nil. Adding a kind means one field here, one arm in Directive(),
// one concrete type; the systems never see concrete kinds.
type DirectiveData struct {
	Claim  *ClaimDirective         `json:"claim,omitempty"`
	Colony *ColonyDirective        `json:"colony,omitempty"`
	Mining *MiningOutpostDirective `json:"mining,omitempty"`
	Scout  *ScoutDirective         `json:"scout,omitempty"`
}

// Directive returns the active variant as the capability interface.
func (d *DirectiveData) Directive() Directive {
	switch {
	case d.Claim != nil:
		return d.Claim
	case d.Colony != nil:
		return d.Colony
	case d.Mining != nil:
		return d.Mining
	case d.Scout != nil:
		return d.Scout
	}
	return nil
}

func (d *DirectiveData) Kind() string {
	switch {
	case d.Claim != nil:
		return "claim"
	case d.Colony != nil:
		return "colony"
	case d.Mining != nil:
		return "mining_outpost"
	case d.Scout != nil:
		return "scout"
	}
	return "empty"
}

// preRunDirectives runs every directive's setup step. Failures are logged
// and the directive retried next tick.
func preRunDirectives(ctx *Context) {
	for _, e := range sortedByMarker(ctx.Arena, ctx.Directives) {
		d, ok := ctx.Directives.Get(e)
		if !ok || d.Directive() == nil {
			ctx.Invariant("directive %v has empty union", e)
			continue
		}
		if err := d.Directive().PreRun(ctx, e); err != nil {
			ctx.Log.Printf("ERROR: directive %v (%s) pre_run: %v", e, d.Kind(), err)
		}
	}
}

// runDirectives advances every directive. A done directive notifies its
// owned missions and is queued for removal.
func runDirectives(ctx *Context) {
	for _, e := range sortedByMarker(ctx.Arena, ctx.Directives) {
		d, ok := ctx.Directives.Get(e)
		if !ok || d.Directive() == nil {
			continue
		}
		ctx.Report.Task("directive %s %v: %s", d.Kind(), e, d.Directive().Describe(ctx, e))
		state, err := d.Directive().Run(ctx, e)
		if err != nil {
			ctx.Log.Printf("ERROR: directive %v (%s) run: %v", e, d.Kind(), err)
			continue
		}
		switch state {
		case TaskDone:
			ctx.Report.Decision("directive %s %v complete: %s", d.Kind(), e, d.Directive().Describe(ctx, e))
			completeTask(ctx, e)
		case TaskReplaced:
			ctx.Report.Decision("directive %s %v replaced", d.Kind(), e)
		}
	}
}

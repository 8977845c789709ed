package agent

import (
	"fmt"

	"overseer/internal/engine/store"
)

// OwnerKind tags an ownership reference.
type OwnerKind int

const (
	OwnerNone OwnerKind = iota
	OwnerDirective
	OwnerMission
)

func (k OwnerKind) String() string {
	switch k {
	case OwnerDirective:
		return "directive"
	case OwnerMission:
		return "mission"
	default:
		return "none"
	}
}

// Owner is the ownership attribute: which task entity, if any, owns this
// one. An unowned task free-runs; cancellation is always the owner's call.
type Owner struct {
	Kind   OwnerKind    `json:"kind"`
	Entity store.Entity `json:"entity"`
}

func (o Owner) IsNone() bool { return o.Kind == OwnerNone }

func (o Owner) String() string {
	if o.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%s %v", o.Kind, o.Entity)
}

// SetOwner records task as owned by owner.
func (c *Context) SetOwner(task store.Entity, kind OwnerKind, owner store.Entity) {
	c.Owners.Set(task, &Owner{Kind: kind, Entity: owner})
}

// GetOwner returns the task's ownership reference, OwnerNone when absent.
func (c *Context) GetOwner(task store.Entity) Owner {
	if o, ok := c.Owners.Get(task); ok {
		return *o
	}
	return Owner{}
}

// OwnerComplete is called on a task immediately before its owner finishes
// or is destroyed. The notified owner must match the recorded one; a
// mismatch is an invariant violation and the reference is left untouched.
// On a match the reference clears and the task free-runs from here on.
func (c *Context) OwnerComplete(task, owner store.Entity) {
	rec := c.GetOwner(task)
	if rec.IsNone() || rec.Entity != owner {
		c.Invariant("owner_complete on %v: notified owner %v does not match recorded %s", task, owner, rec)
		return
	}
	c.Owners.Set(task, &Owner{})
}

// ownedBy lists every live task whose ownership reference points at owner.
func (c *Context) ownedBy(owner store.Entity) []store.Entity {
	var out []store.Entity
	c.Owners.Each(func(e store.Entity, o *Owner) bool {
		if !o.IsNone() && o.Entity == owner && c.Arena.Alive(e) {
			out = append(out, e)
		}
		return true
	})
	return out
}

// checkOwnerIntegrity flags ownership references whose target is dead or
// no longer holds the claimed attribute; the reference is cleared so the
// orphan keeps running instead of dereferencing a recycled entity.
func (c *Context) checkOwnerIntegrity() {
	c.Owners.Each(func(e store.Entity, o *Owner) bool {
		if o.IsNone() {
			return true
		}
		if !c.Arena.Alive(e) {
			return true
		}
		bad := !c.Arena.Alive(o.Entity)
		if !bad {
			switch o.Kind {
			case OwnerDirective:
				bad = !c.Directives.Has(o.Entity)
			case OwnerMission:
				bad = !c.Missions.Has(o.Entity)
			}
		}
		if bad {
			c.Invariant("task %v holds dangling owner reference %s", e, *o)
			c.Owners.Set(e, &Owner{})
		}
		return true
	})
}

package agent

import "overseer/internal/engine/store"

// MaxCascadeIterations bounds recursive teardown expansion. A hierarchy
// deeper than this indicates a cycle in ownership references.
const MaxCascadeIterations = 20

// CleanupQueue collects entities to remove at end of tick. Removal always
// runs the owner_complete handshake on owned tasks first, so no reference
// ever dangles past the tick its target died in.
type CleanupQueue struct {
	entries   []store.Entity
	recursive []store.Entity
}

func NewCleanupQueue() *CleanupQueue {
	return &CleanupQueue{}
}

// Push queues one entity for removal. Tasks it owns are orphaned, not
// removed.
func (q *CleanupQueue) Push(e store.Entity) {
	q.entries = append(q.entries, e)
}

// PushRecursive queues an entity and everything it transitively owns.
// Owners use this for full teardown of a subtree.
func (q *CleanupQueue) PushRecursive(e store.Entity) {
	q.recursive = append(q.recursive, e)
}

func (q *CleanupQueue) Len() int { return len(q.entries) + len(q.recursive) }

func (q *CleanupQueue) queuedRecursive(e store.Entity) bool {
	for _, r := range q.recursive {
		if r == e {
			return true
		}
	}
	return false
}

// processCleanup drains the queue: expands recursive entries, orders the
// set children-first, runs owner_complete handshakes and destroys.
func processCleanup(ctx *Context) {
	q := ctx.Cleanup
	if q.Len() == 0 {
		return
	}
	doomed := map[store.Entity]bool{}
	for _, e := range q.entries {
		doomed[e] = true
	}

	frontier := append([]store.Entity(nil), q.recursive...)
	for _, e := range frontier {
		doomed[e] = true
	}
	for iter := 0; len(frontier) > 0; iter++ {
		if iter >= MaxCascadeIterations {
			ctx.Invariant("cleanup cascade exceeded %d iterations, ownership cycle suspected", MaxCascadeIterations)
			break
		}
		var next []store.Entity
		for _, e := range frontier {
			for _, child := range ctx.ownedBy(e) {
				if !doomed[child] {
					doomed[child] = true
					next = append(next, child)
				}
			}
		}
		frontier = next
	}
	q.entries = nil
	q.recursive = nil

	// Children before parents so a child's handshake always sees a live
	// owner.
	var jobs, missions, directives, rest []store.Entity
	for e := range doomed {
		if !ctx.Arena.Alive(e) {
			continue
		}
		switch {
		case ctx.Jobs.Has(e):
			jobs = append(jobs, e)
		case ctx.Missions.Has(e):
			missions = append(missions, e)
		case ctx.Directives.Has(e):
			directives = append(directives, e)
		default:
			rest = append(rest, e)
		}
	}
	for _, group := range [][]store.Entity{jobs, rest, missions, directives} {
		for _, e := range group {
			for _, child := range ctx.ownedBy(e) {
				ctx.OwnerComplete(child, e)
			}
			ctx.Report.Removed++
			ctx.DestroyEntity(e)
		}
	}
}

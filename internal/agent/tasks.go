package agent

import (
	"sort"

	"overseer/internal/engine/store"
)

// TaskState is the ternary result of a task's run step.
type TaskState int

const (
	// TaskRunning: the task persists unchanged and resumes next tick.
	TaskRunning TaskState = iota
	// TaskDone: the task finished; its children are notified and its
	// attribute removed this tick.
	TaskDone
	// TaskReplaced: the task finished by swapping its own attribute for a
	// successor (applied via Defer); the entity survives untouched.
	TaskReplaced
)

// sortedByMarker returns a table's entities ordered by their stable
// markers. Systems iterate in this order so runs are reproducible and
// logs diff cleanly across ticks.
func sortedByMarker[T any](arena *store.Arena, t *store.Table[T]) []store.Entity {
	es := t.Entities()
	sort.Slice(es, func(i, j int) bool {
		return arena.Marker(es[i]) < arena.Marker(es[j])
	})
	return es
}

// completeTask runs the completion step for a finishing task: every task
// owned by it gets owner_complete (and free-runs afterwards), then the
// entity is queued for removal at end of tick.
func completeTask(ctx *Context, e store.Entity) {
	// A task already queued for recursive teardown takes its children with
	// it; orphaning them here would detach them before the cascade expands.
	if ctx.Cleanup.queuedRecursive(e) {
		return
	}
	for _, child := range ctx.ownedBy(e) {
		ctx.OwnerComplete(child, e)
	}
	ctx.Cleanup.Push(e)
}

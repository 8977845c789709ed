package agent

import (
	"fmt"
	"strings"
	"testing"

	"overseer/internal/engine/store"
)

func TestOwnerCompleteMismatchLeavesReference(t *testing.T) {
	ctx, _, _, logs := newTestContext(t)
	task := ctx.Arena.Create()
	owner := ctx.Arena.Create()
	stranger := ctx.Arena.Create()
	ctx.SetOwner(task, OwnerMission, owner)

	ctx.OwnerComplete(task, stranger)
	if ctx.InvariantCount() != 1 {
		t.Fatalf("invariants = %d, want 1", ctx.InvariantCount())
	}
	if got := ctx.GetOwner(task); got.Entity != owner {
		t.Fatalf("mismatched handshake mutated owner: %s", got)
	}
	if !strings.Contains(logs.String(), "INVARIANT") {
		t.Fatalf("mismatch not logged: %q", logs.String())
	}

	ctx.OwnerComplete(task, owner)
	if got := ctx.GetOwner(task); !got.IsNone() {
		t.Fatalf("matching handshake did not clear owner: %s", got)
	}
}

func TestCompleteTaskOrphansChildren(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	dir := ctx.Arena.Create()
	ctx.Directives.Set(dir, &DirectiveData{Scout: &ScoutDirective{}})
	m1 := ctx.Arena.Create()
	ctx.Missions.Set(m1, &MissionData{Scout: &ScoutMission{}})
	ctx.SetOwner(m1, OwnerDirective, dir)
	m2 := ctx.Arena.Create()
	ctx.Missions.Set(m2, &MissionData{Scout: &ScoutMission{}})
	ctx.SetOwner(m2, OwnerDirective, dir)

	completeTask(ctx, dir)
	processCleanup(ctx)

	if ctx.Arena.Alive(dir) {
		t.Fatalf("completed directive still alive")
	}
	for _, m := range []store.Entity{m1, m2} {
		if !ctx.Arena.Alive(m) {
			t.Fatalf("child mission %v destroyed by owner completion", m)
		}
		if got := ctx.GetOwner(m); !got.IsNone() {
			t.Fatalf("orphaned mission %v still has owner %s", m, got)
		}
	}
	if ctx.InvariantCount() != 0 {
		t.Fatalf("unexpected invariants: %d", ctx.InvariantCount())
	}
}

func TestPushRecursiveTearsDownSubtree(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	dir := ctx.Arena.Create()
	ctx.Directives.Set(dir, &DirectiveData{Colony: &ColonyDirective{Region: "W1N1"}})
	mis := ctx.Arena.Create()
	ctx.Missions.Set(mis, &MissionData{Upgrade: &UpgradeMission{Region: "W1N1"}})
	ctx.SetOwner(mis, OwnerDirective, dir)
	job := ctx.Arena.Create()
	ctx.Jobs.Set(job, &JobData{Upgrade: &UpgradeJob{Region: "W1N1"}})
	ctx.Units.Set(job, &UnitData{Name: "u1", Seen: true})
	ctx.SetOwner(job, OwnerMission, mis)

	ctx.Cleanup.PushRecursive(dir)
	processCleanup(ctx)

	for _, e := range []store.Entity{dir, mis, job} {
		if ctx.Arena.Alive(e) {
			t.Fatalf("entity %v survived recursive teardown", e)
		}
	}
	if ctx.Report.Removed != 3 {
		t.Fatalf("Removed = %d, want 3", ctx.Report.Removed)
	}
	if ctx.InvariantCount() != 0 {
		t.Fatalf("clean teardown raised %d invariants", ctx.InvariantCount())
	}
	if ctx.Jobs.Len() != 0 || ctx.Units.Len() != 0 {
		t.Fatalf("attribute tables not emptied: jobs=%d units=%d", ctx.Jobs.Len(), ctx.Units.Len())
	}
}

func TestTeardownWinsOverCompletionOrphaning(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	mis := ctx.Arena.Create()
	ctx.Missions.Set(mis, &MissionData{Claim: &ClaimMission{Target: "W5N5"}})
	job := ctx.Arena.Create()
	ctx.Jobs.Set(job, &JobData{Claim: &ClaimJob{Target: "W5N5"}})
	ctx.Units.Set(job, &UnitData{Name: "c1", Seen: true})
	ctx.SetOwner(job, OwnerMission, mis)

	// A mission abandoning its target queues its own teardown and then
	// finishes; the cascade must still take the job with it.
	ctx.Cleanup.PushRecursive(mis)
	completeTask(ctx, mis)
	processCleanup(ctx)

	if ctx.Arena.Alive(mis) || ctx.Arena.Alive(job) {
		t.Fatalf("teardown left survivors: mission=%v job=%v", ctx.Arena.Alive(mis), ctx.Arena.Alive(job))
	}
	if ctx.InvariantCount() != 0 {
		t.Fatalf("teardown raised %d invariants", ctx.InvariantCount())
	}
}

func TestCleanupCascadeDepthBounded(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	chain := make([]store.Entity, MaxCascadeIterations+5)
	for i := range chain {
		chain[i] = ctx.Arena.Create()
		ctx.Missions.Set(chain[i], &MissionData{Scout: &ScoutMission{}})
		if i > 0 {
			ctx.SetOwner(chain[i], OwnerMission, chain[i-1])
		}
	}

	ctx.Cleanup.PushRecursive(chain[0])
	processCleanup(ctx)

	if ctx.InvariantCount() == 0 {
		t.Fatalf("overlong cascade not flagged")
	}
	if !ctx.Arena.Alive(chain[len(chain)-1]) {
		t.Fatalf("entities past the iteration cap should survive the pass")
	}
}

func TestCheckOwnerIntegrityClearsDanglingRefs(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	dir := ctx.Arena.Create()
	ctx.Directives.Set(dir, &DirectiveData{Scout: &ScoutDirective{}})
	missions := make([]store.Entity, 2)
	for i := range missions {
		missions[i] = ctx.Arena.Create()
		ctx.Missions.Set(missions[i], &MissionData{Scout: &ScoutMission{}})
		ctx.SetOwner(missions[i], OwnerDirective, dir)
	}
	jobs := make([]store.Entity, 3)
	for i := range jobs {
		jobs[i] = ctx.Arena.Create()
		ctx.Jobs.Set(jobs[i], &JobData{Scout: &ScoutJob{}})
		ctx.Units.Set(jobs[i], &UnitData{Name: fmt.Sprintf("s%d", i), Seen: true})
		ctx.SetOwner(jobs[i], OwnerMission, missions[i%2])
	}

	// Rip the middle of the hierarchy out without any handshake, as a bug
	// would.
	for _, m := range missions {
		ctx.DestroyEntity(m)
	}
	ctx.checkOwnerIntegrity()

	if ctx.InvariantCount() != 3 {
		t.Fatalf("invariants = %d, want one per dangling job", ctx.InvariantCount())
	}
	for _, j := range jobs {
		if !ctx.Arena.Alive(j) {
			t.Fatalf("job %v destroyed by integrity sweep", j)
		}
		if got := ctx.GetOwner(j); !got.IsNone() {
			t.Fatalf("dangling reference on %v not cleared: %s", j, got)
		}
	}
}

func TestOwnerIntegrityIgnoresCleanReferences(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	mis := ctx.Arena.Create()
	ctx.Missions.Set(mis, &MissionData{Scout: &ScoutMission{}})
	job := ctx.Arena.Create()
	ctx.Jobs.Set(job, &JobData{Scout: &ScoutJob{}})
	ctx.SetOwner(job, OwnerMission, mis)

	ctx.checkOwnerIntegrity()
	if ctx.InvariantCount() != 0 {
		t.Fatalf("healthy reference flagged: %d invariants", ctx.InvariantCount())
	}
	if got := ctx.GetOwner(job); got.Entity != mis {
		t.Fatalf("healthy reference mutated: %s", got)
	}
}

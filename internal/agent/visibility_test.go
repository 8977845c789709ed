package agent

import (
	"testing"

	"overseer/internal/protocol"
)

func TestVisibilityQueuePriorityAndClaims(t *testing.T) {
	q := NewVisibilityQueue()
	q.Request("W2N1", VisibilityLow)
	q.Request("W3N1", VisibilityCritical)
	q.Request("W4N1", VisibilityMedium)
	q.Request("W2N1", VisibilityHigh) // upgrade in place
	q.Request("W2N1", VisibilityLow)  // never downgrades

	open := q.Unclaimed()
	want := []string{"W3N1", "W2N1", "W4N1"}
	if len(open) != len(want) {
		t.Fatalf("open = %v", open)
	}
	for i := range want {
		if open[i] != want[i] {
			t.Fatalf("open = %v, want %v", open, want)
		}
	}

	if !q.Claim("W3N1") {
		t.Fatalf("claim of open request failed")
	}
	if q.Claim("W3N1") {
		t.Fatalf("double claim succeeded")
	}
	if q.Claim("E9N9") {
		t.Fatalf("claim of absent request succeeded")
	}
	open = q.Unclaimed()
	if len(open) != 2 || open[0] != "W2N1" {
		t.Fatalf("open after claim = %v", open)
	}

	q.Release("W3N1")
	if !q.Claim("W3N1") {
		t.Fatalf("claim after release failed")
	}
}

func TestPruneVisibilityDropsVisibleAndResetsClaims(t *testing.T) {
	ctx, world, _, _ := newTestContext(t)
	world.addRegion(protocol.RegionObs{Name: "W2N1", Visible: true, Disposition: protocol.DispNeutral})

	ctx.Visibility.Request("W2N1", VisibilityHigh)
	ctx.Visibility.Request("W3N1", VisibilityHigh)
	ctx.Visibility.Claim("W3N1")

	pruneVisibility(ctx)

	if ctx.Visibility.Len() != 1 {
		t.Fatalf("visible region's request not dropped: %d open", ctx.Visibility.Len())
	}
	// Claims last one tick; a dead scout's claim lapses on its own.
	if !ctx.Visibility.Claim("W3N1") {
		t.Fatalf("claim did not reset across the tick")
	}
}

func TestActionFlagsOverlap(t *testing.T) {
	var f ActionFlags
	if !f.Consume(ActionHarvest) {
		t.Fatalf("first harvest refused")
	}
	if f.Consume(ActionBuild) {
		t.Fatalf("build allowed after harvest despite shared work pipeline")
	}
	if f.Consume(ActionHarvest) {
		t.Fatalf("second harvest allowed")
	}
	if !f.Consume(ActionMove) {
		t.Fatalf("move refused though its pipeline is free")
	}
	if !f.Consume(ActionClaim) {
		t.Fatalf("claim refused though its pipeline is free")
	}

	var g ActionFlags
	if !g.Consume(ActionTransfer) || g.Consume(ActionWithdraw) {
		t.Fatalf("transfer and withdraw should share the store pipeline")
	}
}

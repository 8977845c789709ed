package memory

import (
	"bytes"
	"log"
	"sort"
	"strings"
	"testing"
)

// fakePlatform models the host's one-tick activation latency: a requested
// set becomes readable only after step().
type fakePlatform struct {
	data    map[int]string
	active  map[int]bool
	pending []int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{data: map[int]string{}, active: map[int]bool{}}
}

func (p *fakePlatform) ActiveSegments() []int {
	out := []int{}
	for id := range p.active {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func (p *fakePlatform) Read(id int) (string, bool) {
	if !p.active[id] {
		return "", false
	}
	d, ok := p.data[id]
	return d, ok
}

func (p *fakePlatform) Write(id int, data string) { p.data[id] = data }

func (p *fakePlatform) SetActiveSegments(ids []int) { p.pending = append([]int(nil), ids...) }

func (p *fakePlatform) step() {
	p.active = map[int]bool{}
	for _, id := range p.pending {
		p.active[id] = true
	}
}

func newArbiter(p Platform) (*Arbiter, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewArbiter(p, log.New(&buf, "", 0)), &buf
}

func TestRequestActivationLatency(t *testing.T) {
	p := newFakePlatform()
	a, _ := newArbiter(p)
	p.data[3] = "three"
	p.data[7] = "seven"

	// Tick 1: request, nothing readable yet.
	a.Request(3, 7)
	if a.IsActive(3) || a.IsActive(7) {
		t.Fatalf("segments active before flush+step")
	}
	if _, ok := a.Get(3); ok {
		t.Fatalf("read served before activation")
	}
	a.Flush()
	p.step()

	// Tick 2: both readable.
	if !a.IsActive(3) || !a.IsActive(7) {
		t.Fatalf("segments not active one tick after request")
	}
	if d, ok := a.Get(7); !ok || d != "seven" {
		t.Fatalf("Get(7) = %q, %v", d, ok)
	}
}

func TestActiveSnapshotConsistentWithinTick(t *testing.T) {
	p := newFakePlatform()
	a, _ := newArbiter(p)
	p.active[5] = true
	if !a.IsActive(5) {
		t.Fatalf("segment 5 should be active")
	}
	// Platform changes mid-tick must not be visible until the next tick.
	p.active = map[int]bool{}
	if !a.IsActive(5) {
		t.Fatalf("active snapshot changed mid-tick")
	}
	a.Flush()
	if a.IsActive(5) {
		t.Fatalf("snapshot survived flush")
	}
}

func TestSetOversizeDropped(t *testing.T) {
	p := newFakePlatform()
	a, buf := newArbiter(p)
	big := strings.Repeat("x", SegmentCapacity+1)
	a.Set(9, big)
	if _, ok := p.data[9]; ok {
		t.Fatalf("oversize write reached the platform")
	}
	if !strings.Contains(buf.String(), "ERROR") {
		t.Fatalf("oversize write not logged: %q", buf.String())
	}

	exact := strings.Repeat("x", SegmentCapacity)
	a.Set(9, exact)
	if p.data[9] != exact {
		t.Fatalf("capacity-sized write rejected")
	}
}

func TestGatingAndLoadOnce(t *testing.T) {
	p := newFakePlatform()
	a, _ := newArbiter(p)
	loads := 0
	a.Register(&Requirement{
		Label:          "components",
		Segments:       []int{50, 51},
		GatesExecution: true,
		OnLoad:         func() { loads++ },
	})

	a.RequestRegistered()
	if a.GatesReady() {
		t.Fatalf("gates ready before activation")
	}
	a.RunPendingLoads()
	if loads != 0 {
		t.Fatalf("on_load fired before segments active")
	}
	a.Flush()
	p.step()

	if !a.GatesReady() {
		t.Fatalf("gates not ready after activation")
	}
	a.RunPendingLoads()
	a.RunPendingLoads()
	if loads != 1 {
		t.Fatalf("on_load fired %d times, want 1", loads)
	}

	a.ResetLoadState()
	a.RunPendingLoads()
	if loads != 2 {
		t.Fatalf("on_load did not rearm after reset")
	}
}

func TestRegisterIdempotentByLabel(t *testing.T) {
	p := newFakePlatform()
	a, _ := newArbiter(p)
	a.Register(&Requirement{Label: "x", Segments: []int{1}})
	a.Register(&Requirement{Label: "x", Segments: []int{2}})
	a.RequestRegistered()
	a.Flush()
	p.step()
	if a.IsActive(2) {
		t.Fatalf("duplicate registration replaced original requirement")
	}
	if !a.IsActive(1) {
		t.Fatalf("original requirement lost")
	}
}

package agent

import (
	"bytes"
	"log"
	"sort"
	"testing"

	"overseer/internal/engine/memory"
	"overseer/internal/protocol"
	"overseer/internal/sim/tuning"
)

// fakeWorld is an in-memory World for engine tests. It intentionally does
// not simulate game rules: actions succeed, carry never changes, and a
// spawned unit materializes in its spawn's region on the next step.
type fakeWorld struct {
	tick   uint64
	player string

	regions map[string]*protocol.RegionObs
	units   map[string]*protocol.UnitObs

	acts      []protocol.ActionReq
	spawnReqs []protocol.SpawnReq

	pending     []protocol.UnitObs
	spawnRegion map[string]string
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		player:      "tester",
		regions:     map[string]*protocol.RegionObs{},
		units:       map[string]*protocol.UnitObs{},
		spawnRegion: map[string]string{},
	}
}

// addRegion registers an observation and indexes its spawns for the
// spawn-request path.
func (w *fakeWorld) addRegion(obs protocol.RegionObs) {
	r := obs
	w.regions[r.Name] = &r
	for _, sp := range r.Spawns {
		w.spawnRegion[sp.ID] = r.Name
	}
}

func (w *fakeWorld) addUnit(u protocol.UnitObs) {
	c := u
	w.units[c.Name] = &c
}

// step advances to the next tick: pending spawns land as live units and
// per-tick action buffers clear.
func (w *fakeWorld) step() {
	w.tick++
	w.acts = nil
	w.spawnReqs = nil
	for _, u := range w.pending {
		w.addUnit(u)
	}
	w.pending = nil
}

func (w *fakeWorld) Time() uint64   { return w.tick }
func (w *fakeWorld) Player() string { return w.player }

func (w *fakeWorld) Regions() []string {
	out := make([]string, 0, len(w.regions))
	for name := range w.regions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (w *fakeWorld) Region(name string) (*protocol.RegionObs, bool) {
	r, ok := w.regions[name]
	return r, ok
}

func (w *fakeWorld) Units() []protocol.UnitObs {
	names := make([]string, 0, len(w.units))
	for n := range w.units {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]protocol.UnitObs, 0, len(names))
	for _, n := range names {
		out = append(out, *w.units[n])
	}
	return out
}

func (w *fakeWorld) Unit(name string) (*protocol.UnitObs, bool) {
	u, ok := w.units[name]
	return u, ok
}

func (w *fakeWorld) Act(req protocol.ActionReq) string {
	w.acts = append(w.acts, req)
	return protocol.CodeOK
}

func (w *fakeWorld) SpawnUnit(req protocol.SpawnReq) string {
	w.spawnReqs = append(w.spawnReqs, req)
	region := w.spawnRegion[req.SpawnID]
	w.pending = append(w.pending, protocol.UnitObs{
		ID: req.Name, Name: req.Name, Region: region,
		Body: append([]string(nil), req.Body...),
		TTL:  1500,
	})
	return protocol.CodeOK
}

func (w *fakeWorld) LinearDistance(a, b string) int { return RegionDistance(a, b) }

// segPlatform is a segment store with the host's one-tick activation
// latency.
type segPlatform struct {
	data    map[int]string
	active  map[int]bool
	pending []int
}

func newSegPlatform() *segPlatform {
	return &segPlatform{data: map[int]string{}, active: map[int]bool{}}
}

func (p *segPlatform) ActiveSegments() []int {
	out := []int{}
	for id := range p.active {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func (p *segPlatform) Read(id int) (string, bool) {
	if !p.active[id] {
		return "", false
	}
	d, ok := p.data[id]
	return d, ok
}

func (p *segPlatform) Write(id int, data string) { p.data[id] = data }

func (p *segPlatform) SetActiveSegments(ids []int) { p.pending = append([]int(nil), ids...) }

func (p *segPlatform) step() {
	p.active = map[int]bool{}
	for _, id := range p.pending {
		p.active[id] = true
	}
}

// activateAll marks every configured engine segment readable immediately,
// for tests that bypass the warmup ticks.
func (p *segPlatform) activateAll(cfg tuning.Tuning) {
	for _, s := range cfg.ComponentSegments {
		p.active[s] = true
	}
	p.active[cfg.PathCostSegment] = true
}

// harness wires a full engine against the fakes. Tests drive it one tick
// at a time with step.
type harness struct {
	t     *testing.T
	world *fakeWorld
	plat  *segPlatform
	eng   *Engine
	logs  *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		world: newFakeWorld(),
		plat:  newSegPlatform(),
		logs:  &bytes.Buffer{},
	}
	logger := log.New(h.logs, "", 0)
	h.eng = NewEngine(tuning.Default(), logger, h.world, h.plat, nil)
	return h
}

// step runs one full tick: the world advances, the engine runs, and the
// platform applies the engine's segment requests for next tick.
func (h *harness) step() {
	h.world.step()
	h.eng.Tick()
	h.plat.step()
}

func (h *harness) ctx() *Context { return h.eng.Ctx }

// homeRegion is the standard owned starting region used across tests.
func homeRegion() protocol.RegionObs {
	return protocol.RegionObs{
		Name:        "W1N1",
		Visible:     true,
		Disposition: protocol.DispMine,
		Controller: &protocol.ControllerObs{
			ID: "ctl1", Pos: protocol.Pos{X: 25, Y: 25}, Level: 2, Owner: "tester",
		},
		Sources: []protocol.SourceObs{
			{ID: "src1", Pos: protocol.Pos{X: 10, Y: 10}, Energy: 3000, EnergyCapacity: 3000},
		},
		Spawns: []protocol.SpawnObs{
			{ID: "sp1", Pos: protocol.Pos{X: 20, Y: 20}, Energy: 300, EnergyCapacity: 300},
		},
	}
}

// unitObs is a worker unit already standing in a region.
func unitObs(name, region string) protocol.UnitObs {
	return protocol.UnitObs{
		ID: name, Name: name, Region: region,
		Pos:           protocol.Pos{X: 15, Y: 15},
		Body:          []string{"WORK", "CARRY", "MOVE"},
		CarryCapacity: 50,
		TTL:           1500,
	}
}

// newTestContext builds a bare context over the fakes with every engine
// segment already active, for tests that call systems directly.
func newTestContext(t *testing.T) (*Context, *fakeWorld, *segPlatform, *bytes.Buffer) {
	t.Helper()
	world := newFakeWorld()
	plat := newSegPlatform()
	cfg := tuning.Default()
	plat.activateAll(cfg)
	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)
	ctx := NewContext(cfg, logger, world, memory.NewArbiter(plat, logger))
	return ctx, world, plat, &logs
}

package main

import (
	"overseer/internal/agent"
	"overseer/internal/protocol"
)

// session adapts one tick's OBS message into the engine's World and
// memory.Platform interfaces, accumulating the outgoing ACT as the engine
// runs. Action results are reported optimistically; the server's real
// result codes arrive with the next observation.
type session struct {
	agentID string
	player  string

	tick     uint64
	regions  map[string]*protocol.RegionObs
	units    map[string]*protocol.UnitObs
	order    []string
	segments map[int]string
	active   []int

	out protocol.ActMsg
}

func newSession() *session {
	return &session{
		regions:  map[string]*protocol.RegionObs{},
		units:    map[string]*protocol.UnitObs{},
		segments: map[int]string{},
	}
}

// load replaces the session's view with a fresh observation and resets
// the outgoing ACT.
func (s *session) load(obs *protocol.ObsMsg) {
	s.tick = obs.Tick
	s.player = obs.Player
	s.regions = map[string]*protocol.RegionObs{}
	s.order = s.order[:0]
	for i := range obs.Regions {
		r := &obs.Regions[i]
		s.regions[r.Name] = r
		s.order = append(s.order, r.Name)
	}
	s.units = map[string]*protocol.UnitObs{}
	for i := range obs.Units {
		u := &obs.Units[i]
		s.units[u.Name] = u
	}
	s.segments = map[int]string{}
	for _, seg := range obs.Segments {
		s.segments[seg.ID] = seg.Data
	}
	s.active = obs.ActiveSegments
	s.out = protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Tick:            obs.Tick,
		AgentID:         s.agentID,
	}
}

// flush returns the accumulated ACT, or nil when the tick produced
// nothing to send.
func (s *session) flush() *protocol.ActMsg {
	if len(s.out.Actions) == 0 && len(s.out.Spawns) == 0 &&
		len(s.out.SegmentWrites) == 0 && len(s.out.RequestSegments) == 0 {
		return nil
	}
	out := s.out
	return &out
}

// agent.World

func (s *session) Time() uint64   { return s.tick }
func (s *session) Player() string { return s.player }

func (s *session) Regions() []string {
	return append([]string(nil), s.order...)
}

func (s *session) Region(name string) (*protocol.RegionObs, bool) {
	r, ok := s.regions[name]
	return r, ok
}

func (s *session) Units() []protocol.UnitObs {
	out := make([]protocol.UnitObs, 0, len(s.units))
	for _, u := range s.units {
		out = append(out, *u)
	}
	return out
}

func (s *session) Unit(name string) (*protocol.UnitObs, bool) {
	u, ok := s.units[name]
	return u, ok
}

// Act checks range locally so jobs get an immediate NOT_IN_RANGE and can
// move instead; everything else is queued and reported OK, with the
// server's authoritative codes arriving next observation.
func (s *session) Act(req protocol.ActionReq) string {
	if code := s.checkRange(req); code != protocol.CodeOK {
		return code
	}
	s.out.Actions = append(s.out.Actions, req)
	return protocol.CodeOK
}

// actionRange is the maximum distance each targeted op works at.
var actionRange = map[string]int{
	protocol.OpHarvest:   1,
	protocol.OpTransfer:  1,
	protocol.OpWithdraw:  1,
	protocol.OpClaim:     1,
	protocol.OpReserve:   1,
	protocol.OpDismantle: 1,
	protocol.OpBuild:     3,
	protocol.OpUpgrade:   3,
}

func (s *session) checkRange(req protocol.ActionReq) string {
	rng, ok := actionRange[req.Op]
	if !ok || req.TargetID == "" {
		return protocol.CodeOK
	}
	unit, ok := s.units[req.Unit]
	if !ok {
		return protocol.ErrInvalidTarget
	}
	region, ok := s.regions[unit.Region]
	if !ok {
		return protocol.ErrInvalidTarget
	}
	pos, ok := targetPos(region, req.TargetID)
	if !ok {
		return protocol.ErrInvalidTarget
	}
	if chebyshev(unit.Pos, pos) > rng {
		return protocol.ErrNotInRange
	}
	return protocol.CodeOK
}

func targetPos(r *protocol.RegionObs, id string) (protocol.Pos, bool) {
	if r.Controller != nil && r.Controller.ID == id {
		return r.Controller.Pos, true
	}
	for _, src := range r.Sources {
		if src.ID == id {
			return src.Pos, true
		}
	}
	for _, sp := range r.Spawns {
		if sp.ID == id {
			return sp.Pos, true
		}
	}
	for _, site := range r.Sites {
		if site.ID == id {
			return site.Pos, true
		}
	}
	for _, st := range r.Structures {
		if st.ID == id {
			return st.Pos, true
		}
	}
	return protocol.Pos{}, false
}

func chebyshev(a, b protocol.Pos) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

func (s *session) SpawnUnit(req protocol.SpawnReq) string {
	s.out.Spawns = append(s.out.Spawns, req)
	return protocol.CodeOK
}

func (s *session) LinearDistance(a, b string) int {
	return agent.RegionDistance(a, b)
}

// memory.Platform

func (s *session) ActiveSegments() []int { return s.active }

func (s *session) Read(id int) (string, bool) {
	data, ok := s.segments[id]
	return data, ok
}

func (s *session) Write(id int, data string) {
	s.out.SegmentWrites = append(s.out.SegmentWrites, protocol.SegmentData{ID: id, Data: data})
}

func (s *session) SetActiveSegments(ids []int) {
	s.out.RequestSegments = ids
}

// Package agent implements the overseer task engine: a three-level hierarchy
// of directives, missions and jobs that plans against per-tick world
// observations and persists itself across ticks through memory segments.
package agent

import (
	"fmt"
	"strconv"

	"overseer/internal/protocol"
)

// Disposition classifies a region relative to the player.
type Disposition int

const (
	DispositionNeutral Disposition = iota
	DispositionMine
	DispositionFriendly
	DispositionHostile
	DispositionReservedMine
	DispositionReservedHostile
)

func (d Disposition) String() string {
	switch d {
	case DispositionMine:
		return protocol.DispMine
	case DispositionFriendly:
		return protocol.DispFriendly
	case DispositionHostile:
		return protocol.DispHostile
	case DispositionReservedMine:
		return protocol.DispReservedMine
	case DispositionReservedHostile:
		return protocol.DispReservedHostile
	default:
		return protocol.DispNeutral
	}
}

func ParseDisposition(s string) Disposition {
	switch s {
	case protocol.DispMine:
		return DispositionMine
	case protocol.DispFriendly:
		return DispositionFriendly
	case protocol.DispHostile:
		return DispositionHostile
	case protocol.DispReservedMine:
		return DispositionReservedMine
	case protocol.DispReservedHostile:
		return DispositionReservedHostile
	default:
		return DispositionNeutral
	}
}

// World is the engine's view of the current tick's observation plus the
// action sink. Implementations adapt a live server connection or a test
// harness.
type World interface {
	Time() uint64
	Player() string

	// Regions lists every region present in this tick's observation,
	// visible or remembered.
	Regions() []string
	Region(name string) (*protocol.RegionObs, bool)

	Units() []protocol.UnitObs
	Unit(name string) (*protocol.UnitObs, bool)

	// Act submits a unit action and returns a protocol result code.
	Act(req protocol.ActionReq) string
	// SpawnUnit submits a spawn request and returns a protocol result code.
	SpawnUnit(req protocol.SpawnReq) string

	// LinearDistance is the region-grid distance between two region names.
	LinearDistance(a, b string) int
}

// ParseRegionName splits a name like "W3N5" or "E12S4" into grid
// coordinates. West and south are negative.
func ParseRegionName(name string) (x, y int, err error) {
	if len(name) < 4 {
		return 0, 0, fmt.Errorf("bad region name %q", name)
	}
	h := name[0]
	i := 1
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	if i == 1 || i >= len(name) {
		return 0, 0, fmt.Errorf("bad region name %q", name)
	}
	xv, err := strconv.Atoi(name[1:i])
	if err != nil {
		return 0, 0, fmt.Errorf("bad region name %q", name)
	}
	v := name[i]
	yv, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return 0, 0, fmt.Errorf("bad region name %q", name)
	}
	switch h {
	case 'W':
		x = -xv - 1
	case 'E':
		x = xv
	default:
		return 0, 0, fmt.Errorf("bad region name %q", name)
	}
	switch v {
	case 'S':
		y = -yv - 1
	case 'N':
		y = yv
	default:
		return 0, 0, fmt.Errorf("bad region name %q", name)
	}
	return x, y, nil
}

// RegionDistance is the Chebyshev distance between two region names, or a
// large sentinel when either name fails to parse.
func RegionDistance(a, b string) int {
	ax, ay, err := ParseRegionName(a)
	if err != nil {
		return 1 << 20
	}
	bx, by, err := ParseRegionName(b)
	if err != nil {
		return 1 << 20
	}
	dx := ax - bx
	if dx < 0 {
		dx = -dx
	}
	dy := ay - by
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

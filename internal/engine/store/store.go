// Package store is the entity/attribute store the task engine is built on.
//
// Entities are arena-allocated handles with a generation counter: destroying
// an entity recycles its slot and bumps the generation, so stale handles held
// by other tasks fail Alive() instead of aliasing a new entity. Every entity
// also receives a stable marker -- assigned once at creation and preserved
// across snapshot/restore cycles -- which is the key used by the persistence
// layer.
package store

import "fmt"

// Entity is an opaque handle into an Arena. The zero value is never valid.
type Entity struct {
	Index uint32 `json:"i"`
	Gen   uint32 `json:"g"`
}

// Nil is the absent entity.
var Nil = Entity{}

func (e Entity) IsNil() bool { return e == Nil }

func (e Entity) String() string {
	if e.IsNil() {
		return "E(nil)"
	}
	return fmt.Sprintf("E%d.%d", e.Index, e.Gen)
}

type slot struct {
	gen    uint32
	alive  bool
	marker uint64
}

// Arena allocates entities and tracks their liveness and markers.
type Arena struct {
	slots      []slot
	free       []uint32
	byMarker   map[uint64]Entity
	nextMarker uint64
}

func NewArena() *Arena {
	return &Arena{byMarker: map[uint64]Entity{}, nextMarker: 1}
}

// Create allocates a fresh entity with a new stable marker.
func (a *Arena) Create() Entity {
	m := a.nextMarker
	a.nextMarker++
	return a.createMarked(m)
}

// CreateMarked allocates an entity carrying a pre-existing marker. Used by
// snapshot restore; the marker allocator is advanced past m so later creates
// never collide.
func (a *Arena) CreateMarked(m uint64) Entity {
	if m >= a.nextMarker {
		a.nextMarker = m + 1
	}
	return a.createMarked(m)
}

func (a *Arena) createMarked(m uint64) Entity {
	var e Entity
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[idx].alive = true
		a.slots[idx].marker = m
		e = Entity{Index: idx, Gen: a.slots[idx].gen}
	} else {
		// Generation starts at 1 so the zero Entity is never alive.
		a.slots = append(a.slots, slot{gen: 1, alive: true, marker: m})
		e = Entity{Index: uint32(len(a.slots) - 1), Gen: 1}
	}
	a.byMarker[m] = e
	return e
}

// Destroy releases the entity's slot. Returns false if the handle was stale.
func (a *Arena) Destroy(e Entity) bool {
	if !a.Alive(e) {
		return false
	}
	s := &a.slots[e.Index]
	delete(a.byMarker, s.marker)
	s.alive = false
	s.gen++
	a.free = append(a.free, e.Index)
	return true
}

func (a *Arena) Alive(e Entity) bool {
	if e.IsNil() || int(e.Index) >= len(a.slots) {
		return false
	}
	s := a.slots[e.Index]
	return s.alive && s.gen == e.Gen
}

// Marker returns the stable marker of a live entity, or 0 for a stale handle.
func (a *Arena) Marker(e Entity) uint64 {
	if !a.Alive(e) {
		return 0
	}
	return a.slots[e.Index].marker
}

func (a *Arena) ByMarker(m uint64) (Entity, bool) {
	e, ok := a.byMarker[m]
	return e, ok
}

// Len reports the number of live entities.
func (a *Arena) Len() int {
	n := 0
	for _, s := range a.slots {
		if s.alive {
			n++
		}
	}
	return n
}

// SlotImage is one arena slot in an exported image.
type SlotImage struct {
	Gen    uint32 `json:"g"`
	Alive  bool   `json:"a,omitempty"`
	Marker uint64 `json:"m,omitempty"`
}

// Image is a serializable copy of the arena. Restoring an image reproduces
// the exact slot/generation layout, so entity handles embedded in attribute
// data remain valid after a restore without rewriting.
type Image struct {
	Slots      []SlotImage `json:"slots"`
	NextMarker uint64      `json:"next_marker"`
}

func (a *Arena) Export() Image {
	img := Image{Slots: make([]SlotImage, len(a.slots)), NextMarker: a.nextMarker}
	for i, s := range a.slots {
		img.Slots[i] = SlotImage{Gen: s.gen, Alive: s.alive, Marker: s.marker}
	}
	return img
}

func (a *Arena) Restore(img Image) {
	a.slots = make([]slot, len(img.Slots))
	a.free = a.free[:0]
	a.byMarker = map[uint64]Entity{}
	a.nextMarker = img.NextMarker
	if a.nextMarker == 0 {
		a.nextMarker = 1
	}
	for i, s := range img.Slots {
		a.slots[i] = slot{gen: s.Gen, alive: s.Alive, marker: s.Marker}
		if s.Alive {
			a.byMarker[s.Marker] = Entity{Index: uint32(i), Gen: s.Gen}
		} else {
			a.free = append(a.free, uint32(i))
		}
	}
}

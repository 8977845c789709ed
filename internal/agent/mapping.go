package agent

import "overseer/internal/engine/store"

// Mapping resolves world names to task entities. Unit mappings are
// rebuilt from scratch every tick; region mappings persist and are
// reseeded after a snapshot restore.
type Mapping struct {
	unitsByName   map[string]store.Entity
	regionsByName map[string]store.Entity
}

func NewMapping() *Mapping {
	return &Mapping{
		unitsByName:   map[string]store.Entity{},
		regionsByName: map[string]store.Entity{},
	}
}

func (m *Mapping) UnitByName(name string) (store.Entity, bool) {
	e, ok := m.unitsByName[name]
	return e, ok
}

func (m *Mapping) RegionByName(name string) (store.Entity, bool) {
	e, ok := m.regionsByName[name]
	return e, ok
}

func (m *Mapping) setRegion(name string, e store.Entity) {
	m.regionsByName[name] = e
}

// rebuildMapping refreshes the name indexes from the live tables.
func rebuildMapping(ctx *Context) {
	m := ctx.Mapping
	m.unitsByName = map[string]store.Entity{}
	ctx.Units.Each(func(e store.Entity, u *UnitData) bool {
		m.unitsByName[u.Name] = e
		return true
	})
	m.regionsByName = map[string]store.Entity{}
	ctx.Regions.Each(func(e store.Entity, r *RegionData) bool {
		m.regionsByName[r.Name] = e
		return true
	})
}

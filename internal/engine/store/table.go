package store

// Table maps live entities to attribute values of one type. Iteration order
// is unspecified; callers that need determinism sort the result of Entities.
type Table[T any] struct {
	rows map[Entity]*T
}

func NewTable[T any]() *Table[T] {
	return &Table[T]{rows: map[Entity]*T{}}
}

func (t *Table[T]) Set(e Entity, v *T) {
	t.rows[e] = v
}

func (t *Table[T]) Get(e Entity) (*T, bool) {
	v, ok := t.rows[e]
	return v, ok
}

func (t *Table[T]) Has(e Entity) bool {
	_, ok := t.rows[e]
	return ok
}

func (t *Table[T]) Remove(e Entity) {
	delete(t.rows, e)
}

func (t *Table[T]) Len() int { return len(t.rows) }

// Each visits every row; returning false stops the walk.
func (t *Table[T]) Each(fn func(Entity, *T) bool) {
	for e, v := range t.rows {
		if !fn(e, v) {
			return
		}
	}
}

func (t *Table[T]) Entities() []Entity {
	out := make([]Entity, 0, len(t.rows))
	for e := range t.rows {
		out = append(out, e)
	}
	return out
}

func (t *Table[T]) Clear() {
	t.rows = map[Entity]*T{}
}

package ecs

import (
	"iter"

	"github.com/milk9111/twobd/ecs/component"
)

// View returns a lazy sequence of the entities holding every listed
// component. Each range over the sequence starts a fresh walk of the
// smallest storage, so a View can be kept and reused across frames.
// Order is the storage's dense order. Removing components from the walked
// storage while ranging may skip entities.
func View(w *World, ids ...component.ComponentID) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		if w == nil || len(ids) == 0 {
			return
		}
		sets := make([]*SparseSet, 0, len(ids))
		var smallest *SparseSet
		for _, id := range ids {
			s := w.set(id, false)
			if s.Len() == 0 {
				return
			}
			sets = append(sets, s)
			if smallest == nil || s.Len() < smallest.Len() {
				smallest = s
			}
		}
		ents := smallest.Entities()
		for i := 0; i < len(ents); i++ {
			e := ents[i]
			if !hasAll(sets, e) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Query collects View into a slice the caller may reorder.
func Query(w *World, ids ...component.ComponentID) []Entity {
	var out []Entity
	for e := range View(w, ids...) {
		out = append(out, e)
	}
	return out
}

func hasAll(sets []*SparseSet, e Entity) bool {
	for _, s := range sets {
		if !s.Has(e) {
			return false
		}
	}
	return true
}

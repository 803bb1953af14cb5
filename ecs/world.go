package ecs

import "github.com/milk9111/twobd/ecs/component"

// World owns entities and their component storages. A World is not safe for
// concurrent use; the frame loop is its only user.
type World struct {
	entities entityStore
	sets     map[component.ComponentID]*SparseSet
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{sets: make(map[component.ComponentID]*SparseSet)}
}

func (w *World) set(id component.ComponentID, create bool) *SparseSet {
	if w.sets == nil {
		w.sets = make(map[component.ComponentID]*SparseSet)
	}
	s, ok := w.sets[id]
	if !ok && create {
		s = &SparseSet{}
		w.sets[id] = s
	}
	return s
}

// CreateEntity allocates a new entity, unique within w.
func CreateEntity(w *World) Entity {
	return w.entities.create()
}

// DestroyEntity removes every component from e and retires the handle.
// It reports whether e was alive.
func DestroyEntity(w *World, e Entity) bool {
	if !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.sets {
		removeFrom(s, e)
	}
	return w.entities.destroy(e)
}

func removeFrom(s *SparseSet, e Entity) bool {
	v := s.Get(e)
	if !s.Remove(e) {
		return false
	}
	release(v)
	return true
}

func release(v any) {
	if r, ok := v.(component.Releaser); ok {
		r.Release()
	}
}

// IsAlive reports whether an entity handle is valid.
func IsAlive(w *World, e Entity) bool {
	return w.entities.isAlive(e)
}

// Entities returns every live entity that has at least one component.
func Entities(w *World) []Entity {
	seen := make(map[Entity]struct{})
	var out []Entity
	for _, s := range w.sets {
		for _, e := range s.Entities() {
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// Storage exposes the raw sparse set for a component id, or nil.
func (w *World) Storage(id component.ComponentID) *SparseSet {
	if w == nil {
		return nil
	}
	return w.set(id, false)
}

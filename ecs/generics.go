package ecs

import (
	"fmt"

	"github.com/milk9111/twobd/ecs/component"
)

// Attach adds or replaces e's component of type T with a value-initialised
// one and returns a pointer to the stored value.
func Attach[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, error) {
	v := new(T)
	if init, ok := any(v).(component.Initializer); ok {
		init.Init()
	}
	if err := Add(w, e, kind, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Add stores value as e's component of type T, replacing any previous one.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !IsAlive(w, e) {
		return fmt.Errorf("add %s to %s: %w", kind.Name(), e, component.ErrEntityNotAlive)
	}
	s := w.set(kind.ID(), true)
	if old, ok := s.Get(e).(*T); ok && old != value {
		release(old)
	}
	s.Set(e, value)
	return nil
}

// Get returns e's component of type T or ErrComponentMissing.
func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, error) {
	v, ok := Lookup(w, e, kind)
	if !ok {
		return nil, fmt.Errorf("%s on %s: %w", kind.Name(), e, component.ErrComponentMissing)
	}
	return v, nil
}

// Lookup is Get without the error, for optional components.
func Lookup[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	s := w.set(kind.ID(), false)
	if s == nil {
		return nil, false
	}
	cast, ok := s.Get(e).(*T)
	return cast, ok && cast != nil
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	return w.set(kind.ID(), false).Has(e)
}

// Remove deletes e's T, releasing it if it owns resources.
func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	s := w.set(kind.ID(), false)
	if s == nil {
		return false
	}
	return removeFrom(s, e)
}

// ForEach calls fn for every entity holding a T.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	s := w.set(kind.ID(), false)
	if s == nil {
		return
	}
	ents := s.Entities()
	vals := s.Values()
	for i := 0; i < len(ents); i++ {
		if v, ok := vals[i].(*T); ok {
			fn(ents[i], v)
		}
	}
}

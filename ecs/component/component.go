package component

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
	ErrComponentMissing     = errors.New("ecs: component missing")
)

// Releaser is implemented by components that own shared resources. The
// world calls Release when the value is replaced or removed.
type Releaser interface {
	Release()
}

// Initializer is implemented by components whose zero value is not a
// usable default. Attach calls Init on the freshly zeroed value.
type Initializer interface {
	Init()
}

type ComponentKind[T any] struct {
	id   ComponentID
	name string
}

func NewComponentKind[T any]() ComponentKind[T] {
	var zero T
	return ComponentKind[T]{
		id:   ComponentID(nextComponentID.Add(1)),
		name: fmt.Sprintf("%T", zero),
	}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

func (k ComponentKind[T]) Name() string {
	return k.name
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T]()}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}

// ID is shorthand for Kind().ID(), handy when building views.
func (h ComponentHandle[T]) ID() ComponentID {
	return h.kind.id
}

type ComponentID uint32

var nextComponentID atomic.Uint32

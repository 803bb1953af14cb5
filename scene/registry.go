package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	ErrDuplicateScene = errors.New("scene: duplicate scene")
	ErrUnknownScene   = errors.New("scene: unknown scene")
	ErrNoCurrentScene = errors.New("scene: no current scene")
)

// Registry holds named scenes. The first scene registered becomes current;
// switching never tears down the scene being left.
type Registry struct {
	log     *zap.Logger
	scenes  map[string]*Scene
	order   []string
	current string
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		log:    log,
		scenes: make(map[string]*Scene),
	}
}

// Register creates an empty scene under name.
func (r *Registry) Register(name string) (*Scene, error) {
	sc := New(name)
	if err := r.Add(sc); err != nil {
		return nil, err
	}
	return sc, nil
}

// Add registers a scene built elsewhere.
func (r *Registry) Add(sc *Scene) error {
	if _, ok := r.scenes[sc.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateScene, sc.Name)
	}
	r.scenes[sc.Name] = sc
	r.order = append(r.order, sc.Name)
	if r.current == "" {
		r.current = sc.Name
	}
	r.log.Debug("registered scene", zap.String("scene", sc.Name))
	return nil
}

// Replace swaps in a rebuilt scene under the same name and tears the old
// one down. Current stays on the name.
func (r *Registry) Replace(sc *Scene) error {
	old, ok := r.scenes[sc.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownScene, sc.Name)
	}
	if old != sc {
		old.Teardown()
	}
	r.scenes[sc.Name] = sc
	r.log.Debug("replaced scene", zap.String("scene", sc.Name))
	return nil
}

func (r *Registry) SetCurrent(name string) error {
	if _, ok := r.scenes[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownScene, name)
	}
	if r.current != name {
		r.log.Debug("switched scene", zap.String("from", r.current), zap.String("to", name))
	}
	r.current = name
	return nil
}

func (r *Registry) Current() (*Scene, error) {
	sc, ok := r.scenes[r.current]
	if !ok {
		return nil, ErrNoCurrentScene
	}
	return sc, nil
}

func (r *Registry) CurrentName() string {
	return r.current
}

func (r *Registry) Get(name string) (*Scene, bool) {
	sc, ok := r.scenes[name]
	return sc, ok
}

// Names lists scenes in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Next makes the scene after the current one current, wrapping around.
func (r *Registry) Next() (*Scene, error) {
	if len(r.order) == 0 {
		return nil, ErrNoCurrentScene
	}
	next := 0
	for i, name := range r.order {
		if name == r.current {
			next = (i + 1) % len(r.order)
			break
		}
	}
	if err := r.SetCurrent(r.order[next]); err != nil {
		return nil, err
	}
	return r.scenes[r.order[next]], nil
}

func (r *Registry) Len() int {
	return len(r.order)
}

// Close tears down every scene.
func (r *Registry) Close() {
	for _, name := range r.order {
		r.scenes[name].Teardown()
	}
}

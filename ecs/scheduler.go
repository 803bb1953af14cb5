package ecs

// Input reports the state of named actions for the current frame.
type Input interface {
	Pressed(action string) bool
}

// Tick is the per-frame context handed to systems and behaviours in place
// of any global lookup.
type Tick struct {
	World   *World
	Input   Input
	Delta   float64
	Elapsed float64
}

// Pressed is false when the tick carries no input.
func (t Tick) Pressed(action string) bool {
	return t.Input != nil && t.Input.Pressed(action)
}

type System interface {
	Update(t Tick) error
}

// SystemFunc adapts a function to System.
type SystemFunc func(t Tick) error

func (f SystemFunc) Update(t Tick) error {
	return f(t)
}

// Scheduler runs systems in insertion order. The first error stops the
// frame.
type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	copied := append([]System(nil), systems...)
	return &Scheduler{systems: copied}
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

func (s *Scheduler) Update(t Tick) error {
	if s == nil {
		return nil
	}
	for _, system := range s.systems {
		if err := system.Update(t); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}

// Close calls Close on every system that has one, last added first.
func (s *Scheduler) Close() {
	if s == nil {
		return
	}
	for i := len(s.systems) - 1; i >= 0; i-- {
		if c, ok := s.systems[i].(interface{ Close() }); ok {
			c.Close()
		}
	}
	s.systems = nil
}

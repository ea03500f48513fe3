package scene

import "github.com/google/uuid"

// World holds the root entities of the running game. It is the object host
// that states create their containers in.
type World struct {
	Roots []*Entity
}

func NewWorld() *World {
	return &World{
		Roots: make([]*Entity, 0),
	}
}

// CreateContainer adds an empty root entity named name.
func (w *World) CreateContainer(name string) *Entity {
	e := NewEntity(name)
	w.Roots = append(w.Roots, e)
	return e
}

// DestroyContainer removes the root and destroys everything under it.
func (w *World) DestroyContainer(e *Entity) {
	if e == nil {
		return
	}
	for i, r := range w.Roots {
		if r == e {
			w.Roots = append(w.Roots[:i], w.Roots[i+1:]...)
			break
		}
	}
	e.Destroy()
}

// FindByID searches every root and its descendants.
func (w *World) FindByID(id uuid.UUID) *Entity {
	return w.find(func(e *Entity) bool { return e.ID == id })
}

// FindByName returns the first entity named name, depth first.
func (w *World) FindByName(name string) *Entity {
	return w.find(func(e *Entity) bool { return e.Name == name })
}

func (w *World) find(match func(*Entity) bool) *Entity {
	var found *Entity
	for _, r := range w.Roots {
		r.Walk(func(e *Entity) bool {
			if match(e) {
				found = e
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// Count returns the number of live entities across all roots.
func (w *World) Count() int {
	n := 0
	for _, r := range w.Roots {
		r.Walk(func(*Entity) bool {
			n++
			return true
		})
	}
	return n
}

package states

import (
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/scene"
)

// StateBinder is implemented by components and data objects that want a
// reference to the state owning them. Embed UsesState to get one.
type StateBinder interface {
	// BindState stores s if it is the kind of state the object expects and
	// reports whether it did.
	BindState(s State) bool
	// UnbindState clears the stored state if it is s.
	UnbindState(s State)
}

// UsesState gives an object a typed reference to the active state of type T
// that spawned or loaded it.
type UsesState[T State] struct {
	state T
	bound bool
}

func (u *UsesState[T]) BindState(s State) bool {
	t, ok := s.(T)
	if !ok {
		return false
	}
	u.state = t
	u.bound = true
	return true
}

func (u *UsesState[T]) UnbindState(s State) {
	if !u.bound || State(u.state) != s {
		return
	}
	var zero T
	u.state = zero
	u.bound = false
}

// GameState returns the bound state, or the zero T when unbound.
func (u *UsesState[T]) GameState() T {
	return u.state
}

func (u *UsesState[T]) HasState() bool {
	return u.bound
}

func (as *AssetState) bindReferences() {
	bound := 0
	for _, h := range as.spawned {
		bound += bindEntity(h.Object, as.owner)
	}
	for _, h := range as.data {
		if b, ok := h.Value.(StateBinder); ok && b.BindState(as.owner) {
			bound++
		}
	}
	core.LogDebug("%s: bound %d objects to state", as.kind, bound)
}

func (as *AssetState) unbindReferences() {
	for _, h := range as.spawned {
		unbindEntity(h.Object, as.owner)
	}
	for _, h := range as.data {
		if b, ok := h.Value.(StateBinder); ok {
			b.UnbindState(as.owner)
		}
	}
}

func bindEntity(e *scene.Entity, s State) int {
	bound := 0
	if e == nil {
		return 0
	}
	e.Walk(func(cur *scene.Entity) bool {
		for _, c := range cur.Components() {
			if b, ok := c.(StateBinder); ok && b.BindState(s) {
				bound++
			}
		}
		return true
	})
	return bound
}

func unbindEntity(e *scene.Entity, s State) {
	if e == nil {
		return
	}
	e.Walk(func(cur *scene.Entity) bool {
		for _, c := range cur.Components() {
			if b, ok := c.(StateBinder); ok {
				b.UnbindState(s)
			}
		}
		return true
	})
}

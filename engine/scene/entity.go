package scene

import "github.com/google/uuid"

// Entity is a node in the live object hierarchy. Components are arbitrary
// values; capabilities are discovered with type assertions.
type Entity struct {
	ID         uuid.UUID
	Name       string
	Tags       []string
	Active     bool
	Parent     *Entity
	Children   []*Entity
	components []interface{}
	destroyed  bool
}

func NewEntity(name string) *Entity {
	return &Entity{
		ID:         uuid.New(),
		Name:       name,
		Active:     true,
		Children:   make([]*Entity, 0),
		components: make([]interface{}, 0),
	}
}

func (e *Entity) AddComponent(c interface{}) {
	if a, ok := c.(interface{ Attach(*Entity) }); ok {
		a.Attach(e)
	}
	e.components = append(e.components, c)
}

// RemoveComponent drops c by identity and reports whether it was attached.
func (e *Entity) RemoveComponent(c interface{}) bool {
	for i, existing := range e.components {
		if existing == c {
			e.components = append(e.components[:i], e.components[i+1:]...)
			return true
		}
	}
	return false
}

func (e *Entity) Components() []interface{} {
	return e.components
}

func (e *Entity) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (e *Entity) AddChild(child *Entity) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = e
	e.Children = append(e.Children, child)
}

func (e *Entity) RemoveChild(child *Entity) {
	for i, c := range e.Children {
		if c == child {
			e.Children = append(e.Children[:i], e.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// Destroy detaches the entity and tears down its subtree. Components
// implementing Destroy() are notified, children first.
func (e *Entity) Destroy() {
	if e.destroyed {
		return
	}
	if e.Parent != nil {
		e.Parent.RemoveChild(e)
	}
	e.destroyRecursive()
}

func (e *Entity) destroyRecursive() {
	for _, child := range e.Children {
		child.Parent = nil
		child.destroyRecursive()
	}
	for _, c := range e.components {
		if d, ok := c.(interface{ Destroy() }); ok {
			d.Destroy()
		}
	}
	e.Children = nil
	e.components = nil
	e.Active = false
	e.destroyed = true
}

func (e *Entity) Destroyed() bool {
	return e.destroyed
}

// Walk visits e and its descendants depth first until fn returns false.
func (e *Entity) Walk(fn func(*Entity) bool) bool {
	if !fn(e) {
		return false
	}
	for _, child := range e.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// GetComponent returns the first component of e assignable to T.
func GetComponent[T any](e *Entity) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	for _, c := range e.components {
		if typed, ok := c.(T); ok {
			return typed, true
		}
	}
	return zero, false
}

// GetComponentInParent searches e, then each ancestor up to the root.
func GetComponentInParent[T any](e *Entity) (T, bool) {
	for cur := e; cur != nil; cur = cur.Parent {
		if c, ok := GetComponent[T](cur); ok {
			return c, true
		}
	}
	var zero T
	return zero, false
}

// GetComponentInChildren searches e, then its descendants depth first.
func GetComponentInChildren[T any](e *Entity) (T, bool) {
	var found T
	var ok bool
	if e == nil {
		return found, false
	}
	e.Walk(func(cur *Entity) bool {
		found, ok = GetComponent[T](cur)
		return !ok
	})
	return found, ok
}

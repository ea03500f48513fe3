package assets

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/anima/engine/assets/loaders"
	"github.com/spaghettifunk/anima/engine/scene"
)

var ErrUnknownComponent = errors.New("unknown component kind")

// ComponentFactory builds a component from the params table of a prefab.
type ComponentFactory func(params map[string]interface{}) (interface{}, error)

// ComponentRegistry maps prefab component kinds to factories. Registration
// happens during start up; lookups happen on the control goroutine.
type ComponentRegistry struct {
	factories map[string]ComponentFactory
}

func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{factories: make(map[string]ComponentFactory)}
}

func (cr *ComponentRegistry) Register(kind string, factory ComponentFactory) error {
	if _, ok := cr.factories[kind]; ok {
		return fmt.Errorf("component kind '%s' already registered", kind)
	}
	cr.factories[kind] = factory
	return nil
}

func (cr *ComponentRegistry) Build(kind string, params map[string]interface{}) (interface{}, error) {
	factory, ok := cr.factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownComponent, kind)
	}
	if params == nil {
		params = map[string]interface{}{}
	}
	return factory(params)
}

// Instantiate builds a fresh entity tree from tmpl. On error nothing is
// returned and every component built so far is destroyed.
func (cr *ComponentRegistry) Instantiate(tmpl *loaders.PrefabTemplate) (*scene.Entity, error) {
	e := scene.NewEntity(tmpl.Name)
	if err := cr.populate(e, tmpl); err != nil {
		e.Destroy()
		return nil, err
	}
	return e, nil
}

func (cr *ComponentRegistry) populate(e *scene.Entity, tmpl *loaders.PrefabTemplate) error {
	e.Tags = append(e.Tags, tmpl.Tags...)
	for _, def := range tmpl.Components {
		c, err := cr.Build(def.Kind, def.Params)
		if err != nil {
			return fmt.Errorf("%s: %w", tmpl.Name, err)
		}
		e.AddComponent(c)
	}
	for i := range tmpl.Children {
		child := scene.NewEntity(tmpl.Children[i].Name)
		e.AddChild(child)
		if err := cr.populate(child, &tmpl.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

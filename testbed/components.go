package testbed

import (
	"fmt"

	"github.com/spaghettifunk/anima/engine/assets"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/scene"
	"github.com/spaghettifunk/anima/engine/states"
)

type Camera struct {
	FOV float64
}

type Button struct {
	Label string
}

type Health struct {
	Max     int
	Current int
}

// Enemy lives on spawned enemies. It reaches its level through the bound
// state and removes itself with the self-release handle when defeated.
type Enemy struct {
	states.UsesState[*LevelState]
	entity *scene.Entity
}

func (e *Enemy) Attach(entity *scene.Entity) {
	e.entity = entity
}

func (e *Enemy) Defeat() error {
	h, ok := scene.GetComponent[*states.SelfReleasingHandle](e.entity)
	if !ok {
		return fmt.Errorf("enemy '%s' has no release handle", e.entity.Name)
	}
	name := e.entity.Name
	level := e.GameState()
	if err := h.Release(); err != nil {
		return err
	}
	if level != nil {
		level.enemyDefeated(name)
	}
	return nil
}

type Settings struct {
	Title     string `toml:"title"`
	MenuTicks int    `toml:"menu_ticks"`
}

type Difficulty struct {
	states.UsesState[*LevelState]
	Name             string  `toml:"name"`
	DamageMultiplier float64 `toml:"damage_multiplier"`
}

func registerComponents(p *assets.Provider) error {
	reg := p.Components()
	factories := map[string]assets.ComponentFactory{
		"camera": func(params map[string]interface{}) (interface{}, error) {
			fov, _ := params["fov"].(float64)
			return &Camera{FOV: fov}, nil
		},
		"button": func(params map[string]interface{}) (interface{}, error) {
			label, _ := params["label"].(string)
			return &Button{Label: label}, nil
		},
		"health": func(params map[string]interface{}) (interface{}, error) {
			max, ok := params["max"].(int64)
			if !ok || max <= 0 {
				return nil, fmt.Errorf("health needs a positive max, got %v", params["max"])
			}
			return &Health{Max: int(max), Current: int(max)}, nil
		},
		"enemy": func(map[string]interface{}) (interface{}, error) {
			return &Enemy{}, nil
		},
	}
	for kind, f := range factories {
		if err := reg.Register(kind, f); err != nil {
			return err
		}
	}
	if err := assets.RegisterDataKind[Settings](p, "settings"); err != nil {
		return err
	}
	if err := assets.RegisterDataKind[Difficulty](p, "difficulty"); err != nil {
		return err
	}
	core.LogDebug("testbed components registered")
	return nil
}

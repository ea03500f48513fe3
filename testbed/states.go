package testbed

import (
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/scene"
	"github.com/spaghettifunk/anima/engine/states"
)

const (
	KindRoot  = "Root"
	KindMenu  = "Menu"
	KindLevel = "Level"
)

// RootState loads the camera and settings, then hands over to the menu.
type RootState struct {
	*states.AssetState
	menu     *MenuState
	settings *Settings
}

func (r *RootState) OnEnter() {
	settings, err := states.FindOwnedData[*Settings](r.AssetState)
	if err != nil {
		r.settings = &Settings{Title: "untitled"}
	} else {
		r.settings = settings
	}
	core.LogInfo("welcome to %s", r.settings.Title)
	r.SwitchState(r.menu)
}

func (r *RootState) OnExit() {
	core.LogInfo("goodbye")
}

// MenuState waits a few ticks on the start button, then starts the level.
type MenuState struct {
	*states.AssetState
	root  *RootState
	level *LevelState
	ticks int
}

func (m *MenuState) OnEnter() {
	button, err := states.FindOwned[*Button](m.AssetState, states.ScopeExact)
	if err == nil {
		core.LogInfo("menu ready, showing '%s'", button.Label)
	}
	m.ticks = 0
}

func (m *MenuState) OnExit() {}

func (m *MenuState) update() {
	if m.Status() != states.AssetStateActive {
		return
	}
	m.ticks++
	if m.ticks >= m.root.settings.MenuTicks {
		core.LogInfo("start pressed")
		m.root.SwitchState(m.level)
	}
}

// LevelState spawns the enemies; one is defeated every tick until none is
// left, which finishes the game.
type LevelState struct {
	*states.AssetState
	defeated []string
	onClear  func()
}

func (l *LevelState) OnEnter() {
	difficulty, err := states.FindOwnedData[*Difficulty](l.AssetState)
	if err == nil {
		core.LogInfo("level started on %s difficulty (x%.1f)", difficulty.Name, difficulty.DamageMultiplier)
	}
	// the orc's axe carries its own health
	if h, err := states.FindOwned[*Health](l.AssetState, states.ScopeDescendants); err == nil {
		core.LogDebug("first health found: %d", h.Max)
	}
	l.defeated = nil
}

func (l *LevelState) OnExit() {
	core.LogInfo("level left, %d enemies defeated", len(l.defeated))
}

func (l *LevelState) Defeated() []string {
	return l.defeated
}

func (l *LevelState) enemyDefeated(name string) {
	l.defeated = append(l.defeated, name)
	core.LogInfo("%s defeated", name)
}

func (l *LevelState) update() {
	if l.Status() != states.AssetStateActive {
		return
	}
	for _, h := range l.OwnedSpawned() {
		if enemy, ok := scene.GetComponent[*Enemy](h.Object); ok {
			if err := enemy.Defeat(); err != nil {
				core.LogError(err.Error())
			}
			return
		}
	}
	if l.onClear != nil {
		l.onClear()
		l.onClear = nil
	}
}

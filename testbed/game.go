package testbed

import (
	"time"

	"github.com/spaghettifunk/anima/engine"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/states"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	Ticks   uint64
	Elapsed time.Duration

	root  *RootState
	menu  *MenuState
	level *LevelState

	progress map[string]float64
}

func NewTestGame(config *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				progress: make(map[string]float64),
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize() error {
	core.LogInfo("initializing testbed...")
	if err := registerComponents(g.Provider); err != nil {
		return err
	}

	s := g.state()
	m := g.Machine

	s.root = &RootState{}
	s.root.AssetState = states.NewAssetState(m, KindRoot, s.root, s.root)

	s.menu = &MenuState{root: s.root}
	s.menu.AssetState = states.NewAssetState(m, KindMenu, s.menu, s.menu)

	s.level = &LevelState{onClear: g.quit}
	s.level.AssetState = states.NewAssetState(m, KindLevel, s.level, s.level,
		states.WithExtraSpawnables(g.Manifest.SpawnableRef("prefabs/boss.prefab.toml")))

	s.root.menu = s.menu
	s.menu.level = s.level

	for _, st := range []states.State{s.root, s.menu, s.level} {
		if err := m.Register(st); err != nil {
			return err
		}
	}

	m.Events().Register(core.EVENT_CODE_STATE_PROGRESS, g, g.onProgress)
	return nil
}

func (g *TestGame) Update(deltaTime time.Duration) error {
	s := g.state()
	s.Ticks++
	s.Elapsed += deltaTime

	s.menu.update()
	s.level.update()
	return nil
}

func (g *TestGame) Shutdown() error {
	s := g.state()
	core.LogInfo("testbed ran %d ticks in %s", s.Ticks, s.Elapsed)
	g.Machine.Events().Unregister(core.EVENT_CODE_STATE_PROGRESS, g)
	return nil
}

// Level returns the level state, for inspection after a run.
func (g *TestGame) Level() *LevelState {
	return g.state().level
}

// Progress returns the last progress reported per state kind.
func (g *TestGame) Progress() map[string]float64 {
	return g.state().progress
}

func (g *TestGame) quit() {
	core.LogInfo("all enemies defeated")
	g.Machine.Events().Fire(core.EVENT_CODE_APPLICATION_QUIT, g, core.EventContext{})
}

func (g *TestGame) onProgress(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	g.state().progress[data.State] = data.Progress
	core.LogInfo("loading %s: %3.0f%%", data.State, data.Progress*100)
	return false
}

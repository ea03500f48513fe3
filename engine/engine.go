package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spaghettifunk/anima/engine/assets"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/scene"
	"github.com/spaghettifunk/anima/engine/states"
	"github.com/spaghettifunk/anima/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine has been shut down and cannot be restarted
	EngineStageStopped
)

func (s Stage) String() string {
	switch s {
	case EngineStageInitializing:
		return "initializing"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageRunning:
		return "running"
	case EngineStageShuttingDown:
		return "shutting down"
	case EngineStageStopped:
		return "stopped"
	default:
		return "uninitialized"
	}
}

type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    bool

	dispatcher   *core.Dispatcher
	events       *core.EventSystem
	jobSystem    *systems.JobSystem
	assetManager *assets.AssetManager
	provider     *assets.Provider
	world        *scene.World
	machine      *states.Machine

	clock    *core.Clock
	lastTime time.Duration
	cancel   context.CancelFunc
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("game and application config are required")
	}
	if err := g.ApplicationConfig.Validate(); err != nil {
		return nil, err
	}
	if lvl := g.ApplicationConfig.LogLevel; lvl != "" {
		if err := core.SetLogLevel(lvl); err != nil {
			return nil, err
		}
	}

	dispatcher := core.NewDispatcher(64)
	js, err := systems.NewJobSystem(systems.JobSystemConfig{
		NumWorkers:  g.ApplicationConfig.Workers,
		ChannelSize: g.ApplicationConfig.JobQueueSize,
	}, dispatcher)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	am := assets.NewAssetManager(dispatcher)

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		dispatcher:   dispatcher,
		events:       core.NewEventSystem(),
		jobSystem:    js,
		assetManager: am,
		provider:     assets.NewProvider(am, js, dispatcher),
		world:        scene.NewWorld(),
		clock:        core.NewClock(),
	}, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine cannot be initialized while %s", e.currentStage)
	}
	e.currentStage = EngineStageInitializing
	config := e.gameInstance.ApplicationConfig

	// register some events
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)

	if err := e.assetManager.Initialize(config.AssetDir, config.WatchAssets); err != nil {
		return err
	}
	e.assetManager.OnChange(e.onAssetChanged)

	manifest, err := assets.LoadManifest(filepath.Join(config.AssetDir, config.Manifest))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	machine, err := states.NewMachine(states.Environment{
		Provider:   e.provider,
		Host:       e.world,
		Events:     e.events,
		References: manifest,
		Context:    ctx,
	})
	if err != nil {
		return err
	}
	e.machine = machine

	g := e.gameInstance
	g.Machine = machine
	g.Provider = e.provider
	g.Manifest = manifest
	g.World = e.world

	if g.FnInitialize != nil {
		if err := g.FnInitialize(); err != nil {
			return err
		}
	}
	if err := machine.Start(config.RootState); err != nil {
		return err
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized", config.Name)
	return nil
}

// Run ticks the control loop until ctx is done or the quit event fires.
// Every tick drains the dispatcher, so all state transitions and asset
// completions happen on the calling goroutine.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine cannot run while %s", e.currentStage)
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	targetFrame := time.Second / time.Duration(e.gameInstance.ApplicationConfig.FrameRate)
	ticker := time.NewTicker(targetFrame)
	defer ticker.Stop()

	for e.isRunning {
		select {
		case <-ctx.Done():
			core.LogInfo("context done, leaving the run loop")
			e.isRunning = false
			continue
		case <-ticker.C:
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		e.dispatcher.Pump()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("game update failed, shutting down: %v", err)
				e.isRunning = false
				return err
			}
		}

		e.lastTime = currentTime
	}
	return nil
}

// Quit asks the run loop to stop after the current tick.
func (e *Engine) Quit() {
	e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageStopped || e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false

	if e.machine != nil {
		e.machine.Shutdown()
	}
	if e.cancel != nil {
		e.cancel()
	}
	if err := e.jobSystem.Shutdown(); err != nil {
		return err
	}
	// late completions release whatever they acquired
	for e.dispatcher.Pending() > 0 {
		e.dispatcher.Pump()
	}
	if err := e.assetManager.Shutdown(); err != nil {
		return err
	}

	m := e.provider.Metrics()
	core.LogInfo("assets: %d acquired, %d failed, %d released, %d stale releases, avg load %.2fms",
		m.Acquired, m.Failed, m.Released, m.StaleReleases, m.AverageLoadMS)
	if m.Live > 0 || e.provider.LiveHandles() > 0 {
		core.LogWarn("%d asset handles still live at shutdown", e.provider.LiveHandles())
	}

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			return err
		}
	}
	if err := e.events.Shutdown(); err != nil {
		return err
	}
	e.currentStage = EngineStageStopped
	return nil
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Events() *core.EventSystem {
	return e.events
}

func (e *Engine) Machine() *states.Machine {
	return e.machine
}

func (e *Engine) Provider() *assets.Provider {
	return e.provider
}

func (e *Engine) World() *scene.World {
	return e.world
}

func (e *Engine) Dispatcher() *core.Dispatcher {
	return e.dispatcher
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onAssetChanged(info assets.AssetInfo, op assets.ChangeOp) {
	core.LogDebug("asset '%s' %s", info.Address, op)
	e.events.Fire(core.EVENT_CODE_ASSET_CHANGED, e, core.EventContext{Address: info.Address})
}

package engine

import (
	"time"

	"github.com/spaghettifunk/anima/engine/assets"
	"github.com/spaghettifunk/anima/engine/scene"
	"github.com/spaghettifunk/anima/engine/states"
)

// Game is what an application hands the engine. The engine fills in the
// subsystem fields before calling FnInitialize.
type Game struct {
	ApplicationConfig *ApplicationConfig
	Machine           *states.Machine
	Provider          *assets.Provider
	Manifest          *assets.Manifest
	World             *scene.World
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnShutdown        Shutdown
}

// Initialize registers the game's states and components.
type Initialize func() error
type Update func(deltaTime time.Duration) error
type Shutdown func() error

package states

import (
	"context"

	"github.com/google/uuid"
	"github.com/spaghettifunk/anima/engine/scene"
)

// Handle is anything an AssetProvider handed out and expects back in Release.
type Handle interface {
	HandleID() uuid.UUID
}

// SpawnHandle is an instantiated prefab living under a state's container.
type SpawnHandle struct {
	ID     uuid.UUID
	Ref    *SpawnableRef
	Object *scene.Entity
}

func (h *SpawnHandle) HandleID() uuid.UUID { return h.ID }

// DataHandle is a loaded data asset. Value is shared between every holder of
// the same ref.
type DataHandle struct {
	ID    uuid.UUID
	Ref   *DataRef
	Value interface{}
}

func (h *DataHandle) HandleID() uuid.UUID { return h.ID }

type SpawnCompletion func(*SpawnHandle, error)
type DataCompletion func(*DataHandle, error)

// AssetProvider loads and instantiates assets asynchronously.
//
// Completion callbacks run exactly once, on the goroutine that pumps the
// engine dispatcher, and never from inside the Acquire call itself.
// Completions of concurrent acquisitions arrive in any order.
type AssetProvider interface {
	AcquireSpawnable(ctx context.Context, ref *SpawnableRef, host *scene.Entity, done SpawnCompletion)
	AcquireData(ctx context.Context, ref *DataRef, done DataCompletion)
	// Release tears down or decrements a handle. Releasing a handle twice is
	// ignored.
	Release(h Handle)
}

// ObjectHost creates and destroys the container scope a state's spawned
// objects live under.
type ObjectHost interface {
	CreateContainer(name string) *scene.Entity
	DestroyContainer(container *scene.Entity)
}

package states

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/scene"
)

type AssetStatus int

const (
	AssetStateInactive AssetStatus = iota
	AssetStateLoading
	AssetStateActive
)

func (s AssetStatus) String() string {
	switch s {
	case AssetStateInactive:
		return "Inactive"
	case AssetStateLoading:
		return "Loading"
	case AssetStateActive:
		return "Active"
	default:
		return "Unknown"
	}
}

// StateProxy sits on a state's container entity and points back at the state.
type StateProxy struct {
	State State
}

type AssetOption func(*AssetState)

// WithExtraSpawnables adds refs on top of the state's reference set.
func WithExtraSpawnables(refs ...*SpawnableRef) AssetOption {
	return func(as *AssetState) {
		as.extraSpawnables = append(as.extraSpawnables, refs...)
	}
}

// WithExtraData adds data refs on top of the state's reference set.
func WithExtraData(refs ...*DataRef) AssetOption {
	return func(as *AssetState) {
		as.extraData = append(as.extraData, refs...)
	}
}

// WithReferences uses rs instead of looking the set up by kind.
func WithReferences(rs *ReferenceSet) AssetOption {
	return func(as *AssetState) {
		as.references = rs
	}
}

// AssetState is a state that owns the assets listed in its reference set for
// as long as it is active. Entering loads them and runs OnEnter once all
// acquisitions completed; exiting releases them and runs OnExit.
type AssetState struct {
	Node
	kind    string
	owner   State
	hooks   Hooks
	machine *Machine
	ownerID uint32

	references      *ReferenceSet
	extraSpawnables []*SpawnableRef
	extraData       []*DataRef

	status    AssetStatus
	entered   bool
	pipeline  *Pipeline
	container *scene.Entity
	spawned   []*SpawnHandle
	data      []*DataHandle
}

// NewAssetState creates the asset-backed part of a state. owner is the value
// handed to cross-referenced objects and parent states, usually the struct
// embedding the returned *AssetState; hooks usually is that same struct.
func NewAssetState(m *Machine, kind string, owner State, hooks Hooks, opts ...AssetOption) *AssetState {
	as := &AssetState{
		kind:    kind,
		owner:   owner,
		hooks:   hooks,
		machine: m,
	}
	if as.owner == nil {
		as.owner = as
	}
	if as.hooks == nil {
		as.hooks = HookFuncs{}
	}
	as.Node = newNode(as.owner)
	for _, opt := range opts {
		opt(as)
	}
	if as.references == nil {
		name := SetName(kind)
		rs, ok := m.env.References.ReferenceSet(name)
		if !ok {
			core.LogWarn("no reference set '%s' for state '%s', starting with an empty one", name, kind)
			rs = NewReferenceSet(name, nil, nil)
		}
		as.references = rs
	}
	as.ownerID = m.trackAssetState(as)
	return as
}

func (as *AssetState) Kind() string {
	return as.kind
}

func (as *AssetState) Status() AssetStatus {
	return as.status
}

func (as *AssetState) References() *ReferenceSet {
	return as.references
}

// Container is the entity spawned objects are parented to while active.
func (as *AssetState) Container() *scene.Entity {
	return as.container
}

// Progress of the current activation's pipeline in [0,1].
func (as *AssetState) Progress() float64 {
	if as.pipeline == nil {
		return 0
	}
	return as.pipeline.Progress()
}

// OwnedSpawned returns the handles of the spawned objects owned right now.
func (as *AssetState) OwnedSpawned() []*SpawnHandle {
	return append([]*SpawnHandle(nil), as.spawned...)
}

// OwnedData returns the handles of the data objects owned right now.
func (as *AssetState) OwnedData() []*DataHandle {
	return append([]*DataHandle(nil), as.data...)
}

// Enter creates the container and starts acquiring assets. OnEnter runs
// later, from the completion that finishes the pipeline.
func (as *AssetState) Enter() {
	if as.status != AssetStateInactive {
		core.LogWarn("%s: enter ignored, state is %s", as.kind, as.status)
		return
	}
	env := as.machine.env

	as.status = AssetStateLoading
	as.container = env.Host.CreateContainer(as.kind)
	as.container.AddComponent(&StateProxy{State: as.owner})

	spawnables := appendUnique(as.references.EffectiveSpawnables(), as.extraSpawnables)
	data := appendUnique(as.references.EffectiveDataRefs(), as.extraData)
	core.LogInfo("%s: instantiating %d spawnables (%d extra) and %d data objects",
		as.kind, len(spawnables), len(as.extraSpawnables), len(data))

	as.pipeline = NewPipeline(as.kind, env.Provider, PipelineCallbacks{
		Progress: as.onProgress,
		Spawned:  as.onSpawned,
		Data:     as.onData,
		Ready:    as.onReady,
	})
	if err := as.pipeline.Start(env.Context, as.container, spawnables, data); err != nil {
		core.LogError(err.Error())
	}
}

// Exit releases everything this activation acquired. A state exited while
// still loading cancels its pipeline and never runs OnEnter or OnExit for
// that activation.
func (as *AssetState) Exit() {
	if as.status == AssetStateInactive {
		core.LogDebug("%s: exit ignored, state is not active", as.kind)
		return
	}
	env := as.machine.env
	loading := as.status == AssetStateLoading
	entered := as.entered
	as.status = AssetStateInactive
	as.entered = false

	as.exitNode(func() {
		if loading {
			as.pipeline.Cancel()
		}
		as.unbindReferences()
		as.destroyAndRelease()
		if entered {
			as.hooks.OnExit()
		}
	})
	env.Events.Fire(core.EVENT_CODE_STATE_EXITED, as.owner, core.EventContext{State: as.kind})
}

// Release gives an owned spawned object back to the provider before the
// state exits.
func (as *AssetState) Release(obj *scene.Entity) error {
	for _, h := range as.spawned {
		if h.Object == obj {
			return as.releaseOwned(h.ID, obj.Name)
		}
	}
	name := "<nil>"
	if obj != nil {
		name = obj.Name
	}
	err := &core.OwnershipError{State: as.kind, Object: name}
	core.LogError(err.Error())
	return err
}

func (as *AssetState) releaseOwned(id uuid.UUID, name string) error {
	for i, h := range as.spawned {
		if h.ID != id {
			continue
		}
		as.spawned = append(as.spawned[:i], as.spawned[i+1:]...)
		unbindEntity(h.Object, as.owner)
		as.machine.env.Provider.Release(h)
		core.LogDebug("self release of '%s' from %s successful", name, as.kind)
		return nil
	}
	err := &core.OwnershipError{State: as.kind, Object: name}
	core.LogError(err.Error())
	return err
}

// destroyAndRelease releases spawned objects newest first, then data
// objects, then drops the container.
func (as *AssetState) destroyAndRelease() {
	env := as.machine.env
	for i := len(as.spawned) - 1; i >= 0; i-- {
		env.Provider.Release(as.spawned[i])
	}
	for _, h := range as.data {
		env.Provider.Release(h)
	}
	as.spawned = nil
	as.data = nil

	if as.container != nil {
		env.Host.DestroyContainer(as.container)
		as.container = nil
	}
}

func (as *AssetState) onProgress(progress float64) {
	as.machine.env.Events.Fire(core.EVENT_CODE_STATE_PROGRESS, as.owner, core.EventContext{
		State:    as.kind,
		Progress: progress,
	})
}

func (as *AssetState) onSpawned(h *SpawnHandle) {
	as.spawned = append(as.spawned, h)
	h.Object.AddComponent(&SelfReleasingHandle{
		owners:   as.machine.owners,
		ownerID:  as.ownerID,
		handleID: h.ID,
	})
}

func (as *AssetState) onData(h *DataHandle) {
	as.data = append(as.data, h)
}

func (as *AssetState) onReady() {
	as.bindReferences()
	as.status = AssetStateActive
	as.entered = true
	core.LogInfo("%s: initialization done", as.kind)
	as.machine.env.Events.Fire(core.EVENT_CODE_STATE_ENTERED, as.owner, core.EventContext{
		State:    as.kind,
		Progress: 1,
	})
	as.hooks.OnEnter()
}

func appendUnique[T comparable](base []T, extra []T) []T {
	if len(extra) == 0 {
		return base
	}
	seen := make(map[T]struct{}, len(base)+len(extra))
	out := make([]T, 0, len(base)+len(extra))
	for _, list := range [][]T{base, extra} {
		for _, ref := range list {
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			out = append(out, ref)
		}
	}
	return out
}

package assets

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spaghettifunk/anima/engine/assets/loaders"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/scene"
	"github.com/spaghettifunk/anima/engine/states"
	"github.com/spaghettifunk/anima/engine/systems"
)

type templateEntry struct {
	template *loaders.PrefabTemplate
	refs     int
	stale    bool
}

type dataEntry struct {
	value interface{}
	refs  int
	stale bool
}

type liveHandle struct {
	address string
	object  *scene.Entity
}

// Provider is the file backed states.AssetProvider. File reads and decoding
// run on the job system; instantiation, caching and every completion happen
// on the goroutine pumping the dispatcher.
//
// Templates and data values are cached per address and reference counted by
// the handles that use them. The last release unloads the entry.
type Provider struct {
	manager    *AssetManager
	jobs       *systems.JobSystem
	dispatcher systems.Poster
	components *ComponentRegistry
	loaders    map[AssetType]Loader
	dataLoader *loaders.DataLoader

	templates map[string]*templateEntry
	values    map[string]*dataEntry
	live      map[uuid.UUID]liveHandle
	metrics   *core.LoadMetrics
}

func NewProvider(manager *AssetManager, jobs *systems.JobSystem, dispatcher systems.Poster) *Provider {
	p := &Provider{
		manager:    manager,
		jobs:       jobs,
		dispatcher: dispatcher,
		components: NewComponentRegistry(),
		loaders:    make(map[AssetType]Loader),
		dataLoader: loaders.NewDataLoader(),
		templates:  make(map[string]*templateEntry),
		values:     make(map[string]*dataEntry),
		live:       make(map[uuid.UUID]liveHandle),
		metrics:    core.NewLoadMetrics(),
	}
	p.registerLoader(AssetTypePrefab, &loaders.PrefabLoader{})
	p.registerLoader(AssetTypeData, p.dataLoader)

	manager.OnChange(p.onAssetChanged)
	return p
}

func (p *Provider) registerLoader(assetType AssetType, l Loader) {
	p.loaders[assetType] = l
}

func (p *Provider) Components() *ComponentRegistry {
	return p.components
}

// RegisterDataKind makes data files of the given kind decode into *T.
func RegisterDataKind[T any](p *Provider, kind string) error {
	return p.dataLoader.Register(kind, loaders.Decoder[T]())
}

func (p *Provider) Metrics() core.MetricsSnapshot {
	return p.metrics.Snapshot()
}

func (p *Provider) LiveHandles() int {
	return len(p.live)
}

// TemplateRefs is the number of live instances spawned from address.
func (p *Provider) TemplateRefs(address string) int {
	if e, ok := p.templates[address]; ok {
		return e.refs
	}
	return 0
}

// DataRefs is the number of live handles sharing the value at address.
func (p *Provider) DataRefs(address string) int {
	if e, ok := p.values[address]; ok {
		return e.refs
	}
	return 0
}

func (p *Provider) AcquireSpawnable(ctx context.Context, ref *states.SpawnableRef, host *scene.Entity, done states.SpawnCompletion) {
	start := time.Now()
	addr := ref.Address

	if entry, ok := p.templates[addr]; ok && !entry.stale {
		entry.refs++
		p.dispatcher.Post(func() { p.finishSpawn(ctx, ref, host, entry, start, done) })
		return
	}

	p.load(ref.Address, AssetTypePrefab, func(result interface{}) {
		tmpl, ok := result.(*loaders.PrefabTemplate)
		if !ok {
			p.fail(fmt.Errorf("%w: %s is not a prefab", ErrWrongAssetType, addr), func(err error) { done(nil, err) })
			return
		}
		entry := p.cacheTemplate(addr, tmpl)
		entry.refs++
		p.finishSpawn(ctx, ref, host, entry, start, done)
	}, func(err error) { done(nil, err) })
}

func (p *Provider) AcquireData(ctx context.Context, ref *states.DataRef, done states.DataCompletion) {
	start := time.Now()
	addr := ref.Address

	if entry, ok := p.values[addr]; ok && !entry.stale {
		entry.refs++
		p.dispatcher.Post(func() { p.finishData(ctx, ref, entry, start, done) })
		return
	}

	p.load(ref.Address, AssetTypeData, func(result interface{}) {
		entry := p.cacheData(addr, result)
		entry.refs++
		p.finishData(ctx, ref, entry, start, done)
	}, func(err error) { done(nil, err) })
}

// Release gives a handle back. Unknown handles, including ones already
// released, are logged and ignored.
func (p *Provider) Release(h states.Handle) {
	if h == nil {
		return
	}
	id := h.HandleID()
	entry, ok := p.live[id]
	if !ok {
		p.metrics.RecordStaleRelease()
		core.LogWarn("release of unknown or already released handle %s ignored", id)
		return
	}
	delete(p.live, id)
	p.metrics.RecordRelease()

	if entry.object != nil {
		entry.object.Destroy()
		p.releaseTemplate(entry.address)
		return
	}
	p.releaseData(entry.address)
}

// load resolves address and reads it on a worker. Exactly one of onSuccess
// or onFailure runs later on the control goroutine.
func (p *Provider) load(address string, want AssetType, onSuccess func(interface{}), onFailure func(error)) {
	info, err := p.manager.Resolve(address)
	if err == nil && info.Type != want {
		err = fmt.Errorf("%w: %s is %s, expected %s", ErrWrongAssetType, address, info.Type, want)
	}
	if err != nil {
		p.dispatcher.Post(func() { p.fail(err, onFailure) })
		return
	}

	loader := p.loaders[want]
	err = p.jobs.Submit(systems.JobTask{
		Name: want.String() + " " + address,
		Run: func() (interface{}, error) {
			return loader.Load(info.Path)
		},
		OnSuccess: onSuccess,
		OnFailure: func(err error) { p.fail(err, onFailure) },
	})
	if err != nil {
		p.dispatcher.Post(func() { p.fail(err, onFailure) })
	}
}

func (p *Provider) fail(err error, onFailure func(error)) {
	p.metrics.RecordLoad(0, err)
	onFailure(err)
}

func (p *Provider) finishSpawn(ctx context.Context, ref *states.SpawnableRef, host *scene.Entity, entry *templateEntry, start time.Time, done states.SpawnCompletion) {
	if err := ctx.Err(); err != nil {
		p.releaseTemplate(ref.Address)
		done(nil, err)
		return
	}
	obj, err := p.components.Instantiate(entry.template)
	if err != nil {
		p.releaseTemplate(ref.Address)
		p.fail(err, func(err error) { done(nil, err) })
		return
	}
	if host != nil {
		host.AddChild(obj)
	}

	h := &states.SpawnHandle{ID: uuid.New(), Ref: ref, Object: obj}
	p.live[h.ID] = liveHandle{address: ref.Address, object: obj}
	p.metrics.RecordLoad(time.Since(start), nil)
	done(h, nil)
}

func (p *Provider) finishData(ctx context.Context, ref *states.DataRef, entry *dataEntry, start time.Time, done states.DataCompletion) {
	if err := ctx.Err(); err != nil {
		p.releaseData(ref.Address)
		done(nil, err)
		return
	}
	h := &states.DataHandle{ID: uuid.New(), Ref: ref, Value: entry.value}
	p.live[h.ID] = liveHandle{address: ref.Address}
	p.metrics.RecordLoad(time.Since(start), nil)
	done(h, nil)
}

// cacheTemplate keeps the first fresh template for an address; concurrent
// loads of the same address share it.
func (p *Provider) cacheTemplate(address string, tmpl *loaders.PrefabTemplate) *templateEntry {
	entry, ok := p.templates[address]
	if !ok {
		entry = &templateEntry{}
		p.templates[address] = entry
	}
	if !ok || entry.stale {
		entry.template = tmpl
		entry.stale = false
	}
	return entry
}

func (p *Provider) cacheData(address string, value interface{}) *dataEntry {
	entry, ok := p.values[address]
	if !ok {
		entry = &dataEntry{}
		p.values[address] = entry
	}
	if !ok || entry.stale {
		entry.value = value
		entry.stale = false
	}
	return entry
}

func (p *Provider) releaseTemplate(address string) {
	entry, ok := p.templates[address]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(p.templates, address)
		core.LogDebug("prefab '%s' unloaded", address)
	}
}

func (p *Provider) releaseData(address string) {
	entry, ok := p.values[address]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(p.values, address)
		core.LogDebug("data '%s' unloaded", address)
	}
}

// onAssetChanged drops cached entries for a changed file. Entries still in
// use are marked stale so the next acquisition reloads them.
func (p *Provider) onAssetChanged(info AssetInfo, op ChangeOp) {
	switch info.Type {
	case AssetTypePrefab:
		if entry, ok := p.templates[info.Address]; ok {
			if entry.refs <= 0 {
				delete(p.templates, info.Address)
			} else {
				entry.stale = true
			}
		}
	case AssetTypeData:
		if entry, ok := p.values[info.Address]; ok {
			if entry.refs <= 0 {
				delete(p.values, info.Address)
			} else {
				entry.stale = true
			}
		}
	default:
		return
	}
	core.LogDebug("asset '%s' %s, cache invalidated", info.Address, op)
}

package states

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/scene"
)

// fakeProvider queues acquisitions until the test completes them, in any
// order it likes. Addresses in fail complete with an error only; addresses in
// halfFail acquire a handle and still report an error with it.
type fakeProvider struct {
	pending    []*pendingAcquisition
	fail       map[string]error
	halfFail   map[string]error
	components map[string]func(e *scene.Entity)
	data       map[string]func() interface{}
	live       map[uuid.UUID]Handle
	released   map[uuid.UUID]int
	stale      int
	acquired   []Handle
}

type pendingAcquisition struct {
	address  string
	complete func()
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		fail:       make(map[string]error),
		halfFail:   make(map[string]error),
		components: make(map[string]func(e *scene.Entity)),
		data:       make(map[string]func() interface{}),
		live:       make(map[uuid.UUID]Handle),
		released:   make(map[uuid.UUID]int),
	}
}

func (p *fakeProvider) AcquireSpawnable(ctx context.Context, ref *SpawnableRef, host *scene.Entity, done SpawnCompletion) {
	p.pending = append(p.pending, &pendingAcquisition{
		address: ref.Address,
		complete: func() {
			if err := p.fail[ref.Address]; err != nil {
				done(nil, err)
				return
			}
			e := scene.NewEntity(ref.Address)
			if build, ok := p.components[ref.Address]; ok {
				build(e)
			}
			host.AddChild(e)
			h := &SpawnHandle{ID: uuid.New(), Ref: ref, Object: e}
			p.live[h.ID] = h
			p.acquired = append(p.acquired, h)
			done(h, p.halfFail[ref.Address])
		},
	})
}

func (p *fakeProvider) AcquireData(ctx context.Context, ref *DataRef, done DataCompletion) {
	p.pending = append(p.pending, &pendingAcquisition{
		address: ref.Address,
		complete: func() {
			if err := p.fail[ref.Address]; err != nil {
				done(nil, err)
				return
			}
			var value interface{} = ref.Address
			if build, ok := p.data[ref.Address]; ok {
				value = build()
			}
			h := &DataHandle{ID: uuid.New(), Ref: ref, Value: value}
			p.live[h.ID] = h
			p.acquired = append(p.acquired, h)
			done(h, p.halfFail[ref.Address])
		},
	})
}

func (p *fakeProvider) Release(h Handle) {
	p.released[h.HandleID()]++
	if _, ok := p.live[h.HandleID()]; !ok {
		p.stale++
		return
	}
	delete(p.live, h.HandleID())
	if sh, ok := h.(*SpawnHandle); ok {
		sh.Object.Destroy()
	}
}

// completeAt runs the i-th still pending acquisition.
func (p *fakeProvider) completeAt(i int) {
	acq := p.pending[i]
	p.pending = append(p.pending[:i], p.pending[i+1:]...)
	acq.complete()
}

func (p *fakeProvider) completeAll() {
	for len(p.pending) > 0 {
		p.completeAt(0)
	}
}

func (p *fakeProvider) completeReverse() {
	for len(p.pending) > 0 {
		p.completeAt(len(p.pending) - 1)
	}
}

var errBroken = errors.New("broken asset")

func spawnRefs(addresses ...string) []*SpawnableRef {
	out := make([]*SpawnableRef, 0, len(addresses))
	for _, a := range addresses {
		out = append(out, NewSpawnableRef(a))
	}
	return out
}

func dataRefs(addresses ...string) []*DataRef {
	out := make([]*DataRef, 0, len(addresses))
	for _, a := range addresses {
		out = append(out, NewDataRef(a))
	}
	return out
}

// captureLogs sends engine log output to a buffer for the rest of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	core.SetLogOutput(&buf)
	t.Cleanup(func() { core.SetLogOutput(os.Stderr) })
	return &buf
}

func newTestMachine(t *testing.T, sets ...*ReferenceSet) (*Machine, *fakeProvider, *scene.World) {
	t.Helper()
	refs := ReferenceSets{}
	for _, rs := range sets {
		refs.Add(rs)
	}
	provider := newFakeProvider()
	world := scene.NewWorld()
	m, err := NewMachine(Environment{
		Provider:   provider,
		Host:       world,
		References: refs,
	})
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	return m, provider, world
}

package states

import (
	"context"
	"errors"
	"fmt"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/scene"
)

var ErrPipelineStarted = errors.New("pipeline already started")

type PipelineStatus int

const (
	PipelineIdle PipelineStatus = iota
	PipelineAcquiring
	PipelineReady
	PipelineCancelled
)

func (s PipelineStatus) String() string {
	switch s {
	case PipelineIdle:
		return "Idle"
	case PipelineAcquiring:
		return "Acquiring"
	case PipelineReady:
		return "Ready"
	case PipelineCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// PipelineCallbacks receive the pipeline's output. All of them run on the
// control goroutine. Any of them may be nil.
type PipelineCallbacks struct {
	Progress func(progress float64)
	Spawned  func(h *SpawnHandle)
	Data     func(h *DataHandle)
	Ready    func()
}

// Pipeline acquires one activation's worth of assets and joins their
// completions into a single ready signal.
//
// The expected step count is one more than the number of refs: the extra
// step is taken by Start itself after every acquisition was issued, so
// progress cannot reach 1 before Start has finished issuing.
type Pipeline struct {
	name      string
	provider  AssetProvider
	callbacks PipelineCallbacks

	status    PipelineStatus
	expected  int
	completed int
	failures  int
	cancel    context.CancelFunc
	clock     *core.Clock
}

func NewPipeline(name string, provider AssetProvider, callbacks PipelineCallbacks) *Pipeline {
	return &Pipeline{
		name:      name,
		provider:  provider,
		callbacks: callbacks,
		status:    PipelineIdle,
		clock:     core.NewClock(),
	}
}

// Start issues one acquisition per ref and then takes the synthetic step.
// With no refs at all the pipeline is ready before Start returns.
func (p *Pipeline) Start(ctx context.Context, host *scene.Entity, spawnables []*SpawnableRef, data []*DataRef) error {
	if p.status != PipelineIdle {
		return fmt.Errorf("%s: %w (status %s)", p.name, ErrPipelineStarted, p.status)
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.expected = len(spawnables) + len(data) + 1
	p.completed = 0
	p.status = PipelineAcquiring
	p.clock.Start()

	core.LogDebug("%s: acquiring %d spawnables and %d data objects", p.name, len(spawnables), len(data))

	for _, ref := range spawnables {
		ref := ref
		p.provider.AcquireSpawnable(ctx, ref, host, func(h *SpawnHandle, err error) {
			p.spawnCompleted(ref, h, err)
		})
	}
	for _, ref := range data {
		ref := ref
		p.provider.AcquireData(ctx, ref, func(h *DataHandle, err error) {
			p.dataCompleted(ref, h, err)
		})
	}

	p.step()
	return nil
}

// Cancel stops a pipeline that is still acquiring. Completions arriving
// afterwards are released straight back to the provider and Ready never
// fires. It reports whether anything was cancelled.
func (p *Pipeline) Cancel() bool {
	if p.status != PipelineAcquiring {
		return false
	}
	p.status = PipelineCancelled
	p.cancel()
	core.LogWarn("%s: acquisition cancelled at %d/%d steps", p.name, p.completed, p.expected)
	return true
}

func (p *Pipeline) Status() PipelineStatus {
	return p.status
}

func (p *Pipeline) Expected() int {
	return p.expected
}

func (p *Pipeline) Completed() int {
	return p.completed
}

func (p *Pipeline) Failures() int {
	return p.failures
}

func (p *Pipeline) Progress() float64 {
	if p.status == PipelineIdle {
		return 0
	}
	return math.Fraction(p.completed, p.expected)
}

func (p *Pipeline) spawnCompleted(ref *SpawnableRef, h *SpawnHandle, err error) {
	if p.discardLate(h) {
		return
	}
	if err == nil && h == nil {
		err = errors.New("provider returned no handle")
	}
	if err != nil {
		if h != nil {
			p.provider.Release(h)
		}
		p.fail(ref.Address, err)
	} else if p.callbacks.Spawned != nil {
		p.callbacks.Spawned(h)
	}
	p.step()
}

func (p *Pipeline) dataCompleted(ref *DataRef, h *DataHandle, err error) {
	if p.discardLate(h) {
		return
	}
	if err == nil && h == nil {
		err = errors.New("provider returned no handle")
	}
	if err != nil {
		if h != nil {
			p.provider.Release(h)
		}
		p.fail(ref.Address, err)
	} else if p.callbacks.Data != nil {
		p.callbacks.Data(h)
	}
	p.step()
}

// discardLate handles completions that arrive when the pipeline no longer
// accepts them. Acquired handles go straight back to the provider.
func (p *Pipeline) discardLate(h Handle) bool {
	if p.status == PipelineAcquiring {
		return false
	}
	if h != nil && !isNilHandle(h) {
		core.LogDebug("%s: releasing %s acquired after pipeline became %s", p.name, h.HandleID(), p.status)
		p.provider.Release(h)
	}
	return true
}

func (p *Pipeline) fail(address string, err error) {
	p.failures++
	aerr := &core.AcquisitionError{Address: address, Err: err}
	core.LogError("%s: %v", p.name, aerr)
}

func (p *Pipeline) step() {
	p.completed++
	progress := math.Fraction(p.completed, p.expected)
	if p.callbacks.Progress != nil {
		p.callbacks.Progress(progress)
	}
	// a progress listener may have cancelled the pipeline
	if p.completed < p.expected || p.status != PipelineAcquiring {
		return
	}

	p.status = PipelineReady
	p.cancel()
	p.clock.Update()
	core.LogInfo("%s: ready in %s (%d steps, %d failed)", p.name, p.clock.Elapsed(), p.expected, p.failures)
	if p.callbacks.Ready != nil {
		p.callbacks.Ready()
	}
}

// isNilHandle catches typed nil pointers stored in the Handle interface.
func isNilHandle(h Handle) bool {
	switch v := h.(type) {
	case *SpawnHandle:
		return v == nil
	case *DataHandle:
		return v == nil
	}
	return false
}

package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima/engine/core"
)

// JobTask is a unit of blocking work. Run executes on a worker; exactly one
// of OnSuccess or OnFailure is then posted back to the control goroutine.
type JobTask struct {
	Name      string
	Run       func() (interface{}, error)
	OnSuccess func(result interface{})
	OnFailure func(err error)
}

// Poster queues a function to run on the control goroutine.
type Poster interface {
	Post(fn func())
}

type JobSystemConfig struct {
	NumWorkers  int
	ChannelSize int
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	results    Poster
	wg         sync.WaitGroup

	mutex  sync.RWMutex
	closed bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemShutdown = fmt.Errorf("job system is shut down")

func NewJobSystem(config JobSystemConfig, results Poster) (*JobSystem, error) {
	if config.NumWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if config.ChannelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: config.NumWorkers,
		jobQueue:   make(chan JobTask, config.ChannelSize),
		results:    results,
	}

	js.start()

	core.LogInfo("job system started with %d workers", config.NumWorkers)
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	result, err := job.Run()
	if err != nil {
		core.LogDebug("job '%s' failed: %v", job.Name, err)
		if job.OnFailure != nil {
			js.results.Post(func() { job.OnFailure(err) })
		}
		return
	}
	if job.OnSuccess != nil {
		js.results.Post(func() { job.OnSuccess(result) })
	}
}

/**
 * @brief Shuts the job system down. Queued jobs still run; their results are
 * posted but only delivered if the dispatcher is pumped afterwards.
 */
func (js *JobSystem) Shutdown() error {
	js.mutex.Lock()
	if js.closed {
		js.mutex.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.mutex.Unlock()

	js.wg.Wait()
	return nil
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while the
 * queue is full.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	js.mutex.RLock()
	defer js.mutex.RUnlock()
	if js.closed {
		return ErrJobSystemShutdown
	}
	js.jobQueue <- jt
	return nil
}

package core

import (
	"sync"

	"github.com/spaghettifunk/anima/engine/containers"
)

// Dispatcher funnels work posted from any goroutine onto the control
// goroutine, which drains it with Pump once per frame. Everything that
// mutates state machine or provider bookkeeping runs inside Pump.
type Dispatcher struct {
	mutex sync.Mutex
	queue *containers.RingQueue[func()]
}

func NewDispatcher(initialSize int) *Dispatcher {
	return &Dispatcher{
		queue: containers.NewGrowableRingQueue[func()](initialSize),
	}
}

// Post queues fn. Safe to call from any goroutine.
func (d *Dispatcher) Post(fn func()) {
	if fn == nil {
		return
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()
	// growable queues never reject
	_ = d.queue.Enqueue(fn)
}

// Pump runs the callbacks that were queued when it was called and returns how
// many ran. Callbacks posted while pumping run on the next Pump.
func (d *Dispatcher) Pump() int {
	d.mutex.Lock()
	n := d.queue.Len()
	d.mutex.Unlock()

	for i := 0; i < n; i++ {
		d.mutex.Lock()
		fn, err := d.queue.Dequeue()
		d.mutex.Unlock()
		if err != nil {
			return i
		}
		fn()
	}
	return n
}

// Pending reports how many callbacks are waiting.
func (d *Dispatcher) Pending() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.queue.Len()
}

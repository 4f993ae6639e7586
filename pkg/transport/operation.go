package transport

import (
	"sync"

	"github.com/matst80/slask-list/pkg/types"
)

// Scheduler runs continuations, typically by posting them to the UI loop.
type Scheduler interface {
	Post(fn func())
}

// Operation is the pending result of a list request. It settles exactly once,
// either with an HTML fragment or with a Failure.
type Operation struct {
	mu        sync.Mutex
	scheduler Scheduler
	settled   bool
	html      string
	failure   *types.Failure
	callbacks []callback
}

type callback struct {
	success func(html string)
	failure func(f *types.Failure)
}

// NewOperation creates a pending operation. Without a scheduler continuations
// run on the goroutine that settles the operation.
func NewOperation(scheduler Scheduler) *Operation {
	return &Operation{scheduler: scheduler}
}

func (o *Operation) Resolve(html string) {
	o.settle(html, nil)
}

func (o *Operation) Reject(f *types.Failure) {
	if f == nil {
		f = &types.Failure{StatusText: "error"}
	}
	o.settle("", f)
}

func (o *Operation) settle(html string, f *types.Failure) {
	o.mu.Lock()
	if o.settled {
		o.mu.Unlock()
		return
	}
	o.settled = true
	o.html = html
	o.failure = f
	callbacks := o.callbacks
	o.callbacks = nil
	o.mu.Unlock()
	if len(callbacks) == 0 {
		return
	}
	// Continuations run in order within a single task.
	o.schedule(func() {
		for _, cb := range callbacks {
			o.call(cb)
		}
	})
}

// Then registers continuations. Either may be nil.
func (o *Operation) Then(success func(html string), failure func(f *types.Failure)) *Operation {
	cb := callback{success: success, failure: failure}
	o.mu.Lock()
	if !o.settled {
		o.callbacks = append(o.callbacks, cb)
		o.mu.Unlock()
		return o
	}
	o.mu.Unlock()
	o.run(cb)
	return o
}

func (o *Operation) run(cb callback) {
	o.schedule(func() { o.call(cb) })
}

func (o *Operation) call(cb callback) {
	if o.failure != nil {
		if cb.failure != nil {
			cb.failure(o.failure)
		}
		return
	}
	if cb.success != nil {
		cb.success(o.html)
	}
}

func (o *Operation) schedule(fn func()) {
	if o.scheduler != nil {
		o.scheduler.Post(fn)
		return
	}
	fn()
}

func (o *Operation) Settled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settled
}

// Package workpool runs tasks on a fixed set of goroutines fed by a bounded queue.
package workpool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gptankit/rawserve/errorlog"
	"github.com/gptankit/rawserve/tcputils"
)

var (
	ErrInvalidPoolSize = errors.New("invalid size for pool")
	ErrPoolClosed      = errors.New("this pool has been closed")
)

// Pool is created once for the server's lifetime. Submit blocks while the queue
// is full, which pushes back on whoever is producing work.
type Pool struct {
	tasks   chan func()
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	workers int
	running int32
}

// New starts workers goroutines reading from a queue of the given capacity.
func New(workers int, queue int) (*Pool, error) {

	if workers <= 0 || queue < 0 {
		return nil, ErrInvalidPoolSize
	}

	p := &Pool{
		tasks:   make(chan func(), queue),
		workers: workers,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}

	return p, nil
}

func (p *Pool) work() {

	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

// run executes a task, keeping the worker alive if it panics.
func (p *Pool) run(task func()) {

	atomic.AddInt32(&p.running, 1)
	defer atomic.AddInt32(&p.running, -1)
	defer func() {
		if r := recover(); r != nil {
			errorlog.LogRequestError("workpool", tcputils.SERVER_HANDLER_ERR, fmt.Sprintf("task panic: %v", r))
		}
	}()

	task()
}

// Submit queues task, blocking while the queue is full.
func (p *Pool) Submit(task func()) error {

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	p.tasks <- task
	return nil
}

// Stop refuses new tasks, lets queued ones finish and waits for the workers.
// A Submit blocked on a full queue keeps Stop waiting until it gets through.
func (p *Pool) Stop() {

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

// Cap returns the number of workers.
func (p *Pool) Cap() int {

	return p.workers
}

// Running returns the number of tasks being executed right now.
func (p *Pool) Running() int {

	return int(atomic.LoadInt32(&p.running))
}

// Queued returns the number of tasks waiting for a worker.
func (p *Pool) Queued() int {

	return len(p.tasks)
}

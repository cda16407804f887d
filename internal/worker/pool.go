package worker

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrPoolClosed is returned when submitting to a pool that has been closed.
	ErrPoolClosed = errors.New("worker pool closed")
	// ErrPoolSaturated is returned when the pending queue is full.
	ErrPoolSaturated = errors.New("worker pool saturated")
	// ErrTaskPanicked is returned through the future of a task that panicked.
	ErrTaskPanicked = errors.New("worker task panicked")
)

// Pool runs blocking work on a fixed set of goroutines fed by a bounded FIFO queue.
type Pool struct {
	tasks chan func()

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool starts size workers. queueSize is the number of tasks that may wait
// for a free worker before Submit reports ErrPoolSaturated.
func NewPool(size, queueSize int) *Pool {
	if size <= 0 {
		size = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{tasks: make(chan func(), queueSize)}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Close stops accepting work, lets queued tasks finish and waits for the workers.
func (p *Pool) Close() {
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

func (p *Pool) enqueue(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolSaturated
	}
}

// Future is the pending result of a submitted task.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Await blocks until the task has run. There is no timeout.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.value, f.err
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Submit schedules fn on the pool. The returned error only reports dispatch
// failures; errors from fn are delivered through the future.
func Submit[T any](p *Pool, fn func() (T, error)) (*Future[T], error) {
	f := &Future[T]{done: make(chan struct{})}
	task := func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
			}
		}()
		f.value, f.err = fn()
	}
	if err := p.enqueue(task); err != nil {
		return nil, err
	}
	return f, nil
}

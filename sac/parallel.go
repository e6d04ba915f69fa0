package sac

import (
	"runtime"
	"sync"
)

// WorkerPool runs tasks on a fixed number of goroutines. Submitted tasks
// queue in FIFO order until a worker is free; there is no buffering beyond
// the submission channel.
type WorkerPool struct {
	numWorkers int
	wg         sync.WaitGroup
	taskChan   chan func()
	once       sync.Once
}

// NewWorkerPool creates a pool with numWorkers goroutines.
// A non-positive numWorkers uses runtime.GOMAXPROCS(0).
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &WorkerPool{
		numWorkers: numWorkers,
		taskChan:   make(chan func(), numWorkers),
	}
	for i := 0; i < numWorkers; i++ {
		go pool.worker()
	}
	return pool
}

// NumWorkers returns the pool size.
func (p *WorkerPool) NumWorkers() int {
	return p.numWorkers
}

func (p *WorkerPool) worker() {
	for task := range p.taskChan {
		task()
		p.wg.Done()
	}
}

// Submit queues a task for execution. It blocks when the queue is full.
func (p *WorkerPool) Submit(task func()) {
	p.wg.Add(1)
	p.taskChan <- task
}

// Wait blocks until all submitted tasks have completed.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// Close shuts down the pool's workers. Tasks already queued still run.
func (p *WorkerPool) Close() {
	p.once.Do(func() {
		close(p.taskChan)
	})
}

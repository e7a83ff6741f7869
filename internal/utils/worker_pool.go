package utils

import "sync"

// WorkerPool runs submitted tasks on a fixed set of goroutines so callers
// can fan work out without spawning per-call goroutines.
type WorkerPool struct {
	tasks chan func()
	wg    sync.WaitGroup
}

// NewWorkerPool starts a pool of the given size. The task queue is buffered
// to the same size, so Submit only blocks once every worker is busy and the
// buffer is full.
func NewWorkerPool(workers int) *WorkerPool {
	pool := &WorkerPool{
		tasks: make(chan func(), workers),
	}

	pool.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer pool.wg.Done()
			for task := range pool.tasks {
				task()
			}
		}()
	}

	return pool
}

// Submit enqueues one task for execution.
func (wp *WorkerPool) Submit(task func()) {
	wp.tasks <- task
}

// Shutdown stops accepting tasks and waits until the queued ones finish.
// Submitting after Shutdown panics.
func (wp *WorkerPool) Shutdown() {
	close(wp.tasks)
	wp.wg.Wait()
}

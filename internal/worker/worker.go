package worker

import (
	"context"
	"log"
	"runtime"
	"sync"
	"time"
)

// Task is a unit of background work.
type Task interface {
	Execute()
}

// WorkerPool is a bounded goroutine pool with a task queue.
type WorkerPool struct {
	workers int
	queue   chan Task
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	mu      sync.Mutex
}

var (
	globalPool *WorkerPool
	once       sync.Once
)

// InitGlobalPool initializes the global pool once.
func InitGlobalPool(workers, queueSize int) {
	once.Do(func() {
		globalPool = NewWorkerPool(workers, queueSize)
		globalPool.Start()
	})
}

// GetGlobalPool returns the global pool.
func GetGlobalPool() *WorkerPool {
	return globalPool
}

// StopGlobalPool stops the global pool.
func StopGlobalPool() {
	if globalPool != nil {
		globalPool.Stop()
	}
}

// NewWorkerPool creates a pool.
func NewWorkerPool(workers, queueSize int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	if queueSize <= 0 {
		queueSize = 1000
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		workers: workers,
		queue:   make(chan Task, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers.
func (p *WorkerPool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	p.started = true
	log.Printf("Background worker pool started with %d workers", p.workers)
}

// Stop rejects new submissions, waits for the workers to drain the
// queued tasks, and closes the queue.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	close(p.queue)

	p.mu.Lock()
	p.started = false
	p.mu.Unlock()

	log.Println("Background worker pool stopped")
}

// Submit enqueues a task without blocking. A full queue drops the task.
func (p *WorkerPool) Submit(task Task) bool {
	select {
	case p.queue <- task:
		return true
	case <-p.ctx.Done():
		return false
	default:
		log.Println("WARN: Worker pool queue is full, task dropped")
		return false
	}
}

// SubmitBlocking enqueues a task, waiting up to timeout for queue
// space. timeout <= 0 waits until the pool stops.
func (p *WorkerPool) SubmitBlocking(task Task, timeout time.Duration) bool {
	if timeout <= 0 {
		select {
		case p.queue <- task:
			return true
		case <-p.ctx.Done():
			return false
		}
	}

	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	select {
	case p.queue <- task:
		return true
	case <-ctx.Done():
		return false
	}
}

// TrySubmit retries Submit with a fixed interval between attempts.
func (p *WorkerPool) TrySubmit(task Task, retries int, interval time.Duration) bool {
	for i := 0; i <= retries; i++ {
		if i > 0 {
			time.Sleep(interval)
		}
		if p.Submit(task) {
			return true
		}
	}
	return false
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case task, ok := <-p.queue:
			if !ok {
				return
			}
			p.executeTask(task)
		case <-p.ctx.Done():
			p.drain()
			return
		}
	}
}

// drain runs the tasks still queued at shutdown.
func (p *WorkerPool) drain() {
	for {
		select {
		case task, ok := <-p.queue:
			if !ok {
				return
			}
			p.executeTask(task)
		default:
			return
		}
	}
}

// executeTask runs a task and recovers panics.
func (p *WorkerPool) executeTask(task Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic recovered in background task: %v", r)
		}
	}()
	task.Execute()
}

// Submit enqueues a task on the global pool.
func Submit(task Task) bool {
	if globalPool == nil {
		InitGlobalPool(0, 1000)
	}
	return globalPool.Submit(task)
}

// TrySubmit retries Submit on the global pool.
func TrySubmit(task Task, retries int, interval time.Duration) bool {
	if globalPool == nil {
		InitGlobalPool(0, 1000)
	}
	return globalPool.TrySubmit(task, retries, interval)
}

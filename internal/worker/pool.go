package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// slot pairs a job with its submission position
type slot struct {
	index int
	job   Job
}

// Pool runs jobs on a fixed number of workers. Results are returned in
// submission order regardless of completion order.
type Pool struct {
	workers    int
	jobQueue   chan slot
	mu         sync.Mutex
	results    []Result
	done       []bool
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	return NewPoolWithContext(context.Background(), workers)
}

// NewPoolWithContext creates a pool whose jobs are cancelled with parent
func NewPoolWithContext(parent context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan slot, workers*2), // Buffered to prevent blocking
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// worker is the worker goroutine that processes jobs
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case s, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := s.job.Execute(p.ctx)

			p.mu.Lock()
			p.results[s.index] = result
			p.done[s.index] = true
			p.mu.Unlock()
		}
	}
}

// Submit submits a job to the pool for execution.
// Jobs submitted after Shutdown are dropped.
func (p *Pool) Submit(job Job) {
	if p.ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	index := len(p.results)
	p.results = append(p.results, nil)
	p.done = append(p.done, false)
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
	case p.jobQueue <- slot{index: index, job: job}:
	}
}

// Wait waits for all jobs to complete and returns their results in
// submission order. Jobs that never ran are omitted.
func (p *Pool) Wait() []Result {
	p.closeQueue()
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	results := make([]Result, 0, len(p.results))
	for i, r := range p.results {
		if p.done[i] {
			results = append(results, r)
		}
	}
	return results
}

// Shutdown stops the pool immediately; queued jobs are abandoned
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeQueue()
}

func (p *Pool) closeQueue() {
	p.closeOnce.Do(func() {
		close(p.jobQueue)
	})
}

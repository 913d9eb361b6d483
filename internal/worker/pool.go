// Package worker runs fire-and-forget background tasks: backend sends that
// must not block the simulation thread. Jobs observe a "no result" contract;
// failures are caught at the job boundary and logged, never propagated.
package worker

import (
	"context"
	"sync"

	"github.com/strafemod/paintkit/internal/logger"
)

// LogMsgWorkerJobFailed is logged when a worker fails to process a job
const LogMsgWorkerJobFailed = "Worker job failed"

// LogMsgWorkerJobPanicked is logged when a job panics inside a worker
const LogMsgWorkerJobPanicked = "Worker job panicked"

// Job represents a task to be executed by a worker
type Job interface {
	Process(ctx context.Context) error
}

// Pool represents a worker pool
type Pool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup
	quit     chan struct{}
}

// NewPool creates a new worker pool
func NewPool(workers int, queueSize int) *Pool {
	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
		quit:     make(chan struct{}),
	}
}

// Start starts the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobQueue:
			p.process(job)
		case <-p.quit:
			return
		}
	}
}

// process runs one job behind a recover boundary: a panicking job must take
// down neither its worker nor the host process.
func (p *Pool) process(job Job) {
	ctx := context.Background()
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).Error(LogMsgWorkerJobPanicked, "panic", r)
		}
	}()

	if err := job.Process(ctx); err != nil {
		logger.FromContext(ctx).Error(LogMsgWorkerJobFailed, "error", err)
	}
}

// TryEnqueue adds a job to the queue without blocking. It returns false when
// the queue is full; callers treat that as a dropped send, which every job
// in this plugin tolerates.
func (p *Pool) TryEnqueue(job Job) bool {
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// Enqueue adds a job to the queue, blocking while the queue is full.
func (p *Pool) Enqueue(job Job) {
	p.jobQueue <- job
}

// Stop stops the workers and waits for them to finish
func (p *Pool) Stop() {
	close(p.quit)
	p.wg.Wait()
}

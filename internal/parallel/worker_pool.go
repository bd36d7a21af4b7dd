// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"payee-scan/internal/core"
	"payee-scan/internal/observability"
)

// Extractor is the part of core.Engine the pool needs
type Extractor interface {
	Extract(req core.Request) (core.Result, error)
}

// WorkerPool runs extraction requests on a fixed number of goroutines
type WorkerPool struct {
	workers   int
	jobs      chan *Job
	results   chan *Result
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	observer  *observability.StandardObserver
	extractor Extractor
}

// Job represents one message to extract
type Job struct {
	JobID   string
	Index   int
	Request core.Request
}

// Result represents the outcome of one job
type Result struct {
	JobID    string
	Index    int
	Request  core.Request
	Result   core.Result
	Error    error
	Duration time.Duration
}

// NewWorkerPool creates a new worker pool bound to ctx
func NewWorkerPool(ctx context.Context, workers int, extractor Extractor, observer *observability.StandardObserver) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workers:   workers,
		jobs:      make(chan *Job, workers*2),
		results:   make(chan *Result, workers*2),
		ctx:       ctx,
		cancel:    cancel,
		observer:  observer,
		extractor: extractor,
	}
}

// Start initializes worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop waits for the workers to exit and releases the pool. The job
// channel must be closed first.
func (wp *WorkerPool) Stop() {
	wp.wg.Wait()
	close(wp.results)
	wp.cancel()
}

// Submit adds a job to the queue. It gives up when the pool is cancelled.
func (wp *WorkerPool) Submit(job *Job) bool {
	select {
	case wp.jobs <- job:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Close signals that no more jobs will be submitted
func (wp *WorkerPool) Close() {
	close(wp.jobs)
}

// Results returns the results channel
func (wp *WorkerPool) Results() <-chan *Result {
	return wp.results
}

// Workers returns the number of worker goroutines
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		result := wp.processJob(job, id)

		select {
		case wp.results <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

// processJob extracts a single message, turning a panic into an error so
// that one bad message cannot take down the batch
func (wp *WorkerPool) processJob(job *Job, workerID int) (result *Result) {
	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if wp.observer != nil {
		finishTiming = wp.observer.StartTiming("worker_pool", "process_job", job.JobID)
	}

	result = &Result{JobID: job.JobID, Index: job.Index, Request: job.Request}
	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Errorf("extraction panicked: %v", r)
		}
		result.Duration = time.Since(start)
		if finishTiming != nil {
			finishTiming(result.Error == nil, map[string]interface{}{
				"worker_id":   workerID,
				"index":       job.Index,
				"duration_ms": result.Duration.Milliseconds(),
				"had_error":   result.Error != nil,
			})
		}
	}()

	result.Result, result.Error = wp.extractor.Extract(job.Request)
	return result
}

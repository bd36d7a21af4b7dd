// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"payee-scan/internal/core"
	"payee-scan/internal/observability"
)

// ParallelProcessor extracts batches of messages concurrently
type ParallelProcessor struct {
	workers   int
	extractor Extractor
	observer  *observability.StandardObserver
}

// ProcessingStats tracks parallel processing statistics
type ProcessingStats struct {
	TotalMessages  int           `json:"total_messages"`
	ValidMessages  int           `json:"valid_messages"`
	FailedMessages int           `json:"failed_messages"`
	TotalDuration  time.Duration `json:"total_duration_ms"`
	WorkerCount    int           `json:"worker_count"`
	AvgMessageTime time.Duration `json:"avg_message_time_ms"`
}

// ProgressCallback is called when a message is completed
type ProgressCallback func(completed, total int)

// DefaultWorkers returns the CPU count, capped at 8
func DefaultWorkers() int {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	return workers
}

// NewParallelProcessor creates a new parallel processor. A workers value
// below one selects DefaultWorkers.
func NewParallelProcessor(workers int, extractor Extractor, observer *observability.StandardObserver) *ParallelProcessor {
	if workers < 1 {
		workers = DefaultWorkers()
	}
	return &ParallelProcessor{
		workers:   workers,
		extractor: extractor,
		observer:  observer,
	}
}

// ProcessMessages extracts every request and returns the results in input
// order. A MalformedInput error on any request fails the batch.
func (pp *ParallelProcessor) ProcessMessages(ctx context.Context, requests []core.Request, progress ProgressCallback) ([]*Result, *ProcessingStats, error) {
	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if pp.observer != nil {
		finishTiming = pp.observer.StartTiming("parallel_processor", "process_messages", "batch")
	}

	workers := pp.workers
	if workers > len(requests) && len(requests) > 0 {
		workers = len(requests)
	}
	pool := NewWorkerPool(ctx, workers, pp.extractor, pp.observer)
	pool.Start()
	defer pool.Stop()

	// Submit jobs in a separate goroutine to prevent deadlock
	go func() {
		defer pool.Close()
		for i, req := range requests {
			if !pool.Submit(&Job{JobID: fmt.Sprintf("msg_%d", i), Index: i, Request: req}) {
				return
			}
		}
	}()

	ordered := make([]*Result, len(requests))
	stats := &ProcessingStats{TotalMessages: len(requests), WorkerCount: workers}
	var totalDuration time.Duration
	var firstErr error

	for i := 0; i < len(requests); i++ {
		var result *Result
		select {
		case result = <-pool.Results():
		case <-ctx.Done():
			pool.cancel()
			return nil, nil, ctx.Err()
		}

		ordered[result.Index] = result
		totalDuration += result.Duration
		switch {
		case result.Error != nil:
			stats.FailedMessages++
			if firstErr == nil {
				firstErr = fmt.Errorf("message %d: %w", result.Index+1, result.Error)
			}
		case result.Result.PhoneNumberValid == core.Yes || result.Result.AccountNumberValid == core.Yes:
			stats.ValidMessages++
		}

		if progress != nil {
			progress(i+1, len(requests))
		}
	}

	stats.TotalDuration = time.Since(start)
	stats.AvgMessageTime = totalDuration / time.Duration(max(len(requests), 1))

	if finishTiming != nil {
		finishTiming(firstErr == nil, map[string]interface{}{
			"total_messages":  stats.TotalMessages,
			"valid_messages":  stats.ValidMessages,
			"failed_messages": stats.FailedMessages,
			"worker_count":    workers,
			"duration_ms":     stats.TotalDuration.Milliseconds(),
		})
	}

	if firstErr != nil {
		return ordered, stats, firstErr
	}
	return ordered, stats, nil
}

// SplitMessages splits text into messages at lines holding only separator.
// Blank messages are dropped.
func SplitMessages(text, separator string) []string {
	var messages []string
	var current []string

	flush := func() {
		msg := strings.TrimSpace(strings.Join(current, "\n"))
		if msg != "" {
			messages = append(messages, msg)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == separator {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return messages
}

package engine

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/finpulse/internal/model"
)

// BatchOptions configures batch analysis.
type BatchOptions struct {
	// OnResult is called once per finished request, from worker goroutines.
	OnResult        func(BatchResult)
	ParallelWorkers int
}

// DefaultBatchOptions returns sensible defaults.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{ParallelWorkers: 4}
}

// BatchResult is the outcome of one request in a batch.
type BatchResult struct {
	Error    error
	Analysis *model.Analysis
	Index    int
}

// BatchSummary contains statistics about a batch run.
type BatchSummary struct {
	ActionCounts   map[model.ActionType]int
	Total          int
	Failed         int
	ProcessingTime time.Duration
}

// AnalyzeBatch evaluates independent requests on a bounded worker pool.
// Results are returned in request order; one failed request does not stop the others.
func (e *Engine) AnalyzeBatch(ctx context.Context, reqs []Request, opts BatchOptions) ([]BatchResult, *BatchSummary) {
	start := time.Now()
	workers := opts.ParallelWorkers
	if workers <= 0 {
		workers = 1
	}
	workers = min(workers, max(len(reqs), 1))

	workChan := make(chan int, len(reqs))
	for i := range reqs {
		workChan <- i
	}
	close(workChan)

	results := make([]BatchResult, len(reqs))

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(workerID int) {
			defer wg.Done()
			e.batchWorker(ctx, workerID, reqs, workChan, results, opts.OnResult)
		}(w)
	}
	wg.Wait()

	summary := &BatchSummary{
		Total:        len(reqs),
		ActionCounts: make(map[model.ActionType]int),
	}
	for _, r := range results {
		if r.Error != nil {
			summary.Failed++
			continue
		}
		summary.ActionCounts[r.Analysis.Action.Type]++
	}
	summary.ProcessingTime = time.Since(start)

	e.logger.Debug("batch analysis finished",
		"total", summary.Total,
		"failed", summary.Failed,
		"duration", summary.ProcessingTime)

	return results, summary
}

// batchWorker writes each result into its own slot, so no locking is needed.
func (e *Engine) batchWorker(
	ctx context.Context,
	workerID int,
	reqs []Request,
	workChan <-chan int,
	results []BatchResult,
	onResult func(BatchResult),
) {
	for i := range workChan {
		result := BatchResult{Index: i}

		if err := ctx.Err(); err != nil {
			result.Error = err
		} else {
			e.logger.Debug("worker analyzing request",
				"worker_id", workerID,
				"index", i,
				"customer_id", reqs[i].Profile.CustomerID)
			result.Analysis, result.Error = e.Evaluate(ctx, reqs[i])
		}

		results[i] = result
		if onResult != nil {
			onResult(result)
		}
	}
}


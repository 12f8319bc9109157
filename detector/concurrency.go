package detector

import (
	"context"
	"sync"
)

// boundedRunner executes a fixed list of indexed tasks with concurrency
// capped by a channel-based semaphore, the same pattern the teacher's
// runner.Runner uses for agent execution. Results are collected by index
// so callers can restore ascending order regardless of completion order
// (§5's ordering guarantee), and the first error cancels every
// still-running task.
type boundedRunner struct {
	semaphore chan struct{}
}

func newBoundedRunner(maxConcurrency int) *boundedRunner {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &boundedRunner{semaphore: make(chan struct{}, maxConcurrency)}
}

// run invokes task(ctx, i) for i in [0, n) with bounded concurrency. If any
// task returns an error, ctx passed to not-yet-started and in-flight tasks
// is cancelled, and run returns that first error; results for an errored
// run are not meaningful and must be discarded by the caller (§5
// cancellation semantics: no partial results leak).
func (r *boundedRunner) run(ctx context.Context, n int, task func(ctx context.Context, i int) (any, error)) ([]any, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]any, n)
	var (
		errOnce  sync.Once
		firstErr error
	)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		select {
		case r.semaphore <- struct{}{}:
		case <-runCtx.Done():
			wg.Wait()
			if firstErr != nil {
				return nil, firstErr
			}
			return nil, runCtx.Err()
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-r.semaphore }()

			out, err := task(runCtx, idx)
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				cancel()
				return
			}
			results[idx] = out
		}(i)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

package runner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// RunPool executes tasks from a single resource class with at most limit of
// them in flight at once. It returns one Result per task, in input order
// regardless of completion order.
//
// Workers share an atomic cursor into the task list: each worker claims the
// next unclaimed index and runs that task until the list is exhausted. Each
// Result slot is written exactly once, by exactly one worker, so no lock is
// needed around the result slice.
//
// A limit below 1 is clamped to 1 so a misconfigured pool degrades to
// sequential execution instead of hanging. An empty task list returns an
// empty slice without spawning workers.
func RunPool(ctx context.Context, tasks []Task, limit int) []Result {
	n := len(tasks)
	if n == 0 {
		return []Result{}
	}
	if limit < 1 {
		limit = 1
	}
	workers := limit
	if workers > n {
		workers = n
	}

	results := make([]Result, n)
	var cursor atomic.Int64
	var wg sync.WaitGroup

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(cursor.Add(1)) - 1
				if i >= n {
					return
				}
				results[i] = runTask(ctx, tasks[i])
			}
		}()
	}
	wg.Wait()

	return results
}

// runTask executes one task, converting any panic into a Rejected result so
// a crashing check can never take down its siblings.
func runTask(ctx context.Context, task Task) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("check %q panicked: %v", task.Name, r)}
		}
	}()

	value, err := task.Run(ctx)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Value: value}
}

package runner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// classGroup is the per-class slice of tasks plus each task's position in the
// caller's original list, recorded so pool results can be scattered back.
type classGroup struct {
	tasks   []Task
	indices []int
	results []Result
}

// Run executes a mixed list of tasks, bounding concurrency per resource class,
// and returns one Result per task aligned to the input order.
//
// Tasks are grouped by class and one pool per class runs concurrently with the
// others, so total wall-clock time is bounded by the slowest class rather than
// the sum of all classes. Within a class tasks are claimed in list order but
// may complete in any order; across classes there is no ordering at all. Only
// the returned slice restores global order.
//
// Run never returns an error for a failing task: failures are captured in the
// corresponding Result. The context is passed through to each task for its own
// use (per-check timeouts); the scheduler itself imposes no deadline and does
// not cancel in-flight tasks.
func Run(ctx context.Context, tasks []Task, limits Limits) []Result {
	if len(tasks) == 0 {
		return []Result{}
	}

	groups := make(map[Class]*classGroup)
	for i, task := range tasks {
		g, ok := groups[task.Class]
		if !ok {
			g = &classGroup{}
			groups[task.Class] = g
		}
		g.tasks = append(g.tasks, task)
		g.indices = append(g.indices, i)
	}

	results := make([]Result, len(tasks))

	var eg errgroup.Group
	for class, group := range groups {
		eg.Go(func() error {
			// Each goroutine writes only its own group's slice.
			group.results = RunPool(ctx, group.tasks, limits.For(class))
			return nil
		})
	}
	// Pools never return errors; Wait is only the join point.
	_ = eg.Wait()

	for class, group := range groups {
		res := group.results
		if len(res) != len(group.tasks) {
			// A pool produced the wrong number of results. That is a
			// programming error, not a runtime condition.
			panic(fmt.Sprintf("runner: pool for class %q returned %d results for %d tasks",
				class, len(res), len(group.tasks)))
		}
		for j, globalIdx := range group.indices {
			results[globalIdx] = res[j]
		}
	}

	return results
}

package checks

import (
	"context"
	"fmt"
	"time"

	"repocheck/internal/logging"
	"repocheck/internal/report"
	"repocheck/internal/runner"
)

// BuildTasks converts checks into scheduler tasks, applying the conditional
// skip policy: a check whose path filter does not match the changeset is
// replaced by a task that short-circuits to a skipped success. Scheduling a
// trivial task instead of dropping it keeps the result slice dense, so the
// aggregator never sees a partial run.
//
// The returned name slice is index-aligned with the tasks and with the
// results the scheduler will produce.
func BuildTasks(checks []Check, changed []string) ([]runner.Task, []string) {
	tasks := make([]runner.Task, 0, len(checks))
	names := make([]string, 0, len(checks))

	for _, check := range checks {
		names = append(names, check.Name)

		if !check.AppliesTo(changed) {
			tasks = append(tasks, runner.Task{
				Name:  check.Name,
				Class: check.Class,
				Run: func(ctx context.Context) (any, error) {
					return Outcome{OK: true, Skipped: true, Detail: "changeset does not touch configured paths"}, nil
				},
			})
			continue
		}

		tasks = append(tasks, runner.Task{
			Name:  check.Name,
			Class: check.Class,
			Run:   taskFunc(check),
		})
	}

	return tasks, names
}

// taskFunc wraps a check's Run with its per-check timeout. Timeouts live
// here, at the task boundary, because the scheduler deliberately imposes no
// global deadline.
func taskFunc(check Check) func(ctx context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		if check.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, check.Timeout)
			defer cancel()
		}
		return check.Run(ctx)
	}
}

// Policies builds the report policy table for a set of checks. Every check
// shares the same success predicate (its Outcome's OK flag); only the
// blocking classification differs.
func Policies(checks []Check) map[string]report.Policy {
	policies := make(map[string]report.Policy, len(checks))
	for _, check := range checks {
		policies[check.Name] = report.Policy{
			Blocking:    check.Blocking,
			Succeeded:   outcomeSucceeded,
			FormatError: formatOutcomeError,
		}
	}
	return policies
}

func outcomeSucceeded(value any) bool {
	outcome, ok := value.(Outcome)
	return ok && outcome.OK
}

func formatOutcomeError(name string, value any) string {
	outcome, ok := value.(Outcome)
	if !ok {
		return fmt.Sprintf("%s: unexpected result type %T", name, value)
	}
	if outcome.Detail != "" {
		return fmt.Sprintf("%s: %s", name, outcome.Detail)
	}
	return fmt.Sprintf("%s failed", name)
}

// RunAll executes every given check through the bounded scheduler and folds
// the results into a report.
func RunAll(ctx context.Context, logger *logging.AppLogger, checks []Check, changed []string, limits runner.Limits) report.Report {
	start := time.Now()

	tasks, names := BuildTasks(checks, changed)
	logger.Info("Running checks", "count", len(tasks), "limits", limits.String())

	results := runner.Run(ctx, tasks, limits)
	rep := report.Aggregate(names, results, Policies(checks))

	logger.Info("Check run completed",
		"success", rep.Success,
		"errors", len(rep.Errors),
		"warnings", len(rep.Warnings),
		"duration", time.Since(start),
	)
	return rep
}

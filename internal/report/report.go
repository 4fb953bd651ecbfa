// Package report folds raw task results into the user-facing check report,
// applying a per-check policy that classifies failures as blocking or
// advisory.
package report

import (
	"fmt"

	"repocheck/internal/runner"
)

// Policy describes how one named check's outcome is interpreted.
type Policy struct {
	// Blocking failures flip Report.Success to false; advisory failures only
	// add a warning.
	Blocking bool

	// Succeeded classifies a fulfilled value as pass or fail. A nil predicate
	// treats any fulfilled result as a pass.
	Succeeded func(value any) bool

	// FormatError renders the message recorded for a fulfilled-but-failed
	// value. Optional; a generic message is used when nil.
	FormatError func(name string, value any) string
}

// Report is the aggregate outcome of one orchestration run. Built once per
// run and not modified afterwards.
type Report struct {
	Checks   map[string]bool `json:"checks"`
	Errors   []string        `json:"errors"`
	Warnings []string        `json:"warnings"`
	Success  bool            `json:"success"`
}

// Aggregate folds results into a Report. names[i] must name the check that
// produced results[i]; a length mismatch is a programming error and panics.
//
// For each check:
//   - rejected          -> failed, message taken from the rejection error
//   - fulfilled, pass   -> passed
//   - fulfilled, failed -> failed, message from the policy's FormatError
//
// Failed blocking checks append to Errors and clear Success; failed advisory
// checks append to Warnings and leave Success alone. A rejected blocking
// check always produces an error entry: a crashed check is never read as a
// pass.
//
// Checks without a policy entry default to blocking with a nil predicate.
func Aggregate(names []string, results []runner.Result, policies map[string]Policy) Report {
	if len(names) != len(results) {
		panic(fmt.Sprintf("report: %d results for %d checks", len(results), len(names)))
	}

	rep := Report{
		Checks:   make(map[string]bool, len(names)),
		Errors:   []string{},
		Warnings: []string{},
		Success:  true,
	}

	for i, name := range names {
		res := results[i]
		policy, ok := policies[name]
		if !ok {
			// No policy registered: safest reading is a blocking check that
			// passes on any fulfilled result.
			policy = Policy{Blocking: true}
		}

		passed, message := evaluate(name, res, policy)
		rep.Checks[name] = passed
		if passed {
			continue
		}

		if policy.Blocking {
			rep.Errors = append(rep.Errors, message)
			rep.Success = false
		} else {
			rep.Warnings = append(rep.Warnings, message)
		}
	}

	return rep
}

// evaluate classifies a single result under its policy and produces the
// failure message when it did not pass.
func evaluate(name string, res runner.Result, policy Policy) (bool, string) {
	if res.Rejected() {
		return false, fmt.Sprintf("%s: %v", name, res.Err)
	}

	if policy.Succeeded == nil || policy.Succeeded(res.Value) {
		return true, ""
	}

	if policy.FormatError != nil {
		return false, policy.FormatError(name, res.Value)
	}
	return false, fmt.Sprintf("%s failed", name)
}

package report

import (
	"errors"
	"testing"

	"repocheck/internal/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcome struct {
	ok     bool
	detail string
}

func outcomePolicy(blocking bool) Policy {
	return Policy{
		Blocking: blocking,
		Succeeded: func(value any) bool {
			o, ok := value.(outcome)
			return ok && o.ok
		},
		FormatError: func(name string, value any) string {
			o, _ := value.(outcome)
			return name + ": " + o.detail
		},
	}
}

func TestAggregateAllPass(t *testing.T) {
	names := []string{"lint", "typecheck", "format"}
	results := []runner.Result{
		{Value: outcome{ok: true}},
		{Value: outcome{ok: true}},
		{Value: outcome{ok: true}},
	}
	policies := map[string]Policy{
		"lint":      outcomePolicy(true),
		"typecheck": outcomePolicy(true),
		"format":    outcomePolicy(true),
	}

	rep := Aggregate(names, results, policies)

	assert.True(t, rep.Success)
	assert.Empty(t, rep.Errors)
	assert.Empty(t, rep.Warnings)
	for _, name := range names {
		assert.True(t, rep.Checks[name], "check %s should be marked passed", name)
	}
}

func TestAggregateBlockingRejectionAndAdvisoryFailure(t *testing.T) {
	// One blocking check crashes, one advisory check fails logically. Both
	// outcomes must be present at once: no early abort.
	names := []string{"lint", "todo_scan"}
	results := []runner.Result{
		{Err: errors.New("boom")},
		{Value: outcome{ok: false, detail: "3 markers found"}},
	}
	policies := map[string]Policy{
		"lint":      outcomePolicy(true),
		"todo_scan": outcomePolicy(false),
	}

	rep := Aggregate(names, results, policies)

	assert.False(t, rep.Success)
	require.Len(t, rep.Errors, 1)
	assert.Contains(t, rep.Errors[0], "boom")
	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], "3 markers found")
	assert.False(t, rep.Checks["lint"])
	assert.False(t, rep.Checks["todo_scan"])
}

func TestAggregateAdvisoryFailuresKeepSuccess(t *testing.T) {
	names := []string{"lint", "todo_scan", "large_files"}
	results := []runner.Result{
		{Value: outcome{ok: true}},
		{Value: outcome{ok: false, detail: "markers"}},
		{Value: outcome{ok: false, detail: "big file"}},
	}
	policies := map[string]Policy{
		"lint":        outcomePolicy(true),
		"todo_scan":   outcomePolicy(false),
		"large_files": outcomePolicy(false),
	}

	rep := Aggregate(names, results, policies)

	assert.True(t, rep.Success, "advisory failures must never flip success")
	assert.Empty(t, rep.Errors)
	assert.Len(t, rep.Warnings, 2)
}

func TestAggregateRejectedAdvisoryBecomesWarning(t *testing.T) {
	names := []string{"todo_scan"}
	results := []runner.Result{{Err: errors.New("walk failed")}}
	policies := map[string]Policy{"todo_scan": outcomePolicy(false)}

	rep := Aggregate(names, results, policies)

	assert.True(t, rep.Success)
	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], "walk failed")
}

func TestAggregateRejectionMessageNeverDowngraded(t *testing.T) {
	names := []string{"typecheck"}
	results := []runner.Result{{Err: errors.New("tsc: not found in PATH")}}
	policies := map[string]Policy{"typecheck": outcomePolicy(true)}

	rep := Aggregate(names, results, policies)

	assert.False(t, rep.Success)
	require.Len(t, rep.Errors, 1)
	assert.Contains(t, rep.Errors[0], "tsc: not found in PATH",
		"a crashed blocking check must report the original reason")
}

func TestAggregateMissingPolicyDefaultsToBlocking(t *testing.T) {
	names := []string{"mystery"}

	rep := Aggregate(names, []runner.Result{{Value: "anything"}}, nil)
	assert.True(t, rep.Success, "fulfilled result with no policy should pass")

	rep = Aggregate(names, []runner.Result{{Err: errors.New("crash")}}, nil)
	assert.False(t, rep.Success, "rejected check with no policy must block")
	assert.Len(t, rep.Errors, 1)
}

func TestAggregateDefaultErrorFormat(t *testing.T) {
	names := []string{"custom"}
	results := []runner.Result{{Value: outcome{ok: false}}}
	policies := map[string]Policy{
		"custom": {
			Blocking: true,
			Succeeded: func(value any) bool {
				o, ok := value.(outcome)
				return ok && o.ok
			},
		},
	}

	rep := Aggregate(names, results, policies)

	require.Len(t, rep.Errors, 1)
	assert.Equal(t, "custom failed", rep.Errors[0])
}

func TestAggregateLengthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		Aggregate([]string{"a", "b"}, []runner.Result{{}}, nil)
	})
}

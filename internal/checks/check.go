// Package checks defines the developer-workflow checks exposed by the
// repocheck MCP server and the glue that turns them into schedulable tasks.
//
// A check is a thin wrapper over an existing CLI or a file scan. Its job is
// to produce an Outcome; deciding whether that outcome blocks a commit is the
// report policy's job, not the check's.
package checks

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"repocheck/internal/runner"
)

// Outcome is the value every check resolves with. OK distinguishes logical
// failure ("3 lint errors") from a crashed check, which rejects instead.
type Outcome struct {
	OK      bool   `json:"ok"`
	Detail  string `json:"detail,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
}

// Check describes one named workflow check.
type Check struct {
	Name        string
	Description string
	Class       runner.Class
	Blocking    bool

	// Timeout bounds a single execution. Zero means no per-check deadline.
	Timeout time.Duration

	// Paths restricts the check to changesets touching at least one path with
	// one of these prefixes. Empty means the check always runs.
	Paths []string

	Run func(ctx context.Context) (Outcome, error)
}

// AppliesTo reports whether the check should run for the given changed files.
// With no path filter, or no changeset information at all, the check runs.
func (c Check) AppliesTo(changed []string) bool {
	if len(c.Paths) == 0 || changed == nil {
		return true
	}
	for _, file := range changed {
		for _, prefix := range c.Paths {
			if strings.HasPrefix(file, prefix) {
				return true
			}
		}
	}
	return false
}

// maxOutputDetail caps how much subprocess output ends up in an Outcome.
const maxOutputDetail = 4096

// CommandCheck builds a check that shells out to argv in dir. Exit status 0
// resolves to a passing Outcome; a non-zero exit resolves to a failing
// Outcome carrying the command's trailing output. Only a failure to run the
// command at all (missing binary, context deadline) rejects.
func CommandCheck(name, description string, class runner.Class, blocking bool, timeout time.Duration, argv []string, dir string) Check {
	return Check{
		Name:        name,
		Description: description,
		Class:       class,
		Blocking:    blocking,
		Timeout:     timeout,
		Run: func(ctx context.Context) (Outcome, error) {
			if len(argv) == 0 {
				return Outcome{}, fmt.Errorf("check %q has no command configured", name)
			}

			cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
			cmd.Dir = dir

			output, err := cmd.CombinedOutput()
			if err == nil {
				return Outcome{OK: true}, nil
			}

			if ctx.Err() != nil {
				return Outcome{}, fmt.Errorf("check %q timed out: %w", name, ctx.Err())
			}

			if _, ok := err.(*exec.ExitError); ok {
				// The tool ran and reported findings. That is a
				// classification failure, not a crash.
				return Outcome{OK: false, Detail: tailOutput(output)}, nil
			}

			return Outcome{}, fmt.Errorf("check %q could not run %q: %w", name, argv[0], err)
		},
	}
}

// tailOutput trims subprocess output to the last maxOutputDetail bytes; the
// end of a linter's output usually carries the summary line.
func tailOutput(output []byte) string {
	text := strings.TrimSpace(string(output))
	if len(text) > maxOutputDetail {
		text = "..." + text[len(text)-maxOutputDetail:]
	}
	return text
}

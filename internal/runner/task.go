// Package runner implements the bounded-concurrency orchestration core used
// to execute developer-workflow checks.
//
// Tasks are partitioned into resource classes (cpu, io, browser), each class
// runs under its own concurrency ceiling, and results are reassembled in the
// order the tasks were submitted. A failing task never blocks or cancels a
// sibling: every failure is captured as data in its own Result slot.
package runner

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// Class names the kind of constrained resource a task competes for.
// Tasks sharing a class share one concurrency limit.
type Class string

const (
	// ClassCPU covers compute-heavy subprocesses (linters, compilers).
	ClassCPU Class = "cpu"
	// ClassIO covers checks dominated by filesystem or network waits.
	ClassIO Class = "io"
	// ClassBrowser covers headless-browser checks, which are far more
	// expensive per instance than a lint subprocess.
	ClassBrowser Class = "browser"
)

// Task is the minimal unit of schedulable work: a named async thunk plus its
// resource class. Tasks are immutable once constructed and live for a single
// orchestration run.
type Task struct {
	Name  string
	Class Class
	Run   func(ctx context.Context) (any, error)
}

// Result is the discriminated outcome of exactly one task. Err != nil means
// the task rejected; otherwise Value carries whatever the task produced.
type Result struct {
	Value any
	Err   error
}

// Rejected reports whether the task failed rather than producing a value.
func (r Result) Rejected() bool {
	return r.Err != nil
}

// Environment variables overriding the per-class concurrency limits.
const (
	EnvCPULimit     = "REPOCHECK_CPU_LIMIT"
	EnvIOLimit      = "REPOCHECK_IO_LIMIT"
	EnvBrowserLimit = "REPOCHECK_BROWSER_LIMIT"
)

// Limits holds the concurrency ceiling for each resource class.
type Limits struct {
	CPU     int
	IO      int
	Browser int
}

// DefaultLimits returns the built-in ceilings: 6 concurrent cpu checks,
// 20 io checks, 2 browser checks.
func DefaultLimits() Limits {
	return Limits{CPU: 6, IO: 20, Browser: 2}
}

// LimitsFromEnv returns DefaultLimits overridden by any of the
// REPOCHECK_*_LIMIT environment variables that parse as positive integers.
// Unset or malformed values keep the default.
func LimitsFromEnv() Limits {
	l := DefaultLimits()
	l.CPU = envLimit(EnvCPULimit, l.CPU)
	l.IO = envLimit(EnvIOLimit, l.IO)
	l.Browser = envLimit(EnvBrowserLimit, l.Browser)
	return l
}

func envLimit(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// For returns the configured limit for a class. Unknown classes get the io
// limit, the most permissive bucket.
func (l Limits) For(c Class) int {
	switch c {
	case ClassCPU:
		return l.CPU
	case ClassBrowser:
		return l.Browser
	default:
		return l.IO
	}
}

// String renders the limits for log output.
func (l Limits) String() string {
	return fmt.Sprintf("cpu=%d io=%d browser=%d", l.CPU, l.IO, l.Browser)
}

package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func makeTask(name string, run func(ctx context.Context) (any, error)) Task {
	return Task{Name: name, Class: ClassCPU, Run: run}
}

func TestRunPoolEmptyList(t *testing.T) {
	start := time.Now()
	results := RunPool(context.Background(), nil, 4)

	if results == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("empty pool should return immediately, took %v", elapsed)
	}
}

func TestRunPoolPreservesInputOrder(t *testing.T) {
	const n = 20
	tasks := make([]Task, n)
	for i := 0; i < n; i++ {
		tasks[i] = makeTask(fmt.Sprintf("task-%d", i), func(ctx context.Context) (any, error) {
			// Later tasks finish first to prove ordering is by index,
			// not completion time.
			time.Sleep(time.Duration(n-i) * time.Millisecond)
			return i, nil
		})
	}

	results := RunPool(context.Background(), tasks, 8)

	if len(results) != n {
		t.Fatalf("expected %d results, got %d", n, len(results))
	}
	for i, res := range results {
		if res.Rejected() {
			t.Errorf("task %d unexpectedly rejected: %v", i, res.Err)
			continue
		}
		if res.Value != i {
			t.Errorf("result %d holds value %v, want %d", i, res.Value, i)
		}
	}
}

func TestRunPoolConcurrencyBound(t *testing.T) {
	const limit = 3
	const n = 20

	var running atomic.Int64
	var maxRunning atomic.Int64

	tasks := make([]Task, n)
	for i := 0; i < n; i++ {
		tasks[i] = makeTask(fmt.Sprintf("task-%d", i), func(ctx context.Context) (any, error) {
			cur := running.Add(1)
			defer running.Add(-1)

			// Record the high-water mark of concurrently running tasks.
			for {
				prev := maxRunning.Load()
				if cur <= prev || maxRunning.CompareAndSwap(prev, cur) {
					break
				}
			}

			time.Sleep(10 * time.Millisecond)
			return nil, nil
		})
	}

	RunPool(context.Background(), tasks, limit)

	if got := maxRunning.Load(); got > limit {
		t.Errorf("observed %d concurrent tasks, limit is %d", got, limit)
	}
}

func TestRunPoolZeroLimitStillCompletes(t *testing.T) {
	var calls atomic.Int64
	tasks := []Task{
		makeTask("a", func(ctx context.Context) (any, error) { calls.Add(1); return "a", nil }),
		makeTask("b", func(ctx context.Context) (any, error) { calls.Add(1); return "b", nil }),
		makeTask("c", func(ctx context.Context) (any, error) { calls.Add(1); return "c", nil }),
	}

	done := make(chan []Result, 1)
	go func() { done <- RunPool(context.Background(), tasks, 0) }()

	select {
	case results := <-done:
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		if calls.Load() != 3 {
			t.Errorf("expected all 3 tasks to run, got %d", calls.Load())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pool with limit 0 hung instead of degrading to sequential execution")
	}
}

func TestRunPoolNegativeLimitStillCompletes(t *testing.T) {
	tasks := []Task{
		makeTask("only", func(ctx context.Context) (any, error) { return 42, nil }),
	}

	results := RunPool(context.Background(), tasks, -5)

	if len(results) != 1 || results[0].Rejected() || results[0].Value != 42 {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestRunPoolFailureIsolation(t *testing.T) {
	boom := errors.New("boom")
	tasks := []Task{
		makeTask("ok-1", func(ctx context.Context) (any, error) { return 1, nil }),
		makeTask("fails", func(ctx context.Context) (any, error) { return nil, boom }),
		makeTask("ok-2", func(ctx context.Context) (any, error) { return 2, nil }),
	}

	results := RunPool(context.Background(), tasks, 2)

	if !results[1].Rejected() {
		t.Error("expected task 1 to be rejected")
	}
	if !errors.Is(results[1].Err, boom) {
		t.Errorf("rejection should carry the original error, got %v", results[1].Err)
	}
	if results[0].Rejected() || results[2].Rejected() {
		t.Errorf("sibling tasks must not be affected by a failure: %+v", results)
	}
	if results[0].Value != 1 || results[2].Value != 2 {
		t.Errorf("sibling values corrupted: %+v", results)
	}
}

func TestRunPoolPanicBecomesRejection(t *testing.T) {
	tasks := []Task{
		makeTask("panics", func(ctx context.Context) (any, error) { panic("kaboom") }),
		makeTask("survives", func(ctx context.Context) (any, error) { return "fine", nil }),
	}

	results := RunPool(context.Background(), tasks, 2)

	if !results[0].Rejected() {
		t.Fatal("panicking task should produce a rejected result")
	}
	if got := results[0].Err.Error(); !strings.Contains(got, "kaboom") {
		t.Errorf("rejection message should mention the panic value, got %q", got)
	}
	if results[1].Rejected() {
		t.Errorf("sibling task should survive a panic: %v", results[1].Err)
	}
}

// Package batch runs independent, bounded-concurrency units of work and
// collects their errors in the order the tasks finish. Grounded on the teacher's
// service.ParallelExecutorImpl (service/parallel_executor.go): the same
// errgroup.SetLimit + timeout-context shape, generalized from "a fixed
// slice of named analysis tasks" to "one task per root module a `plank
// build`/`plank check` invocation was given" (SPEC_FULL.md §6, directory
// mode). Each task runs independently and a single root's fatal error
// never aborts its siblings — the pipeline-level "a fatal error aborts
// the pipeline immediately" rule (spec.md §5) applies per root, not
// across an unrelated batch of roots.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrency is a suggested concurrency bound for callers.
// NewExecutor does not use it; its default is runtime.NumCPU().
const DefaultMaxConcurrency = 4

// DefaultTimeout bounds the whole batch, not any one task.
const DefaultTimeout = 5 * time.Minute

// Task is one independently runnable unit of work, identified by Name
// for error reporting.
type Task interface {
	Name() string
	Execute(ctx context.Context) error
}

// TaskFunc adapts a plain function to Task.
type TaskFunc struct {
	name string
	fn   func(ctx context.Context) error
}

// NewTaskFunc is the constructor form of TaskFunc; TaskFunc itself stays
// exported as a type so tasks built from it can be compared/inspected.
func NewTaskFunc(name string, fn func(ctx context.Context) error) TaskFunc {
	return TaskFunc{name: name, fn: fn}
}

func (t TaskFunc) Name() string                      { return t.name }
func (t TaskFunc) Execute(ctx context.Context) error { return t.fn(ctx) }

// TaskError pairs a failure with the task that produced it.
type TaskError struct {
	TaskName string
	Err      error
}

func (e TaskError) Error() string { return fmt.Sprintf("[%s] %v", e.TaskName, e.Err) }
func (e TaskError) Unwrap() error { return e.Err }

// AggregatedError collects every task failure from one Execute call.
type AggregatedError struct {
	Errors []TaskError
}

func (e *AggregatedError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d tasks failed:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

func (e *AggregatedError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0].Err
}

// Executor runs a batch of Tasks with bounded concurrency and an overall
// timeout.
type Executor struct {
	maxConcurrency int
	timeout        time.Duration
}

// NewExecutor creates an Executor with runtime.NumCPU() concurrency and
// DefaultTimeout.
func NewExecutor() *Executor {
	return &Executor{maxConcurrency: runtime.NumCPU(), timeout: DefaultTimeout}
}

// NewExecutorWithLimits creates an Executor with explicit bounds;
// non-positive values fall back to the defaults.
func NewExecutorWithLimits(maxConcurrency int, timeout time.Duration) *Executor {
	e := NewExecutor()
	if maxConcurrency > 0 {
		e.maxConcurrency = maxConcurrency
	}
	if timeout > 0 {
		e.timeout = timeout
	}
	return e
}

// Run executes every task, each at most once, bounded by e's concurrency
// limit, and returns every failure as an *AggregatedError (nil if every
// task succeeded). One task's error never stops the others — every task
// always runs, the way `plank build` on a directory of roots reports a
// failure per root instead of aborting the whole batch.
func (e *Executor) Run(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	g, gCtx := errgroup.WithContext(timeoutCtx)
	g.SetLimit(e.maxConcurrency)

	var mu sync.Mutex
	var errs []TaskError

	for _, t := range tasks {
		t := t
		g.Go(func() error {
			select {
			case <-gCtx.Done():
			default:
			}
			if err := t.Execute(timeoutCtx); err != nil {
				mu.Lock()
				errs = append(errs, TaskError{TaskName: t.Name(), Err: err})
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	if len(errs) > 0 {
		return &AggregatedError{Errors: errs}
	}
	return nil
}

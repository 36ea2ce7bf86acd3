// Package engine runs per-repository tasks across the fleet with bounded
// parallelism. The pool is operation-agnostic: sync, commit, check, and PR
// submission all dispatch through the same Task shape.
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Status is the per-repository outcome of a fleet-wide operation
type Status string

const (
	StatusForked          Status = "forked"
	StatusCloned          Status = "cloned"
	StatusFetched         Status = "fetched"
	StatusUpToDate        Status = "up-to-date"
	StatusCommitted       Status = "committed"
	StatusSubmitted       Status = "submitted"
	StatusSkipped         Status = "skipped"
	StatusConsentRequired Status = "consent-required"
	StatusFailed          Status = "failed"
)

// Outcome records one repository's result
type Outcome struct {
	Repo   string
	Status Status
	Detail string
	Err    error
}

// Failed reports whether the outcome counts against the process exit code.
// Skips and consent-required outcomes are intentional, not failures.
func (o Outcome) Failed() bool {
	return o.Status == StatusFailed
}

// Result is what a task reports back for its repository
type Result struct {
	Status Status
	Detail string
	Err    error
}

// Task is one unit of fleet work: a single repository's operation sequence
type Task struct {
	Repo string
	Run  func(ctx context.Context) Result
}

// Throttler reports sustained rate limiting so the pool can shed parallelism
type Throttler interface {
	Throttled() bool
}

// Pool executes tasks with bounded worker parallelism
type Pool struct {
	workers   int
	throttler Throttler
}

// NewPool creates a pool with the given worker count (minimum 1)
func NewPool(workers int, throttler Throttler) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers, throttler: throttler}
}

// effectiveWorkers halves the worker budget while the remote API reports
// sustained rate limiting, never dropping below one
func (p *Pool) effectiveWorkers() int {
	if p.throttler != nil && p.throttler.Throttled() {
		if half := p.workers / 2; half >= 1 {
			return half
		}
		return 1
	}
	return p.workers
}

// Run dispatches every task and returns one outcome per task, sorted by
// repository name. A task failure or panic never cancels sibling tasks.
// When ctx is canceled, no new tasks are dispatched but in-flight tasks
// run to completion, so clones and status entries are never left
// half-written; undispatched tasks report as skipped.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Outcome {
	var (
		mu       sync.Mutex
		outcomes []Outcome
		wg       sync.WaitGroup
		active   int
	)
	cond := sync.NewCond(&mu)

	record := func(o Outcome) {
		mu.Lock()
		outcomes = append(outcomes, o)
		mu.Unlock()
	}

	for _, task := range tasks {
		if ctx.Err() != nil {
			record(Outcome{Repo: task.Repo, Status: StatusSkipped, Detail: "interrupted before dispatch"})
			continue
		}

		// Admission control: wait for a slot under the current effective
		// concurrency, which shrinks under rate-limit backpressure
		mu.Lock()
		for active >= p.effectiveWorkers() {
			cond.Wait()
		}
		active++
		mu.Unlock()

		wg.Add(1)
		go func(task Task) {
			defer func() {
				if r := recover(); r != nil {
					record(Outcome{
						Repo:   task.Repo,
						Status: StatusFailed,
						Err:    fmt.Errorf("panic: %v", r),
					})
				}
				mu.Lock()
				active--
				mu.Unlock()
				cond.Signal()
				wg.Done()
			}()

			// Each task gets the parent context: cancellation stops
			// dispatch above, but a running task decides for itself how
			// to wind down
			result := task.Run(ctx)
			if result.Err != nil {
				record(Outcome{Repo: task.Repo, Status: StatusFailed, Detail: result.Detail, Err: result.Err})
				return
			}
			record(Outcome{Repo: task.Repo, Status: result.Status, Detail: result.Detail})
		}(task)
	}

	wg.Wait()

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Repo < outcomes[j].Repo })
	return outcomes
}

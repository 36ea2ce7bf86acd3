package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fixedThrottler reports a settable throttled state
type fixedThrottler struct {
	throttled atomic.Bool
}

func (f *fixedThrottler) Throttled() bool {
	return f.throttled.Load()
}

func makeTasks(n int, run func(i int, ctx context.Context) Result) []Task {
	tasks := make([]Task, 0, n)
	for i := 0; i < n; i++ {
		i := i
		tasks = append(tasks, Task{
			Repo: fmt.Sprintf("repo-%03d", i),
			Run:  func(ctx context.Context) Result { return run(i, ctx) },
		})
	}
	return tasks
}

func TestPoolBoundsParallelism(t *testing.T) {
	t.Parallel()

	const workers = 4
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)

	tasks := makeTasks(32, func(i int, ctx context.Context) Result {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()

		time.Sleep(2 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
		return Result{Status: StatusUpToDate}
	})

	outcomes := NewPool(workers, nil).Run(context.Background(), tasks)
	require.Len(t, outcomes, 32)
	require.LessOrEqual(t, maxSeen, workers)
	require.Greater(t, maxSeen, 1, "pool should actually run tasks concurrently")
}

func TestPoolOneOutcomePerTaskSorted(t *testing.T) {
	t.Parallel()

	tasks := makeTasks(10, func(i int, ctx context.Context) Result {
		return Result{Status: StatusCloned}
	})

	outcomes := NewPool(3, nil).Run(context.Background(), tasks)
	require.Len(t, outcomes, 10)
	for i := 1; i < len(outcomes); i++ {
		require.Less(t, outcomes[i-1].Repo, outcomes[i].Repo)
	}
}

func TestPoolIsolatesFailuresAndPanics(t *testing.T) {
	t.Parallel()

	tasks := makeTasks(6, func(i int, ctx context.Context) Result {
		switch i {
		case 2:
			return Result{Err: fmt.Errorf("clone failed")}
		case 4:
			panic("worker exploded")
		default:
			return Result{Status: StatusUpToDate}
		}
	})

	outcomes := NewPool(2, nil).Run(context.Background(), tasks)
	require.Len(t, outcomes, 6)

	byRepo := make(map[string]Outcome)
	for _, o := range outcomes {
		byRepo[o.Repo] = o
	}
	require.Equal(t, StatusFailed, byRepo["repo-002"].Status)
	require.ErrorContains(t, byRepo["repo-002"].Err, "clone failed")
	require.Equal(t, StatusFailed, byRepo["repo-004"].Status)
	require.ErrorContains(t, byRepo["repo-004"].Err, "panic")
	require.Equal(t, StatusUpToDate, byRepo["repo-000"].Status)
}

func TestPoolCancellationSkipsUndispatchedTasks(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	var once sync.Once

	tasks := makeTasks(16, func(i int, ctx context.Context) Result {
		once.Do(func() { close(started) })
		<-ctx.Done()
		return Result{Status: StatusUpToDate}
	})

	go func() {
		<-started
		cancel()
	}()

	outcomes := NewPool(2, nil).Run(ctx, tasks)
	require.Len(t, outcomes, 16)

	var completed, skipped int
	for _, o := range outcomes {
		switch o.Status {
		case StatusUpToDate:
			completed++
		case StatusSkipped:
			require.Equal(t, "interrupted before dispatch", o.Detail)
			skipped++
		default:
			t.Fatalf("unexpected status %s", o.Status)
		}
	}
	require.Greater(t, completed, 0, "in-flight tasks run to completion")
	require.Greater(t, skipped, 0, "undispatched tasks report as skipped")
}

func TestPoolShedsWorkersUnderThrottle(t *testing.T) {
	t.Parallel()

	throttler := &fixedThrottler{}
	throttler.throttled.Store(true)

	pool := NewPool(8, throttler)
	require.Equal(t, 4, pool.effectiveWorkers())

	throttler.throttled.Store(false)
	require.Equal(t, 8, pool.effectiveWorkers())

	// Halving never drops below one worker
	single := NewPool(1, throttler)
	throttler.throttled.Store(true)
	require.Equal(t, 1, single.effectiveWorkers())
}

func TestSummaryErrListsFailedRepos(t *testing.T) {
	t.Parallel()

	summary := Summary{Outcomes: []Outcome{
		{Repo: "alpha", Status: StatusUpToDate},
		{Repo: "beta", Status: StatusFailed, Err: fmt.Errorf("boom")},
		{Repo: "gamma", Status: StatusConsentRequired},
		{Repo: "delta", Status: StatusSkipped},
	}}

	err := summary.Err()
	require.Error(t, err)
	require.Contains(t, err.Error(), "beta")
	require.NotContains(t, err.Error(), "gamma")

	clean := Summary{Outcomes: []Outcome{
		{Repo: "alpha", Status: StatusSkipped},
		{Repo: "beta", Status: StatusConsentRequired},
	}}
	require.NoError(t, clean.Err(), "skips and consent-required are not failures")
}

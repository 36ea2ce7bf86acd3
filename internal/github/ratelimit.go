package github

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/google/go-github/v62/github"

	lassoerrors "lasso.dev/lasso/internal/errors"
)

const (
	// DefaultMaxAttempts bounds retries of transient failures
	DefaultMaxAttempts = 5

	// DefaultBaseDelay is the first backoff interval
	DefaultBaseDelay = 1 * time.Second

	// DefaultMaxDelay caps the backoff interval
	DefaultMaxDelay = 64 * time.Second

	// throttleThreshold is the consecutive rate-limit count after which
	// callers should reduce their effective concurrency
	throttleThreshold = 3
)

// Limiter wraps every remote API invocation with rate-limit-aware
// exponential backoff. One Limiter instance is shared by all workers in a
// run so that backoff decisions see a single consistent budget.
type Limiter struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration

	mu                 sync.Mutex
	consecutiveLimited int

	// injectable for tests
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(d time.Duration) time.Duration
}

// NewLimiter creates a Limiter with default backoff settings
func NewLimiter() *Limiter {
	return &Limiter{
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		maxDelay:    DefaultMaxDelay,
		sleep:       sleepContext,
		jitter: func(d time.Duration) time.Duration {
			// Half fixed, half random, so concurrent workers spread out
			return d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
		},
	}
}

// Do invokes fn, retrying transient failures (rate limit, 5xx, timeouts)
// with capped exponential backoff. Permanent failures (auth rejected,
// not found, permission denied) surface immediately and are never retried.
func (l *Limiter) Do(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < l.maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			l.noteSuccess()
			return nil
		}
		lastErr = err

		status, detail, transient, limited, retryAfter := classify(err)
		if limited {
			l.noteLimited()
		} else {
			l.noteSuccess()
		}
		if !transient {
			return lassoerrors.NewRemoteError(op, status, detail, lassoerrors.ClassPermanent, err)
		}
		if attempt == l.maxAttempts-1 {
			break
		}

		delay := l.jitter(l.delayFor(attempt))
		if retryAfter > delay {
			delay = retryAfter
		}
		if delay > l.maxDelay {
			delay = l.maxDelay
		}
		if err := l.sleep(ctx, delay); err != nil {
			return err
		}
	}

	status, detail, _, _, _ := classify(lastErr)
	return lassoerrors.NewRemoteError(op, status, detail, lassoerrors.ClassTransient, lastErr)
}

// delayFor returns the un-jittered backoff interval for an attempt,
// doubling per attempt and capped at maxDelay
func (l *Limiter) delayFor(attempt int) time.Duration {
	delay := l.baseDelay << uint(attempt)
	if delay > l.maxDelay || delay <= 0 {
		return l.maxDelay
	}
	return delay
}

// Throttled reports sustained rate limiting. The sync engine and PR
// submitter shrink their effective worker count while this is true.
func (l *Limiter) Throttled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.consecutiveLimited >= throttleThreshold
}

func (l *Limiter) noteLimited() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.consecutiveLimited++
}

func (l *Limiter) noteSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.consecutiveLimited = 0
}

// classify maps an error from go-github onto the error taxonomy.
// The returned detail preserves the provider's message verbatim.
func classify(err error) (status int, detail string, transient, limited bool, retryAfter time.Duration) {
	if err == nil {
		return 0, "", false, false, 0
	}
	detail = err.Error()

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		wait := time.Until(rateErr.Rate.Reset.Time)
		if wait < 0 {
			wait = 0
		}
		return rateErr.Response.StatusCode, rateErr.Message, true, true, wait
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		var wait time.Duration
		if abuseErr.RetryAfter != nil {
			wait = *abuseErr.RetryAfter
		}
		return abuseErr.Response.StatusCode, abuseErr.Message, true, true, wait
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		status = respErr.Response.StatusCode
		return status, respErr.Message, status >= 500, false, 0
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return 0, detail, true, false, 0
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return 0, detail, true, false, 0
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return 0, detail, true, false, 0
	}

	// Unknown errors are treated as transient so a flaky transport still
	// gets its bounded retries
	return 0, detail, true, false, 0
}

// sleepContext sleeps for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package engine

import (
	"fmt"
	"strings"

	"lasso.dev/lasso/internal/output"
)

// Summary aggregates the outcomes of one fleet-wide pass
type Summary struct {
	Outcomes []Outcome
}

// Failed returns the outcomes that count against the exit code
func (s Summary) Failed() []Outcome {
	var failed []Outcome
	for _, o := range s.Outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Counts returns per-status outcome counts
func (s Summary) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, o := range s.Outcomes {
		counts[o.Status]++
	}
	return counts
}

// Print writes the end-of-run summary: per-status counts followed by each
// failed repository with its cause
func (s Summary) Print(splog *output.Splog) {
	counts := s.Counts()
	var parts []string
	for _, status := range []Status{
		StatusForked, StatusCloned, StatusFetched, StatusUpToDate,
		StatusCommitted, StatusSubmitted, StatusSkipped,
		StatusConsentRequired, StatusFailed,
	} {
		if counts[status] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[status], status))
		}
	}
	if len(parts) > 0 {
		splog.Info("%d repos: %s", len(s.Outcomes), strings.Join(parts, ", "))
	}

	for _, o := range s.Failed() {
		splog.Error("%s: %v", o.Repo, o.Err)
	}
	for _, o := range s.Outcomes {
		if o.Status == StatusConsentRequired {
			splog.Warn("%s: consent required (re-run with --yes, or add to the exclusion list)", o.Repo)
		}
	}
}

// Err returns a process-level error when any repository failed.
// Skipped and consent-required repositories do not fail the run.
func (s Summary) Err() error {
	failed := s.Failed()
	if len(failed) == 0 {
		return nil
	}
	repos := make([]string, 0, len(failed))
	for _, o := range failed {
		repos = append(repos, o.Repo)
	}
	return fmt.Errorf("%d of %d repos failed: %s", len(failed), len(s.Outcomes), strings.Join(repos, ", "))
}

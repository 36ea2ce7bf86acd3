package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"lasso.dev/lasso/internal/engine"
	"lasso.dev/lasso/internal/git"
	"lasso.dev/lasso/internal/initiative"
	"lasso.dev/lasso/internal/runtime"
)

// CheckOptions control a check pass
type CheckOptions struct {
	// Script is invoked per changed file as: script <clone-dir> <file> <try>
	Script string

	// Tries runs the script multiple times per side to smoke out flaky checks
	Tries int

	// Revert discards files whose change made the check worse
	Revert bool

	Workers int
}

// FileCheck is the verdict for one changed file in one clone
type FileCheck struct {
	File     string `json:"file"`
	Before   []int  `json:"before"`
	After    []int  `json:"after"`
	Improved bool   `json:"improved"`
	Worse    bool   `json:"worse"`
	Reverted bool   `json:"reverted,omitempty"`
}

// checksFileName is the durable record of the last check pass
const checksFileName = "checks.json"

// Check validates uncommitted changes file by file: for each changed file
// the check script runs against the tree without the change (stashed) and
// with it, and the exit codes are compared. A file whose change flips the
// check from passing to failing is flagged, and optionally reverted.
func Check(ctx context.Context, rt *runtime.Context, opts CheckOptions) error {
	script, err := filepath.Abs(opts.Script)
	if err != nil {
		return err
	}
	if _, err := exec.LookPath(script); err != nil {
		return fmt.Errorf("check script %s is not executable: %w", opts.Script, err)
	}
	tries := opts.Tries
	if tries < 1 {
		tries = 1
	}

	clones, err := rt.Workspace.Clones()
	if err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		results = make(map[string][]FileCheck)
	)

	tasks := make([]engine.Task, 0, len(clones))
	for _, clone := range clones {
		clone := clone
		tasks = append(tasks, engine.Task{
			Repo: clone.Name,
			Run: func(ctx context.Context) engine.Result {
				checks, result := checkClone(ctx, rt, clone.Name, clone.Path, script, tries, opts.Revert)
				if len(checks) > 0 {
					mu.Lock()
					results[clone.Name] = checks
					mu.Unlock()
				}
				return result
			},
		})
	}

	pool := engine.NewPool(workersOrDefault(opts.Workers), rt.Limiter)
	summary := engine.Summary{Outcomes: pool.Run(ctx, tasks)}

	if err := writeCheckResults(rt, results); err != nil {
		return err
	}

	summary.Print(rt.Splog)
	printCheckResults(rt, results)
	return summary.Err()
}

func checkClone(ctx context.Context, rt *runtime.Context, name, path, script string, tries int, revert bool) ([]FileCheck, engine.Result) {
	lock := rt.Workspace.Lock(name)
	lock.Lock()
	defer lock.Unlock()

	runner := git.NewRunner(path)

	dirty, err := runner.IsDirty(ctx)
	if err != nil {
		return nil, engine.Result{Err: err}
	}
	if !dirty {
		return nil, engine.Result{Status: engine.StatusSkipped, Detail: "no changes to check"}
	}

	branch, err := runner.CurrentBranch(ctx)
	if err != nil {
		return nil, engine.Result{Err: err}
	}
	recordObservedChanges(rt, branch, name)

	files, err := runner.ChangedFiles(ctx)
	if err != nil {
		return nil, engine.Result{Err: err}
	}

	checks := make([]FileCheck, 0, len(files))
	worse := 0
	for _, file := range files {
		check, err := checkFile(ctx, runner, path, file, script, tries)
		if err != nil {
			return checks, engine.Result{Err: fmt.Errorf("checking %s: %w", file, err)}
		}
		if check.Worse && revert {
			if err := runner.CheckoutPaths(ctx, file); err != nil {
				// Untracked files have no committed version to restore
				if rmErr := os.Remove(filepath.Join(path, file)); rmErr != nil {
					return checks, engine.Result{Err: err}
				}
			}
			check.Reverted = true
		}
		if check.Worse {
			worse++
		}
		checks = append(checks, check)
	}

	if worse > 0 {
		return checks, engine.Result{
			Err: fmt.Errorf("%d of %d changed files made the check worse", worse, len(checks)),
		}
	}
	return checks, engine.Result{Status: engine.StatusUpToDate, Detail: fmt.Sprintf("%d files checked", len(checks))}
}

// checkFile runs the script with the file's change stashed, then with it
// restored, comparing exit codes across tries. Attempt indices start at 0;
// scripts that clear caches key off attempt 0.
func checkFile(ctx context.Context, runner *git.Runner, dir, file, script string, tries int) (FileCheck, error) {
	check := FileCheck{File: file}

	if err := runner.StashPush(ctx); err != nil {
		return check, err
	}
	for i := 0; i < tries; i++ {
		check.Before = append(check.Before, runScript(ctx, script, dir, file, i))
	}
	if err := runner.StashPop(ctx); err != nil {
		return check, err
	}
	for i := 0; i < tries; i++ {
		check.After = append(check.After, runScript(ctx, script, dir, file, i))
	}

	afterPass := allZero(check.After)
	check.Improved = !allZero(check.Before) && afterPass
	check.Worse = !codesEqual(check.Before, check.After) && !afterPass
	return check, nil
}

func codesEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func runScript(ctx context.Context, script, dir, file string, try int) int {
	cmd := exec.CommandContext(ctx, script, dir, file, strconv.Itoa(try))
	cmd.Dir = dir
	err := cmd.Run()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func allZero(codes []int) bool {
	for _, code := range codes {
		if code != 0 {
			return false
		}
	}
	return true
}

func writeCheckResults(rt *runtime.Context, results map[string][]FileCheck) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(rt.Workspace.InitiativesDir(), checksFileName)
	return initiative.WriteFileAtomic(path, data, 0644)
}

func printCheckResults(rt *runtime.Context, results map[string][]FileCheck) {
	for repo, checks := range results {
		for _, check := range checks {
			switch {
			case check.Reverted:
				rt.Splog.Warn("%s: %s reverted (check regressed)", repo, check.File)
			case check.Worse:
				rt.Splog.Error("%s: %s regressed the check (before %v, after %v)", repo, check.File, check.Before, check.After)
			case check.Improved:
				rt.Splog.Info("%s: %s fixed the check", repo, check.File)
			}
		}
	}
}

// Package errors provides sentinel errors and custom error types for the lasso application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrCloneMissing indicates that a repository has not been synced locally
	ErrCloneMissing = errors.New("clone missing")

	// ErrDirtyWorktree indicates that uncommitted changes block an operation
	ErrDirtyWorktree = errors.New("dirty worktree")

	// ErrConsentRequired indicates that the operator has not approved a fork or clone
	ErrConsentRequired = errors.New("consent required")

	// ErrUnpushedCommits indicates that a reset would discard commits ahead of the default branch
	ErrUnpushedCommits = errors.New("unpushed commits")

	// ErrMixedBranches indicates that clones are not all on the same branch
	ErrMixedBranches = errors.New("clones are not all on the same branch")

	// ErrForkFailed indicates that creating a fork did not succeed
	ErrForkFailed = errors.New("fork creation failed")
)

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}

// RemoteClass classifies a remote API failure
type RemoteClass int

const (
	// ClassTransient covers timeouts, 5xx responses, and rate limiting.
	// Transient failures are retried with backoff up to a bounded attempt count.
	ClassTransient RemoteClass = iota

	// ClassPermanent covers authentication rejection, missing resources,
	// and permission denials. Permanent failures are never retried.
	ClassPermanent
)

// RemoteError represents a failure of a remote API call, with the provider's
// error detail preserved verbatim for operator diagnosis.
type RemoteError struct {
	Op     string
	Status int
	Detail string
	Class  RemoteClass
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %d - %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure may succeed on retry.
func (e *RemoteError) Transient() bool {
	return e.Class == ClassTransient
}

// NewRemoteError creates a new RemoteError
func NewRemoteError(op string, status int, detail string, class RemoteClass, err error) *RemoteError {
	return &RemoteError{
		Op:     op,
		Status: status,
		Detail: detail,
		Class:  class,
		Err:    err,
	}
}

// CloneMissingError reports a verb invoked against a repository that was never synced
type CloneMissingError struct {
	Repo string
}

func (e *CloneMissingError) Error() string {
	return fmt.Sprintf("no local clone for %s (run `lasso sync` first)", e.Repo)
}

// Is returns true if the target error is ErrCloneMissing
func (e *CloneMissingError) Is(target error) bool {
	return target == ErrCloneMissing
}

// Package github provides a client for interacting with the GitHub API.
package github

import (
	"context"
)

// Repo contains information about a remote repository.
// This is a simplified struct to avoid coupling to the go-github library.
type Repo struct {
	Name           string
	FullName       string
	Owner          string
	DefaultBranch  string
	SSHURL         string
	CloneURL       string
	HTMLURL        string
	Fork           bool
	Archived       bool
	Private        bool
	ParentFullName string
}

// PullRequest contains information about a pull request
type PullRequest struct {
	Number    int
	HTMLURL   string
	Title     string
	State     string // open, closed
	Merged    bool
	HeadRef   string
	UserLogin string
}

// CreatePROptions contains options for creating a pull request
type CreatePROptions struct {
	Title string
	Body  string
	Head  string // user:branch
	Base  string
}

// Client is an interface for GitHub API interactions
type Client interface {
	// AuthenticatedUser returns the login of the token's user
	AuthenticatedUser(ctx context.Context) (string, error)

	// ListOrgRepos lists all source repositories in an organization
	ListOrgRepos(ctx context.Context, org string) ([]Repo, error)

	// ListUserForks lists the authenticated user's forks
	ListUserForks(ctx context.Context) ([]Repo, error)

	// CreateFork forks an upstream repository into the user's account
	CreateFork(ctx context.Context, owner, repo string) (*Repo, error)

	// GetRepo fetches a single repository, including its default branch
	GetRepo(ctx context.Context, owner, repo string) (*Repo, error)

	// CreatePullRequest creates a new pull request
	CreatePullRequest(ctx context.Context, owner, repo string, opts CreatePROptions) (*PullRequest, error)

	// ListPullRequests lists pull requests for a head branch in any state
	ListPullRequests(ctx context.Context, owner, repo, headOwner, branch string) ([]PullRequest, error)
}

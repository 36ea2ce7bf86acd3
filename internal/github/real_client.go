package github

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// RealClient implements Client using the GitHub REST API
type RealClient struct {
	client *github.Client
}

// NewRealClient creates a RealClient authenticated with a bearer token
func NewRealClient(ctx context.Context, token string) *RealClient {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	return &RealClient{client: github.NewClient(tc)}
}

// NewRealClientFromGitHub wraps an existing go-github client.
// Used by tests to point at a mock server.
func NewRealClientFromGitHub(client *github.Client) *RealClient {
	return &RealClient{client: client}
}

// AuthenticatedUser returns the login of the token's user
func (c *RealClient) AuthenticatedUser(ctx context.Context) (string, error) {
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}
	return user.GetLogin(), nil
}

// ListOrgRepos lists all source repositories in an organization
func (c *RealClient) ListOrgRepos(ctx context.Context, org string) ([]Repo, error) {
	opts := &github.RepositoryListByOrgOptions{
		Type:        "sources",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var repos []Repo
	for {
		page, resp, err := c.client.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, err
		}
		for _, repo := range page {
			repos = append(repos, toRepo(repo))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return repos, nil
}

// ListUserForks lists the authenticated user's forks
func (c *RealClient) ListUserForks(ctx context.Context) ([]Repo, error) {
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Type:        "forks",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var forks []Repo
	for {
		page, resp, err := c.client.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, err
		}
		for _, repo := range page {
			if !repo.GetFork() {
				continue
			}
			forks = append(forks, toRepo(repo))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return forks, nil
}

// CreateFork forks an upstream repository into the user's account.
// GitHub creates forks asynchronously and answers 202; go-github reports
// that as an AcceptedError, which we treat as success.
func (c *RealClient) CreateFork(ctx context.Context, owner, repo string) (*Repo, error) {
	fork, _, err := c.client.Repositories.CreateFork(ctx, owner, repo, nil)
	if err != nil {
		var accepted *github.AcceptedError
		if !errors.As(err, &accepted) {
			return nil, err
		}
	}
	if fork == nil {
		return &Repo{Name: repo, Fork: true}, nil
	}
	result := toRepo(fork)
	return &result, nil
}

// GetRepo fetches a single repository, including its default branch
func (c *RealClient) GetRepo(ctx context.Context, owner, repo string) (*Repo, error) {
	found, _, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	result := toRepo(found)
	return &result, nil
}

// CreatePullRequest creates a new pull request
func (c *RealClient) CreatePullRequest(ctx context.Context, owner, repo string, opts CreatePROptions) (*PullRequest, error) {
	pr := &github.NewPullRequest{
		Title: github.String(opts.Title),
		Head:  github.String(opts.Head),
		Base:  github.String(opts.Base),
	}
	if opts.Body != "" {
		pr.Body = github.String(opts.Body)
	}

	createdPR, _, err := c.client.PullRequests.Create(ctx, owner, repo, pr)
	if err != nil {
		return nil, err
	}
	return toPullRequest(createdPR), nil
}

// ListPullRequests lists pull requests for a head branch in any state
func (c *RealClient) ListPullRequests(ctx context.Context, owner, repo, headOwner, branch string) ([]PullRequest, error) {
	opts := &github.PullRequestListOptions{
		Head:        fmt.Sprintf("%s:%s", headOwner, branch),
		State:       "all",
		Sort:        "created",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	prs, _, err := c.client.PullRequests.List(ctx, owner, repo, opts)
	if err != nil {
		return nil, err
	}

	result := make([]PullRequest, 0, len(prs))
	for _, pr := range prs {
		result = append(result, *toPullRequest(pr))
	}
	return result, nil
}

// toRepo converts a github.Repository to Repo
func toRepo(repo *github.Repository) Repo {
	result := Repo{
		Name:          repo.GetName(),
		FullName:      repo.GetFullName(),
		DefaultBranch: repo.GetDefaultBranch(),
		SSHURL:        repo.GetSSHURL(),
		CloneURL:      repo.GetCloneURL(),
		HTMLURL:       repo.GetHTMLURL(),
		Fork:          repo.GetFork(),
		Archived:      repo.GetArchived(),
		Private:       repo.GetPrivate(),
	}
	if repo.Owner != nil {
		result.Owner = repo.Owner.GetLogin()
	}
	if repo.Parent != nil {
		result.ParentFullName = repo.Parent.GetFullName()
	}
	return result
}

// toPullRequest converts a github.PullRequest to PullRequest
func toPullRequest(pr *github.PullRequest) *PullRequest {
	if pr == nil {
		return nil
	}
	result := &PullRequest{
		Number:  pr.GetNumber(),
		HTMLURL: pr.GetHTMLURL(),
		Title:   pr.GetTitle(),
		State:   pr.GetState(),
		Merged:  pr.GetMerged(),
	}
	if pr.Head != nil {
		result.HeadRef = pr.Head.GetRef()
	}
	if pr.User != nil {
		result.UserLogin = pr.User.GetLogin()
	}
	return result
}

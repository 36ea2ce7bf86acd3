package testhelpers

import (
	"context"
	"fmt"
	"sync"

	"lasso.dev/lasso/internal/github"
)

// FakeGitHub is an in-memory github.Client for tests
type FakeGitHub struct {
	User     string
	OrgRepos []github.Repo
	Forks    []github.Repo

	// CreatePRErr, when set, fails every CreatePullRequest call
	CreatePRErr error

	mu           sync.Mutex
	CreatedForks []string
	CreatedPRs   []github.PullRequest
	prs          map[string][]github.PullRequest
	nextPR       int
}

var _ github.Client = (*FakeGitHub)(nil)

func (f *FakeGitHub) AuthenticatedUser(ctx context.Context) (string, error) {
	return f.User, nil
}

func (f *FakeGitHub) ListOrgRepos(ctx context.Context, org string) ([]github.Repo, error) {
	return f.OrgRepos, nil
}

func (f *FakeGitHub) ListUserForks(ctx context.Context) ([]github.Repo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]github.Repo(nil), f.Forks...), nil
}

func (f *FakeGitHub) CreateFork(ctx context.Context, owner, repo string) (*github.Repo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.CreatedForks = append(f.CreatedForks, repo)
	fork := github.Repo{
		Name:           repo,
		FullName:       f.User + "/" + repo,
		Owner:          f.User,
		DefaultBranch:  "main",
		Fork:           true,
		ParentFullName: owner + "/" + repo,
	}
	for _, upstream := range f.OrgRepos {
		if upstream.Name == repo {
			// Local-path clone URLs let tests clone forks from disk
			fork.CloneURL = upstream.CloneURL
			fork.DefaultBranch = upstream.DefaultBranch
		}
	}
	f.Forks = append(f.Forks, fork)
	return &fork, nil
}

func (f *FakeGitHub) GetRepo(ctx context.Context, owner, repo string) (*github.Repo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	lists := [][]github.Repo{f.OrgRepos, f.Forks}
	if owner == f.User {
		lists = [][]github.Repo{f.Forks, f.OrgRepos}
	}
	for _, list := range lists {
		for _, r := range list {
			if r.Name == repo {
				r := r
				return &r, nil
			}
		}
	}
	return nil, fmt.Errorf("repo %s/%s not found", owner, repo)
}

func (f *FakeGitHub) CreatePullRequest(ctx context.Context, owner, repo string, opts github.CreatePROptions) (*github.PullRequest, error) {
	if f.CreatePRErr != nil {
		return nil, f.CreatePRErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextPR++
	pr := github.PullRequest{
		Number:    f.nextPR,
		HTMLURL:   fmt.Sprintf("https://github.example/%s/%s/pull/%d", owner, repo, f.nextPR),
		Title:     opts.Title,
		State:     "open",
		HeadRef:   opts.Head,
		UserLogin: f.User,
	}
	if f.prs == nil {
		f.prs = make(map[string][]github.PullRequest)
	}
	f.prs[owner+"/"+repo] = append(f.prs[owner+"/"+repo], pr)
	f.CreatedPRs = append(f.CreatedPRs, pr)
	return &pr, nil
}

func (f *FakeGitHub) ListPullRequests(ctx context.Context, owner, repo, headOwner, branch string) ([]github.PullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []github.PullRequest
	for _, pr := range f.prs[owner+"/"+repo] {
		if pr.HeadRef == headOwner+":"+branch {
			matched = append(matched, pr)
		}
	}
	return matched, nil
}

// SetPullRequest seeds a PR record, for testing merge and close transitions
func (f *FakeGitHub) SetPullRequest(owner, repo string, pr github.PullRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.prs == nil {
		f.prs = make(map[string][]github.PullRequest)
	}
	f.prs[owner+"/"+repo] = []github.PullRequest{pr}
}

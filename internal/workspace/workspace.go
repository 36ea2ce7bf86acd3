// Package workspace owns the on-disk layout of cloned repositories,
// one directory per repository nested under an organization folder.
// Clone existence and branch state on disk are the ground truth for
// every verb; checks go through the per-repository lock so pooled
// verbs never race on the same clone.
package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	gogit "github.com/go-git/go-git/v5"

	lassoerrors "lasso.dev/lasso/internal/errors"
)

// Workspace manages local clones for one organization
type Workspace struct {
	Root string
	Org  string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Workspace rooted at the given directory
func New(root, org string) *Workspace {
	return &Workspace{
		Root:  root,
		Org:   org,
		locks: make(map[string]*sync.Mutex),
	}
}

// ReposDir returns the directory holding this organization's clones
func (w *Workspace) ReposDir() string {
	return filepath.Join(w.Root, "repos", w.Org)
}

// InitiativesDir returns the directory holding PR templates and status data
func (w *Workspace) InitiativesDir() string {
	return filepath.Join(w.Root, "initiatives")
}

// ReportsDir returns the directory holding rendered reports
func (w *Workspace) ReportsDir() string {
	return filepath.Join(w.Root, "reports")
}

// ClonePath returns the directory a repository's clone lives in
func (w *Workspace) ClonePath(name string) string {
	return filepath.Join(w.ReposDir(), name)
}

// EnsureLayout creates the workspace directory tree
func (w *Workspace) EnsureLayout() error {
	for _, dir := range []string{w.ReposDir(), w.InitiativesDir()} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return err
		}
	}
	return nil
}

// Clone represents one local working copy
type Clone struct {
	Name string
	Path string
}

// Clones lists all local clones, sorted by name. A directory counts as a
// clone only when it contains a .git directory: a clone exists iff a prior
// sync completed for that repository.
func (w *Workspace) Clones() ([]Clone, error) {
	entries, err := os.ReadDir(w.ReposDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var clones []Clone
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(w.ReposDir(), entry.Name())
		if info, err := os.Stat(filepath.Join(path, ".git")); err != nil || !info.IsDir() {
			continue
		}
		clones = append(clones, Clone{Name: entry.Name(), Path: path})
	}

	sort.Slice(clones, func(i, j int) bool { return clones[i].Name < clones[j].Name })
	return clones, nil
}

// HasClone reports whether a repository has a local clone
func (w *Workspace) HasClone(name string) bool {
	info, err := os.Stat(filepath.Join(w.ClonePath(name), ".git"))
	return err == nil && info.IsDir()
}

// State describes a clone's current branch and index cleanliness
type State struct {
	CurrentBranch string
	Dirty         bool
}

// Inspect reads a clone's branch and dirty/clean state through go-git
func (w *Workspace) Inspect(name string) (*State, error) {
	if !w.HasClone(name) {
		return nil, &lassoerrors.CloneMissingError{Repo: name}
	}

	repo, err := gogit.PlainOpen(w.ClonePath(name))
	if err != nil {
		return nil, err
	}

	state := &State{}

	head, err := repo.Head()
	if err == nil && head.Name().IsBranch() {
		state.CurrentBranch = head.Name().Short()
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, err
	}
	state.Dirty = !status.IsClean()

	return state, nil
}

// Lock returns the mutex guarding a repository's clone and status entry.
// Operations within one repository are strictly sequential.
func (w *Workspace) Lock(name string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()

	lock, ok := w.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		w.locks[name] = lock
	}
	return lock
}

// Package initiative tracks each repository's progress through a named
// change campaign: its pull-request lifecycle state and its PR template.
package initiative

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// State is a repository's position in an initiative's pull-request lifecycle
type State string

const (
	StateNotStarted State = "not-started"
	StateChanged    State = "changed-uncommitted"
	StateReady      State = "ready-to-submit"
	StateSubmitted  State = "submitted"
	StateMerged     State = "merged"
	StateClosed     State = "closed"
	StateError      State = "error"
)

// Entry is the durable record of one repository's progress through one
// initiative, keyed uniquely by (initiative, repository)
type Entry struct {
	Initiative string    `json:"initiative"`
	Repo       string    `json:"repo"`
	State      State     `json:"state"`
	PRURL      string    `json:"pr_url,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
	Detail     string    `json:"detail,omitempty"`
}

// Store persists status entries as a single JSON document. Every write
// rewrites the whole document through an atomic temp-file-and-rename so a
// campaign killed between two repository updates never corrupts the file.
type Store struct {
	path string

	mu      sync.Mutex
	entries map[string]map[string]Entry // initiative -> repo -> entry
}

// Open loads the store at path. A missing file yields an empty store;
// a corrupt file is an error the caller must treat as fatal.
func Open(path string) (*Store, error) {
	store := &Store{
		path:    path,
		entries: make(map[string]map[string]Entry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, &store.entries); err != nil {
		return nil, fmt.Errorf("status store %s is unreadable: %w", path, err)
	}
	return store, nil
}

// Path returns the file backing this store
func (s *Store) Path() string {
	return s.path
}

// Get returns the entry for (initiative, repo)
func (s *Store) Get(initiative, repo string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[initiative][repo]
	return entry, ok
}

// Upsert writes an entry, stamping UpdatedAt, and persists the document
func (s *Store) Upsert(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.UpdatedAt = time.Now()
	byRepo, ok := s.entries[entry.Initiative]
	if !ok {
		byRepo = make(map[string]Entry)
		s.entries[entry.Initiative] = byRepo
	}
	byRepo[entry.Repo] = entry

	return s.writeLocked()
}

// EnsureEntry creates a not-started entry if none exists for (initiative, repo)
func (s *Store) EnsureEntry(initiative, repo string) error {
	if _, ok := s.Get(initiative, repo); ok {
		return nil
	}
	return s.Upsert(Entry{Initiative: initiative, Repo: repo, State: StateNotStarted})
}

// All returns every entry for an initiative, sorted by repository
func (s *Store) All(initiative string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.entries[initiative]))
	for _, entry := range s.entries[initiative] {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Repo < entries[j].Repo })
	return entries
}

// Initiatives returns the names of all tracked initiatives, sorted
func (s *Store) Initiatives() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// writeLocked rewrites the backing file. Callers hold s.mu.
func (s *Store) writeLocked() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(s.path, data, 0600)
}

// WriteFileAtomic writes data to a temp file in the target's directory and
// renames it over path, so readers never observe a truncated document.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

package discovery

import (
	"sort"
	"sync"
)

// Set is the thread-safe accumulator of candidate paths for one run.
// Every mutation holds the lock only for the duration of that call.
type Set struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewSet creates an empty set
func NewSet() *Set {
	return &Set{paths: make(map[string]struct{})}
}

// Add inserts path
func (s *Set) Add(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths[path] = struct{}{}
}

// AddAll inserts every path under a single lock acquisition
func (s *Set) AddAll(paths ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		s.paths[p] = struct{}{}
	}
}

// Remove deletes path
func (s *Set) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.paths, path)
}

// Contains reports whether path is in the set
func (s *Set) Contains(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.paths[path]
	return ok
}

// Len returns the number of paths
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}

// Snapshot returns a sorted copy of the set's contents
func (s *Set) Snapshot() []string {
	s.mu.Lock()
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	s.mu.Unlock()
	sort.Strings(out)
	return out
}

package domain

import (
	"errors"
	"strings"
	"sync"
)

var (
	ErrAlreadyTracked = errors.New("server is already tracked")
	ErrNotTracked     = errors.New("server is not tracked")
	ErrEmptyID        = errors.New("server id is empty")
)

// TrackedSet is the ordered, duplicate-free set of tracked server ids.
// Order drives message-slot assignment in the channel, so it is preserved.
type TrackedSet struct {
	mu  sync.RWMutex
	ids []string
}

// NewTrackedSet builds a set from ids, dropping blanks and later duplicates.
func NewTrackedSet(ids []string) *TrackedSet {
	ts := &TrackedSet{ids: make([]string, 0, len(ids))}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ts.ids = append(ts.ids, id)
	}
	return ts
}

// List returns a copy of the tracked ids in order.
func (ts *TrackedSet) List() []TrackedServer {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	out := make([]TrackedServer, len(ts.ids))
	for i, id := range ts.ids {
		out[i] = TrackedServer{ID: id}
	}
	return out
}

// IDs returns a copy of the tracked ids in order.
func (ts *TrackedSet) IDs() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	return append([]string(nil), ts.ids...)
}

// Contains reports whether id is tracked.
func (ts *TrackedSet) Contains(id string) bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	for _, v := range ts.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id to the end of the set.
func (ts *TrackedSet) Add(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyID
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	for _, v := range ts.ids {
		if v == id {
			return ErrAlreadyTracked
		}
	}
	ts.ids = append(ts.ids, id)
	return nil
}

// Remove deletes id, keeping the relative order of the others.
func (ts *TrackedSet) Remove(id string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	for i, v := range ts.ids {
		if v == id {
			ts.ids = append(ts.ids[:i], ts.ids[i+1:]...)
			return nil
		}
	}
	return ErrNotTracked
}

// Len returns the number of tracked servers.
func (ts *TrackedSet) Len() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	return len(ts.ids)
}

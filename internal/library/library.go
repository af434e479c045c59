// Package library holds the enrolled reference poses and their JSON
// persistence.
package library

import (
	"sort"
	"sync"
)

// ReferencePose is a stored, named hand configuration used as a comparison
// target. Landmarks are kept unnormalized, as a flat 63-value array; the
// matcher normalizes on demand.
type ReferencePose struct {
	ID        string    `json:"-"`
	Name      string    `json:"name"`
	Landmarks []float64 `json:"landmarks"`
	Message   string    `json:"message"`
	CreatedAt int64     `json:"created_at"`
	IsDefault bool      `json:"is_default,omitempty"`
}

// Library is an ordered collection of reference poses keyed by id.
//
// The matcher's tie-break policy is "first seen wins", so iteration order is
// observable behavior: All returns poses in insertion order for poses added at
// runtime; poses loaded from disk are inserted sorted by creation time, then id.
type Library struct {
	mu    sync.RWMutex
	poses map[string]*ReferencePose
	order []string
}

// New creates an empty Library.
func New() *Library {
	return &Library{
		poses: make(map[string]*ReferencePose),
	}
}

// Add inserts or replaces a pose. A new id is appended to the iteration order;
// replacing an existing id keeps its position.
func (l *Library) Add(p *ReferencePose) {
	if p == nil || p.ID == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.poses[p.ID]; !exists {
		l.order = append(l.order, p.ID)
	}
	l.poses[p.ID] = p
}

// Delete removes a pose by id. Returns false if no such pose exists.
func (l *Library) Delete(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.poses[id]; !exists {
		return false
	}
	delete(l.poses, id)
	for i, existing := range l.order {
		if existing == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the pose with the given id.
func (l *Library) Get(id string) (*ReferencePose, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.poses[id]
	return p, ok
}

// All returns the poses in their fixed iteration order.
func (l *Library) All() []*ReferencePose {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*ReferencePose, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.poses[id])
	}
	return out
}

// Len returns the number of stored poses.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.poses)
}

// fromRecords builds a Library from an id->pose mapping, ordering entries by
// creation time and then id so repeated loads of the same file always iterate
// identically.
func fromRecords(records map[string]*ReferencePose) *Library {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := records[ids[i]], records[ids[j]]
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return ids[i] < ids[j]
	})

	l := New()
	for _, id := range ids {
		p := records[id]
		p.ID = id
		l.Add(p)
	}
	return l
}

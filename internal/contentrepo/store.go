package contentrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Filter selects records. Zero fields match everything.
type Filter struct {
	Workspace  string
	Locale     string
	Identifier uuid.UUID
	Path       string
	// PathPrefix matches strict descendants of the given path.
	PathPrefix string
}

func (f Filter) matches(r *Record) bool {
	if f.Workspace != "" && r.Workspace != f.Workspace {
		return false
	}
	if f.Locale != "" && r.Locale != f.Locale {
		return false
	}
	if f.Identifier != uuid.Nil && r.Identifier != f.Identifier {
		return false
	}
	if f.Path != "" && r.Path != f.Path {
		return false
	}
	if f.PathPrefix != "" && !isDescendantPath(r.Path, f.PathPrefix) {
		return false
	}
	return true
}

// Store persists node records.
type Store interface {
	Find(ctx context.Context, filter Filter) ([]*Record, error)
	Save(ctx context.Context, records ...*Record) error
}

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[uuid.UUID]*Record{}}
}

// Find returns copies of matching records ordered by path then locale.
func (s *MemoryStore) Find(_ context.Context, filter Filter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Record, 0)
	for _, rec := range s.records {
		if filter.matches(rec) {
			out = append(out, rec.clone())
		}
	}
	sortRecords(out)
	return out, nil
}

// Save upserts records by ID.
func (s *MemoryStore) Save(_ context.Context, records ...*Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		if rec == nil {
			continue
		}
		s.records[rec.ID] = rec.clone()
	}
	return nil
}

func sortRecords(records []*Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Path != records[j].Path {
			return records[i].Path < records[j].Path
		}
		if records[i].Workspace != records[j].Workspace {
			return records[i].Workspace < records[j].Workspace
		}
		return records[i].Locale < records[j].Locale
	})
}

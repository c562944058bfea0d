package auditoria

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRecorder keeps audit entries in memory, used when no database is
// configured and by tests. Entries are retained for the process lifetime.
type InMemoryRecorder struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewInMemoryRecorder creates an empty recorder.
func NewInMemoryRecorder() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Record appends an entry, stamping id and timestamp when unset.
func (r *InMemoryRecorder) Record(ctx context.Context, e Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	r.mu.Lock()
	// Newest first, matching the SQL query ordering.
	r.entries = append([]Entry{e}, r.entries...)
	r.mu.Unlock()
}

// Seed replaces the recorder's contents with a previously dumped trail.
// Entries are expected newest first, as Query returns them.
func (r *InMemoryRecorder) Seed(entries []Entry) {
	r.mu.Lock()
	r.entries = append([]Entry(nil), entries...)
	r.mu.Unlock()
}

// Query returns entries matching the filter, newest first.
func (r *InMemoryRecorder) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Entry
	for _, e := range r.entries {
		if filter.ActorID != 0 && e.ActorID != filter.ActorID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.Entity != "" && e.Entity != filter.Entity {
			continue
		}
		if filter.EntityID != 0 && e.EntityID != filter.EntityID {
			continue
		}
		if !filter.StartTime.IsZero() && e.Timestamp.Before(filter.StartTime) {
			continue
		}
		if !filter.EndTime.IsZero() && e.Timestamp.After(filter.EndTime) {
			continue
		}
		out = append(out, e)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"rangebook/pkg/model"
)

// TrailFilter narrows an audit trail query. BookingID filters by exact match;
// the date bounds are inclusive on both ends and each is optional.
type TrailFilter struct {
	BookingID string
	StartDate *time.Time
	EndDate   *time.Time
}

// AuditRepository is an append-only log. There are deliberately no update or
// delete methods: once written, an entry is immutable.
type AuditRepository interface {
	Append(ctx context.Context, entry *model.AuditLogEntry) error
	Trail(ctx context.Context, filter TrailFilter) ([]*model.AuditLogEntry, error)
	Count(ctx context.Context) (int64, error)
}

type memoryAuditRepository struct {
	mu      sync.RWMutex
	entries []*model.AuditLogEntry
}

func NewMemoryAuditRepository() AuditRepository {
	return &memoryAuditRepository{}
}

func (r *memoryAuditRepository) Append(_ context.Context, entry *model.AuditLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// Trail preserves append order in its results.
func (r *memoryAuditRepository) Trail(_ context.Context, filter TrailFilter) ([]*model.AuditLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.AuditLogEntry
	for _, e := range r.entries {
		if filter.BookingID != "" && e.BookingID != filter.BookingID {
			continue
		}
		if filter.StartDate != nil && e.Timestamp.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && e.Timestamp.After(*filter.EndDate) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryAuditRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.entries)), nil
}

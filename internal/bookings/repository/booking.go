package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	bookingserrors "rangebook/internal/bookings/errors"
	"rangebook/pkg/model"
)

// BookingRepository is the booking collection. Bookings are never removed:
// the workflow engine only transitions their status, so the collection grows
// in insertion order for the life of the process.
type BookingRepository interface {
	Insert(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context) ([]*model.Booking, error)
	FindByResource(ctx context.Context, resourceID string, startDate, endDate *time.Time, status model.BookingStatus) ([]*model.Booking, error)
	Count(ctx context.Context) (int64, error)
}

type memoryBookingRepository struct {
	mu       sync.RWMutex
	bookings []*model.Booking
	byID     map[string]*model.Booking
}

func NewMemoryBookingRepository() BookingRepository {
	return &memoryBookingRepository{
		byID: make(map[string]*model.Booking),
	}
}

func (r *memoryBookingRepository) Insert(_ context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[booking.ID]; exists {
		return bookingserrors.ErrDuplicateID
	}

	r.bookings = append(r.bookings, booking)
	r.byID[booking.ID] = booking
	return nil
}

func (r *memoryBookingRepository) FindByID(_ context.Context, id string) (*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, ok := r.byID[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return booking, nil
}

// FindAll returns every booking in insertion order. Callers receive the live
// records; mutation is the workflow engine's job and happens under its lock.
func (r *memoryBookingRepository) FindAll(_ context.Context) ([]*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Booking, len(r.bookings))
	copy(out, r.bookings)
	return out, nil
}

// FindByResource filters by resource id, then by the loose "touches the
// window" rule (booking kept when end >= startDate and start <= endDate,
// bounds inclusive and each optional), then by exact status when given.
// This is deliberately broader than the strict conflict predicate: a booking
// ending exactly at the window start still belongs on the schedule view.
// Results are sorted ascending by start time; ties keep insertion order.
func (r *memoryBookingRepository) FindByResource(_ context.Context, resourceID string, startDate, endDate *time.Time, status model.BookingStatus) ([]*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.Booking
	for _, b := range r.bookings {
		if b.ResourceID != resourceID {
			continue
		}
		if startDate != nil && b.EndTime.Before(*startDate) {
			continue
		}
		if endDate != nil && b.StartTime.After(*endDate) {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (r *memoryBookingRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.bookings)), nil
}

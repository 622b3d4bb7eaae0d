package model

import (
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusApproved  BookingStatus = "approved"
	StatusDenied    BookingStatus = "denied"
	StatusCancelled BookingStatus = "cancelled"
	StatusBumped    BookingStatus = "bumped"
)

// Booking references its resource and requester by stable ID; those records
// are owned by the registries and outlive every booking that names them.
// After creation only Status, StartTime and EndTime may change, and the
// latter two only through a reschedule.
type Booking struct {
	ID          string        `json:"id,omitempty" validate:"omitempty"`
	ResourceID  string        `json:"resource_id" validate:"required"`
	RequesterID string        `json:"requester_id" validate:"required"`
	StartTime   time.Time     `json:"start_time" validate:"required"`
	EndTime     time.Time     `json:"end_time" validate:"required,gtfield=StartTime"`
	Status      BookingStatus `json:"status" validate:"required,oneof=pending approved denied cancelled bumped"`
	Purpose     string        `json:"purpose,omitempty" validate:"omitempty,max=500"`
	Priority    int           `json:"priority"`
	CreatedAt   time.Time     `json:"created_at" validate:"omitempty"`
}

// IntervalsOverlap reports whether two half-open intervals [start1,end1) and
// [start2,end2) intersect. Back-to-back intervals do not overlap.
func IntervalsOverlap(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}

// Overlaps reports whether two bookings contend for the same resource at the
// same time. Symmetric.
func (b *Booking) Overlaps(other *Booking) bool {
	return b.ResourceID == other.ResourceID &&
		IntervalsOverlap(b.StartTime, b.EndTime, other.StartTime, other.EndTime)
}

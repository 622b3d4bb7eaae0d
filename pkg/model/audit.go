package model

import "time"

type ActionType string

const (
	ActionCreate     ActionType = "create"
	ActionApprove    ActionType = "approve"
	ActionDeny       ActionType = "deny"
	ActionReschedule ActionType = "reschedule"
	ActionOverride   ActionType = "override"
	ActionBump       ActionType = "bump"
	ActionCancel     ActionType = "cancel"
)

// Snapshot field keys used in AuditLogEntry.PreviousState.
const (
	SnapshotStatus    = "status"
	SnapshotStartTime = "start_time"
	SnapshotEndTime   = "end_time"
)

// AuditLogEntry records one action against one booking. Entries are
// append-only and never mutated. PreviousState holds the fields the action
// overwrote (times in RFC3339); it is nil for creations and for attempts
// that were blocked without mutating anything.
type AuditLogEntry struct {
	ID            string            `json:"id,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
	Action        ActionType        `json:"action"`
	ActorID       string            `json:"actor_id"`
	BookingID     string            `json:"booking_id"`
	Details       string            `json:"details,omitempty"`
	PreviousState map[string]string `json:"previous_state,omitempty"`
}

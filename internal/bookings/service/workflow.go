package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	auditrepo "rangebook/internal/audit/repository"
	bookingserrors "rangebook/internal/bookings/errors"
	"rangebook/internal/bookings/repository"
	"rangebook/internal/bookings/validator"
	"rangebook/internal/registry"
	"rangebook/pkg/config"
	apperrors "rangebook/pkg/errors"
	"rangebook/pkg/model"
)

// WorkflowService drives the booking state machine. Every state change is
// paired with exactly one audit entry; attempts that are authorized but
// blocked by conflicts also get an entry (with no previous-state snapshot),
// while authorization failures abort before anything is written.
type WorkflowService interface {
	CreateBookingRequest(ctx context.Context, booking *model.Booking) (*model.Booking, error)
	CheckConflicts(ctx context.Context, booking *model.Booking) ([]*model.Booking, error)
	ApproveBooking(ctx context.Context, bookingID, approverID string, forceOverride bool) (bool, error)
	DenyBooking(ctx context.Context, bookingID, denierID, reason string) error
	RescheduleBooking(ctx context.Context, bookingID, reschedulerID string, newStart, newEnd time.Time, forceOverride bool) (bool, error)
	BumpBooking(ctx context.Context, bookingID, bumperID, displacingBookingID, reason string) error
	CancelBooking(ctx context.Context, bookingID, cancellerID, reason string) error
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	GetBookingsByResource(ctx context.Context, resourceID string, startDate, endDate *time.Time, status model.BookingStatus) ([]*model.Booking, error)
	GetAuditTrail(ctx context.Context, filter auditrepo.TrailFilter) ([]*model.AuditLogEntry, error)
}

type workflowService struct {
	// mu makes each mutating invocation one critical section: authorization,
	// conflict scan, status/interval mutation and audit append happen without
	// another writer interleaving.
	mu sync.Mutex

	repo      repository.BookingRepository
	auditRepo auditrepo.AuditRepository
	users     registry.UserRegistry
	resources registry.ResourceRegistry
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewWorkflowService(
	repo repository.BookingRepository,
	auditRepo auditrepo.AuditRepository,
	users registry.UserRegistry,
	resources registry.ResourceRegistry,
	validator *validator.BookingValidator,
	cfg *config.Config,
) WorkflowService {
	return &workflowService{
		repo:      repo,
		auditRepo: auditRepo,
		users:     users,
		resources: resources,
		validator: validator,
		cfg:       cfg,
	}
}

// CreateBookingRequest stores a new booking at pending status. Conflicts are
// not evaluated here; they only matter at approval or reschedule time.
func (s *workflowService) CreateBookingRequest(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	if booking == nil {
		return nil, apperrors.InvalidInput("Booking cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !booking.EndTime.After(booking.StartTime) {
		return nil, apperrors.InvalidInterval("end time must be after start time")
	}

	s.applyDefaults(booking)

	if err := s.validate(booking); err != nil {
		return nil, err
	}

	resource, err := s.resources.FindByID(ctx, booking.ResourceID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, booking.RequesterID); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrDuplicateID) {
			return nil, apperrors.InvalidInput("Booking ID already exists")
		}
		return nil, apperrors.Internal("Failed to store booking", err)
	}

	s.appendAudit(ctx, model.ActionCreate, booking.RequesterID, booking.ID,
		fmt.Sprintf("Booking request created for %s", resource.Name), nil)

	s.cfg.Log.Info("Booking request created",
		"id", booking.ID,
		"resource_id", booking.ResourceID,
		"requester_id", booking.RequesterID,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
		"priority", booking.Priority,
	)
	return booking, nil
}

// CheckConflicts returns every approved booking on the same resource whose
// interval overlaps the candidate's, excluding the candidate itself.
// Read-only; results follow the collection's insertion order.
func (s *workflowService) CheckConflicts(ctx context.Context, booking *model.Booking) ([]*model.Booking, error) {
	if booking == nil {
		return nil, apperrors.InvalidInput("Booking cannot be nil")
	}
	return s.conflictsFor(ctx, booking.ID, booking.ResourceID, booking.StartTime, booking.EndTime)
}

func (s *workflowService) ApproveBooking(ctx context.Context, bookingID, approverID string, forceOverride bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	approver, err := s.users.FindByID(ctx, approverID)
	if err != nil {
		return false, err
	}
	if !approver.IsStaffOrAdmin() {
		return false, apperrors.PermissionDenied("approve", "Only staff or admin can approve bookings")
	}

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return false, err
	}

	conflicts, err := s.conflictsFor(ctx, booking.ID, booking.ResourceID, booking.StartTime, booking.EndTime)
	if err != nil {
		return false, err
	}

	if len(conflicts) > 0 && !forceOverride {
		details := fmt.Sprintf("Cannot approve due to conflicts with bookings: [%s]", joinIDs(conflicts))
		s.appendAudit(ctx, model.ActionApprove, approverID, bookingID, details, nil)
		s.cfg.Log.Info("Booking approval blocked by conflicts",
			"id", bookingID,
			"conflicts", len(conflicts),
		)
		return false, nil
	}

	previousState := map[string]string{
		model.SnapshotStatus: string(booking.Status),
	}
	booking.Status = model.StatusApproved

	if forceOverride && len(conflicts) > 0 {
		details := fmt.Sprintf("Booking approved with override (conflicts: [%s])", joinIDs(conflicts))
		s.appendAudit(ctx, model.ActionOverride, approverID, bookingID, details, previousState)
		s.cfg.Log.Warn("Booking approved with conflict override",
			"id", bookingID,
			"approver_id", approverID,
			"conflicts", len(conflicts),
		)
	} else {
		s.appendAudit(ctx, model.ActionApprove, approverID, bookingID, "Booking approved", previousState)
		s.cfg.Log.Info("Booking approved", "id", bookingID, "approver_id", approverID)
	}

	return true, nil
}

func (s *workflowService) DenyBooking(ctx context.Context, bookingID, denierID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	denier, err := s.users.FindByID(ctx, denierID)
	if err != nil {
		return err
	}
	if !denier.IsStaffOrAdmin() {
		return apperrors.PermissionDenied("deny", "Only staff or admin can deny bookings")
	}

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	previousState := map[string]string{
		model.SnapshotStatus: string(booking.Status),
	}
	booking.Status = model.StatusDenied

	s.appendAudit(ctx, model.ActionDeny, denierID, bookingID,
		fmt.Sprintf("Booking denied. Reason: %s", reason), previousState)

	s.cfg.Log.Info("Booking denied", "id", bookingID, "denier_id", denierID, "reason", reason)
	return nil
}

// RescheduleBooking checks the proposed interval against approved bookings
// before touching the record, so a blocked attempt leaves the booking exactly
// as it was. A successful reschedule always (re-)approves the booking.
func (s *workflowService) RescheduleBooking(ctx context.Context, bookingID, reschedulerID string, newStart, newEnd time.Time, forceOverride bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rescheduler, err := s.users.FindByID(ctx, reschedulerID)
	if err != nil {
		return false, err
	}
	if !rescheduler.IsStaffOrAdmin() {
		return false, apperrors.PermissionDenied("reschedule", "Only staff or admin can reschedule bookings")
	}

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return false, err
	}

	if !newEnd.After(newStart) {
		return false, apperrors.InvalidInterval("end time must be after start time")
	}

	conflicts, err := s.conflictsFor(ctx, booking.ID, booking.ResourceID, newStart, newEnd)
	if err != nil {
		return false, err
	}

	if len(conflicts) > 0 && !forceOverride {
		details := fmt.Sprintf("Cannot reschedule due to conflicts with bookings: [%s]", joinIDs(conflicts))
		s.appendAudit(ctx, model.ActionReschedule, reschedulerID, bookingID, details, nil)
		s.cfg.Log.Info("Booking reschedule blocked by conflicts",
			"id", bookingID,
			"conflicts", len(conflicts),
		)
		return false, nil
	}

	previousState := map[string]string{
		model.SnapshotStartTime: booking.StartTime.Format(time.RFC3339),
		model.SnapshotEndTime:   booking.EndTime.Format(time.RFC3339),
		model.SnapshotStatus:    string(booking.Status),
	}

	oldStart := booking.StartTime
	booking.StartTime = newStart
	booking.EndTime = newEnd
	booking.Status = model.StatusApproved

	details := fmt.Sprintf("Booking rescheduled from %s to %s",
		oldStart.Format(time.RFC3339), newStart.Format(time.RFC3339))
	if forceOverride && len(conflicts) > 0 {
		details += fmt.Sprintf(" (overriding conflicts: [%s])", joinIDs(conflicts))
	}

	s.appendAudit(ctx, model.ActionReschedule, reschedulerID, bookingID, details, previousState)

	s.cfg.Log.Info("Booking rescheduled",
		"id", bookingID,
		"rescheduler_id", reschedulerID,
		"new_start", newStart,
		"new_end", newEnd,
	)
	return true, nil
}

// BumpBooking is an administrative declaration: it transitions the target to
// bumped and records which booking displaced it. It does not compare
// priorities and does not touch the displacing booking's state; that judgment
// stays with the staff member making the call.
func (s *workflowService) BumpBooking(ctx context.Context, bookingID, bumperID, displacingBookingID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bumper, err := s.users.FindByID(ctx, bumperID)
	if err != nil {
		return err
	}
	if !bumper.IsStaffOrAdmin() {
		return apperrors.PermissionDenied("bump", "Only staff or admin can bump bookings")
	}

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	// Resolve the displacing id so the audit entry never names a phantom
	// booking. Its priority and status are deliberately not inspected.
	displacing, err := s.findBooking(ctx, displacingBookingID)
	if err != nil {
		return err
	}

	previousState := map[string]string{
		model.SnapshotStatus: string(booking.Status),
	}
	booking.Status = model.StatusBumped

	s.appendAudit(ctx, model.ActionBump, bumperID, bookingID,
		fmt.Sprintf("Booking bumped for higher priority booking %s. Reason: %s", displacing.ID, reason),
		previousState)

	s.cfg.Log.Info("Booking bumped",
		"id", bookingID,
		"bumper_id", bumperID,
		"displacing_booking_id", displacing.ID,
		"reason", reason,
	)
	return nil
}

func (s *workflowService) CancelBooking(ctx context.Context, bookingID, cancellerID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	canceller, err := s.users.FindByID(ctx, cancellerID)
	if err != nil {
		return err
	}

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	// The requester may cancel their own booking regardless of role.
	if booking.RequesterID != canceller.ID && !canceller.IsStaffOrAdmin() {
		return apperrors.PermissionDenied("cancel", "Only the requester or staff can cancel a booking")
	}

	previousState := map[string]string{
		model.SnapshotStatus: string(booking.Status),
	}
	booking.Status = model.StatusCancelled

	s.appendAudit(ctx, model.ActionCancel, cancellerID, bookingID,
		fmt.Sprintf("Booking cancelled. Reason: %s", reason), previousState)

	s.cfg.Log.Info("Booking cancelled", "id", bookingID, "canceller_id", cancellerID, "reason", reason)
	return nil
}

func (s *workflowService) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	return s.findBooking(ctx, id)
}

func (s *workflowService) GetBookingsByResource(ctx context.Context, resourceID string, startDate, endDate *time.Time, status model.BookingStatus) ([]*model.Booking, error) {
	if resourceID == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	bookings, err := s.repo.FindByResource(ctx, resourceID, startDate, endDate, status)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *workflowService) GetAuditTrail(ctx context.Context, filter auditrepo.TrailFilter) ([]*model.AuditLogEntry, error) {
	entries, err := s.auditRepo.Trail(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve audit trail", err)
	}
	return entries, nil
}

// --- Helpers ---

func (s *workflowService) applyDefaults(b *model.Booking) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	// A new request always enters the machine at pending.
	b.Status = model.StatusPending
	b.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
}

func (s *workflowService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// conflictsFor is the conflict scan against an explicit interval, so a
// proposed reschedule can be tested without mutating the booking first.
func (s *workflowService) conflictsFor(ctx context.Context, bookingID, resourceID string, start, end time.Time) ([]*model.Booking, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to scan bookings for conflicts", err)
	}

	var conflicts []*model.Booking
	for _, existing := range all {
		if existing.ID == bookingID {
			continue
		}
		if existing.Status != model.StatusApproved || existing.ResourceID != resourceID {
			continue
		}
		if model.IntervalsOverlap(start, end, existing.StartTime, existing.EndTime) {
			conflicts = append(conflicts, existing)
		}
	}
	return conflicts, nil
}

func (s *workflowService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *workflowService) appendAudit(ctx context.Context, action model.ActionType, actorID, bookingID, details string, previousState map[string]string) {
	entry := &model.AuditLogEntry{
		Timestamp:     time.Now().UTC(),
		Action:        action,
		ActorID:       actorID,
		BookingID:     bookingID,
		Details:       details,
		PreviousState: previousState,
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.cfg.Log.Error("Failed to append audit entry",
			"action", action,
			"booking_id", bookingID,
			"error", err,
		)
	}
}

func joinIDs(bookings []*model.Booking) string {
	ids := make([]string, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}
	return strings.Join(ids, ", ")
}

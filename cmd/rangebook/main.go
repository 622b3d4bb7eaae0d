package main

import (
	"context"
	"time"

	auditrepo "rangebook/internal/audit/repository"
	"rangebook/internal/bookings/repository"
	"rangebook/internal/bookings/service"
	"rangebook/internal/bookings/validator"
	"rangebook/internal/registry"
	"rangebook/pkg/config"
	"rangebook/pkg/model"
)

const ServiceName = "rangebook"

// Demo walkthrough of the booking workflow: request, conflict detection,
// blocked approval, override, bump and cancel, ending with the audit trail.
func main() {
	cfg := config.Load(ServiceName)
	ctx := context.Background()

	users := registry.NewUserRegistry()
	resources := registry.NewResourceRegistry()
	svc := initServices(cfg, users, resources)

	bay1 := &model.Resource{ID: "bay-1", Name: "Bay 1", ResourceType: "bay", Capacity: 1}
	bay2 := &model.Resource{ID: "bay-2", Name: "Bay 2", ResourceType: "bay", Capacity: 1}
	room := &model.Resource{ID: "facility-1", Name: "Meeting Room", ResourceType: "facility", Capacity: 12}
	for _, r := range []*model.Resource{bay1, bay2, room} {
		if err := resources.Register(ctx, r); err != nil {
			cfg.Log.Fatal("Failed to register resource", "error", err)
		}
		cfg.Log.Info("Resource registered", "id", r.ID, "name", r.Name, "type", r.ResourceType)
	}

	staff := &model.User{ID: "staff-1", Name: "Sam Staff", Role: model.RoleStaff}
	alice := &model.User{ID: "user-1", Name: "Alice", Role: model.RoleUser}
	bob := &model.User{ID: "user-2", Name: "Bob", Role: model.RoleUser}
	for _, u := range []*model.User{staff, alice, bob} {
		if err := users.Register(ctx, u); err != nil {
			cfg.Log.Fatal("Failed to register user", "error", err)
		}
	}

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)

	b1, err := svc.CreateBookingRequest(ctx, &model.Booking{
		ResourceID:  bay1.ID,
		RequesterID: alice.ID,
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		Purpose:     "qualification practice",
		Priority:    1,
	})
	if err != nil {
		cfg.Log.Fatal("Failed to create booking", "error", err)
	}

	if ok, err := svc.ApproveBooking(ctx, b1.ID, staff.ID, false); err != nil {
		cfg.Log.Fatal("Approval failed", "error", err)
	} else {
		cfg.Log.Info("Approval outcome", "booking_id", b1.ID, "approved", ok)
	}

	// Overlapping request on the same bay.
	b2, err := svc.CreateBookingRequest(ctx, &model.Booking{
		ResourceID:  bay1.ID,
		RequesterID: bob.ID,
		StartTime:   start.Add(30 * time.Minute),
		EndTime:     start.Add(150 * time.Minute),
		Purpose:     "team training",
		Priority:    5,
	})
	if err != nil {
		cfg.Log.Fatal("Failed to create booking", "error", err)
	}

	conflicts, err := svc.CheckConflicts(ctx, b2)
	if err != nil {
		cfg.Log.Fatal("Conflict check failed", "error", err)
	}
	for _, c := range conflicts {
		cfg.Log.Info("Conflict detected", "booking_id", b2.ID, "conflicts_with", c.ID)
	}

	if ok, err := svc.ApproveBooking(ctx, b2.ID, staff.ID, false); err != nil {
		cfg.Log.Fatal("Approval failed", "error", err)
	} else {
		cfg.Log.Info("Approval outcome without override", "booking_id", b2.ID, "approved", ok)
	}

	if ok, err := svc.ApproveBooking(ctx, b2.ID, staff.ID, true); err != nil {
		cfg.Log.Fatal("Override approval failed", "error", err)
	} else {
		cfg.Log.Info("Approval outcome with override", "booking_id", b2.ID, "approved", ok)
	}

	if err := svc.BumpBooking(ctx, b1.ID, staff.ID, b2.ID, "higher priority team training"); err != nil {
		cfg.Log.Fatal("Bump failed", "error", err)
	}

	if err := svc.CancelBooking(ctx, b2.ID, bob.ID, "weather"); err != nil {
		cfg.Log.Fatal("Cancel failed", "error", err)
	}

	schedule, err := svc.GetBookingsByResource(ctx, bay1.ID, nil, nil, "")
	if err != nil {
		cfg.Log.Fatal("Schedule query failed", "error", err)
	}
	for _, b := range schedule {
		cfg.Log.Info("Schedule entry",
			"booking_id", b.ID,
			"start_time", b.StartTime,
			"end_time", b.EndTime,
			"status", b.Status,
			"priority", b.Priority,
		)
	}

	trail, err := svc.GetAuditTrail(ctx, auditrepo.TrailFilter{})
	if err != nil {
		cfg.Log.Fatal("Audit trail query failed", "error", err)
	}
	for _, e := range trail {
		cfg.Log.Info("Audit entry",
			"timestamp", e.Timestamp,
			"action", e.Action,
			"actor_id", e.ActorID,
			"booking_id", e.BookingID,
			"details", e.Details,
			"previous_state", e.PreviousState,
		)
	}
}

func initServices(cfg *config.Config, users registry.UserRegistry, resources registry.ResourceRegistry) service.WorkflowService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMemoryBookingRepository()
	auditRepo := auditrepo.NewMemoryAuditRepository()

	svc := service.NewWorkflowService(
		bookingRepo,
		auditRepo,
		users,
		resources,
		bookingValidator,
		cfg,
	)

	cfg.Log.Info("Workflow service initialized")
	return svc
}

package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/resource-engine/internal/domain"
)

type AvailabilityService interface {
	// FindConflicts returns the reservations and open maintenance windows
	// overlapping [start, end) for the tool. Unknown tools yield an empty
	// set; existence checks belong to the lifecycle operations.
	FindConflicts(ctx context.Context, toolID int32, start, end time.Time) ([]domain.Conflict, error)
	CheckAvailability(ctx context.Context, toolID int32, start, end time.Time) (bool, []domain.Conflict, error)
	BuildCalendar(ctx context.Context, toolID int32, rangeStart, rangeEnd time.Time) ([]domain.DayStatus, error)
}

// CreateRequest describes a reservation to create. Hold creates the
// reservation as PENDING awaiting staff confirmation; otherwise it is
// CONFIRMED immediately.
type CreateRequest struct {
	ToolID   int32
	MemberID int32
	Start    time.Time
	End      time.Time
	Hold     bool
	Notes    string
}

type ReservationService interface {
	Create(ctx context.Context, req CreateRequest) (*domain.Reservation, error)
	Confirm(ctx context.Context, reservationID int32) (*domain.Reservation, error)
	CheckOut(ctx context.Context, reservationID int32) (*domain.Reservation, error)
	Cancel(ctx context.Context, reservationID int32) error
	Get(ctx context.Context, reservationID int32) (*domain.Reservation, error)
	ListByTool(ctx context.Context, toolID int32) ([]domain.Reservation, error)
}

// DamageReport is the caller-supplied damage assessment accompanying a
// return.
type DamageReport struct {
	Damaged        bool
	RequiresRepair bool
	Description    string
}

type ReturnRequest struct {
	ReservationID    int32
	Condition        domain.ToolCondition
	ActualReturnDate *time.Time
	Damage           *DamageReport
	StaffNotes       string
}

type ReturnService interface {
	ProcessReturn(ctx context.Context, req ReturnRequest) (*domain.ReturnResult, error)
}

type MaintenanceService interface {
	// Complete consumes the external maintenance-completion event.
	Complete(ctx context.Context, windowID int32, completedAt time.Time) (*domain.MaintenanceWindow, error)
	ListOpen(ctx context.Context, toolID int32) ([]domain.MaintenanceWindow, error)
}

// NotificationSink receives fire-and-forget notices. Delivery failures
// are logged and never fail the triggering operation.
type NotificationSink interface {
	NotifyLateReturn(ctx context.Context, res *domain.Reservation, tool *domain.Tool, fees decimal.Decimal) error
	NotifyMaintenanceScheduled(ctx context.Context, w *domain.MaintenanceWindow, tool *domain.Tool) error
}

package repository

import (
	"context"
	"time"

	"github.com/warp/resource-engine/internal/domain"
)

type ToolRepository interface {
	Create(ctx context.Context, tool *domain.Tool) error
	GetByID(ctx context.Context, id int32) (*domain.Tool, error)
	// GetForUpdate fetches the tool and, inside a transaction, locks its
	// row for the remainder of the transaction. Serializes concurrent
	// check-then-commit sequences per tool.
	GetForUpdate(ctx context.Context, id int32) (*domain.Tool, error)
	Update(ctx context.Context, tool *domain.Tool) error
	List(ctx context.Context) ([]domain.Tool, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) error
	GetByID(ctx context.Context, id int32) (*domain.Reservation, error)
	Update(ctx context.Context, res *domain.Reservation) error
	// FindOverlapping returns reservations in non-terminal statuses whose
	// [start_date, end_date) overlaps [start, end).
	FindOverlapping(ctx context.Context, toolID int32, start, end time.Time) ([]domain.Reservation, error)
	ListByTool(ctx context.Context, toolID int32) ([]domain.Reservation, error)
	CountActive(ctx context.Context) (int32, error)
	// CountOverdue counts CHECKED_OUT reservations whose end date is
	// before asOf.
	CountOverdue(ctx context.Context, asOf time.Time) (int32, error)
	// UsageDays sums, per day, the portion of RETURNED reservations'
	// intervals that falls inside [since, until).
	UsageDays(ctx context.Context, toolID int32, since, until time.Time) (int32, error)
	// DeleteCancelledBefore hard-deletes CANCELLED reservations not
	// updated since cutoff and returns the number removed.
	DeleteCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type MaintenanceRepository interface {
	Create(ctx context.Context, w *domain.MaintenanceWindow) error
	GetByID(ctx context.Context, id int32) (*domain.MaintenanceWindow, error)
	Update(ctx context.Context, w *domain.MaintenanceWindow) error
	// FindOverlapping returns open windows whose single-day interval
	// overlaps [start, end).
	FindOverlapping(ctx context.Context, toolID int32, start, end time.Time) ([]domain.MaintenanceWindow, error)
	ListOpenByTool(ctx context.Context, toolID int32) ([]domain.MaintenanceWindow, error)
	HasCompletedRepairSince(ctx context.Context, toolID int32, since time.Time) (bool, error)
	CountOpen(ctx context.Context) (int32, error)
	CountCompletedSince(ctx context.Context, since time.Time) (int32, error)
}

// Store bundles the repositories with a transaction boundary. InTx runs
// fn against a store whose writes either all commit or all roll back;
// implementations must make a GetForUpdate inside fn block concurrent
// InTx bodies touching the same tool.
type Store interface {
	Tools() ToolRepository
	Reservations() ReservationRepository
	Maintenance() MaintenanceRepository
	InTx(ctx context.Context, fn func(Store) error) error
}

package service

import (
	"context"
	"time"

	"github.com/warp/resource-engine/internal/domain"
	"github.com/warp/resource-engine/internal/repository"
)

type availabilityService struct {
	store repository.Store
}

func NewAvailabilityService(store repository.Store) AvailabilityService {
	return &availabilityService{store: store}
}

func (s *availabilityService) FindConflicts(ctx context.Context, toolID int32, start, end time.Time) ([]domain.Conflict, error) {
	return findConflicts(ctx, s.store, toolID, domain.DateOf(start), domain.DateOf(end))
}

// findConflicts is shared with the lifecycle manager, which needs the
// same query inside its transaction.
func findConflicts(ctx context.Context, store repository.Store, toolID int32, start, end time.Time) ([]domain.Conflict, error) {
	reservations, err := store.Reservations().FindOverlapping(ctx, toolID, start, end)
	if err != nil {
		return nil, err
	}
	windows, err := store.Maintenance().FindOverlapping(ctx, toolID, start, end)
	if err != nil {
		return nil, err
	}

	conflicts := make([]domain.Conflict, 0, len(reservations)+len(windows))
	for _, res := range reservations {
		conflicts = append(conflicts, domain.Conflict{
			Kind:   domain.ConflictKindReservation,
			ID:     res.ID,
			Start:  res.StartDate,
			End:    res.EndDate,
			Status: string(res.Status),
		})
	}
	for _, w := range windows {
		ws, we := w.Interval()
		conflicts = append(conflicts, domain.Conflict{
			Kind:   domain.ConflictKindMaintenance,
			ID:     w.ID,
			Start:  ws,
			End:    we,
			Status: string(w.Status),
		})
	}
	return conflicts, nil
}

func (s *availabilityService) CheckAvailability(ctx context.Context, toolID int32, start, end time.Time) (bool, []domain.Conflict, error) {
	start, end = domain.DateOf(start), domain.DateOf(end)
	if !start.Before(end) {
		return false, nil, domain.ErrInvalidInterval
	}
	tool, err := s.store.Tools().GetByID(ctx, toolID)
	if err != nil {
		return false, nil, err
	}
	conflicts, err := findConflicts(ctx, s.store, toolID, start, end)
	if err != nil {
		return false, nil, err
	}
	return tool.IsAvailable && len(conflicts) == 0, conflicts, nil
}

func (s *availabilityService) BuildCalendar(ctx context.Context, toolID int32, rangeStart, rangeEnd time.Time) ([]domain.DayStatus, error) {
	rangeStart, rangeEnd = domain.DateOf(rangeStart), domain.DateOf(rangeEnd)
	if !rangeStart.Before(rangeEnd) {
		return nil, domain.ErrInvalidInterval
	}
	tool, err := s.store.Tools().GetByID(ctx, toolID)
	if err != nil {
		return nil, err
	}

	reservations, err := s.store.Reservations().FindOverlapping(ctx, toolID, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}
	windows, err := s.store.Maintenance().FindOverlapping(ctx, toolID, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}

	var calendar []domain.DayStatus
	for day := rangeStart; day.Before(rangeEnd); day = day.AddDate(0, 0, 1) {
		calendar = append(calendar, dayStatus(tool, reservations, windows, day))
	}
	return calendar, nil
}

// dayStatus applies the reason precedence: a globally disabled tool
// reports TOOL_UNAVAILABLE even when the day is also booked.
func dayStatus(tool *domain.Tool, reservations []domain.Reservation, windows []domain.MaintenanceWindow, day time.Time) domain.DayStatus {
	next := day.AddDate(0, 0, 1)
	status := domain.DayStatus{Date: day, Available: true, Reason: domain.ReasonNone}

	if !tool.IsAvailable {
		status.Available = false
		status.Reason = domain.ReasonToolUnavailable
		return status
	}
	for i := range reservations {
		if reservations[i].Overlaps(day, next) {
			status.Available = false
			status.Reason = domain.ReasonReserved
			return status
		}
	}
	for i := range windows {
		if windows[i].Overlaps(day, next) {
			status.Available = false
			status.Reason = domain.ReasonMaintenance
			return status
		}
	}
	return status
}

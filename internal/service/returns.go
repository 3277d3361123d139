package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/resource-engine/internal/domain"
	"github.com/warp/resource-engine/internal/logger"
	"github.com/warp/resource-engine/internal/repository"
)

type returnService struct {
	store  repository.Store
	policy Policy
	sink   NotificationSink
}

func NewReturnService(store repository.Store, policy Policy, sink NotificationSink) ReturnService {
	return &returnService{store: store, policy: policy, sink: sink}
}

// ProcessReturn closes out a checked-out reservation: late fees, the
// returned condition, and any triggered maintenance commit as one
// atomic unit. Notifications go out after the commit, best effort.
func (s *returnService) ProcessReturn(ctx context.Context, req ReturnRequest) (*domain.ReturnResult, error) {
	if !req.Condition.Valid() {
		return nil, fmt.Errorf("unknown return condition %q", req.Condition)
	}

	effectiveReturn := time.Now()
	if req.ActualReturnDate != nil {
		effectiveReturn = *req.ActualReturnDate
	}

	result := &domain.ReturnResult{LateFees: decimal.Zero}
	var tool *domain.Tool

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		res, err := tx.Reservations().GetByID(ctx, req.ReservationID)
		if err != nil {
			return err
		}
		if res.Status != domain.ReservationStatusCheckedOut {
			return fmt.Errorf("reservation %d is %s, not checked out: %w",
				res.ID, res.Status, domain.ErrInvalidState)
		}
		tool, err = tx.Tools().GetForUpdate(ctx, res.ToolID)
		if err != nil {
			return err
		}

		if effectiveReturn.After(res.EndDate) {
			daysLate := int64(math.Ceil(effectiveReturn.Sub(res.EndDate).Hours() / 24))
			result.IsLate = true
			result.LateFees = decimal.NewFromInt(daysLate).
				Mul(tool.DailyRate).
				Mul(s.policy.LateFeeFactor)
			// Extend the interval so the index reflects true occupancy.
			res.EndDate = domain.DateOf(effectiveReturn)
		}

		condition := req.Condition
		res.Status = domain.ReservationStatusReturned
		res.ReturnCondition = &condition
		res.LateFees = result.LateFees
		if req.StaffNotes != "" {
			res.Notes = appendNote(res.Notes, req.StaffNotes)
		}
		if err := tx.Reservations().Update(ctx, res); err != nil {
			return err
		}
		result.Reservation = res

		needsMaintenance := condition.RequiresMaintenance() ||
			(req.Damage != nil && req.Damage.Damaged)

		tool.Condition = condition
		tool.IsAvailable = !needsMaintenance
		if err := tx.Tools().Update(ctx, tool); err != nil {
			return err
		}

		if needsMaintenance {
			window := &domain.MaintenanceWindow{
				ToolID:        tool.ID,
				Type:          domain.MaintenanceTypeInspection,
				Status:        domain.MaintenanceStatusScheduled,
				ScheduledDate: domain.DateOf(time.Now()).AddDate(0, 0, s.policy.MaintenanceLeadDays),
				Description:   maintenanceDescription(res, req),
			}
			if req.Damage != nil && req.Damage.RequiresRepair {
				window.Type = domain.MaintenanceTypeRepair
			}
			if err := tx.Maintenance().Create(ctx, window); err != nil {
				return err
			}
			result.MaintenanceCreated = true
			result.MaintenanceWindow = window
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, result, tool)
	return result, nil
}

func (s *returnService) notify(ctx context.Context, result *domain.ReturnResult, tool *domain.Tool) {
	if result.IsLate {
		if err := s.sink.NotifyLateReturn(ctx, result.Reservation, tool, result.LateFees); err != nil {
			logger.Warn("late return notification failed",
				"reservation_id", result.Reservation.ID, "error", err)
		}
	}
	if result.MaintenanceCreated {
		if err := s.sink.NotifyMaintenanceScheduled(ctx, result.MaintenanceWindow, tool); err != nil {
			logger.Warn("maintenance notification failed",
				"window_id", result.MaintenanceWindow.ID, "error", err)
		}
	}
}

func maintenanceDescription(res *domain.Reservation, req ReturnRequest) string {
	desc := fmt.Sprintf("Triggered by return of reservation %d (condition %s)", res.ID, req.Condition)
	if req.Damage != nil && req.Damage.Description != "" {
		desc += ": " + req.Damage.Description
	}
	return desc
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/resource-engine/internal/domain"
	"github.com/warp/resource-engine/internal/repository"
)

// transitions pins down the reservation state machine. Anything not in
// the table is ErrInvalidState; the terminal states have no entries.
var transitions = map[domain.ReservationStatus][]domain.ReservationStatus{
	domain.ReservationStatusPending:    {domain.ReservationStatusConfirmed, domain.ReservationStatusCancelled},
	domain.ReservationStatusConfirmed:  {domain.ReservationStatusCheckedOut, domain.ReservationStatusCancelled},
	domain.ReservationStatusCheckedOut: {domain.ReservationStatusReturned},
}

func canTransition(from, to domain.ReservationStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type reservationService struct {
	store  repository.Store
	policy Policy
}

func NewReservationService(store repository.Store, policy Policy) ReservationService {
	return &reservationService{store: store, policy: policy}
}

// Create commits the conflict check and the insert as one atomic unit:
// the tool row is locked for the duration of the transaction, so two
// concurrent creates for overlapping intervals on the same tool
// serialize and the loser sees the winner's reservation.
func (s *reservationService) Create(ctx context.Context, req CreateRequest) (*domain.Reservation, error) {
	start, end := domain.DateOf(req.Start), domain.DateOf(req.End)
	if !start.Before(end) {
		return nil, domain.ErrInvalidInterval
	}
	if start.Before(domain.DateOf(time.Now())) {
		return nil, fmt.Errorf("start date is in the past: %w", domain.ErrInvalidInterval)
	}

	status := domain.ReservationStatusConfirmed
	if req.Hold {
		status = domain.ReservationStatusPending
	}

	res := &domain.Reservation{
		ToolID:    req.ToolID,
		MemberID:  req.MemberID,
		StartDate: start,
		EndDate:   end,
		Status:    status,
		LateFees:  decimal.Zero,
		Notes:     req.Notes,
	}

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		tool, err := tx.Tools().GetForUpdate(ctx, req.ToolID)
		if err != nil {
			return err
		}
		if !tool.IsAvailable {
			return domain.ErrUnavailable
		}
		conflicts, err := findConflicts(ctx, tx, req.ToolID, start, end)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &domain.ConflictError{Conflicts: conflicts}
		}
		return tx.Reservations().Create(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Confirm is the administrative PENDING -> CONFIRMED transition. No
// conflict re-check: the pending reservation already holds its slot.
func (s *reservationService) Confirm(ctx context.Context, reservationID int32) (*domain.Reservation, error) {
	return s.transition(ctx, reservationID, domain.ReservationStatusConfirmed)
}

func (s *reservationService) CheckOut(ctx context.Context, reservationID int32) (*domain.Reservation, error) {
	return s.transition(ctx, reservationID, domain.ReservationStatusCheckedOut)
}

// Cancel frees the interval immediately for new conflict checks.
// Checked-out reservations cannot be cancelled, only returned.
func (s *reservationService) Cancel(ctx context.Context, reservationID int32) error {
	_, err := s.transition(ctx, reservationID, domain.ReservationStatusCancelled)
	return err
}

func (s *reservationService) Get(ctx context.Context, reservationID int32) (*domain.Reservation, error) {
	return s.store.Reservations().GetByID(ctx, reservationID)
}

func (s *reservationService) ListByTool(ctx context.Context, toolID int32) ([]domain.Reservation, error) {
	return s.store.Reservations().ListByTool(ctx, toolID)
}

func (s *reservationService) transition(ctx context.Context, reservationID int32, to domain.ReservationStatus) (*domain.Reservation, error) {
	var res *domain.Reservation
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		res, err = tx.Reservations().GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if !canTransition(res.Status, to) {
			return fmt.Errorf("cannot move reservation %d from %s to %s: %w",
				reservationID, res.Status, to, domain.ErrInvalidState)
		}
		res.Status = to
		return tx.Reservations().Update(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationStatusPending    ReservationStatus = "PENDING"
	ReservationStatusConfirmed  ReservationStatus = "CONFIRMED"
	ReservationStatusCheckedOut ReservationStatus = "CHECKED_OUT"
	ReservationStatusReturned   ReservationStatus = "RETURNED"
	ReservationStatusCancelled  ReservationStatus = "CANCELLED"
)

// ActiveReservationStatuses are the statuses that hold a tool's interval
// and therefore participate in conflict checks.
var ActiveReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusConfirmed,
	ReservationStatusCheckedOut,
}

// Terminal reports whether no further transition is allowed from s.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationStatusReturned || s == ReservationStatusCancelled
}

// Active reports whether s holds its interval against new bookings.
func (s ReservationStatus) Active() bool {
	return !s.Terminal()
}

// Reservation is a member's claim on a tool for the half-open date
// interval [StartDate, EndDate).
type Reservation struct {
	ID              int32             `json:"id"`
	ToolID          int32             `json:"tool_id"`
	MemberID        int32             `json:"member_id"`
	StartDate       time.Time         `json:"start_date"`
	EndDate         time.Time         `json:"end_date"`
	Status          ReservationStatus `json:"status"`
	ReturnCondition *ToolCondition    `json:"return_condition,omitempty"`
	LateFees        decimal.Decimal   `json:"late_fees"`
	Notes           string            `json:"notes"`
	CreatedOn       time.Time         `json:"created_on"`
	UpdatedOn       time.Time         `json:"updated_on"`
}

// Overlaps reports whether the reservation's interval overlaps
// [start, end) under half-open semantics.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return IntervalsOverlap(r.StartDate, r.EndDate, start, end)
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ConflictKind string

const (
	ConflictKindReservation ConflictKind = "RESERVATION"
	ConflictKindMaintenance ConflictKind = "MAINTENANCE"
)

// Conflict describes an existing reservation or maintenance window that
// overlaps a candidate interval, with enough detail for the caller to
// explain the rejection.
type Conflict struct {
	Kind   ConflictKind `json:"kind"`
	ID     int32        `json:"id"`
	Start  time.Time    `json:"start"`
	End    time.Time    `json:"end"`
	Status string       `json:"status"`
}

type UnavailableReason string

const (
	ReasonNone            UnavailableReason = "NONE"
	ReasonToolUnavailable UnavailableReason = "TOOL_UNAVAILABLE"
	ReasonReserved        UnavailableReason = "RESERVED"
	ReasonMaintenance     UnavailableReason = "MAINTENANCE"
)

// DayStatus is one entry of a tool's availability calendar.
type DayStatus struct {
	Date      time.Time         `json:"date"`
	Available bool              `json:"available"`
	Reason    UnavailableReason `json:"reason"`
}

// ReturnResult reports the outcome of processing a return.
type ReturnResult struct {
	Reservation        *Reservation       `json:"reservation"`
	LateFees           decimal.Decimal    `json:"late_fees"`
	IsLate             bool               `json:"is_late"`
	MaintenanceCreated bool               `json:"maintenance_created"`
	MaintenanceWindow  *MaintenanceWindow `json:"maintenance_window,omitempty"`
}

package domain

import "time"

type MaintenanceType string

const (
	MaintenanceTypeInspection MaintenanceType = "INSPECTION"
	MaintenanceTypeRepair     MaintenanceType = "REPAIR"
	MaintenanceTypeCleaning   MaintenanceType = "CLEANING"
)

// RequiresDowntime reports whether a tool must stay out of circulation
// while a window of this type is open. Cleaning happens between
// checkouts and does not block the tool.
func (t MaintenanceType) RequiresDowntime() bool {
	return t == MaintenanceTypeInspection || t == MaintenanceTypeRepair
}

type MaintenanceStatus string

const (
	MaintenanceStatusScheduled  MaintenanceStatus = "SCHEDULED"
	MaintenanceStatusInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceStatusCompleted  MaintenanceStatus = "COMPLETED"
	MaintenanceStatusCancelled  MaintenanceStatus = "CANCELLED"
)

// Open reports whether the window still occupies its interval.
func (s MaintenanceStatus) Open() bool {
	return s == MaintenanceStatusScheduled || s == MaintenanceStatusInProgress
}

// MaintenanceWindow is a scheduled or in-progress service interval for a
// tool. It occupies the single day [ScheduledDate, ScheduledDate+1d) and
// conflicts with reservations exactly like another reservation would
// while its status is open.
type MaintenanceWindow struct {
	ID            int32             `json:"id"`
	ToolID        int32             `json:"tool_id"`
	Type          MaintenanceType   `json:"maintenance_type"`
	Status        MaintenanceStatus `json:"status"`
	ScheduledDate time.Time         `json:"scheduled_date"`
	CompletedDate *time.Time        `json:"completed_date,omitempty"`
	Description   string            `json:"description"`
	CreatedOn     time.Time         `json:"created_on"`
	UpdatedOn     time.Time         `json:"updated_on"`
}

// Interval returns the half-open interval the window occupies.
func (w *MaintenanceWindow) Interval() (time.Time, time.Time) {
	start := DateOf(w.ScheduledDate)
	return start, start.AddDate(0, 0, 1)
}

// Overlaps reports whether the window's interval overlaps [start, end).
func (w *MaintenanceWindow) Overlaps(start, end time.Time) bool {
	ws, we := w.Interval()
	return IntervalsOverlap(ws, we, start, end)
}

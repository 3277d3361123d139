package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReconciliationReport summarizes one daily reconciliation pass.
type ReconciliationReport struct {
	RunID   uuid.UUID `json:"run_id"`
	RunDate time.Time `json:"run_date"`

	TotalTools     int32   `json:"total_tools"`
	AvailableTools int32   `json:"available_tools"`
	// UtilizationRate is (total - available) / total, 0 when no tools exist.
	UtilizationRate float64 `json:"utilization_rate"`

	ActiveReservations  int32 `json:"active_reservations"`
	OverdueReservations int32 `json:"overdue_reservations"`
	DeletedReservations int64 `json:"deleted_reservations"`
	ConditionChanges    int32 `json:"condition_changes"`
	ToolsSkipped        int32 `json:"tools_skipped"`

	OpenMaintenance          int32 `json:"open_maintenance"`
	MaintenanceCompleted24h  int32 `json:"maintenance_completed_24h"`

	// Errors carries non-fatal step failures; one step failing never
	// aborts the others.
	Errors []string `json:"errors,omitempty"`
}

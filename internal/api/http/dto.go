package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/resource-engine/internal/domain"
	"github.com/warp/resource-engine/internal/logger"
)

const dateLayout = "2006-01-02"

type createReservationRequest struct {
	ToolID    int32  `json:"tool_id"`
	MemberID  int32  `json:"member_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Hold      bool   `json:"hold"`
	Notes     string `json:"notes"`
}

type damageReportRequest struct {
	Damaged        bool   `json:"damaged"`
	RequiresRepair bool   `json:"requires_repair"`
	Description    string `json:"description"`
}

type processReturnRequest struct {
	Condition        string               `json:"condition"`
	ActualReturnDate string               `json:"actual_return_date,omitempty"`
	Damage           *damageReportRequest `json:"damage,omitempty"`
	StaffNotes       string               `json:"staff_notes,omitempty"`
}

type completeMaintenanceRequest struct {
	CompletedAt string `json:"completed_at,omitempty"`
}

type reconcileRequest struct {
	AsOf string `json:"as_of,omitempty"`
}

type availabilityResponse struct {
	Available bool              `json:"available"`
	Conflicts []domain.Conflict `json:"conflicts"`
}

type errorResponse struct {
	Error     string            `json:"error"`
	Conflicts []domain.Conflict `json:"conflicts,omitempty"`
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD date: %w", domain.ErrInvalidInterval)
	}
	return t, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps engine errors onto HTTP statuses. Conflicts carry the
// conflicting set so clients can explain the rejection.
func writeError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:     conflictErr.Error(),
			Conflicts: conflictErr.Conflicts,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInterval):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnavailable), errors.Is(err, domain.ErrInvalidState):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

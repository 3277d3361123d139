// Package http is the thin request-handling layer over the engine. The
// engine itself is transport-free; everything here just decodes JSON,
// calls a service, and maps errors onto statuses.
package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/warp/resource-engine/internal/domain"
	"github.com/warp/resource-engine/internal/jobs"
	"github.com/warp/resource-engine/internal/service"
)

type Handler struct {
	availability service.AvailabilityService
	reservations service.ReservationService
	returns      service.ReturnService
	maintenance  service.MaintenanceService
	runner       *jobs.JobRunner
}

func NewHandler(
	availability service.AvailabilityService,
	reservations service.ReservationService,
	returns service.ReturnService,
	maintenance service.MaintenanceService,
	runner *jobs.JobRunner,
) *Handler {
	return &Handler{
		availability: availability,
		reservations: reservations,
		returns:      returns,
		maintenance:  maintenance,
		runner:       runner,
	}
}

func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/tools/{id}/availability", h.checkAvailability).Methods(http.MethodGet)
	r.HandleFunc("/tools/{id}/calendar", h.buildCalendar).Methods(http.MethodGet)
	r.HandleFunc("/tools/{id}/maintenance", h.listOpenMaintenance).Methods(http.MethodGet)
	r.HandleFunc("/tools/{id}/reservations", h.listReservations).Methods(http.MethodGet)

	r.HandleFunc("/reservations", h.createReservation).Methods(http.MethodPost)
	r.HandleFunc("/reservations/{id}", h.getReservation).Methods(http.MethodGet)
	r.HandleFunc("/reservations/{id}/confirm", h.confirmReservation).Methods(http.MethodPost)
	r.HandleFunc("/reservations/{id}/checkout", h.checkOutReservation).Methods(http.MethodPost)
	r.HandleFunc("/reservations/{id}/cancel", h.cancelReservation).Methods(http.MethodPost)
	r.HandleFunc("/reservations/{id}/return", h.processReturn).Methods(http.MethodPost)

	r.HandleFunc("/maintenance/{id}/complete", h.completeMaintenance).Methods(http.MethodPost)
	r.HandleFunc("/admin/reconciliation", h.runReconciliation).Methods(http.MethodPost)

	return r
}

func pathID(r *http.Request) (int32, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		return 0, domain.ErrNotFound
	}
	return int32(id), nil
}

func intervalQuery(r *http.Request) (time.Time, time.Time, error) {
	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (h *Handler) checkAvailability(w http.ResponseWriter, r *http.Request) {
	toolID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	start, end, err := intervalQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	available, conflicts, err := h.availability.CheckAvailability(r.Context(), toolID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	if conflicts == nil {
		conflicts = []domain.Conflict{}
	}
	writeJSON(w, http.StatusOK, availabilityResponse{Available: available, Conflicts: conflicts})
}

func (h *Handler) buildCalendar(w http.ResponseWriter, r *http.Request) {
	toolID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	start, end, err := intervalQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	calendar, err := h.availability.BuildCalendar(r.Context(), toolID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calendar)
}

func (h *Handler) createReservation(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.reservations.Create(r.Context(), service.CreateRequest{
		ToolID:   req.ToolID,
		MemberID: req.MemberID,
		Start:    start,
		End:      end,
		Hold:     req.Hold,
		Notes:    req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) getReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.reservations.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) confirmReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.reservations.Confirm)
}

func (h *Handler) checkOutReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.reservations.CheckOut)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, int32) (*domain.Reservation, error)) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := fn(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) cancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.reservations.Cancel(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) processReturn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req processReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	returnReq := service.ReturnRequest{
		ReservationID: id,
		Condition:     domain.ToolCondition(req.Condition),
		StaffNotes:    req.StaffNotes,
	}
	if req.ActualReturnDate != "" {
		actual, err := parseDate(req.ActualReturnDate)
		if err != nil {
			writeError(w, err)
			return
		}
		returnReq.ActualReturnDate = &actual
	}
	if req.Damage != nil {
		returnReq.Damage = &service.DamageReport{
			Damaged:        req.Damage.Damaged,
			RequiresRepair: req.Damage.RequiresRepair,
			Description:    req.Damage.Description,
		}
	}

	result, err := h.returns.ProcessReturn(r.Context(), returnReq)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) listReservations(w http.ResponseWriter, r *http.Request) {
	toolID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	reservations, err := h.reservations.ListByTool(r.Context(), toolID)
	if err != nil {
		writeError(w, err)
		return
	}
	if reservations == nil {
		reservations = []domain.Reservation{}
	}
	writeJSON(w, http.StatusOK, reservations)
}

func (h *Handler) listOpenMaintenance(w http.ResponseWriter, r *http.Request) {
	toolID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	windows, err := h.maintenance.ListOpen(r.Context(), toolID)
	if err != nil {
		writeError(w, err)
		return
	}
	if windows == nil {
		windows = []domain.MaintenanceWindow{}
	}
	writeJSON(w, http.StatusOK, windows)
}

func (h *Handler) completeMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	// Body is optional; an empty body completes the window as of now.
	var req completeMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	completedAt := time.Now()
	if req.CompletedAt != "" {
		if completedAt, err = parseDate(req.CompletedAt); err != nil {
			writeError(w, err)
			return
		}
	}

	window, err := h.maintenance.Complete(r.Context(), id, completedAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, window)
}

func (h *Handler) runReconciliation(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	asOf := time.Now()
	if req.AsOf != "" {
		var err error
		if asOf, err = parseDate(req.AsOf); err != nil {
			writeError(w, err)
			return
		}
	}

	report := h.runner.ReconcileAsOf(r.Context(), asOf)
	writeJSON(w, http.StatusOK, report)
}

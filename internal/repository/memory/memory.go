// Package memory provides an in-memory Store used by tests and by the
// demo database driver. A single mutex serializes transactions, which
// gives InTx the mutual exclusion the engine's check-then-commit
// sequences require; rollback works by applying fn to a snapshot and
// only installing it on success.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/warp/resource-engine/internal/domain"
	"github.com/warp/resource-engine/internal/repository"
)

type state struct {
	tools        map[int32]domain.Tool
	reservations map[int32]domain.Reservation
	windows      map[int32]domain.MaintenanceWindow

	nextToolID        int32
	nextReservationID int32
	nextWindowID      int32
}

func newState() *state {
	return &state{
		tools:             make(map[int32]domain.Tool),
		reservations:      make(map[int32]domain.Reservation),
		windows:           make(map[int32]domain.MaintenanceWindow),
		nextToolID:        1,
		nextReservationID: 1,
		nextWindowID:      1,
	}
}

func (st *state) clone() *state {
	c := &state{
		tools:             make(map[int32]domain.Tool, len(st.tools)),
		reservations:      make(map[int32]domain.Reservation, len(st.reservations)),
		windows:           make(map[int32]domain.MaintenanceWindow, len(st.windows)),
		nextToolID:        st.nextToolID,
		nextReservationID: st.nextReservationID,
		nextWindowID:      st.nextWindowID,
	}
	for id, t := range st.tools {
		c.tools[id] = t
	}
	for id, r := range st.reservations {
		c.reservations[id] = r
	}
	for id, w := range st.windows {
		c.windows[id] = w
	}
	return c
}

type Store struct {
	mu   sync.Mutex
	st   *state
	inTx bool
}

func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) Tools() repository.ToolRepository               { return &toolRepo{s} }
func (s *Store) Reservations() repository.ReservationRepository { return &reservationRepo{s} }
func (s *Store) Maintenance() repository.MaintenanceRepository  { return &maintenanceRepo{s} }

// InTx applies fn to a snapshot of the store under the store lock and
// installs the snapshot only if fn succeeds. Nested calls reuse the
// surrounding transaction.
func (s *Store) InTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(&Store{st: snapshot, inTx: true}); err != nil {
		return err
	}
	s.st = snapshot
	return nil
}

func (s *Store) lock() {
	if !s.inTx {
		s.mu.Lock()
	}
}

func (s *Store) unlock() {
	if !s.inTx {
		s.mu.Unlock()
	}
}

// --- tools ---

type toolRepo struct {
	s *Store
}

func (r *toolRepo) Create(ctx context.Context, tool *domain.Tool) error {
	r.s.lock()
	defer r.s.unlock()
	tool.ID = r.s.st.nextToolID
	r.s.st.nextToolID++
	now := time.Now()
	tool.CreatedOn, tool.UpdatedOn = now, now
	r.s.st.tools[tool.ID] = *tool
	return nil
}

func (r *toolRepo) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	r.s.lock()
	defer r.s.unlock()
	tool, ok := r.s.st.tools[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &tool, nil
}

// GetForUpdate is identical to GetByID here; exclusion comes from the
// store lock held for the duration of InTx.
func (r *toolRepo) GetForUpdate(ctx context.Context, id int32) (*domain.Tool, error) {
	return r.GetByID(ctx, id)
}

func (r *toolRepo) Update(ctx context.Context, tool *domain.Tool) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.st.tools[tool.ID]; !ok {
		return domain.ErrNotFound
	}
	tool.UpdatedOn = time.Now()
	r.s.st.tools[tool.ID] = *tool
	return nil
}

func (r *toolRepo) List(ctx context.Context) ([]domain.Tool, error) {
	r.s.lock()
	defer r.s.unlock()
	tools := make([]domain.Tool, 0, len(r.s.st.tools))
	for id := int32(1); id < r.s.st.nextToolID; id++ {
		if tool, ok := r.s.st.tools[id]; ok {
			tools = append(tools, tool)
		}
	}
	return tools, nil
}

// --- reservations ---

type reservationRepo struct {
	s *Store
}

func (r *reservationRepo) Create(ctx context.Context, res *domain.Reservation) error {
	r.s.lock()
	defer r.s.unlock()
	res.ID = r.s.st.nextReservationID
	r.s.st.nextReservationID++
	now := time.Now()
	res.CreatedOn, res.UpdatedOn = now, now
	r.s.st.reservations[res.ID] = *res
	return nil
}

func (r *reservationRepo) GetByID(ctx context.Context, id int32) (*domain.Reservation, error) {
	r.s.lock()
	defer r.s.unlock()
	res, ok := r.s.st.reservations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &res, nil
}

func (r *reservationRepo) Update(ctx context.Context, res *domain.Reservation) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.st.reservations[res.ID]; !ok {
		return domain.ErrNotFound
	}
	res.UpdatedOn = time.Now()
	r.s.st.reservations[res.ID] = *res
	return nil
}

func (r *reservationRepo) FindOverlapping(ctx context.Context, toolID int32, start, end time.Time) ([]domain.Reservation, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []domain.Reservation
	for id := int32(1); id < r.s.st.nextReservationID; id++ {
		res, ok := r.s.st.reservations[id]
		if !ok || res.ToolID != toolID || !res.Status.Active() {
			continue
		}
		if res.Overlaps(start, end) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *reservationRepo) ListByTool(ctx context.Context, toolID int32) ([]domain.Reservation, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []domain.Reservation
	for id := int32(1); id < r.s.st.nextReservationID; id++ {
		if res, ok := r.s.st.reservations[id]; ok && res.ToolID == toolID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *reservationRepo) CountActive(ctx context.Context) (int32, error) {
	r.s.lock()
	defer r.s.unlock()
	var count int32
	for _, res := range r.s.st.reservations {
		if res.Status.Active() {
			count++
		}
	}
	return count, nil
}

func (r *reservationRepo) CountOverdue(ctx context.Context, asOf time.Time) (int32, error) {
	r.s.lock()
	defer r.s.unlock()
	var count int32
	for _, res := range r.s.st.reservations {
		if res.Status == domain.ReservationStatusCheckedOut && res.EndDate.Before(asOf) {
			count++
		}
	}
	return count, nil
}

func (r *reservationRepo) UsageDays(ctx context.Context, toolID int32, since, until time.Time) (int32, error) {
	r.s.lock()
	defer r.s.unlock()
	var days int32
	for _, res := range r.s.st.reservations {
		if res.ToolID != toolID || res.Status != domain.ReservationStatusReturned {
			continue
		}
		start, end := res.StartDate, res.EndDate
		if start.Before(since) {
			start = since
		}
		if end.After(until) {
			end = until
		}
		if start.Before(end) {
			days += int32(end.Sub(start).Hours() / 24)
		}
	}
	return days, nil
}

func (r *reservationRepo) DeleteCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var deleted int64
	for id, res := range r.s.st.reservations {
		if res.Status == domain.ReservationStatusCancelled && res.UpdatedOn.Before(cutoff) {
			delete(r.s.st.reservations, id)
			deleted++
		}
	}
	return deleted, nil
}

// --- maintenance windows ---

type maintenanceRepo struct {
	s *Store
}

func (r *maintenanceRepo) Create(ctx context.Context, w *domain.MaintenanceWindow) error {
	r.s.lock()
	defer r.s.unlock()
	w.ID = r.s.st.nextWindowID
	r.s.st.nextWindowID++
	now := time.Now()
	w.CreatedOn, w.UpdatedOn = now, now
	r.s.st.windows[w.ID] = *w
	return nil
}

func (r *maintenanceRepo) GetByID(ctx context.Context, id int32) (*domain.MaintenanceWindow, error) {
	r.s.lock()
	defer r.s.unlock()
	w, ok := r.s.st.windows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &w, nil
}

func (r *maintenanceRepo) Update(ctx context.Context, w *domain.MaintenanceWindow) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.st.windows[w.ID]; !ok {
		return domain.ErrNotFound
	}
	w.UpdatedOn = time.Now()
	r.s.st.windows[w.ID] = *w
	return nil
}

func (r *maintenanceRepo) FindOverlapping(ctx context.Context, toolID int32, start, end time.Time) ([]domain.MaintenanceWindow, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []domain.MaintenanceWindow
	for id := int32(1); id < r.s.st.nextWindowID; id++ {
		w, ok := r.s.st.windows[id]
		if !ok || w.ToolID != toolID || !w.Status.Open() {
			continue
		}
		if w.Overlaps(start, end) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *maintenanceRepo) ListOpenByTool(ctx context.Context, toolID int32) ([]domain.MaintenanceWindow, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []domain.MaintenanceWindow
	for id := int32(1); id < r.s.st.nextWindowID; id++ {
		if w, ok := r.s.st.windows[id]; ok && w.ToolID == toolID && w.Status.Open() {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *maintenanceRepo) HasCompletedRepairSince(ctx context.Context, toolID int32, since time.Time) (bool, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, w := range r.s.st.windows {
		if w.ToolID == toolID && w.Type == domain.MaintenanceTypeRepair &&
			w.Status == domain.MaintenanceStatusCompleted &&
			w.CompletedDate != nil && !w.CompletedDate.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r *maintenanceRepo) CountOpen(ctx context.Context) (int32, error) {
	r.s.lock()
	defer r.s.unlock()
	var count int32
	for _, w := range r.s.st.windows {
		if w.Status.Open() {
			count++
		}
	}
	return count, nil
}

func (r *maintenanceRepo) CountCompletedSince(ctx context.Context, since time.Time) (int32, error) {
	r.s.lock()
	defer r.s.unlock()
	var count int32
	for _, w := range r.s.st.windows {
		if w.Status == domain.MaintenanceStatusCompleted &&
			w.CompletedDate != nil && !w.CompletedDate.Before(since) {
			count++
		}
	}
	return count, nil
}

package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/warp/resource-engine/internal/domain"
	"github.com/warp/resource-engine/internal/repository"
)

type maintenanceRepository struct {
	db DBTX
}

func NewMaintenanceRepository(db DBTX) repository.MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

const maintenanceColumns = `id, tool_id, maintenance_type, status, scheduled_date, completed_date, description, created_on, updated_on`

func openStatuses() pq.StringArray {
	return pq.StringArray{
		string(domain.MaintenanceStatusScheduled),
		string(domain.MaintenanceStatusInProgress),
	}
}

func (r *maintenanceRepository) Create(ctx context.Context, w *domain.MaintenanceWindow) error {
	query := `INSERT INTO maintenance_windows (tool_id, maintenance_type, status, scheduled_date, description, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		w.ToolID, w.Type, w.Status, w.ScheduledDate, w.Description, now, now,
	).Scan(&w.ID)
	return mapError(err)
}

func (r *maintenanceRepository) GetByID(ctx context.Context, id int32) (*domain.MaintenanceWindow, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_windows WHERE id = $1`
	w, err := scanWindow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return w, nil
}

func (r *maintenanceRepository) Update(ctx context.Context, w *domain.MaintenanceWindow) error {
	query := `UPDATE maintenance_windows SET status=$1, completed_date=$2, description=$3, updated_on=$4 WHERE id=$5`
	var completed sql.NullTime
	if w.CompletedDate != nil {
		completed = sql.NullTime{Time: *w.CompletedDate, Valid: true}
	}
	result, err := r.db.ExecContext(ctx, query, w.Status, completed, w.Description, time.Now(), w.ID)
	if err != nil {
		return mapError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *maintenanceRepository) FindOverlapping(ctx context.Context, toolID int32, start, end time.Time) ([]domain.MaintenanceWindow, error) {
	// Windows occupy [scheduled_date, scheduled_date + 1 day).
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_windows
	          WHERE tool_id = $1 AND status = ANY($2)
	            AND scheduled_date < $3 AND scheduled_date + 1 > $4
	          ORDER BY scheduled_date`
	return r.queryMany(ctx, query, toolID, openStatuses(), end, start)
}

func (r *maintenanceRepository) ListOpenByTool(ctx context.Context, toolID int32) ([]domain.MaintenanceWindow, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_windows
	          WHERE tool_id = $1 AND status = ANY($2) ORDER BY scheduled_date`
	return r.queryMany(ctx, query, toolID, openStatuses())
}

func (r *maintenanceRepository) HasCompletedRepairSince(ctx context.Context, toolID int32, since time.Time) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM maintenance_windows
	            WHERE tool_id = $1 AND maintenance_type = $2 AND status = $3 AND completed_date >= $4)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, toolID,
		domain.MaintenanceTypeRepair, domain.MaintenanceStatusCompleted, since).Scan(&exists)
	return exists, mapError(err)
}

func (r *maintenanceRepository) CountOpen(ctx context.Context) (int32, error) {
	query := `SELECT count(*) FROM maintenance_windows WHERE status = ANY($1)`
	var count int32
	err := r.db.QueryRowContext(ctx, query, openStatuses()).Scan(&count)
	return count, mapError(err)
}

func (r *maintenanceRepository) CountCompletedSince(ctx context.Context, since time.Time) (int32, error) {
	query := `SELECT count(*) FROM maintenance_windows WHERE status = $1 AND completed_date >= $2`
	var count int32
	err := r.db.QueryRowContext(ctx, query, domain.MaintenanceStatusCompleted, since).Scan(&count)
	return count, mapError(err)
}

func (r *maintenanceRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]domain.MaintenanceWindow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var windows []domain.MaintenanceWindow
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		windows = append(windows, *w)
	}
	return windows, rows.Err()
}

func scanWindow(row rowScanner) (*domain.MaintenanceWindow, error) {
	w := &domain.MaintenanceWindow{}
	var completed sql.NullTime
	err := row.Scan(&w.ID, &w.ToolID, &w.Type, &w.Status, &w.ScheduledDate,
		&completed, &w.Description, &w.CreatedOn, &w.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if completed.Valid {
		t := completed.Time
		w.CompletedDate = &t
	}
	return w, nil
}

package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/warp/resource-engine/internal/domain"
	"github.com/warp/resource-engine/internal/repository"
)

type reservationRepository struct {
	db DBTX
}

func NewReservationRepository(db DBTX) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

const reservationColumns = `id, tool_id, member_id, start_date, end_date, status, return_condition, late_fees, notes, created_on, updated_on`

func activeStatuses() pq.StringArray {
	statuses := make(pq.StringArray, 0, len(domain.ActiveReservationStatuses))
	for _, s := range domain.ActiveReservationStatuses {
		statuses = append(statuses, string(s))
	}
	return statuses
}

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	query := `INSERT INTO reservations (tool_id, member_id, start_date, end_date, status, late_fees, notes, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		res.ToolID, res.MemberID, res.StartDate, res.EndDate, res.Status, res.LateFees, res.Notes, now, now,
	).Scan(&res.ID)
	return mapError(err)
}

func (r *reservationRepository) GetByID(ctx context.Context, id int32) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	res, err := scanReservation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return res, nil
}

func (r *reservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	query := `UPDATE reservations SET start_date=$1, end_date=$2, status=$3, return_condition=$4, late_fees=$5, notes=$6, updated_on=$7 WHERE id=$8`
	var returnCondition sql.NullString
	if res.ReturnCondition != nil {
		returnCondition = sql.NullString{String: string(*res.ReturnCondition), Valid: true}
	}
	result, err := r.db.ExecContext(ctx, query,
		res.StartDate, res.EndDate, res.Status, returnCondition, res.LateFees, res.Notes, time.Now(), res.ID)
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

func (r *reservationRepository) FindOverlapping(ctx context.Context, toolID int32, start, end time.Time) ([]domain.Reservation, error) {
	// Half-open overlap: [start_date, end_date) meets [start, end) iff
	// start_date < end AND end_date > start.
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE tool_id = $1 AND status = ANY($2) AND start_date < $3 AND end_date > $4
	          ORDER BY start_date`
	return r.queryMany(ctx, query, toolID, activeStatuses(), end, start)
}

func (r *reservationRepository) ListByTool(ctx context.Context, toolID int32) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE tool_id = $1 ORDER BY start_date`
	return r.queryMany(ctx, query, toolID)
}

func (r *reservationRepository) CountActive(ctx context.Context) (int32, error) {
	query := `SELECT count(*) FROM reservations WHERE status = ANY($1)`
	var count int32
	err := r.db.QueryRowContext(ctx, query, activeStatuses()).Scan(&count)
	return count, mapError(err)
}

func (r *reservationRepository) CountOverdue(ctx context.Context, asOf time.Time) (int32, error) {
	query := `SELECT count(*) FROM reservations WHERE status = $1 AND end_date < $2`
	var count int32
	err := r.db.QueryRowContext(ctx, query, domain.ReservationStatusCheckedOut, asOf).Scan(&count)
	return count, mapError(err)
}

func (r *reservationRepository) UsageDays(ctx context.Context, toolID int32, since, until time.Time) (int32, error) {
	// Clip each returned reservation's interval to the trailing window
	// before summing day counts.
	query := `SELECT COALESCE(SUM(LEAST(end_date, $3::date) - GREATEST(start_date, $2::date)), 0)
	          FROM reservations
	          WHERE tool_id = $1 AND status = $4 AND start_date < $3 AND end_date > $2`
	var days int32
	err := r.db.QueryRowContext(ctx, query, toolID, since, until, domain.ReservationStatusReturned).Scan(&days)
	return days, mapError(err)
}

func (r *reservationRepository) DeleteCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM reservations WHERE status = $1 AND updated_on < $2`
	result, err := r.db.ExecContext(ctx, query, domain.ReservationStatusCancelled, cutoff)
	if err != nil {
		return 0, mapError(err)
	}
	return result.RowsAffected()
}

func (r *reservationRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	return reservations, rows.Err()
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	res := &domain.Reservation{}
	var returnCondition sql.NullString
	err := row.Scan(&res.ID, &res.ToolID, &res.MemberID, &res.StartDate, &res.EndDate,
		&res.Status, &returnCondition, &res.LateFees, &res.Notes, &res.CreatedOn, &res.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if returnCondition.Valid {
		cond := domain.ToolCondition(returnCondition.String)
		res.ReturnCondition = &cond
	}
	return res, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/warp/resource-engine/internal/domain"
	"github.com/warp/resource-engine/internal/repository"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can
// run standalone or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Store struct {
	db *sql.DB
	tx *sql.Tx

	tools        repository.ToolRepository
	reservations repository.ReservationRepository
	maintenance  repository.MaintenanceRepository
}

func NewStore(db *sql.DB) *Store {
	return newStore(db, nil)
}

func newStore(db *sql.DB, tx *sql.Tx) *Store {
	var q DBTX = db
	if tx != nil {
		q = tx
	}
	return &Store{
		db:           db,
		tx:           tx,
		tools:        NewToolRepository(q),
		reservations: NewReservationRepository(q),
		maintenance:  NewMaintenanceRepository(q),
	}
}

func (s *Store) Tools() repository.ToolRepository               { return s.tools }
func (s *Store) Reservations() repository.ReservationRepository { return s.reservations }
func (s *Store) Maintenance() repository.MaintenanceRepository  { return s.maintenance }

// InTx runs fn inside a database transaction. Nested calls reuse the
// surrounding transaction.
func (s *Store) InTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(newStore(s.db, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// mapError normalizes driver errors into domain errors. The reservations
// table carries an exclusion constraint on (tool_id, daterange) as the
// final guard behind the in-transaction conflict check.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23P01" {
		return &domain.ConflictError{}
	}
	return err
}

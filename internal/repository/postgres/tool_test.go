package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/resource-engine/internal/domain"
	"github.com/warp/resource-engine/internal/repository"
	"github.com/warp/resource-engine/internal/repository/postgres"
)

var toolRowColumns = []string{
	"id", "category", "daily_rate", "condition", "is_available",
	"requires_training", "last_reconciled_on", "created_on", "updated_on",
}

func TestToolRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)
	ctx := context.Background()

	tool := &domain.Tool{
		Category:    "Power Tools",
		DailyRate:   decimal.NewFromInt(50),
		Condition:   domain.ToolConditionExcellent,
		IsAvailable: true,
	}

	mock.ExpectQuery("INSERT INTO tools").
		WithArgs(tool.Category, tool.DailyRate, tool.Condition, tool.IsAvailable, tool.RequiresTraining, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	err = repo.Create(ctx, tool)
	assert.NoError(t, err)
	assert.Equal(t, int32(7), tool.ID)
}

func TestToolRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(toolRowColumns).
			AddRow(1, "Garden", "25", "GOOD", true, false, nil, time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM tools WHERE id = \\$1").
			WithArgs(int32(1)).
			WillReturnRows(rows)

		tool, err := repo.GetByID(ctx, 1)
		assert.NoError(t, err)
		assert.NotNil(t, tool)
		assert.Equal(t, domain.ToolConditionGood, tool.Condition)
		assert.Nil(t, tool.LastReconciledOn)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tools WHERE id = \\$1").
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows(toolRowColumns))

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestToolRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)
	ctx := context.Background()

	reconciled := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	tool := &domain.Tool{
		ID:               1,
		Condition:        domain.ToolConditionFair,
		IsAvailable:      false,
		LastReconciledOn: &reconciled,
	}

	mock.ExpectExec("UPDATE tools SET").
		WithArgs(tool.Condition, tool.IsAvailable, sqlmock.AnyArg(), sqlmock.AnyArg(), tool.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Update(ctx, tool))
}

// The exclusion constraint on reservation intervals surfaces as a
// conflict the caller can match with errors.Is.
func TestStore_ExclusionViolationMapsToConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewReservationRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("INSERT INTO reservations").
		WillReturnError(&pq.Error{Code: "23P01"})

	err = repo.Create(ctx, &domain.Reservation{
		ToolID: 1, MemberID: 1,
		StartDate: time.Now(), EndDate: time.Now().Add(24 * time.Hour),
		Status: domain.ReservationStatusConfirmed, LateFees: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStore_InTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	store := postgres.NewStore(db)
	ctx := context.Background()

	t.Run("CommitOnSuccess", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM tools WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows(toolRowColumns).
				AddRow(1, "Garden", "25", "GOOD", true, false, nil, time.Now(), time.Now()))
		mock.ExpectCommit()

		err := store.InTx(ctx, func(tx repository.Store) error {
			_, err := tx.Tools().GetForUpdate(ctx, 1)
			return err
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollbackOnError", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM tools WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(2)).
			WillReturnRows(sqlmock.NewRows(toolRowColumns))
		mock.ExpectRollback()

		err := store.InTx(ctx, func(tx repository.Store) error {
			_, err := tx.Tools().GetForUpdate(ctx, 2)
			return err
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

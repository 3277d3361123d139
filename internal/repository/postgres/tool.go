package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/warp/resource-engine/internal/domain"
	"github.com/warp/resource-engine/internal/repository"
)

type toolRepository struct {
	db DBTX
}

func NewToolRepository(db DBTX) repository.ToolRepository {
	return &toolRepository{db: db}
}

const toolColumns = `id, category, daily_rate, condition, is_available, requires_training, last_reconciled_on, created_on, updated_on`

func (r *toolRepository) Create(ctx context.Context, tool *domain.Tool) error {
	query := `INSERT INTO tools (category, daily_rate, condition, is_available, requires_training, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		tool.Category, tool.DailyRate, tool.Condition, tool.IsAvailable, tool.RequiresTraining, now, now,
	).Scan(&tool.ID)
	return mapError(err)
}

func (r *toolRepository) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *toolRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *toolRepository) Update(ctx context.Context, tool *domain.Tool) error {
	query := `UPDATE tools SET condition=$1, is_available=$2, last_reconciled_on=$3, updated_on=$4 WHERE id=$5`
	var lastReconciled sql.NullTime
	if tool.LastReconciledOn != nil {
		lastReconciled = sql.NullTime{Time: *tool.LastReconciledOn, Valid: true}
	}
	result, err := r.db.ExecContext(ctx, query, tool.Condition, tool.IsAvailable, lastReconciled, time.Now(), tool.ID)
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

func (r *toolRepository) List(ctx context.Context) ([]domain.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var tools []domain.Tool
	for rows.Next() {
		tool, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		tools = append(tools, *tool)
	}
	return tools, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *toolRepository) scanOne(row *sql.Row) (*domain.Tool, error) {
	tool, err := scanTool(row)
	if err != nil {
		return nil, mapError(err)
	}
	return tool, nil
}

func scanTool(row rowScanner) (*domain.Tool, error) {
	tool := &domain.Tool{}
	var lastReconciled sql.NullTime
	err := row.Scan(&tool.ID, &tool.Category, &tool.DailyRate, &tool.Condition,
		&tool.IsAvailable, &tool.RequiresTraining, &lastReconciled, &tool.CreatedOn, &tool.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if lastReconciled.Valid {
		t := lastReconciled.Time
		tool.LastReconciledOn = &t
	}
	return tool, nil
}

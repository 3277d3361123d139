package service

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/resource-engine/internal/domain"
	"github.com/warp/resource-engine/internal/repository"
)

type maintenanceService struct {
	store repository.Store
}

func NewMaintenanceService(store repository.Store) MaintenanceService {
	return &maintenanceService{store: store}
}

// Complete closes a maintenance window and, when no other open window
// requiring downtime remains, puts the tool back in circulation.
func (s *maintenanceService) Complete(ctx context.Context, windowID int32, completedAt time.Time) (*domain.MaintenanceWindow, error) {
	var window *domain.MaintenanceWindow
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		window, err = tx.Maintenance().GetByID(ctx, windowID)
		if err != nil {
			return err
		}
		if !window.Status.Open() {
			return fmt.Errorf("maintenance window %d is %s: %w",
				windowID, window.Status, domain.ErrInvalidState)
		}
		window.Status = domain.MaintenanceStatusCompleted
		window.CompletedDate = &completedAt
		if err := tx.Maintenance().Update(ctx, window); err != nil {
			return err
		}

		tool, err := tx.Tools().GetForUpdate(ctx, window.ToolID)
		if err != nil {
			return err
		}
		open, err := tx.Maintenance().ListOpenByTool(ctx, window.ToolID)
		if err != nil {
			return err
		}
		downtime := false
		for i := range open {
			if open[i].Type.RequiresDowntime() {
				downtime = true
				break
			}
		}
		if !downtime && !tool.IsAvailable {
			tool.IsAvailable = true
			return tx.Tools().Update(ctx, tool)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return window, nil
}

func (s *maintenanceService) ListOpen(ctx context.Context, toolID int32) ([]domain.MaintenanceWindow, error) {
	return s.store.Maintenance().ListOpenByTool(ctx, toolID)
}

package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/warp/resource-engine/internal/domain"
	"github.com/warp/resource-engine/internal/logger"
	"github.com/warp/resource-engine/internal/service"
)

// RunDailyReconciliation is the scheduler entry point.
func (jr *JobRunner) RunDailyReconciliation() {
	jr.runWithRecovery("RunDailyReconciliation", func() {
		report := jr.ReconcileAsOf(context.Background(), time.Now())
		logger.Info("Daily reconciliation summary",
			"run_id", report.RunID,
			"run_date", report.RunDate.Format("2006-01-02"),
			"total_tools", report.TotalTools,
			"available_tools", report.AvailableTools,
			"utilization_rate", report.UtilizationRate,
			"active_reservations", report.ActiveReservations,
			"overdue_reservations", report.OverdueReservations,
			"deleted_reservations", report.DeletedReservations,
			"condition_changes", report.ConditionChanges,
			"open_maintenance", report.OpenMaintenance,
			"maintenance_completed_24h", report.MaintenanceCompleted24h,
			"errors", len(report.Errors))
	})
}

// ReconcileAsOf runs the daily pass for the given run date: stale
// cancelled reservations are purged, every tool's condition tier is
// recalculated, and a summary is computed. Each step is isolated: a
// failure is recorded on the report and the pass continues. Re-running
// for the same date is safe: the cleanup predicate removes nothing
// twice and tools already reconciled for the date are skipped.
func (jr *JobRunner) ReconcileAsOf(ctx context.Context, asOf time.Time) *domain.ReconciliationReport {
	runDate := domain.DateOf(asOf)
	report := &domain.ReconciliationReport{
		RunID:   uuid.New(),
		RunDate: runDate,
	}

	jr.cleanupCancelled(ctx, runDate, report)
	jr.degradeConditions(ctx, runDate, report)
	jr.summarize(ctx, asOf, runDate, report)

	return report
}

func (jr *JobRunner) cleanupCancelled(ctx context.Context, runDate time.Time, report *domain.ReconciliationReport) {
	cutoff := runDate.AddDate(0, 0, -jr.policy.CleanupAfterDays)
	deleted, err := jr.store.Reservations().DeleteCancelledBefore(ctx, cutoff)
	if err != nil {
		jr.stepFailed(report, "cleanup", err)
		return
	}
	report.DeletedReservations = deleted
	if deleted > 0 {
		logger.Info("Purged stale cancelled reservations", "count", deleted)
	}
}

func (jr *JobRunner) degradeConditions(ctx context.Context, runDate time.Time, report *domain.ReconciliationReport) {
	tools, err := jr.store.Tools().List(ctx)
	if err != nil {
		jr.stepFailed(report, "degradation", err)
		return
	}

	for i := range tools {
		tool := tools[i]
		if tool.LastReconciledOn != nil && tool.LastReconciledOn.Equal(runDate) {
			report.ToolsSkipped++
			continue
		}
		// One tool failing must not block the rest.
		if err := jr.degradeTool(ctx, &tool, runDate, report); err != nil {
			jr.stepFailed(report, fmt.Sprintf("degradation tool %d", tool.ID), err)
		}
	}
}

func (jr *JobRunner) degradeTool(ctx context.Context, tool *domain.Tool, runDate time.Time, report *domain.ReconciliationReport) error {
	usageSince := runDate.AddDate(0, 0, -jr.policy.UsageWindowDays)
	usageDays, err := jr.store.Reservations().UsageDays(ctx, tool.ID, usageSince, runDate)
	if err != nil {
		return err
	}
	repairSince := runDate.AddDate(0, 0, -jr.policy.RepairWindowDays)
	recentlyRepaired, err := jr.store.Maintenance().HasCompletedRepairSince(ctx, tool.ID, repairSince)
	if err != nil {
		return err
	}

	next, changed := service.NextCondition(tool.Condition, usageDays, recentlyRepaired, jr.policy)
	if changed {
		logger.Info("Tool condition recalculated",
			"tool_id", tool.ID, "from", tool.Condition, "to", next,
			"usage_days", usageDays, "recently_repaired", recentlyRepaired)
		tool.Condition = next
		report.ConditionChanges++
	}
	tool.LastReconciledOn = &runDate
	return jr.store.Tools().Update(ctx, tool)
}

func (jr *JobRunner) summarize(ctx context.Context, asOf, runDate time.Time, report *domain.ReconciliationReport) {
	tools, err := jr.store.Tools().List(ctx)
	if err != nil {
		jr.stepFailed(report, "summary tools", err)
		return
	}
	report.TotalTools = int32(len(tools))
	for i := range tools {
		if tools[i].IsAvailable {
			report.AvailableTools++
		}
	}
	if report.TotalTools > 0 {
		report.UtilizationRate = float64(report.TotalTools-report.AvailableTools) / float64(report.TotalTools)
	}

	if report.ActiveReservations, err = jr.store.Reservations().CountActive(ctx); err != nil {
		jr.stepFailed(report, "summary active reservations", err)
	}
	if report.OverdueReservations, err = jr.store.Reservations().CountOverdue(ctx, runDate); err != nil {
		jr.stepFailed(report, "summary overdue reservations", err)
	}
	if report.OpenMaintenance, err = jr.store.Maintenance().CountOpen(ctx); err != nil {
		jr.stepFailed(report, "summary open maintenance", err)
	}
	if report.MaintenanceCompleted24h, err = jr.store.Maintenance().CountCompletedSince(ctx, asOf.Add(-24*time.Hour)); err != nil {
		jr.stepFailed(report, "summary completed maintenance", err)
	}
}

func (jr *JobRunner) stepFailed(report *domain.ReconciliationReport, step string, err error) {
	logger.Error("Reconciliation step failed", "step", step, "error", err)
	report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", step, err))
}

package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/resource-engine/internal/config"
	"github.com/warp/resource-engine/internal/domain"
	"github.com/warp/resource-engine/internal/jobs"
	"github.com/warp/resource-engine/internal/repository/memory"
	"github.com/warp/resource-engine/internal/service"
)

func today() time.Time {
	return domain.DateOf(time.Now())
}

func newRunner(store *memory.Store) *jobs.JobRunner {
	return jobs.NewJobRunner(store, service.DefaultPolicy(), &config.Config{})
}

func seedTool(t *testing.T, store *memory.Store, condition domain.ToolCondition) *domain.Tool {
	t.Helper()
	tool := &domain.Tool{
		Category:    "Power Tools",
		DailyRate:   decimal.NewFromInt(50),
		Condition:   condition,
		IsAvailable: true,
	}
	require.NoError(t, store.Tools().Create(context.Background(), tool))
	return tool
}

// seedReturned records a finished rental spanning the given day offsets.
func seedReturned(t *testing.T, store *memory.Store, toolID int32, startOff, endOff int) {
	t.Helper()
	good := domain.ToolConditionGood
	res := &domain.Reservation{
		ToolID:          toolID,
		MemberID:        1,
		StartDate:       today().AddDate(0, 0, startOff),
		EndDate:         today().AddDate(0, 0, endOff),
		Status:          domain.ReservationStatusReturned,
		ReturnCondition: &good,
		LateFees:        decimal.Zero,
	}
	require.NoError(t, store.Reservations().Create(context.Background(), res))
}

func TestReconciliation_ConditionDegradation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	runner := newRunner(store)

	heavy := seedTool(t, store, domain.ToolConditionExcellent)
	seedReturned(t, store, heavy.ID, -26, -1) // 25 usage days in the window

	light := seedTool(t, store, domain.ToolConditionExcellent)
	seedReturned(t, store, light.ID, -6, -1) // 5 usage days

	worn := seedTool(t, store, domain.ToolConditionGood)
	seedReturned(t, store, worn.ID, -20, -2) // 18 usage days

	report := runner.ReconcileAsOf(ctx, time.Now())
	require.Empty(t, report.Errors)
	assert.Equal(t, int32(2), report.ConditionChanges)

	got, err := store.Tools().GetByID(ctx, heavy.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ToolConditionGood, got.Condition)
	require.NotNil(t, got.LastReconciledOn)
	assert.True(t, got.LastReconciledOn.Equal(today()))

	got, err = store.Tools().GetByID(ctx, light.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ToolConditionExcellent, got.Condition)

	got, err = store.Tools().GetByID(ctx, worn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ToolConditionFair, got.Condition)
}

// A second run for the same date must not degrade anything further.
func TestReconciliation_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	runner := newRunner(store)

	tool := seedTool(t, store, domain.ToolConditionExcellent)
	seedReturned(t, store, tool.ID, -26, -1)

	first := runner.ReconcileAsOf(ctx, time.Now())
	require.Empty(t, first.Errors)
	assert.Equal(t, int32(1), first.ConditionChanges)

	second := runner.ReconcileAsOf(ctx, time.Now())
	require.Empty(t, second.Errors)
	assert.Equal(t, int32(0), second.ConditionChanges)
	assert.Equal(t, int32(1), second.ToolsSkipped)

	got, err := store.Tools().GetByID(ctx, tool.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ToolConditionGood, got.Condition)
}

func TestReconciliation_RepairResetsCondition(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	runner := newRunner(store)

	tool := seedTool(t, store, domain.ToolConditionFair)
	completed := time.Now().AddDate(0, 0, -2)
	require.NoError(t, store.Maintenance().Create(ctx, &domain.MaintenanceWindow{
		ToolID:        tool.ID,
		Type:          domain.MaintenanceTypeRepair,
		Status:        domain.MaintenanceStatusCompleted,
		ScheduledDate: today().AddDate(0, 0, -3),
		CompletedDate: &completed,
	}))

	report := runner.ReconcileAsOf(ctx, time.Now())
	require.Empty(t, report.Errors)
	assert.Equal(t, int32(1), report.ConditionChanges)

	got, err := store.Tools().GetByID(ctx, tool.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ToolConditionGood, got.Condition)
}

func TestReconciliation_CleanupCancelled(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	runner := newRunner(store)
	seedTool(t, store, domain.ToolConditionGood)

	cancelled := &domain.Reservation{
		ToolID:    1,
		MemberID:  1,
		StartDate: today().AddDate(0, 0, 1),
		EndDate:   today().AddDate(0, 0, 3),
		Status:    domain.ReservationStatusCancelled,
		LateFees:  decimal.Zero,
	}
	require.NoError(t, store.Reservations().Create(ctx, cancelled))

	// As of today the cancellation is fresh and survives the pass.
	report := runner.ReconcileAsOf(ctx, time.Now())
	require.Empty(t, report.Errors)
	assert.Equal(t, int64(0), report.DeletedReservations)

	// Forty days out it is past the retention cutoff and goes away.
	future := time.Now().AddDate(0, 0, 40)
	report = runner.ReconcileAsOf(ctx, future)
	require.Empty(t, report.Errors)
	assert.Equal(t, int64(1), report.DeletedReservations)

	_, err := store.Reservations().GetByID(ctx, cancelled.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Rerunning finds nothing left to purge.
	report = runner.ReconcileAsOf(ctx, future)
	require.Empty(t, report.Errors)
	assert.Equal(t, int64(0), report.DeletedReservations)
}

func TestReconciliation_Summary(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	runner := newRunner(store)

	up := seedTool(t, store, domain.ToolConditionGood)
	down := seedTool(t, store, domain.ToolConditionNeedsRepair)
	down.IsAvailable = false
	require.NoError(t, store.Tools().Update(ctx, down))

	// One active booking and one overdue checkout.
	require.NoError(t, store.Reservations().Create(ctx, &domain.Reservation{
		ToolID: up.ID, MemberID: 1,
		StartDate: today().AddDate(0, 0, 1), EndDate: today().AddDate(0, 0, 3),
		Status: domain.ReservationStatusConfirmed, LateFees: decimal.Zero,
	}))
	require.NoError(t, store.Reservations().Create(ctx, &domain.Reservation{
		ToolID: down.ID, MemberID: 2,
		StartDate: today().AddDate(0, 0, -5), EndDate: today().AddDate(0, 0, -2),
		Status: domain.ReservationStatusCheckedOut, LateFees: decimal.Zero,
	}))

	completed := time.Now().Add(-2 * time.Hour)
	require.NoError(t, store.Maintenance().Create(ctx, &domain.MaintenanceWindow{
		ToolID: down.ID, Type: domain.MaintenanceTypeRepair,
		Status: domain.MaintenanceStatusScheduled, ScheduledDate: today().AddDate(0, 0, 2),
	}))
	require.NoError(t, store.Maintenance().Create(ctx, &domain.MaintenanceWindow{
		ToolID: down.ID, Type: domain.MaintenanceTypeCleaning,
		Status: domain.MaintenanceStatusCompleted, ScheduledDate: today().AddDate(0, 0, -1),
		CompletedDate: &completed,
	}))

	report := runner.ReconcileAsOf(ctx, time.Now())
	require.Empty(t, report.Errors)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", report.RunID.String())
	assert.Equal(t, int32(2), report.TotalTools)
	assert.Equal(t, int32(1), report.AvailableTools)
	assert.InDelta(t, 0.5, report.UtilizationRate, 1e-9)
	assert.Equal(t, int32(2), report.ActiveReservations)
	assert.Equal(t, int32(1), report.OverdueReservations)
	assert.Equal(t, int32(1), report.OpenMaintenance)
	assert.Equal(t, int32(1), report.MaintenanceCompleted24h)
}

package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/resource-engine/internal/domain"
	"github.com/warp/resource-engine/internal/repository/memory"
	"github.com/warp/resource-engine/internal/service"
)

func TestAvailability_FindConflicts(t *testing.T) {
	store := memory.NewStore()
	svc := service.NewAvailabilityService(store)
	resSvc := service.NewReservationService(store, service.DefaultPolicy())
	ctx := context.Background()

	tool := newTool(t, store, 50)
	booked, err := resSvc.Create(ctx, service.CreateRequest{
		ToolID: tool.ID, MemberID: 1, Start: day(1), End: day(5),
	})
	require.NoError(t, err)

	t.Run("overlapping interval reports the reservation", func(t *testing.T) {
		conflicts, err := svc.FindConflicts(ctx, tool.ID, day(3), day(4))
		require.NoError(t, err)
		require.Len(t, conflicts, 1)
		assert.Equal(t, domain.ConflictKindReservation, conflicts[0].Kind)
		assert.Equal(t, booked.ID, conflicts[0].ID)
		assert.Equal(t, string(domain.ReservationStatusConfirmed), conflicts[0].Status)
	})

	t.Run("adjacent interval does not conflict", func(t *testing.T) {
		conflicts, err := svc.FindConflicts(ctx, tool.ID, day(5), day(8))
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("interval ending at start does not conflict", func(t *testing.T) {
		conflicts, err := svc.FindConflicts(ctx, tool.ID, day(0), day(1))
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("cancelled reservations are ignored", func(t *testing.T) {
		held, err := resSvc.Create(ctx, service.CreateRequest{
			ToolID: tool.ID, MemberID: 2, Start: day(10), End: day(12), Hold: true,
		})
		require.NoError(t, err)
		require.NoError(t, resSvc.Cancel(ctx, held.ID))

		conflicts, err := svc.FindConflicts(ctx, tool.ID, day(10), day(12))
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("open maintenance windows conflict", func(t *testing.T) {
		w := &domain.MaintenanceWindow{
			ToolID:        tool.ID,
			Type:          domain.MaintenanceTypeInspection,
			Status:        domain.MaintenanceStatusScheduled,
			ScheduledDate: day(20),
		}
		require.NoError(t, store.Maintenance().Create(ctx, w))

		conflicts, err := svc.FindConflicts(ctx, tool.ID, day(20), day(22))
		require.NoError(t, err)
		require.Len(t, conflicts, 1)
		assert.Equal(t, domain.ConflictKindMaintenance, conflicts[0].Kind)
	})

	t.Run("unknown tool yields empty set", func(t *testing.T) {
		conflicts, err := svc.FindConflicts(ctx, 9999, day(0), day(30))
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})
}

func TestAvailability_CheckAvailability(t *testing.T) {
	store := memory.NewStore()
	svc := service.NewAvailabilityService(store)
	ctx := context.Background()

	tool := newTool(t, store, 50)

	t.Run("free interval is available", func(t *testing.T) {
		available, conflicts, err := svc.CheckAvailability(ctx, tool.ID, day(1), day(3))
		require.NoError(t, err)
		assert.True(t, available)
		assert.Empty(t, conflicts)
	})

	t.Run("unknown tool is a not-found error", func(t *testing.T) {
		_, _, err := svc.CheckAvailability(ctx, 9999, day(1), day(3))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("inverted interval is rejected", func(t *testing.T) {
		_, _, err := svc.CheckAvailability(ctx, tool.ID, day(3), day(1))
		assert.ErrorIs(t, err, domain.ErrInvalidInterval)
	})

	t.Run("disabled tool is unavailable even when unbooked", func(t *testing.T) {
		tool.IsAvailable = false
		require.NoError(t, store.Tools().Update(ctx, tool))

		available, conflicts, err := svc.CheckAvailability(ctx, tool.ID, day(1), day(3))
		require.NoError(t, err)
		assert.False(t, available)
		assert.Empty(t, conflicts)
	})
}

func TestAvailability_BuildCalendar(t *testing.T) {
	store := memory.NewStore()
	svc := service.NewAvailabilityService(store)
	resSvc := service.NewReservationService(store, service.DefaultPolicy())
	ctx := context.Background()

	tool := newTool(t, store, 50)
	_, err := resSvc.Create(ctx, service.CreateRequest{
		ToolID: tool.ID, MemberID: 1, Start: day(2), End: day(4),
	})
	require.NoError(t, err)
	require.NoError(t, store.Maintenance().Create(ctx, &domain.MaintenanceWindow{
		ToolID:        tool.ID,
		Type:          domain.MaintenanceTypeRepair,
		Status:        domain.MaintenanceStatusScheduled,
		ScheduledDate: day(5),
	}))

	t.Run("days carry the right reasons", func(t *testing.T) {
		calendar, err := svc.BuildCalendar(ctx, tool.ID, day(1), day(7))
		require.NoError(t, err)
		require.Len(t, calendar, 6)

		assert.True(t, calendar[0].Available) // day 1
		assert.Equal(t, domain.ReasonNone, calendar[0].Reason)

		assert.False(t, calendar[1].Available) // day 2
		assert.Equal(t, domain.ReasonReserved, calendar[1].Reason)
		assert.False(t, calendar[2].Available) // day 3
		assert.Equal(t, domain.ReasonReserved, calendar[2].Reason)

		assert.True(t, calendar[3].Available) // day 4: checkout day frees up

		assert.False(t, calendar[4].Available) // day 5
		assert.Equal(t, domain.ReasonMaintenance, calendar[4].Reason)

		assert.True(t, calendar[5].Available) // day 6
	})

	t.Run("disabled tool wins over other reasons", func(t *testing.T) {
		tool.IsAvailable = false
		require.NoError(t, store.Tools().Update(ctx, tool))

		calendar, err := svc.BuildCalendar(ctx, tool.ID, day(2), day(3))
		require.NoError(t, err)
		require.Len(t, calendar, 1)
		assert.False(t, calendar[0].Available)
		assert.Equal(t, domain.ReasonToolUnavailable, calendar[0].Reason)
	})

	t.Run("unknown tool is a not-found error", func(t *testing.T) {
		_, err := svc.BuildCalendar(ctx, 9999, day(1), day(2))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

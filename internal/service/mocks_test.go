package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/warp/resource-engine/internal/domain"
	"github.com/warp/resource-engine/internal/repository/memory"
)

// MockNotificationSink
type MockNotificationSink struct {
	mock.Mock
}

func (m *MockNotificationSink) NotifyLateReturn(ctx context.Context, res *domain.Reservation, tool *domain.Tool, fees decimal.Decimal) error {
	args := m.Called(ctx, res, tool, fees)
	return args.Error(0)
}

func (m *MockNotificationSink) NotifyMaintenanceScheduled(ctx context.Context, w *domain.MaintenanceWindow, tool *domain.Tool) error {
	args := m.Called(ctx, w, tool)
	return args.Error(0)
}

// day returns today's UTC date shifted by offset days.
func day(offset int) time.Time {
	return domain.DateOf(time.Now()).AddDate(0, 0, offset)
}

func newTool(t *testing.T, store *memory.Store, rate int64) *domain.Tool {
	t.Helper()
	tool := &domain.Tool{
		Category:    "Power Tools",
		DailyRate:   decimal.NewFromInt(rate),
		Condition:   domain.ToolConditionExcellent,
		IsAvailable: true,
	}
	require.NoError(t, store.Tools().Create(context.Background(), tool))
	return tool
}

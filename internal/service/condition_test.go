package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/resource-engine/internal/domain"
	"github.com/warp/resource-engine/internal/service"
)

func TestNextCondition(t *testing.T) {
	policy := service.DefaultPolicy()

	tests := []struct {
		name             string
		current          domain.ToolCondition
		usageDays        int32
		recentlyRepaired bool
		want             domain.ToolCondition
		wantChanged      bool
	}{
		{
			name:        "heavy usage drops excellent to good",
			current:     domain.ToolConditionExcellent,
			usageDays:   25,
			want:        domain.ToolConditionGood,
			wantChanged: true,
		},
		{
			name:        "heavy usage drops good to fair",
			current:     domain.ToolConditionGood,
			usageDays:   16,
			want:        domain.ToolConditionFair,
			wantChanged: true,
		},
		{
			name:      "usage at threshold does not degrade",
			current:   domain.ToolConditionExcellent,
			usageDays: 20,
			want:      domain.ToolConditionExcellent,
		},
		{
			name:      "light usage leaves condition alone",
			current:   domain.ToolConditionExcellent,
			usageDays: 5,
			want:      domain.ToolConditionExcellent,
		},
		{
			name:      "fair never degrades further from usage",
			current:   domain.ToolConditionFair,
			usageDays: 30,
			want:      domain.ToolConditionFair,
		},
		{
			name:             "recent repair resets to good",
			current:          domain.ToolConditionNeedsRepair,
			usageDays:        0,
			recentlyRepaired: true,
			want:             domain.ToolConditionGood,
			wantChanged:      true,
		},
		{
			name:             "repair rule wins over usage rules",
			current:          domain.ToolConditionExcellent,
			usageDays:        25,
			recentlyRepaired: true,
			want:             domain.ToolConditionGood,
			wantChanged:      true,
		},
		{
			name:             "repair on already-good tool is a no-op",
			current:          domain.ToolConditionGood,
			usageDays:        0,
			recentlyRepaired: true,
			want:             domain.ToolConditionGood,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := service.NextCondition(tt.current, tt.usageDays, tt.recentlyRepaired, policy)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

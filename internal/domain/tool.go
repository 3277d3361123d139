package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ToolCondition string

const (
	ToolConditionExcellent   ToolCondition = "EXCELLENT"
	ToolConditionGood        ToolCondition = "GOOD"
	ToolConditionFair        ToolCondition = "FAIR"
	ToolConditionNeedsRepair ToolCondition = "NEEDS_REPAIR"
)

// Valid reports whether c is one of the known condition tiers.
func (c ToolCondition) Valid() bool {
	switch c {
	case ToolConditionExcellent, ToolConditionGood, ToolConditionFair, ToolConditionNeedsRepair:
		return true
	}
	return false
}

// RequiresMaintenance reports whether a tool returned in this condition
// must be pulled from circulation for service.
func (c ToolCondition) RequiresMaintenance() bool {
	return c == ToolConditionFair || c == ToolConditionNeedsRepair
}

type Tool struct {
	ID               int32           `json:"id"`
	Category         string          `json:"category"`
	DailyRate        decimal.Decimal `json:"daily_rate"`
	Condition        ToolCondition   `json:"condition"`
	IsAvailable      bool            `json:"is_available"`
	RequiresTraining bool            `json:"requires_training"`
	// LastReconciledOn is the most recent reconciliation run date that
	// processed this tool. Guards against double-degrading on a rerun.
	LastReconciledOn *time.Time `json:"last_reconciled_on,omitempty"`
	CreatedOn        time.Time  `json:"created_on"`
	UpdatedOn        time.Time  `json:"updated_on"`
}

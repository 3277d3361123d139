package service

import (
	"github.com/shopspring/decimal"

	"github.com/warp/resource-engine/internal/config"
)

// Policy collects the business constants the engine applies. The
// numbers are operational knobs, not invariants, so they load from
// configuration with these defaults.
type Policy struct {
	// LateFeeFactor is the fraction of the daily rate charged per day late.
	LateFeeFactor decimal.Decimal
	// ExcellentUsageThreshold is the trailing-window usage (days) above
	// which an EXCELLENT tool drops to GOOD.
	ExcellentUsageThreshold int32
	// GoodUsageThreshold is the usage above which a GOOD tool drops to FAIR.
	GoodUsageThreshold int32
	// UsageWindowDays is the trailing window for usage accumulation.
	UsageWindowDays int
	// RepairWindowDays is the trailing window in which a completed repair
	// resets condition to GOOD.
	RepairWindowDays int
	// CleanupAfterDays is how long cancelled reservations are retained.
	CleanupAfterDays int
	// MaintenanceLeadDays is how far out return-triggered maintenance is
	// scheduled.
	MaintenanceLeadDays int
}

func DefaultPolicy() Policy {
	return Policy{
		LateFeeFactor:           decimal.NewFromFloat(0.5),
		ExcellentUsageThreshold: 20,
		GoodUsageThreshold:      15,
		UsageWindowDays:         30,
		RepairWindowDays:        7,
		CleanupAfterDays:        30,
		MaintenanceLeadDays:     1,
	}
}

// PolicyFromConfig maps validated configuration onto a Policy.
func PolicyFromConfig(cfg config.PolicyConfig) Policy {
	return Policy{
		LateFeeFactor:           decimal.NewFromFloat(cfg.LateFeeFactor),
		ExcellentUsageThreshold: cfg.ExcellentUsageThreshold,
		GoodUsageThreshold:      cfg.GoodUsageThreshold,
		UsageWindowDays:         cfg.UsageWindowDays,
		RepairWindowDays:        cfg.RepairWindowDays,
		CleanupAfterDays:        cfg.CleanupAfterDays,
		MaintenanceLeadDays:     cfg.MaintenanceLeadDays,
	}
}

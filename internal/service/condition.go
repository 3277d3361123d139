package service

import "github.com/warp/resource-engine/internal/domain"

// NextCondition applies the ordered degradation rules and returns the
// resulting tier plus whether it changed. First matching rule wins:
//
//  1. a repair completed in the trailing window resets to GOOD
//  2. heavy usage drops EXCELLENT to GOOD
//  3. heavy usage drops GOOD to FAIR
//  4. otherwise unchanged
//
// Pure in (current, usageDays, recentlyRepaired); the reconciliation
// runner is responsible for not re-applying it within the same day.
func NextCondition(current domain.ToolCondition, usageDays int32, recentlyRepaired bool, p Policy) (domain.ToolCondition, bool) {
	switch {
	case recentlyRepaired:
		return domain.ToolConditionGood, current != domain.ToolConditionGood
	case usageDays > p.ExcellentUsageThreshold && current == domain.ToolConditionExcellent:
		return domain.ToolConditionGood, true
	case usageDays > p.GoodUsageThreshold && current == domain.ToolConditionGood:
		return domain.ToolConditionFair, true
	default:
		return current, false
	}
}

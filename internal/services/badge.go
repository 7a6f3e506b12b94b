package services

import (
	"github.com/devflow-qa/apiserver/config"
	"github.com/devflow-qa/apiserver/types"
)

// AssignBadges reduces raw activity counts to badge tier counts. For
// each criterion, every tier whose threshold the count meets or
// exceeds is awarded, so a count past gold also earns the silver and
// bronze slots for that criterion. Criteria without a configured
// threshold table are skipped. Pure: no I/O, same input same output.
func AssignBadges(criteria []types.BadgeCriterion, cfg config.BadgeConfig) types.BadgeCounts {
	var counts types.BadgeCounts
	for _, criterion := range criteria {
		thresholds, ok := cfg.Thresholds[string(criterion.Kind)]
		if !ok {
			continue
		}
		if criterion.Count >= int64(thresholds.Gold) {
			counts.Gold++
		}
		if criterion.Count >= int64(thresholds.Silver) {
			counts.Silver++
		}
		if criterion.Count >= int64(thresholds.Bronze) {
			counts.Bronze++
		}
	}
	return counts
}

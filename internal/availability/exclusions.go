package availability

import (
	"time"

	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/pkg/logging"
)

// FilterExclusionDates removes candidates falling on a prison-wide closure
// date (maintenance, lockdown). Matches are routine removals, logged at
// debug.
func FilterExclusionDates(candidates []SessionCandidate, exclusions []time.Time, logger *logging.Logger) ([]SessionCandidate, int) {
	if logger == nil {
		logger = logging.Default()
	}
	if len(exclusions) == 0 {
		return candidates, 0
	}

	excluded := make(map[time.Time]struct{}, len(exclusions))
	for _, d := range exclusions {
		excluded[DateOnly(d)] = struct{}{}
	}

	kept := make([]SessionCandidate, 0, len(candidates))
	dropped := 0
	for _, c := range candidates {
		if _, ok := excluded[DateOnly(c.Date)]; ok {
			dropped++
			logger.Debug("session candidate removed by exclusion date",
				"session_template_ref", c.SessionTemplateRef,
				"date", DateOnly(c.Date).Format(time.DateOnly),
			)
			continue
		}
		kept = append(kept, c)
	}
	return kept, dropped
}

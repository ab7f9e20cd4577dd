package availability

import (
	"context"
	"sync"

	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/pkg/logging"
)

// ReviewSignal decides whether generated sessions require manual staff review
// before being offered. Either an allow-listed active prisoner alert or an
// allow-listed active visitor restriction is sufficient on its own.
type ReviewSignal struct {
	alerts           AlertSource
	visitors         VisitorRestrictionSource
	alertCodes       map[string]struct{}
	restrictionTypes []string
	logger           *logging.Logger
}

// NewReviewSignal builds the review signal from its two collaborators and the
// configured allow-lists.
func NewReviewSignal(alerts AlertSource, visitors VisitorRestrictionSource, alertCodes, restrictionTypes []string, logger *logging.Logger) *ReviewSignal {
	if alerts == nil {
		panic("availability: alert source required")
	}
	if visitors == nil {
		panic("availability: visitor restriction source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	codes := make(map[string]struct{}, len(alertCodes))
	for _, c := range alertCodes {
		codes[c] = struct{}{}
	}
	return &ReviewSignal{
		alerts:           alerts,
		visitors:         visitors,
		alertCodes:       codes,
		restrictionTypes: restrictionTypes,
		logger:           logger,
	}
}

// IsReviewActive fans out the alert and visitor-restriction lookups and joins
// them. A failure in either lookup fails the whole signal: silently defaulting
// to "no review" would surface sessions staff were meant to vet.
func (s *ReviewSignal) IsReviewActive(ctx context.Context, prisonerID string, visitorIDs []string) Lookup[bool] {
	var (
		wg            sync.WaitGroup
		alertLookup   Lookup[[]string]
		visitorLookup Lookup[bool]
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		alertLookup = s.alerts.ActiveAlertCodes(ctx, prisonerID)
	}()

	if len(visitorIDs) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			visitorLookup = s.visitors.HaveReviewRestriction(ctx, prisonerID, visitorIDs, s.restrictionTypes)
		}()
	} else {
		visitorLookup = Found(false)
	}

	wg.Wait()

	alertHit := false
	for _, code := range alertLookup.ValueOr(nil) {
		if _, ok := s.alertCodes[code]; ok {
			alertHit = true
			break
		}
	}
	if alertHit || visitorLookup.ValueOr(false) {
		s.logger.Info("review condition active",
			"prisoner_id", prisonerID,
			"alert_triggered", alertHit,
			"visitor_restriction_triggered", visitorLookup.ValueOr(false),
		)
		return Found(true)
	}
	if err := alertLookup.Err(); err != nil {
		return Failed[bool](err)
	}
	if err := visitorLookup.Err(); err != nil {
		return Failed[bool](err)
	}
	return Found(false)
}

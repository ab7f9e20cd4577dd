package availability

import (
	"context"
	"time"
)

// SessionSource supplies raw candidate slots from the external session
// template authority. NotFound means the prison has no template coverage for
// the requested window ("no valid range"), which the orchestrator treats as
// an empty result rather than an error.
type SessionSource interface {
	CandidateSessions(ctx context.Context, prisonCode string, window DateRange, restriction Restriction) Lookup[[]SessionCandidate]
}

// PrisonSource supplies the prison's booking notice-day policy.
type PrisonSource interface {
	Prison(ctx context.Context, prisonCode string) Lookup[Prison]
}

// PrisonerRestrictionSource answers whether the prisoner has an active
// closed-type visiting restriction. NotFound and Found(false) both mean no
// restriction; absence of data is never read as CLOSED.
type PrisonerRestrictionSource interface {
	HasClosedRestriction(ctx context.Context, prisonerID string) Lookup[bool]
}

// VisitorRestrictionSource answers restriction questions about a set of
// approved visitors.
type VisitorRestrictionSource interface {
	// HaveClosedRestriction reports whether any supplied visitor has an
	// active closed-type restriction.
	HaveClosedRestriction(ctx context.Context, prisonerID string, visitorIDs []string) Lookup[bool]

	// HaveReviewRestriction reports whether any supplied visitor has an
	// active restriction of one of the given review-triggering types.
	HaveReviewRestriction(ctx context.Context, prisonerID string, visitorIDs []string, restrictionTypes []string) Lookup[bool]

	// BannedRangeIntersection returns the tightest sub-range of window in
	// which booking remains legal given any visitor ban. NotFound means no
	// ban constrains the window. A Found range that no longer overlaps the
	// window means booking is impossible.
	BannedRangeIntersection(ctx context.Context, prisonerID string, visitorIDs []string, window DateRange) Lookup[DateRange]
}

// AppointmentSource supplies the prisoner's scheduled events over a window.
type AppointmentSource interface {
	ScheduledEvents(ctx context.Context, prisonerID string, window DateRange) Lookup[[]AppointmentEvent]
}

// ExclusionSource supplies prison-wide closure dates. Best-effort: a failure
// degrades to no exclusions.
type ExclusionSource interface {
	ExclusionDates(ctx context.Context, prisonCode, sessionTemplateRef string) Lookup[[]time.Time]
}

// HolidaySource supplies England & Wales bank holidays. Best-effort: a
// failure degrades to an empty set.
type HolidaySource interface {
	BankHolidays(ctx context.Context) Lookup[[]BankHoliday]
}

// AlertSource supplies the prisoner's active alert codes.
type AlertSource interface {
	ActiveAlertCodes(ctx context.Context, prisonerID string) Lookup[[]string]
}

// ReviewSignalSource answers whether a manual-review condition is active for
// the prisoner/visitor pairing.
type ReviewSignalSource interface {
	IsReviewActive(ctx context.Context, prisonerID string, visitorIDs []string) Lookup[bool]
}

// Package availability decides which visit session slots a prisoner and their
// visitors can actually book. It resolves the OPEN/CLOSED visiting condition,
// computes the legal booking window, and strips or flags candidate slots that
// clash with higher-priority appointments, prison closure dates, or an active
// manual-review condition.
package availability

import "time"

// Restriction is the visiting condition a session is held under.
type Restriction string

const (
	RestrictionOpen   Restriction = "OPEN"
	RestrictionClosed Restriction = "CLOSED"
)

// ParseRestriction maps a wire value onto a Restriction.
func ParseRestriction(s string) (Restriction, bool) {
	switch Restriction(s) {
	case RestrictionOpen:
		return RestrictionOpen, true
	case RestrictionClosed:
		return RestrictionClosed, true
	}
	return "", false
}

// SessionCandidate is one potential visit slot as returned by the session
// template source, before any filtering.
type SessionCandidate struct {
	SessionTemplateRef string
	Date               time.Time
	Start              time.Time
	End                time.Time
	Restriction        Restriction
}

// AvailableVisitSession is a slot that survived filtering and may be offered
// to the booker.
type AvailableVisitSession struct {
	SessionTemplateRef string
	Date               time.Time
	Start              time.Time
	End                time.Time
	Restriction        Restriction
	SessionForReview   bool
}

// DateRange is an inclusive date window.
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsValid reports whether the range contains at least one day.
func (r DateRange) IsValid() bool {
	return !r.From.IsZero() && !r.To.IsZero() && !r.From.After(r.To)
}

// Contains reports whether d (date component) falls inside the range.
func (r DateRange) Contains(d time.Time) bool {
	day := DateOnly(d)
	return !day.Before(DateOnly(r.From)) && !day.After(DateOnly(r.To))
}

// Intersect clamps the range to another. The result may be invalid when the
// two do not overlap.
func (r DateRange) Intersect(o DateRange) DateRange {
	out := r
	if o.From.After(out.From) {
		out.From = o.From
	}
	if o.To.Before(out.To) {
		out.To = o.To
	}
	return out
}

// Prison carries the booking policy configured for a prison by the
// scheduling authority.
type Prison struct {
	Code                string
	PolicyNoticeDaysMin int
	PolicyNoticeDaysMax int
}

// AppointmentEvent is a prisoner's scheduled event as reported upstream.
// Start/End are zero when the event has no recorded time, which means it
// spans the whole day.
type AppointmentEvent struct {
	EventID      int64
	EventType    string
	EventSubType string
	Date         time.Time
	Start        time.Time
	End          time.Time
}

// BankHoliday is a public holiday for the England & Wales division.
type BankHoliday struct {
	Date  time.Time
	Title string
}

// Request is the input to an availability computation.
type Request struct {
	PrisonCode       string
	PrisonerID       string
	VisitorIDs       []string
	Requested        *Restriction
	AppointmentCheck bool
}

// DateOnly truncates a timestamp to its UTC date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

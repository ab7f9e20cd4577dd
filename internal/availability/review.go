package availability

import (
	"time"

	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/pkg/logging"
)

// AnnotateReview produces the final session records. When no review condition
// is active every candidate passes through with SessionForReview=false. When
// a review condition is active, weekend slots are never bookable and any bank
// holiday inside the remaining candidate span makes dates up to and including
// the holiday (extended by holidayBufferDays) unavailable. Returns the
// surviving sessions and the weekend/holiday drop counts.
func AnnotateReview(candidates []SessionCandidate, reviewActive bool, holidays []BankHoliday, holidayBufferDays int, logger *logging.Logger) ([]AvailableVisitSession, int, int) {
	if logger == nil {
		logger = logging.Default()
	}

	if !reviewActive {
		out := make([]AvailableVisitSession, 0, len(candidates))
		for _, c := range candidates {
			out = append(out, toSession(c, false))
		}
		return out, 0, 0
	}

	weekdays := make([]SessionCandidate, 0, len(candidates))
	weekendDropped := 0
	for _, c := range candidates {
		switch DateOnly(c.Date).Weekday() {
		case time.Saturday, time.Sunday:
			weekendDropped++
			logger.Debug("session candidate removed: weekend under review",
				"session_template_ref", c.SessionTemplateRef,
				"date", DateOnly(c.Date).Format(time.DateOnly),
			)
		default:
			weekdays = append(weekdays, c)
		}
	}
	if len(weekdays) == 0 {
		return []AvailableVisitSession{}, weekendDropped, 0
	}

	cutoff := holidayCutoff(weekdays, holidays, holidayBufferDays)

	out := make([]AvailableVisitSession, 0, len(weekdays))
	holidayDropped := 0
	for _, c := range weekdays {
		if !cutoff.IsZero() && !DateOnly(c.Date).After(cutoff) {
			holidayDropped++
			logger.Debug("session candidate removed: bank holiday window under review",
				"session_template_ref", c.SessionTemplateRef,
				"date", DateOnly(c.Date).Format(time.DateOnly),
				"cutoff", cutoff.Format(time.DateOnly),
			)
			continue
		}
		out = append(out, toSession(c, true))
	}
	return out, weekendDropped, holidayDropped
}

// holidayCutoff finds the latest holiday falling inside the candidate span
// and returns the last unavailable date it implies. Zero when no holiday
// lands in the span.
func holidayCutoff(candidates []SessionCandidate, holidays []BankHoliday, bufferDays int) time.Time {
	span := DateRange{From: DateOnly(candidates[0].Date), To: DateOnly(candidates[0].Date)}
	for _, c := range candidates[1:] {
		day := DateOnly(c.Date)
		if day.Before(span.From) {
			span.From = day
		}
		if day.After(span.To) {
			span.To = day
		}
	}

	var cutoff time.Time
	for _, h := range holidays {
		if !span.Contains(h.Date) {
			continue
		}
		c := DateOnly(h.Date).AddDate(0, 0, bufferDays)
		if c.After(cutoff) {
			cutoff = c
		}
	}
	return cutoff
}

func toSession(c SessionCandidate, forReview bool) AvailableVisitSession {
	return AvailableVisitSession{
		SessionTemplateRef: c.SessionTemplateRef,
		Date:               c.Date,
		Start:              c.Start,
		End:                c.End,
		Restriction:        c.Restriction,
		SessionForReview:   forReview,
	}
}

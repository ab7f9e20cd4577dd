package availability

import (
	"time"

	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/pkg/logging"
)

// appointmentEventType is the scheduled-event type that participates in
// conflict checks; sub-types narrow it to medical/legal events that outrank
// a social visit.
const appointmentEventType = "APP"

// HigherPriorityEvents narrows scheduled events to appointment events whose
// sub-type is in the configured higher-priority set.
func HigherPriorityEvents(events []AppointmentEvent, subTypes map[string]struct{}) []AppointmentEvent {
	out := make([]AppointmentEvent, 0, len(events))
	for _, e := range events {
		if e.EventType != appointmentEventType {
			continue
		}
		if _, ok := subTypes[e.EventSubType]; ok {
			out = append(out, e)
		}
	}
	return out
}

// window returns the appointment's effective time interval. Missing start or
// end times widen the interval to the whole day.
func (e AppointmentEvent) window() (time.Time, time.Time) {
	start, end := e.Start, e.End
	day := DateOnly(e.Date)
	if start.IsZero() {
		start = day
	}
	if end.IsZero() {
		end = day.AddDate(0, 0, 1)
	}
	return start, end
}

// overlapsAppointment applies the interval rule for a slot [s,t) against an
// appointment [a,b): slot start inside the appointment, slot end inside the
// appointment, or appointment fully inside the slot.
func overlapsAppointment(c SessionCandidate, e AppointmentEvent) bool {
	a, b := e.window()
	s, t := c.Start, c.End
	if !s.Before(a) && s.Before(b) {
		return true
	}
	if t.After(a) && !t.After(b) {
		return true
	}
	return !a.Before(s) && !b.After(t)
}

// FilterAppointmentConflicts drops candidates that overlap a higher-priority
// appointment on the same date. Drops are routine, logged for operational
// visibility, never an error. Events must already be narrowed by
// HigherPriorityEvents.
func FilterAppointmentConflicts(candidates []SessionCandidate, events []AppointmentEvent, logger *logging.Logger) ([]SessionCandidate, int) {
	if logger == nil {
		logger = logging.Default()
	}
	if len(events) == 0 {
		return candidates, 0
	}

	byDate := make(map[time.Time][]AppointmentEvent, len(events))
	for _, e := range events {
		day := DateOnly(e.Date)
		byDate[day] = append(byDate[day], e)
	}

	kept := make([]SessionCandidate, 0, len(candidates))
	dropped := 0
	for _, c := range candidates {
		var clashes []int64
		for _, e := range byDate[DateOnly(c.Date)] {
			if overlapsAppointment(c, e) {
				clashes = append(clashes, e.EventID)
			}
		}
		if len(clashes) == 0 {
			kept = append(kept, c)
			continue
		}
		dropped++
		logger.Info("session candidate removed by appointment clash",
			"session_template_ref", c.SessionTemplateRef,
			"date", DateOnly(c.Date).Format(time.DateOnly),
			"clashing_events", clashes,
			"clash_count", len(clashes),
		)
	}
	return kept, dropped
}

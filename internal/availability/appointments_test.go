package availability

import (
	"testing"
	"time"
)

func at(d time.Time, clock string) time.Time {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		panic(err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)
}

func slot(d time.Time, from, to string) SessionCandidate {
	return SessionCandidate{
		SessionTemplateRef: "tmpl-a",
		Date:               d,
		Start:              at(d, from),
		End:                at(d, to),
		Restriction:        RestrictionOpen,
	}
}

func appt(d time.Time, from, to, subType string, id int64) AppointmentEvent {
	e := AppointmentEvent{EventID: id, EventType: "APP", EventSubType: subType, Date: d}
	if from != "" {
		e.Start = at(d, from)
	}
	if to != "" {
		e.End = at(d, to)
	}
	return e
}

var prioritySubTypes = map[string]struct{}{
	"MEDE": {}, "MEDO": {}, "MEOT": {}, "VLB": {},
}

func TestHigherPriorityEvents(t *testing.T) {
	d := day(2026, time.September, 10)
	events := []AppointmentEvent{
		appt(d, "09:00", "10:00", "MEOT", 1),
		appt(d, "09:00", "10:00", "GYM", 2),
		{EventID: 3, EventType: "PRISON_ACT", EventSubType: "MEOT", Date: d},
		appt(d, "", "", "VLB", 4),
	}
	got := HigherPriorityEvents(events, prioritySubTypes)
	if len(got) != 2 {
		t.Fatalf("expected 2 higher-priority events, got %d", len(got))
	}
	if got[0].EventID != 1 || got[1].EventID != 4 {
		t.Fatalf("unexpected events kept: %+v", got)
	}
}

func TestFilterAppointmentConflictsOverlapRule(t *testing.T) {
	d := day(2026, time.September, 10)
	tests := []struct {
		name string
		appt AppointmentEvent
		drop bool
	}{
		{"appointment fully inside slot", appt(d, "09:30", "09:45", "MEOT", 1), true},
		{"slot start inside appointment", appt(d, "08:30", "09:30", "MEDE", 2), true},
		{"slot end inside appointment", appt(d, "09:30", "10:30", "MEDO", 3), true},
		{"identical interval", appt(d, "09:00", "10:00", "VLB", 4), true},
		{"appointment starts at slot end", appt(d, "10:00", "11:00", "MEOT", 5), false},
		{"appointment ends at slot start", appt(d, "08:00", "09:00", "MEOT", 6), false},
		{"all-day appointment", appt(d, "", "", "MEOT", 7), true},
		{"missing end widens to end of day", appt(d, "09:55", "", "MEOT", 8), true},
		{"different date", appt(day(2026, time.September, 11), "09:00", "10:00", "MEOT", 9), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, dropped := FilterAppointmentConflicts([]SessionCandidate{slot(d, "09:00", "10:00")}, []AppointmentEvent{tt.appt}, nil)
			if tt.drop && (len(kept) != 0 || dropped != 1) {
				t.Fatalf("expected slot dropped, kept=%d dropped=%d", len(kept), dropped)
			}
			if !tt.drop && (len(kept) != 1 || dropped != 0) {
				t.Fatalf("expected slot kept, kept=%d dropped=%d", len(kept), dropped)
			}
		})
	}
}

func TestFilterAppointmentConflictsNoEvents(t *testing.T) {
	d := day(2026, time.September, 10)
	candidates := []SessionCandidate{slot(d, "09:00", "10:00"), slot(d, "14:00", "15:00")}
	kept, dropped := FilterAppointmentConflicts(candidates, nil, nil)
	if len(kept) != 2 || dropped != 0 {
		t.Fatalf("expected passthrough with no events, kept=%d dropped=%d", len(kept), dropped)
	}
}

func TestFilterAppointmentConflictsMixedSlots(t *testing.T) {
	d := day(2026, time.September, 10)
	candidates := []SessionCandidate{
		slot(d, "09:00", "10:00"),
		slot(d, "10:00", "11:00"),
		slot(d, "14:00", "15:00"),
	}
	events := []AppointmentEvent{appt(d, "09:30", "09:45", "MEOT", 1)}
	kept, dropped := FilterAppointmentConflicts(candidates, events, nil)
	if dropped != 1 || len(kept) != 2 {
		t.Fatalf("expected exactly the morning slot dropped, kept=%d dropped=%d", len(kept), dropped)
	}
	if kept[0].Start != at(d, "10:00") {
		t.Fatalf("unexpected first surviving slot: %+v", kept[0])
	}
}

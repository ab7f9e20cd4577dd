package availability

import (
	"testing"
	"time"
)

// Sept 2026: the 8th is a Tuesday, 12th/13th a weekend, 15th the next Tuesday.
func reviewWeekCandidates() []SessionCandidate {
	var out []SessionCandidate
	for d := 8; d <= 15; d++ {
		out = append(out, slot(day(2026, time.September, d), "10:00", "11:00"))
	}
	return out
}

func TestAnnotateReviewInactivePassthrough(t *testing.T) {
	candidates := reviewWeekCandidates()
	holidays := []BankHoliday{{Date: day(2026, time.September, 14), Title: "Test holiday"}}

	out, weekend, holiday := AnnotateReview(candidates, false, holidays, 0, nil)
	if weekend != 0 || holiday != 0 {
		t.Fatalf("inactive review must not drop, weekend=%d holiday=%d", weekend, holiday)
	}
	if len(out) != len(candidates) {
		t.Fatalf("expected all %d candidates, got %d", len(candidates), len(out))
	}
	for _, s := range out {
		if s.SessionForReview {
			t.Fatalf("inactive review must not flag sessions: %+v", s)
		}
	}
}

func TestAnnotateReviewWeekendsDropped(t *testing.T) {
	out, weekend, holiday := AnnotateReview(reviewWeekCandidates(), true, nil, 0, nil)
	if weekend != 2 {
		t.Fatalf("expected Saturday and Sunday dropped, got %d", weekend)
	}
	if holiday != 0 {
		t.Fatalf("no holidays supplied, got %d holiday drops", holiday)
	}
	for _, s := range out {
		wd := DateOnly(s.Date).Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("weekend slot survived review: %+v", s)
		}
		if !s.SessionForReview {
			t.Fatalf("surviving slot not flagged for review: %+v", s)
		}
	}
}

func TestAnnotateReviewHolidayPushesFirstSlot(t *testing.T) {
	holidays := []BankHoliday{{Date: day(2026, time.September, 14), Title: "Bank holiday Monday"}}

	out, weekend, holiday := AnnotateReview(reviewWeekCandidates(), true, holidays, 0, nil)
	if weekend != 2 {
		t.Fatalf("expected 2 weekend drops, got %d", weekend)
	}
	// Tue 8th..Fri 11th and Mon 14th all fall on or before the holiday.
	if holiday != 5 {
		t.Fatalf("expected 5 holiday-window drops, got %d", holiday)
	}
	if len(out) != 1 {
		t.Fatalf("expected a single surviving slot, got %d", len(out))
	}
	if !DateOnly(out[0].Date).Equal(day(2026, time.September, 15)) {
		t.Fatalf("first reviewable slot should be the Tuesday after the holiday, got %s", out[0].Date)
	}
	if !out[0].SessionForReview {
		t.Fatalf("surviving slot must be flagged for review")
	}
}

func TestAnnotateReviewHolidayBufferExtendsCutoff(t *testing.T) {
	holidays := []BankHoliday{{Date: day(2026, time.September, 14), Title: "Bank holiday Monday"}}

	out, _, _ := AnnotateReview(reviewWeekCandidates(), true, holidays, 1, nil)
	if len(out) != 0 {
		t.Fatalf("buffer of 1 day should consume the last Tuesday too, got %d slots", len(out))
	}
}

func TestAnnotateReviewHolidayOutsideSpanIgnored(t *testing.T) {
	holidays := []BankHoliday{
		{Date: day(2026, time.September, 7), Title: "before span"},
		{Date: day(2026, time.September, 21), Title: "after span"},
	}
	out, _, holiday := AnnotateReview(reviewWeekCandidates(), true, holidays, 0, nil)
	if holiday != 0 {
		t.Fatalf("holidays outside candidate span must not drop, got %d", holiday)
	}
	if len(out) != 6 {
		t.Fatalf("expected 6 weekday slots, got %d", len(out))
	}
}

func TestAnnotateReviewAllWeekend(t *testing.T) {
	candidates := []SessionCandidate{
		slot(day(2026, time.September, 12), "10:00", "11:00"),
		slot(day(2026, time.September, 13), "10:00", "11:00"),
	}
	out, weekend, _ := AnnotateReview(candidates, true, nil, 0, nil)
	if len(out) != 0 || weekend != 2 {
		t.Fatalf("all-weekend candidate set should empty out, got %d slots", len(out))
	}
}

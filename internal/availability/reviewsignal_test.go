package availability

import (
	"context"
	"errors"
	"testing"
)

type stubAlerts struct {
	lookup Lookup[[]string]
}

func (s stubAlerts) ActiveAlertCodes(context.Context, string) Lookup[[]string] { return s.lookup }

type stubVisitorRestrictions struct {
	closed Lookup[bool]
	review Lookup[bool]
	banned Lookup[DateRange]
}

func (s stubVisitorRestrictions) HaveClosedRestriction(context.Context, string, []string) Lookup[bool] {
	return s.closed
}

func (s stubVisitorRestrictions) HaveReviewRestriction(context.Context, string, []string, []string) Lookup[bool] {
	return s.review
}

func (s stubVisitorRestrictions) BannedRangeIntersection(context.Context, string, []string, DateRange) Lookup[DateRange] {
	return s.banned
}

func TestReviewSignalAlertCodeTriggers(t *testing.T) {
	sig := NewReviewSignal(
		stubAlerts{lookup: Found([]string{"XA", "UPIU"})},
		stubVisitorRestrictions{review: Found(false)},
		[]string{"UPIU", "RCDR"}, []string{"PREINF"}, nil,
	)
	got := sig.IsReviewActive(context.Background(), "A1234BC", []string{"1"})
	if !got.Found() || !got.Value() {
		t.Fatalf("expected review active on allow-listed alert, got %+v", got)
	}
}

func TestReviewSignalVisitorRestrictionTriggers(t *testing.T) {
	sig := NewReviewSignal(
		stubAlerts{lookup: Found([]string{"XA"})},
		stubVisitorRestrictions{review: Found(true)},
		[]string{"UPIU"}, []string{"PREINF"}, nil,
	)
	got := sig.IsReviewActive(context.Background(), "A1234BC", []string{"1"})
	if !got.Found() || !got.Value() {
		t.Fatalf("expected review active on visitor restriction, got %+v", got)
	}
}

func TestReviewSignalInactive(t *testing.T) {
	sig := NewReviewSignal(
		stubAlerts{lookup: Found([]string{"XA"})},
		stubVisitorRestrictions{review: Found(false)},
		[]string{"UPIU"}, []string{"PREINF"}, nil,
	)
	got := sig.IsReviewActive(context.Background(), "A1234BC", []string{"1"})
	if !got.Found() || got.Value() {
		t.Fatalf("expected review inactive, got %+v", got)
	}
}

func TestReviewSignalNoVisitorsSkipsVisitorLookup(t *testing.T) {
	sig := NewReviewSignal(
		stubAlerts{lookup: Found([]string{"RCDR"})},
		stubVisitorRestrictions{review: Failed[bool](errors.New("must not be called"))},
		[]string{"RCDR"}, []string{"PREINF"}, nil,
	)
	got := sig.IsReviewActive(context.Background(), "A1234BC", nil)
	if !got.Found() || !got.Value() {
		t.Fatalf("expected review active from alerts alone, got %+v", got)
	}
}

func TestReviewSignalLookupFailurePropagates(t *testing.T) {
	boom := errors.New("alerts api down")
	sig := NewReviewSignal(
		stubAlerts{lookup: Failed[[]string](boom)},
		stubVisitorRestrictions{review: Found(false)},
		[]string{"UPIU"}, []string{"PREINF"}, nil,
	)
	got := sig.IsReviewActive(context.Background(), "A1234BC", []string{"1"})
	if got.Err() == nil {
		t.Fatalf("expected failure to propagate, got %+v", got)
	}
}

func TestReviewSignalPositiveSignalOutranksOtherFailure(t *testing.T) {
	sig := NewReviewSignal(
		stubAlerts{lookup: Failed[[]string](errors.New("alerts api down"))},
		stubVisitorRestrictions{review: Found(true)},
		[]string{"UPIU"}, []string{"PREINF"}, nil,
	)
	got := sig.IsReviewActive(context.Background(), "A1234BC", []string{"1"})
	if !got.Found() || !got.Value() {
		t.Fatalf("a definite review signal should win over the other lookup failing, got %+v", got)
	}
}

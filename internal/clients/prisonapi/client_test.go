package prisonapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/availability"
)

func TestHasClosedRestriction(t *testing.T) {
	tests := []struct {
		name         string
		restrictions []map[string]any
		want         bool
	}{
		{
			name: "active closed restriction",
			restrictions: []map[string]any{
				{"restrictionType": "CLOSED", "active": true},
			},
			want: true,
		},
		{
			name: "inactive closed restriction ignored",
			restrictions: []map[string]any{
				{"restrictionType": "CLOSED", "active": false},
			},
			want: false,
		},
		{
			name: "other restriction types ignored",
			restrictions: []map[string]any{
				{"restrictionType": "BAN", "active": true},
				{"restrictionType": "CHILD", "active": true},
			},
			want: false,
		},
		{
			name:         "no restrictions",
			restrictions: []map[string]any{},
			want:         false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/offenders/A1234BC/offender-restrictions" {
					t.Fatalf("unexpected path %s", r.URL.Path)
				}
				if r.URL.Query().Get("activeRestrictionsOnly") != "true" {
					t.Fatalf("expected activeRestrictionsOnly=true")
				}
				_ = json.NewEncoder(w).Encode(map[string]any{
					"bookingId":            123,
					"offenderRestrictions": tt.restrictions,
				})
			}))
			defer ts.Close()

			got := NewClient(ts.URL, "token", nil).HasClosedRestriction(context.Background(), "A1234BC")
			if got.Err() != nil {
				t.Fatalf("HasClosedRestriction error: %v", got.Err())
			}
			if got.Value() != tt.want {
				t.Fatalf("HasClosedRestriction=%v want %v", got.Value(), tt.want)
			}
		})
	}
}

func TestHasClosedRestrictionUnknownPrisoner(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	got := NewClient(ts.URL, "", nil).HasClosedRestriction(context.Background(), "A9999ZZ")
	if !got.NotFound() {
		t.Fatalf("expected NotFound for unknown prisoner, got %+v", got)
	}
}

func TestScheduledEvents(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fromDate") != "2026-09-03" || r.URL.Query().Get("toDate") != "2026-09-29" {
			t.Fatalf("unexpected window %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				"eventId":      101,
				"eventType":    "APP",
				"eventSubType": "MEOT",
				"eventDate":    "2026-09-10",
				"startTime":    "2026-09-10T09:30:00",
				"endTime":      "2026-09-10T09:45:00",
			},
			{
				"eventId":      102,
				"eventType":    "APP",
				"eventSubType": "VLB",
				"eventDate":    "2026-09-11",
			},
		})
	}))
	defer ts.Close()

	window := availability.DateRange{
		From: time.Date(2026, time.September, 3, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, time.September, 29, 0, 0, 0, 0, time.UTC),
	}
	got := NewClient(ts.URL, "", nil).ScheduledEvents(context.Background(), "A1234BC", window)
	if got.Err() != nil {
		t.Fatalf("ScheduledEvents error: %v", got.Err())
	}
	events := got.Value()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Start.Hour() != 9 || events[0].Start.Minute() != 30 {
		t.Fatalf("unexpected start time: %+v", events[0])
	}
	if !events[1].Start.IsZero() || !events[1].End.IsZero() {
		t.Fatalf("timeless event should keep zero times: %+v", events[1])
	}
}

func TestScheduledEventsMalformedDate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"eventId": 1, "eventType": "APP", "eventSubType": "MEOT", "eventDate": "10/09/2026"},
		})
	}))
	defer ts.Close()

	window := availability.DateRange{
		From: time.Date(2026, time.September, 3, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, time.September, 29, 0, 0, 0, 0, time.UTC),
	}
	got := NewClient(ts.URL, "", nil).ScheduledEvents(context.Background(), "A1234BC", window)
	if got.Err() == nil {
		t.Fatalf("expected error for malformed event date")
	}
}

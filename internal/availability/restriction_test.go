package availability

import "testing"

func TestResolveRestriction(t *testing.T) {
	open := RestrictionOpen
	closed := RestrictionClosed
	tests := []struct {
		name           string
		prisonerClosed bool
		visitorClosed  bool
		requested      *Restriction
		want           Restriction
	}{
		{"prisoner closed wins over requested open", true, false, &open, RestrictionClosed},
		{"visitor closed wins over requested open", false, true, &open, RestrictionClosed},
		{"both closed", true, true, nil, RestrictionClosed},
		{"requested closed honoured", false, false, &closed, RestrictionClosed},
		{"requested open honoured", false, false, &open, RestrictionOpen},
		{"permissive default is open", false, false, nil, RestrictionOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRestriction(tt.prisonerClosed, tt.visitorClosed, tt.requested)
			if got != tt.want {
				t.Fatalf("ResolveRestriction()=%s want %s", got, tt.want)
			}
		})
	}
}

func TestParseRestriction(t *testing.T) {
	if r, ok := ParseRestriction("OPEN"); !ok || r != RestrictionOpen {
		t.Fatalf("expected OPEN to parse, got %s ok=%v", r, ok)
	}
	if r, ok := ParseRestriction("CLOSED"); !ok || r != RestrictionClosed {
		t.Fatalf("expected CLOSED to parse, got %s ok=%v", r, ok)
	}
	if _, ok := ParseRestriction("open"); ok {
		t.Fatalf("lowercase should not parse")
	}
	if _, ok := ParseRestriction(""); ok {
		t.Fatalf("empty should not parse")
	}
}

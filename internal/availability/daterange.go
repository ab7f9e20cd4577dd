package availability

import "time"

// BookableRange computes the inclusive window in which a visit may be booked
// under the prison's notice-day policy:
// [today+policyNoticeDaysMin, today+policyNoticeDaysMax].
func BookableRange(p Prison, today time.Time) DateRange {
	day := DateOnly(today)
	return DateRange{
		From: day.AddDate(0, 0, p.PolicyNoticeDaysMin),
		To:   day.AddDate(0, 0, p.PolicyNoticeDaysMax),
	}
}

// ConstrainRange clamps the base booking window to the legal sub-range left
// by a visitor ban. The second return is false when no bookable day remains.
func ConstrainRange(base, banConstraint DateRange) (DateRange, bool) {
	if !banConstraint.IsValid() {
		return DateRange{}, false
	}
	out := base.Intersect(banConstraint)
	if !out.IsValid() {
		return DateRange{}, false
	}
	return out, true
}

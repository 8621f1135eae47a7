package service

import "time"

// ResolveBillingDate returns the day in the given month a contract with the
// configured billing day is billed on. Days past the end of a short month
// clamp to the month's last day, so billing day 31 bills February on the
// 28th (or 29th).
func ResolveBillingDate(year int, month time.Month, billingDay int) time.Time {
	last := daysInMonth(year, month)
	day := billingDay
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DueOn reports whether a contract with the given billing day is due for a
// run executed on runDate.
func DueOn(runDate time.Time, billingDay int) bool {
	run := dateOnly(runDate)
	return !run.Before(ResolveBillingDate(run.Year(), run.Month(), billingDay))
}

// WithinMoveInGrace reports whether the contract started inside the billed
// month. New occupants had no opportunity to submit a meter reading, so the
// pending-meter advisory skips them; rent billing is unaffected.
func WithinMoveInGrace(contractStart, period time.Time) bool {
	return contractStart.Year() == period.Year() && contractStart.Month() == period.Month()
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

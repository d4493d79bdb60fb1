package sla

import "time"

// HoursBetween returns the wall-clock duration from t1 to t2 in fractional
// hours. A negative span indicates caller clock skew and clamps to 0 so
// dashboards stay resilient instead of erroring.
func HoursBetween(t1, t2 time.Time) float64 {
	hours := t2.Sub(t1).Hours()
	if hours < 0 {
		return 0
	}
	return hours
}

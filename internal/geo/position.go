package geo

import (
	"time"
)

// Fraction returns the clamped progress of now through the [start, end]
// window. A degenerate window resolves to 1 once start has passed.
func Fraction(now, start, end time.Time) float64 {
	if !now.After(start) {
		return 0
	}
	window := end.Sub(start)
	if window <= 0 {
		return 1
	}
	f := float64(now.Sub(start)) / float64(window)
	if f > 1 {
		return 1
	}
	return f
}

// PositionAt derives the display position of an in-transit vehicle at the
// given time. When route waypoints are available the position follows the
// route; otherwise it moves linearly from origin to destination. Purely
// derived from its inputs; no persisted state is touched.
func PositionAt(now, start, end time.Time, origin, dest Point, route *Route) Point {
	f := Fraction(now, start, end)
	if route != nil {
		return route.PointAt(f)
	}
	return Lerp(origin, dest, f)
}

package geo

import (
	"math"
	"time"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// RoutingFactor approximates road distance from great-circle distance.
	RoutingFactor = 1.3

	// AverageSpeedKmh is the assumed fleet travel speed.
	AverageSpeedKmh = 60.0

	// DepartureBuffer is added to a trip's ETA at creation time. It is not
	// applied to retrospective history durations.
	DepartureBuffer = 15 * time.Minute

	// MilesToKm converts a stored miles figure to kilometers.
	MilesToKm = 1.60934
)

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Haversine returns the great-circle distance between two points in
// kilometers.
func Haversine(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Estimate is a road distance and travel duration estimate. Either field
// may be nil when the inputs did not allow computing it.
type Estimate struct {
	DistanceKm *float64       `json:"distanceKm,omitempty"`
	Duration   *time.Duration `json:"duration,omitempty"`
}

// EstimateTrip estimates road distance and duration between two points for
// a trip being scheduled. The departure buffer is included.
func EstimateTrip(origin, dest Point) Estimate {
	est := EstimateLeg(origin, dest)
	buffered := *est.Duration + DepartureBuffer
	est.Duration = &buffered
	return est
}

// EstimateLeg estimates road distance and duration between two points
// without the departure buffer. Used for retrospective history durations.
func EstimateLeg(origin, dest Point) Estimate {
	km := Haversine(origin, dest) * RoutingFactor
	d := time.Duration(km / AverageSpeedKmh * float64(time.Hour))
	return Estimate{DistanceKm: &km, Duration: &d}
}

// Record carries whatever a stored trip row offers the estimator.
type Record struct {
	Origin        *Point
	Dest          *Point
	DistanceMiles *float64
	Start         *time.Time
	End           *time.Time
}

// EstimateRecord resolves an estimate from a stored record, walking the
// fallback ladder: coordinates, then a stored miles distance, then elapsed
// wall-clock time with distance left undefined, then nothing.
func EstimateRecord(rec Record) Estimate {
	if rec.Origin != nil && rec.Dest != nil {
		return EstimateLeg(*rec.Origin, *rec.Dest)
	}
	if rec.DistanceMiles != nil {
		km := *rec.DistanceMiles * MilesToKm
		d := time.Duration(km / AverageSpeedKmh * float64(time.Hour))
		return Estimate{DistanceKm: &km, Duration: &d}
	}
	if rec.Start != nil && rec.End != nil && rec.End.After(*rec.Start) {
		d := rec.End.Sub(*rec.Start)
		return Estimate{Duration: &d}
	}
	return Estimate{}
}

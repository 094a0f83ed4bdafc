package geo

import (
	"testing"
	"time"
)

const nairobiMombasa = `{"type":"LineString","coordinates":[[36.8219,-1.2921],[37.4512,-2.1103],[38.5606,-3.3963],[39.6682,-4.0435]]}`

func mustRoute(t *testing.T, geojson string) *Route {
	t.Helper()
	raw, err := ParseGeoJSONRoute(geojson)
	if err != nil {
		t.Fatalf("parse route: %v", err)
	}
	points, err := DecodeRoute(raw)
	if err != nil {
		t.Fatalf("decode route: %v", err)
	}
	r := NewRoute(points)
	if r == nil {
		t.Fatal("expected a route")
	}
	return r
}

func TestParseGeoJSONRouteRoundTrip(t *testing.T) {
	raw, err := ParseGeoJSONRoute(nairobiMombasa)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	points, err := DecodeRoute(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 waypoints, got %d", len(points))
	}
	// GeoJSON order is lng, lat; the decoded point must be lat, lng.
	if !almostEqual(points[0].Lat, -1.2921, 1e-9) || !almostEqual(points[0].Lng, 36.8219, 1e-9) {
		t.Fatalf("coordinate order wrong: %+v", points[0])
	}
}

func TestParseGeoJSONRouteRejectsNonLineString(t *testing.T) {
	if _, err := ParseGeoJSONRoute(`{"type":"Point","coordinates":[36.8,-1.3]}`); err == nil {
		t.Fatal("expected error for non-LineString geometry")
	}
}

func TestParseGeoJSONRouteEmpty(t *testing.T) {
	raw, err := ParseGeoJSONRoute("")
	if err != nil || raw != nil {
		t.Fatalf("expected nil, nil for empty input, got %v, %v", raw, err)
	}
}

func TestRouteEndpoints(t *testing.T) {
	r := mustRoute(t, nairobiMombasa)

	start := r.PointAt(0)
	if !almostEqual(start.Lat, -1.2921, 1e-9) || !almostEqual(start.Lng, 36.8219, 1e-9) {
		t.Fatalf("f=0 must be the first waypoint, got %+v", start)
	}
	end := r.PointAt(1)
	if !almostEqual(end.Lat, -4.0435, 1e-9) || !almostEqual(end.Lng, 39.6682, 1e-9) {
		t.Fatalf("f=1 must be the last waypoint, got %+v", end)
	}
}

func TestRoutePointAtClamps(t *testing.T) {
	r := mustRoute(t, nairobiMombasa)
	if got := r.PointAt(-0.5); got != r.PointAt(0) {
		t.Fatalf("f<0 must clamp to start, got %+v", got)
	}
	if got := r.PointAt(1.5); got != r.PointAt(1) {
		t.Fatalf("f>1 must clamp to end, got %+v", got)
	}
}

func TestRouteMidpointLiesOnRoute(t *testing.T) {
	r := mustRoute(t, nairobiMombasa)
	mid := r.PointAt(0.5)

	// Half the route length from the start must equal the distance walked
	// along the waypoints to the midpoint.
	walked := Haversine(r.points[0], r.points[1])
	walked += Haversine(r.points[1], mid)
	if !almostEqual(walked, r.LengthKm()/2, 0.5) {
		t.Fatalf("midpoint not halfway along route: walked %.2f, want %.2f", walked, r.LengthKm()/2)
	}
}

func TestZeroLengthRoute(t *testing.T) {
	p := Point{Lat: -1.2921, Lng: 36.8219}
	r := NewRoute([]Point{p, p})
	if r.LengthKm() != 0 {
		t.Fatalf("expected zero length, got %f", r.LengthKm())
	}
	if got := r.PointAt(0.7); got != p {
		t.Fatalf("zero-length route must return first point, got %+v", got)
	}
}

func TestNewRouteEmpty(t *testing.T) {
	if r := NewRoute(nil); r != nil {
		t.Fatal("expected nil route for no waypoints")
	}
}

func TestLerp(t *testing.T) {
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 2, Lng: 4}
	got := Lerp(a, b, 0.25)
	if !almostEqual(got.Lat, 0.5, 1e-9) || !almostEqual(got.Lng, 1, 1e-9) {
		t.Fatalf("unexpected lerp result: %+v", got)
	}
}

func TestFractionClamping(t *testing.T) {
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	cases := []struct {
		now  time.Time
		want float64
	}{
		{start.Add(-time.Hour), 0},
		{start, 0},
		{start.Add(30 * time.Minute), 0.25},
		{start.Add(time.Hour), 0.5},
		{end, 1},
		{end.Add(time.Hour), 1},
	}
	for _, tc := range cases {
		if got := Fraction(tc.now, start, end); !almostEqual(got, tc.want, 1e-9) {
			t.Errorf("Fraction(%v) = %f, want %f", tc.now, got, tc.want)
		}
	}
}

func TestFractionDegenerateWindow(t *testing.T) {
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	if got := Fraction(start.Add(time.Second), start, start); got != 1 {
		t.Fatalf("degenerate window after start must be 1, got %f", got)
	}
	if got := Fraction(start.Add(-time.Second), start, start); got != 0 {
		t.Fatalf("degenerate window before start must be 0, got %f", got)
	}
}

func TestPositionAtFallsBackToLerp(t *testing.T) {
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	origin := Point{Lat: 0, Lng: 0}
	dest := Point{Lat: 1, Lng: 1}

	got := PositionAt(start.Add(30*time.Minute), start, end, origin, dest, nil)
	if !almostEqual(got.Lat, 0.5, 1e-9) || !almostEqual(got.Lng, 0.5, 1e-9) {
		t.Fatalf("expected linear midpoint, got %+v", got)
	}
}

func TestPositionAtFollowsRoute(t *testing.T) {
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	r := mustRoute(t, nairobiMombasa)

	got := PositionAt(end, start, end, Point{}, Point{}, r)
	want := r.PointAt(1)
	if got != want {
		t.Fatalf("expected route endpoint %+v, got %+v", want, got)
	}
}

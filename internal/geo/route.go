package geo

import (
	"encoding/binary"
	"errors"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

var errNotLineString = errors.New("route geometry is not a LineString")

// ParseGeoJSONRoute parses a GeoJSON LineString into WKB bytes for storage.
// Empty input yields nil bytes.
func ParseGeoJSONRoute(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, err
	}
	if _, ok := g.(*geom.LineString); !ok {
		return nil, errNotLineString
	}
	return wkb.Marshal(g, binary.LittleEndian)
}

// RouteToGeoJSON converts stored WKB bytes back into a GeoJSON string for
// API responses.
func RouteToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeRoute extracts ordered waypoints from stored WKB route geometry.
func DecodeRoute(wkbBytes []byte) ([]Point, error) {
	if len(wkbBytes) == 0 {
		return nil, nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return nil, err
	}
	ls, ok := g.(*geom.LineString)
	if !ok {
		return nil, errNotLineString
	}
	coords := ls.Coords()
	points := make([]Point, 0, len(coords))
	for _, c := range coords {
		// GeoJSON coordinate order is lng, lat.
		points = append(points, Point{Lat: c.Y(), Lng: c.X()})
	}
	return points, nil
}

// Route is an ordered sequence of waypoints with precomputed cumulative
// haversine segment lengths, ready for interpolation.
type Route struct {
	points []Point
	cum    []float64 // cum[i] = km from points[0] to points[i]
	total  float64
}

// NewRoute builds a Route from waypoints. Nil is returned for fewer than
// one point.
func NewRoute(points []Point) *Route {
	if len(points) == 0 {
		return nil
	}
	cum := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		cum[i] = cum[i-1] + Haversine(points[i-1], points[i])
	}
	return &Route{points: points, cum: cum, total: cum[len(cum)-1]}
}

// LengthKm returns the total route length.
func (r *Route) LengthKm() float64 {
	return r.total
}

// PointAt returns the position at fraction f of the route's length.
// f is clamped to [0, 1]; a zero-length route returns the first point.
func (r *Route) PointAt(f float64) Point {
	if f <= 0 || r.total == 0 {
		return r.points[0]
	}
	if f >= 1 {
		return r.points[len(r.points)-1]
	}

	target := f * r.total
	// Find the segment holding the target cumulative distance.
	i := 1
	for i < len(r.cum) && r.cum[i] < target {
		i++
	}
	segLen := r.cum[i] - r.cum[i-1]
	if segLen == 0 {
		return r.points[i]
	}
	segFrac := (target - r.cum[i-1]) / segLen
	return Lerp(r.points[i-1], r.points[i], segFrac)
}

// Lerp interpolates linearly between two points.
func Lerp(a, b Point, f float64) Point {
	return Point{
		Lat: a.Lat + (b.Lat-a.Lat)*f,
		Lng: a.Lng + (b.Lng-a.Lng)*f,
	}
}

package models

import (
	"time"
)

// Trip statuses. Completed and cancelled are terminal: once reached, the
// reconciler never touches the trip again.
const (
	TripPending   = "pending"
	TripInTransit = "intransit"
	TripCompleted = "completed"
	TripCancelled = "cancelled"
)

// DefaultTripWindow is the window assumed for a trip created without an
// end time, both for map interpolation and for reconciliation.
const DefaultTripWindow = time.Hour

type Trip struct {
	ID                string     `json:"id" gorm:"primaryKey"`
	TruckID           string     `json:"truckId" gorm:"index"`
	DriverID          string     `json:"driverId" gorm:"index"`
	DriverName        string     `json:"driverName"`
	Origin            string     `json:"origin"`
	Destination       string     `json:"destination"`
	OriginLat         *float64   `json:"originLat,omitempty"`
	OriginLng         *float64   `json:"originLng,omitempty"`
	DestinationLat    *float64   `json:"destinationLat,omitempty"`
	DestinationLng    *float64   `json:"destinationLng,omitempty"`
	StartTime         time.Time  `json:"startTime"`
	EndTime           *time.Time `json:"endTime,omitempty"` // derived ETA
	TravelTimeSeconds int64      `json:"travelTimeSeconds"`
	Cargo             string     `json:"cargo"`
	CargoTons         float64    `json:"cargoTons"`
	Notes             string     `json:"notes"`
	// Route geometry at rest as WKB; GeoJSON LineString on the wire.
	RouteGeometry []byte    `json:"-" gorm:"type:blob"`
	Status        string    `json:"status" gorm:"index"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Terminal reports whether the trip has reached a final state.
func (t *Trip) Terminal() bool {
	return t.Status == TripCompleted || t.Status == TripCancelled
}

// EffectiveEnd returns the trip end time, falling back to the default
// one-hour window when none was recorded.
func (t *Trip) EffectiveEnd() time.Time {
	if t.EndTime != nil {
		return *t.EndTime
	}
	return t.StartTime.Add(DefaultTripWindow)
}

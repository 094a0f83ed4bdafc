package models

import (
	"time"
)

// TripHistory is a denormalized snapshot of a trip taken when it reaches a
// terminal state. Not foreign-key linked; the source trip may be deleted
// afterwards without touching the archive.
type TripHistory struct {
	ID              string    `json:"id" gorm:"primaryKey"` // uuid
	TripID          string    `json:"tripId" gorm:"index"`
	TruckID         string    `json:"truckId"`
	DriverID        string    `json:"driverId"`
	DriverName      string    `json:"driverName"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	DurationSeconds int64     `json:"durationSeconds"`
	DistanceKm      *float64  `json:"distanceKm,omitempty"`
	Cargo           string    `json:"cargo"`
	CargoTons       float64   `json:"cargoTons"`
	Status          string    `json:"status"`
	ArchivedAt      time.Time `json:"archivedAt"`
}

// DriverTripHistory is the per-driver view of the same snapshot.
type DriverTripHistory struct {
	ID              string    `json:"id" gorm:"primaryKey"` // uuid
	DriverID        string    `json:"driverId" gorm:"index"`
	DriverName      string    `json:"driverName"`
	TripID          string    `json:"tripId"`
	TruckID         string    `json:"truckId"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	DurationSeconds int64     `json:"durationSeconds"`
	DistanceKm      *float64  `json:"distanceKm,omitempty"`
	Status          string    `json:"status"`
	ArchivedAt      time.Time `json:"archivedAt"`
}

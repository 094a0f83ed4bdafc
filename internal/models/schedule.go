package models

import (
	"time"
)

// TruckSchedule blocks out a truck for a window of time.
type TruckSchedule struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	TruckID   string    `json:"truckId" gorm:"index"`
	Title     string    `json:"title"`
	CargoTons float64   `json:"cargoTons"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DriverSchedule blocks out a driver for a window of time.
type DriverSchedule struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	DriverID  string    `json:"driverId" gorm:"index"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ScheduledMaintenance is a planned service item for a truck.
type ScheduledMaintenance struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	TruckID   string    `json:"truckId" gorm:"index"`
	Type      string    `json:"type"`
	DueDate   time.Time `json:"dueDate"`
	Notes     string    `json:"notes"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DriverDocument is an uploaded credential attached to a driver.
type DriverDocument struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	DriverID   string     `json:"driverId" gorm:"index"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	FileURL    string     `json:"fileUrl"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

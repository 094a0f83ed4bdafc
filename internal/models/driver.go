package models

import (
	"time"
)

// Driver statuses. A driver with an assigned vehicle must be in assigned,
// driving or pending; off-duty and inactive drivers carry no vehicle.
const (
	DriverAvailable = "available"
	DriverPending   = "pending"
	DriverAssigned  = "assigned"
	DriverDriving   = "driving"
	DriverOffDuty   = "off-duty"
	DriverInactive  = "inactive"
)

type Driver struct {
	ID              string     `json:"id" gorm:"primaryKey"`
	Name            string     `json:"name"`
	LicenseNumber   string     `json:"licenseNumber" gorm:"uniqueIndex"` // digits formatted XXXX-XXX-XXXXX
	Email           string     `json:"email" gorm:"uniqueIndex"`
	Phone           string     `json:"phone"`
	Status          string     `json:"status"`
	LicenseType     string     `json:"licenseType"`
	LicenseExpiry   *time.Time `json:"licenseExpiry,omitempty"`
	DateOfBirth     *time.Time `json:"dateOfBirth,omitempty"`
	Address         string     `json:"address"`
	AssignedVehicle string     `json:"assignedVehicle" gorm:"index"` // truck id, empty when none
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

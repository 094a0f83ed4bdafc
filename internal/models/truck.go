package models

import (
	"time"
)

// Truck statuses. The reconciler never forces a truck back to "available";
// only an explicit unassignment does that.
const (
	TruckAvailable   = "available"
	TruckPending     = "pending"
	TruckAssigned    = "assigned"
	TruckInTransit   = "intransit"
	TruckMaintenance = "maintenance"
)

// UnassignedDriver is the placeholder kept in Truck.Driver when no driver
// is attached.
const UnassignedDriver = "Unassigned"

type Truck struct {
	ID              string     `json:"id" gorm:"primaryKey"`
	Name            string     `json:"name"`
	PlateNumber     string     `json:"plateNumber" gorm:"uniqueIndex"`
	Model           string     `json:"model"`
	Driver          string     `json:"driver"` // driver name reference, "Unassigned" when none
	FuelLevel       float64    `json:"fuelLevel"`
	LoadCapacity    float64    `json:"loadCapacity"` // tons
	FuelType        string     `json:"fuelType"`
	Status          string     `json:"status"`
	LastMaintenance *time.Time `json:"lastMaintenance,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// HasDriver reports whether a real driver reference is attached.
func (t *Truck) HasDriver() bool {
	return t.Driver != "" && t.Driver != UnassignedDriver
}

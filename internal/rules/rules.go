// Package rules gates driver/truck pairings and mutations so the fleet
// never ends up in an inconsistent state. Every check runs before any
// write; a violation leaves both records untouched.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"fleetops/internal/models"
)

var (
	ErrDriverNotAssignable = errors.New("driver cannot take a new vehicle in their current status")
	ErrTruckNotAssignable  = errors.New("truck cannot take a new driver in its current status")
	ErrUnassignBlocked     = errors.New("unassignment is blocked while the pairing is active")
	ErrActiveTrips         = errors.New("record has active trips and cannot be deleted")
	ErrOverCapacity        = errors.New("cargo tonnage exceeds the truck's load capacity")
	ErrUnknownStatus       = errors.New("not a recognized status")
	ErrStatusWhileAssigned = errors.New("status conflicts with the current assignment")
	ErrPlateInUse          = errors.New("plate number already in use")
	ErrLicenseInUse        = errors.New("license number already in use")
	ErrEmailInUse          = errors.New("email already in use")
	ErrPhoneInUse          = errors.New("phone number already in use")
)

// CanAssignDriver reports whether the driver may be given a new vehicle.
func CanAssignDriver(d models.Driver) error {
	switch d.Status {
	case models.DriverDriving, models.DriverOffDuty, models.DriverInactive, models.DriverPending:
		return fmt.Errorf("%w: driver %s is %s", ErrDriverNotAssignable, d.ID, d.Status)
	}
	return nil
}

// CanAssignTruck reports whether the truck may be given a new driver.
func CanAssignTruck(t models.Truck) error {
	switch t.Status {
	case models.TruckInTransit, models.TruckMaintenance, models.TruckPending:
		return fmt.Errorf("%w: truck %s is %s", ErrTruckNotAssignable, t.ID, t.Status)
	}
	return nil
}

// CanUnassign reports whether the truck/driver pairing may be dissolved.
func CanUnassign(t models.Truck, d models.Driver) error {
	if t.Status == models.TruckInTransit || t.Status == models.TruckPending {
		return fmt.Errorf("%w: truck %s is %s", ErrUnassignBlocked, t.ID, t.Status)
	}
	if d.Status == models.DriverPending {
		return fmt.Errorf("%w: driver %s is pending", ErrUnassignBlocked, d.ID)
	}
	return nil
}

// CheckTruckStatus validates a manual truck status change. A truck that
// still carries a driver reference can never be set back to available;
// only unassignment frees it.
func CheckTruckStatus(t models.Truck, status string) error {
	switch status {
	case models.TruckAvailable, models.TruckPending, models.TruckAssigned,
		models.TruckInTransit, models.TruckMaintenance:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	if status == models.TruckAvailable && t.HasDriver() {
		return fmt.Errorf("%w: truck %s still has driver %s", ErrStatusWhileAssigned, t.ID, t.Driver)
	}
	return nil
}

// CheckDriverStatus validates a manual driver status change. A driver
// holding a vehicle stays in assigned, driving or pending; anything else
// requires unassigning first.
func CheckDriverStatus(d models.Driver, status string) error {
	switch status {
	case models.DriverAvailable, models.DriverPending, models.DriverAssigned,
		models.DriverDriving, models.DriverOffDuty, models.DriverInactive:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	if d.AssignedVehicle != "" {
		switch status {
		case models.DriverAssigned, models.DriverDriving, models.DriverPending:
		default:
			return fmt.Errorf("%w: driver %s still holds %s", ErrStatusWhileAssigned, d.ID, d.AssignedVehicle)
		}
	}
	return nil
}

// CheckCargoWeight rejects cargo heavier than the truck's load capacity.
func CheckCargoWeight(tons float64, t models.Truck) error {
	if t.LoadCapacity > 0 && tons > t.LoadCapacity {
		return fmt.Errorf("%w: %.2ft > %.2ft on truck %s", ErrOverCapacity, tons, t.LoadCapacity, t.ID)
	}
	return nil
}

// CanDeleteTruck rejects deleting a truck that still has non-terminal trips.
func CanDeleteTruck(db *gorm.DB, truckID string) error {
	var count int64
	err := db.Model(&models.Trip{}).
		Where("truck_id = ? AND status NOT IN ?", truckID,
			[]string{models.TripCompleted, models.TripCancelled}).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: truck %s", ErrActiveTrips, truckID)
	}
	return nil
}

// CanDeleteDriver rejects deleting a driver that still has non-terminal trips.
func CanDeleteDriver(db *gorm.DB, driverID string) error {
	var count int64
	err := db.Model(&models.Trip{}).
		Where("driver_id = ? AND status NOT IN ?", driverID,
			[]string{models.TripCompleted, models.TripCancelled}).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: driver %s", ErrActiveTrips, driverID)
	}
	return nil
}

// CheckPlateUnique ensures no other truck carries the plate number.
func CheckPlateUnique(db *gorm.DB, plate, excludeID string) error {
	var count int64
	err := db.Model(&models.Truck{}).
		Where("plate_number = ? AND id <> ?", plate, excludeID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrPlateInUse, plate)
	}
	return nil
}

// CheckLicenseUnique ensures no other driver carries the license number.
func CheckLicenseUnique(db *gorm.DB, license, excludeID string) error {
	var count int64
	err := db.Model(&models.Driver{}).
		Where("license_number = ? AND id <> ?", license, excludeID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrLicenseInUse, license)
	}
	return nil
}

// CheckEmailUnique ensures no other driver uses the email address.
func CheckEmailUnique(db *gorm.DB, email, excludeID string) error {
	var count int64
	err := db.Model(&models.Driver{}).
		Where("LOWER(email) = LOWER(?) AND id <> ?", email, excludeID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrEmailInUse, email)
	}
	return nil
}

// CheckPhoneUnique ensures no other driver shares the phone's numeric
// suffix. Formatting differences (spaces, dashes, country prefixes) are
// ignored by comparing digit strings.
func CheckPhoneUnique(db *gorm.DB, phone, excludeID string) error {
	digits := PhoneDigits(phone)
	if digits == "" {
		return nil
	}
	var others []models.Driver
	if err := db.Select("id", "phone").Where("id <> ?", excludeID).Find(&others).Error; err != nil {
		return err
	}
	for _, o := range others {
		if PhoneSuffixMatch(digits, PhoneDigits(o.Phone)) {
			return fmt.Errorf("%w: %s (driver %s)", ErrPhoneInUse, phone, o.ID)
		}
	}
	return nil
}

// PhoneDigits strips everything but digits from a phone number.
func PhoneDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneSuffixMatch reports whether two digit strings refer to the same
// number, treating one as a country-prefixed form of the other. Numbers
// shorter than seven digits never match.
func PhoneSuffixMatch(a, b string) bool {
	if len(a) < 7 || len(b) < 7 {
		return false
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	return strings.HasSuffix(b, a)
}

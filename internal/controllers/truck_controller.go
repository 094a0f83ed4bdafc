package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fleetops/internal/bus"
	"fleetops/internal/models"
	"fleetops/internal/rules"
)

var plateFormat = regexp.MustCompile(`^[A-Z]{3}-\d{4}$`)

// ListTrucks returns every truck in the fleet.
func ListTrucks(c *gin.Context) {
	var trucks []models.Truck
	if err := db().Find(&trucks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing trucks: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": trucks})
}

// GetTruck fetches a single truck by id.
func GetTruck(c *gin.Context) {
	var truck models.Truck
	if err := db().First(&truck, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Truck not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch truck"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"truck": truck})
}

// CreateTruck registers a new truck. Uniqueness of the plate number is
// checked before any write happens.
func CreateTruck(c *gin.Context) {
	var input struct {
		ID              string     `json:"id"`
		Name            string     `json:"name" binding:"required"`
		PlateNumber     string     `json:"plateNumber" binding:"required"`
		Model           string     `json:"model"`
		FuelLevel       float64    `json:"fuelLevel"`
		LoadCapacity    float64    `json:"loadCapacity"`
		FuelType        string     `json:"fuelType"`
		LastMaintenance *time.Time `json:"lastMaintenance"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid truck input: " + err.Error()})
		return
	}

	if !plateFormat.MatchString(input.PlateNumber) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Plate number must match ABC-1234"})
		return
	}
	if err := rules.CheckPlateUnique(db(), input.PlateNumber, ""); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	id := input.ID
	if id == "" {
		id = nextID(db(), "trucks", "T")
	}
	truck := models.Truck{
		ID:              id,
		Name:            input.Name,
		PlateNumber:     input.PlateNumber,
		Model:           input.Model,
		Driver:          models.UnassignedDriver,
		FuelLevel:       input.FuelLevel,
		LoadCapacity:    input.LoadCapacity,
		FuelType:        input.FuelType,
		Status:          models.TruckAvailable,
		LastMaintenance: input.LastMaintenance,
	}

	if err := db().Create(&truck).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "plate number already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create truck: " + err.Error()})
		return
	}

	announce(bus.Trucks, "created", truck.ID, truck)
	c.JSON(http.StatusCreated, gin.H{"truck": truck})
}

// UpdateTruck applies a partial update.
func UpdateTruck(c *gin.Context) {
	var truck models.Truck
	if err := db().First(&truck, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Truck not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch truck"})
		return
	}

	var input struct {
		Name            *string    `json:"name"`
		PlateNumber     *string    `json:"plateNumber"`
		Model           *string    `json:"model"`
		FuelLevel       *float64   `json:"fuelLevel"`
		LoadCapacity    *float64   `json:"loadCapacity"`
		FuelType        *string    `json:"fuelType"`
		Status          *string    `json:"status"`
		LastMaintenance *time.Time `json:"lastMaintenance"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update: " + err.Error()})
		return
	}

	if input.PlateNumber != nil && *input.PlateNumber != truck.PlateNumber {
		if !plateFormat.MatchString(*input.PlateNumber) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Plate number must match ABC-1234"})
			return
		}
		if err := rules.CheckPlateUnique(db(), *input.PlateNumber, truck.ID); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		truck.PlateNumber = *input.PlateNumber
	}
	if input.Name != nil {
		truck.Name = *input.Name
	}
	if input.Model != nil {
		truck.Model = *input.Model
	}
	if input.FuelLevel != nil {
		truck.FuelLevel = *input.FuelLevel
	}
	if input.LoadCapacity != nil {
		truck.LoadCapacity = *input.LoadCapacity
	}
	if input.FuelType != nil {
		truck.FuelType = *input.FuelType
	}
	if input.Status != nil {
		if err := rules.CheckTruckStatus(truck, *input.Status); err != nil {
			if errors.Is(err, rules.ErrUnknownStatus) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			} else {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			}
			return
		}
		truck.Status = *input.Status
	}
	if input.LastMaintenance != nil {
		truck.LastMaintenance = input.LastMaintenance
	}

	if err := db().Save(&truck).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update truck: " + err.Error()})
		return
	}

	announce(bus.Trucks, "updated", truck.ID, truck)
	c.JSON(http.StatusOK, gin.H{"truck": truck})
}

// DeleteTruck removes a truck unless it still has active trips.
func DeleteTruck(c *gin.Context) {
	id := c.Param("id")
	var truck models.Truck
	if err := db().First(&truck, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Truck not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch truck"})
		return
	}

	if err := rules.CanDeleteTruck(db(), id); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	if err := db().Delete(&truck).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete truck: " + err.Error()})
		return
	}

	announce(bus.Trucks, "deleted", id, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Truck deleted"})
}

// AssignDriver pairs a driver with a truck. All eligibility gates must
// pass before either record is touched.
func AssignDriver(c *gin.Context) {
	var input struct {
		DriverID string `json:"driverId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var truck models.Truck
	if err := db().First(&truck, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Truck not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch truck"})
		return
	}
	var driver models.Driver
	if err := db().First(&driver, "id = ?", input.DriverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch driver"})
		return
	}

	if err := rules.CanAssignTruck(truck); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err := rules.CanAssignDriver(driver); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	tx := db().Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not start transaction"})
		return
	}
	truck.Driver = driver.Name
	truck.Status = models.TruckAssigned
	driver.AssignedVehicle = truck.ID
	driver.Status = models.DriverAssigned
	if err := tx.Save(&truck).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update truck: " + err.Error()})
		return
	}
	if err := tx.Save(&driver).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update driver: " + err.Error()})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not commit transaction: " + err.Error()})
		return
	}

	announce(bus.Trucks, "updated", truck.ID, truck)
	announce(bus.Drivers, "updated", driver.ID, driver)
	if Notifier != nil {
		Notifier.Emit(driver.ID, "assignment", "Vehicle assigned",
			"You have been assigned truck "+truck.ID+" ("+truck.PlateNumber+").",
			map[string]interface{}{"truck_id": truck.ID})
	}
	c.JSON(http.StatusOK, gin.H{"truck": truck, "driver": driver})
}

// UnassignDriver dissolves a truck/driver pairing. This is the only path
// back to "available" for both records; the reconciler never frees them.
func UnassignDriver(c *gin.Context) {
	var truck models.Truck
	if err := db().First(&truck, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Truck not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch truck"})
		return
	}

	var driver models.Driver
	err := db().First(&driver, "assigned_vehicle = ?", truck.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// No linked driver; just clear the truck side.
		truck.Driver = models.UnassignedDriver
		truck.Status = models.TruckAvailable
		if err := db().Save(&truck).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update truck: " + err.Error()})
			return
		}
		announce(bus.Trucks, "updated", truck.ID, truck)
		c.JSON(http.StatusOK, gin.H{"truck": truck})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch driver"})
		return
	}

	if err := rules.CanUnassign(truck, driver); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	tx := db().Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not start transaction"})
		return
	}
	truck.Driver = models.UnassignedDriver
	truck.Status = models.TruckAvailable
	driver.AssignedVehicle = ""
	driver.Status = models.DriverAvailable
	if err := tx.Save(&truck).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update truck: " + err.Error()})
		return
	}
	if err := tx.Save(&driver).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update driver: " + err.Error()})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not commit transaction: " + err.Error()})
		return
	}

	logrus.WithFields(logrus.Fields{
		"truck_id":  truck.ID,
		"driver_id": driver.ID,
	}).Info("Driver unassigned from truck.")

	announce(bus.Trucks, "updated", truck.ID, truck)
	announce(bus.Drivers, "updated", driver.ID, driver)
	c.JSON(http.StatusOK, gin.H{"truck": truck, "driver": driver})
}

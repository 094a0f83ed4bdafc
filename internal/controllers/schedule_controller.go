package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fleetops/internal/models"
	"fleetops/internal/rules"
)

// --- Truck schedules ---

func ListTruckSchedules(c *gin.Context) {
	var schedules []models.TruckSchedule
	q := db()
	if truckID := c.Query("truckId"); truckID != "" {
		q = q.Where("truck_id = ?", truckID)
	}
	if err := q.Find(&schedules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing truck schedules: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": schedules})
}

func CreateTruckSchedule(c *gin.Context) {
	var input struct {
		ID        string    `json:"id"`
		TruckID   string    `json:"truckId" binding:"required"`
		Title     string    `json:"title" binding:"required"`
		CargoTons float64   `json:"cargoTons"`
		StartDate time.Time `json:"startDate" binding:"required"`
		EndDate   time.Time `json:"endDate" binding:"required"`
		Notes     string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule input: " + err.Error()})
		return
	}

	var truck models.Truck
	if err := db().First(&truck, "id = ?", input.TruckID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Truck not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch truck"})
		return
	}
	// Scheduled cargo obeys the same capacity gate as trips.
	if err := rules.CheckCargoWeight(input.CargoTons, truck); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	id := input.ID
	if id == "" {
		id = nextID(db(), "truck_schedules", "TS")
	}
	schedule := models.TruckSchedule{
		ID:        id,
		TruckID:   input.TruckID,
		Title:     input.Title,
		CargoTons: input.CargoTons,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Notes:     input.Notes,
	}
	if err := db().Create(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create schedule: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"schedule": schedule})
}

func UpdateTruckSchedule(c *gin.Context) {
	var schedule models.TruckSchedule
	if err := db().First(&schedule, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch schedule"})
		return
	}
	if err := c.ShouldBindJSON(&schedule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update"})
		return
	}
	if err := db().Save(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update schedule: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

func DeleteTruckSchedule(c *gin.Context) {
	res := db().Delete(&models.TruckSchedule{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete schedule: " + res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted"})
}

// --- Driver schedules ---

func ListDriverSchedules(c *gin.Context) {
	var schedules []models.DriverSchedule
	q := db()
	if driverID := c.Query("driverId"); driverID != "" {
		q = q.Where("driver_id = ?", driverID)
	}
	if err := q.Find(&schedules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing driver schedules: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": schedules})
}

func CreateDriverSchedule(c *gin.Context) {
	var input struct {
		ID        string    `json:"id"`
		DriverID  string    `json:"driverId" binding:"required"`
		Title     string    `json:"title" binding:"required"`
		StartDate time.Time `json:"startDate" binding:"required"`
		EndDate   time.Time `json:"endDate" binding:"required"`
		Notes     string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule input: " + err.Error()})
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

	id := input.ID
	if id == "" {
		id = nextID(db(), "driver_schedules", "DS")
	}
	schedule := models.DriverSchedule{
		ID:        id,
		DriverID:  input.DriverID,
		Title:     input.Title,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Notes:     input.Notes,
	}
	if err := db().Create(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create schedule: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"schedule": schedule})
}

func UpdateDriverSchedule(c *gin.Context) {
	var schedule models.DriverSchedule
	if err := db().First(&schedule, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch schedule"})
		return
	}
	if err := c.ShouldBindJSON(&schedule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update"})
		return
	}
	if err := db().Save(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update schedule: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

func DeleteDriverSchedule(c *gin.Context) {
	res := db().Delete(&models.DriverSchedule{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete schedule: " + res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted"})
}

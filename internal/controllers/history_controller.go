package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleetops/internal/models"
)

// Trip history rows are normally written by the archiver when a trip
// completes; the endpoints below exist so operators can import, correct or
// prune archive records by hand.

// ListTripHistory returns archived trip snapshots, newest first.
func ListTripHistory(c *gin.Context) {
	var items []models.TripHistory
	q := db().Order("archived_at DESC")
	if truckID := c.Query("truckId"); truckID != "" {
		q = q.Where("truck_id = ?", truckID)
	}
	if err := q.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing trip history: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// CreateTripHistory inserts an archive row directly.
func CreateTripHistory(c *gin.Context) {
	var item models.TripHistory
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid history input: " + err.Error()})
		return
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.ArchivedAt.IsZero() {
		item.ArchivedAt = time.Now()
	}
	if err := db().Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trip history: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"history": item})
}

// UpdateTripHistory overwrites an archive row's editable fields.
func UpdateTripHistory(c *gin.Context) {
	var item models.TripHistory
	if err := db().First(&item, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip history not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trip history"})
		return
	}

	var input struct {
		DriverName  *string  `json:"driverName"`
		Origin      *string  `json:"origin"`
		Destination *string  `json:"destination"`
		Cargo       *string  `json:"cargo"`
		CargoTons   *float64 `json:"cargoTons"`
		DistanceKm  *float64 `json:"distanceKm"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update: " + err.Error()})
		return
	}
	if input.DriverName != nil {
		item.DriverName = *input.DriverName
	}
	if input.Origin != nil {
		item.Origin = *input.Origin
	}
	if input.Destination != nil {
		item.Destination = *input.Destination
	}
	if input.Cargo != nil {
		item.Cargo = *input.Cargo
	}
	if input.CargoTons != nil {
		item.CargoTons = *input.CargoTons
	}
	if input.DistanceKm != nil {
		item.DistanceKm = input.DistanceKm
	}

	if err := db().Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update trip history: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": item})
}

// DeleteTripHistory removes an archive row.
func DeleteTripHistory(c *gin.Context) {
	res := db().Delete(&models.TripHistory{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete trip history: " + res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip history not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trip history deleted"})
}

// ListDriverTripHistory returns the per-driver archive, newest first.
func ListDriverTripHistory(c *gin.Context) {
	var items []models.DriverTripHistory
	q := db().Order("archived_at DESC")
	if driverID := c.Query("driverId"); driverID != "" {
		q = q.Where("driver_id = ?", driverID)
	}
	if err := q.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing driver trip history: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// CreateDriverTripHistory inserts a per-driver archive row directly.
func CreateDriverTripHistory(c *gin.Context) {
	var item models.DriverTripHistory
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid history input: " + err.Error()})
		return
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.ArchivedAt.IsZero() {
		item.ArchivedAt = time.Now()
	}
	if err := db().Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create driver trip history: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"history": item})
}

// UpdateDriverTripHistory overwrites a per-driver archive row's editable fields.
func UpdateDriverTripHistory(c *gin.Context) {
	var item models.DriverTripHistory
	if err := db().First(&item, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver trip history not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch driver trip history"})
		return
	}

	var input struct {
		DriverName  *string  `json:"driverName"`
		Origin      *string  `json:"origin"`
		Destination *string  `json:"destination"`
		DistanceKm  *float64 `json:"distanceKm"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update: " + err.Error()})
		return
	}
	if input.DriverName != nil {
		item.DriverName = *input.DriverName
	}
	if input.Origin != nil {
		item.Origin = *input.Origin
	}
	if input.Destination != nil {
		item.Destination = *input.Destination
	}
	if input.DistanceKm != nil {
		item.DistanceKm = input.DistanceKm
	}

	if err := db().Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update driver trip history: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": item})
}

// DeleteDriverTripHistory removes a per-driver archive row.
func DeleteDriverTripHistory(c *gin.Context) {
	res := db().Delete(&models.DriverTripHistory{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete driver trip history: " + res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Driver trip history not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Driver trip history deleted"})
}

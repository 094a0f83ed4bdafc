package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fleetops/internal/bus"
	"fleetops/internal/models"
)

func ListMaintenances(c *gin.Context) {
	var items []models.ScheduledMaintenance
	q := db()
	if truckID := c.Query("truckId"); truckID != "" {
		q = q.Where("truck_id = ?", truckID)
	}
	if err := q.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing maintenance: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func CreateMaintenance(c *gin.Context) {
	var input struct {
		ID      string    `json:"id"`
		TruckID string    `json:"truckId" binding:"required"`
		Type    string    `json:"type" binding:"required"`
		DueDate time.Time `json:"dueDate" binding:"required"`
		Notes   string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maintenance input: " + err.Error()})
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

	id := input.ID
	if id == "" {
		id = nextID(db(), "scheduled_maintenances", "M")
	}
	item := models.ScheduledMaintenance{
		ID:      id,
		TruckID: input.TruckID,
		Type:    input.Type,
		DueDate: input.DueDate,
		Notes:   input.Notes,
	}
	if err := db().Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create maintenance: " + err.Error()})
		return
	}

	announce(bus.Maintenances, "created", item.ID, item)
	c.JSON(http.StatusCreated, gin.H{"maintenance": item})
}

// UpdateMaintenance marks completion or edits the plan. Completing a
// maintenance stamps the truck's lastMaintenance date.
func UpdateMaintenance(c *gin.Context) {
	var item models.ScheduledMaintenance
	if err := db().First(&item, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Maintenance not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch maintenance"})
		return
	}

	wasCompleted := item.Completed
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update"})
		return
	}
	if err := db().Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update maintenance: " + err.Error()})
		return
	}

	if item.Completed && !wasCompleted {
		now := time.Now()
		db().Model(&models.Truck{}).Where("id = ?", item.TruckID).
			Update("last_maintenance", &now)
		announce(bus.Trucks, "updated", item.TruckID, nil)
	}

	announce(bus.Maintenances, "updated", item.ID, item)
	c.JSON(http.StatusOK, gin.H{"maintenance": item})
}

func DeleteMaintenance(c *gin.Context) {
	id := c.Param("id")
	res := db().Delete(&models.ScheduledMaintenance{}, "id = ?", id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete maintenance: " + res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Maintenance not found"})
		return
	}
	announce(bus.Maintenances, "deleted", id, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Maintenance deleted"})
}

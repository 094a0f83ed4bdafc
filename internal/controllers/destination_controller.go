package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fleetops/internal/bus"
	"fleetops/internal/models"
)

func ListDestinations(c *gin.Context) {
	var destinations []models.Destination
	if err := db().Find(&destinations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing destinations: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": destinations})
}

func CreateDestination(c *gin.Context) {
	var input struct {
		ID      string   `json:"id"`
		Name    string   `json:"name" binding:"required"`
		Address string   `json:"address"`
		City    string   `json:"city"`
		State   string   `json:"state"`
		Type    string   `json:"type"`
		Lat     *float64 `json:"lat"`
		Lng     *float64 `json:"lng"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid destination input: " + err.Error()})
		return
	}

	id := input.ID
	if id == "" {
		id = nextID(db(), "destinations", "DEST")
	}
	dest := models.Destination{
		ID:      id,
		Name:    input.Name,
		Address: input.Address,
		City:    input.City,
		State:   input.State,
		Type:    input.Type,
		Lat:     input.Lat,
		Lng:     input.Lng,
	}
	if err := db().Create(&dest).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create destination: " + err.Error()})
		return
	}

	announce(bus.Destinations, "created", dest.ID, dest)
	c.JSON(http.StatusCreated, gin.H{"destination": dest})
}

func UpdateDestination(c *gin.Context) {
	var dest models.Destination
	if err := db().First(&dest, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Destination not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch destination"})
		return
	}

	if err := c.ShouldBindJSON(&dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update"})
		return
	}

	if err := db().Save(&dest).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update destination: " + err.Error()})
		return
	}
	announce(bus.Destinations, "updated", dest.ID, dest)
	c.JSON(http.StatusOK, gin.H{"destination": dest})
}

func DeleteDestination(c *gin.Context) {
	id := c.Param("id")
	var dest models.Destination
	if err := db().First(&dest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Destination not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch destination"})
		return
	}

	if err := db().Delete(&dest).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete destination: " + err.Error()})
		return
	}
	announce(bus.Destinations, "deleted", id, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Destination deleted"})
}

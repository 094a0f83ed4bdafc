package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fleetops/internal/models"
)

func ListDriverDocuments(c *gin.Context) {
	var docs []models.DriverDocument
	q := db()
	if driverID := c.Query("driverId"); driverID != "" {
		q = q.Where("driver_id = ?", driverID)
	}
	if err := q.Find(&docs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing documents: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": docs})
}

func CreateDriverDocument(c *gin.Context) {
	var input struct {
		ID         string     `json:"id"`
		DriverID   string     `json:"driverId" binding:"required"`
		Name       string     `json:"name" binding:"required"`
		Type       string     `json:"type"`
		FileURL    string     `json:"fileUrl"`
		ExpiryDate *time.Time `json:"expiryDate"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document input: " + err.Error()})
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
		id = nextID(db(), "driver_documents", "DOC")
	}
	doc := models.DriverDocument{
		ID:         id,
		DriverID:   input.DriverID,
		Name:       input.Name,
		Type:       input.Type,
		FileURL:    input.FileURL,
		ExpiryDate: input.ExpiryDate,
	}
	if err := db().Create(&doc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

func UpdateDriverDocument(c *gin.Context) {
	var doc models.DriverDocument
	if err := db().First(&doc, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch document"})
		return
	}
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update"})
		return
	}
	if err := db().Save(&doc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update document: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

func DeleteDriverDocument(c *gin.Context) {
	res := db().Delete(&models.DriverDocument{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document: " + res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

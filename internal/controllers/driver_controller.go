package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fleetops/internal/bus"
	"fleetops/internal/models"
	"fleetops/internal/rules"
)

var licenseFormat = regexp.MustCompile(`^\d{4}-\d{3}-\d{5}$`)

// ListDrivers returns every driver.
func ListDrivers(c *gin.Context) {
	var drivers []models.Driver
	if err := db().Find(&drivers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing drivers: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": drivers})
}

// GetDriver fetches a single driver by id.
func GetDriver(c *gin.Context) {
	var driver models.Driver
	if err := db().First(&driver, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch driver"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": driver})
}

// CreateDriver registers a new driver. License, email and phone uniqueness
// are all checked before any write.
func CreateDriver(c *gin.Context) {
	var input struct {
		ID            string     `json:"id"`
		Name          string     `json:"name" binding:"required"`
		LicenseNumber string     `json:"licenseNumber" binding:"required"`
		Email         string     `json:"email" binding:"required,email"`
		Phone         string     `json:"phone"`
		LicenseType   string     `json:"licenseType"`
		LicenseExpiry *time.Time `json:"licenseExpiry"`
		DateOfBirth   *time.Time `json:"dateOfBirth"`
		Address       string     `json:"address"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver input: " + err.Error()})
		return
	}

	if !licenseFormat.MatchString(input.LicenseNumber) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "License number must match XXXX-XXX-XXXXX"})
		return
	}
	if err := rules.CheckLicenseUnique(db(), input.LicenseNumber, ""); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err := rules.CheckEmailUnique(db(), input.Email, ""); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err := rules.CheckPhoneUnique(db(), input.Phone, ""); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	id := input.ID
	if id == "" {
		id = nextID(db(), "drivers", "D")
	}
	driver := models.Driver{
		ID:            id,
		Name:          input.Name,
		LicenseNumber: input.LicenseNumber,
		Email:         input.Email,
		Phone:         input.Phone,
		Status:        models.DriverAvailable,
		LicenseType:   input.LicenseType,
		LicenseExpiry: input.LicenseExpiry,
		DateOfBirth:   input.DateOfBirth,
		Address:       input.Address,
	}

	if err := db().Create(&driver).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "license number or email already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create driver: " + err.Error()})
		return
	}

	announce(bus.Drivers, "created", driver.ID, driver)
	c.JSON(http.StatusCreated, gin.H{"driver": driver})
}

// UpdateDriver applies a partial update.
func UpdateDriver(c *gin.Context) {
	var driver models.Driver
	if err := db().First(&driver, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch driver"})
		return
	}

	var input struct {
		Name          *string    `json:"name"`
		LicenseNumber *string    `json:"licenseNumber"`
		Email         *string    `json:"email"`
		Phone         *string    `json:"phone"`
		Status        *string    `json:"status"`
		LicenseType   *string    `json:"licenseType"`
		LicenseExpiry *time.Time `json:"licenseExpiry"`
		DateOfBirth   *time.Time `json:"dateOfBirth"`
		Address       *string    `json:"address"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update: " + err.Error()})
		return
	}

	if input.LicenseNumber != nil && *input.LicenseNumber != driver.LicenseNumber {
		if !licenseFormat.MatchString(*input.LicenseNumber) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "License number must match XXXX-XXX-XXXXX"})
			return
		}
		if err := rules.CheckLicenseUnique(db(), *input.LicenseNumber, driver.ID); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		driver.LicenseNumber = *input.LicenseNumber
	}
	if input.Email != nil && *input.Email != driver.Email {
		if err := rules.CheckEmailUnique(db(), *input.Email, driver.ID); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		driver.Email = *input.Email
	}
	if input.Phone != nil && *input.Phone != driver.Phone {
		if err := rules.CheckPhoneUnique(db(), *input.Phone, driver.ID); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		driver.Phone = *input.Phone
	}
	if input.Name != nil {
		driver.Name = *input.Name
	}
	if input.Status != nil {
		if err := rules.CheckDriverStatus(driver, *input.Status); err != nil {
			if errors.Is(err, rules.ErrUnknownStatus) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			} else {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			}
			return
		}
		driver.Status = *input.Status
	}
	if input.LicenseType != nil {
		driver.LicenseType = *input.LicenseType
	}
	if input.LicenseExpiry != nil {
		driver.LicenseExpiry = input.LicenseExpiry
	}
	if input.DateOfBirth != nil {
		driver.DateOfBirth = input.DateOfBirth
	}
	if input.Address != nil {
		driver.Address = *input.Address
	}

	if err := db().Save(&driver).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update driver: " + err.Error()})
		return
	}

	announce(bus.Drivers, "updated", driver.ID, driver)
	c.JSON(http.StatusOK, gin.H{"driver": driver})
}

// DeleteDriver removes a driver unless they still have active trips.
func DeleteDriver(c *gin.Context) {
	id := c.Param("id")
	var driver models.Driver
	if err := db().First(&driver, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch driver"})
		return
	}

	if err := rules.CanDeleteDriver(db(), id); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	if err := db().Delete(&driver).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete driver: " + err.Error()})
		return
	}

	announce(bus.Drivers, "deleted", id, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Driver deleted"})
}

package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleetops/internal/bus"
	"fleetops/internal/models"
)

// ListNotifications returns the audit log, newest first, optionally
// filtered by the referenced truck/driver id.
func ListNotifications(c *gin.Context) {
	var items []models.Notification
	q := db().Order("sent_at DESC")
	if userID := c.Query("userId"); userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing notifications: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// CreateNotification inserts a manual audit entry. Most rows come from the
// reconciler via the notifier; this endpoint covers operator-authored ones.
func CreateNotification(c *gin.Context) {
	var item models.Notification
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification input: " + err.Error()})
		return
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.SentAt.IsZero() {
		item.SentAt = time.Now()
	}
	if err := db().Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification: " + err.Error()})
		return
	}
	announce(bus.Notifications, "created", item.ID, item)
	c.JSON(http.StatusCreated, gin.H{"notification": item})
}

// UpdateNotification edits the message fields of an existing entry.
func UpdateNotification(c *gin.Context) {
	var item models.Notification
	if err := db().First(&item, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notification"})
		return
	}

	var input struct {
		Type  *string `json:"type"`
		Title *string `json:"title"`
		Body  *string `json:"body"`
		Data  *string `json:"data"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update: " + err.Error()})
		return
	}
	if input.Type != nil {
		item.Type = *input.Type
	}
	if input.Title != nil {
		item.Title = *input.Title
	}
	if input.Body != nil {
		item.Body = *input.Body
	}
	if input.Data != nil {
		item.Data = *input.Data
	}

	if err := db().Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification: " + err.Error()})
		return
	}
	announce(bus.Notifications, "updated", item.ID, item)
	c.JSON(http.StatusOK, gin.H{"notification": item})
}

// MarkNotificationRead stamps read_at once; re-reading is a no-op.
func MarkNotificationRead(c *gin.Context) {
	var item models.Notification
	if err := db().First(&item, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notification"})
		return
	}

	if item.ReadAt == nil {
		now := time.Now()
		item.ReadAt = &now
		if err := db().Save(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification: " + err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"notification": item})
}

func DeleteNotification(c *gin.Context) {
	res := db().Delete(&models.Notification{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification: " + res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	announce(bus.Notifications, "deleted", c.Param("id"), nil)
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

// Package notify appends audit notifications without ever blocking or
// failing the operation that triggered them.
package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fleetops/internal/bus"
	"fleetops/internal/models"
)

type Notifier struct {
	db  *gorm.DB
	bus *bus.Bus
}

func New(db *gorm.DB, b *bus.Bus) *Notifier {
	return &Notifier{db: db, bus: b}
}

// Emit appends a notification record in a detached goroutine. A failed
// write is logged at Warn and dropped; the caller never sees it.
func (n *Notifier) Emit(userID, typ, title, body string, data map[string]interface{}) {
	rec := models.Notification{
		ID:     uuid.NewString(),
		UserID: userID,
		Type:   typ,
		Title:  title,
		Body:   body,
		SentAt: time.Now(),
	}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			rec.Data = string(raw)
		}
	}

	go func() {
		if err := n.db.Create(&rec).Error; err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"user_id": userID,
				"type":    typ,
			}).Warn("Failed to append notification, dropping.")
			return
		}
		if n.bus != nil {
			n.bus.Publish(bus.Event{Collection: bus.Notifications, Action: "created", ID: rec.ID})
		}
	}()
}

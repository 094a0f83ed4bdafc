package controllers

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"fleetops/internal/bus"
	"fleetops/internal/config"
	"fleetops/internal/live"
	"fleetops/internal/notify"
	"fleetops/internal/remote"
)

// Shared singletons wired from main. Mirror may be nil (mirroring off) and
// Live may be disabled; both are safe to call either way.
var (
	Bus      *bus.Bus
	Notifier *notify.Notifier
	Mirror   *remote.Mirror
	Live     *live.Cache
)

// Init wires the controller package's collaborators.
func Init(b *bus.Bus, n *notify.Notifier, m *remote.Mirror, l *live.Cache) {
	Bus = b
	Notifier = n
	Mirror = m
	Live = l
}

// announce publishes a collection change and mirrors it upstream. The
// mirror call is detached and best-effort; the local write already
// happened and is never rolled back.
func announce(collection, action, id string, payload interface{}) {
	if Bus != nil {
		Bus.Publish(bus.Event{Collection: collection, Action: action, ID: id})
	}
	switch action {
	case "created":
		Mirror.Create(collection, payload)
	case "updated":
		Mirror.Update(collection, id, payload)
	case "deleted":
		Mirror.Delete(collection, id)
	}
}

// nextID produces the next sequential id for a collection, e.g. T-001.
// Ids are zero-padded so lexicographic order matches numeric order at
// fleet scale.
func nextID(db *gorm.DB, table, prefix string) string {
	var last string
	db.Table(table).
		Select("id").
		Where("id LIKE ?", prefix+"-%").
		Order("id DESC").
		Limit(1).
		Scan(&last)

	n := 0
	if last != "" {
		fmt.Sscanf(last, prefix+"-%d", &n)
	}
	return fmt.Sprintf("%s-%03d", prefix, n+1)
}

// isUniqueViolation detects a duplicate-key error from either store.
func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// db is a short alias for the global handle.
func db() *gorm.DB {
	return config.DB
}

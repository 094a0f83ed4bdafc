// Package live keeps the last relayed position per truck in redis so the
// position endpoint can prefer a real GPS fix over interpolation. The
// cache is optional and best-effort: without redis, or on any redis error,
// callers fall back to interpolation.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const positionTTL = 2 * time.Minute

// Position is a relayed GPS fix.
type Position struct {
	ID        string    `json:"id"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Speed     float64   `json:"speed,omitempty"`
	Bearing   float64   `json:"bearing,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Cache struct {
	rdb *redis.Client
}

// New connects to redis at addr, or returns a disabled cache when addr is
// empty or the server is unreachable.
func New(addr, password string) *Cache {
	if addr == "" {
		return &Cache{}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis unreachable, live position cache disabled.")
		return &Cache{}
	}
	return &Cache{rdb: rdb}
}

// Enabled reports whether a redis connection is available.
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

func key(id string) string {
	return fmt.Sprintf("live:position:%s", id)
}

// Set stores the position under its id. Errors are logged and dropped.
func (c *Cache) Set(ctx context.Context, pos Position) {
	if !c.Enabled() {
		return
	}
	raw, err := json.Marshal(pos)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(pos.ID), raw, positionTTL).Err(); err != nil {
		logrus.WithError(err).WithField("id", pos.ID).Debug("Live position write failed, dropping.")
	}
}

// Get returns the cached position for id, if a fresh one exists.
func (c *Cache) Get(ctx context.Context, id string) (Position, bool) {
	if !c.Enabled() {
		return Position{}, false
	}
	raw, err := c.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).WithField("id", id).Debug("Live position read failed.")
		}
		return Position{}, false
	}
	var pos Position
	if err := json.Unmarshal(raw, &pos); err != nil {
		return Position{}, false
	}
	return pos, true
}

// Clear drops the cached position for id.
func (c *Cache) Clear(ctx context.Context, id string) {
	if !c.Enabled() {
		return
	}
	if err := c.rdb.Del(ctx, key(id)).Err(); err != nil {
		logrus.WithError(err).WithField("id", id).Debug("Live position clear failed.")
	}
}

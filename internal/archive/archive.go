// Package archive copies completed trips into the denormalized history
// tables. Snapshots are not foreign-key linked; deleting the source trip
// later leaves the archive intact.
package archive

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fleetops/internal/geo"
	"fleetops/internal/models"
)

type Archiver struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Archiver {
	return &Archiver{db: db}
}

// Archive snapshots the trip into TripHistory and, when a driver is
// referenced, DriverTripHistory. Retrospective durations omit the
// departure buffer. Failures are logged and dropped; archival never blocks
// the reconciler.
func (a *Archiver) Archive(trip models.Trip) {
	end := trip.EffectiveEnd()
	est := estimate(trip, end)

	durationSeconds := int64(end.Sub(trip.StartTime).Seconds())
	if est.Duration != nil {
		durationSeconds = int64(est.Duration.Seconds())
	}

	now := time.Now()
	hist := models.TripHistory{
		ID:              uuid.NewString(),
		TripID:          trip.ID,
		TruckID:         trip.TruckID,
		DriverID:        trip.DriverID,
		DriverName:      trip.DriverName,
		Origin:          trip.Origin,
		Destination:     trip.Destination,
		StartTime:       trip.StartTime,
		EndTime:         end,
		DurationSeconds: durationSeconds,
		DistanceKm:      est.DistanceKm,
		Cargo:           trip.Cargo,
		CargoTons:       trip.CargoTons,
		Status:          trip.Status,
		ArchivedAt:      now,
	}
	if err := a.db.Create(&hist).Error; err != nil {
		logrus.WithError(err).WithField("trip_id", trip.ID).Warn("Trip history write failed, dropping.")
	}

	if trip.DriverID == "" {
		return
	}
	driverHist := models.DriverTripHistory{
		ID:              uuid.NewString(),
		DriverID:        trip.DriverID,
		DriverName:      trip.DriverName,
		TripID:          trip.ID,
		TruckID:         trip.TruckID,
		Origin:          trip.Origin,
		Destination:     trip.Destination,
		StartTime:       trip.StartTime,
		EndTime:         end,
		DurationSeconds: durationSeconds,
		DistanceKm:      est.DistanceKm,
		Status:          trip.Status,
		ArchivedAt:      now,
	}
	if err := a.db.Create(&driverHist).Error; err != nil {
		logrus.WithError(err).WithField("trip_id", trip.ID).Warn("Driver trip history write failed, dropping.")
	}
}

func estimate(trip models.Trip, end time.Time) geo.Estimate {
	rec := geo.Record{Start: &trip.StartTime, End: &end}
	if trip.OriginLat != nil && trip.OriginLng != nil &&
		trip.DestinationLat != nil && trip.DestinationLng != nil {
		rec.Origin = &geo.Point{Lat: *trip.OriginLat, Lng: *trip.OriginLng}
		rec.Dest = &geo.Point{Lat: *trip.DestinationLat, Lng: *trip.DestinationLng}
	}
	return geo.EstimateRecord(rec)
}

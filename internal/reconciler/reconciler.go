// Package reconciler recomputes trip statuses from wall-clock time and
// cascades the results onto truck and driver records. It is the authority
// for automatic status movement; explicit assignment and unassignment
// happen elsewhere.
package reconciler

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fleetops/internal/bus"
	"fleetops/internal/models"
)

// DefaultInterval is the reconciliation period.
const DefaultInterval = 30 * time.Second

var (
	reconcileTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleetops_reconcile_ticks_total",
		Help: "Completed reconciler ticks.",
	})
	tripTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetops_trip_transitions_total",
		Help: "Trip status transitions applied by the reconciler.",
	}, []string{"to"})
	cascadeWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetops_cascade_writes_total",
		Help: "Truck and driver status writes cascaded from trip changes.",
	}, []string{"record"})
	cascadeSkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleetops_cascade_skips_total",
		Help: "Cascade writes skipped because the record already matched.",
	})
)

// Notifier receives edge-triggered notifications. Implemented by
// notify.Notifier; tests substitute a recorder.
type Notifier interface {
	Emit(userID, typ, title, body string, data map[string]interface{})
}

// Archiver snapshots a trip into the history tables when it completes.
type Archiver interface {
	Archive(trip models.Trip)
}

type Reconciler struct {
	db       *gorm.DB
	notifier Notifier
	archiver Archiver
	bus      *bus.Bus
	interval time.Duration
}

// Stats counts the writes one tick performed. A tick over an unchanged
// fleet reports zero writes.
type Stats struct {
	TripWrites    int
	TruckWrites   int
	DriverWrites  int
	SkippedWrites int
}

func New(db *gorm.DB, notifier Notifier, archiver Archiver, b *bus.Bus) *Reconciler {
	return &Reconciler{
		db:       db,
		notifier: notifier,
		archiver: archiver,
		bus:      b,
		interval: DefaultInterval,
	}
}

// WithInterval overrides the tick period.
func (r *Reconciler) WithInterval(d time.Duration) *Reconciler {
	r.interval = d
	return r
}

// Run ticks until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logrus.WithField("interval", r.interval).Info("Trip lifecycle reconciler started.")
	for {
		select {
		case <-ctx.Done():
			logrus.Info("Trip lifecycle reconciler stopped.")
			return
		case <-ticker.C:
			stats := r.Tick(time.Now())
			if stats.TripWrites+stats.TruckWrites+stats.DriverWrites > 0 {
				logrus.WithFields(logrus.Fields{
					"trip_writes":   stats.TripWrites,
					"truck_writes":  stats.TruckWrites,
					"driver_writes": stats.DriverWrites,
					"skipped":       stats.SkippedWrites,
				}).Info("Reconciler tick applied changes.")
			}
		}
	}
}

// NextStatus derives a non-terminal trip's status from the time snapshot.
// A trip without an end time is reconciled against the default one-hour
// window, so it does auto-complete.
func NextStatus(trip *models.Trip, now time.Time) string {
	if now.Before(trip.StartTime) {
		return models.TripPending
	}
	if !now.Before(trip.EffectiveEnd()) {
		return models.TripCompleted
	}
	return models.TripInTransit
}

// truck status desire ranks: intransit beats pending beats
// assigned-from-completed.
var desireRank = map[string]int{
	models.TruckInTransit: 3,
	models.TruckPending:   2,
	models.TruckAssigned:  1,
}

// DesiredTruckStatus folds one trip's status into the per-truck desire map.
func DesiredTruckStatus(desired map[string]string, trip *models.Trip) {
	var want string
	switch trip.Status {
	case models.TripInTransit:
		want = models.TruckInTransit
	case models.TripPending:
		want = models.TruckPending
	case models.TripCompleted:
		want = models.TruckAssigned
	default:
		return
	}
	if current, ok := desired[trip.TruckID]; !ok || desireRank[want] > desireRank[current] {
		desired[trip.TruckID] = want
	}
}

// DriverStatusFor mirrors a truck's desired status onto its driver.
var driverStatusFor = map[string]string{
	models.TruckInTransit: models.DriverDriving,
	models.TruckPending:   models.DriverPending,
	models.TruckAssigned:  models.DriverAssigned,
}

// Tick runs one full reconciliation pass. All trip statuses are computed
// from the single `now` snapshot before any truck or driver cascade is
// applied. Store write failures are logged and ignored; the computed state
// still drives the rest of the pass.
func (r *Reconciler) Tick(now time.Time) Stats {
	var stats Stats
	defer reconcileTicks.Inc()

	var trips []models.Trip
	err := r.db.
		Where("status NOT IN ?", []string{models.TripCompleted, models.TripCancelled}).
		Find(&trips).Error
	if err != nil {
		logrus.WithError(err).Warn("Reconciler could not load trips, skipping tick.")
		return stats
	}

	// Phase 1: trip transitions.
	desired := make(map[string]string)
	for i := range trips {
		trip := &trips[i]
		next := NextStatus(trip, now)
		if next != trip.Status {
			prev := trip.Status
			if err := r.db.Model(&models.Trip{}).Where("id = ?", trip.ID).
				Update("status", next).Error; err != nil {
				logrus.WithError(err).WithField("trip_id", trip.ID).
					Warn("Trip status write failed, continuing with computed state.")
			} else {
				stats.TripWrites++
				tripTransitions.WithLabelValues(next).Inc()
			}
			trip.Status = next
			r.onTransition(prev, trip)
		}
		DesiredTruckStatus(desired, trip)
	}

	// Phase 2: cascades, against freshly read truck rows.
	for truckID, want := range desired {
		r.cascade(truckID, want, &stats)
	}

	return stats
}

// onTransition fires the edge-triggered side effects exactly once: the
// write above only happens on the tick where the status changed, so a trip
// holding a status never re-notifies.
func (r *Reconciler) onTransition(prev string, trip *models.Trip) {
	if r.bus != nil {
		r.bus.Publish(bus.Event{Collection: bus.Trips, Action: "reconciled", ID: trip.ID})
	}

	target := trip.DriverID
	if target == "" {
		target = trip.TruckID
	}

	switch {
	case prev == models.TripPending && trip.Status == models.TripInTransit:
		if r.notifier != nil {
			r.notifier.Emit(target, "trip_started", "Trip started",
				"Trip "+trip.ID+" to "+trip.Destination+" is now in transit.",
				map[string]interface{}{"trip_id": trip.ID, "truck_id": trip.TruckID})
		}
	case trip.Status == models.TripCompleted:
		if r.notifier != nil {
			r.notifier.Emit(target, "trip_completed", "Trip completed",
				"Trip "+trip.ID+" to "+trip.Destination+" has completed.",
				map[string]interface{}{"trip_id": trip.ID, "truck_id": trip.TruckID})
		}
		if r.archiver != nil {
			r.archiver.Archive(*trip)
		}
	}
}

// cascade applies the desired status to the truck and mirrors it onto the
// matching driver. Both writes are idempotent: the freshly read row is
// compared first and an unchanged record is skipped, so a quiet tick
// writes nothing.
func (r *Reconciler) cascade(truckID, want string, stats *Stats) {
	var truck models.Truck
	if err := r.db.First(&truck, "id = ?", truckID).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logrus.WithError(err).WithField("truck_id", truckID).Warn("Cascade truck read failed.")
		}
		return
	}

	if truck.Status != want {
		if err := r.db.Model(&models.Truck{}).Where("id = ?", truckID).
			Update("status", want).Error; err != nil {
			logrus.WithError(err).WithField("truck_id", truckID).Warn("Cascade truck write failed.")
		} else {
			stats.TruckWrites++
			cascadeWrites.WithLabelValues("truck").Inc()
			if r.bus != nil {
				r.bus.Publish(bus.Event{Collection: bus.Trucks, Action: "reconciled", ID: truckID})
			}
		}
	} else {
		stats.SkippedWrites++
		cascadeSkips.Inc()
	}

	driver, ok := r.matchDriver(truck)
	if !ok {
		return
	}
	mirrored := driverStatusFor[want]
	if driver.Status == mirrored {
		stats.SkippedWrites++
		cascadeSkips.Inc()
		return
	}
	if err := r.db.Model(&models.Driver{}).Where("id = ?", driver.ID).
		Update("status", mirrored).Error; err != nil {
		logrus.WithError(err).WithField("driver_id", driver.ID).Warn("Cascade driver write failed.")
		return
	}
	stats.DriverWrites++
	cascadeWrites.WithLabelValues("driver").Inc()
	if r.bus != nil {
		r.bus.Publish(bus.Event{Collection: bus.Drivers, Action: "reconciled", ID: driver.ID})
	}
}

// matchDriver finds the driver the cascade should mirror onto: the one
// whose assigned vehicle is this truck, falling back to a normalized name
// match against the truck's driver reference. Name matching is a known
// correctness gap kept for records that predate id linkage; no match means
// no cascade.
func (r *Reconciler) matchDriver(truck models.Truck) (models.Driver, bool) {
	var driver models.Driver
	err := r.db.First(&driver, "assigned_vehicle = ?", truck.ID).Error
	if err == nil {
		return driver, true
	}
	if err != gorm.ErrRecordNotFound {
		logrus.WithError(err).WithField("truck_id", truck.ID).Warn("Cascade driver read failed.")
		return models.Driver{}, false
	}

	if !truck.HasDriver() {
		return models.Driver{}, false
	}
	wanted := NormalizeName(truck.Driver)
	var candidates []models.Driver
	if err := r.db.Find(&candidates).Error; err != nil {
		logrus.WithError(err).Warn("Cascade driver scan failed.")
		return models.Driver{}, false
	}
	for _, d := range candidates {
		if NormalizeName(d.Name) == wanted {
			return d, true
		}
	}
	return models.Driver{}, false
}

// NormalizeName strips non-alphanumerics and lowercases for the fuzzy
// driver-name fallback.
func NormalizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

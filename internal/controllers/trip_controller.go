package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fleetops/internal/bus"
	"fleetops/internal/geo"
	"fleetops/internal/models"
	"fleetops/internal/rules"
)

// tripResponse mirrors models.Trip but carries the route geometry as a
// GeoJSON string for API output.
type tripResponse struct {
	models.Trip
	RouteGeoJSON string `json:"routeGeometry,omitempty"`
}

func toTripResponse(trip models.Trip) tripResponse {
	jsonGeom, _ := geo.RouteToGeoJSON(trip.RouteGeometry)
	return tripResponse{Trip: trip, RouteGeoJSON: jsonGeom}
}

// ListTrips returns every trip.
func ListTrips(c *gin.Context) {
	var trips []models.Trip
	q := db()
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&trips).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing trips: " + err.Error()})
		return
	}
	out := make([]tripResponse, 0, len(trips))
	for _, t := range trips {
		out = append(out, toTripResponse(t))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// GetTrip returns one trip by id.
func GetTrip(c *gin.Context) {
	var trip models.Trip
	if err := db().First(&trip, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching trip: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toTripResponse(trip)})
}

// CreateTrip schedules a trip. When no end time is given and coordinates
// are present, the ETA is derived from the haversine estimate with the
// departure buffer included. Status starts pending for future departures
// and intransit otherwise.
func CreateTrip(c *gin.Context) {
	var input struct {
		ID             string     `json:"id"`
		TruckID        string     `json:"truckId" binding:"required"`
		DriverID       string     `json:"driverId"`
		Origin         string     `json:"origin" binding:"required"`
		Destination    string     `json:"destination" binding:"required"`
		OriginLat      *float64   `json:"originLat"`
		OriginLng      *float64   `json:"originLng"`
		DestinationLat *float64   `json:"destinationLat"`
		DestinationLng *float64   `json:"destinationLng"`
		StartTime      time.Time  `json:"startTime" binding:"required"`
		EndTime        *time.Time `json:"endTime"`
		Cargo          string     `json:"cargo"`
		CargoTons      float64    `json:"cargoTons"`
		Notes          string     `json:"notes"`
		RouteGeometry  string     `json:"routeGeometry"` // GeoJSON LineString
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trip input: " + err.Error()})
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
	if err := rules.CheckCargoWeight(input.CargoTons, truck); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	var driverName string
	if input.DriverID != "" {
		var driver models.Driver
		if err := db().First(&driver, "id = ?", input.DriverID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch driver"})
			return
		}
		driverName = driver.Name
	}

	wkbGeom, err := geo.ParseGeoJSONRoute(input.RouteGeometry)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route geometry: " + err.Error()})
		return
	}

	id := input.ID
	if id == "" {
		id = nextID(db(), "trips", "TR")
	}
	trip := models.Trip{
		ID:             id,
		TruckID:        input.TruckID,
		DriverID:       input.DriverID,
		DriverName:     driverName,
		Origin:         input.Origin,
		Destination:    input.Destination,
		OriginLat:      input.OriginLat,
		OriginLng:      input.OriginLng,
		DestinationLat: input.DestinationLat,
		DestinationLng: input.DestinationLng,
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		Cargo:          input.Cargo,
		CargoTons:      input.CargoTons,
		Notes:          input.Notes,
		RouteGeometry:  wkbGeom,
	}

	if trip.EndTime == nil && hasCoords(&trip) {
		est := geo.EstimateTrip(
			geo.Point{Lat: *trip.OriginLat, Lng: *trip.OriginLng},
			geo.Point{Lat: *trip.DestinationLat, Lng: *trip.DestinationLng},
		)
		eta := trip.StartTime.Add(*est.Duration)
		trip.EndTime = &eta
		trip.TravelTimeSeconds = int64(est.Duration.Seconds())
	} else if trip.EndTime != nil {
		trip.TravelTimeSeconds = int64(trip.EndTime.Sub(trip.StartTime).Seconds())
	}

	if time.Now().Before(trip.StartTime) {
		trip.Status = models.TripPending
	} else {
		trip.Status = models.TripInTransit
	}

	if err := db().Create(&trip).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trip: " + err.Error()})
		return
	}

	announce(bus.Trips, "created", trip.ID, trip)
	c.JSON(http.StatusCreated, gin.H{"trip": toTripResponse(trip)})
}

// UpdateTrip applies a partial update. Cancelling happens here by setting
// status to "cancelled"; the reconciler never cancels on its own.
func UpdateTrip(c *gin.Context) {
	var trip models.Trip
	if err := db().First(&trip, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trip"})
		return
	}

	if trip.Terminal() {
		c.JSON(http.StatusConflict, gin.H{"error": "Trip is " + trip.Status + " and can no longer change"})
		return
	}

	var input struct {
		Status    *string    `json:"status"`
		EndTime   *time.Time `json:"endTime"`
		Cargo     *string    `json:"cargo"`
		CargoTons *float64   `json:"cargoTons"`
		Notes     *string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update: " + err.Error()})
		return
	}

	if input.CargoTons != nil {
		var truck models.Truck
		if err := db().First(&truck, "id = ?", trip.TruckID).Error; err == nil {
			if err := rules.CheckCargoWeight(*input.CargoTons, truck); err != nil {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
		}
		trip.CargoTons = *input.CargoTons
	}
	if input.Status != nil {
		switch *input.Status {
		case models.TripPending, models.TripInTransit, models.TripCompleted, models.TripCancelled:
			trip.Status = *input.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown trip status: " + *input.Status})
			return
		}
	}
	if input.EndTime != nil {
		trip.EndTime = input.EndTime
		trip.TravelTimeSeconds = int64(input.EndTime.Sub(trip.StartTime).Seconds())
	}
	if input.Cargo != nil {
		trip.Cargo = *input.Cargo
	}
	if input.Notes != nil {
		trip.Notes = *input.Notes
	}

	if err := db().Save(&trip).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update trip: " + err.Error()})
		return
	}

	announce(bus.Trips, "updated", trip.ID, trip)
	c.JSON(http.StatusOK, gin.H{"trip": toTripResponse(trip)})
}

// DeleteTrip removes a trip record.
func DeleteTrip(c *gin.Context) {
	id := c.Param("id")
	var trip models.Trip
	if err := db().First(&trip, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trip"})
		return
	}

	if err := db().Delete(&trip).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete trip: " + err.Error()})
		return
	}

	announce(bus.Trips, "deleted", id, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Trip deleted"})
}

// TripPosition returns the current display position of a trip. A fresh
// relayed GPS fix wins; otherwise the position is interpolated along the
// route (or the straight line) from the time fraction.
func TripPosition(c *gin.Context) {
	var trip models.Trip
	if err := db().First(&trip, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trip"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if pos, ok := Live.Get(ctx, trip.TruckID); ok {
		c.JSON(http.StatusOK, gin.H{
			"source":    "live",
			"position":  geo.Point{Lat: pos.Lat, Lng: pos.Lng},
			"timestamp": pos.Timestamp,
		})
		return
	}

	if !hasCoords(&trip) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Trip has no coordinates to interpolate"})
		return
	}

	origin := geo.Point{Lat: *trip.OriginLat, Lng: *trip.OriginLng}
	dest := geo.Point{Lat: *trip.DestinationLat, Lng: *trip.DestinationLng}

	var route *geo.Route
	if waypoints, err := geo.DecodeRoute(trip.RouteGeometry); err == nil && len(waypoints) > 0 {
		route = geo.NewRoute(waypoints)
	} else if err != nil {
		logrus.WithError(err).WithField("trip_id", trip.ID).Warn("Route geometry decode failed, using linear interpolation.")
	}

	now := time.Now()
	pos := geo.PositionAt(now, trip.StartTime, trip.EffectiveEnd(), origin, dest, route)
	c.JSON(http.StatusOK, gin.H{
		"source":   "interpolated",
		"position": pos,
		"fraction": geo.Fraction(now, trip.StartTime, trip.EffectiveEnd()),
	})
}

// EstimateRoute serves the scheduling ETA math directly.
func EstimateRoute(c *gin.Context) {
	var input struct {
		Origin      geo.Point `json:"origin"`
		Destination geo.Point `json:"destination"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	est := geo.EstimateTrip(input.Origin, input.Destination)
	c.JSON(http.StatusOK, gin.H{
		"distanceKm":      *est.DistanceKm,
		"durationMinutes": est.Duration.Minutes(),
	})
}

func hasCoords(t *models.Trip) bool {
	return t.OriginLat != nil && t.OriginLng != nil &&
		t.DestinationLat != nil && t.DestinationLng != nil
}

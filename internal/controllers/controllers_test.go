package controllers

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fleetops/internal/bus"
	"fleetops/internal/config"
	"fleetops/internal/live"
	"fleetops/internal/models"
	"fleetops/internal/notify"
)

func setupTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Truck{}, &models.Driver{}, &models.Trip{},
		&models.Destination{}, &models.Notification{},
		&models.TripHistory{}, &models.DriverTripHistory{},
		&models.TruckSchedule{}, &models.DriverSchedule{},
		&models.ScheduledMaintenance{}, &models.DriverDocument{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	config.DB = db

	b := bus.New()
	Init(b, notify.New(db, b), nil, live.New("", ""))

	r := gin.New()
	r.GET("/api/trucks", ListTrucks)
	r.POST("/api/trucks", CreateTruck)
	r.PUT("/api/trucks/:id", UpdateTruck)
	r.DELETE("/api/trucks/:id", DeleteTruck)
	r.POST("/api/trucks/:id/assign", AssignDriver)
	r.POST("/api/trucks/:id/unassign", UnassignDriver)
	r.POST("/api/drivers", CreateDriver)
	r.PUT("/api/drivers/:id", UpdateDriver)
	r.POST("/api/trips", CreateTrip)
	r.PUT("/api/trips/:id", UpdateTrip)
	r.GET("/api/trips/:id/position", TripPosition)
	r.POST("/api/estimate", EstimateRoute)
	r.POST("/api/notifications", CreateNotification)
	r.PUT("/api/notifications/:id/read", MarkNotificationRead)
	r.POST("/api/trip-history", CreateTripHistory)
	r.PUT("/api/trip-history/:id", UpdateTripHistory)
	r.DELETE("/api/trip-history/:id", DeleteTripHistory)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	out := make(map[string]json.RawMessage)
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestCreateTruckDefaultsAndSequentialIDs(t *testing.T) {
	r := setupTest(t)

	w := doJSON(t, r, http.MethodPost, "/api/trucks", gin.H{
		"name": "Scania R450", "plateNumber": "KBC-1234", "loadCapacity": 20,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var truck models.Truck
	if err := json.Unmarshal(decode(t, w)["truck"], &truck); err != nil {
		t.Fatalf("decode truck: %v", err)
	}
	if truck.ID != "T-001" {
		t.Fatalf("expected T-001, got %s", truck.ID)
	}
	if truck.Status != models.TruckAvailable || truck.Driver != models.UnassignedDriver {
		t.Fatalf("bad defaults: %+v", truck)
	}

	w = doJSON(t, r, http.MethodPost, "/api/trucks", gin.H{
		"name": "Volvo FH16", "plateNumber": "KDA-5678",
	})
	var second models.Truck
	if err := json.Unmarshal(decode(t, w)["truck"], &second); err != nil {
		t.Fatalf("decode truck: %v", err)
	}
	if second.ID != "T-002" {
		t.Fatalf("expected T-002, got %s", second.ID)
	}
}

func TestCreateTruckRejectsBadAndDuplicatePlates(t *testing.T) {
	r := setupTest(t)

	w := doJSON(t, r, http.MethodPost, "/api/trucks", gin.H{
		"name": "Scania", "plateNumber": "bad-plate",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed plate, got %d", w.Code)
	}

	doJSON(t, r, http.MethodPost, "/api/trucks", gin.H{"name": "A", "plateNumber": "KBC-1234"})
	w = doJSON(t, r, http.MethodPost, "/api/trucks", gin.H{"name": "B", "plateNumber": "KBC-1234"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate plate, got %d: %s", w.Code, w.Body.String())
	}
}

func seedAssignable(t *testing.T, driverStatus string) {
	t.Helper()
	truck := models.Truck{ID: "T-001", Name: "Scania", PlateNumber: "KBC-1234",
		Driver: models.UnassignedDriver, Status: models.TruckAvailable, LoadCapacity: 20}
	driver := models.Driver{ID: "D-001", Name: "Jane Wanjiku", LicenseNumber: "1234-567-89012",
		Email: "jane@fleetops.local", Status: driverStatus}
	if err := config.DB.Create(&truck).Error; err != nil {
		t.Fatalf("seed truck: %v", err)
	}
	if err := config.DB.Create(&driver).Error; err != nil {
		t.Fatalf("seed driver: %v", err)
	}
}

func TestAssignAndUnassignDriver(t *testing.T) {
	r := setupTest(t)
	seedAssignable(t, models.DriverAvailable)

	w := doJSON(t, r, http.MethodPost, "/api/trucks/T-001/assign", gin.H{"driverId": "D-001"})
	if w.Code != http.StatusOK {
		t.Fatalf("assign failed: %d %s", w.Code, w.Body.String())
	}

	var truck models.Truck
	if err := config.DB.First(&truck, "id = ?", "T-001").Error; err != nil {
		t.Fatalf("read truck: %v", err)
	}
	var driver models.Driver
	if err := config.DB.First(&driver, "id = ?", "D-001").Error; err != nil {
		t.Fatalf("read driver: %v", err)
	}
	if truck.Status != models.TruckAssigned || truck.Driver != "Jane Wanjiku" {
		t.Fatalf("truck not paired: %+v", truck)
	}
	if driver.Status != models.DriverAssigned || driver.AssignedVehicle != "T-001" {
		t.Fatalf("driver not paired: %+v", driver)
	}

	w = doJSON(t, r, http.MethodPost, "/api/trucks/T-001/unassign", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unassign failed: %d %s", w.Code, w.Body.String())
	}
	if err := config.DB.First(&truck, "id = ?", "T-001").Error; err != nil {
		t.Fatalf("read truck: %v", err)
	}
	if err := config.DB.First(&driver, "id = ?", "D-001").Error; err != nil {
		t.Fatalf("read driver: %v", err)
	}
	if truck.Status != models.TruckAvailable || truck.Driver != models.UnassignedDriver {
		t.Fatalf("truck not freed: %+v", truck)
	}
	if driver.Status != models.DriverAvailable || driver.AssignedVehicle != "" {
		t.Fatalf("driver not freed: %+v", driver)
	}
}

func TestAssignRejectsBusyDriverWithoutMutation(t *testing.T) {
	r := setupTest(t)
	seedAssignable(t, models.DriverDriving)

	w := doJSON(t, r, http.MethodPost, "/api/trucks/T-001/assign", gin.H{"driverId": "D-001"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}

	// A rejected assignment leaves both records exactly as they were.
	var truck models.Truck
	if err := config.DB.First(&truck, "id = ?", "T-001").Error; err != nil {
		t.Fatalf("read truck: %v", err)
	}
	if truck.Status != models.TruckAvailable || truck.Driver != models.UnassignedDriver {
		t.Fatalf("truck mutated by rejected assign: %+v", truck)
	}
	var driver models.Driver
	if err := config.DB.First(&driver, "id = ?", "D-001").Error; err != nil {
		t.Fatalf("read driver: %v", err)
	}
	if driver.Status != models.DriverDriving || driver.AssignedVehicle != "" {
		t.Fatalf("driver mutated by rejected assign: %+v", driver)
	}
}

func TestUnassignBlockedWhileInTransit(t *testing.T) {
	r := setupTest(t)
	truck := models.Truck{ID: "T-001", PlateNumber: "KBC-1234", Driver: "Jane Wanjiku",
		Status: models.TruckInTransit}
	driver := models.Driver{ID: "D-001", Name: "Jane Wanjiku", LicenseNumber: "1234-567-89012",
		Email: "jane@fleetops.local", AssignedVehicle: "T-001", Status: models.DriverDriving}
	if err := config.DB.Create(&truck).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := config.DB.Create(&driver).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/api/trucks/T-001/unassign", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateTruckStatusGuarded(t *testing.T) {
	r := setupTest(t)
	seedAssignable(t, models.DriverAvailable)
	if w := doJSON(t, r, http.MethodPost, "/api/trucks/T-001/assign", gin.H{"driverId": "D-001"}); w.Code != http.StatusOK {
		t.Fatalf("assign failed: %d %s", w.Code, w.Body.String())
	}

	// A truck with a driver attached can never be forced back to available.
	w := doJSON(t, r, http.MethodPut, "/api/trucks/T-001", gin.H{"status": "available"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 setting assigned truck available, got %d: %s", w.Code, w.Body.String())
	}
	var truck models.Truck
	if err := config.DB.First(&truck, "id = ?", "T-001").Error; err != nil {
		t.Fatalf("read truck: %v", err)
	}
	if truck.Status != models.TruckAssigned || truck.Driver != "Jane Wanjiku" {
		t.Fatalf("rejected update mutated truck: %+v", truck)
	}

	// Statuses outside the enum are rejected before any write.
	w = doJSON(t, r, http.MethodPut, "/api/trucks/T-001", gin.H{"status": "warp-drive"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d: %s", w.Code, w.Body.String())
	}

	// Maintenance is a legal manual move even with a driver attached.
	w = doJSON(t, r, http.MethodPut, "/api/trucks/T-001", gin.H{"status": "maintenance"})
	if w.Code != http.StatusOK {
		t.Fatalf("maintenance update failed: %d %s", w.Code, w.Body.String())
	}
}

func TestUpdateDriverStatusGuarded(t *testing.T) {
	r := setupTest(t)
	seedAssignable(t, models.DriverAvailable)
	if w := doJSON(t, r, http.MethodPost, "/api/trucks/T-001/assign", gin.H{"driverId": "D-001"}); w.Code != http.StatusOK {
		t.Fatalf("assign failed: %d %s", w.Code, w.Body.String())
	}

	// A driver holding a vehicle stays in assigned, driving or pending.
	for _, status := range []string{"available", "off-duty", "inactive"} {
		w := doJSON(t, r, http.MethodPut, "/api/drivers/D-001", gin.H{"status": status})
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409 setting assigned driver %s, got %d: %s", status, w.Code, w.Body.String())
		}
	}
	var driver models.Driver
	if err := config.DB.First(&driver, "id = ?", "D-001").Error; err != nil {
		t.Fatalf("read driver: %v", err)
	}
	if driver.Status != models.DriverAssigned || driver.AssignedVehicle != "T-001" {
		t.Fatalf("rejected update mutated driver: %+v", driver)
	}

	w := doJSON(t, r, http.MethodPut, "/api/drivers/D-001", gin.H{"status": "teleporting"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPut, "/api/drivers/D-001", gin.H{"status": "driving"})
	if w.Code != http.StatusOK {
		t.Fatalf("driving update failed: %d %s", w.Code, w.Body.String())
	}
}

func TestCreateTripDerivesETA(t *testing.T) {
	r := setupTest(t)
	seedAssignable(t, models.DriverAvailable)

	start := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	w := doJSON(t, r, http.MethodPost, "/api/trips", gin.H{
		"truckId": "T-001", "driverId": "D-001",
		"origin": "Nairobi", "destination": "Mombasa",
		"originLat": -1.2921, "originLng": 36.8219,
		"destinationLat": -4.0435, "destinationLng": 39.6682,
		"startTime": start.Format(time.RFC3339),
		"cargoTons": 12,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create trip failed: %d %s", w.Code, w.Body.String())
	}
	var trip models.Trip
	if err := json.Unmarshal(decode(t, w)["trip"], &trip); err != nil {
		t.Fatalf("decode trip: %v", err)
	}
	if trip.ID != "TR-001" {
		t.Fatalf("expected TR-001, got %s", trip.ID)
	}
	if trip.Status != models.TripPending {
		t.Fatalf("future trip must start pending, got %s", trip.Status)
	}
	if trip.EndTime == nil {
		t.Fatal("expected derived end time")
	}
	if trip.DriverName != "Jane Wanjiku" {
		t.Fatalf("driver name not resolved: %q", trip.DriverName)
	}

	// Roughly 440 km great-circle x1.3 at 60 km/h plus the 15 min buffer.
	gotMinutes := float64(trip.TravelTimeSeconds) / 60
	straight := 440.0
	wantMinutes := straight*1.3 + 15
	if math.Abs(gotMinutes-wantMinutes) > 30 {
		t.Fatalf("implausible travel time %.0f min, want ~%.0f", gotMinutes, wantMinutes)
	}
	drift := trip.EndTime.Sub(start.Add(time.Duration(trip.TravelTimeSeconds) * time.Second))
	if drift < 0 || drift >= time.Second {
		t.Fatalf("end time %v does not match start + travel time", trip.EndTime)
	}
}

func TestCreateTripRejectsOverweightCargo(t *testing.T) {
	r := setupTest(t)
	seedAssignable(t, models.DriverAvailable)

	w := doJSON(t, r, http.MethodPost, "/api/trips", gin.H{
		"truckId": "T-001", "origin": "Nairobi", "destination": "Mombasa",
		"startTime": time.Now().Format(time.RFC3339),
		"cargoTons": 25,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for overweight cargo, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateTripTerminalIsImmutable(t *testing.T) {
	r := setupTest(t)
	trip := models.Trip{ID: "TR-001", TruckID: "T-001", StartTime: time.Now(),
		Status: models.TripCompleted}
	if err := config.DB.Create(&trip).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doJSON(t, r, http.MethodPut, "/api/trips/TR-001", gin.H{"notes": "late"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for terminal trip, got %d: %s", w.Code, w.Body.String())
	}
}

func TestTripPositionInterpolates(t *testing.T) {
	r := setupTest(t)

	lat1, lng1 := 0.0, 0.0
	lat2, lng2 := 1.0, 1.0
	start := time.Now().Add(-30 * time.Minute)
	end := time.Now().Add(30 * time.Minute)
	trip := models.Trip{ID: "TR-001", TruckID: "T-001",
		OriginLat: &lat1, OriginLng: &lng1, DestinationLat: &lat2, DestinationLng: &lng2,
		StartTime: start, EndTime: &end, Status: models.TripInTransit}
	if err := config.DB.Create(&trip).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, "/api/trips/TR-001/position", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("position failed: %d %s", w.Code, w.Body.String())
	}
	var out struct {
		Source   string  `json:"source"`
		Fraction float64 `json:"fraction"`
		Position struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"position"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Source != "interpolated" {
		t.Fatalf("source = %s", out.Source)
	}
	if math.Abs(out.Fraction-0.5) > 0.01 {
		t.Fatalf("fraction %.3f, want ~0.5", out.Fraction)
	}
	if math.Abs(out.Position.Lat-0.5) > 0.01 || math.Abs(out.Position.Lng-0.5) > 0.01 {
		t.Fatalf("position %+v, want ~(0.5, 0.5)", out.Position)
	}
}

func TestTripPositionWithoutCoordinates(t *testing.T) {
	r := setupTest(t)
	trip := models.Trip{ID: "TR-001", TruckID: "T-001", StartTime: time.Now(),
		Status: models.TripInTransit}
	if err := config.DB.Create(&trip).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, "/api/trips/TR-001/position", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
}

func TestEstimateEndpoint(t *testing.T) {
	r := setupTest(t)

	w := doJSON(t, r, http.MethodPost, "/api/estimate", gin.H{
		"origin":      gin.H{"lat": 0.0, "lng": 0.0},
		"destination": gin.H{"lat": 1.0, "lng": 0.0},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("estimate failed: %d %s", w.Code, w.Body.String())
	}
	var out struct {
		DistanceKm      float64 `json:"distanceKm"`
		DurationMinutes float64 `json:"durationMinutes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if math.Abs(out.DistanceKm-144.55) > 0.1 {
		t.Fatalf("distance %.2f, want ~144.55", out.DistanceKm)
	}
	if math.Abs(out.DurationMinutes-159.6) > 0.5 {
		t.Fatalf("duration %.2f, want ~159.6", out.DurationMinutes)
	}
}

func TestMarkNotificationReadOnlyOnce(t *testing.T) {
	r := setupTest(t)
	n := models.Notification{ID: "n-1", UserID: "D-001", Type: "assignment",
		Title: "Vehicle assigned", SentAt: time.Now().Add(-time.Hour)}
	if err := config.DB.Create(&n).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doJSON(t, r, http.MethodPut, "/api/notifications/n-1/read", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("mark read failed: %d %s", w.Code, w.Body.String())
	}
	var first models.Notification
	if err := config.DB.First(&first, "id = ?", "n-1").Error; err != nil {
		t.Fatalf("read: %v", err)
	}
	if first.ReadAt == nil {
		t.Fatal("read_at not stamped")
	}

	// The second read must not move the timestamp.
	w = doJSON(t, r, http.MethodPut, "/api/notifications/n-1/read", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("second mark read failed: %d", w.Code)
	}
	var second models.Notification
	if err := config.DB.First(&second, "id = ?", "n-1").Error; err != nil {
		t.Fatalf("read: %v", err)
	}
	if !second.ReadAt.Equal(*first.ReadAt) {
		t.Fatalf("read_at moved: %v -> %v", first.ReadAt, second.ReadAt)
	}
}

func TestCreateNotificationFillsDefaults(t *testing.T) {
	r := setupTest(t)

	w := doJSON(t, r, http.MethodPost, "/api/notifications", gin.H{
		"user_id": "D-001", "type": "advisory", "title": "Route closed",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", w.Code, w.Body.String())
	}
	var n models.Notification
	if err := json.Unmarshal(decode(t, w)["notification"], &n); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n.ID == "" {
		t.Fatal("id not generated")
	}
	if n.SentAt.IsZero() {
		t.Fatal("sent_at not defaulted")
	}
	if n.ReadAt != nil {
		t.Fatal("new notification must be unread")
	}
}

func TestTripHistoryManualEdits(t *testing.T) {
	r := setupTest(t)

	w := doJSON(t, r, http.MethodPost, "/api/trip-history", gin.H{
		"tripId": "TR-900", "truckId": "T-001", "driverName": "Jane Wanjiku",
		"origin": "Nairobi", "destination": "Mombasa", "status": "completed",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", w.Code, w.Body.String())
	}
	var item models.TripHistory
	if err := json.Unmarshal(decode(t, w)["history"], &item); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if item.ID == "" || item.ArchivedAt.IsZero() {
		t.Fatalf("defaults not filled: %+v", item)
	}

	w = doJSON(t, r, http.MethodPut, "/api/trip-history/"+item.ID, gin.H{
		"destination": "Kisumu",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", w.Code, w.Body.String())
	}
	var stored models.TripHistory
	if err := config.DB.First(&stored, "id = ?", item.ID).Error; err != nil {
		t.Fatalf("read: %v", err)
	}
	if stored.Destination != "Kisumu" || stored.Origin != "Nairobi" {
		t.Fatalf("partial update wrong: %+v", stored)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/trip-history/"+item.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodDelete, "/api/trip-history/"+item.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
}

func TestRelayFanOutSurvivesDeadClient(t *testing.T) {
	r := setupTest(t)
	r.GET("/ws/relay", HandleRelayWebSocket)
	srv := httptest.NewServer(r)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/relay"

	dial := func() *websocket.Conn {
		t.Helper()
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial relay: %v", err)
		}
		return conn
	}
	sender := dial()
	defer sender.Close()
	receiver := dial()
	defer receiver.Close()

	// A client that vanishes must not stop the broadcast reaching others.
	dead := dial()
	dead.Close()

	payload := []byte(`{"type":"ping","seq":1}`)
	if err := sender.WriteMessage(websocket.TextMessage, payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	receiver.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, got, err := receiver.ReadMessage()
	if err != nil {
		t.Fatalf("receiver got nothing: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("relayed payload mangled: %s", got)
	}

	// The sender never hears its own message back.
	sender.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := sender.ReadMessage(); err == nil {
		t.Fatal("sender received its own broadcast")
	}
}

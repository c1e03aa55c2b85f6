package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/rideloop/carpool/internal/repository"
)

func requestSeatContext(e *echo.Echo, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/v1/trips/3/requests", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/trips/:id/requests")
	c.SetParamNames("id")
	c.SetParamValues("3")
	c.Set("user_id", userID)
	return c, rec
}

func TestRequestSeatNoCapacity(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	// A full trip stops the flow at the capacity read; no request row may
	// be written.
	mock.ExpectQuery("SELECT seats_available FROM trips").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"seats_available"}).AddRow(0))

	h := NewPassengerHandler(
		repository.NewTripRepo(db),
		repository.NewTripRequestRepo(db),
		repository.NewPassengerRepo(db),
	)
	c, rec := requestSeatContext(echo.New(), 7)
	if err := h.RequestSeat(c); err != nil {
		t.Fatalf("RequestSeat: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRequestSeatCreatesPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT seats_available FROM trips").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"seats_available"}).AddRow(2))
	mock.ExpectQuery("SELECT id FROM passengers").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery("SELECT 1 FROM trip_requests").
		WithArgs(uint64(3), uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec("INSERT INTO trip_requests").
		WithArgs(uint64(3), uint64(5)).
		WillReturnResult(sqlmock.NewResult(9, 1))

	h := NewPassengerHandler(
		repository.NewTripRepo(db),
		repository.NewTripRequestRepo(db),
		repository.NewPassengerRepo(db),
	)
	c, rec := requestSeatContext(echo.New(), 7)
	if err := h.RequestSeat(c); err != nil {
		t.Fatalf("RequestSeat: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		RequestID uint64 `json:"request_id"`
		TripID    uint64 `json:"trip_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.RequestID != 9 || resp.TripID != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRequestSeatDuplicateOpenRequest(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT seats_available FROM trips").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"seats_available"}).AddRow(2))
	mock.ExpectQuery("SELECT id FROM passengers").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery("SELECT 1 FROM trip_requests").
		WithArgs(uint64(3), uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	h := NewPassengerHandler(
		repository.NewTripRepo(db),
		repository.NewTripRequestRepo(db),
		repository.NewPassengerRepo(db),
	)
	c, rec := requestSeatContext(echo.New(), 7)
	if err := h.RequestSeat(c); err != nil {
		t.Fatalf("RequestSeat: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d (%s)", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRequestSeatMissingTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT seats_available FROM trips").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"seats_available"}))

	h := NewPassengerHandler(
		repository.NewTripRepo(db),
		repository.NewTripRequestRepo(db),
		repository.NewPassengerRepo(db),
	)
	c, rec := requestSeatContext(echo.New(), 7)
	if err := h.RequestSeat(c); err != nil {
		t.Fatalf("RequestSeat: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (%s)", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSearchTripsFiltersAndDecorates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "driver_id", "vehicle_id",
		"origin_lat", "origin_lng", "dest_lat", "dest_lng",
		"trip_date", "trip_time",
		"price_cents", "seats_total", "seats_available", "stop_count", "status", "rating",
		"created_at", "updated_at",
		"full_name", "name", "color", "plate_number",
	}).
		// right on the query route, inside the time window
		AddRow(1, 4, 2, 35.7, 51.4, 35.8, 51.5, "2026-09-01", "08:45:00",
			50000, 3, 2, 1, "SCHEDULED", 5.0, now, now,
			"Dana", "Sedan", "blue", "AA-123").
		// a degree of latitude away, filtered out by the matcher
		AddRow(2, 4, 2, 36.7, 51.4, 36.8, 51.5, "2026-09-01", "08:45:00",
			50000, 3, 2, 1, "SCHEDULED", 5.0, now, now,
			"Dana", "Sedan", "blue", "AA-123")
	mock.ExpectQuery("SELECT t.id, t.driver_id, t.vehicle_id").
		WithArgs("2026-09-01", "SCHEDULED").
		WillReturnRows(rows)

	h := NewPassengerHandler(
		repository.NewTripRepo(db),
		repository.NewTripRequestRepo(db),
		repository.NewPassengerRepo(db),
	)
	body := `{"origin":{"latitude":35.7,"longitude":51.4},` +
		`"destination":{"latitude":35.8,"longitude":51.5},` +
		`"date":"2026-09-01","time":"09:00"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/trips/search", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	if err := h.SearchTrips(c); err != nil {
		t.Fatalf("SearchTrips: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Items []struct {
			TripID     uint64  `json:"trip_id"`
			DistanceKm float64 `json:"distance_km"`
			DriverName string  `json:"driver_name"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].TripID != 1 {
		t.Fatalf("expected only trip 1 to match, got %+v", resp.Items)
	}
	if resp.Items[0].DriverName != "Dana" {
		t.Fatalf("driver info missing from match: %+v", resp.Items[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetTripNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, driver_id, vehicle_id").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	h := NewPassengerHandler(
		repository.NewTripRepo(db),
		repository.NewTripRequestRepo(db),
		repository.NewPassengerRepo(db),
	)
	req := httptest.NewRequest(http.MethodGet, "/v1/trips/42", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetPath("/v1/trips/:id")
	c.SetParamNames("id")
	c.SetParamValues("42")

	if err := h.GetTrip(c); err != nil {
		t.Fatalf("GetTrip: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (%s)", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

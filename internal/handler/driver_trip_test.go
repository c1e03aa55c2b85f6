package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/rideloop/carpool/internal/repository"
)

func createTripsContext(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/v1/trips", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(7))
	return c, rec
}

func TestCreateTripsOnePerDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id FROM drivers").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO trips").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO trips").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	h := NewDriverHandler(
		repository.NewTripRepo(db),
		repository.NewTripRequestRepo(db),
		repository.NewDriverRepo(db),
	)
	body := `{"vehicle_id":2,"origin":{"latitude":35.7,"longitude":51.4},` +
		`"destination":{"latitude":35.8,"longitude":51.5},` +
		`"price_cents":50000,"seat_count":3,"stop_count":1,` +
		`"time":"08:30","dates":["2026-09-01","2026-09-02"]}`
	c, rec := createTripsContext(echo.New(), body)
	if err := h.CreateTrips(c); err != nil {
		t.Fatalf("CreateTrips: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Created int      `json:"created"`
		TripIDs []uint64 `json:"trip_ids"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Created != 2 || len(resp.TripIDs) != 2 || resp.TripIDs[0] != 11 || resp.TripIDs[1] != 12 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateTripsRejectsEmptyDates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	h := NewDriverHandler(
		repository.NewTripRepo(db),
		repository.NewTripRequestRepo(db),
		repository.NewDriverRepo(db),
	)
	body := `{"vehicle_id":2,"seat_count":3,"time":"08:30","dates":[]}`
	c, rec := createTripsContext(echo.New(), body)
	if err := h.CreateTrips(c); err != nil {
		t.Fatalf("CreateTrips: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateTripsUserWithoutDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id FROM drivers").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	h := NewDriverHandler(
		repository.NewTripRepo(db),
		repository.NewTripRequestRepo(db),
		repository.NewDriverRepo(db),
	)
	body := `{"vehicle_id":2,"origin":{"latitude":35.7,"longitude":51.4},` +
		`"destination":{"latitude":35.8,"longitude":51.5},` +
		`"seat_count":3,"time":"08:30","dates":["2026-09-01"]}`
	c, rec := createTripsContext(echo.New(), body)
	if err := h.CreateTrips(c); err != nil {
		t.Fatalf("CreateTrips: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (%s)", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

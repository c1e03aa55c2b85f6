package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/rideloop/carpool/internal/repository"
)

func TestListMyVehicles(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT id FROM drivers").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery("SELECT id, driver_id, name, color, plate_number").
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "driver_id", "name", "color", "plate_number", "avg_consumption", "created_at",
		}).
			AddRow(1, 4, "Sedan", "blue", "AA-123", 7.5, now).
			AddRow(2, 4, "Van", "white", "BB-456", 9.0, now))

	h := NewVehicleHandler(
		repository.NewUserRepo(db),
		repository.NewDriverRepo(db),
		repository.NewVehicleRepo(db),
	)
	req := httptest.NewRequest(http.MethodGet, "/v1/my-vehicles", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("user_id", uint64(7))

	if err := h.ListMyVehicles(c); err != nil {
		t.Fatalf("ListMyVehicles: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Items []struct {
			ID          uint64 `json:"id"`
			PlateNumber string `json:"plate_number"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Items) != 2 || resp.Items[0].PlateNumber != "AA-123" {
		t.Fatalf("unexpected items: %+v", resp.Items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListMyVehiclesUserWithoutDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id FROM drivers").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	h := NewVehicleHandler(
		repository.NewUserRepo(db),
		repository.NewDriverRepo(db),
		repository.NewVehicleRepo(db),
	)
	req := httptest.NewRequest(http.MethodGet, "/v1/my-vehicles", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("user_id", uint64(7))

	if err := h.ListMyVehicles(c); err != nil {
		t.Fatalf("ListMyVehicles: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (%s)", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rideloop/carpool/internal/model"
	"github.com/rideloop/carpool/internal/repository"
)

// VehicleHandler registers vehicles for the authenticated user. A user
// becomes a driver implicitly here: the driver upsert and the vehicle
// insert run in one transaction so a vehicle can never exist without its
// driver row.
type VehicleHandler struct {
	Users    *repository.UserRepo
	Drivers  *repository.DriverRepo
	Vehicles *repository.VehicleRepo
}

func NewVehicleHandler(u *repository.UserRepo, d *repository.DriverRepo, v *repository.VehicleRepo) *VehicleHandler {
	if u == nil || d == nil || v == nil {
		panic("nil repository passed to NewVehicleHandler")
	}
	return &VehicleHandler{Users: u, Drivers: d, Vehicles: v}
}

type registerVehicleReq struct {
	Name           string  `json:"name"`
	Color          string  `json:"color"`
	PlateNumber    string  `json:"plate_number"`
	AvgConsumption float64 `json:"avg_consumption"`
}

// RegisterVehicle handles POST /v1/vehicles.
func (h *VehicleHandler) RegisterVehicle(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req registerVehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.PlateNumber = strings.TrimSpace(req.PlateNumber)
	if req.Name == "" || req.PlateNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and plate_number required"})
	}

	ctx := c.Request().Context()
	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	tx, err := h.Users.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	driverID, err := h.Drivers.EnsureTx(ctx, tx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to register driver"})
	}
	vehicle := model.Vehicle{
		DriverID:       driverID,
		Name:           req.Name,
		Color:          req.Color,
		PlateNumber:    req.PlateNumber,
		AvgConsumption: req.AvgConsumption,
	}
	if err := h.Vehicles.CreateTx(ctx, tx, &vehicle); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to register vehicle"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "vehicle registered",
		"vehicle": echo.Map{
			"id":              vehicle.ID,
			"driver_id":       vehicle.DriverID,
			"name":            vehicle.Name,
			"color":           vehicle.Color,
			"plate_number":    vehicle.PlateNumber,
			"avg_consumption": vehicle.AvgConsumption,
		},
	})
}

// ListMyVehicles handles GET /v1/my-vehicles, returning the authenticated
// driver's registered vehicles.
func (h *VehicleHandler) ListMyVehicles(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	driverID, err := h.Drivers.IDByUser(ctx, userID)
	if err != nil {
		if err == repository.ErrDriverNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "driver not found for user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	vehicles, err := h.Vehicles.ListByDriver(ctx, driverID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load vehicles"})
	}
	items := make([]echo.Map, 0, len(vehicles))
	for _, v := range vehicles {
		items = append(items, echo.Map{
			"id":              v.ID,
			"name":            v.Name,
			"color":           v.Color,
			"plate_number":    v.PlateNumber,
			"avg_consumption": v.AvgConsumption,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

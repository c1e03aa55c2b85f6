package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rideloop/carpool/internal/geo"
	"github.com/rideloop/carpool/internal/model"
	"github.com/rideloop/carpool/internal/repository"
)

// DriverHandler groups the trip registry operations performed by drivers:
// publishing trips, completing them and listing their seat requests.
type DriverHandler struct {
	Trips    *repository.TripRepo
	Requests *repository.TripRequestRepo
	Drivers  *repository.DriverRepo
}

func NewDriverHandler(t *repository.TripRepo, r *repository.TripRequestRepo, d *repository.DriverRepo) *DriverHandler {
	if t == nil || r == nil || d == nil {
		panic("nil repository passed to NewDriverHandler")
	}
	return &DriverHandler{Trips: t, Requests: r, Drivers: d}
}

type createTripsReq struct {
	VehicleID  uint64    `json:"vehicle_id"`
	Origin     geo.Point `json:"origin"`
	Dest       geo.Point `json:"destination"`
	PriceCents uint32    `json:"price_cents"`
	SeatCount  uint32    `json:"seat_count"`
	StopCount  uint32    `json:"stop_count"`
	Time       string    `json:"time"`  // "15:04" or "15:04:05"
	Dates      []string  `json:"dates"` // each "2006-01-02", one trip per date
}

// tripJSON is the response shape shared by trip endpoints.
func tripJSON(t model.Trip) echo.Map {
	return echo.Map{
		"id":         t.ID,
		"driver_id":  t.DriverID,
		"vehicle_id": t.VehicleID,
		"origin":     geo.Point{Lat: t.OriginLat, Lng: t.OriginLng},
		"destination": geo.Point{
			Lat: t.DestLat, Lng: t.DestLng,
		},
		"date":            t.TripDate,
		"time":            t.TripTime,
		"price_cents":     t.PriceCents,
		"seats_total":     t.SeatsTotal,
		"seats_available": t.SeatsAvailable,
		"stop_count":      t.StopCount,
		"status":          t.Status,
		"rating":          t.Rating,
	}
}

// normalizeClock validates a clock string and pads it to HH:MM:SS.
func normalizeClock(s string) (string, bool) {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format("15:04:05"), true
	}
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04:05"), true
	}
	return "", false
}

// CreateTrips handles POST /v1/trips. One trip is inserted per date in the
// request; the batch is all-or-nothing so a failure on any date leaves no
// trips behind. Capacity starts at the full seat count and the rating is
// seeded to the default of 5.
func (h *DriverHandler) CreateTrips(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createTripsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Dates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or missing dates array"})
	}
	if req.SeatCount == 0 || req.VehicleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicle_id and seat_count required"})
	}
	clock, ok := normalizeClock(req.Time)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time"})
	}
	for _, d := range req.Dates {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date: " + d})
		}
	}

	ctx := c.Request().Context()
	driverID, err := h.Drivers.IDByUser(ctx, userID)
	if err != nil {
		if err == repository.ErrDriverNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "driver not found for user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	trips := make([]model.Trip, 0, len(req.Dates))
	for _, d := range req.Dates {
		trips = append(trips, model.Trip{
			DriverID:       driverID,
			VehicleID:      req.VehicleID,
			OriginLat:      req.Origin.Lat,
			OriginLng:      req.Origin.Lng,
			DestLat:        req.Dest.Lat,
			DestLng:        req.Dest.Lng,
			TripDate:       d,
			TripTime:       clock,
			PriceCents:     req.PriceCents,
			SeatsTotal:     req.SeatCount,
			SeatsAvailable: req.SeatCount,
			StopCount:      req.StopCount,
			Status:         model.TripScheduled,
			Rating:         5,
		})
	}

	tx, err := h.Trips.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := h.Trips.CreateBatchTx(ctx, tx, trips); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create trips"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	ids := make([]uint64, len(trips))
	for i, t := range trips {
		ids[i] = t.ID
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "trips created",
		"created":  len(ids),
		"trip_ids": ids,
	})
}

// CompleteTrip handles PATCH /v1/trips/:id/complete. Only the owning
// driver may complete a trip; completing an already completed trip is a
// harmless no-op.
func (h *DriverHandler) CompleteTrip(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tripID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()
	if err := h.Trips.VerifyOwner(ctx, tripID, userID); err != nil {
		switch err {
		case repository.ErrTripNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only the driver can complete this trip"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}
	if err := h.Trips.MarkCompleted(ctx, tripID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to complete trip"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "trip marked as completed"})
}

// ListTripRequests handles GET /v1/trips/:id/requests. Only the owning
// driver may view the requests; an empty list is a valid response.
func (h *DriverHandler) ListTripRequests(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tripID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()
	if err := h.Trips.VerifyOwner(ctx, tripID, userID); err != nil {
		switch err {
		case repository.ErrTripNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized to view these trip requests"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}
	reqs, err := h.Requests.ListByTrip(ctx, tripID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load requests"})
	}
	items := make([]echo.Map, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, echo.Map{
			"request_id": r.RequestID,
			"status":     r.Status,
			"passenger": echo.Map{
				"user_id":   r.UserID,
				"full_name": r.FullName,
				"email":     r.Email,
			},
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"trip_id": tripID, "requests": items})
}

// ListMyTrips handles GET /v1/my-trips, returning the authenticated
// driver's published trips.
func (h *DriverHandler) ListMyTrips(c echo.Context) error {
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
	trips, err := h.Trips.ListByDriver(ctx, driverID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load trips"})
	}
	items := make([]echo.Map, 0, len(trips))
	for _, t := range trips {
		items = append(items, tripJSON(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rideloop/carpool/internal/geo"
	"github.com/rideloop/carpool/internal/model"
	"github.com/rideloop/carpool/internal/repository"
)

// PassengerHandler groups the passenger-facing trip operations: searching
// for matching trips, claiming a seat and listing active requests.
type PassengerHandler struct {
	Trips      *repository.TripRepo
	Requests   *repository.TripRequestRepo
	Passengers *repository.PassengerRepo
}

func NewPassengerHandler(t *repository.TripRepo, r *repository.TripRequestRepo, p *repository.PassengerRepo) *PassengerHandler {
	if t == nil || r == nil || p == nil {
		panic("nil repository passed to NewPassengerHandler")
	}
	return &PassengerHandler{Trips: t, Requests: r, Passengers: p}
}

type searchTripsReq struct {
	Origin geo.Point `json:"origin"`
	Dest   geo.Point `json:"destination"`
	Date   string    `json:"date"` // "2006-01-02"
	Time   string    `json:"time"` // "15:04" or "15:04:05"
}

// SearchTrips handles POST /v1/trips/search. The database narrows
// candidates by date and status; the distance and time-window filtering,
// ranking and the five-result cap run in the geo package.
func (h *PassengerHandler) SearchTrips(c echo.Context) error {
	var req searchTripsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	}
	clock, ok := normalizeClock(req.Time)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time"})
	}

	ctx := c.Request().Context()
	candidates, err := h.Trips.SearchCandidates(ctx, req.Date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}

	byID := make(map[uint64]repository.TripCandidate, len(candidates))
	trips := make([]model.Trip, 0, len(candidates))
	for _, cand := range candidates {
		byID[cand.Trip.ID] = cand
		trips = append(trips, cand.Trip)
	}

	matches := geo.MatchTrips(geo.Query{
		Origin: req.Origin,
		Dest:   req.Dest,
		Date:   req.Date,
		Time:   clock,
	}, trips)

	items := make([]echo.Map, 0, len(matches))
	for _, m := range matches {
		cand := byID[m.Trip.ID]
		items = append(items, echo.Map{
			"trip_id":         m.Trip.ID,
			"date":            m.Trip.TripDate,
			"time":            m.Trip.TripTime,
			"origin":          geo.Point{Lat: m.Trip.OriginLat, Lng: m.Trip.OriginLng},
			"destination":     geo.Point{Lat: m.Trip.DestLat, Lng: m.Trip.DestLng},
			"price_cents":     m.Trip.PriceCents,
			"seats_available": m.Trip.SeatsAvailable,
			"stop_count":      m.Trip.StopCount,
			"rating":          m.Trip.Rating,
			"distance_km":     m.DistanceKm,
			"eta_minutes":     m.EstimatedMinutes,
			"driver_name":     cand.DriverName,
			"vehicle": echo.Map{
				"name":         cand.VehicleName,
				"color":        cand.VehicleColor,
				"plate_number": cand.PlateNumber,
			},
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// RequestSeat handles POST /v1/trips/:id/requests. The capacity check here
// is advisory; the binding check happens when the driver accepts.
func (h *PassengerHandler) RequestSeat(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tripID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	seats, err := h.Trips.SeatsAvailable(ctx, tripID)
	if err != nil {
		if err == repository.ErrTripNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if seats == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no available slots for this trip"})
	}

	passengerID, err := h.Passengers.Ensure(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	open, err := h.Requests.HasOpenRequest(ctx, tripID, passengerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if open {
		return c.JSON(http.StatusConflict, echo.Map{"error": "request already exists for this trip"})
	}

	requestID, err := h.Requests.CreatePending(ctx, tripID, passengerID)
	if err != nil {
		if err == repository.ErrDuplicateRequest {
			return c.JSON(http.StatusConflict, echo.Map{"error": "request already exists for this trip"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create request"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":    "seat requested",
		"request_id": requestID,
		"trip_id":    tripID,
	})
}

// ListActiveRequests handles GET /v1/my-requests, returning the user's
// requests on trips that have not completed and still lie in the future.
func (h *PassengerHandler) ListActiveRequests(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reqs, err := h.Requests.ListActiveByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load requests"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": reqs})
}

// GetTrip handles GET /v1/trips/:id, a public read that sits behind the
// response cache.
func (h *PassengerHandler) GetTrip(c echo.Context) error {
	tripID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	trip, err := h.Trips.GetByID(c.Request().Context(), tripID)
	if err != nil {
		if err == repository.ErrTripNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, tripJSON(trip))
}

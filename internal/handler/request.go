package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rideloop/carpool/internal/queue"
	"github.com/rideloop/carpool/internal/repository"
	queue_publisher "github.com/rideloop/carpool/internal/service"
)

// RequestHandler implements the driver's decision on a seat request.
// Accepting is the only operation that consumes capacity, so it runs as a
// single transaction: capacity re-read under lock, conditional status
// flip, membership insert, guarded decrement. Any failed step rolls the
// whole thing back.
type RequestHandler struct {
	Trips    *repository.TripRepo
	Requests *repository.TripRequestRepo
}

func NewRequestHandler(t *repository.TripRepo, r *repository.TripRequestRepo) *RequestHandler {
	if t == nil || r == nil {
		panic("nil repository passed to NewRequestHandler")
	}
	return &RequestHandler{Trips: t, Requests: r}
}

type decideRequestReq struct {
	TripID uint64 `json:"trip_id"`
}

// AcceptRequest handles POST /v1/requests/:id/accept.
func (h *RequestHandler) AcceptRequest(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	requestID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req decideRequestReq
	if err := c.Bind(&req); err != nil || req.TripID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "trip_id required"})
	}

	ctx := c.Request().Context()
	if err := h.Trips.VerifyOwner(ctx, req.TripID, userID); err != nil {
		switch err {
		case repository.ErrTripNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only the driver can accept requests"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
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

	// Step 1: re-read capacity under a row lock. Concurrent accepts on
	// the same trip serialize here.
	seats, err := h.Trips.SeatsAvailableTx(ctx, tx, req.TripID)
	if err != nil {
		if err == repository.ErrTripNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if seats == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no available slots for this trip"})
	}

	// Step 2: conditional status flip. Zero matched rows means the
	// request was already accepted or rejected, or does not belong to
	// this trip.
	passengerID, err := h.Requests.MarkAcceptedTx(ctx, tx, requestID, req.TripID)
	if err != nil {
		if err == repository.ErrAlreadyProcessed {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found or already processed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	// Step 3: durable membership record.
	if err := h.Requests.AddTripPassengerTx(ctx, tx, req.TripID, passengerID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	// Step 4: guarded decrement, last line of defense against a negative
	// counter.
	if err := h.Trips.DecrementSeatsTx(ctx, tx, req.TripID); err != nil {
		if err == repository.ErrNoCapacity {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no available slots for this trip"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	// Best effort: the acceptance is already durable, a broker outage
	// must not fail the response.
	if trip, err := h.Trips.GetByID(ctx, req.TripID); err == nil {
		_ = queue_publisher.PublishSeatAccepted(context.Background(), queue.SeatAcceptedEvent{
			RequestID:   requestID,
			TripID:      trip.ID,
			PassengerID: passengerID,
			DriverID:    trip.DriverID,
			TripDate:    trip.TripDate,
			TripTime:    trip.TripTime,
			OriginLat:   trip.OriginLat,
			OriginLng:   trip.OriginLng,
			DestLat:     trip.DestLat,
			DestLng:     trip.DestLng,
			SeatsLeft:   trip.SeatsAvailable,
			AcceptedAt:  time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":      "passenger accepted",
		"request_id":   requestID,
		"trip_id":      req.TripID,
		"passenger_id": passengerID,
	})
}

// RejectRequest handles POST /v1/requests/:id/reject. Rejection never
// touches capacity, so a single conditional update is enough.
func (h *RequestHandler) RejectRequest(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	requestID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req decideRequestReq
	if err := c.Bind(&req); err != nil || req.TripID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "trip_id required"})
	}

	ctx := c.Request().Context()
	if err := h.Trips.VerifyOwner(ctx, req.TripID, userID); err != nil {
		switch err {
		case repository.ErrTripNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only the driver can reject requests"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}

	if err := h.Requests.MarkRejected(ctx, requestID, req.TripID); err != nil {
		if err == repository.ErrAlreadyProcessed {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found or already processed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "passenger rejected",
		"request_id": requestID,
		"trip_id":    req.TripID,
	})
}

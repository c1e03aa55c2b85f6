package model

import "time"

// TripRequest statuses. PENDING is the only non-terminal state; once a
// request is ACCEPTED or REJECTED it never transitions again.
const (
	RequestPending  = "PENDING"
	RequestAccepted = "ACCEPTED"
	RequestRejected = "REJECTED"
)

// TripRequest is a passenger's ask for one seat on a trip. The accept
// transition is the only operation that consumes trip capacity.
type TripRequest struct {
	ID          uint64    // trip_requests.id
	TripID      uint64    // trip_requests.trip_id
	PassengerID uint64    // trip_requests.passenger_id (passengers.id)
	Status      string    // trip_requests.status
	CreatedAt   time.Time // trip_requests.created_at
	UpdatedAt   time.Time // trip_requests.updated_at
}

// TripPassenger is the durable proof that a passenger holds a confirmed
// seat. Exactly one row is written per accepted request, inside the same
// transaction that flips the request status and decrements capacity.
type TripPassenger struct {
	ID          uint64    // trip_passengers.id
	TripID      uint64    // trip_passengers.trip_id
	PassengerID uint64    // trip_passengers.passenger_id
	CreatedAt   time.Time // trip_passengers.created_at
}

package model

import "time"

// Trip statuses. A trip is SCHEDULED from creation until its driver marks
// it COMPLETED; there is no cancelled state in the current schema.
const (
	TripScheduled = "SCHEDULED"
	TripCompleted = "COMPLETED"
)

// Trip represents a published ride: a fixed route between two coordinates
// on a given date and time, with a bounded number of seats.
//
// Fields:
//
//	ID             – primary key identifier.
//	DriverID       – driver publishing the trip (drivers.id, not users.id).
//	VehicleID      – vehicle used for the trip.
//	OriginLat/Lng  – departure point in WGS84 degrees.
//	DestLat/Lng    – destination point in WGS84 degrees.
//	TripDate       – calendar date of departure (DATE column).
//	TripTime       – departure clock time as "HH:MM:SS" (TIME column).
//	PriceCents     – per-seat price in cents.
//	SeatsTotal     – seat capacity fixed at creation.
//	SeatsAvailable – remaining capacity; decremented only when a seat
//	                 request is accepted, never below zero.
//	StopCount      – number of intermediate stops along the route.
//	Status         – SCHEDULED or COMPLETED.
//	Rating         – aggregate driver rating shown with the trip, seeded to 5.
type Trip struct {
	ID             uint64    // trips.id
	DriverID       uint64    // trips.driver_id
	VehicleID      uint64    // trips.vehicle_id
	OriginLat      float64   // trips.origin_lat
	OriginLng      float64   // trips.origin_lng
	DestLat        float64   // trips.dest_lat
	DestLng        float64   // trips.dest_lng
	TripDate       string    // trips.trip_date, "2006-01-02"
	TripTime       string    // trips.trip_time, "15:04:05"
	PriceCents     uint32    // trips.price_cents
	SeatsTotal     uint32    // trips.seats_total
	SeatsAvailable uint32    // trips.seats_available
	StopCount      uint32    // trips.stop_count
	Status         string    // trips.status
	Rating         float64   // trips.rating
	CreatedAt      time.Time // trips.created_at
	UpdatedAt      time.Time // trips.updated_at
}

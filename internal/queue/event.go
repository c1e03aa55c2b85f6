// Package queue defines message payloads exchanged over the message broker.
package queue

// SeatAcceptedEvent is published after an accept transaction commits. It
// carries enough context for downstream consumers to log or notify without
// querying the primary database.
type SeatAcceptedEvent struct {
	RequestID   uint64  `json:"request_id"`
	TripID      uint64  `json:"trip_id"`
	PassengerID uint64  `json:"passenger_id"`
	DriverID    uint64  `json:"driver_id"`
	TripDate    string  `json:"trip_date"`
	TripTime    string  `json:"trip_time"`
	OriginLat   float64 `json:"origin_lat"`
	OriginLng   float64 `json:"origin_lng"`
	DestLat     float64 `json:"dest_lat"`
	DestLng     float64 `json:"dest_lng"`
	SeatsLeft   uint32  `json:"seats_left"`
	AcceptedAt  string  `json:"accepted_at"`
}

package model

import "time"

// Vehicle belongs to a driver and is referenced by each trip the driver
// publishes with it.
type Vehicle struct {
	ID             uint64    // vehicles.id
	DriverID       uint64    // vehicles.driver_id
	Name           string    // vehicles.name
	Color          string    // vehicles.color
	PlateNumber    string    // vehicles.plate_number
	AvgConsumption float64   // vehicles.avg_consumption (l/100km)
	CreatedAt      time.Time // vehicles.created_at
}

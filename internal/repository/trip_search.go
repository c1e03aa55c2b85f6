package repository

import (
	"context"

	"github.com/rideloop/carpool/internal/model"
)

// TripCandidate is a trip joined with the driver and vehicle details shown
// in search results. The geometry and time-window filtering happens in the
// geo package; this query only narrows by date and status so the candidate
// set stays small and index-friendly.
type TripCandidate struct {
	Trip         model.Trip
	DriverName   string
	VehicleName  string
	VehicleColor string
	PlateNumber  string
}

// SearchCandidates returns all SCHEDULED trips on the given date with their
// driver and vehicle info, ordered by id for deterministic downstream
// ranking.
func (r *TripRepo) SearchCandidates(ctx context.Context, date string) ([]TripCandidate, error) {
	const q = `SELECT t.id, t.driver_id, t.vehicle_id,
			t.origin_lat, t.origin_lng, t.dest_lat, t.dest_lng,
			DATE_FORMAT(t.trip_date, '%Y-%m-%d'), TIME_FORMAT(t.trip_time, '%T'),
			t.price_cents, t.seats_total, t.seats_available, t.stop_count, t.status, t.rating,
			t.created_at, t.updated_at,
			u.full_name, v.name, v.color, v.plate_number
		FROM trips t
		JOIN drivers d ON d.id = t.driver_id
		JOIN users u ON u.id = d.user_id
		JOIN vehicles v ON v.id = t.vehicle_id
		WHERE t.trip_date = ? AND t.status = ?
		ORDER BY t.id`
	rows, err := r.db.QueryContext(ctx, q, date, model.TripScheduled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]TripCandidate, 0)
	for rows.Next() {
		var c TripCandidate
		t := &c.Trip
		if err := rows.Scan(&t.ID, &t.DriverID, &t.VehicleID,
			&t.OriginLat, &t.OriginLng, &t.DestLat, &t.DestLng,
			&t.TripDate, &t.TripTime,
			&t.PriceCents, &t.SeatsTotal, &t.SeatsAvailable, &t.StopCount, &t.Status, &t.Rating,
			&t.CreatedAt, &t.UpdatedAt,
			&c.DriverName, &c.VehicleName, &c.VehicleColor, &c.PlateNumber); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

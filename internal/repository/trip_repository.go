package repository

import (
	"context"
	"database/sql"

	"github.com/rideloop/carpool/internal/model"
)

// TripRepo owns trip records: creation, lookup, ownership checks, the
// status transition to COMPLETED and the capacity counter mutations used
// by the accept transaction. Methods suffixed Tx run inside a caller
// transaction; the caller commits or rolls back.
type TripRepo struct {
	db *sql.DB
}

// NewTripRepo returns a TripRepo bound to the given database.
func NewTripRepo(db *sql.DB) *TripRepo { return &TripRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span trips and trip_requests.
func (r *TripRepo) DB() *sql.DB { return r.db }

// tripCols is the canonical column list for scanning trips. Date and time
// are formatted in SQL so rows scan into plain strings regardless of the
// driver's time handling.
const tripCols = `id, driver_id, vehicle_id, origin_lat, origin_lng, dest_lat, dest_lng,
	DATE_FORMAT(trip_date, '%Y-%m-%d'), TIME_FORMAT(trip_time, '%T'),
	price_cents, seats_total, seats_available, stop_count, status, rating, created_at, updated_at`

func scanTrip(row interface{ Scan(...any) error }) (model.Trip, error) {
	var t model.Trip
	err := row.Scan(&t.ID, &t.DriverID, &t.VehicleID,
		&t.OriginLat, &t.OriginLng, &t.DestLat, &t.DestLng,
		&t.TripDate, &t.TripTime,
		&t.PriceCents, &t.SeatsTotal, &t.SeatsAvailable, &t.StopCount,
		&t.Status, &t.Rating, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// CreateBatchTx inserts one trip per entry within the caller's transaction
// and populates the generated IDs. Multi-date publishes pass one trip per
// date here; a failed insert rolls back the whole batch so partial
// publishes are never visible.
func (r *TripRepo) CreateBatchTx(ctx context.Context, tx *sql.Tx, trips []model.Trip) error {
	const q = `INSERT INTO trips
		(driver_id, vehicle_id, origin_lat, origin_lng, dest_lat, dest_lng,
		 trip_date, trip_time, price_cents, seats_total, seats_available, stop_count, status, rating)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	for i := range trips {
		t := &trips[i]
		res, err := tx.ExecContext(ctx, q,
			t.DriverID, t.VehicleID, t.OriginLat, t.OriginLng, t.DestLat, t.DestLng,
			t.TripDate, t.TripTime, t.PriceCents, t.SeatsTotal, t.SeatsAvailable,
			t.StopCount, t.Status, t.Rating)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		t.ID = uint64(id)
	}
	return nil
}

// GetByID returns a trip or ErrTripNotFound.
func (r *TripRepo) GetByID(ctx context.Context, tripID uint64) (model.Trip, error) {
	t, err := scanTrip(r.db.QueryRowContext(ctx,
		`SELECT `+tripCols+` FROM trips WHERE id = ?`, tripID))
	if err == sql.ErrNoRows {
		return model.Trip{}, ErrTripNotFound
	}
	return t, err
}

// ListByDriver returns a driver's published trips, newest date first.
func (r *TripRepo) ListByDriver(ctx context.Context, driverID uint64) ([]model.Trip, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tripCols+` FROM trips WHERE driver_id = ? ORDER BY trip_date DESC, trip_time DESC, id DESC`,
		driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// VerifyOwner checks that the trip exists and belongs to the driver
// registered for the given user. Returns ErrTripNotFound when the trip is
// absent and ErrForbidden when it is owned by someone else.
func (r *TripRepo) VerifyOwner(ctx context.Context, tripID, userID uint64) error {
	var ownerUserID uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT d.user_id FROM trips t JOIN drivers d ON d.id = t.driver_id WHERE t.id = ?`,
		tripID).Scan(&ownerUserID)
	if err == sql.ErrNoRows {
		return ErrTripNotFound
	}
	if err != nil {
		return err
	}
	if ownerUserID != userID {
		return ErrForbidden
	}
	return nil
}

// MarkCompleted transitions the trip to COMPLETED. Re-marking an already
// completed trip is a no-op, not an error. Ownership must be verified by
// the caller first.
func (r *TripRepo) MarkCompleted(ctx context.Context, tripID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE trips SET status = ? WHERE id = ?`, model.TripCompleted, tripID)
	return err
}

// SeatsAvailable reads the remaining capacity outside any transaction.
// Used by the advisory check in requestSeat; the binding check happens in
// the accept transaction. Returns ErrTripNotFound for a missing trip.
func (r *TripRepo) SeatsAvailable(ctx context.Context, tripID uint64) (uint32, error) {
	var n uint32
	err := r.db.QueryRowContext(ctx,
		`SELECT seats_available FROM trips WHERE id = ?`, tripID).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, ErrTripNotFound
	}
	return n, err
}

// SeatsAvailableTx re-reads the remaining capacity with a row lock. Two
// concurrent accepts on the same trip serialize here, so the second one
// observes the decremented value and aborts with NO_CAPACITY instead of
// over-booking.
func (r *TripRepo) SeatsAvailableTx(ctx context.Context, tx *sql.Tx, tripID uint64) (uint32, error) {
	var n uint32
	err := tx.QueryRowContext(ctx,
		`SELECT seats_available FROM trips WHERE id = ? FOR UPDATE`, tripID).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, ErrTripNotFound
	}
	return n, err
}

// DecrementSeatsTx consumes exactly one seat. The WHERE guard keeps the
// counter from ever going negative even if the earlier capacity read was
// made under weaker isolation; zero affected rows means the last seat was
// taken in between and the transaction must roll back.
func (r *TripRepo) DecrementSeatsTx(ctx context.Context, tx *sql.Tx, tripID uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE trips SET seats_available = seats_available - 1 WHERE id = ? AND seats_available > 0`,
		tripID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoCapacity
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
)

// TripRequestRepo owns the request lifecycle rows and the trip_passengers
// membership records written when a request is accepted. The accept path
// is split into Tx methods so the handler can run the four-step
// transaction (capacity re-read, conditional status flip, membership
// insert, guarded decrement) as one atomic unit together with TripRepo.
type TripRequestRepo struct {
	db *sql.DB
}

// NewTripRequestRepo returns a TripRequestRepo bound to the database.
func NewTripRequestRepo(db *sql.DB) *TripRequestRepo { return &TripRequestRepo{db: db} }

// HasOpenRequest reports whether the passenger already has a PENDING or
// ACCEPTED request on the trip. Used to refuse duplicate seat claims
// before inserting; rejected requests do not block a new attempt.
func (r *TripRequestRepo) HasOpenRequest(ctx context.Context, tripID, passengerID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM trip_requests WHERE trip_id = ? AND passenger_id = ? AND status IN ('PENDING','ACCEPTED') LIMIT 1`,
		tripID, passengerID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreatePending inserts a new PENDING request and returns its ID. A unique
// key on (trip_id, passenger_id, open) backs up the HasOpenRequest
// pre-check; the generated open flag is NULL for terminal statuses, so the
// key only fires for a racing open request, never for rejected history.
// A duplicate from such a race surfaces as ErrDuplicateRequest.
func (r *TripRequestRepo) CreatePending(ctx context.Context, tripID, passengerID uint64) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO trip_requests (trip_id, passenger_id, status) VALUES (?,?,'PENDING')`,
		tripID, passengerID)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicateRequest
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// MarkAcceptedTx flips the request to ACCEPTED and returns its passenger
// ID. The UPDATE is conditional on status = PENDING, so a request that was
// already processed (or a mismatched request/trip pair) matches zero rows
// and the method returns ErrAlreadyProcessed without mutating anything.
func (r *TripRequestRepo) MarkAcceptedTx(ctx context.Context, tx *sql.Tx, requestID, tripID uint64) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE trip_requests SET status = 'ACCEPTED' WHERE id = ? AND trip_id = ? AND status = 'PENDING'`,
		requestID, tripID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrAlreadyProcessed
	}
	var passengerID uint64
	err = tx.QueryRowContext(ctx,
		`SELECT passenger_id FROM trip_requests WHERE id = ? AND trip_id = ?`,
		requestID, tripID).Scan(&passengerID)
	if err != nil {
		return 0, err
	}
	return passengerID, nil
}

// AddTripPassengerTx writes the durable membership record for an accepted
// request. Exactly one row per acceptance, inside the accept transaction.
func (r *TripRequestRepo) AddTripPassengerTx(ctx context.Context, tx *sql.Tx, tripID, passengerID uint64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO trip_passengers (trip_id, passenger_id) VALUES (?,?)`,
		tripID, passengerID)
	return err
}

// MarkRejected flips the request to REJECTED. Rejection has no capacity
// effect, so a single conditional statement suffices; zero matched rows
// means the request was already processed or does not exist.
func (r *TripRequestRepo) MarkRejected(ctx context.Context, requestID, tripID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE trip_requests SET status = 'REJECTED' WHERE id = ? AND trip_id = ? AND status = 'PENDING'`,
		requestID, tripID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyProcessed
	}
	return nil
}

// RequestWithPassenger is a request joined with the requesting passenger's
// identity, as shown to the trip's driver.
type RequestWithPassenger struct {
	RequestID uint64 `json:"request_id"`
	Status    string `json:"status"`
	UserID    uint64 `json:"user_id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
}

// ListByTrip returns all requests for a trip with passenger contact info,
// ordered by request ID. Ownership is verified by the caller. An empty
// slice is a valid result.
func (r *TripRequestRepo) ListByTrip(ctx context.Context, tripID uint64) ([]RequestWithPassenger, error) {
	const q = `SELECT tr.id, tr.status, u.id, u.full_name, u.email
		FROM trip_requests tr
		JOIN passengers p ON p.id = tr.passenger_id
		JOIN users u ON u.id = p.user_id
		WHERE tr.trip_id = ?
		ORDER BY tr.id`
	rows, err := r.db.QueryContext(ctx, q, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RequestWithPassenger, 0)
	for rows.Next() {
		var rp RequestWithPassenger
		if err := rows.Scan(&rp.RequestID, &rp.Status, &rp.UserID, &rp.FullName, &rp.Email); err != nil {
			return nil, err
		}
		out = append(out, rp)
	}
	return out, rows.Err()
}

// ActiveRequest is a passenger's request joined with a summary of its
// trip, for the "my requests" view.
type ActiveRequest struct {
	RequestID uint64  `json:"request_id"`
	Status    string  `json:"status"`
	TripID    uint64  `json:"trip_id"`
	OriginLat float64 `json:"origin_lat"`
	OriginLng float64 `json:"origin_lng"`
	DestLat   float64 `json:"dest_lat"`
	DestLng   float64 `json:"dest_lng"`
	TripDate  string  `json:"trip_date"`
	TripTime  string  `json:"trip_time"`
}

// ListActiveByUser returns the user's requests on trips that are not yet
// completed and depart in the future, across all trips.
func (r *TripRequestRepo) ListActiveByUser(ctx context.Context, userID uint64) ([]ActiveRequest, error) {
	const q = `SELECT tr.id, tr.status, t.id,
			t.origin_lat, t.origin_lng, t.dest_lat, t.dest_lng,
			DATE_FORMAT(t.trip_date, '%Y-%m-%d'), TIME_FORMAT(t.trip_time, '%T')
		FROM trip_requests tr
		JOIN trips t ON t.id = tr.trip_id
		JOIN passengers p ON p.id = tr.passenger_id
		WHERE p.user_id = ?
		  AND t.status <> 'COMPLETED'
		  AND (t.trip_date > CURDATE() OR (t.trip_date = CURDATE() AND t.trip_time > CURTIME()))
		ORDER BY t.trip_date, t.trip_time, tr.id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ActiveRequest, 0)
	for rows.Next() {
		var a ActiveRequest
		if err := rows.Scan(&a.RequestID, &a.Status, &a.TripID,
			&a.OriginLat, &a.OriginLng, &a.DestLat, &a.DestLng,
			&a.TripDate, &a.TripTime); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

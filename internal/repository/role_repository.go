package repository

import (
	"context"
	"database/sql"
)

// DriverRepo maps users to driver registrations. A user becomes a driver
// implicitly the first time they register a vehicle; EnsureTx models that
// as an idempotent upsert instead of inline branching in the handler.
type DriverRepo struct{ DB *sql.DB }

func NewDriverRepo(db *sql.DB) *DriverRepo { return &DriverRepo{DB: db} }

// IDByUser resolves a user to their driver ID. Returns ErrDriverNotFound
// when the user has no driver registration.
func (r *DriverRepo) IDByUser(ctx context.Context, userID uint64) (uint64, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM drivers WHERE user_id=? LIMIT 1", userID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrDriverNotFound
	}
	return id, err
}

// EnsureTx returns the driver ID for the user, creating the registration
// when missing. Runs inside the caller's transaction so vehicle
// registration and the driver upsert commit together.
func (r *DriverRepo) EnsureTx(ctx context.Context, tx *sql.Tx, userID uint64) (uint64, error) {
	var id uint64
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM drivers WHERE user_id=? LIMIT 1", userID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, "INSERT INTO drivers (user_id) VALUES (?)", userID)
	if err != nil {
		return 0, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(newID), nil
}

// PassengerRepo maps users to passenger registrations. Every user gets a
// passenger row at signup; Ensure keeps the mapping self-healing for
// accounts created before that rule existed.
type PassengerRepo struct{ DB *sql.DB }

func NewPassengerRepo(db *sql.DB) *PassengerRepo { return &PassengerRepo{DB: db} }

// IDByUser resolves a user to their passenger ID. Returns sql.ErrNoRows
// when no passenger registration exists.
func (r *PassengerRepo) IDByUser(ctx context.Context, userID uint64) (uint64, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM passengers WHERE user_id=? LIMIT 1", userID).Scan(&id)
	return id, err
}

// Ensure returns the passenger ID for the user, inserting the row when
// missing.
func (r *PassengerRepo) Ensure(ctx context.Context, userID uint64) (uint64, error) {
	id, err := r.IDByUser(ctx, userID)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx, "INSERT INTO passengers (user_id) VALUES (?)", userID)
	if err != nil {
		return 0, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(newID), nil
}

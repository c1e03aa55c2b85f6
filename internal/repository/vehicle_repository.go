package repository

import (
	"context"
	"database/sql"

	"github.com/rideloop/carpool/internal/model"
)

// VehicleRepo provides persistence for driver vehicles.
type VehicleRepo struct{ DB *sql.DB }

func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{DB: db} }

// CreateTx inserts a vehicle within the caller's transaction and populates
// the generated ID. Used by vehicle registration together with the driver
// upsert so both commit or neither does.
func (r *VehicleRepo) CreateTx(ctx context.Context, tx *sql.Tx, v *model.Vehicle) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO vehicles (driver_id, name, color, plate_number, avg_consumption) VALUES (?,?,?,?,?)",
		v.DriverID, v.Name, v.Color, v.PlateNumber, v.AvgConsumption)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// ListByDriver returns all vehicles registered by a driver, oldest first.
func (r *VehicleRepo) ListByDriver(ctx context.Context, driverID uint64) ([]model.Vehicle, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, driver_id, name, color, plate_number, avg_consumption, created_at FROM vehicles WHERE driver_id=? ORDER BY id",
		driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Vehicle, 0)
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.DriverID, &v.Name, &v.Color, &v.PlateNumber, &v.AvgConsumption, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

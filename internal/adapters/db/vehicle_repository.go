package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fleetops-disposal-service/internal/domain/vehicle"

	"github.com/google/uuid"
)

// VehicleRepository implements the slice of the vehicle store the disposal
// workflow consumes. The vehicles table is owned by the fleet CRUD module.
type VehicleRepository struct {
	conn *Connection
}

// NewVehicleRepository creates a new vehicle repository
func NewVehicleRepository(conn *Connection) *VehicleRepository {
	return &VehicleRepository{conn: conn}
}

// GetByID retrieves a vehicle by ID
func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	query := `
		SELECT id, fleet_number, make, model, year, status, created_at, updated_at
		FROM vehicles
		WHERE id = $1
	`

	var v vehicle.Vehicle
	err := r.conn.GetDB().QueryRowContext(ctx, query, id).Scan(
		&v.ID,
		&v.FleetNumber,
		&v.Make,
		&v.Model,
		&v.Year,
		&v.Status,
		&v.CreatedAt,
		&v.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("vehicle not found")
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	return &v, nil
}

// UpdateStatus writes the vehicle's lifecycle status
func (r *VehicleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status vehicle.Status) error {
	query := `
		UPDATE vehicles
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.conn.GetDB().ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update vehicle status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("vehicle not found")
	}

	return nil
}

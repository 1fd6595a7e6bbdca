package db

import (
	"context"
	"database/sql"
	"fmt"

	"fleetops-disposal-service/internal/domain/disposal"

	"github.com/google/uuid"
)

// DisposalRequestRepository implements the disposal request repository interface
type DisposalRequestRepository struct {
	conn *Connection
}

// NewDisposalRequestRepository creates a new disposal request repository
func NewDisposalRequestRepository(conn *Connection) *DisposalRequestRepository {
	return &DisposalRequestRepository{conn: conn}
}

const disposalRequestColumns = `id, vehicle_id, disposal_reason, recommended_method, condition_rating,
		current_mileage, estimated_value, requested_by, request_date, approval_status,
		approved_by, approved_at, rejected_by, rejected_at, rejection_reason, status,
		created_at, updated_at`

// Create persists a new disposal request
func (r *DisposalRequestRepository) Create(ctx context.Context, req *disposal.Request) error {
	query := `
		INSERT INTO disposal_requests (` + disposalRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		req.ID,
		req.VehicleID,
		req.Reason,
		req.Method,
		req.Condition,
		req.CurrentMileage,
		req.EstimatedValue,
		req.RequestedBy,
		req.RequestDate,
		req.ApprovalStatus,
		req.ApprovedBy,
		req.ApprovedAt,
		req.RejectedBy,
		req.RejectedAt,
		nullableString(req.RejectionReason),
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create disposal request: %w", err)
	}

	return nil
}

// GetByID retrieves a disposal request by ID
func (r *DisposalRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*disposal.Request, error) {
	query := `
		SELECT ` + disposalRequestColumns + `
		FROM disposal_requests
		WHERE id = $1
	`

	row := r.conn.GetDB().QueryRowContext(ctx, query, id)
	req, err := scanDisposalRequest(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("disposal request not found")
		}
		return nil, fmt.Errorf("failed to get disposal request: %w", err)
	}

	return req, nil
}

// List retrieves disposal requests with an optional status filter
func (r *DisposalRequestRepository) List(ctx context.Context, status *disposal.Status, page, pageSize int) ([]*disposal.Request, error) {
	baseQuery := `
		SELECT ` + disposalRequestColumns + `
		FROM disposal_requests
	`

	var whereClause string
	var args []interface{}
	argCount := 1

	if status != nil {
		whereClause = "WHERE status = $1"
		args = append(args, *status)
		argCount++
	}

	limitClause := fmt.Sprintf("LIMIT $%d", argCount)
	offsetClause := fmt.Sprintf("OFFSET $%d", argCount+1)
	args = append(args, pageSize, (page-1)*pageSize)

	query := baseQuery + whereClause + " ORDER BY request_date DESC " + limitClause + " " + offsetClause

	rows, err := r.conn.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list disposal requests: %w", err)
	}
	defer rows.Close()

	var requests []*disposal.Request
	for rows.Next() {
		req, err := scanDisposalRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan disposal request: %w", err)
		}
		requests = append(requests, req)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating disposal requests: %w", err)
	}

	return requests, nil
}

// Update updates a disposal request
func (r *DisposalRequestRepository) Update(ctx context.Context, req *disposal.Request) error {
	query := `
		UPDATE disposal_requests
		SET disposal_reason = $2, recommended_method = $3, condition_rating = $4,
		    current_mileage = $5, estimated_value = $6, approval_status = $7,
		    approved_by = $8, approved_at = $9, rejected_by = $10, rejected_at = $11,
		    rejection_reason = $12, status = $13, updated_at = $14
		WHERE id = $1
	`

	result, err := r.conn.GetDB().ExecContext(ctx, query,
		req.ID,
		req.Reason,
		req.Method,
		req.Condition,
		req.CurrentMileage,
		req.EstimatedValue,
		req.ApprovalStatus,
		req.ApprovedBy,
		req.ApprovedAt,
		req.RejectedBy,
		req.RejectedAt,
		nullableString(req.RejectionReason),
		req.Status,
		req.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update disposal request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("disposal request not found")
	}

	return nil
}

// rowScanner covers both sql.Row and sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDisposalRequest(row rowScanner) (*disposal.Request, error) {
	var req disposal.Request
	var rejectionReason sql.NullString

	err := row.Scan(
		&req.ID,
		&req.VehicleID,
		&req.Reason,
		&req.Method,
		&req.Condition,
		&req.CurrentMileage,
		&req.EstimatedValue,
		&req.RequestedBy,
		&req.RequestDate,
		&req.ApprovalStatus,
		&req.ApprovedBy,
		&req.ApprovedAt,
		&req.RejectedBy,
		&req.RejectedAt,
		&rejectionReason,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rejectionReason.Valid {
		req.RejectionReason = rejectionReason.String
	}
	return &req, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

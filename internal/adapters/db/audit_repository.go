package db

import (
	"context"
	"fmt"

	"fleetops-disposal-service/internal/ports/outbound"
)

// AuditRepository implements the audit trail over the audit_log table
type AuditRepository struct {
	conn *Connection
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(conn *Connection) *AuditRepository {
	return &AuditRepository{conn: conn}
}

// Record appends an audit entry
func (r *AuditRepository) Record(ctx context.Context, entry outbound.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, actor, action, entity_kind, entity_id, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		entry.ID,
		entry.Actor,
		entry.Action,
		entry.EntityKind,
		entry.EntityID,
		entry.Summary,
		entry.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	return nil
}

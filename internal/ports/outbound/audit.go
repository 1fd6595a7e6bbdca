package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditEntry records who did what to which entity. Entries are written
// best-effort after successful commands; a failed write never rolls back
// the command itself.
type AuditEntry struct {
	ID         uuid.UUID `json:"id"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	EntityKind string    `json:"entity_kind"`
	EntityID   uuid.UUID `json:"entity_id"`
	Summary    string    `json:"summary"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuditLog defines the interface for the audit trail collaborator
type AuditLog interface {
	// Record appends an audit entry
	Record(ctx context.Context, entry AuditEntry) error
}

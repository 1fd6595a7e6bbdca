package vehicle

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle status of a fleet vehicle
type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusDisposed    Status = "disposed"
)

// statusRank orders statuses by precedence: disposed > maintenance > active.
// The disposal workflow is the only writer of "disposed" and of the revert
// back to "active".
var statusRank = map[Status]int{
	StatusActive:      0,
	StatusMaintenance: 1,
	StatusDisposed:    2,
}

// IsValid returns true if the status is one of the known values
func (s Status) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// Outranks returns true if s takes precedence over other
func (s Status) Outranks(other Status) bool {
	return statusRank[s] > statusRank[other]
}

// Vehicle represents a fleet vehicle referenced by the disposal workflow.
// The vehicle record itself is owned by the fleet CRUD modules; this core
// only projects disposal state onto its status field.
type Vehicle struct {
	ID          uuid.UUID `json:"id"`
	FleetNumber string    `json:"fleet_number"`
	Make        string    `json:"make"`
	Model       string    `json:"model"`
	Year        int       `json:"year"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsDisposed returns true if the vehicle has left active fleet use
func (v *Vehicle) IsDisposed() bool {
	return v.Status == StatusDisposed
}

// ApplyStatus moves the vehicle to the given status honoring precedence.
// A lower-precedence status never overwrites a higher one unless force is
// set; the rejection/cancellation revert paths are the only forced writes.
func (v *Vehicle) ApplyStatus(next Status, force bool) bool {
	if !force && v.Status.Outranks(next) {
		return false
	}
	if v.Status == next {
		return false
	}
	v.Status = next
	v.UpdatedAt = time.Now()
	return true
}

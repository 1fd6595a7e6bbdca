package shared

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across components
var (
	ErrNoBidsFound = errors.New("no bids found")
)

// ValidationError reports malformed or out-of-range input. The message is
// suitable for direct display to the operator.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for a named field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a referenced entity that does not exist
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NewNotFoundError creates a not-found error for an entity reference
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// InvalidStateError reports an operation attempted while the entity is in a
// lifecycle state that does not permit it
type InvalidStateError struct {
	Entity string
	State  string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s is %s: %s", e.Entity, e.State, e.Reason)
}

// NewInvalidStateError creates an invalid-state error
func NewInvalidStateError(entity, state, reason string) *InvalidStateError {
	return &InvalidStateError{Entity: entity, State: state, Reason: reason}
}

// InvalidTransitionError reports a state-machine transition that the
// lifecycle does not allow
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

// NewInvalidTransitionError creates an invalid-transition error
func NewInvalidTransitionError(entity, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, From: from, To: to}
}

// ReserveNotMetError reports a close attempt whose highest bid is below the
// auction's reserve price. No mutation happens on this path.
type ReserveNotMetError struct {
	ReservePrice float64
	HighestBid   float64
}

func (e *ReserveNotMetError) Error() string {
	return fmt.Sprintf("highest bid %.2f is below the reserve price %.2f", e.HighestBid, e.ReservePrice)
}

// DependencyError reports a persistence gateway failure. The underlying
// error is wrapped and reachable through errors.Unwrap.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// NewDependencyError wraps a gateway failure with the failing operation
func NewDependencyError(op string, err error) *DependencyError {
	return &DependencyError{Op: op, Err: err}
}

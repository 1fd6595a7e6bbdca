package auction

import (
	"time"

	"github.com/google/uuid"
)

// MinimumDuration is the shortest allowed auction window. An auction whose
// end date lands exactly MinimumDuration after its start date is valid.
const MinimumDuration = 7 * 24 * time.Hour

// Type represents how the auction is conducted
type Type string

const (
	TypePublic    Type = "public"
	TypeSealedBid Type = "sealed_bid"
	TypeOnline    Type = "online"
)

// IsValid returns true if the auction type is one of the known values
func (t Type) IsValid() bool {
	switch t {
	case TypePublic, TypeSealedBid, TypeOnline:
		return true
	}
	return false
}

// Status represents the current status of a disposal auction
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusClosed    Status = "closed"
	StatusAwarded   Status = "awarded"
	StatusCancelled Status = "cancelled"
)

// transitions is the auction state machine. End dates are informational;
// every transition is an explicit operator action.
var transitions = map[Status][]Status{
	StatusScheduled: {StatusActive, StatusCancelled},
	StatusActive:    {StatusClosed},
	StatusClosed:    {StatusAwarded},
}

// CanTransition returns true if the from -> to transition is allowed
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true once the auction can make no further transitions
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Auction represents an auction listing for an approved disposal request.
// The request owns at most one non-terminal auction at a time; that is a
// workflow invariant, not a schema constraint.
type Auction struct {
	ID            uuid.UUID  `json:"id"`
	DisposalID    uuid.UUID  `json:"disposal_id"`
	Type          Type       `json:"auction_type"`
	StartingPrice float64    `json:"starting_price"`
	ReservePrice  *float64   `json:"reserve_price,omitempty"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       time.Time  `json:"end_date"`
	Status        Status     `json:"auction_status"`
	WinnerID      *uuid.UUID `json:"winner_id,omitempty"`
	WinningBid    *float64   `json:"winning_bid,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsActive returns true if the auction is currently accepting bids
func (a *Auction) IsActive() bool {
	return a.Status == StatusActive
}

// HasReserve returns true if a reserve price is set
func (a *Auction) HasReserve() bool {
	return a.ReservePrice != nil
}

// ReserveMet returns true if the amount satisfies the reserve price, or if
// no reserve is set
func (a *Auction) ReserveMet(amount float64) bool {
	return a.ReservePrice == nil || amount >= *a.ReservePrice
}

// Transition moves the auction to the next status if the state machine
// allows it
func (a *Auction) Transition(next Status) bool {
	if !CanTransition(a.Status, next) {
		return false
	}
	a.Status = next
	a.UpdatedAt = time.Now()
	return true
}

// RecordWinner stamps the winning bid onto a closed auction
func (a *Auction) RecordWinner(bidID uuid.UUID, amount float64) {
	a.WinnerID = &bidID
	a.WinningBid = &amount
	a.UpdatedAt = time.Now()
}

package bid

import (
	"time"

	"github.com/google/uuid"
)

// MinimumIncrement is the fixed amount a new bid must clear the current
// highest bid by. It is a workflow constant, not a per-auction field.
const MinimumIncrement = 1000.0

// Bid represents a single bid recorded against a disposal auction. Bids are
// append-only; once written they are never mutated or deleted.
type Bid struct {
	ID            uuid.UUID `json:"id"`
	AuctionID     uuid.UUID `json:"auction_id"`
	BidderName    string    `json:"bidder_name"`
	BidderContact string    `json:"bidder_contact"`
	Amount        float64   `json:"bid_amount"`
	BidDate       time.Time `json:"bid_date"`
	IsValid       bool      `json:"is_valid"`
	Notes         string    `json:"notes,omitempty"`
}

// MinimumNext returns the lowest acceptable bid amount given the auction's
// starting price and the current highest bid (zero when no bids exist yet)
func MinimumNext(startingPrice, currentHighest float64) float64 {
	minimum := currentHighest + MinimumIncrement
	if startingPrice > minimum {
		minimum = startingPrice
	}
	return minimum
}

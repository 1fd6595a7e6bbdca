package inbound

import (
	"context"
	"time"

	"fleetops-disposal-service/internal/domain/auction"
	"fleetops-disposal-service/internal/domain/bid"
	"fleetops-disposal-service/internal/domain/disposal"

	"github.com/google/uuid"
)

// WorkflowService defines the operator-facing surface of the disposal and
// auction workflow. Every command returns the updated entity or a typed
// error with a display-ready message.
type WorkflowService interface {
	// CreateRequest files a new disposal request for a vehicle
	CreateRequest(ctx context.Context, req CreateRequestInput) (*disposal.Request, error)

	// ApproveRequest approves a pending request and lists the vehicle for disposal
	ApproveRequest(ctx context.Context, requestID, approverID uuid.UUID) (*disposal.Request, error)

	// RejectRequest rejects a pending request; a non-empty reason is required
	RejectRequest(ctx context.Context, requestID, rejecterID uuid.UUID, reason string) (*disposal.Request, error)

	// UpdateRequest edits a disposal request's fields
	UpdateRequest(ctx context.Context, requestID uuid.UUID, req UpdateRequestInput) (*disposal.Request, error)

	// CreateAuction lists an approved disposal request for auction
	CreateAuction(ctx context.Context, req CreateAuctionInput) (*auction.Auction, error)

	// StartAuction opens a scheduled auction for bidding
	StartAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error)

	// PlaceBid records a bid against an active auction
	PlaceBid(ctx context.Context, req PlaceBidInput) (*bid.Bid, error)

	// CloseAuction closes an active auction, determining the winning bid
	CloseAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error)

	// AwardAuction awards a closed auction to its winner
	AwardAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error)

	// CancelAuction cancels a scheduled auction and relists the request
	CancelAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error)

	// GetRequest retrieves a disposal request by ID
	GetRequest(ctx context.Context, requestID uuid.UUID) (*disposal.Request, error)

	// ListRequests retrieves disposal requests with an optional status filter
	ListRequests(ctx context.Context, req ListRequestsInput) ([]*disposal.Request, error)

	// ListAuctionsForRequest retrieves the auctions spawned by a request
	ListAuctionsForRequest(ctx context.Context, requestID uuid.UUID) ([]*auction.Auction, error)

	// ListBidsForAuction retrieves an auction's bids, highest first
	ListBidsForAuction(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error)

	// HighestBid retrieves the current highest bid, or nil when none exist
	HighestBid(ctx context.Context, auctionID uuid.UUID) (*bid.Bid, error)
}

// request to create a disposal request
type CreateRequestInput struct {
	VehicleID      uuid.UUID          `json:"vehicle_id"`
	Reason         disposal.Reason    `json:"disposal_reason"`
	Method         disposal.Method    `json:"recommended_method"`
	Condition      disposal.Condition `json:"condition_rating"`
	CurrentMileage int64              `json:"current_mileage"`
	EstimatedValue float64            `json:"estimated_value"`
	RequestedBy    uuid.UUID          `json:"requested_by"`
}

// request to edit a disposal request; nil fields are left untouched
type UpdateRequestInput struct {
	Reason         *disposal.Reason    `json:"disposal_reason,omitempty"`
	Method         *disposal.Method    `json:"recommended_method,omitempty"`
	Condition      *disposal.Condition `json:"condition_rating,omitempty"`
	CurrentMileage *int64              `json:"current_mileage,omitempty"`
	EstimatedValue *float64            `json:"estimated_value,omitempty"`
}

// request to create an auction against an approved disposal request
type CreateAuctionInput struct {
	DisposalID    uuid.UUID    `json:"disposal_id"`
	Type          auction.Type `json:"auction_type"`
	StartingPrice float64      `json:"starting_price"`
	ReservePrice  *float64     `json:"reserve_price,omitempty"`
	StartDate     time.Time    `json:"start_date"`
	EndDate       time.Time    `json:"end_date"`
}

// request to place a bid
type PlaceBidInput struct {
	AuctionID     uuid.UUID `json:"auction_id"`
	BidderName    string    `json:"bidder_name"`
	BidderContact string    `json:"bidder_contact"`
	Amount        float64   `json:"bid_amount"`
	Notes         string    `json:"notes,omitempty"`
}

// request to list disposal requests
type ListRequestsInput struct {
	Status   *disposal.Status `json:"status,omitempty"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

package outbound

import (
	"context"

	"fleetops-disposal-service/internal/domain/auction"
	"fleetops-disposal-service/internal/domain/bid"
	"fleetops-disposal-service/internal/domain/disposal"
	"fleetops-disposal-service/internal/domain/vehicle"

	"github.com/google/uuid"
)

// DisposalRequestRepository defines the persistence contract for disposal requests
type DisposalRequestRepository interface {
	// Create persists a new disposal request
	Create(ctx context.Context, req *disposal.Request) error

	// GetByID retrieves a disposal request by ID
	GetByID(ctx context.Context, id uuid.UUID) (*disposal.Request, error)

	// List retrieves disposal requests with an optional status filter
	List(ctx context.Context, status *disposal.Status, page, pageSize int) ([]*disposal.Request, error)

	// Update updates a disposal request
	Update(ctx context.Context, req *disposal.Request) error
}

// AuctionRepository defines the persistence contract for disposal auctions
type AuctionRepository interface {
	// Create persists a new auction
	Create(ctx context.Context, a *auction.Auction) error

	// GetByID retrieves an auction by ID
	GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error)

	// GetByDisposalID retrieves all auctions spawned by a disposal request
	GetByDisposalID(ctx context.Context, disposalID uuid.UUID) ([]*auction.Auction, error)

	// Update updates an auction
	Update(ctx context.Context, a *auction.Auction) error
}

// BidRepository defines the persistence contract for the bid ledger.
// Bids are append-only; there is no update or delete.
type BidRepository interface {
	// Create appends a bid to the ledger
	Create(ctx context.Context, b *bid.Bid) error

	// GetByAuctionID retrieves all bids for an auction, highest first
	GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error)

	// GetHighest retrieves the highest bid for an auction, or
	// shared.ErrNoBidsFound when the ledger is empty
	GetHighest(ctx context.Context, auctionID uuid.UUID) (*bid.Bid, error)

	// CountByAuctionID returns the number of bids recorded for an auction
	CountByAuctionID(ctx context.Context, auctionID uuid.UUID) (int, error)
}

// VehicleRepository defines the slice of the vehicle store the disposal
// workflow touches. The vehicle CRUD module owns the rest.
type VehicleRepository interface {
	// GetByID retrieves a vehicle by ID
	GetByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error)

	// UpdateStatus writes the vehicle's lifecycle status
	UpdateStatus(ctx context.Context, id uuid.UUID, status vehicle.Status) error
}

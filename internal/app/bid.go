package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleetops-disposal-service/internal/domain/bid"
	"fleetops-disposal-service/internal/domain/shared"
	"fleetops-disposal-service/internal/ports/inbound"
	"fleetops-disposal-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BidService implements the bid ledger: it records bids against active
// auctions under the minimum-increment rule and answers highest-bid
// queries. Rejected bids never touch the ledger.
type BidService struct {
	bidRepo     outbound.BidRepository
	auctionRepo outbound.AuctionRepository
	logger      zerolog.Logger
}

type BidServiceParams struct {
	BidRepo     outbound.BidRepository
	AuctionRepo outbound.AuctionRepository
	Logger      zerolog.Logger
}

// NewBidService creates a new bid ledger service
func NewBidService(params BidServiceParams) *BidService {
	return &BidService{
		bidRepo:     params.BidRepo,
		auctionRepo: params.AuctionRepo,
		logger:      params.Logger.With().Str("component", "bid_service").Logger(),
	}
}

// PlaceBid records a bid against an active auction. The amount must be at
// least max(starting price, current highest + minimum increment).
func (service *BidService) PlaceBid(ctx context.Context, req inbound.PlaceBidInput) (*bid.Bid, error) {
	service.logger.Info().
		Str("auction_id", req.AuctionID.String()).
		Str("bidder_name", req.BidderName).
		Float64("bid_amount", req.Amount).
		Msg("Attempting to place bid")

	if req.BidderName == "" {
		return nil, shared.NewValidationError("bidder_name", "bidder name is required")
	}
	if req.Amount <= 0 {
		return nil, shared.NewValidationError("bid_amount", "bid amount must be greater than 0")
	}

	a, err := service.auctionRepo.GetByID(ctx, req.AuctionID)
	if err != nil {
		service.logger.Error().Err(err).Str("auction_id", req.AuctionID.String()).Msg("Auction not found")
		return nil, shared.NewNotFoundError("auction", req.AuctionID.String())
	}

	if !a.IsActive() {
		service.logger.Warn().
			Str("auction_id", req.AuctionID.String()).
			Str("auction_status", string(a.Status)).
			Msg("Auction not accepting bids")
		return nil, shared.NewInvalidStateError("auction", string(a.Status), "auction is not accepting bids")
	}

	currentHighest := 0.0
	highest, err := service.bidRepo.GetHighest(ctx, req.AuctionID)
	if err != nil && !errors.Is(err, shared.ErrNoBidsFound) {
		return nil, shared.NewDependencyError("get highest bid", err)
	}
	if highest != nil {
		currentHighest = highest.Amount
	}

	minimum := bid.MinimumNext(a.StartingPrice, currentHighest)
	if req.Amount < minimum {
		service.logger.Warn().
			Str("auction_id", req.AuctionID.String()).
			Float64("bid_amount", req.Amount).
			Float64("minimum_bid", minimum).
			Float64("current_highest", currentHighest).
			Msg("Bid amount below minimum")
		return nil, shared.NewValidationError("bid_amount", fmt.Sprintf("bid must be at least %.2f", minimum))
	}

	newBid := &bid.Bid{
		ID:            uuid.New(),
		AuctionID:     req.AuctionID,
		BidderName:    req.BidderName,
		BidderContact: req.BidderContact,
		Amount:        req.Amount,
		BidDate:       time.Now(),
		IsValid:       true,
		Notes:         req.Notes,
	}

	if err := service.bidRepo.Create(ctx, newBid); err != nil {
		service.logger.Error().Err(err).Str("bid_id", newBid.ID.String()).Msg("Failed to record bid")
		return nil, shared.NewDependencyError("record bid", err)
	}

	service.logger.Info().
		Str("bid_id", newBid.ID.String()).
		Str("auction_id", req.AuctionID.String()).
		Float64("bid_amount", newBid.Amount).
		Msg("Bid recorded")
	return newBid, nil
}

// HighestBid returns the highest bid for an auction, or nil when the
// ledger holds none
func (service *BidService) HighestBid(ctx context.Context, auctionID uuid.UUID) (*bid.Bid, error) {
	highest, err := service.bidRepo.GetHighest(ctx, auctionID)
	if err != nil {
		if errors.Is(err, shared.ErrNoBidsFound) {
			return nil, nil
		}
		return nil, shared.NewDependencyError("get highest bid", err)
	}
	return highest, nil
}

// ListBids retrieves all bids for an auction. The descending-amount order
// is a display convenience, not a ledger invariant.
func (service *BidService) ListBids(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error) {
	bids, err := service.bidRepo.GetByAuctionID(ctx, auctionID)
	if err != nil {
		return nil, shared.NewDependencyError("list bids", err)
	}
	return bids, nil
}

// CountBids returns the number of bids recorded for an auction
func (service *BidService) CountBids(ctx context.Context, auctionID uuid.UUID) (int, error) {
	count, err := service.bidRepo.CountByAuctionID(ctx, auctionID)
	if err != nil {
		return 0, shared.NewDependencyError("count bids", err)
	}
	return count, nil
}

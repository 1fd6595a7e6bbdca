package app

import (
	"context"
	"errors"
	"time"

	"fleetops-disposal-service/internal/domain/auction"
	"fleetops-disposal-service/internal/domain/disposal"
	"fleetops-disposal-service/internal/domain/shared"
	"fleetops-disposal-service/internal/ports/inbound"
	"fleetops-disposal-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuctionService implements the auction lifecycle use cases. It drives an
// auction through scheduled, active, closed, awarded and cancelled; the
// parent request's status bumps are the orchestrator's job.
type AuctionService struct {
	auctionRepo outbound.AuctionRepository
	requestRepo outbound.DisposalRequestRepository
	bidRepo     outbound.BidRepository
	logger      zerolog.Logger
}

type AuctionServiceParams struct {
	AuctionRepo outbound.AuctionRepository
	RequestRepo outbound.DisposalRequestRepository
	BidRepo     outbound.BidRepository
	Logger      zerolog.Logger
}

// NewAuctionService creates a new auction lifecycle service
func NewAuctionService(params AuctionServiceParams) *AuctionService {
	return &AuctionService{
		auctionRepo: params.AuctionRepo,
		requestRepo: params.RequestRepo,
		bidRepo:     params.BidRepo,
		logger:      params.Logger.With().Str("component", "auction_service").Logger(),
	}
}

// Create lists an approved disposal request for auction. The auction is
// created in scheduled status; nothing is persisted when a precondition
// fails.
func (service *AuctionService) Create(ctx context.Context, req inbound.CreateAuctionInput) (*auction.Auction, error) {
	service.logger.Info().
		Str("disposal_id", req.DisposalID.String()).
		Str("auction_type", string(req.Type)).
		Float64("starting_price", req.StartingPrice).
		Time("start_date", req.StartDate).
		Time("end_date", req.EndDate).
		Msg("Attempting to create auction")

	request, err := service.requestRepo.GetByID(ctx, req.DisposalID)
	if err != nil {
		service.logger.Error().Err(err).Str("disposal_id", req.DisposalID.String()).Msg("Disposal request not found")
		return nil, shared.NewNotFoundError("disposal request", req.DisposalID.String())
	}

	if request.ApprovalStatus != disposal.ApprovalApproved {
		return nil, shared.NewInvalidStateError("disposal request", string(request.ApprovalStatus), "only approved requests can be auctioned")
	}
	if request.Status != disposal.StatusListed {
		return nil, shared.NewInvalidStateError("disposal request", string(request.Status), "request is not listed for auction")
	}

	if !req.Type.IsValid() {
		return nil, shared.NewValidationError("auction_type", "unknown auction type")
	}
	if req.StartingPrice <= 0 {
		return nil, shared.NewValidationError("starting_price", "starting price must be greater than 0")
	}
	if req.EndDate.Sub(req.StartDate) < auction.MinimumDuration {
		return nil, shared.NewValidationError("end_date", "auction must run for at least 7 days")
	}
	if req.ReservePrice != nil && *req.ReservePrice < req.StartingPrice {
		return nil, shared.NewValidationError("reserve_price", "reserve price cannot be below the starting price")
	}

	// The schema allows many auctions per request; the workflow does not.
	// One non-terminal auction per request at a time.
	existing, err := service.auctionRepo.GetByDisposalID(ctx, req.DisposalID)
	if err != nil {
		return nil, shared.NewDependencyError("check existing auctions", err)
	}
	for _, a := range existing {
		if !a.Status.IsTerminal() {
			service.logger.Warn().
				Str("disposal_id", req.DisposalID.String()).
				Str("auction_id", a.ID.String()).
				Str("auction_status", string(a.Status)).
				Msg("Request already has an open auction")
			return nil, shared.NewInvalidStateError("disposal request", string(request.Status), "an auction already exists for this request")
		}
	}

	now := time.Now()
	newAuction := &auction.Auction{
		ID:            uuid.New(),
		DisposalID:    req.DisposalID,
		Type:          req.Type,
		StartingPrice: req.StartingPrice,
		ReservePrice:  req.ReservePrice,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Status:        auction.StatusScheduled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := service.auctionRepo.Create(ctx, newAuction); err != nil {
		service.logger.Error().Err(err).Str("auction_id", newAuction.ID.String()).Msg("Failed to save auction")
		return nil, shared.NewDependencyError("create auction", err)
	}

	service.logger.Info().
		Str("auction_id", newAuction.ID.String()).
		Str("disposal_id", req.DisposalID.String()).
		Msg("Auction created")
	return newAuction, nil
}

// Start opens a scheduled auction for bidding. There is no time-based
// auto-start; this is a manual operator action.
func (service *AuctionService) Start(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error) {
	return service.transition(ctx, auctionID, auction.StatusActive)
}

// Close closes an active auction. It requires at least one recorded bid
// and, when a reserve price is set, the top bid must meet it. On success
// the winning bid is stamped onto the auction.
func (service *AuctionService) Close(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error) {
	service.logger.Info().Str("auction_id", auctionID.String()).Msg("Closing auction")

	a, err := service.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, shared.NewNotFoundError("auction", auctionID.String())
	}

	if !auction.CanTransition(a.Status, auction.StatusClosed) {
		return nil, shared.NewInvalidTransitionError("auction", string(a.Status), string(auction.StatusClosed))
	}

	highest, err := service.bidRepo.GetHighest(ctx, auctionID)
	if err != nil {
		if errors.Is(err, shared.ErrNoBidsFound) {
			service.logger.Warn().Str("auction_id", auctionID.String()).Msg("Cannot close auction with no bids")
			return nil, shared.NewInvalidStateError("auction", string(a.Status), "no bids have been placed")
		}
		return nil, shared.NewDependencyError("get highest bid", err)
	}

	if !a.ReserveMet(highest.Amount) {
		service.logger.Warn().
			Str("auction_id", auctionID.String()).
			Float64("highest_bid", highest.Amount).
			Float64("reserve_price", *a.ReservePrice).
			Msg("Reserve price not met")
		return nil, &shared.ReserveNotMetError{ReservePrice: *a.ReservePrice, HighestBid: highest.Amount}
	}

	a.Transition(auction.StatusClosed)
	a.RecordWinner(highest.ID, highest.Amount)

	if err := service.auctionRepo.Update(ctx, a); err != nil {
		service.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to update auction")
		return nil, shared.NewDependencyError("close auction", err)
	}

	service.logger.Info().
		Str("auction_id", auctionID.String()).
		Str("winner_id", highest.ID.String()).
		Float64("winning_bid", highest.Amount).
		Msg("Auction closed with winner")
	return a, nil
}

// Award awards a closed auction. The winner recorded at close time is not
// re-validated here.
func (service *AuctionService) Award(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error) {
	return service.transition(ctx, auctionID, auction.StatusAwarded)
}

// Cancel cancels a scheduled auction. Cancellation from any other state is
// rejected; once bidding has opened the auction must run to a close.
func (service *AuctionService) Cancel(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error) {
	return service.transition(ctx, auctionID, auction.StatusCancelled)
}

// GetAuction retrieves an auction by ID
func (service *AuctionService) GetAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error) {
	a, err := service.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, shared.NewNotFoundError("auction", auctionID.String())
	}
	return a, nil
}

// GetByDisposalID retrieves the auctions spawned by a disposal request
func (service *AuctionService) GetByDisposalID(ctx context.Context, disposalID uuid.UUID) ([]*auction.Auction, error) {
	auctions, err := service.auctionRepo.GetByDisposalID(ctx, disposalID)
	if err != nil {
		return nil, shared.NewDependencyError("list auctions", err)
	}
	return auctions, nil
}

func (service *AuctionService) transition(ctx context.Context, auctionID uuid.UUID, next auction.Status) (*auction.Auction, error) {
	a, err := service.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, shared.NewNotFoundError("auction", auctionID.String())
	}

	from := a.Status
	if !a.Transition(next) {
		service.logger.Warn().
			Str("auction_id", auctionID.String()).
			Str("from", string(from)).
			Str("to", string(next)).
			Msg("Transition not allowed")
		return nil, shared.NewInvalidTransitionError("auction", string(from), string(next))
	}

	if err := service.auctionRepo.Update(ctx, a); err != nil {
		service.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to update auction")
		return nil, shared.NewDependencyError("update auction", err)
	}

	service.logger.Info().
		Str("auction_id", auctionID.String()).
		Str("from", string(from)).
		Str("to", string(next)).
		Msg("Auction transitioned")
	return a, nil
}

package app

import (
	"context"
	"fmt"
	"time"

	"fleetops-disposal-service/internal/domain/auction"
	"fleetops-disposal-service/internal/domain/bid"
	"fleetops-disposal-service/internal/domain/disposal"
	"fleetops-disposal-service/internal/ports/inbound"
	"fleetops-disposal-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EndDateRegistrar registers auction end dates for informational end-due
// reminders. Reminders never drive state; closing stays a manual action.
type EndDateRegistrar interface {
	ScheduleEndDue(auctionID uuid.UUID, endDate time.Time) error
}

// WorkflowService is the composition root of the disposal workflow. It
// sequences the disposal, auction and bid services, keeps request, auction
// and vehicle status mutually consistent, and publishes domain events and
// audit entries after successful commands.
//
// Cross-entity sequences are two independent calls, not a transaction: if
// the second call fails the primary mutation stands and the inconsistency
// is logged for manual reconciliation.
type WorkflowService struct {
	disposals *DisposalService
	auctions  *AuctionService
	bids      *BidService
	notifier  outbound.Notifier
	audit     outbound.AuditLog
	registrar EndDateRegistrar
	logger    zerolog.Logger
}

type WorkflowServiceParams struct {
	Disposals *DisposalService
	Auctions  *AuctionService
	Bids      *BidService
	Notifier  outbound.Notifier
	Audit     outbound.AuditLog
	Logger    zerolog.Logger
}

// NewWorkflowService creates the workflow orchestrator
func NewWorkflowService(params WorkflowServiceParams) *WorkflowService {
	return &WorkflowService{
		disposals: params.Disposals,
		auctions:  params.Auctions,
		bids:      params.Bids,
		notifier:  params.Notifier,
		audit:     params.Audit,
		logger:    params.Logger.With().Str("component", "workflow_service").Logger(),
	}
}

// SetEndDateRegistrar attaches the end-date reminder registrar
func (w *WorkflowService) SetEndDateRegistrar(registrar EndDateRegistrar) {
	w.registrar = registrar
}

// CreateRequest files a new disposal request
func (w *WorkflowService) CreateRequest(ctx context.Context, req inbound.CreateRequestInput) (*disposal.Request, error) {
	request, err := w.disposals.CreateRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("Disposal request filed for vehicle %s (%s)", request.VehicleID, request.Reason)
	w.publish(ctx, request.ID, outbound.EventRequestCreated, summary, map[string]interface{}{
		"request_id": request.ID.String(),
		"vehicle_id": request.VehicleID.String(),
		"status":     string(request.Status),
	})
	w.record(ctx, request.RequestedBy.String(), "create_request", "disposal_request", request.ID, summary)
	return request, nil
}

// ApproveRequest approves a pending request. The vehicle flips to disposed
// inside the disposal service, best-effort.
func (w *WorkflowService) ApproveRequest(ctx context.Context, requestID, approverID uuid.UUID) (*disposal.Request, error) {
	request, err := w.disposals.Approve(ctx, requestID, approverID)
	if err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("Disposal request %s approved; vehicle %s listed for disposal", request.ID, request.VehicleID)
	w.publish(ctx, request.ID, outbound.EventRequestApproved, summary, map[string]interface{}{
		"request_id":      request.ID.String(),
		"vehicle_id":      request.VehicleID.String(),
		"approval_status": string(request.ApprovalStatus),
		"status":          string(request.Status),
	})
	w.record(ctx, approverID.String(), "approve_request", "disposal_request", request.ID, summary)
	return request, nil
}

// RejectRequest rejects a pending request with a reason. The vehicle
// returns to active service, best-effort.
func (w *WorkflowService) RejectRequest(ctx context.Context, requestID, rejecterID uuid.UUID, reason string) (*disposal.Request, error) {
	request, err := w.disposals.Reject(ctx, requestID, rejecterID, reason)
	if err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("Disposal request %s rejected: %s", request.ID, reason)
	w.publish(ctx, request.ID, outbound.EventRequestRejected, summary, map[string]interface{}{
		"request_id":       request.ID.String(),
		"vehicle_id":       request.VehicleID.String(),
		"approval_status":  string(request.ApprovalStatus),
		"rejection_reason": reason,
	})
	w.record(ctx, rejecterID.String(), "reject_request", "disposal_request", request.ID, summary)
	return request, nil
}

// UpdateRequest edits a disposal request
func (w *WorkflowService) UpdateRequest(ctx context.Context, requestID uuid.UUID, req inbound.UpdateRequestInput) (*disposal.Request, error) {
	request, err := w.disposals.Update(ctx, requestID, req)
	if err != nil {
		return nil, err
	}
	w.record(ctx, "operator", "update_request", "disposal_request", request.ID, fmt.Sprintf("Disposal request %s updated", request.ID))
	return request, nil
}

// CreateAuction lists an approved request for auction and bumps the request
// to bidding_open. The bump is a second independent call: if it fails, the
// auction still exists in scheduled status while the request stays listed,
// and the operator reconciles manually.
func (w *WorkflowService) CreateAuction(ctx context.Context, req inbound.CreateAuctionInput) (*auction.Auction, error) {
	a, err := w.auctions.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	if _, err := w.disposals.MoveRequest(ctx, a.DisposalID, disposal.StatusBiddingOpen); err != nil {
		w.logger.Error().Err(err).
			Str("auction_id", a.ID.String()).
			Str("disposal_id", a.DisposalID.String()).
			Msg("Auction created but request status bump failed; manual reconciliation needed")
	}

	if w.registrar != nil {
		if err := w.registrar.ScheduleEndDue(a.ID, a.EndDate); err != nil {
			w.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to register end-date reminder")
		}
	}

	summary := fmt.Sprintf("Auction %s created for disposal request %s, starting at %.2f", a.ID, a.DisposalID, a.StartingPrice)
	w.publish(ctx, a.ID, outbound.EventAuctionCreated, summary, map[string]interface{}{
		"auction_id":     a.ID.String(),
		"disposal_id":    a.DisposalID.String(),
		"auction_status": string(a.Status),
		"starting_price": a.StartingPrice,
	})
	w.record(ctx, "operator", "create_auction", "auction", a.ID, summary)
	return a, nil
}

// StartAuction opens a scheduled auction for bidding
func (w *WorkflowService) StartAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error) {
	a, err := w.auctions.Start(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("Auction %s is now open for bidding", a.ID)
	w.publish(ctx, a.ID, outbound.EventAuctionStarted, summary, map[string]interface{}{
		"auction_id":     a.ID.String(),
		"auction_status": string(a.Status),
	})
	w.record(ctx, "operator", "start_auction", "auction", a.ID, summary)
	return a, nil
}

// PlaceBid records a bid against an active auction
func (w *WorkflowService) PlaceBid(ctx context.Context, req inbound.PlaceBidInput) (*bid.Bid, error) {
	b, err := w.bids.PlaceBid(ctx, req)
	if err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("%s bid %.2f on auction %s", b.BidderName, b.Amount, b.AuctionID)
	w.publish(ctx, b.AuctionID, outbound.EventBidPlaced, summary, map[string]interface{}{
		"bid_id":      b.ID.String(),
		"auction_id":  b.AuctionID.String(),
		"bidder_name": b.BidderName,
		"bid_amount":  b.Amount,
	})
	w.record(ctx, b.BidderName, "place_bid", "bid", b.ID, summary)
	return b, nil
}

// CloseAuction closes an active auction and moves the parent request to
// sold, as two independent best-effort calls
func (w *WorkflowService) CloseAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error) {
	a, err := w.auctions.Close(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	if _, err := w.disposals.MoveRequest(ctx, a.DisposalID, disposal.StatusSold); err != nil {
		w.logger.Error().Err(err).
			Str("auction_id", a.ID.String()).
			Str("disposal_id", a.DisposalID.String()).
			Msg("Auction closed but request status bump failed; manual reconciliation needed")
	}

	summary := fmt.Sprintf("Auction %s closed with winning bid %.2f", a.ID, *a.WinningBid)
	w.publish(ctx, a.ID, outbound.EventAuctionClosed, summary, map[string]interface{}{
		"auction_id":     a.ID.String(),
		"auction_status": string(a.Status),
		"winner_id":      a.WinnerID.String(),
		"winning_bid":    *a.WinningBid,
	})
	w.record(ctx, "operator", "close_auction", "auction", a.ID, summary)
	return a, nil
}

// AwardAuction awards a closed auction and moves the parent request to
// transferred
func (w *WorkflowService) AwardAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error) {
	a, err := w.auctions.Award(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	if _, err := w.disposals.MoveRequest(ctx, a.DisposalID, disposal.StatusTransferred); err != nil {
		w.logger.Error().Err(err).
			Str("auction_id", a.ID.String()).
			Str("disposal_id", a.DisposalID.String()).
			Msg("Auction awarded but request status bump failed; manual reconciliation needed")
	}

	summary := fmt.Sprintf("Auction %s awarded; vehicle transfer pending", a.ID)
	w.publish(ctx, a.ID, outbound.EventAuctionAwarded, summary, map[string]interface{}{
		"auction_id":     a.ID.String(),
		"auction_status": string(a.Status),
	})
	w.record(ctx, "operator", "award_auction", "auction", a.ID, summary)
	return a, nil
}

// CancelAuction cancels a scheduled auction and relists the parent request
func (w *WorkflowService) CancelAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error) {
	a, err := w.auctions.Cancel(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	if _, err := w.disposals.MoveRequest(ctx, a.DisposalID, disposal.StatusListed); err != nil {
		w.logger.Error().Err(err).
			Str("auction_id", a.ID.String()).
			Str("disposal_id", a.DisposalID.String()).
			Msg("Auction cancelled but request status bump failed; manual reconciliation needed")
	}

	summary := fmt.Sprintf("Auction %s cancelled; request %s relisted", a.ID, a.DisposalID)
	w.publish(ctx, a.ID, outbound.EventAuctionCancelled, summary, map[string]interface{}{
		"auction_id":     a.ID.String(),
		"disposal_id":    a.DisposalID.String(),
		"auction_status": string(a.Status),
	})
	w.record(ctx, "operator", "cancel_auction", "auction", a.ID, summary)
	return a, nil
}

// GetRequest retrieves a disposal request by ID
func (w *WorkflowService) GetRequest(ctx context.Context, requestID uuid.UUID) (*disposal.Request, error) {
	return w.disposals.GetRequest(ctx, requestID)
}

// ListRequests retrieves disposal requests with an optional status filter
func (w *WorkflowService) ListRequests(ctx context.Context, req inbound.ListRequestsInput) ([]*disposal.Request, error) {
	return w.disposals.ListRequests(ctx, req)
}

// ListAuctionsForRequest retrieves the auctions spawned by a request
func (w *WorkflowService) ListAuctionsForRequest(ctx context.Context, requestID uuid.UUID) ([]*auction.Auction, error) {
	return w.auctions.GetByDisposalID(ctx, requestID)
}

// ListBidsForAuction retrieves an auction's bids, highest first
func (w *WorkflowService) ListBidsForAuction(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error) {
	return w.bids.ListBids(ctx, auctionID)
}

// HighestBid retrieves the current highest bid, or nil when none exist
func (w *WorkflowService) HighestBid(ctx context.Context, auctionID uuid.UUID) (*bid.Bid, error) {
	return w.bids.HighestBid(ctx, auctionID)
}

// publish emits a domain event best-effort. Events fire on success only;
// a publish failure never fails the command.
func (w *WorkflowService) publish(ctx context.Context, entityID uuid.UUID, eventType outbound.EventType, summary string, data map[string]interface{}) {
	if w.notifier == nil {
		return
	}

	event := outbound.Event{
		Type:      eventType,
		EntityID:  entityID,
		Summary:   summary,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}

	if err := w.notifier.Publish(ctx, entityID, event); err != nil {
		w.logger.Error().Err(err).
			Str("event_type", string(eventType)).
			Str("entity_id", entityID.String()).
			Msg("Failed to publish event")
	}
}

// record writes an audit entry best-effort
func (w *WorkflowService) record(ctx context.Context, actor, action, entityKind string, entityID uuid.UUID, summary string) {
	if w.audit == nil {
		return
	}

	entry := outbound.AuditEntry{
		ID:         uuid.New(),
		Actor:      actor,
		Action:     action,
		EntityKind: entityKind,
		EntityID:   entityID,
		Summary:    summary,
		CreatedAt:  time.Now(),
	}

	if err := w.audit.Record(ctx, entry); err != nil {
		w.logger.Error().Err(err).
			Str("action", action).
			Str("entity_id", entityID.String()).
			Msg("Failed to write audit entry")
	}
}

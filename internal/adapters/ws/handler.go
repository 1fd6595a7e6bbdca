package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fleetops-disposal-service/internal/domain/auction"
	"fleetops-disposal-service/internal/domain/bid"
	"fleetops-disposal-service/internal/domain/disposal"
	"fleetops-disposal-service/internal/ports/inbound"
	"fleetops-disposal-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WsHandler manages operator console connections and routes their commands
// into the disposal workflow
type WsHandler struct {
	clients       map[string]*WsClient // clientID -> Client
	clientsMu     sync.RWMutex
	eventChannels map[string]chan outbound.Event // clientID -> local event channel
	channelsMu    sync.RWMutex
	upgrader      websocket.Upgrader
	workflow      inbound.WorkflowService
	notifier      outbound.Notifier
	logger        zerolog.Logger
}

type WsHandlerParams struct {
	Upgrader websocket.Upgrader
	Workflow inbound.WorkflowService
	Notifier outbound.Notifier
	Logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(params WsHandlerParams) *WsHandler {
	return &WsHandler{
		clients:       make(map[string]*WsClient),
		eventChannels: make(map[string]chan outbound.Event),
		upgrader:      params.Upgrader,
		workflow:      params.Workflow,
		notifier:      params.Notifier,
		logger:        params.Logger.With().Str("component", "ws_handler").Logger(),
	}
}

// HandleWebSocket handles WebSocket connection upgrades
func (handler *WsHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	operatorIDStr := r.URL.Query().Get("operator_id")
	if operatorIDStr == "" {
		http.Error(w, "operator_id is required", http.StatusBadRequest)
		return
	}

	operatorID, err := uuid.Parse(operatorIDStr)
	if err != nil {
		http.Error(w, "invalid operator_id format", http.StatusBadRequest)
		return
	}

	conn, err := handler.upgrader.Upgrade(w, r, nil)
	if err != nil {
		handler.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := NewClient(WsClientParams{
		OperatorID: operatorID,
		Conn:       conn,
		Handler:    handler,
		Logger:     handler.logger,
	})

	handler.registerClient(client)
	handler.createEventChannel(client.id)

	client.Start()

	go handler.listenForClientEvents(client)

	go func() {
		<-client.ctx.Done()
		handler.unregisterClient(client)
	}()

	handler.logger.Info().Str("client_id", client.id).Str("operator_id", operatorID.String()).Msg("Operator console connected")
}

func (handler *WsHandler) createEventChannel(clientID string) chan outbound.Event {
	handler.channelsMu.Lock()
	defer handler.channelsMu.Unlock()

	if eventChan, exists := handler.eventChannels[clientID]; exists {
		return eventChan
	}

	eventChan := make(chan outbound.Event, 100)
	handler.eventChannels[clientID] = eventChan
	return eventChan
}

func (handler *WsHandler) getEventChannel(clientID string) chan outbound.Event {
	handler.channelsMu.RLock()
	defer handler.channelsMu.RUnlock()

	return handler.eventChannels[clientID]
}

// removeEventChannel drops the handler's reference to a client's event
// channel. The channel is never closed: the notifier's forwarder may still
// hold it, and an orphaned open channel is collected once both sides let
// go, while a closed one panics the forwarder.
func (handler *WsHandler) removeEventChannel(clientID string) {
	handler.channelsMu.Lock()
	defer handler.channelsMu.Unlock()

	delete(handler.eventChannels, clientID)
}

func (handler *WsHandler) registerClient(client *WsClient) {
	handler.clientsMu.Lock()
	defer handler.clientsMu.Unlock()
	handler.clients[client.id] = client
}

func (handler *WsHandler) unregisterClient(client *WsClient) {
	handler.clientsMu.Lock()
	defer handler.clientsMu.Unlock()

	delete(handler.clients, client.id)
	client.Stop()

	if err := handler.notifier.UnsubscribeAll(context.Background(), client.id); err != nil {
		handler.logger.Error().Err(err).Str("client_id", client.id).Msg("Failed to drop subscriptions for client")
	}
	handler.removeEventChannel(client.id)

	handler.logger.Info().Str("client_id", client.id).Int("total_clients", len(handler.clients)).Msg("Operator console disconnected")
}

// listenForClientEvents forwards published domain events to the console
func (handler *WsHandler) listenForClientEvents(client *WsClient) {
	eventChan := handler.getEventChannel(client.id)
	if eventChan == nil {
		handler.logger.Error().Str("client_id", client.id).Msg("No event channel found for client")
		return
	}

	for {
		select {
		case event := <-eventChan:
			wsMessage := handler.convertEventToMessage(event)
			if err := client.Send(wsMessage); err != nil {
				handler.logger.Error().Err(err).Str("client_id", client.id).Msg("Failed to send event to operator console")
			}

		case <-client.ctx.Done():
			return
		}
	}
}

// HandleClientMessage routes a validated command to the workflow
func (handler *WsHandler) HandleClientMessage(client *WsClient, msg *ClientMessage) error {
	switch msg.Type {
	case MessageTypeSubscribe:
		return handler.handleSubscribe(client, msg)
	case MessageTypeUnsubscribe:
		return handler.handleUnsubscribe(client, msg)
	case MessageTypeCreateRequest:
		return handler.handleCreateRequest(client, msg)
	case MessageTypeApproveRequest:
		return handler.handleApproveRequest(client, msg)
	case MessageTypeRejectRequest:
		return handler.handleRejectRequest(client, msg)
	case MessageTypeCreateAuction:
		return handler.handleCreateAuction(client, msg)
	case MessageTypeStartAuction:
		return handler.handleAuctionAction(client, msg, handler.workflow.StartAuction)
	case MessageTypePlaceBid:
		return handler.handlePlaceBid(client, msg)
	case MessageTypeCloseAuction:
		return handler.handleAuctionAction(client, msg, handler.workflow.CloseAuction)
	case MessageTypeAwardAuction:
		return handler.handleAuctionAction(client, msg, handler.workflow.AwardAuction)
	case MessageTypeCancelAuction:
		return handler.handleAuctionAction(client, msg, handler.workflow.CancelAuction)
	case MessageTypeListRequests:
		return handler.handleListRequests(client, msg)
	case MessageTypeListBids:
		return handler.handleListBids(client, msg)
	default:
		handler.logger.Warn().Str("client_id", client.id).Str("message_type", string(msg.Type)).Msg("Unknown message type from client")
		return ErrUnknownMessageType
	}
}

func (handler *WsHandler) convertEventToMessage(event outbound.Event) *ServerMessage {
	return &ServerMessage{
		Type:     MessageTypeEvent,
		EntityID: &event.EntityID,
		Data: map[string]interface{}{
			"event_type": string(event.Type),
			"summary":    event.Summary,
			"payload":    event.Data,
		},
		Timestamp: event.Timestamp,
	}
}

// GetConnectedClients returns the number of connected operator consoles
func (handler *WsHandler) GetConnectedClients() int {
	handler.clientsMu.RLock()
	defer handler.clientsMu.RUnlock()
	return len(handler.clients)
}

func (handler *WsHandler) handleSubscribe(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	eventChan := handler.getEventChannel(client.id)
	if eventChan == nil {
		handler.logger.Error().Str("client_id", client.id).Msg("No event channel found for client")
		return ErrEntityIDRequired
	}

	if err := handler.notifier.Subscribe(ctx, *msg.EntityID, client.id, eventChan); err != nil {
		handler.logger.Error().Err(err).Str("client_id", client.id).Str("entity_id", msg.EntityID.String()).Msg("Failed to subscribe")
		return err
	}

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.EntityID = msg.EntityID
	response.Data["status"] = "subscribed"
	return client.Send(response)
}

func (handler *WsHandler) handleUnsubscribe(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	if err := handler.notifier.Unsubscribe(ctx, *msg.EntityID, client.id); err != nil {
		return err
	}

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.EntityID = msg.EntityID
	response.Data["status"] = "unsubscribed"
	return client.Send(response)
}

func (handler *WsHandler) handleCreateRequest(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	vehicleID, err := msg.uuidField("vehicle_id")
	if err != nil {
		return err
	}
	reason, err := msg.stringField("disposal_reason")
	if err != nil {
		return err
	}
	method, err := msg.stringField("recommended_method")
	if err != nil {
		return err
	}
	condition, err := msg.stringField("condition_rating")
	if err != nil {
		return err
	}
	mileage, err := msg.floatField("current_mileage")
	if err != nil {
		return err
	}
	estimatedValue, err := msg.floatField("estimated_value")
	if err != nil {
		return err
	}

	request, err := handler.workflow.CreateRequest(ctx, inbound.CreateRequestInput{
		VehicleID:      vehicleID,
		Reason:         disposal.Reason(reason),
		Method:         disposal.Method(method),
		Condition:      disposal.Condition(condition),
		CurrentMileage: int64(mileage),
		EstimatedValue: estimatedValue,
		RequestedBy:    client.operatorID,
	})
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), nil))
	}

	return client.Send(requestResponse(request))
}

func (handler *WsHandler) handleApproveRequest(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	request, err := handler.workflow.ApproveRequest(ctx, *msg.EntityID, client.operatorID)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.EntityID))
	}

	return client.Send(requestResponse(request))
}

func (handler *WsHandler) handleRejectRequest(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	reason, err := msg.stringField("rejection_reason")
	if err != nil {
		return err
	}

	request, err := handler.workflow.RejectRequest(ctx, *msg.EntityID, client.operatorID, reason)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.EntityID))
	}

	return client.Send(requestResponse(request))
}

func (handler *WsHandler) handleCreateAuction(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	disposalID, err := msg.uuidField("disposal_id")
	if err != nil {
		return err
	}
	auctionType, err := msg.stringField("auction_type")
	if err != nil {
		return err
	}
	startingPrice, err := msg.floatField("starting_price")
	if err != nil {
		return err
	}
	startDate, err := msg.timeField("start_date")
	if err != nil {
		return err
	}
	endDate, err := msg.timeField("end_date")
	if err != nil {
		return err
	}

	var reservePrice *float64
	if raw, ok := msg.Data["reserve_price"].(float64); ok {
		reservePrice = &raw
	}

	a, err := handler.workflow.CreateAuction(ctx, inbound.CreateAuctionInput{
		DisposalID:    disposalID,
		Type:          auction.Type(auctionType),
		StartingPrice: startingPrice,
		ReservePrice:  reservePrice,
		StartDate:     startDate,
		EndDate:       endDate,
	})
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), nil))
	}

	return client.Send(auctionResponse(a))
}

func (handler *WsHandler) handleAuctionAction(client *WsClient, msg *ClientMessage, action func(context.Context, uuid.UUID) (*auction.Auction, error)) error {
	ctx := context.Background()

	a, err := action(ctx, *msg.EntityID)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.EntityID))
	}

	return client.Send(auctionResponse(a))
}

func (handler *WsHandler) handlePlaceBid(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	bidderName, err := msg.stringField("bidder_name")
	if err != nil {
		return err
	}
	amount, err := msg.floatField("bid_amount")
	if err != nil {
		return err
	}

	bidderContact, _ := msg.Data["bidder_contact"].(string)
	notes, _ := msg.Data["notes"].(string)

	b, err := handler.workflow.PlaceBid(ctx, inbound.PlaceBidInput{
		AuctionID:     *msg.EntityID,
		BidderName:    bidderName,
		BidderContact: bidderContact,
		Amount:        amount,
		Notes:         notes,
	})
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.EntityID))
	}

	return client.Send(bidResponse(b))
}

func (handler *WsHandler) handleListRequests(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	limit := 10
	if limitVal, ok := msg.Data["limit"].(float64); ok {
		limit = int(limitVal)
	}

	offset := 0
	if offsetVal, ok := msg.Data["offset"].(float64); ok {
		offset = int(offsetVal)
	}

	var status *disposal.Status
	if raw, ok := msg.Data["status"].(string); ok {
		s := disposal.Status(raw)
		status = &s
	}

	requests, err := handler.workflow.ListRequests(ctx, inbound.ListRequestsInput{
		Status:   status,
		Page:     offset/limit + 1,
		PageSize: limit,
	})
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), nil))
	}

	response := NewServerMessage(MessageTypeRequestUpdate)
	response.Data["requests"] = requests
	response.Data["count"] = len(requests)
	return client.Send(response)
}

func (handler *WsHandler) handleListBids(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	bids, err := handler.workflow.ListBidsForAuction(ctx, *msg.EntityID)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.EntityID))
	}

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.EntityID = msg.EntityID
	response.Data["bids"] = bids
	response.Data["count"] = len(bids)
	return client.Send(response)
}

func requestResponse(request *disposal.Request) *ServerMessage {
	response := NewServerMessage(MessageTypeRequestUpdate)
	response.EntityID = &request.ID
	response.Data["request_id"] = request.ID
	response.Data["vehicle_id"] = request.VehicleID
	response.Data["approval_status"] = request.ApprovalStatus
	response.Data["status"] = request.Status
	return response
}

func auctionResponse(a *auction.Auction) *ServerMessage {
	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.EntityID = &a.ID
	response.Data["auction_id"] = a.ID
	response.Data["disposal_id"] = a.DisposalID
	response.Data["auction_type"] = a.Type
	response.Data["starting_price"] = a.StartingPrice
	response.Data["start_date"] = a.StartDate.Format(time.RFC3339)
	response.Data["end_date"] = a.EndDate.Format(time.RFC3339)
	response.Data["auction_status"] = a.Status
	if a.ReservePrice != nil {
		response.Data["reserve_price"] = *a.ReservePrice
	}
	if a.WinnerID != nil {
		response.Data["winner_id"] = *a.WinnerID
	}
	if a.WinningBid != nil {
		response.Data["winning_bid"] = *a.WinningBid
	}
	return response
}

func bidResponse(b *bid.Bid) *ServerMessage {
	response := NewServerMessage(MessageTypeBidPlaced)
	response.EntityID = &b.AuctionID
	response.Data["bid_id"] = b.ID
	response.Data["auction_id"] = b.AuctionID
	response.Data["bidder_name"] = b.BidderName
	response.Data["bid_amount"] = b.Amount
	response.Data["bid_date"] = b.BidDate.Format(time.RFC3339)
	return response
}

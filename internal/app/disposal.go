package app

import (
	"context"
	"time"

	"fleetops-disposal-service/internal/domain/disposal"
	"fleetops-disposal-service/internal/domain/shared"
	"fleetops-disposal-service/internal/domain/vehicle"
	"fleetops-disposal-service/internal/ports/inbound"
	"fleetops-disposal-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DisposalService implements the disposal request use cases: filing,
// editing, approving and rejecting requests, and keeping the owning
// vehicle's status in step with the decision.
type DisposalService struct {
	requestRepo outbound.DisposalRequestRepository
	vehicleRepo outbound.VehicleRepository
	logger      zerolog.Logger
}

type DisposalServiceParams struct {
	RequestRepo outbound.DisposalRequestRepository
	VehicleRepo outbound.VehicleRepository
	Logger      zerolog.Logger
}

// NewDisposalService creates a new disposal request service
func NewDisposalService(params DisposalServiceParams) *DisposalService {
	return &DisposalService{
		requestRepo: params.RequestRepo,
		vehicleRepo: params.VehicleRepo,
		logger:      params.Logger.With().Str("component", "disposal_service").Logger(),
	}
}

// CreateRequest validates and files a new disposal request. The vehicle is
// not touched until the request is decided.
func (service *DisposalService) CreateRequest(ctx context.Context, req inbound.CreateRequestInput) (*disposal.Request, error) {
	service.logger.Info().
		Str("vehicle_id", req.VehicleID.String()).
		Str("disposal_reason", string(req.Reason)).
		Str("recommended_method", string(req.Method)).
		Float64("estimated_value", req.EstimatedValue).
		Msg("Attempting to create disposal request")

	if !req.Reason.IsValid() {
		return nil, shared.NewValidationError("disposal_reason", "unknown disposal reason")
	}
	if !req.Method.IsValid() {
		return nil, shared.NewValidationError("recommended_method", "unknown disposal method")
	}
	if !req.Condition.IsValid() {
		return nil, shared.NewValidationError("condition_rating", "unknown condition rating")
	}
	if req.CurrentMileage < 0 {
		return nil, shared.NewValidationError("current_mileage", "mileage cannot be negative")
	}
	if req.EstimatedValue < 0 {
		return nil, shared.NewValidationError("estimated_value", "estimated value cannot be negative")
	}

	if _, err := service.vehicleRepo.GetByID(ctx, req.VehicleID); err != nil {
		service.logger.Error().Err(err).Str("vehicle_id", req.VehicleID.String()).Msg("Vehicle not found")
		return nil, shared.NewNotFoundError("vehicle", req.VehicleID.String())
	}

	now := time.Now()
	request := &disposal.Request{
		ID:             uuid.New(),
		VehicleID:      req.VehicleID,
		Reason:         req.Reason,
		Method:         req.Method,
		Condition:      req.Condition,
		CurrentMileage: req.CurrentMileage,
		EstimatedValue: req.EstimatedValue,
		RequestedBy:    req.RequestedBy,
		RequestDate:    now,
		ApprovalStatus: disposal.ApprovalPending,
		Status:         disposal.StatusPendingApproval,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := service.requestRepo.Create(ctx, request); err != nil {
		service.logger.Error().Err(err).Str("request_id", request.ID.String()).Msg("Failed to save disposal request")
		return nil, shared.NewDependencyError("create disposal request", err)
	}

	service.logger.Info().Str("request_id", request.ID.String()).Msg("Disposal request created")
	return request, nil
}

// Approve approves a pending request, lists it for disposal and flips the
// vehicle to disposed. The vehicle write is best-effort: its failure is
// logged and the approval still stands.
func (service *DisposalService) Approve(ctx context.Context, requestID, approverID uuid.UUID) (*disposal.Request, error) {
	service.logger.Info().
		Str("request_id", requestID.String()).
		Str("approver_id", approverID.String()).
		Msg("Approving disposal request")

	request, err := service.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, shared.NewNotFoundError("disposal request", requestID.String())
	}

	if request.IsDecided() {
		service.logger.Warn().
			Str("request_id", requestID.String()).
			Str("approval_status", string(request.ApprovalStatus)).
			Msg("Request already decided")
		return nil, shared.NewInvalidStateError("disposal request", string(request.ApprovalStatus), "already decided")
	}

	request.Approve(approverID)
	if err := service.requestRepo.Update(ctx, request); err != nil {
		service.logger.Error().Err(err).Str("request_id", requestID.String()).Msg("Failed to update disposal request")
		return nil, shared.NewDependencyError("approve disposal request", err)
	}

	service.setVehicleStatus(ctx, request.VehicleID, vehicle.StatusDisposed, false)

	service.logger.Info().Str("request_id", requestID.String()).Msg("Disposal request approved")
	return request, nil
}

// Reject rejects a pending request with a mandatory reason and returns the
// vehicle to active service. The vehicle write is best-effort.
func (service *DisposalService) Reject(ctx context.Context, requestID, rejecterID uuid.UUID, reason string) (*disposal.Request, error) {
	service.logger.Info().
		Str("request_id", requestID.String()).
		Str("rejecter_id", rejecterID.String()).
		Msg("Rejecting disposal request")

	if reason == "" {
		return nil, shared.NewValidationError("rejection_reason", "a rejection reason is required")
	}

	request, err := service.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, shared.NewNotFoundError("disposal request", requestID.String())
	}

	if request.IsDecided() {
		return nil, shared.NewInvalidStateError("disposal request", string(request.ApprovalStatus), "already decided")
	}

	request.Reject(rejecterID, reason)
	if err := service.requestRepo.Update(ctx, request); err != nil {
		service.logger.Error().Err(err).Str("request_id", requestID.String()).Msg("Failed to update disposal request")
		return nil, shared.NewDependencyError("reject disposal request", err)
	}

	// Rejection is the explicit revert path, so the precedence order is
	// bypassed here.
	service.setVehicleStatus(ctx, request.VehicleID, vehicle.StatusActive, true)

	service.logger.Info().Str("request_id", requestID.String()).Msg("Disposal request rejected")
	return request, nil
}

// Update edits a request's fields. Editing is permitted at any approval
// state, matching the legacy behavior; decided requests are not guarded.
func (service *DisposalService) Update(ctx context.Context, requestID uuid.UUID, req inbound.UpdateRequestInput) (*disposal.Request, error) {
	request, err := service.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, shared.NewNotFoundError("disposal request", requestID.String())
	}

	if req.Reason != nil {
		if !req.Reason.IsValid() {
			return nil, shared.NewValidationError("disposal_reason", "unknown disposal reason")
		}
		request.Reason = *req.Reason
	}
	if req.Method != nil {
		if !req.Method.IsValid() {
			return nil, shared.NewValidationError("recommended_method", "unknown disposal method")
		}
		request.Method = *req.Method
	}
	if req.Condition != nil {
		if !req.Condition.IsValid() {
			return nil, shared.NewValidationError("condition_rating", "unknown condition rating")
		}
		request.Condition = *req.Condition
	}
	if req.CurrentMileage != nil {
		if *req.CurrentMileage < 0 {
			return nil, shared.NewValidationError("current_mileage", "mileage cannot be negative")
		}
		request.CurrentMileage = *req.CurrentMileage
	}
	if req.EstimatedValue != nil {
		if *req.EstimatedValue < 0 {
			return nil, shared.NewValidationError("estimated_value", "estimated value cannot be negative")
		}
		request.EstimatedValue = *req.EstimatedValue
	}

	request.UpdatedAt = time.Now()
	if err := service.requestRepo.Update(ctx, request); err != nil {
		service.logger.Error().Err(err).Str("request_id", requestID.String()).Msg("Failed to update disposal request")
		return nil, shared.NewDependencyError("update disposal request", err)
	}

	service.logger.Info().Str("request_id", requestID.String()).Msg("Disposal request updated")
	return request, nil
}

// MoveRequest bumps the workflow status of a request. The orchestrator
// calls this as the second leg of its two-call sequences.
func (service *DisposalService) MoveRequest(ctx context.Context, requestID uuid.UUID, next disposal.Status) (*disposal.Request, error) {
	request, err := service.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, shared.NewNotFoundError("disposal request", requestID.String())
	}

	request.MoveTo(next)
	if err := service.requestRepo.Update(ctx, request); err != nil {
		return nil, shared.NewDependencyError("move disposal request", err)
	}

	service.logger.Info().
		Str("request_id", requestID.String()).
		Str("status", string(next)).
		Msg("Disposal request status moved")
	return request, nil
}

// GetRequest retrieves a disposal request by ID
func (service *DisposalService) GetRequest(ctx context.Context, requestID uuid.UUID) (*disposal.Request, error) {
	request, err := service.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, shared.NewNotFoundError("disposal request", requestID.String())
	}
	return request, nil
}

// ListRequests retrieves disposal requests with an optional status filter
func (service *DisposalService) ListRequests(ctx context.Context, req inbound.ListRequestsInput) ([]*disposal.Request, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}

	requests, err := service.requestRepo.List(ctx, req.Status, req.Page, req.PageSize)
	if err != nil {
		return nil, shared.NewDependencyError("list disposal requests", err)
	}
	return requests, nil
}

// setVehicleStatus writes the vehicle's lifecycle status best-effort.
// Failures are logged and swallowed so the primary action still reports
// success; the operator reconciles manually.
func (service *DisposalService) setVehicleStatus(ctx context.Context, vehicleID uuid.UUID, status vehicle.Status, force bool) {
	v, err := service.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		service.logger.Error().Err(err).
			Str("vehicle_id", vehicleID.String()).
			Str("status", string(status)).
			Msg("Failed to load vehicle for status update")
		return
	}

	if !v.ApplyStatus(status, force) {
		service.logger.Debug().
			Str("vehicle_id", vehicleID.String()).
			Str("current_status", string(v.Status)).
			Str("requested_status", string(status)).
			Msg("Vehicle status unchanged")
		return
	}

	if err := service.vehicleRepo.UpdateStatus(ctx, vehicleID, v.Status); err != nil {
		service.logger.Error().Err(err).
			Str("vehicle_id", vehicleID.String()).
			Str("status", string(status)).
			Msg("Failed to update vehicle status")
	}
}

package app

import (
	"context"
	"testing"

	"fleetops-disposal-service/internal/domain/disposal"
	"fleetops-disposal-service/internal/domain/shared"
	"fleetops-disposal-service/internal/domain/vehicle"
	"fleetops-disposal-service/internal/ports/inbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type disposalFixture struct {
	service  *DisposalService
	requests *memRequestRepo
	vehicles *memVehicleRepo
	vehicle  *vehicle.Vehicle
}

func newDisposalFixture(t *testing.T) *disposalFixture {
	t.Helper()

	requests := newMemRequestRepo()
	vehicles := newMemVehicleRepo()
	v := &vehicle.Vehicle{
		ID:          uuid.New(),
		FleetNumber: "FL-0042",
		Make:        "Ford",
		Model:       "Transit",
		Year:        2015,
		Status:      vehicle.StatusActive,
	}
	vehicles.add(v)

	return &disposalFixture{
		service: NewDisposalService(DisposalServiceParams{
			RequestRepo: requests,
			VehicleRepo: vehicles,
			Logger:      zerolog.Nop(),
		}),
		requests: requests,
		vehicles: vehicles,
		vehicle:  v,
	}
}

func (f *disposalFixture) validInput() inbound.CreateRequestInput {
	return inbound.CreateRequestInput{
		VehicleID:      f.vehicle.ID,
		Reason:         disposal.ReasonEndOfLife,
		Method:         disposal.MethodAuction,
		Condition:      disposal.ConditionFair,
		CurrentMileage: 185000,
		EstimatedValue: 50000,
		RequestedBy:    uuid.New(),
	}
}

func TestCreateRequest(t *testing.T) {
	f := newDisposalFixture(t)
	ctx := context.Background()

	request, err := f.service.CreateRequest(ctx, f.validInput())
	require.NoError(t, err)

	assert.Equal(t, disposal.StatusPendingApproval, request.Status)
	assert.Equal(t, disposal.ApprovalPending, request.ApprovalStatus)
	assert.Equal(t, f.vehicle.ID, request.VehicleID)
	assert.Equal(t, vehicle.StatusActive, f.vehicles.status(f.vehicle.ID), "filing a request must not touch the vehicle")

	stored, err := f.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, request.ID, stored.ID)
}

func TestCreateRequestValidation(t *testing.T) {
	f := newDisposalFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*inbound.CreateRequestInput)
	}{
		{"unknown reason", func(in *inbound.CreateRequestInput) { in.Reason = "vibes" }},
		{"unknown method", func(in *inbound.CreateRequestInput) { in.Method = "teleport" }},
		{"unknown condition", func(in *inbound.CreateRequestInput) { in.Condition = "mint" }},
		{"negative mileage", func(in *inbound.CreateRequestInput) { in.CurrentMileage = -1 }},
		{"negative estimated value", func(in *inbound.CreateRequestInput) { in.EstimatedValue = -0.01 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := f.validInput()
			tt.mutate(&input)

			_, err := f.service.CreateRequest(ctx, input)
			var verr *shared.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestCreateRequestUnknownVehicle(t *testing.T) {
	f := newDisposalFixture(t)

	input := f.validInput()
	input.VehicleID = uuid.New()

	_, err := f.service.CreateRequest(context.Background(), input)
	var nfErr *shared.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "vehicle", nfErr.Entity)
}

func TestApprove(t *testing.T) {
	f := newDisposalFixture(t)
	ctx := context.Background()

	request, err := f.service.CreateRequest(ctx, f.validInput())
	require.NoError(t, err)

	approverID := uuid.New()
	approved, err := f.service.Approve(ctx, request.ID, approverID)
	require.NoError(t, err)

	assert.Equal(t, disposal.ApprovalApproved, approved.ApprovalStatus)
	assert.Equal(t, disposal.StatusListed, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, approverID, *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	assert.Equal(t, vehicle.StatusDisposed, f.vehicles.status(f.vehicle.ID))
}

func TestApproveAlreadyDecided(t *testing.T) {
	f := newDisposalFixture(t)
	ctx := context.Background()

	request, err := f.service.CreateRequest(ctx, f.validInput())
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, request.ID, uuid.New())
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, request.ID, uuid.New())
	var stateErr *shared.InvalidStateError
	require.ErrorAs(t, err, &stateErr)

	_, err = f.service.Reject(ctx, request.ID, uuid.New(), "changed our mind")
	require.ErrorAs(t, err, &stateErr)
}

func TestApproveSurvivesVehicleWriteFailure(t *testing.T) {
	f := newDisposalFixture(t)
	ctx := context.Background()

	request, err := f.service.CreateRequest(ctx, f.validInput())
	require.NoError(t, err)

	f.vehicles.failStatusUpdate = true
	approved, err := f.service.Approve(ctx, request.ID, uuid.New())
	require.NoError(t, err, "vehicle write is best-effort")

	assert.Equal(t, disposal.ApprovalApproved, approved.ApprovalStatus)
	assert.Equal(t, vehicle.StatusActive, f.vehicles.status(f.vehicle.ID), "vehicle left behind for manual reconciliation")
}

func TestReject(t *testing.T) {
	f := newDisposalFixture(t)
	ctx := context.Background()

	request, err := f.service.CreateRequest(ctx, f.validInput())
	require.NoError(t, err)

	rejecterID := uuid.New()
	rejected, err := f.service.Reject(ctx, request.ID, rejecterID, "vehicle still serviceable")
	require.NoError(t, err)

	assert.Equal(t, disposal.ApprovalRejected, rejected.ApprovalStatus)
	assert.Equal(t, "vehicle still serviceable", rejected.RejectionReason)
	require.NotNil(t, rejected.RejectedBy)
	assert.Equal(t, rejecterID, *rejected.RejectedBy)
	assert.Equal(t, disposal.StatusPendingApproval, rejected.Status, "rejection does not advance the workflow status")

	assert.Equal(t, vehicle.StatusActive, f.vehicles.status(f.vehicle.ID))
}

func TestRejectRequiresReason(t *testing.T) {
	f := newDisposalFixture(t)
	ctx := context.Background()

	request, err := f.service.CreateRequest(ctx, f.validInput())
	require.NoError(t, err)

	_, err = f.service.Reject(ctx, request.ID, uuid.New(), "")
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rejection_reason", verr.Field)
}

func TestRejectRevertsDisposedVehicle(t *testing.T) {
	f := newDisposalFixture(t)
	ctx := context.Background()

	request, err := f.service.CreateRequest(ctx, f.validInput())
	require.NoError(t, err)

	// Another workflow may have marked the vehicle disposed in the
	// meantime; rejection forces the revert regardless of precedence.
	require.NoError(t, f.vehicles.UpdateStatus(ctx, f.vehicle.ID, vehicle.StatusDisposed))

	_, err = f.service.Reject(ctx, request.ID, uuid.New(), "keep in fleet")
	require.NoError(t, err)
	assert.Equal(t, vehicle.StatusActive, f.vehicles.status(f.vehicle.ID))
}

func TestUpdate(t *testing.T) {
	f := newDisposalFixture(t)
	ctx := context.Background()

	request, err := f.service.CreateRequest(ctx, f.validInput())
	require.NoError(t, err)

	newCondition := disposal.ConditionPoor
	newValue := 42000.0
	updated, err := f.service.Update(ctx, request.ID, inbound.UpdateRequestInput{
		Condition:      &newCondition,
		EstimatedValue: &newValue,
	})
	require.NoError(t, err)

	assert.Equal(t, disposal.ConditionPoor, updated.Condition)
	assert.Equal(t, 42000.0, updated.EstimatedValue)
	assert.Equal(t, disposal.ReasonEndOfLife, updated.Reason, "untouched fields keep their values")
}

func TestUpdateAllowedAfterDecision(t *testing.T) {
	f := newDisposalFixture(t)
	ctx := context.Background()

	request, err := f.service.CreateRequest(ctx, f.validInput())
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, request.ID, uuid.New())
	require.NoError(t, err)

	// Editing a decided request is allowed; the legacy workflow never
	// guarded it and operators rely on it for data corrections.
	newValue := 39000.0
	updated, err := f.service.Update(ctx, request.ID, inbound.UpdateRequestInput{EstimatedValue: &newValue})
	require.NoError(t, err)
	assert.Equal(t, 39000.0, updated.EstimatedValue)
	assert.Equal(t, disposal.ApprovalApproved, updated.ApprovalStatus)
}

func TestUpdateRejectsBadValues(t *testing.T) {
	f := newDisposalFixture(t)
	ctx := context.Background()

	request, err := f.service.CreateRequest(ctx, f.validInput())
	require.NoError(t, err)

	badMileage := int64(-5)
	_, err = f.service.Update(ctx, request.ID, inbound.UpdateRequestInput{CurrentMileage: &badMileage})
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)

	stored, err := f.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(185000), stored.CurrentMileage, "failed update must not persist")
}

func TestListRequests(t *testing.T) {
	f := newDisposalFixture(t)
	ctx := context.Background()

	first, err := f.service.CreateRequest(ctx, f.validInput())
	require.NoError(t, err)
	_, err = f.service.CreateRequest(ctx, f.validInput())
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, first.ID, uuid.New())
	require.NoError(t, err)

	all, err := f.service.ListRequests(ctx, inbound.ListRequestsInput{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	listed := disposal.StatusListed
	filtered, err := f.service.ListRequests(ctx, inbound.ListRequestsInput{Status: &listed})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, first.ID, filtered[0].ID)
}

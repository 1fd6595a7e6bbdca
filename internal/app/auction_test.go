package app

import (
	"context"
	"testing"
	"time"

	"fleetops-disposal-service/internal/domain/auction"
	"fleetops-disposal-service/internal/domain/bid"
	"fleetops-disposal-service/internal/domain/disposal"
	"fleetops-disposal-service/internal/domain/shared"
	"fleetops-disposal-service/internal/ports/inbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type auctionFixture struct {
	service  *AuctionService
	auctions *memAuctionRepo
	requests *memRequestRepo
	bids     *memBidRepo
	request  *disposal.Request
}

// newAuctionFixture seeds an approved, listed disposal request ready to be
// auctioned.
func newAuctionFixture(t *testing.T) *auctionFixture {
	t.Helper()

	requests := newMemRequestRepo()
	auctions := newMemAuctionRepo()
	bids := newMemBidRepo()

	request := &disposal.Request{
		ID:             uuid.New(),
		VehicleID:      uuid.New(),
		Reason:         disposal.ReasonEndOfLife,
		Method:         disposal.MethodAuction,
		Condition:      disposal.ConditionFair,
		EstimatedValue: 50000,
		ApprovalStatus: disposal.ApprovalApproved,
		Status:         disposal.StatusListed,
		RequestDate:    time.Now(),
	}
	require.NoError(t, requests.Create(context.Background(), request))

	return &auctionFixture{
		service: NewAuctionService(AuctionServiceParams{
			AuctionRepo: auctions,
			RequestRepo: requests,
			BidRepo:     bids,
			Logger:      zerolog.Nop(),
		}),
		auctions: auctions,
		requests: requests,
		bids:     bids,
		request:  request,
	}
}

func (f *auctionFixture) validInput() inbound.CreateAuctionInput {
	start := time.Now().Add(24 * time.Hour)
	return inbound.CreateAuctionInput{
		DisposalID:    f.request.ID,
		Type:          auction.TypeOnline,
		StartingPrice: 35000,
		StartDate:     start,
		EndDate:       start.Add(8 * 24 * time.Hour),
	}
}

func (f *auctionFixture) placeBid(t *testing.T, auctionID uuid.UUID, amount float64) {
	t.Helper()
	require.NoError(t, f.bids.Create(context.Background(), &bid.Bid{
		ID:         uuid.New(),
		AuctionID:  auctionID,
		BidderName: "bidder",
		Amount:     amount,
		BidDate:    time.Now(),
		IsValid:    true,
	}))
}

func TestCreateAuction(t *testing.T) {
	f := newAuctionFixture(t)

	a, err := f.service.Create(context.Background(), f.validInput())
	require.NoError(t, err)

	assert.Equal(t, auction.StatusScheduled, a.Status)
	assert.Equal(t, f.request.ID, a.DisposalID)
	assert.Nil(t, a.WinnerID)
	assert.Nil(t, a.WinningBid)
}

func TestCreateAuctionMinimumWindow(t *testing.T) {
	f := newAuctionFixture(t)
	ctx := context.Background()

	input := f.validInput()
	input.EndDate = input.StartDate.Add(auction.MinimumDuration - time.Second)
	_, err := f.service.Create(ctx, input)
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "end_date", verr.Field)

	// A window of exactly seven days is valid.
	input = f.validInput()
	input.EndDate = input.StartDate.Add(auction.MinimumDuration)
	_, err = f.service.Create(ctx, input)
	require.NoError(t, err)
}

func TestCreateAuctionReserveBelowStarting(t *testing.T) {
	f := newAuctionFixture(t)

	reserve := 34999.99
	input := f.validInput()
	input.ReservePrice = &reserve

	_, err := f.service.Create(context.Background(), input)
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "reserve_price", verr.Field)
}

func TestCreateAuctionReserveEqualToStartingAllowed(t *testing.T) {
	f := newAuctionFixture(t)

	reserve := 35000.0
	input := f.validInput()
	input.ReservePrice = &reserve

	_, err := f.service.Create(context.Background(), input)
	require.NoError(t, err)
}

func TestCreateAuctionRequiresApprovedListedRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("pending request", func(t *testing.T) {
		f := newAuctionFixture(t)
		f.request.ApprovalStatus = disposal.ApprovalPending
		f.request.Status = disposal.StatusPendingApproval
		require.NoError(t, f.requests.Update(ctx, f.request))

		_, err := f.service.Create(ctx, f.validInput())
		var stateErr *shared.InvalidStateError
		require.ErrorAs(t, err, &stateErr)
	})

	t.Run("approved but already bidding_open", func(t *testing.T) {
		f := newAuctionFixture(t)
		f.request.Status = disposal.StatusBiddingOpen
		require.NoError(t, f.requests.Update(ctx, f.request))

		_, err := f.service.Create(ctx, f.validInput())
		var stateErr *shared.InvalidStateError
		require.ErrorAs(t, err, &stateErr)
	})

	t.Run("unknown request", func(t *testing.T) {
		f := newAuctionFixture(t)
		input := f.validInput()
		input.DisposalID = uuid.New()

		_, err := f.service.Create(ctx, input)
		var nfErr *shared.NotFoundError
		require.ErrorAs(t, err, &nfErr)
	})
}

func TestCreateAuctionInvalidPricing(t *testing.T) {
	f := newAuctionFixture(t)
	ctx := context.Background()

	input := f.validInput()
	input.StartingPrice = 0
	_, err := f.service.Create(ctx, input)
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)

	input = f.validInput()
	input.Type = "silent"
	_, err = f.service.Create(ctx, input)
	require.ErrorAs(t, err, &verr)
}

func TestCreateAuctionRejectsSecondOpenAuction(t *testing.T) {
	f := newAuctionFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.validInput())
	require.NoError(t, err)

	_, err = f.service.Create(ctx, f.validInput())
	var stateErr *shared.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
}

func TestCreateAuctionAllowedAfterTerminalAuction(t *testing.T) {
	f := newAuctionFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, f.validInput())
	require.NoError(t, err)

	_, err = f.service.Cancel(ctx, first.ID)
	require.NoError(t, err)

	_, err = f.service.Create(ctx, f.validInput())
	require.NoError(t, err, "a cancelled auction no longer blocks relisting")
}

func TestStartAuction(t *testing.T) {
	f := newAuctionFixture(t)
	ctx := context.Background()

	a, err := f.service.Create(ctx, f.validInput())
	require.NoError(t, err)

	started, err := f.service.Start(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, auction.StatusActive, started.Status)

	_, err = f.service.Start(ctx, a.ID)
	var trErr *shared.InvalidTransitionError
	require.ErrorAs(t, err, &trErr)
}

func TestCloseAuctionNoBids(t *testing.T) {
	f := newAuctionFixture(t)
	ctx := context.Background()

	a, err := f.service.Create(ctx, f.validInput())
	require.NoError(t, err)
	_, err = f.service.Start(ctx, a.ID)
	require.NoError(t, err)

	_, err = f.service.Close(ctx, a.ID)
	var stateErr *shared.InvalidStateError
	require.ErrorAs(t, err, &stateErr)

	stored, err := f.auctions.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, auction.StatusActive, stored.Status, "failed close leaves the auction active")
}

func TestCloseAuctionReserveNotMet(t *testing.T) {
	f := newAuctionFixture(t)
	ctx := context.Background()

	reserve := 50000.0
	input := f.validInput()
	input.ReservePrice = &reserve

	a, err := f.service.Create(ctx, input)
	require.NoError(t, err)
	_, err = f.service.Start(ctx, a.ID)
	require.NoError(t, err)

	f.placeBid(t, a.ID, 45000)

	_, err = f.service.Close(ctx, a.ID)
	var reserveErr *shared.ReserveNotMetError
	require.ErrorAs(t, err, &reserveErr)
	assert.Equal(t, 50000.0, reserveErr.ReservePrice)
	assert.Equal(t, 45000.0, reserveErr.HighestBid)

	stored, err := f.auctions.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, auction.StatusActive, stored.Status)
	assert.Nil(t, stored.WinnerID)
	assert.Nil(t, stored.WinningBid)
}

func TestCloseAuctionRecordsWinner(t *testing.T) {
	f := newAuctionFixture(t)
	ctx := context.Background()

	reserve := 42500.0
	input := f.validInput()
	input.ReservePrice = &reserve

	a, err := f.service.Create(ctx, input)
	require.NoError(t, err)
	_, err = f.service.Start(ctx, a.ID)
	require.NoError(t, err)

	f.placeBid(t, a.ID, 40000)
	f.placeBid(t, a.ID, 45000)

	closed, err := f.service.Close(ctx, a.ID)
	require.NoError(t, err)

	assert.Equal(t, auction.StatusClosed, closed.Status)
	require.NotNil(t, closed.WinningBid)
	assert.Equal(t, 45000.0, *closed.WinningBid)
	require.NotNil(t, closed.WinnerID)
}

func TestCloseAuctionWrongState(t *testing.T) {
	f := newAuctionFixture(t)
	ctx := context.Background()

	a, err := f.service.Create(ctx, f.validInput())
	require.NoError(t, err)

	_, err = f.service.Close(ctx, a.ID)
	var trErr *shared.InvalidTransitionError
	require.ErrorAs(t, err, &trErr, "scheduled auctions cannot be closed")
}

func TestAwardAuction(t *testing.T) {
	f := newAuctionFixture(t)
	ctx := context.Background()

	a, err := f.service.Create(ctx, f.validInput())
	require.NoError(t, err)
	_, err = f.service.Start(ctx, a.ID)
	require.NoError(t, err)

	_, err = f.service.Award(ctx, a.ID)
	var trErr *shared.InvalidTransitionError
	require.ErrorAs(t, err, &trErr, "only closed auctions can be awarded")

	f.placeBid(t, a.ID, 36000)
	_, err = f.service.Close(ctx, a.ID)
	require.NoError(t, err)

	awarded, err := f.service.Award(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, auction.StatusAwarded, awarded.Status)
}

func TestCancelAuction(t *testing.T) {
	f := newAuctionFixture(t)
	ctx := context.Background()

	a, err := f.service.Create(ctx, f.validInput())
	require.NoError(t, err)

	cancelled, err := f.service.Cancel(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, auction.StatusCancelled, cancelled.Status)
}

func TestCancelAuctionOnlyFromScheduled(t *testing.T) {
	f := newAuctionFixture(t)
	ctx := context.Background()

	a, err := f.service.Create(ctx, f.validInput())
	require.NoError(t, err)
	_, err = f.service.Start(ctx, a.ID)
	require.NoError(t, err)

	_, err = f.service.Cancel(ctx, a.ID)
	var trErr *shared.InvalidTransitionError
	require.ErrorAs(t, err, &trErr, "an auction that opened for bidding must run to a close")
}

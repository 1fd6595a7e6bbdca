package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"fleetops-disposal-service/internal/domain/auction"
	"fleetops-disposal-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const endDateKey = "auction:end_dates"

// AuctionReader is the read slice of the auction service the monitor needs
type AuctionReader interface {
	GetAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error)
}

// EndDateMonitor tracks auction end dates in a Redis sorted set and
// publishes an informational end-due event when a date passes. End dates
// are informational only: the monitor never closes or mutates an auction;
// closing stays a manual operator action.
type EndDateMonitor struct {
	redis    *redis.Client
	auctions AuctionReader
	notifier outbound.Notifier
	logger   zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

type EndDateMonitorParams struct {
	RedisClient *redis.Client
	Auctions    AuctionReader
	Notifier    outbound.Notifier
	Logger      zerolog.Logger
}

// NewEndDateMonitor creates a new end-date monitor
func NewEndDateMonitor(params EndDateMonitorParams) *EndDateMonitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &EndDateMonitor{
		redis:    params.RedisClient,
		auctions: params.Auctions,
		notifier: params.Notifier,
		logger:   params.Logger.With().Str("component", "end_date_monitor").Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ScheduleEndDue registers an auction's end date for a reminder
func (m *EndDateMonitor) ScheduleEndDue(auctionID uuid.UUID, endDate time.Time) error {
	err := m.redis.ZAdd(m.ctx, endDateKey, redis.Z{
		Score:  float64(endDate.Unix()),
		Member: auctionID.String(),
	}).Err()

	if err != nil {
		m.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to register end date")
		return fmt.Errorf("failed to register end date: %w", err)
	}

	m.logger.Info().
		Str("auction_id", auctionID.String()).
		Time("end_date", endDate).
		Msg("Auction end date registered")

	return nil
}

// Start begins the monitor loop
func (m *EndDateMonitor) Start() {
	m.logger.Info().Msg("Starting end-date monitor")

	m.wg.Add(1)
	go m.monitorLoop()
}

// Stop gracefully stops the monitor
func (m *EndDateMonitor) Stop() {
	m.logger.Info().Msg("Stopping end-date monitor")
	m.cancel()
	m.wg.Wait()
}

func (m *EndDateMonitor) monitorLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.checkDueAuctions()
		case <-m.ctx.Done():
			m.logger.Info().Msg("Monitor loop stopped")
			return
		}
	}
}

// checkDueAuctions finds auctions whose end date has passed and publishes
// a reminder for each
func (m *EndDateMonitor) checkDueAuctions() {
	now := time.Now().Unix()

	dueAuctions, err := m.redis.ZRangeByScore(m.ctx, endDateKey, &redis.ZRangeBy{
		Min:   "0",
		Max:   strconv.FormatInt(now, 10),
		Count: 10,
	}).Result()

	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to get due auctions")
		return
	}

	if len(dueAuctions) > 0 {
		m.logger.Debug().Int("count", len(dueAuctions)).Msg("Found due auctions")
	}

	for _, auctionIDStr := range dueAuctions {
		auctionID, err := uuid.Parse(auctionIDStr)
		if err != nil {
			m.logger.Error().Err(err).Str("auction_id", auctionIDStr).Msg("Invalid auction ID")
			m.redis.ZRem(m.ctx, endDateKey, auctionIDStr)
			continue
		}

		m.remind(auctionID)
	}
}

// remind publishes the end-due reminder for one auction and drops it from
// the schedule
func (m *EndDateMonitor) remind(auctionID uuid.UUID) {
	defer m.redis.ZRem(m.ctx, endDateKey, auctionID.String())

	a, err := m.auctions.GetAuction(m.ctx, auctionID)
	if err != nil {
		m.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to load due auction")
		return
	}

	// Terminal auctions need no reminder
	if a.Status.IsTerminal() || a.Status == auction.StatusClosed {
		m.logger.Debug().
			Str("auction_id", auctionID.String()).
			Str("auction_status", string(a.Status)).
			Msg("Skipping reminder for finished auction")
		return
	}

	event := outbound.Event{
		Type:     outbound.EventAuctionEndDue,
		EntityID: auctionID,
		Summary:  fmt.Sprintf("Auction %s reached its end date; an operator should close it", auctionID),
		Data: map[string]interface{}{
			"auction_id":     auctionID.String(),
			"auction_status": string(a.Status),
			"end_date":       a.EndDate.Format(time.RFC3339),
		},
		Timestamp: time.Now().Unix(),
	}

	if err := m.notifier.Publish(m.ctx, auctionID, event); err != nil {
		m.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to publish end-due reminder")
		return
	}

	m.logger.Info().Str("auction_id", auctionID.String()).Msg("End-due reminder published")
}

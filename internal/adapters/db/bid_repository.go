package db

import (
	"context"
	"database/sql"
	"fmt"

	"fleetops-disposal-service/internal/domain/bid"
	"fleetops-disposal-service/internal/domain/shared"

	"github.com/google/uuid"
)

// BidRepository implements the bid ledger repository interface. The ledger
// is append-only: bids are inserted and read, never updated or deleted.
type BidRepository struct {
	conn *Connection
}

// NewBidRepository creates a new bid repository
func NewBidRepository(conn *Connection) *BidRepository {
	return &BidRepository{conn: conn}
}

// Create appends a bid to the ledger
func (r *BidRepository) Create(ctx context.Context, b *bid.Bid) error {
	query := `
		INSERT INTO bids (id, auction_id, bidder_name, bidder_contact, bid_amount, bid_date, is_valid, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		b.ID,
		b.AuctionID,
		b.BidderName,
		b.BidderContact,
		b.Amount,
		b.BidDate,
		b.IsValid,
		nullableString(b.Notes),
	)

	if err != nil {
		return fmt.Errorf("failed to create bid: %w", err)
	}

	return nil
}

// GetByAuctionID retrieves all bids for an auction, highest first. The
// ordering is for display; the ledger itself is unordered.
func (r *BidRepository) GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error) {
	query := `
		SELECT id, auction_id, bidder_name, bidder_contact, bid_amount, bid_date, is_valid, notes
		FROM bids
		WHERE auction_id = $1
		ORDER BY bid_amount DESC, bid_date ASC
	`

	rows, err := r.conn.GetDB().QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bids: %w", err)
	}
	defer rows.Close()

	var bids []*bid.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bids: %w", err)
	}

	return bids, nil
}

// GetHighest retrieves the highest valid bid for an auction
func (r *BidRepository) GetHighest(ctx context.Context, auctionID uuid.UUID) (*bid.Bid, error) {
	query := `
		SELECT id, auction_id, bidder_name, bidder_contact, bid_amount, bid_date, is_valid, notes
		FROM bids
		WHERE auction_id = $1 AND is_valid = true
		ORDER BY bid_amount DESC, bid_date ASC
		LIMIT 1
	`

	b, err := scanBid(r.conn.GetDB().QueryRowContext(ctx, query, auctionID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrNoBidsFound
		}
		return nil, fmt.Errorf("failed to get highest bid: %w", err)
	}

	return b, nil
}

// CountByAuctionID returns the number of bids recorded for an auction
func (r *BidRepository) CountByAuctionID(ctx context.Context, auctionID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM bids WHERE auction_id = $1`

	var count int
	if err := r.conn.GetDB().QueryRowContext(ctx, query, auctionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bids: %w", err)
	}

	return count, nil
}

func scanBid(row rowScanner) (*bid.Bid, error) {
	var b bid.Bid
	var notes sql.NullString

	err := row.Scan(
		&b.ID,
		&b.AuctionID,
		&b.BidderName,
		&b.BidderContact,
		&b.Amount,
		&b.BidDate,
		&b.IsValid,
		&notes,
	)
	if err != nil {
		return nil, err
	}

	if notes.Valid {
		b.Notes = notes.String
	}
	return &b, nil
}

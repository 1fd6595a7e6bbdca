package db

import (
	"context"
	"database/sql"
	"fmt"

	"fleetops-disposal-service/internal/domain/auction"

	"github.com/google/uuid"
)

// AuctionRepository implements the auction repository interface
type AuctionRepository struct {
	conn *Connection
}

// NewAuctionRepository creates a new auction repository
func NewAuctionRepository(conn *Connection) *AuctionRepository {
	return &AuctionRepository{conn: conn}
}

const auctionColumns = `id, disposal_id, auction_type, starting_price, reserve_price,
		start_date, end_date, auction_status, winner_id, winning_bid, created_at, updated_at`

// Create persists a new auction
func (r *AuctionRepository) Create(ctx context.Context, a *auction.Auction) error {
	query := `
		INSERT INTO disposal_auctions (` + auctionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		a.ID,
		a.DisposalID,
		a.Type,
		a.StartingPrice,
		a.ReservePrice,
		a.StartDate,
		a.EndDate,
		a.Status,
		a.WinnerID,
		a.WinningBid,
		a.CreatedAt,
		a.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create auction: %w", err)
	}

	return nil
}

// GetByID retrieves an auction by ID
func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error) {
	query := `
		SELECT ` + auctionColumns + `
		FROM disposal_auctions
		WHERE id = $1
	`

	a, err := scanAuction(r.conn.GetDB().QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("auction not found")
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}

	return a, nil
}

// GetByDisposalID retrieves all auctions spawned by a disposal request
func (r *AuctionRepository) GetByDisposalID(ctx context.Context, disposalID uuid.UUID) ([]*auction.Auction, error) {
	query := `
		SELECT ` + auctionColumns + `
		FROM disposal_auctions
		WHERE disposal_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.conn.GetDB().QueryContext(ctx, query, disposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get auctions by disposal ID: %w", err)
	}
	defer rows.Close()

	var auctions []*auction.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auction: %w", err)
		}
		auctions = append(auctions, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auctions: %w", err)
	}

	return auctions, nil
}

// Update updates an auction
func (r *AuctionRepository) Update(ctx context.Context, a *auction.Auction) error {
	query := `
		UPDATE disposal_auctions
		SET auction_type = $2, starting_price = $3, reserve_price = $4,
		    start_date = $5, end_date = $6, auction_status = $7,
		    winner_id = $8, winning_bid = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.conn.GetDB().ExecContext(ctx, query,
		a.ID,
		a.Type,
		a.StartingPrice,
		a.ReservePrice,
		a.StartDate,
		a.EndDate,
		a.Status,
		a.WinnerID,
		a.WinningBid,
		a.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update auction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("auction not found")
	}

	return nil
}

func scanAuction(row rowScanner) (*auction.Auction, error) {
	var a auction.Auction
	err := row.Scan(
		&a.ID,
		&a.DisposalID,
		&a.Type,
		&a.StartingPrice,
		&a.ReservePrice,
		&a.StartDate,
		&a.EndDate,
		&a.Status,
		&a.WinnerID,
		&a.WinningBid,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// internal/repository/postgres/auction_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"auction-house/internal/domain"
	"auction-house/internal/repository"
	"auction-house/internal/util"
)

const auctionColumns = `id, seller_id, asset_id, reserved_price, minimum_bid_increment,
	current_highest_bid, current_highest_bidder_id, start_date, total_minutes_to_expiry,
	status, created_at, updated_at`

// AuctionRepository implements repository.AuctionRepository for PostgreSQL.
type AuctionRepository struct{}

// NewAuctionRepository creates a new AuctionRepository.
func NewAuctionRepository(db *sqlx.DB) repository.AuctionRepository {
	return &AuctionRepository{}
}

// CreateAuction inserts a new auction using the provided DBExecutor.
func (r *AuctionRepository) CreateAuction(ctx context.Context, q repository.DBExecutor, auction *domain.Auction) error {
	query := `INSERT INTO auctions (seller_id, asset_id, reserved_price, minimum_bid_increment,
                current_highest_bid, current_highest_bidder_id, start_date, total_minutes_to_expiry,
                status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	err := q.QueryRowContext(ctx, query, auction.SellerID, auction.AssetID, auction.ReservedPrice,
		auction.MinimumBidIncrement, auction.CurrentHighestBid, auction.CurrentHighestBidderID,
		auction.StartDate, auction.TotalMinutesToExpiry, auction.Status,
		auction.CreatedAt, auction.UpdatedAt).Scan(&auction.ID)
	if err != nil {
		return fmt.Errorf("failed to create auction: %w", err)
	}
	return nil
}

// GetAuctionByID retrieves an auction by its ID using the provided DBExecutor.
func (r *AuctionRepository) GetAuctionByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Auction, error) {
	var auction domain.Auction
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`
	err := q.GetContext(ctx, &auction, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get auction by ID %d: %w", id, err)
	}
	return &auction, nil
}

// GetLiveAuctions retrieves all auctions currently in the Live status.
func (r *AuctionRepository) GetLiveAuctions(ctx context.Context, q repository.DBExecutor) ([]domain.Auction, error) {
	var auctions []domain.Auction
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE status = $1 ORDER BY start_date`
	if err := q.SelectContext(ctx, &auctions, query, domain.AuctionStatusLive); err != nil {
		return nil, fmt.Errorf("failed to get live auctions: %w", err)
	}
	return auctions, nil
}

// GetAuctionsBySellerID retrieves all auctions posted by the given seller.
func (r *AuctionRepository) GetAuctionsBySellerID(ctx context.Context, q repository.DBExecutor, sellerID int64) ([]domain.Auction, error) {
	var auctions []domain.Auction
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE seller_id = $1 ORDER BY start_date DESC`
	if err := q.SelectContext(ctx, &auctions, query, sellerID); err != nil {
		return nil, fmt.Errorf("failed to get auctions for seller %d: %w", sellerID, err)
	}
	return auctions, nil
}

// GetLiveAuctionsByHighestBidder retrieves Live auctions where the given user
// holds the current highest bid.
func (r *AuctionRepository) GetLiveAuctionsByHighestBidder(ctx context.Context, q repository.DBExecutor, bidderID int64) ([]domain.Auction, error) {
	var auctions []domain.Auction
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE status = $1 AND current_highest_bidder_id = $2`
	if err := q.SelectContext(ctx, &auctions, query, domain.AuctionStatusLive, bidderID); err != nil {
		return nil, fmt.Errorf("failed to get live auctions led by bidder %d: %w", bidderID, err)
	}
	return auctions, nil
}

// UpdateHighestBid persists a new highest bid and bidder for the auction.
func (r *AuctionRepository) UpdateHighestBid(ctx context.Context, q repository.DBExecutor, auctionID, amount, bidderID int64) error {
	query := `UPDATE auctions SET current_highest_bid = $1, current_highest_bidder_id = $2, updated_at = $3 WHERE id = $4`
	result, err := q.ExecContext(ctx, query, amount, bidderID, time.Now().UTC(), auctionID)
	if err != nil {
		return fmt.Errorf("failed to update highest bid for auction %d: %w", auctionID, err)
	}
	return requireRowsAffected(result, auctionID)
}

// UpdateStatus persists a new lifecycle status for the auction.
func (r *AuctionRepository) UpdateStatus(ctx context.Context, q repository.DBExecutor, auctionID int64, status domain.AuctionStatus) error {
	query := `UPDATE auctions SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, status, time.Now().UTC(), auctionID)
	if err != nil {
		return fmt.Errorf("failed to update status for auction %d: %w", auctionID, err)
	}
	return requireRowsAffected(result, auctionID)
}

func requireRowsAffected(result sql.Result, auctionID int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for auction %d: %w", auctionID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("auction %d: %w", auctionID, util.ErrNotFound)
	}
	return nil
}

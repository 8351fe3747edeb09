// internal/repository/postgres/bid_history_pg.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"auction-house/internal/domain"
	"auction-house/internal/repository"
)

// BidHistoryRepository implements repository.BidHistoryRepository for PostgreSQL.
type BidHistoryRepository struct{}

// NewBidHistoryRepository creates a new BidHistoryRepository.
func NewBidHistoryRepository(db *sqlx.DB) repository.BidHistoryRepository {
	return &BidHistoryRepository{}
}

// CreateBid appends a bid record using the provided DBExecutor.
func (r *BidHistoryRepository) CreateBid(ctx context.Context, q repository.DBExecutor, bid *domain.BidHistory) error {
	query := `INSERT INTO bid_history (auction_id, bidder_id, bid_amount, bid_date)
              VALUES ($1, $2, $3, $4) RETURNING id`
	err := q.QueryRowContext(ctx, query, bid.AuctionID, bid.BidderID, bid.BidAmount, bid.BidDate).Scan(&bid.ID)
	if err != nil {
		return fmt.Errorf("failed to create bid record: %w", err)
	}
	return nil
}

// GetBidsByAuctionID retrieves all bids for an auction, oldest first.
func (r *BidHistoryRepository) GetBidsByAuctionID(ctx context.Context, q repository.DBExecutor, auctionID int64) ([]domain.BidHistory, error) {
	var bids []domain.BidHistory
	query := `SELECT id, auction_id, bidder_id, bid_amount, bid_date FROM bid_history
              WHERE auction_id = $1 ORDER BY bid_date, id`
	if err := q.SelectContext(ctx, &bids, query, auctionID); err != nil {
		return nil, fmt.Errorf("failed to get bids for auction %d: %w", auctionID, err)
	}
	return bids, nil
}

// GetBidsByBidderID retrieves all bids placed by a user, newest first.
func (r *BidHistoryRepository) GetBidsByBidderID(ctx context.Context, q repository.DBExecutor, bidderID int64) ([]domain.BidHistory, error) {
	var bids []domain.BidHistory
	query := `SELECT id, auction_id, bidder_id, bid_amount, bid_date FROM bid_history
              WHERE bidder_id = $1 ORDER BY bid_date DESC, id DESC`
	if err := q.SelectContext(ctx, &bids, query, bidderID); err != nil {
		return nil, fmt.Errorf("failed to get bids for bidder %d: %w", bidderID, err)
	}
	return bids, nil
}

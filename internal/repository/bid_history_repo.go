// internal/repository/bid_history_repo.go
package repository

import (
	"context"

	"auction-house/internal/domain"
)

// BidHistoryRepository defines the interface for the append-only bid audit
// trail. Records are never updated or deleted.
type BidHistoryRepository interface {
	// CreateBid appends a bid record using the provided DBExecutor.
	CreateBid(ctx context.Context, q DBExecutor, bid *domain.BidHistory) error
	// GetBidsByAuctionID retrieves all bids for an auction, oldest first.
	GetBidsByAuctionID(ctx context.Context, q DBExecutor, auctionID int64) ([]domain.BidHistory, error)
	// GetBidsByBidderID retrieves all bids placed by a user, newest first.
	GetBidsByBidderID(ctx context.Context, q DBExecutor, bidderID int64) ([]domain.BidHistory, error)
}

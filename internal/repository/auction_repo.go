// internal/repository/auction_repo.go
package repository

import (
	"context"

	"auction-house/internal/domain"
)

// AuctionRepository defines the interface for auction data operations.
type AuctionRepository interface {
	// CreateAuction adds a new auction using the provided DBExecutor.
	CreateAuction(ctx context.Context, q DBExecutor, auction *domain.Auction) error
	// GetAuctionByID retrieves an auction by its ID using the provided DBExecutor.
	GetAuctionByID(ctx context.Context, q DBExecutor, id int64) (*domain.Auction, error)
	// GetLiveAuctions retrieves all auctions currently in the Live status.
	GetLiveAuctions(ctx context.Context, q DBExecutor) ([]domain.Auction, error)
	// GetAuctionsBySellerID retrieves all auctions posted by the given seller.
	GetAuctionsBySellerID(ctx context.Context, q DBExecutor, sellerID int64) ([]domain.Auction, error)
	// GetLiveAuctionsByHighestBidder retrieves Live auctions where the given
	// user holds the current highest bid.
	GetLiveAuctionsByHighestBidder(ctx context.Context, q DBExecutor, bidderID int64) ([]domain.Auction, error)
	// UpdateHighestBid persists a new highest bid and bidder for the auction.
	UpdateHighestBid(ctx context.Context, q DBExecutor, auctionID, amount, bidderID int64) error
	// UpdateStatus persists a new lifecycle status for the auction.
	UpdateStatus(ctx context.Context, q DBExecutor, auctionID int64, status domain.AuctionStatus) error
}

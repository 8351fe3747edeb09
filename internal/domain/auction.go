// internal/domain/auction.go
package domain

import (
	"fmt"
	"time"

	"auction-house/internal/util"
)

// AuctionStatus is the lifecycle state of an auction. Expired and
// ExpiredWithoutBids are terminal.
type AuctionStatus string

const (
	AuctionStatusLive               AuctionStatus = "LIVE"
	AuctionStatusExpired            AuctionStatus = "EXPIRED"
	AuctionStatusExpiredWithoutBids AuctionStatus = "EXPIRED_WITHOUT_BIDS"
)

// Auction terms limits.
const (
	MaxReservedPrice   = 9999
	MaxBidIncrement    = 999
	MaxMinutesToExpiry = 10080 // 7 days
	maxBidAmount       = MaxTransactionAmount
)

// Auction runs for a fixed window over exactly one asset. A CurrentHighestBid
// of 0 means no bids; CurrentHighestBidderID is 0 in that case.
type Auction struct {
	ID                     int64         `db:"id" json:"id"`
	SellerID               int64         `db:"seller_id" json:"seller_id"`
	AssetID                int64         `db:"asset_id" json:"asset_id"`
	ReservedPrice          int64         `db:"reserved_price" json:"reserved_price"`
	MinimumBidIncrement    int64         `db:"minimum_bid_increment" json:"minimum_bid_increment"`
	CurrentHighestBid      int64         `db:"current_highest_bid" json:"current_highest_bid"`
	CurrentHighestBidderID int64         `db:"current_highest_bidder_id" json:"current_highest_bidder_id"`
	StartDate              time.Time     `db:"start_date" json:"start_date"`
	TotalMinutesToExpiry   int64         `db:"total_minutes_to_expiry" json:"total_minutes_to_expiry"`
	Status                 AuctionStatus `db:"status" json:"status"`
	CreatedAt              time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time     `db:"updated_at" json:"updated_at"`
}

// ExpiresAt returns the moment the auction window closes.
func (a *Auction) ExpiresAt() time.Time {
	return a.StartDate.Add(time.Duration(a.TotalMinutesToExpiry) * time.Minute)
}

// IsExpired reports whether the auction window has closed at the given time.
func (a *Auction) IsExpired(now time.Time) bool {
	return !now.Before(a.ExpiresAt())
}

// RemainingMinutes returns whole minutes until expiry, never negative.
func (a *Auction) RemainingMinutes(now time.Time) int64 {
	remaining := int64(a.ExpiresAt().Sub(now) / time.Minute)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HasBids reports whether at least one bid has been accepted.
func (a *Auction) HasBids() bool {
	return a.CurrentHighestBid > 0
}

// NextMinimumBid returns the smallest acceptable bid amount: the reserve price
// while no bids exist, otherwise current highest plus the minimum increment.
func (a *Auction) NextMinimumBid() int64 {
	if !a.HasBids() {
		return a.ReservedPrice
	}
	return a.CurrentHighestBid + a.MinimumBidIncrement
}

// ValidateAuctionTerms checks the posting parameters:
// reserve price 1..9999, increment 1..999, increment below the reserve price
// and at least 1% of it (floored, minimum 1), duration 1..10080 minutes.
func ValidateAuctionTerms(reservedPrice, minIncrement, totalMinutes int64) error {
	if reservedPrice <= 0 || reservedPrice > MaxReservedPrice {
		return fmt.Errorf("%w: reserve price must be between 1 and %d", util.ErrValidation, MaxReservedPrice)
	}
	if minIncrement <= 0 || minIncrement > MaxBidIncrement {
		return fmt.Errorf("%w: minimum bid increment must be between 1 and %d", util.ErrValidation, MaxBidIncrement)
	}
	if minIncrement >= reservedPrice {
		return fmt.Errorf("%w: minimum bid increment must be less than the reserve price", util.ErrValidation)
	}
	floor := reservedPrice / 100
	if floor < 1 {
		floor = 1
	}
	if minIncrement < floor {
		return fmt.Errorf("%w: minimum bid increment must be at least 1%% of the reserve price", util.ErrValidation)
	}
	if totalMinutes <= 0 || totalMinutes > MaxMinutesToExpiry {
		return fmt.Errorf("%w: expiry must be between 1 and %d minutes", util.ErrValidation, MaxMinutesToExpiry)
	}
	return nil
}

// ValidateBidAmount bounds a raw bid amount before any auction-specific rule
// is applied.
func ValidateBidAmount(amount int64) error {
	if amount <= 0 || amount > maxBidAmount {
		return fmt.Errorf("%w: bid amount must be between 1 and %d", util.ErrValidation, maxBidAmount)
	}
	return nil
}

// BidHistory is an immutable, append-only record of an accepted bid. The
// bidder's display name is derived from the user record at read time, never
// stored.
type BidHistory struct {
	ID        int64     `db:"id" json:"id"`
	AuctionID int64     `db:"auction_id" json:"auction_id"`
	BidderID  int64     `db:"bidder_id" json:"bidder_id"`
	BidAmount int64     `db:"bid_amount" json:"bid_amount"`
	BidDate   time.Time `db:"bid_date" json:"bid_date"`
}

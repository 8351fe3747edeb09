// internal/service/bid_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"auction-house/internal/domain"
	"auction-house/internal/events"
	"auction-house/internal/notify"
	"auction-house/internal/repository"
	"auction-house/internal/util"
	"auction-house/pkg/db"
)

// BidView is the read model for one bid, joined with the bidder's display
// name at read time.
type BidView struct {
	BidID      int64     `json:"bid_id"`
	AuctionID  int64     `json:"auction_id"`
	BidderID   int64     `json:"bidder_id"`
	BidderName string    `json:"bidder_name"`
	BidAmount  int64     `json:"bid_amount"`
	BidDate    time.Time `json:"bid_date"`
}

// BidService defines the interface for bid acceptance and the bid audit trail.
type BidService interface {
	// PlaceBid validates and applies a bid, moving blocked funds between
	// bidders. Bid acceptance is serialized per auction: two concurrent bids
	// on the same auction never observe the same highest bid.
	PlaceBid(ctx context.Context, auctionID, bidderID, amount int64) (*domain.Auction, error)
	GetBidHistoryByAuction(ctx context.Context, auctionID int64) ([]BidView, error)
	GetBidHistoryByBidder(ctx context.Context, bidderID int64) ([]BidView, error)
	// UnblockOutbidBidders is a reconciliation tool: it releases the blocked
	// amounts of every recorded bidder on the auction except the designated
	// highest bidder. Used to correct multi-bidder drift, not during normal
	// bid acceptance.
	UnblockOutbidBidders(ctx context.Context, auctionID, newHighestBidderID int64) error
}

type bidService struct {
	dbBeginner  db.DBTxBeginner
	dbExecutor  repository.DBExecutor
	userRepo    repository.UserRepository
	assetRepo   repository.AssetRepository
	auctionRepo repository.AuctionRepository
	bidRepo     repository.BidHistoryRepository
	locks       *EntityLocks
	beginTx     db.BeginTxFunc
	commitTx    db.CommitTxFunc
	rollbackTx  db.RollbackTxFunc
	publisher   *events.Publisher
	mailer      notify.EmailSender
	now         func() time.Time
	logger      *zap.Logger
}

// NewBidService creates a new instance of BidService.
func NewBidService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	assetRepo repository.AssetRepository,
	auctionRepo repository.AuctionRepository,
	bidRepo repository.BidHistoryRepository,
	locks *EntityLocks,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	publisher *events.Publisher,
	mailer notify.EmailSender,
	now func() time.Time,
	logger *zap.Logger,
) BidService {
	return &bidService{
		dbBeginner:  dbBeginner,
		dbExecutor:  dbExecutor,
		userRepo:    userRepo,
		assetRepo:   assetRepo,
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		locks:       locks,
		beginTx:     beginTx,
		commitTx:    commitTx,
		rollbackTx:  rollbackTx,
		publisher:   publisher,
		mailer:      mailer,
		now:         now,
		logger:      logger,
	}
}

// PlaceBid accepts or rejects a bid on a Live auction.
//
// Checks apply in a fixed order: the auction must exist and be running, the
// bidder must exist, the first bid must meet the reserve price, subsequent
// bids must exceed the current highest bid by the minimum increment, the
// amount must be in range, the seller and the asset owner must not bid, the
// bidder needs the full amount available, and the blocked total is capped at
// MaxTransactionAmount. A new highest bidder has the full amount blocked and
// the previous bidder released; a bidder raising their own bid blocks only
// the difference. All wallet and auction mutations plus the audit record
// commit as one unit.
func (s *bidService) PlaceBid(ctx context.Context, auctionID, bidderID, amount int64) (*domain.Auction, error) {
	s.locks.Auctions.Lock(auctionID)
	defer s.locks.Auctions.Unlock(auctionID)

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("place bid: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("place bid: transaction controller does not implement DBExecutor")
	}

	auction, err := s.auctionRepo.GetAuctionByID(ctx, txExecutor, auctionID)
	if err != nil {
		return nil, fmt.Errorf("place bid: failed to get auction %d: %w", auctionID, err)
	}
	if auction.Status != domain.AuctionStatusLive || auction.IsExpired(s.now()) {
		return nil, fmt.Errorf("%w: auction is not live or has expired", util.ErrInvalidState)
	}

	previousBidderID := auction.CurrentHighestBidderID
	unlockUsers := s.locks.Users.LockAll(bidderID, previousBidderID)
	defer unlockUsers()

	bidder, err := s.userRepo.GetUserByID(ctx, txExecutor, bidderID)
	if err != nil {
		return nil, fmt.Errorf("place bid: failed to get bidder %d: %w", bidderID, err)
	}

	// First-bid and increment rules are mutually exclusive: the increment
	// only applies once a bid exists.
	if !auction.HasBids() && amount < auction.ReservedPrice {
		return nil, fmt.Errorf("%w: first bid must meet the reserve price of %d", util.ErrInvalidBid, auction.ReservedPrice)
	}
	if auction.HasBids() && amount < auction.NextMinimumBid() {
		return nil, fmt.Errorf("%w: bid must be at least %d (current highest plus minimum increment)", util.ErrInvalidBid, auction.NextMinimumBid())
	}
	if err := domain.ValidateBidAmount(amount); err != nil {
		return nil, err
	}

	asset, err := s.assetRepo.GetAssetByID(ctx, txExecutor, auction.AssetID)
	if err != nil && !errors.Is(err, util.ErrNotFound) {
		return nil, fmt.Errorf("place bid: failed to get asset %d: %w", auction.AssetID, err)
	}
	if auction.SellerID == bidderID || (asset != nil && asset.OwnerID == bidderID) {
		return nil, fmt.Errorf("%w: you cannot bid on your own asset", util.ErrForbidden)
	}

	if bidder.Available() < amount {
		return nil, fmt.Errorf("%w: you need %d available to place this bid (total %d, blocked %d)",
			util.ErrInsufficientFunds, amount, bidder.TotalBalance, bidder.BlockedBalance)
	}
	if bidder.BlockedBalance+amount > domain.MaxTransactionAmount {
		return nil, fmt.Errorf("%w: total blocked amount would exceed %d", util.ErrLimitExceeded, domain.MaxTransactionAmount)
	}

	// Release the previous highest bidder's hold, unless the bidder is
	// raising their own bid.
	var previousBidder *domain.User
	if previousBidderID > 0 && previousBidderID != bidderID {
		previousBidder, err = s.userRepo.GetUserByID(ctx, txExecutor, previousBidderID)
		if err != nil {
			if !errors.Is(err, util.ErrNotFound) {
				return nil, fmt.Errorf("place bid: failed to get previous bidder %d: %w", previousBidderID, err)
			}
			s.logger.Warn("previous highest bidder missing, nothing to unblock",
				zap.Int64("auction_id", auctionID),
				zap.Int64("bidder_id", previousBidderID))
		} else {
			previousBidder.UnblockFunds(auction.CurrentHighestBid)
			if err := s.userRepo.UpdateWallet(ctx, txExecutor, previousBidder.ID, previousBidder.TotalBalance, previousBidder.BlockedBalance); err != nil {
				return nil, fmt.Errorf("place bid: failed to unblock previous bidder %d: %w", previousBidderID, err)
			}
		}
	}

	amountToBlock := amount
	if previousBidderID == bidderID {
		amountToBlock = amount - auction.CurrentHighestBid
		if amountToBlock < 0 {
			amountToBlock = 0
		}
	}
	if err := bidder.BlockFunds(amountToBlock); err != nil {
		return nil, fmt.Errorf("bid would push blocked funds past the wallet balance, deposit required: %w", err)
	}
	if err := s.userRepo.UpdateWallet(ctx, txExecutor, bidderID, bidder.TotalBalance, bidder.BlockedBalance); err != nil {
		return nil, fmt.Errorf("place bid: failed to block funds for bidder %d: %w", bidderID, err)
	}

	if err := s.auctionRepo.UpdateHighestBid(ctx, txExecutor, auctionID, amount, bidderID); err != nil {
		return nil, fmt.Errorf("place bid: failed to update auction %d: %w", auctionID, err)
	}

	bid := &domain.BidHistory{
		AuctionID: auctionID,
		BidderID:  bidderID,
		BidAmount: amount,
		BidDate:   s.now(),
	}
	if err := s.bidRepo.CreateBid(ctx, txExecutor, bid); err != nil {
		return nil, fmt.Errorf("place bid: failed to record bid: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("place bid: failed to commit transaction: %w", err)
	}

	auction.CurrentHighestBid = amount
	auction.CurrentHighestBidderID = bidderID

	s.publisher.Publish(ctx, events.Event{
		Type:      events.TypeBidPlaced,
		AuctionID: auctionID,
		AssetID:   auction.AssetID,
		UserID:    bidderID,
		Amount:    amount,
	})
	if previousBidder != nil && s.mailer != nil {
		title := ""
		if asset != nil {
			title = asset.Title
		}
		body := fmt.Sprintf("Dear %s,\n\nyou have been outbid on %q. The highest bid is now $%d.\n\nRegards, Auction House",
			previousBidder.Name, title, amount)
		if err := s.mailer.SendEmail(ctx, previousBidder.Email, "You have been outbid | Auction House", body, false); err != nil {
			s.logger.Error("failed to send outbid email",
				zap.String("to", previousBidder.Email),
				zap.Error(err))
		}
	}
	return auction, nil
}

// GetBidHistoryByAuction returns the audit trail of an auction, oldest first.
func (s *bidService) GetBidHistoryByAuction(ctx context.Context, auctionID int64) ([]BidView, error) {
	bids, err := s.bidRepo.GetBidsByAuctionID(ctx, s.dbExecutor, auctionID)
	if err != nil {
		return nil, fmt.Errorf("bid history: failed to get bids for auction %d: %w", auctionID, err)
	}
	return s.buildViews(ctx, bids), nil
}

// GetBidHistoryByBidder returns every bid a user has placed, newest first.
func (s *bidService) GetBidHistoryByBidder(ctx context.Context, bidderID int64) ([]BidView, error) {
	bids, err := s.bidRepo.GetBidsByBidderID(ctx, s.dbExecutor, bidderID)
	if err != nil {
		return nil, fmt.Errorf("bid history: failed to get bids for bidder %d: %w", bidderID, err)
	}
	return s.buildViews(ctx, bids), nil
}

func (s *bidService) buildViews(ctx context.Context, bids []domain.BidHistory) []BidView {
	names := make(map[int64]string)
	views := make([]BidView, 0, len(bids))
	for _, bid := range bids {
		name, ok := names[bid.BidderID]
		if !ok {
			if bidder, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, bid.BidderID); err == nil {
				name = bidder.Name
			}
			names[bid.BidderID] = name
		}
		views = append(views, BidView{
			BidID:      bid.ID,
			AuctionID:  bid.AuctionID,
			BidderID:   bid.BidderID,
			BidderName: name,
			BidAmount:  bid.BidAmount,
			BidDate:    bid.BidDate,
		})
	}
	return views
}

// UnblockOutbidBidders releases the recorded bid amounts of every bidder on
// the auction other than newHighestBidderID. Blocked balances are clamped at
// zero, so re-running the reconciliation cannot drive a wallet negative.
func (s *bidService) UnblockOutbidBidders(ctx context.Context, auctionID, newHighestBidderID int64) error {
	s.locks.Auctions.Lock(auctionID)
	defer s.locks.Auctions.Unlock(auctionID)

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("unblock outbid bidders: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("unblock outbid bidders: transaction controller does not implement DBExecutor")
	}

	if _, err := s.auctionRepo.GetAuctionByID(ctx, txExecutor, auctionID); err != nil {
		return fmt.Errorf("unblock outbid bidders: failed to get auction %d: %w", auctionID, err)
	}

	bids, err := s.bidRepo.GetBidsByAuctionID(ctx, txExecutor, auctionID)
	if err != nil {
		return fmt.Errorf("unblock outbid bidders: failed to get bids for auction %d: %w", auctionID, err)
	}

	// A bidder only ever holds one block at a time, so the stale hold is
	// their largest recorded bid, not the sum.
	held := make(map[int64]int64)
	for _, bid := range bids {
		if bid.BidderID != newHighestBidderID && bid.BidAmount > held[bid.BidderID] {
			held[bid.BidderID] = bid.BidAmount
		}
	}
	if len(held) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(held))
	for id := range held {
		ids = append(ids, id)
	}
	unlockUsers := s.locks.Users.LockAll(ids...)
	defer unlockUsers()

	for _, id := range ids {
		bidder, err := s.userRepo.GetUserByID(ctx, txExecutor, id)
		if err != nil {
			if errors.Is(err, util.ErrNotFound) {
				s.logger.Warn("recorded bidder missing, skipping unblock",
					zap.Int64("auction_id", auctionID),
					zap.Int64("bidder_id", id))
				continue
			}
			return fmt.Errorf("unblock outbid bidders: failed to get bidder %d: %w", id, err)
		}
		bidder.UnblockFunds(held[id])
		if err := s.userRepo.UpdateWallet(ctx, txExecutor, id, bidder.TotalBalance, bidder.BlockedBalance); err != nil {
			return fmt.Errorf("unblock outbid bidders: failed to update wallet for bidder %d: %w", id, err)
		}
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("unblock outbid bidders: failed to commit transaction: %w", err)
	}
	return nil
}

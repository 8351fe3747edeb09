// internal/service/auction_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"auction-house/internal/domain"
	"auction-house/internal/events"
	"auction-house/internal/notify"
	"auction-house/internal/repository"
	"auction-house/internal/util"
	"auction-house/pkg/db"
)

// PostAuctionInput carries the parameters for posting an asset to auction.
// SellerID is the acting user; it is always passed explicitly.
type PostAuctionInput struct {
	SellerID             int64 `json:"seller_id"`
	AssetID              int64 `json:"asset_id"`
	ReservedPrice        int64 `json:"reserved_price"`
	MinimumBidIncrement  int64 `json:"minimum_bid_increment"`
	TotalMinutesToExpiry int64 `json:"total_minutes_to_expiry"`
}

// AuctionView is the read model for an auction, joined with its asset and the
// current highest bidder's display name.
type AuctionView struct {
	AuctionID              int64                `json:"auction_id"`
	SellerID               int64                `json:"seller_id"`
	AssetID                int64                `json:"asset_id"`
	AssetTitle             string               `json:"asset_title"`
	AssetDescription       string               `json:"asset_description"`
	RetailValue            int64                `json:"retail_value"`
	ReservedPrice          int64                `json:"reserved_price"`
	MinimumBidIncrement    int64                `json:"minimum_bid_increment"`
	CurrentHighestBid      int64                `json:"current_highest_bid"`
	CurrentHighestBidderID int64                `json:"current_highest_bidder_id"`
	HighestBidderName      string               `json:"highest_bidder_name"`
	StartDate              time.Time            `json:"start_date"`
	TotalMinutesToExpiry   int64                `json:"total_minutes_to_expiry"`
	RemainingMinutes       int64                `json:"remaining_minutes"`
	Status                 domain.AuctionStatus `json:"status"`
}

// AuctionService defines the interface for the auction lifecycle: posting,
// expiry settlement and read queries.
type AuctionService interface {
	PostAuction(ctx context.Context, in PostAuctionInput) (*domain.Auction, error)
	// CheckAuctionExpiries settles every Live auction whose window has
	// closed and returns the number of auctions finalized. Failure on one
	// auction never blocks settlement of the others.
	CheckAuctionExpiries(ctx context.Context) (int, error)
	GetAuction(ctx context.Context, auctionID int64) (*AuctionView, error)
	GetAuctionsBySeller(ctx context.Context, sellerID int64) ([]AuctionView, error)
	GetLiveAuctions(ctx context.Context) ([]AuctionView, error)
	GetAuctionsLedByUser(ctx context.Context, userID int64) ([]AuctionView, error)
}

type auctionService struct {
	dbBeginner  db.DBTxBeginner
	dbExecutor  repository.DBExecutor
	userRepo    repository.UserRepository
	assetRepo   repository.AssetRepository
	auctionRepo repository.AuctionRepository
	locks       *EntityLocks
	beginTx     db.BeginTxFunc
	commitTx    db.CommitTxFunc
	rollbackTx  db.RollbackTxFunc
	publisher   *events.Publisher
	mailer      notify.EmailSender
	now         func() time.Time
	logger      *zap.Logger
}

// NewAuctionService creates a new instance of AuctionService.
func NewAuctionService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	assetRepo repository.AssetRepository,
	auctionRepo repository.AuctionRepository,
	locks *EntityLocks,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	publisher *events.Publisher,
	mailer notify.EmailSender,
	now func() time.Time,
	logger *zap.Logger,
) AuctionService {
	return &auctionService{
		dbBeginner:  dbBeginner,
		dbExecutor:  dbExecutor,
		userRepo:    userRepo,
		assetRepo:   assetRepo,
		auctionRepo: auctionRepo,
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

// PostAuction opens a Live auction over an Open asset owned by the seller.
// The auction insert and the asset status flip commit as one unit.
func (s *auctionService) PostAuction(ctx context.Context, in PostAuctionInput) (*domain.Auction, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("post auction: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("post auction: transaction controller does not implement DBExecutor")
	}

	asset, err := s.assetRepo.GetAssetByID(ctx, txExecutor, in.AssetID)
	if err != nil {
		return nil, fmt.Errorf("post auction: failed to get asset %d: %w", in.AssetID, err)
	}
	if asset.OwnerID != in.SellerID {
		return nil, fmt.Errorf("%w: you can only auction your own assets", util.ErrForbidden)
	}
	if asset.Status != domain.AssetStatusOpen {
		return nil, fmt.Errorf("%w: asset must be in Open status", util.ErrInvalidState)
	}
	if err := domain.ValidateAuctionTerms(in.ReservedPrice, in.MinimumBidIncrement, in.TotalMinutesToExpiry); err != nil {
		return nil, err
	}

	now := s.now()
	auction := &domain.Auction{
		SellerID:             in.SellerID,
		AssetID:              in.AssetID,
		ReservedPrice:        in.ReservedPrice,
		MinimumBidIncrement:  in.MinimumBidIncrement,
		StartDate:            now,
		TotalMinutesToExpiry: in.TotalMinutesToExpiry,
		Status:               domain.AuctionStatusLive,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.auctionRepo.CreateAuction(ctx, txExecutor, auction); err != nil {
		return nil, fmt.Errorf("post auction: failed to create auction: %w", err)
	}

	asset.Status = domain.AssetStatusClosedForAuction
	if err := s.assetRepo.UpdateAsset(ctx, txExecutor, asset); err != nil {
		return nil, fmt.Errorf("post auction: failed to update asset %d: %w", in.AssetID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("post auction: failed to commit transaction: %w", err)
	}

	s.publisher.Publish(ctx, events.Event{
		Type:      events.TypeAuctionOpened,
		AuctionID: auction.ID,
		AssetID:   asset.ID,
		UserID:    in.SellerID,
		Amount:    in.ReservedPrice,
	})
	return auction, nil
}

// CheckAuctionExpiries is the expiry sweep. Each expired auction settles in
// its own transaction under its own auction lock; running the sweep again on
// the same state is a no-op.
func (s *auctionService) CheckAuctionExpiries(ctx context.Context) (int, error) {
	liveAuctions, err := s.auctionRepo.GetLiveAuctions(ctx, s.dbExecutor)
	if err != nil {
		return 0, fmt.Errorf("expiry sweep: failed to list live auctions: %w", err)
	}

	now := s.now()
	settled := 0
	for _, auction := range liveAuctions {
		if !auction.IsExpired(now) {
			continue
		}
		done, err := s.settleAuction(ctx, auction.ID)
		if err != nil {
			s.logger.Error("failed to settle expired auction",
				zap.Int64("auction_id", auction.ID),
				zap.Error(err))
			continue
		}
		if done {
			settled++
		}
	}
	return settled, nil
}

// settleAuction finalizes one expired auction: with a winning bid it moves the
// funds buyer->seller and transfers asset ownership; without bids it reverts
// the asset to the seller. Returns false when the auction was skipped (already
// settled, or a required record is missing and it stays Live for a later
// sweep).
func (s *auctionService) settleAuction(ctx context.Context, auctionID int64) (bool, error) {
	s.locks.Auctions.Lock(auctionID)
	defer s.locks.Auctions.Unlock(auctionID)

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return false, fmt.Errorf("transaction controller does not implement DBExecutor")
	}

	// Re-read under the auction lock: a concurrent sweep or a settle that
	// raced this one may already have finalized the auction.
	auction, err := s.auctionRepo.GetAuctionByID(ctx, txExecutor, auctionID)
	if err != nil {
		return false, fmt.Errorf("failed to get auction: %w", err)
	}
	if auction.Status != domain.AuctionStatusLive || !auction.IsExpired(s.now()) {
		return false, nil
	}

	asset, err := s.assetRepo.GetAssetByID(ctx, txExecutor, auction.AssetID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			s.logger.Warn("expired auction references missing asset, skipping",
				zap.Int64("auction_id", auctionID),
				zap.Int64("asset_id", auction.AssetID))
			return false, nil
		}
		return false, fmt.Errorf("failed to get asset %d: %w", auction.AssetID, err)
	}

	if !auction.HasBids() {
		if err := s.auctionRepo.UpdateStatus(ctx, txExecutor, auctionID, domain.AuctionStatusExpiredWithoutBids); err != nil {
			return false, err
		}
		asset.Status = domain.AssetStatusOpen
		if err := s.assetRepo.UpdateAsset(ctx, txExecutor, asset); err != nil {
			return false, err
		}
		if err := s.commitTx(txController); err != nil {
			return false, fmt.Errorf("failed to commit transaction: %w", err)
		}

		s.publisher.Publish(ctx, events.Event{
			Type:      events.TypeAuctionExpiredWithoutBids,
			AuctionID: auctionID,
			AssetID:   asset.ID,
			UserID:    auction.SellerID,
		})
		return true, nil
	}

	unlockUsers := s.locks.Users.LockAll(auction.CurrentHighestBidderID, auction.SellerID)
	defer unlockUsers()

	buyer, err := s.userRepo.GetUserByID(ctx, txExecutor, auction.CurrentHighestBidderID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			s.logger.Warn("winning bidder missing, auction left pending settlement",
				zap.Int64("auction_id", auctionID),
				zap.Int64("bidder_id", auction.CurrentHighestBidderID))
			return false, nil
		}
		return false, fmt.Errorf("failed to get buyer %d: %w", auction.CurrentHighestBidderID, err)
	}
	seller, err := s.userRepo.GetUserByID(ctx, txExecutor, auction.SellerID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			s.logger.Warn("seller missing, auction left pending settlement",
				zap.Int64("auction_id", auctionID),
				zap.Int64("seller_id", auction.SellerID))
			return false, nil
		}
		return false, fmt.Errorf("failed to get seller %d: %w", auction.SellerID, err)
	}

	bid := auction.CurrentHighestBid
	buyer.TotalBalance -= bid
	buyer.UnblockFunds(bid)
	seller.TotalBalance += bid

	if err := s.userRepo.UpdateWallet(ctx, txExecutor, buyer.ID, buyer.TotalBalance, buyer.BlockedBalance); err != nil {
		return false, err
	}
	if err := s.userRepo.UpdateWallet(ctx, txExecutor, seller.ID, seller.TotalBalance, seller.BlockedBalance); err != nil {
		return false, err
	}
	if err := s.auctionRepo.UpdateStatus(ctx, txExecutor, auctionID, domain.AuctionStatusExpired); err != nil {
		return false, err
	}

	asset.OwnerID = buyer.ID
	asset.Status = domain.AssetStatusOpen
	if err := s.assetRepo.UpdateAsset(ctx, txExecutor, asset); err != nil {
		return false, err
	}

	if err := s.commitTx(txController); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publisher.Publish(ctx, events.Event{
		Type:      events.TypeAuctionSettled,
		AuctionID: auctionID,
		AssetID:   asset.ID,
		UserID:    buyer.ID,
		Amount:    bid,
	})
	s.sendMail(ctx, buyer.Email, "You won the auction | Auction House",
		fmt.Sprintf("Dear %s,\n\nyou won the auction for %q with a bid of $%d. The asset is now yours.\n\nRegards, Auction House", buyer.Name, asset.Title, bid))
	s.sendMail(ctx, seller.Email, "Your asset sold | Auction House",
		fmt.Sprintf("Dear %s,\n\nyour asset %q sold at auction for $%d. The amount has been credited to your wallet.\n\nRegards, Auction House", seller.Name, asset.Title, bid))
	return true, nil
}

func (s *auctionService) sendMail(ctx context.Context, to, subject, body string) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.SendEmail(ctx, to, subject, body, false); err != nil {
		s.logger.Error("failed to send notification email", zap.String("to", to), zap.Error(err))
	}
}

// GetAuction retrieves one auction joined with its asset and bidder name.
func (s *auctionService) GetAuction(ctx context.Context, auctionID int64) (*AuctionView, error) {
	auction, err := s.auctionRepo.GetAuctionByID(ctx, s.dbExecutor, auctionID)
	if err != nil {
		return nil, fmt.Errorf("get auction: failed to get auction %d: %w", auctionID, err)
	}
	view := s.buildView(ctx, auction)
	return &view, nil
}

// GetAuctionsBySeller retrieves all auctions posted by the seller.
func (s *auctionService) GetAuctionsBySeller(ctx context.Context, sellerID int64) ([]AuctionView, error) {
	auctions, err := s.auctionRepo.GetAuctionsBySellerID(ctx, s.dbExecutor, sellerID)
	if err != nil {
		return nil, fmt.Errorf("get auctions: failed to get auctions for seller %d: %w", sellerID, err)
	}
	return s.buildViews(ctx, auctions), nil
}

// GetLiveAuctions retrieves all running auctions sorted by nearest expiry.
func (s *auctionService) GetLiveAuctions(ctx context.Context) ([]AuctionView, error) {
	auctions, err := s.auctionRepo.GetLiveAuctions(ctx, s.dbExecutor)
	if err != nil {
		return nil, fmt.Errorf("get live auctions: %w", err)
	}

	now := s.now()
	running := auctions[:0]
	for _, a := range auctions {
		if !a.IsExpired(now) {
			running = append(running, a)
		}
	}
	sort.Slice(running, func(i, j int) bool {
		return running[i].ExpiresAt().Before(running[j].ExpiresAt())
	})
	return s.buildViews(ctx, running), nil
}

// GetAuctionsLedByUser retrieves the running auctions where the user holds
// the highest bid, sorted by nearest expiry.
func (s *auctionService) GetAuctionsLedByUser(ctx context.Context, userID int64) ([]AuctionView, error) {
	auctions, err := s.auctionRepo.GetLiveAuctionsByHighestBidder(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("get auctions led by user %d: %w", userID, err)
	}

	now := s.now()
	running := auctions[:0]
	for _, a := range auctions {
		if !a.IsExpired(now) {
			running = append(running, a)
		}
	}
	sort.Slice(running, func(i, j int) bool {
		return running[i].ExpiresAt().Before(running[j].ExpiresAt())
	})
	return s.buildViews(ctx, running), nil
}

func (s *auctionService) buildViews(ctx context.Context, auctions []domain.Auction) []AuctionView {
	views := make([]AuctionView, 0, len(auctions))
	for i := range auctions {
		views = append(views, s.buildView(ctx, &auctions[i]))
	}
	return views
}

// buildView joins the auction with its asset and bidder name. Missing side
// records degrade to empty fields rather than failing the read.
func (s *auctionService) buildView(ctx context.Context, auction *domain.Auction) AuctionView {
	view := AuctionView{
		AuctionID:              auction.ID,
		SellerID:               auction.SellerID,
		AssetID:                auction.AssetID,
		ReservedPrice:          auction.ReservedPrice,
		MinimumBidIncrement:    auction.MinimumBidIncrement,
		CurrentHighestBid:      auction.CurrentHighestBid,
		CurrentHighestBidderID: auction.CurrentHighestBidderID,
		StartDate:              auction.StartDate,
		TotalMinutesToExpiry:   auction.TotalMinutesToExpiry,
		RemainingMinutes:       auction.RemainingMinutes(s.now()),
		Status:                 auction.Status,
	}
	if asset, err := s.assetRepo.GetAssetByID(ctx, s.dbExecutor, auction.AssetID); err == nil {
		view.AssetTitle = asset.Title
		view.AssetDescription = asset.Description
		view.RetailValue = asset.RetailValue
	}
	if auction.CurrentHighestBidderID > 0 {
		if bidder, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, auction.CurrentHighestBidderID); err == nil {
			view.HighestBidderName = bidder.Name
		}
	}
	return view
}

// internal/service/wallet_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"auction-house/internal/domain"
	"auction-house/internal/repository"
	"auction-house/internal/util"
	"auction-house/pkg/db"
)

// WalletBalance is the balance view returned to callers. ActiveBids lists the
// live auctions the user currently leads; their amounts are what the blocked
// balance is earmarked against.
type WalletBalance struct {
	UserID           int64       `json:"user_id"`
	TotalBalance     int64       `json:"total_balance"`
	BlockedBalance   int64       `json:"blocked_balance"`
	AvailableBalance int64       `json:"available_balance"`
	ActiveBids       []ActiveBid `json:"active_bids"`
}

// ActiveBid is one live auction the user is currently winning.
type ActiveBid struct {
	AuctionID int64     `json:"auction_id"`
	BidAmount int64     `json:"bid_amount"`
	ExpiresAt time.Time `json:"expires_at"`
}

// WalletService defines the interface for user and wallet business logic.
type WalletService interface {
	CreateUser(ctx context.Context, name, email string) (*domain.User, error)
	Deposit(ctx context.Context, userID, amount int64) (*domain.User, error)
	Withdraw(ctx context.Context, userID, amount int64) (*domain.User, error)
	GetWalletBalance(ctx context.Context, userID int64) (*WalletBalance, error)
	ReconcileBlocked(ctx context.Context, userID int64) (int64, error)
}

type walletService struct {
	dbBeginner  db.DBTxBeginner
	dbExecutor  repository.DBExecutor
	userRepo    repository.UserRepository
	auctionRepo repository.AuctionRepository
	locks       *EntityLocks
	beginTx     db.BeginTxFunc
	commitTx    db.CommitTxFunc
	rollbackTx  db.RollbackTxFunc
	now         func() time.Time
	logger      *zap.Logger
}

// NewWalletService creates a new instance of WalletService.
func NewWalletService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	auctionRepo repository.AuctionRepository,
	locks *EntityLocks,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	now func() time.Time,
	logger *zap.Logger,
) WalletService {
	return &walletService{
		dbBeginner:  dbBeginner,
		dbExecutor:  dbExecutor,
		userRepo:    userRepo,
		auctionRepo: auctionRepo,
		locks:       locks,
		beginTx:     beginTx,
		commitTx:    commitTx,
		rollbackTx:  rollbackTx,
		now:         now,
		logger:      logger,
	}
}

// CreateUser registers a new user with an empty wallet.
func (s *walletService) CreateUser(ctx context.Context, name, email string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: name and a valid email are required", util.ErrValidation)
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("create user: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("create user: transaction controller does not implement DBExecutor")
	}

	_, err = s.userRepo.GetUserByEmail(ctx, txExecutor, email)
	if err == nil {
		return nil, fmt.Errorf("%w: email %s is already registered", util.ErrValidation, email)
	}
	if !errors.Is(err, util.ErrNotFound) {
		return nil, fmt.Errorf("create user: failed to check existing user: %w", err)
	}

	user := domain.NewUser(name, email)
	if err := s.userRepo.CreateUser(ctx, txExecutor, user); err != nil {
		return nil, fmt.Errorf("create user: failed to create user: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("create user: failed to commit transaction: %w", err)
	}
	return user, nil
}

// Deposit adds money to the user's wallet.
func (s *walletService) Deposit(ctx context.Context, userID, amount int64) (*domain.User, error) {
	unlock := s.locks.Users.LockAll(userID)
	defer unlock()

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("deposit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("deposit: transaction controller does not implement DBExecutor")
	}

	user, err := s.userRepo.GetUserByID(ctx, txExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("deposit: failed to get user %d: %w", userID, err)
	}

	if err := user.Deposit(amount); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateWallet(ctx, txExecutor, userID, user.TotalBalance, user.BlockedBalance); err != nil {
		return nil, fmt.Errorf("deposit: failed to update wallet: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("deposit: failed to commit transaction: %w", err)
	}
	return user, nil
}

// Withdraw removes money from the available portion of the user's wallet.
func (s *walletService) Withdraw(ctx context.Context, userID, amount int64) (*domain.User, error) {
	unlock := s.locks.Users.LockAll(userID)
	defer unlock()

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("withdraw: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("withdraw: transaction controller does not implement DBExecutor")
	}

	user, err := s.userRepo.GetUserByID(ctx, txExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("withdraw: failed to get user %d: %w", userID, err)
	}

	if err := user.Withdraw(amount); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateWallet(ctx, txExecutor, userID, user.TotalBalance, user.BlockedBalance); err != nil {
		return nil, fmt.Errorf("withdraw: failed to update wallet: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("withdraw: failed to commit transaction: %w", err)
	}
	return user, nil
}

// ReconcileBlocked recomputes the user's blocked balance from the live
// auctions they currently lead: min(total balance, sum of their leading bids).
// The correction is persisted only when it differs from the stored value, so
// running it repeatedly is a no-op. It never raises blocked above total.
func (s *walletService) ReconcileBlocked(ctx context.Context, userID int64) (int64, error) {
	unlock := s.locks.Users.LockAll(userID)
	defer unlock()

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return 0, fmt.Errorf("reconcile blocked: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return 0, fmt.Errorf("reconcile blocked: transaction controller does not implement DBExecutor")
	}

	user, err := s.userRepo.GetUserByID(ctx, txExecutor, userID)
	if err != nil {
		return 0, fmt.Errorf("reconcile blocked: failed to get user %d: %w", userID, err)
	}

	leading, err := s.auctionRepo.GetLiveAuctionsByHighestBidder(ctx, txExecutor, userID)
	if err != nil {
		return 0, fmt.Errorf("reconcile blocked: failed to get leading auctions for user %d: %w", userID, err)
	}

	now := s.now()
	var expected int64
	for _, a := range leading {
		if a.IsExpired(now) {
			continue // pending settlement, the sweep owns these funds
		}
		expected += a.CurrentHighestBid
	}

	corrected := expected
	if corrected > user.TotalBalance {
		corrected = user.TotalBalance
	}
	if corrected == user.BlockedBalance {
		return corrected, nil
	}

	s.logger.Warn("correcting drifted blocked balance",
		zap.Int64("user_id", userID),
		zap.Int64("stored", user.BlockedBalance),
		zap.Int64("corrected", corrected))

	if err := s.userRepo.UpdateWallet(ctx, txExecutor, userID, user.TotalBalance, corrected); err != nil {
		return 0, fmt.Errorf("reconcile blocked: failed to update wallet: %w", err)
	}
	if err := s.commitTx(txController); err != nil {
		return 0, fmt.Errorf("reconcile blocked: failed to commit transaction: %w", err)
	}
	return corrected, nil
}

// GetWalletBalance returns the user's balance view. The read path reconciles
// the blocked balance first, so a drifted wallet self-heals before it is ever
// shown to the user.
func (s *walletService) GetWalletBalance(ctx context.Context, userID int64) (*WalletBalance, error) {
	blocked, err := s.ReconcileBlocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("get wallet balance: failed to get user %d: %w", userID, err)
	}

	leading, err := s.auctionRepo.GetLiveAuctionsByHighestBidder(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("get wallet balance: failed to get leading auctions for user %d: %w", userID, err)
	}

	now := s.now()
	activeBids := make([]ActiveBid, 0, len(leading))
	for _, a := range leading {
		if a.IsExpired(now) {
			continue
		}
		activeBids = append(activeBids, ActiveBid{
			AuctionID: a.ID,
			BidAmount: a.CurrentHighestBid,
			ExpiresAt: a.ExpiresAt(),
		})
	}

	return &WalletBalance{
		UserID:           user.ID,
		TotalBalance:     user.TotalBalance,
		BlockedBalance:   blocked,
		AvailableBalance: user.TotalBalance - blocked,
		ActiveBids:       activeBids,
	}, nil
}

// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"auction-house/internal/domain"
	"auction-house/internal/repository"
	"auction-house/pkg/db"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, q repository.DBExecutor, email string) (*domain.User, error) {
	args := m.Called(ctx, q, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateWallet(ctx context.Context, q repository.DBExecutor, userID, totalBalance, blockedBalance int64) error {
	args := m.Called(ctx, q, userID, totalBalance, blockedBalance)
	return args.Error(0)
}

// MockAssetRepository is a mock implementation of repository.AssetRepository.
type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) CreateAsset(ctx context.Context, q repository.DBExecutor, asset *domain.Asset) error {
	args := m.Called(ctx, q, asset)
	return args.Error(0)
}

func (m *MockAssetRepository) GetAssetByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Asset, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *MockAssetRepository) GetAssetsByOwnerID(ctx context.Context, q repository.DBExecutor, ownerID int64) ([]domain.Asset, error) {
	args := m.Called(ctx, q, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Asset), args.Error(1)
}

func (m *MockAssetRepository) UpdateAsset(ctx context.Context, q repository.DBExecutor, asset *domain.Asset) error {
	args := m.Called(ctx, q, asset)
	return args.Error(0)
}

func (m *MockAssetRepository) DeleteAsset(ctx context.Context, q repository.DBExecutor, id int64) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

// MockAuctionRepository is a mock implementation of repository.AuctionRepository.
type MockAuctionRepository struct {
	mock.Mock
}

func (m *MockAuctionRepository) CreateAuction(ctx context.Context, q repository.DBExecutor, auction *domain.Auction) error {
	args := m.Called(ctx, q, auction)
	return args.Error(0)
}

func (m *MockAuctionRepository) GetAuctionByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Auction, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Auction), args.Error(1)
}

func (m *MockAuctionRepository) GetLiveAuctions(ctx context.Context, q repository.DBExecutor) ([]domain.Auction, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Auction), args.Error(1)
}

func (m *MockAuctionRepository) GetAuctionsBySellerID(ctx context.Context, q repository.DBExecutor, sellerID int64) ([]domain.Auction, error) {
	args := m.Called(ctx, q, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Auction), args.Error(1)
}

func (m *MockAuctionRepository) GetLiveAuctionsByHighestBidder(ctx context.Context, q repository.DBExecutor, bidderID int64) ([]domain.Auction, error) {
	args := m.Called(ctx, q, bidderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Auction), args.Error(1)
}

func (m *MockAuctionRepository) UpdateHighestBid(ctx context.Context, q repository.DBExecutor, auctionID, amount, bidderID int64) error {
	args := m.Called(ctx, q, auctionID, amount, bidderID)
	return args.Error(0)
}

func (m *MockAuctionRepository) UpdateStatus(ctx context.Context, q repository.DBExecutor, auctionID int64, status domain.AuctionStatus) error {
	args := m.Called(ctx, q, auctionID, status)
	return args.Error(0)
}

// MockBidHistoryRepository is a mock implementation of repository.BidHistoryRepository.
type MockBidHistoryRepository struct {
	mock.Mock
}

func (m *MockBidHistoryRepository) CreateBid(ctx context.Context, q repository.DBExecutor, bid *domain.BidHistory) error {
	args := m.Called(ctx, q, bid)
	return args.Error(0)
}

func (m *MockBidHistoryRepository) GetBidsByAuctionID(ctx context.Context, q repository.DBExecutor, auctionID int64) ([]domain.BidHistory, error) {
	args := m.Called(ctx, q, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BidHistory), args.Error(1)
}

func (m *MockBidHistoryRepository) GetBidsByBidderID(ctx context.Context, q repository.DBExecutor, bidderID int64) ([]domain.BidHistory, error) {
	args := m.Called(ctx, q, bidderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BidHistory), args.Error(1)
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock implementation of db.TxController. It embeds
// MockDBExecutor so the service's type assertion to repository.DBExecutor
// succeeds, mirroring how *sqlx.Tx satisfies both interfaces in production.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// testNow is the frozen clock injected into services under test.
var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// serviceMocks bundles the collaborators every service test wires up.
type serviceMocks struct {
	userRepo    *MockUserRepository
	assetRepo   *MockAssetRepository
	auctionRepo *MockAuctionRepository
	bidRepo     *MockBidHistoryRepository
	tx          *MockTxController
	locks       *EntityLocks
	logger      *zap.Logger
	committed   bool
}

func newServiceMocks() *serviceMocks {
	return &serviceMocks{
		userRepo:    new(MockUserRepository),
		assetRepo:   new(MockAssetRepository),
		auctionRepo: new(MockAuctionRepository),
		bidRepo:     new(MockBidHistoryRepository),
		tx:          new(MockTxController),
		locks:       NewEntityLocks(),
		logger:      zap.NewNop(),
	}
}

func (m *serviceMocks) beginTx(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
	return m.tx, nil
}

func (m *serviceMocks) commitTx(tx db.TxController) error {
	m.committed = true
	return nil
}

func (m *serviceMocks) rollbackTx(tx db.TxController) {}

func (m *serviceMocks) clock() time.Time {
	return testNow
}

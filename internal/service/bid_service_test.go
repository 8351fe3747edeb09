// internal/service/bid_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"auction-house/internal/domain"
	"auction-house/internal/notify"
	"auction-house/internal/util"
)

func newTestBidService(m *serviceMocks) BidService {
	return NewBidService(
		nil,
		m.tx,
		m.userRepo,
		m.assetRepo,
		m.auctionRepo,
		m.bidRepo,
		m.locks,
		m.beginTx,
		m.commitTx,
		m.rollbackTx,
		nil,
		&notify.LogMailer{Logger: m.logger},
		m.clock,
		m.logger,
	)
}

// liveAuction returns a Live auction that expires one hour after testNow.
func liveAuction() *domain.Auction {
	return &domain.Auction{
		ID:                   10,
		SellerID:             1,
		AssetID:              20,
		ReservedPrice:        100,
		MinimumBidIncrement:  10,
		StartDate:            testNow.Add(-time.Hour),
		TotalMinutesToExpiry: 120,
		Status:               domain.AuctionStatusLive,
	}
}

func auctionAsset() *domain.Asset {
	return &domain.Asset{
		ID:      20,
		OwnerID: 1,
		Title:   "Antique pocket watch",
		Status:  domain.AssetStatusClosedForAuction,
	}
}

func TestPlaceBidFirstBidMeetsReserve(t *testing.T) {
	m := newServiceMocks()
	svc := newTestBidService(m)

	m.auctionRepo.On("GetAuctionByID", mock.Anything, mock.Anything, int64(10)).
		Return(liveAuction(), nil)
	m.assetRepo.On("GetAssetByID", mock.Anything, mock.Anything, int64(20)).
		Return(auctionAsset(), nil)
	m.userRepo.On("GetUserByID", mock.Anything, mock.Anything, int64(2)).
		Return(&domain.User{ID: 2, TotalBalance: 500}, nil)
	m.userRepo.On("UpdateWallet", mock.Anything, mock.Anything, int64(2), int64(500), int64(100)).
		Return(nil)
	m.auctionRepo.On("UpdateHighestBid", mock.Anything, mock.Anything, int64(10), int64(100), int64(2)).
		Return(nil)
	m.bidRepo.On("CreateBid", mock.Anything, mock.Anything, mock.AnythingOfType("*domain.BidHistory")).
		Return(nil)

	auction, err := svc.PlaceBid(context.Background(), 10, 2, 100)

	assert.NoError(t, err)
	assert.Equal(t, int64(100), auction.CurrentHighestBid)
	assert.Equal(t, int64(2), auction.CurrentHighestBidderID)
	assert.True(t, m.committed)
	m.userRepo.AssertExpectations(t)
	m.auctionRepo.AssertExpectations(t)
	m.bidRepo.AssertExpectations(t)
}

func TestPlaceBidFirstBidBelowReserve(t *testing.T) {
	m := newServiceMocks()
	svc := newTestBidService(m)

	m.auctionRepo.On("GetAuctionByID", mock.Anything, mock.Anything, int64(10)).
		Return(liveAuction(), nil)
	m.userRepo.On("GetUserByID", mock.Anything, mock.Anything, int64(2)).
		Return(&domain.User{ID: 2, TotalBalance: 500}, nil)

	_, err := svc.PlaceBid(context.Background(), 10, 2, 99)

	assert.ErrorIs(t, err, util.ErrInvalidBid)
	assert.False(t, m.committed)
}

func TestPlaceBidBelowMinimumIncrement(t *testing.T) {
	m := newServiceMocks()
	svc := newTestBidService(m)

	auction := liveAuction()
	auction.CurrentHighestBid = 100
	auction.CurrentHighestBidderID = 3
	m.auctionRepo.On("GetAuctionByID", mock.Anything, mock.Anything, int64(10)).
		Return(auction, nil)
	m.userRepo.On("GetUserByID", mock.Anything, mock.Anything, int64(2)).
		Return(&domain.User{ID: 2, TotalBalance: 500}, nil)

	// 109 < 100 + 10
	_, err := svc.PlaceBid(context.Background(), 10, 2, 109)

	assert.ErrorIs(t, err, util.ErrInvalidBid)
	assert.False(t, m.committed)
}

// A successful overbid releases the previous bidder's hold and blocks the
// full new amount in the same transaction.
func TestPlaceBidReleasesPreviousBidder(t *testing.T) {
	m := newServiceMocks()
	svc := newTestBidService(m)

	auction := liveAuction()
	auction.CurrentHighestBid = 100
	auction.CurrentHighestBidderID = 3
	m.auctionRepo.On("GetAuctionByID", mock.Anything, mock.Anything, int64(10)).
		Return(auction, nil)
	m.assetRepo.On("GetAssetByID", mock.Anything, mock.Anything, int64(20)).
		Return(auctionAsset(), nil)
	m.userRepo.On("GetUserByID", mock.Anything, mock.Anything, int64(2)).
		Return(&domain.User{ID: 2, TotalBalance: 500}, nil)
	m.userRepo.On("GetUserByID", mock.Anything, mock.Anything, int64(3)).
		Return(&domain.User{ID: 3, Name: "Carol", Email: "carol@example.com", TotalBalance: 300, BlockedBalance: 100}, nil)
	m.userRepo.On("UpdateWallet", mock.Anything, mock.Anything, int64(3), int64(300), int64(0)).
		Return(nil)
	m.userRepo.On("UpdateWallet", mock.Anything, mock.Anything, int64(2), int64(500), int64(110)).
		Return(nil)
	m.auctionRepo.On("UpdateHighestBid", mock.Anything, mock.Anything, int64(10), int64(110), int64(2)).
		Return(nil)
	m.bidRepo.On("CreateBid", mock.Anything, mock.Anything, mock.AnythingOfType("*domain.BidHistory")).
		Return(nil)

	result, err := svc.PlaceBid(context.Background(), 10, 2, 110)

	assert.NoError(t, err)
	assert.Equal(t, int64(110), result.CurrentHighestBid)
	assert.True(t, m.committed)
	m.userRepo.AssertExpectations(t)
}

// A bidder raising their own bid blocks only the difference.
func TestPlaceBidSameBidderBlocksDelta(t *testing.T) {
	m := newServiceMocks()
	svc := newTestBidService(m)

	auction := liveAuction()
	auction.CurrentHighestBid = 100
	auction.CurrentHighestBidderID = 2
	m.auctionRepo.On("GetAuctionByID", mock.Anything, mock.Anything, int64(10)).
		Return(auction, nil)
	m.assetRepo.On("GetAssetByID", mock.Anything, mock.Anything, int64(20)).
		Return(auctionAsset(), nil)
	m.userRepo.On("GetUserByID", mock.Anything, mock.Anything, int64(2)).
		Return(&domain.User{ID: 2, TotalBalance: 500, BlockedBalance: 100}, nil)
	m.userRepo.On("UpdateWallet", mock.Anything, mock.Anything, int64(2), int64(500), int64(150)).
		Return(nil)
	m.auctionRepo.On("UpdateHighestBid", mock.Anything, mock.Anything, int64(10), int64(150), int64(2)).
		Return(nil)
	m.bidRepo.On("CreateBid", mock.Anything, mock.Anything, mock.AnythingOfType("*domain.BidHistory")).
		Return(nil)

	_, err := svc.PlaceBid(context.Background(), 10, 2, 150)

	assert.NoError(t, err)
	assert.True(t, m.committed)
	m.userRepo.AssertExpectations(t)
}

func TestPlaceBidSellerCannotBid(t *testing.T) {
	m := newServiceMocks()
	svc := newTestBidService(m)

	m.auctionRepo.On("GetAuctionByID", mock.Anything, mock.Anything, int64(10)).
		Return(liveAuction(), nil)
	m.userRepo.On("GetUserByID", mock.Anything, mock.Anything, int64(1)).
		Return(&domain.User{ID: 1, TotalBalance: 500}, nil)
	m.assetRepo.On("GetAssetByID", mock.Anything, mock.Anything, int64(20)).
		Return(auctionAsset(), nil)

	_, err := svc.PlaceBid(context.Background(), 10, 1, 100)

	assert.ErrorIs(t, err, util.ErrForbidden)
	assert.False(t, m.committed)
}

func TestPlaceBidInsufficientFunds(t *testing.T) {
	m := newServiceMocks()
	svc := newTestBidService(m)

	m.auctionRepo.On("GetAuctionByID", mock.Anything, mock.Anything, int64(10)).
		Return(liveAuction(), nil)
	m.assetRepo.On("GetAssetByID", mock.Anything, mock.Anything, int64(20)).
		Return(auctionAsset(), nil)
	m.userRepo.On("GetUserByID", mock.Anything, mock.Anything, int64(2)).
		Return(&domain.User{ID: 2, TotalBalance: 120, BlockedBalance: 50}, nil)

	_, err := svc.PlaceBid(context.Background(), 10, 2, 100)

	assert.ErrorIs(t, err, util.ErrInsufficientFunds)
	assert.False(t, m.committed)
}

// The limit check applies to the full bid amount, even when the bidder is
// raising their own bid and would only block the difference.
func TestPlaceBidLimitExceeded(t *testing.T) {
	m := newServiceMocks()
	svc := newTestBidService(m)

	auction := liveAuction()
	auction.ReservedPrice = 500
	auction.MinimumBidIncrement = 5
	m.auctionRepo.On("GetAuctionByID", mock.Anything, mock.Anything, int64(10)).
		Return(auction, nil)
	m.assetRepo.On("GetAssetByID", mock.Anything, mock.Anything, int64(20)).
		Return(auctionAsset(), nil)
	m.userRepo.On("GetUserByID", mock.Anything, mock.Anything, int64(2)).
		Return(&domain.User{ID: 2, TotalBalance: 2 * domain.MaxTransactionAmount, BlockedBalance: domain.MaxTransactionAmount - 100}, nil)

	_, err := svc.PlaceBid(context.Background(), 10, 2, 500)

	assert.ErrorIs(t, err, util.ErrLimitExceeded)
	assert.False(t, m.committed)
}

func TestPlaceBidOnExpiredAuction(t *testing.T) {
	m := newServiceMocks()
	svc := newTestBidService(m)

	auction := liveAuction()
	auction.StartDate = testNow.Add(-3 * time.Hour)
	m.auctionRepo.On("GetAuctionByID", mock.Anything, mock.Anything, int64(10)).
		Return(auction, nil)

	_, err := svc.PlaceBid(context.Background(), 10, 2, 100)

	assert.ErrorIs(t, err, util.ErrInvalidState)
	assert.False(t, m.committed)
}

func TestPlaceBidUnknownAuction(t *testing.T) {
	m := newServiceMocks()
	svc := newTestBidService(m)

	m.auctionRepo.On("GetAuctionByID", mock.Anything, mock.Anything, int64(99)).
		Return(nil, util.ErrNotFound)

	_, err := svc.PlaceBid(context.Background(), 99, 2, 100)

	assert.ErrorIs(t, err, util.ErrNotFound)
}

// The amount range check applies after the auction and bidder loads and the
// reserve/increment rules, so it only fires for amounts that already cleared
// those rules.
func TestPlaceBidRejectsOutOfRangeAmount(t *testing.T) {
	m := newServiceMocks()
	svc := newTestBidService(m)

	m.auctionRepo.On("GetAuctionByID", mock.Anything, mock.Anything, int64(10)).
		Return(liveAuction(), nil)
	m.userRepo.On("GetUserByID", mock.Anything, mock.Anything, int64(2)).
		Return(&domain.User{ID: 2, TotalBalance: 500}, nil)

	_, err := svc.PlaceBid(context.Background(), 10, 2, domain.MaxTransactionAmount+1)

	assert.ErrorIs(t, err, util.ErrValidation)
	assert.False(t, m.committed)
}

// A missing auction wins over every bid-amount complaint, including an amount
// that is out of range altogether.
func TestPlaceBidMissingAuctionBeforeAmountChecks(t *testing.T) {
	m := newServiceMocks()
	svc := newTestBidService(m)

	m.auctionRepo.On("GetAuctionByID", mock.Anything, mock.Anything, int64(99)).
		Return(nil, util.ErrNotFound)

	_, err := svc.PlaceBid(context.Background(), 99, 2, 0)

	assert.ErrorIs(t, err, util.ErrNotFound)
	assert.NotErrorIs(t, err, util.ErrValidation)
}

// A missing bidder wins over the reserve rule: the bidder load comes before
// any bid-amount rule is evaluated.
func TestPlaceBidMissingBidderBeforeBidRules(t *testing.T) {
	m := newServiceMocks()
	svc := newTestBidService(m)

	m.auctionRepo.On("GetAuctionByID", mock.Anything, mock.Anything, int64(10)).
		Return(liveAuction(), nil)
	m.userRepo.On("GetUserByID", mock.Anything, mock.Anything, int64(2)).
		Return(nil, util.ErrNotFound)

	// 99 is below the reserve of 100; the missing bidder must surface first.
	_, err := svc.PlaceBid(context.Background(), 10, 2, 99)

	assert.ErrorIs(t, err, util.ErrNotFound)
	assert.NotErrorIs(t, err, util.ErrInvalidBid)
}

// The reconciliation releases each outbid bidder's largest recorded bid and
// skips bidders whose user record is gone.
func TestUnblockOutbidBidders(t *testing.T) {
	m := newServiceMocks()
	svc := newTestBidService(m)

	m.auctionRepo.On("GetAuctionByID", mock.Anything, mock.Anything, int64(10)).
		Return(liveAuction(), nil)
	m.bidRepo.On("GetBidsByAuctionID", mock.Anything, mock.Anything, int64(10)).
		Return([]domain.BidHistory{
			{AuctionID: 10, BidderID: 2, BidAmount: 100},
			{AuctionID: 10, BidderID: 3, BidAmount: 110},
			{AuctionID: 10, BidderID: 2, BidAmount: 120},
			{AuctionID: 10, BidderID: 4, BidAmount: 130},
		}, nil)
	m.userRepo.On("GetUserByID", mock.Anything, mock.Anything, int64(2)).
		Return(&domain.User{ID: 2, TotalBalance: 500, BlockedBalance: 120}, nil)
	m.userRepo.On("GetUserByID", mock.Anything, mock.Anything, int64(3)).
		Return(nil, util.ErrNotFound)
	m.userRepo.On("UpdateWallet", mock.Anything, mock.Anything, int64(2), int64(500), int64(0)).
		Return(nil)

	err := svc.UnblockOutbidBidders(context.Background(), 10, 4)

	assert.NoError(t, err)
	assert.True(t, m.committed)
	m.userRepo.AssertExpectations(t)
	m.userRepo.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything, int64(4))
}

func TestGetBidHistoryByAuction(t *testing.T) {
	m := newServiceMocks()
	svc := newTestBidService(m)

	m.bidRepo.On("GetBidsByAuctionID", mock.Anything, mock.Anything, int64(10)).
		Return([]domain.BidHistory{
			{ID: 1, AuctionID: 10, BidderID: 2, BidAmount: 100, BidDate: testNow},
			{ID: 2, AuctionID: 10, BidderID: 3, BidAmount: 110, BidDate: testNow},
		}, nil)
	m.userRepo.On("GetUserByID", mock.Anything, mock.Anything, int64(2)).
		Return(&domain.User{ID: 2, Name: "Bob"}, nil)
	m.userRepo.On("GetUserByID", mock.Anything, mock.Anything, int64(3)).
		Return(nil, util.ErrNotFound)

	views, err := svc.GetBidHistoryByAuction(context.Background(), 10)

	assert.NoError(t, err)
	assert.Len(t, views, 2)
	assert.Equal(t, "Bob", views[0].BidderName)
	assert.Equal(t, "", views[1].BidderName)
}

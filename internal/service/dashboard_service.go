// internal/service/dashboard_service.go
package service

import (
	"context"
	"fmt"
)

// Dashboard aggregates the landing-page data for one user: every running
// auction (nearest expiry first), the user's own bid trail, and the auctions
// the user currently leads.
type Dashboard struct {
	LiveAuctions    []AuctionView `json:"live_auctions"`
	UserBids        []BidView     `json:"user_bids"`
	LeadingAuctions []AuctionView `json:"leading_auctions"`
}

// DashboardService composes the auction and bid read queries.
type DashboardService interface {
	GetDashboard(ctx context.Context, userID int64) (*Dashboard, error)
}

type dashboardService struct {
	auctionSvc AuctionService
	bidSvc     BidService
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(auctionSvc AuctionService, bidSvc BidService) DashboardService {
	return &dashboardService{auctionSvc: auctionSvc, bidSvc: bidSvc}
}

// GetDashboard builds the dashboard for the acting user. The user id is
// always passed explicitly by the caller.
func (s *dashboardService) GetDashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	liveAuctions, err := s.auctionSvc.GetLiveAuctions(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	userBids, err := s.bidSvc.GetBidHistoryByBidder(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	leading, err := s.auctionSvc.GetAuctionsLedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	return &Dashboard{
		LiveAuctions:    liveAuctions,
		UserBids:        userBids,
		LeadingAuctions: leading,
	}, nil
}

// internal/api/handler/auction.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"auction-house/internal/service"
	"auction-house/internal/util"
)

// AuctionHandler handles HTTP requests for auctions, bids and the dashboard.
type AuctionHandler struct {
	auctionSvc   service.AuctionService
	bidSvc       service.BidService
	dashboardSvc service.DashboardService
	logger       *zap.Logger
}

// NewAuctionHandler creates a new AuctionHandler.
func NewAuctionHandler(
	auctionSvc service.AuctionService,
	bidSvc service.BidService,
	dashboardSvc service.DashboardService,
	logger *zap.Logger,
) *AuctionHandler {
	return &AuctionHandler{
		auctionSvc:   auctionSvc,
		bidSvc:       bidSvc,
		dashboardSvc: dashboardSvc,
		logger:       logger,
	}
}

func auctionIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "auctionID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, util.ErrValidation
	}
	return id, nil
}

// PostAuctionRequest represents the request body for posting an auction.
type PostAuctionRequest struct {
	AssetID              int64 `json:"asset_id"`
	ReservedPrice        int64 `json:"reserved_price"`
	MinimumBidIncrement  int64 `json:"minimum_bid_increment"`
	TotalMinutesToExpiry int64 `json:"total_minutes_to_expiry"`
}

// PostAuction opens an auction over an Open asset.
// POST /auctions
func (h *AuctionHandler) PostAuction(w http.ResponseWriter, r *http.Request) {
	sellerID, err := actingUserID(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	var req PostAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrValidation)
		return
	}

	auction, err := h.auctionSvc.PostAuction(r.Context(), service.PostAuctionInput{
		SellerID:             sellerID,
		AssetID:              req.AssetID,
		ReservedPrice:        req.ReservedPrice,
		MinimumBidIncrement:  req.MinimumBidIncrement,
		TotalMinutesToExpiry: req.TotalMinutesToExpiry,
	})
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusCreated, auction)
}

// GetAuction returns one auction view.
// GET /auctions/{auctionID}
func (h *AuctionHandler) GetAuction(w http.ResponseWriter, r *http.Request) {
	auctionID, err := auctionIDParam(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	view, err := h.auctionSvc.GetAuction(r.Context(), auctionID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, view)
}

// GetLiveAuctions returns all running auctions, nearest expiry first.
// GET /auctions
func (h *AuctionHandler) GetLiveAuctions(w http.ResponseWriter, r *http.Request) {
	views, err := h.auctionSvc.GetLiveAuctions(r.Context())
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, views)
}

// GetAuctionsBySeller returns all auctions of one seller.
// GET /users/{userID}/auctions
func (h *AuctionHandler) GetAuctionsBySeller(w http.ResponseWriter, r *http.Request) {
	sellerID, err := userIDParam(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	views, err := h.auctionSvc.GetAuctionsBySeller(r.Context(), sellerID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, views)
}

// PlaceBidRequest represents the request body for placing a bid.
type PlaceBidRequest struct {
	Amount int64 `json:"amount"`
}

// PlaceBid places a bid on a live auction.
// POST /auctions/{auctionID}/bids
func (h *AuctionHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	auctionID, err := auctionIDParam(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	bidderID, err := actingUserID(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	var req PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrValidation)
		return
	}

	auction, err := h.bidSvc.PlaceBid(r.Context(), auctionID, bidderID, req.Amount)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"message":             "Bid accepted",
		"auction_id":          auction.ID,
		"current_highest_bid": auction.CurrentHighestBid,
	})
}

// GetBidHistoryByAuction returns the audit trail of one auction.
// GET /auctions/{auctionID}/bids
func (h *AuctionHandler) GetBidHistoryByAuction(w http.ResponseWriter, r *http.Request) {
	auctionID, err := auctionIDParam(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	bids, err := h.bidSvc.GetBidHistoryByAuction(r.Context(), auctionID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, bids)
}

// GetBidHistoryByBidder returns every bid of one user.
// GET /users/{userID}/bids
func (h *AuctionHandler) GetBidHistoryByBidder(w http.ResponseWriter, r *http.Request) {
	bidderID, err := userIDParam(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	bids, err := h.bidSvc.GetBidHistoryByBidder(r.Context(), bidderID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, bids)
}

// GetDashboard returns the landing-page aggregate for the acting user.
// GET /dashboard
func (h *AuctionHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUserID(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	dashboard, err := h.dashboardSvc.GetDashboard(r.Context(), userID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, dashboard)
}

// SweepExpiries triggers the expiry sweep. Normally driven by the internal
// ticker; exposed for operators.
// POST /admin/sweep
func (h *AuctionHandler) SweepExpiries(w http.ResponseWriter, r *http.Request) {
	settled, err := h.auctionSvc.CheckAuctionExpiries(r.Context())
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"message": "Sweep complete",
		"settled": settled,
	})
}

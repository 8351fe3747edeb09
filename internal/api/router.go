// internal/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"auction-house/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(
	walletHandler *handler.WalletHandler,
	assetHandler *handler.AssetHandler,
	auctionHandler *handler.AuctionHandler,
) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// User and wallet routes
	r.Route("/users", func(r chi.Router) {
		r.Post("/", walletHandler.CreateUser)
		r.Get("/{userID}/wallet", walletHandler.GetWalletBalance)
		r.Post("/{userID}/wallet/deposit", walletHandler.Deposit)
		r.Post("/{userID}/wallet/withdraw", walletHandler.Withdraw)
		r.Get("/{userID}/assets", assetHandler.GetAssetsByOwner)
		r.Get("/{userID}/auctions", auctionHandler.GetAuctionsBySeller)
		r.Get("/{userID}/bids", auctionHandler.GetBidHistoryByBidder)
	})

	// Asset routes
	r.Route("/assets", func(r chi.Router) {
		r.Post("/", assetHandler.CreateAsset)
		r.Get("/{assetID}", assetHandler.GetAsset)
		r.Put("/{assetID}", assetHandler.UpdateAsset)
		r.Delete("/{assetID}", assetHandler.DeleteAsset)
		r.Post("/{assetID}/open", assetHandler.OpenToAuction)
	})

	// Auction and bid routes
	r.Route("/auctions", func(r chi.Router) {
		r.Post("/", auctionHandler.PostAuction)
		r.Get("/", auctionHandler.GetLiveAuctions)
		r.Get("/{auctionID}", auctionHandler.GetAuction)
		r.Post("/{auctionID}/bids", auctionHandler.PlaceBid)
		r.Get("/{auctionID}/bids", auctionHandler.GetBidHistoryByAuction)
	})

	// Aggregate landing-page view for the acting user
	r.Get("/dashboard", auctionHandler.GetDashboard)

	// Operator endpoint; the sweep also runs on an internal ticker
	r.Post("/admin/sweep", auctionHandler.SweepExpiries)

	return r
}

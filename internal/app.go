// internal/app.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	router "auction-house/internal/api"
	"auction-house/internal/api/handler"
	"auction-house/internal/config"
	"auction-house/internal/events"
	"auction-house/internal/notify"
	"auction-house/internal/repository"
	"auction-house/internal/repository/postgres"
	"auction-house/internal/service"
	"auction-house/internal/util"
	"auction-house/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *zap.Logger
	DB     *sqlx.DB
	NATS   *nats.Conn

	// Repositories
	UserRepository       repository.UserRepository
	AssetRepository      repository.AssetRepository
	AuctionRepository    repository.AuctionRepository
	BidHistoryRepository repository.BidHistoryRepository

	// Services
	WalletService    service.WalletService
	AssetService     service.AssetService
	AuctionService   service.AuctionService
	BidService       service.BidService
	DashboardService service.DashboardService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 4. Event publisher and mailer. Both degrade gracefully when no NATS
	// url is configured: events become no-ops and mail is logged.
	var publisher *events.Publisher
	var mailer notify.EmailSender = &notify.LogMailer{Logger: app.Logger}
	if app.Config.NATSUrl != "" {
		nc, err := nats.Connect(app.Config.NATSUrl,
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second))
		if err != nil {
			return fmt.Errorf("failed to connect to NATS at %s: %w", app.Config.NATSUrl, err)
		}
		app.NATS = nc
		publisher, err = events.NewPublisher(nc, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize event publisher: %w", err)
		}
		mailer = notify.NewQueueMailer(nc)
		app.Logger.Info("NATS connection established.", zap.String("url", app.Config.NATSUrl))
	} else {
		app.Logger.Info("No NATS url configured, events disabled and mail logged.")
	}

	// 5. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.AssetRepository = postgres.NewAssetRepository(app.DB)
	app.AuctionRepository = postgres.NewAuctionRepository(app.DB)
	app.BidHistoryRepository = postgres.NewBidHistoryRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 6. Initialize Services
	// The lock registry is shared so every service serializes on the same
	// per-auction and per-user mutexes.
	locks := service.NewEntityLocks()
	now := func() time.Time { return time.Now().UTC() }

	app.WalletService = service.NewWalletService(
		app.DB,
		app.DB,
		app.UserRepository,
		app.AuctionRepository,
		locks,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		now,
		app.Logger,
	)
	app.AssetService = service.NewAssetService(
		app.DB,
		app.DB,
		app.AssetRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.AuctionService = service.NewAuctionService(
		app.DB,
		app.DB,
		app.UserRepository,
		app.AssetRepository,
		app.AuctionRepository,
		locks,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		publisher,
		mailer,
		now,
		app.Logger,
	)
	app.BidService = service.NewBidService(
		app.DB,
		app.DB,
		app.UserRepository,
		app.AssetRepository,
		app.AuctionRepository,
		app.BidHistoryRepository,
		locks,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		publisher,
		mailer,
		now,
		app.Logger,
	)
	app.DashboardService = service.NewDashboardService(app.AuctionService, app.BidService)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	walletHandler := handler.NewWalletHandler(app.WalletService, app.Logger)
	assetHandler := handler.NewAssetHandler(app.AssetService, app.Logger)
	auctionHandler := handler.NewAuctionHandler(app.AuctionService, app.BidService, app.DashboardService, app.Logger)
	app.HTTPHandler = router.NewRouter(walletHandler, assetHandler, auctionHandler)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// RunExpirySweeper settles expired auctions on a fixed interval until the
// context is cancelled.
func (app *Application) RunExpirySweeper(ctx context.Context) {
	interval := app.Config.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	app.Logger.Info("Expiry sweeper started.", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			app.Logger.Info("Expiry sweeper stopped.")
			return
		case <-ticker.C:
			settled, err := app.AuctionService.CheckAuctionExpiries(ctx)
			if err != nil {
				app.Logger.Error("Expiry sweep failed", zap.Error(err))
				continue
			}
			if settled > 0 {
				app.Logger.Info("Expiry sweep settled auctions", zap.Int("settled", settled))
			}
		}
	}
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.NATS != nil {
		if err := app.NATS.Drain(); err != nil {
			app.Logger.Error("Failed to drain NATS connection", zap.Error(err))
		} else {
			app.Logger.Info("NATS connection drained.")
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", zap.Error(err))
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}

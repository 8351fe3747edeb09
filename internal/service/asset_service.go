// internal/service/asset_service.go
package service

import (
	"context"
	"fmt"

	"auction-house/internal/domain"
	"auction-house/internal/repository"
	"auction-house/internal/util"
	"auction-house/pkg/db"
)

// AssetService defines the interface for asset lifecycle business logic.
type AssetService interface {
	CreateAsset(ctx context.Context, ownerID int64, title, description string, retailValue int64) (*domain.Asset, error)
	UpdateAsset(ctx context.Context, assetID, requesterID int64, title, description string, retailValue int64) (*domain.Asset, error)
	DeleteAsset(ctx context.Context, assetID, requesterID int64) error
	OpenToAuction(ctx context.Context, assetID, requesterID int64) (*domain.Asset, error)
	GetAsset(ctx context.Context, assetID int64) (*domain.Asset, error)
	GetAssetsByOwner(ctx context.Context, ownerID int64) ([]domain.Asset, error)
}

type assetService struct {
	dbBeginner db.DBTxBeginner
	dbExecutor repository.DBExecutor
	assetRepo  repository.AssetRepository
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
}

// NewAssetService creates a new instance of AssetService.
func NewAssetService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	assetRepo repository.AssetRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) AssetService {
	return &assetService{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		assetRepo:  assetRepo,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// CreateAsset registers a new Draft asset for the owner.
func (s *assetService) CreateAsset(ctx context.Context, ownerID int64, title, description string, retailValue int64) (*domain.Asset, error) {
	asset, err := domain.NewAsset(ownerID, title, description, retailValue)
	if err != nil {
		return nil, err
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("create asset: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("create asset: transaction controller does not implement DBExecutor")
	}

	if err := s.assetRepo.CreateAsset(ctx, txExecutor, asset); err != nil {
		return nil, fmt.Errorf("create asset: failed to save asset: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("create asset: failed to commit transaction: %w", err)
	}
	return asset, nil
}

// UpdateAsset replaces the listing details of a Draft asset. Only the owner
// may update, and only while the asset is still a Draft.
func (s *assetService) UpdateAsset(ctx context.Context, assetID, requesterID int64, title, description string, retailValue int64) (*domain.Asset, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("update asset: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("update asset: transaction controller does not implement DBExecutor")
	}

	asset, err := s.assetRepo.GetAssetByID(ctx, txExecutor, assetID)
	if err != nil {
		return nil, fmt.Errorf("update asset: failed to get asset %d: %w", assetID, err)
	}
	if asset.Status != domain.AssetStatusDraft {
		return nil, fmt.Errorf("%w: only assets in Draft status can be updated", util.ErrInvalidState)
	}
	if asset.OwnerID != requesterID {
		return nil, fmt.Errorf("%w: you can only update your own assets", util.ErrForbidden)
	}

	if err := asset.UpdateDetails(title, description, retailValue); err != nil {
		return nil, err
	}

	if err := s.assetRepo.UpdateAsset(ctx, txExecutor, asset); err != nil {
		return nil, fmt.Errorf("update asset: failed to save asset %d: %w", assetID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("update asset: failed to commit transaction: %w", err)
	}
	return asset, nil
}

// DeleteAsset removes an asset. Only the owner may delete, and only while the
// asset is in Draft or Open status (never while tied to an auction).
func (s *assetService) DeleteAsset(ctx context.Context, assetID, requesterID int64) error {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("delete asset: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("delete asset: transaction controller does not implement DBExecutor")
	}

	asset, err := s.assetRepo.GetAssetByID(ctx, txExecutor, assetID)
	if err != nil {
		return fmt.Errorf("delete asset: failed to get asset %d: %w", assetID, err)
	}
	if asset.OwnerID != requesterID {
		return fmt.Errorf("%w: you can only delete your own assets", util.ErrForbidden)
	}
	if !asset.Deletable() {
		return fmt.Errorf("%w: assets can only be deleted in Draft or Open status", util.ErrInvalidState)
	}

	if err := s.assetRepo.DeleteAsset(ctx, txExecutor, assetID); err != nil {
		return fmt.Errorf("delete asset: failed to delete asset %d: %w", assetID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("delete asset: failed to commit transaction: %w", err)
	}
	return nil
}

// OpenToAuction flips a Draft asset to Open, making it eligible for auction.
func (s *assetService) OpenToAuction(ctx context.Context, assetID, requesterID int64) (*domain.Asset, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("open to auction: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("open to auction: transaction controller does not implement DBExecutor")
	}

	asset, err := s.assetRepo.GetAssetByID(ctx, txExecutor, assetID)
	if err != nil {
		return nil, fmt.Errorf("open to auction: failed to get asset %d: %w", assetID, err)
	}
	if asset.OwnerID != requesterID {
		return nil, fmt.Errorf("%w: you can only open your own assets for auction", util.ErrForbidden)
	}
	if asset.Status != domain.AssetStatusDraft {
		return nil, fmt.Errorf("%w: only assets in Draft status can be opened for auction", util.ErrInvalidState)
	}

	asset.Status = domain.AssetStatusOpen
	if err := s.assetRepo.UpdateAsset(ctx, txExecutor, asset); err != nil {
		return nil, fmt.Errorf("open to auction: failed to save asset %d: %w", assetID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("open to auction: failed to commit transaction: %w", err)
	}
	return asset, nil
}

// GetAsset retrieves a single asset.
func (s *assetService) GetAsset(ctx context.Context, assetID int64) (*domain.Asset, error) {
	asset, err := s.assetRepo.GetAssetByID(ctx, s.dbExecutor, assetID)
	if err != nil {
		return nil, fmt.Errorf("get asset: failed to get asset %d: %w", assetID, err)
	}
	return asset, nil
}

// GetAssetsByOwner retrieves all assets owned by the user.
func (s *assetService) GetAssetsByOwner(ctx context.Context, ownerID int64) ([]domain.Asset, error) {
	assets, err := s.assetRepo.GetAssetsByOwnerID(ctx, s.dbExecutor, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get assets: failed to get assets for owner %d: %w", ownerID, err)
	}
	return assets, nil
}
